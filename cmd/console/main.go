package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/adampresley/mediacatalog/cmd/console/internal/configuration"
	"github.com/adampresley/mediacatalog/cmd/console/internal/menu"
	"github.com/adampresley/mediacatalog/pkg/services"
	"github.com/adampresley/mediacatalog/pkg/storage"
)

var (
	Version string = "development"
	appName string = "mediacatalog-console"
)

func main() {
	config := configuration.LoadConfig()
	setupLogger(config.LogLevel)

	if err := run(context.Background(), config, os.Stdin, os.Stdout); err != nil {
		slog.Error("console stopped with an error", "error", err)
		os.Exit(1)
	}
}

/*
run opens the stores, wires the services, and drives the menu. The stores
are closed before it returns, whatever the outcome.
*/
func run(ctx context.Context, config configuration.Config, in io.Reader, out io.Writer) error {
	var (
		err    error
		stores *storage.Stores
		hasher services.PasswordHasher
	)

	if stores, err = storage.Open(storage.Config{
		StoreDriver:   config.StoreDriver,
		DSN:           config.DSN,
		CloverDir:     config.CloverDir,
		SessionDriver: config.SessionDriver,
		RedisAddr:     config.RedisAddr,
		RedisPassword: config.RedisPassword,
	}); err != nil {
		return fmt.Errorf("error opening stores: %w", err)
	}

	defer stores.Close()

	if hasher, err = services.NewPasswordHasher(config.PasswordMode, config.BcryptCost); err != nil {
		return fmt.Errorf("error setting up password hasher: %w", err)
	}

	m := menu.NewMenu(menu.MenuConfig{
		CatalogService: services.NewCatalogService(services.CatalogServiceConfig{
			Access:     services.NewAccessService(),
			AlbumStore: stores.Albums,
			PhotoStore: stores.Photos,
			UserStore:  stores.Users,
		}),
		In:  in,
		Out: out,
		SessionService: services.NewSessionService(services.SessionServiceConfig{
			Store: stores.Sessions,
			TTL:   config.SessionTTL,
		}),
		UserService: services.NewUserService(services.UserServiceConfig{
			Hasher: hasher,
			Store:  stores.Users,
		}),
	})

	return m.Run(ctx)
}

func setupLogger(logLevel string) {
	level := slog.LevelWarn

	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}).WithAttrs([]slog.Attr{
		slog.String("app", appName),
		slog.String("version", Version),
	})

	slog.SetDefault(slog.New(h))
}
