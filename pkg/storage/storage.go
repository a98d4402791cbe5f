/*
Package storage builds the store backends selected by configuration. The
website and the console share it so both see the same data.
*/
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adampresley/mediacatalog/pkg/stores"
	"github.com/adampresley/mediacatalog/pkg/stores/documentstore"
	"github.com/adampresley/mediacatalog/pkg/stores/redisstore"
	"github.com/adampresley/mediacatalog/pkg/stores/sqlitestore"
)

const (
	DriverSqlite = "sqlite"
	DriverClover = "clover"
	DriverRedis  = "redis"
)

type Config struct {
	StoreDriver   string
	DSN           string
	CloverDir     string
	SessionDriver string
	RedisAddr     string
	RedisPassword string
}

type Stores struct {
	Users    stores.UserStorer
	Photos   stores.PhotoStorer
	Albums   stores.AlbumStorer
	Sessions stores.SessionStorer

	closers []func() error
}

/*
Open connects the configured backends. SessionDriver may be empty, in
which case sessions live next to everything else.
*/
func Open(config Config) (*Stores, error) {
	var (
		err    error
		result = &Stores{}
	)

	storeDriver := strings.ToLower(config.StoreDriver)

	if storeDriver == "" {
		storeDriver = DriverSqlite
	}

	switch storeDriver {
	case DriverSqlite:
		if err = result.openSqlite(config.DSN); err != nil {
			return nil, err
		}

	case DriverClover:
		if err = result.openClover(config.CloverDir); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown store driver '%s'", config.StoreDriver)
	}

	switch strings.ToLower(config.SessionDriver) {
	case "", storeDriver:

	case DriverRedis:
		if err = result.openRedis(config.RedisAddr, config.RedisPassword); err != nil {
			_ = result.Close()
			return nil, err
		}

	default:
		_ = result.Close()
		return nil, fmt.Errorf("unknown session driver '%s'", config.SessionDriver)
	}

	slog.Info("storage ready", "storeDriver", config.StoreDriver, "sessionDriver", config.SessionDriver)
	return result, nil
}

func (s *Stores) Close() error {
	var errs []error

	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}

	s.closers = nil
	return errors.Join(errs...)
}

func (s *Stores) openSqlite(dsn string) error {
	db, err := sqlitestore.Connect(dsn)

	if err != nil {
		return err
	}

	s.closers = append(s.closers, db.Pool().Close)
	s.Users = sqlitestore.NewUserStore(sqlitestore.UserStoreConfig{DB: db})
	s.Photos = sqlitestore.NewPhotoStore(sqlitestore.PhotoStoreConfig{DB: db})
	s.Albums = sqlitestore.NewAlbumStore(sqlitestore.AlbumStoreConfig{DB: db})
	s.Sessions = sqlitestore.NewSessionStore(sqlitestore.SessionStoreConfig{DB: db})
	return nil
}

func (s *Stores) openClover(dir string) error {
	db, err := documentstore.Open(dir)

	if err != nil {
		return err
	}

	s.closers = append(s.closers, db.Close)
	s.Users = documentstore.NewUserStore(documentstore.UserStoreConfig{DB: db})
	s.Photos = documentstore.NewPhotoStore(documentstore.PhotoStoreConfig{DB: db})
	s.Albums = documentstore.NewAlbumStore(documentstore.AlbumStoreConfig{DB: db})
	s.Sessions = documentstore.NewSessionStore(documentstore.SessionStoreConfig{DB: db})
	return nil
}

func (s *Stores) openRedis(addr, password string) error {
	client := redisstore.NewClient(addr, password)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("error connecting to redis at '%s': %w", addr, err)
	}

	s.closers = append(s.closers, client.Close)
	s.Sessions = redisstore.NewSessionStore(redisstore.SessionStoreConfig{Client: client})
	return nil
}
