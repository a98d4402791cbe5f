package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/stores"
	"github.com/alitto/pond/v2"
)

type SeedServicer interface {
	Import(dir string) (SeedResult, error)
}

type SeedServiceConfig struct {
	AlbumStore  stores.AlbumStorer
	Hasher      PasswordHasher
	MaxWorkers  int
	PhotoStore  stores.PhotoStorer
	ShutdownCtx context.Context
	UserStore   stores.UserStorer
}

type SeedService struct {
	albumStore  stores.AlbumStorer
	hasher      PasswordHasher
	maxWorkers  int
	photoStore  stores.PhotoStorer
	shutdownCtx context.Context
	userStore   stores.UserStorer
}

type SeedResult struct {
	Users   int
	Albums  int
	Photos  int
	Skipped int
}

type seedUser struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type seedAlbum struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type seedPhoto struct {
	ID          int      `json:"id"`
	Owner       int      `json:"owner"`
	Filename    string   `json:"filename"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Resolution  string   `json:"resolution"`
	Tags        []string `json:"tags"`
	Albums      []int    `json:"albums"`
	IsPublic    bool     `json:"isPublic"`
	Visibility  string   `json:"visibility"`
}

func NewSeedService(config SeedServiceConfig) SeedService {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 4
	}

	if config.ShutdownCtx == nil {
		config.ShutdownCtx = context.Background()
	}

	return SeedService{
		albumStore:  config.AlbumStore,
		hasher:      config.Hasher,
		maxWorkers:  config.MaxWorkers,
		photoStore:  config.PhotoStore,
		shutdownCtx: config.ShutdownCtx,
		userStore:   config.UserStore,
	}
}

/*
Import loads users.json, albums.json, and photos.json from dir. Missing
files are skipped. Users go first, then albums, then photos, so references
can be checked. Records that already exist or reference something unknown
are logged and skipped, which makes a repeated import harmless.
*/
func (s SeedService) Import(dir string) (SeedResult, error) {
	var (
		err    error
		users  []seedUser
		albums []seedAlbum
		photos []seedPhoto
	)

	result := SeedResult{}

	if err = readSeedFile(filepath.Join(dir, "users.json"), &users); err != nil {
		return result, err
	}

	if err = readSeedFile(filepath.Join(dir, "albums.json"), &albums); err != nil {
		return result, err
	}

	if err = readSeedFile(filepath.Join(dir, "photos.json"), &photos); err != nil {
		return result, err
	}

	slog.Info("importing seed data...", "dir", dir, "users", len(users), "albums", len(albums), "photos", len(photos))

	pool := pond.NewPool(s.maxWorkers, pond.WithContext(s.shutdownCtx))
	defer pool.StopAndWait()

	var imported, skipped atomic.Int64

	run := func(count int, work func(index int) error) error {
		imported.Store(0)
		group := pool.NewGroup()

		for index := 0; index < count; index++ {
			group.Submit(func() {
				if err := work(index); err != nil {
					skipped.Add(1)
					slog.Warn("skipping seed record", "index", index, "error", err)
					return
				}

				imported.Add(1)
			})
		}

		return group.Wait()
	}

	if err = run(len(users), func(i int) error { return s.importUser(users[i]) }); err != nil {
		return result, fmt.Errorf("error importing users: %w", err)
	}

	result.Users = int(imported.Load())

	if err = run(len(albums), func(i int) error { return s.importAlbum(albums[i]) }); err != nil {
		return result, fmt.Errorf("error importing albums: %w", err)
	}

	result.Albums = int(imported.Load())

	if err = run(len(photos), func(i int) error { return s.importPhoto(photos[i]) }); err != nil {
		return result, fmt.Errorf("error importing photos: %w", err)
	}

	result.Photos = int(imported.Load())
	result.Skipped = int(skipped.Load())

	slog.Info("seed import finished", "users", result.Users, "albums", result.Albums, "photos", result.Photos, "skipped", result.Skipped)
	return result, nil
}

func (s SeedService) importUser(record seedUser) error {
	ctx, cancel := context.WithTimeout(s.shutdownCtx, time.Second*10)
	defer cancel()

	name := record.Name

	if name == "" {
		name = record.Username
	}

	digest, err := s.hasher.Hash(record.Password)

	if err != nil {
		return err
	}

	return s.userStore.Create(ctx, &models.User{
		ID:           record.ID,
		Name:         name,
		Email:        record.Email,
		PasswordHash: digest,
	})
}

func (s SeedService) importAlbum(record seedAlbum) error {
	ctx, cancel := context.WithTimeout(s.shutdownCtx, time.Second*5)
	defer cancel()

	return s.albumStore.Create(ctx, &models.Album{ID: record.ID, Name: record.Name})
}

func (s SeedService) importPhoto(record seedPhoto) error {
	var (
		err  error
		date time.Time
	)

	ctx, cancel := context.WithTimeout(s.shutdownCtx, time.Second*5)
	defer cancel()

	if _, err = s.userStore.FindByID(ctx, record.Owner); err != nil {
		return fmt.Errorf("photo %d: owner %d: %w", record.ID, record.Owner, err)
	}

	for _, albumID := range record.Albums {
		if _, err = s.albumStore.FindByID(ctx, albumID); err != nil {
			return fmt.Errorf("photo %d: album %d: %w", record.ID, albumID, err)
		}
	}

	if record.Date != "" {
		if date, err = parseSeedDate(record.Date); err != nil {
			return fmt.Errorf("photo %d: invalid date '%s': %w", record.ID, record.Date, err)
		}
	}

	return s.photoStore.Create(ctx, &models.Photo{
		ID:          record.ID,
		OwnerID:     record.Owner,
		Filename:    record.Filename,
		Title:       record.Title,
		Description: record.Description,
		Date:        date.UTC(),
		Resolution:  record.Resolution,
		Tags:        record.Tags,
		Albums:      record.Albums,
		IsPublic:    record.IsPublic || models.VisibilityFromString(record.Visibility),
	})
}

func readSeedFile(path string, target any) error {
	b, err := os.ReadFile(path)

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("seed file not present", "path", path)
			return nil
		}

		return fmt.Errorf("error reading seed file '%s': %w", path, err)
	}

	if err = json.Unmarshal(b, target); err != nil {
		return fmt.Errorf("error parsing seed file '%s': %w", path, err)
	}

	return nil
}

/*
parseSeedDate accepts a full timestamp or a bare calendar date. Bare dates
are midnight UTC.
*/
func parseSeedDate(value string) (time.Time, error) {
	date, err := time.Parse(time.RFC3339, value)

	if err == nil {
		return date, nil
	}

	if date, dateOnlyErr := time.Parse(time.DateOnly, value); dateOnlyErr == nil {
		return date, nil
	}

	return time.Time{}, err
}
