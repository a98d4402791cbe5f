package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/services"
	"github.com/adampresley/mediacatalog/pkg/storage"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestStores(t *testing.T) *storage.Stores {
	t.Helper()

	s, err := storage.Open(storage.Config{
		StoreDriver: storage.DriverSqlite,
		DSN:         "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)",
	})

	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func legacyHasher(t *testing.T) services.PasswordHasher {
	t.Helper()

	hasher, err := services.NewPasswordHasher(services.PasswordModeLegacySha256, 0)
	require.NoError(t, err)
	return hasher
}

/*
seedCatalog creates users 1 (A) and 2 (B), albums 1 (Holidays) and
2 (Family), private photo 10 owned by A tagged "sun" in both albums, and
public photo 11 owned by B in Family.
*/
func seedCatalog(t *testing.T, s *storage.Stores) {
	t.Helper()

	ctx := context.Background()

	require.NoError(t, s.Users.Create(ctx, &models.User{ID: 1, Name: "A", Email: "a@x.com", PasswordHash: "d"}))
	require.NoError(t, s.Users.Create(ctx, &models.User{ID: 2, Name: "B", Email: "b@x.com", PasswordHash: "d"}))
	require.NoError(t, s.Albums.Create(ctx, &models.Album{ID: 1, Name: "Holidays"}))
	require.NoError(t, s.Albums.Create(ctx, &models.Album{ID: 2, Name: "Family"}))

	require.NoError(t, s.Photos.Create(ctx, &models.Photo{
		ID:          10,
		OwnerID:     1,
		Filename:    "beach.jpg",
		Title:       "Beach",
		Description: "Summer",
		Resolution:  "4000x3000",
		Tags:        []string{"sun"},
		Albums:      []int{2, 1},
	}))

	require.NoError(t, s.Photos.Create(ctx, &models.Photo{
		ID:         11,
		OwnerID:    2,
		Filename:   "dog.jpg",
		Resolution: "1024x768",
		Albums:     []int{2},
		IsPublic:   true,
	}))
}
