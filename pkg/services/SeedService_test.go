package services_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adampresley/mediacatalog/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedUsers = `[
  {"id": 1, "name": "A", "email": "a@x.com", "password": "pw"},
  {"id": 2, "username": "b", "email": "b@x.com", "password": "pw2"}
]`

const seedAlbums = `[
  {"id": 1, "name": "Holidays"},
  {"id": 2, "name": "Family"}
]`

const seedPhotos = `[
  {"id": 10, "owner": 1, "filename": "beach.jpg", "title": "Beach", "date": "2024-07-01T10:00:00.000Z", "resolution": "4000x3000", "tags": ["sun"], "albums": [1]},
  {"id": 11, "owner": 2, "filename": "dog.jpg", "resolution": "1024x768", "tags": [], "albums": [2], "visibility": "public"},
  {"id": 12, "owner": 9, "filename": "orphan.jpg", "tags": [], "albums": []},
  {"id": 13, "owner": 1, "filename": "lost.jpg", "tags": [], "albums": [42]},
  {"id": 14, "owner": 1, "filename": "park.jpg", "date": "2023-05-20", "tags": [], "albums": [1]},
  {"id": 15, "owner": 1, "filename": "smudged.jpg", "date": "05/20/2023", "tags": [], "albums": [1]}
]`

func writeSeedDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(seedUsers), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "albums.json"), []byte(seedAlbums), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photos.json"), []byte(seedPhotos), 0o644))

	return dir
}

func TestSeedImport(t *testing.T) {
	ctx := context.Background()
	s := newTestStores(t)
	hasher := legacyHasher(t)

	service := services.NewSeedService(services.SeedServiceConfig{
		AlbumStore: s.Albums,
		Hasher:     hasher,
		MaxWorkers: 2,
		PhotoStore: s.Photos,
		UserStore:  s.Users,
	})

	dir := writeSeedDir(t)

	got, err := service.Import(dir)
	require.NoError(t, err)
	assert.Equal(t, services.SeedResult{Users: 2, Albums: 2, Photos: 3, Skipped: 3}, got)

	user, err := s.Users.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "b", user.Name)
	assert.True(t, hasher.Verify("pw2", user.PasswordHash))

	dog, err := s.Photos.FindByID(ctx, 11)
	require.NoError(t, err)
	assert.True(t, dog.IsPublic)

	beach, err := s.Photos.FindByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2024, beach.Date.Year())

	park, err := s.Photos.FindByID(ctx, 14)
	require.NoError(t, err)
	assert.True(t, time.Date(2023, time.May, 20, 0, 0, 0, 0, time.UTC).Equal(park.Date))

	_, err = s.Photos.FindByID(ctx, 15)
	assert.Error(t, err)

	again, err := service.Import(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Users+again.Albums+again.Photos)
}

func TestSeedImportWithoutFiles(t *testing.T) {
	s := newTestStores(t)

	service := services.NewSeedService(services.SeedServiceConfig{
		AlbumStore: s.Albums,
		Hasher:     legacyHasher(t),
		PhotoStore: s.Photos,
		UserStore:  s.Users,
	})

	got, err := service.Import(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, services.SeedResult{}, got)
}
