package menu_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adampresley/mediacatalog/cmd/console/internal/menu"
	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/services"
	"github.com/adampresley/mediacatalog/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type consoleFixture struct {
	stores   *storage.Stores
	catalog  services.CatalogService
	sessions *services.SessionService
	users    services.UserService
}

/*
newConsoleFixture seeds alice (1) and bob (2), album Holidays (1), private
photo 10 owned by alice in Holidays tagged "sun" and "sea", and public
photo 11 owned by bob in Holidays.
*/
func newConsoleFixture(t *testing.T, now func() time.Time) *consoleFixture {
	t.Helper()

	ctx := context.Background()

	stores, err := storage.Open(storage.Config{
		StoreDriver: storage.DriverSqlite,
		DSN:         "file:" + filepath.Join(t.TempDir(), "console.db") + "?_pragma=foreign_keys(1)",
	})

	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	hasher, err := services.NewPasswordHasher(services.PasswordModeLegacySha256, 0)
	require.NoError(t, err)

	aliceHash, _ := hasher.Hash("secret")
	bobHash, _ := hasher.Hash("hunter2")

	require.NoError(t, stores.Users.Create(ctx, &models.User{ID: 1, Name: "Alice", Email: "alice@example.com", PasswordHash: aliceHash}))
	require.NoError(t, stores.Users.Create(ctx, &models.User{ID: 2, Name: "Bob", Email: "bob@example.com", PasswordHash: bobHash}))
	require.NoError(t, stores.Albums.Create(ctx, &models.Album{ID: 1, Name: "Holidays"}))

	require.NoError(t, stores.Photos.Create(ctx, &models.Photo{
		ID:          10,
		OwnerID:     1,
		Filename:    "beach.jpg",
		Title:       "Beach",
		Description: "Summer",
		Date:        time.Date(2023, time.July, 4, 0, 0, 0, 0, time.UTC),
		Resolution:  "4000x3000",
		Tags:        []string{"sun", "sea"},
		Albums:      []int{1},
	}))

	require.NoError(t, stores.Photos.Create(ctx, &models.Photo{
		ID:         11,
		OwnerID:    2,
		Filename:   "dog.jpg",
		Title:      "Dog",
		Resolution: "1024x768",
		Albums:     []int{1},
		IsPublic:   true,
	}))

	return &consoleFixture{
		stores: stores,
		catalog: services.NewCatalogService(services.CatalogServiceConfig{
			Access:     services.NewAccessService(),
			AlbumStore: stores.Albums,
			PhotoStore: stores.Photos,
			UserStore:  stores.Users,
		}),
		sessions: services.NewSessionService(services.SessionServiceConfig{
			Now:   now,
			Store: stores.Sessions,
			TTL:   4 * time.Minute,
		}),
		users: services.NewUserService(services.UserServiceConfig{
			Hasher: hasher,
			Store:  stores.Users,
		}),
	}
}

func (f *consoleFixture) run(t *testing.T, lines ...string) string {
	t.Helper()

	out := &bytes.Buffer{}

	m := menu.NewMenu(menu.MenuConfig{
		CatalogService: f.catalog,
		In:             strings.NewReader(strings.Join(lines, "\n") + "\n"),
		Out:            out,
		SessionService: f.sessions,
		UserService:    f.users,
	})

	require.NoError(t, m.Run(context.Background()))
	return out.String()
}

func TestLoginFailureExits(t *testing.T) {
	f := newConsoleFixture(t, nil)

	out := f.run(t, "alice@example.com", "wrong")

	assert.Contains(t, out, "=== Digital Media Catalog Login ===")
	assert.Contains(t, out, "Invalid username or password")
	assert.Contains(t, out, "Login failed. Exiting...")
	assert.NotContains(t, out, "Options:")
}

func TestLoginWelcomesAndExits(t *testing.T) {
	f := newConsoleFixture(t, nil)

	out := f.run(t, "alice@example.com", "secret", "5")

	assert.Contains(t, out, "Welcome, Alice!")
	assert.Contains(t, out, "=== Digital Media Catalog ===")
	assert.Contains(t, out, "Your selection> ")
	assert.Contains(t, out, "Goodbye!")
}

func TestInvalidOption(t *testing.T) {
	f := newConsoleFixture(t, nil)

	out := f.run(t, "alice@example.com", "secret", "9", "5")

	assert.Contains(t, out, "Invalid option. Please choose between 1-5.")
	assert.Contains(t, out, "Goodbye!")
}

func TestFindPhoto(t *testing.T) {
	f := newConsoleFixture(t, nil)

	out := f.run(t, "alice@example.com", "secret", "1", "10", "5")

	assert.Contains(t, out, "Filename: beach.jpg\n")
	assert.Contains(t, out, " Title: Beach\n")
	assert.Contains(t, out, "  Date: July 4, 2023\n")
	assert.Contains(t, out, "Albums: Holidays\n")
	assert.Contains(t, out, "  Tags: sun, sea\n")
}

func TestFindPhotoDeniedLooksNotFound(t *testing.T) {
	f := newConsoleFixture(t, nil)

	out := f.run(t, "bob@example.com", "hunter2", "1", "10", "1", "999", "1", "abc", "5")

	assert.Equal(t, 3, strings.Count(out, "Photo not found or access denied"))
	assert.NotContains(t, out, "Filename: beach.jpg")
}

func TestUpdatePhotoDetails(t *testing.T) {
	f := newConsoleFixture(t, nil)

	out := f.run(t, "alice@example.com", "secret", "2", "10", "Sunset", "", "5")

	assert.Contains(t, out, "Press enter to keep existing value.")
	assert.Contains(t, out, "Enter value for title [Beach]: ")
	assert.Contains(t, out, "Enter value for description [Summer]: ")
	assert.Contains(t, out, "Photo updated")

	photo, err := f.stores.Photos.FindByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "Sunset", photo.Title)
	assert.Equal(t, "Summer", photo.Description)
}

func TestUpdatePhotoRequiresOwner(t *testing.T) {
	f := newConsoleFixture(t, nil)

	out := f.run(t, "alice@example.com", "secret", "2", "11", "5")

	assert.Contains(t, out, "Photo not found or access denied")
	assert.NotContains(t, out, "Enter value for title")

	photo, err := f.stores.Photos.FindByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, "Dog", photo.Title)
}

func TestAlbumPhotoList(t *testing.T) {
	f := newConsoleFixture(t, nil)

	out := f.run(t, "alice@example.com", "secret", "3", "holidays", "5")

	assert.Contains(t, out, "filename,resolution,tags\n")
	assert.Contains(t, out, "beach.jpg,4000x3000,sun:sea\n")
	assert.Contains(t, out, "dog.jpg,1024x768,\n")
}

func TestAlbumPhotoListHidesUnreadable(t *testing.T) {
	f := newConsoleFixture(t, nil)

	out := f.run(t, "bob@example.com", "hunter2", "3", "Holidays", "5")

	assert.Contains(t, out, "dog.jpg,1024x768,\n")
	assert.NotContains(t, out, "beach.jpg")
}

func TestAlbumPhotoListUnknownAlbum(t *testing.T) {
	f := newConsoleFixture(t, nil)

	out := f.run(t, "alice@example.com", "secret", "3", "Nowhere", "5")

	assert.Contains(t, out, "No photos found in this album or album not found")
	assert.NotContains(t, out, "filename,resolution,tags")
}

func TestAddTag(t *testing.T) {
	f := newConsoleFixture(t, nil)

	out := f.run(t,
		"alice@example.com", "secret",
		"4", "10", "beach",
		"4", "10", "beach",
		"4", "11", "dog",
		"5",
	)

	assert.Equal(t, 1, strings.Count(out, "Updated!"))
	assert.Equal(t, 2, strings.Count(out, "Photo not found, access denied, or tag already exists"))

	photo, err := f.stores.Photos.FindByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"sun", "sea", "beach"}, photo.Tags)
}

func TestExpiredSessionStopsMenu(t *testing.T) {
	start := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	calls := 0

	clock := func() time.Time {
		calls++

		if calls == 1 {
			return start
		}

		return start.Add(5 * time.Minute)
	}

	f := newConsoleFixture(t, clock)

	out := f.run(t, "alice@example.com", "secret", "1", "10", "5")

	assert.Contains(t, out, "Welcome, Alice!")
	assert.Contains(t, out, "Your session has expired. Please log in again.")
	assert.NotContains(t, out, "Filename: beach.jpg")
	assert.NotContains(t, out, "Goodbye!")
}

func TestEndOfInputStopsQuietly(t *testing.T) {
	f := newConsoleFixture(t, nil)

	out := f.run(t, "alice@example.com", "secret", "1")

	assert.Contains(t, out, "Photo ID? ")
	assert.NotContains(t, out, "Goodbye!")
}
