/*
Package testsupport builds a small, fully wired catalog for controller
tests: real services over a temporary SQLite database and the site's own
templates.
*/
package testsupport

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/services"
	"github.com/adampresley/mediacatalog/pkg/storage"
	"github.com/stretchr/testify/require"
)

type Fixture struct {
	Stores         *storage.Stores
	Renderer       rendering.TemplateRenderer
	UserService    services.UserService
	SessionService *services.SessionService
	CatalogService services.CatalogService
	MediaService   services.MediaService
}

/*
NewFixture seeds alice (1, password "secret") and bob (2, password
"hunter2"), album Holidays (1), private photo 10 owned by alice tagged
"sun", and public photo 11 owned by bob. Both photos are in Holidays.
*/
func NewFixture(t *testing.T) Fixture {
	t.Helper()

	ctx := context.Background()

	s, err := storage.Open(storage.Config{
		StoreDriver: storage.DriverSqlite,
		DSN:         "file:" + filepath.Join(t.TempDir(), "site.db") + "?_pragma=foreign_keys(1)",
	})

	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	hasher, err := services.NewPasswordHasher(services.PasswordModeLegacySha256, 0)
	require.NoError(t, err)

	userService := services.NewUserService(services.UserServiceConfig{Hasher: hasher, Store: s.Users})

	_, err = userService.Register(ctx, services.RegisterRequest{ID: 1, Name: "Alice", Email: "alice@example.com", Password: "secret", ConfirmPassword: "secret"})
	require.NoError(t, err)
	_, err = userService.Register(ctx, services.RegisterRequest{ID: 2, Name: "Bob", Email: "bob@example.com", Password: "hunter2", ConfirmPassword: "hunter2"})
	require.NoError(t, err)

	require.NoError(t, s.Albums.Create(ctx, &models.Album{ID: 1, Name: "Holidays"}))
	require.NoError(t, s.Photos.Create(ctx, &models.Photo{ID: 10, OwnerID: 1, Filename: "beach.jpg", Title: "Beach", Tags: []string{"sun"}, Albums: []int{1}}))
	require.NoError(t, s.Photos.Create(ctx, &models.Photo{ID: 11, OwnerID: 2, Filename: "dog.jpg", Title: "Dog", Albums: []int{1}, IsPublic: true}))

	renderer, err := rendering.NewGoTemplateRenderer(rendering.GoTemplateRendererConfig{
		TemplateDir:       "app",
		TemplateExtension: ".html",
		TemplateFS:        os.DirFS(websiteDir()),
		PagesDir:          "pages",
	})

	require.NoError(t, err)

	return Fixture{
		Stores:         s,
		Renderer:       renderer,
		UserService:    userService,
		SessionService: services.NewSessionService(services.SessionServiceConfig{Store: s.Sessions}),
		CatalogService: services.NewCatalogService(services.CatalogServiceConfig{
			Access:     services.NewAccessService(),
			AlbumStore: s.Albums,
			PhotoStore: s.Photos,
			UserStore:  s.Users,
		}),
		MediaService: services.NewMediaService(services.MediaServiceConfig{}),
	}
}

/*
AsUser returns a copy of r carrying the user the session middleware would
have resolved.
*/
func (f Fixture) AsUser(t *testing.T, r *http.Request, userID int) *http.Request {
	t.Helper()

	user, err := f.UserService.GetUser(r.Context(), userID)
	require.NoError(t, err)

	ctx := context.WithValue(r.Context(), "user", user)
	return r.WithContext(ctx)
}

func websiteDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}
