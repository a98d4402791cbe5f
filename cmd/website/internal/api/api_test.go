package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/adampresley/mediacatalog/cmd/website/internal/api"
	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/services"
	"github.com/adampresley/mediacatalog/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	router         *gin.Engine
	sessionService *services.SessionService
}

/*
newFixture wires the API over a fresh SQLite catalog: alice (1) owns
private photo 10 in Holidays, bob (2) owns public photo 11 in Holidays.
*/
func newFixture(t *testing.T) apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()

	s, err := storage.Open(storage.Config{
		StoreDriver: storage.DriverSqlite,
		DSN:         "file:" + filepath.Join(t.TempDir(), "api.db") + "?_pragma=foreign_keys(1)",
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
	require.NoError(t, s.Photos.Create(ctx, &models.Photo{ID: 11, OwnerID: 2, Filename: "dog.jpg", Albums: []int{1}, IsPublic: true}))

	sessionService := services.NewSessionService(services.SessionServiceConfig{Store: s.Sessions})

	catalogService := services.NewCatalogService(services.CatalogServiceConfig{
		Access:     services.NewAccessService(),
		AlbumStore: s.Albums,
		PhotoStore: s.Photos,
		UserStore:  s.Users,
	})

	controller := api.NewApiController(api.ApiControllerConfig{
		CatalogService: catalogService,
		SessionService: sessionService,
		UserService:    userService,
	})

	return apiFixture{
		router:         api.NewRouter(controller),
		sessionService: sessionService,
	}
}

func (f apiFixture) do(t *testing.T, method, path, key string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f apiFixture) login(t *testing.T, email, password string) string {
	t.Helper()

	w := f.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		SessionKey string `json:"sessionKey"`
	}

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.SessionKey)
	return response.SessionKey
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["message"]
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	t.Run("valid credentials return a session key", func(t *testing.T) {
		key := f.login(t, "alice@example.com", "secret")
		assert.True(t, f.sessionService.IsValid(context.Background(), key))
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "alice@example.com", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid email or password", decodeMessage(t, w))
	})

	t.Run("missing fields are a bad request", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "alice@example.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRequireSession(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/photos/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", decodeMessage(t, w))

	w = f.do(t, http.MethodGet, "/api/photos/mine", "not-a-session", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutEndsSession(t *testing.T) {
	f := newFixture(t)
	key := f.login(t, "alice@example.com", "secret")

	w := f.do(t, http.MethodPost, "/api/logout", key, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/photos/mine", key, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPhotoListings(t *testing.T) {
	f := newFixture(t)
	key := f.login(t, "alice@example.com", "secret")

	var photos []models.Photo

	w := f.do(t, http.MethodGet, "/api/photos/mine", key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &photos))
	require.Len(t, photos, 1)
	assert.Equal(t, 10, photos[0].ID)

	w = f.do(t, http.MethodGet, "/api/photos/public", key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &photos))
	require.Len(t, photos, 1)
	assert.Equal(t, 11, photos[0].ID)
}

func TestReadablePhotos(t *testing.T) {
	f := newFixture(t)

	var photos []models.Photo

	w := f.do(t, http.MethodGet, "/api/photos", f.login(t, "alice@example.com", "secret"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &photos))
	assert.Len(t, photos, 2)

	w = f.do(t, http.MethodGet, "/api/photos", f.login(t, "bob@example.com", "hunter2"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &photos))
	require.Len(t, photos, 1)
	assert.Equal(t, 11, photos[0].ID)
}

func TestUsersListsNamesWithoutEmails(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/users", f.login(t, "alice@example.com", "secret"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "@example.com")

	var users []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].Name)
	assert.Equal(t, "Bob", users[1].Name)

	w = f.do(t, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetPhoto(t *testing.T) {
	f := newFixture(t)
	aliceKey := f.login(t, "alice@example.com", "secret")
	bobKey := f.login(t, "bob@example.com", "hunter2")

	w := f.do(t, http.MethodGet, "/api/photos/10", aliceKey, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var photo struct {
		ID         int    `json:"id"`
		AlbumNames string `json:"albumNames"`
	}

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &photo))
	assert.Equal(t, 10, photo.ID)
	assert.Equal(t, "Holidays", photo.AlbumNames)

	w = f.do(t, http.MethodGet, "/api/photos/10", bobKey, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "private photos look missing to others")

	w = f.do(t, http.MethodGet, "/api/photos/999", aliceKey, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/photos/abc", aliceKey, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateDetails(t *testing.T) {
	f := newFixture(t)
	aliceKey := f.login(t, "alice@example.com", "secret")
	bobKey := f.login(t, "bob@example.com", "hunter2")

	w := f.do(t, http.MethodPatch, "/api/photos/10", aliceKey, map[string]string{"title": "Sunset", "description": "  "})
	require.Equal(t, http.StatusOK, w.Code)

	var photo models.Photo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &photo))
	assert.Equal(t, "Sunset", photo.Title)

	w = f.do(t, http.MethodPatch, "/api/photos/11", aliceKey, map[string]string{"title": "Mine now"})
	assert.Equal(t, http.StatusNotFound, w.Code, "public is readable, not writable")

	w = f.do(t, http.MethodPatch, "/api/photos/10", bobKey, map[string]string{"title": "Nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddTag(t *testing.T) {
	f := newFixture(t)
	key := f.login(t, "alice@example.com", "secret")

	w := f.do(t, http.MethodPost, "/api/photos/10/tags", key, map[string]string{"tag": " sea "})
	require.Equal(t, http.StatusCreated, w.Code)

	var photo models.Photo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &photo))
	assert.Equal(t, []string{"sun", "sea"}, photo.Tags)

	w = f.do(t, http.MethodPost, "/api/photos/10/tags", key, map[string]string{"tag": "sun"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/photos/10/tags", key, map[string]string{"tag": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangeVisibility(t *testing.T) {
	f := newFixture(t)
	aliceKey := f.login(t, "alice@example.com", "secret")
	bobKey := f.login(t, "bob@example.com", "hunter2")

	w := f.do(t, http.MethodPut, "/api/photos/10/visibility", aliceKey, map[string]string{"visibility": "public"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/photos/10", bobKey, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPut, "/api/photos/10/visibility", aliceKey, map[string]string{"visibility": "Public"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/photos/10", bobKey, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "anything but 'public' is private")
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	aliceKey := f.login(t, "alice@example.com", "secret")
	bobKey := f.login(t, "bob@example.com", "hunter2")

	w := f.do(t, http.MethodPost, "/api/photos/11/comments", aliceKey, map[string]string{"text": "Good dog"})
	require.Equal(t, http.StatusCreated, w.Code)

	var comment models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comment))
	assert.Equal(t, "Alice", comment.UserName)
	assert.Equal(t, "Good dog", comment.Text)

	w = f.do(t, http.MethodPost, "/api/photos/10/comments", bobKey, map[string]string{"text": "sneaky"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/photos/11/comments", aliceKey, map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAlbums(t *testing.T) {
	f := newFixture(t)
	bobKey := f.login(t, "bob@example.com", "hunter2")

	w := f.do(t, http.MethodGet, "/api/albums", bobKey, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var albums []models.Album
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &albums))
	require.Len(t, albums, 1)

	w = f.do(t, http.MethodGet, "/api/albums/holidays/photos", bobKey, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Album  models.Album   `json:"album"`
		Photos []models.Photo `json:"photos"`
	}

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Holidays", response.Album.Name)
	require.Len(t, response.Photos, 1, "bob only sees his own photo and public ones")
	assert.Equal(t, 11, response.Photos[0].ID)

	w = f.do(t, http.MethodGet, "/api/albums/nowhere/photos", bobKey, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
