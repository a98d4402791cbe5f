package main

import (
	"context"
	"encoding/gob"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/mediacatalog/cmd/website/internal/testsupport"
	"github.com/adampresley/mediacatalog/cmd/website/internal/viewmodels"
	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionMiddleware(t *testing.T) {
	gob.Register(&models.SessionCookie{})

	fixture := testsupport.NewFixture(t)
	cookieSession := sessions.NewSessionWrapper[*models.SessionCookie](sessions.NewCookieStore("test-secret"), "mediacatalog", "session")

	mw := newSessionMiddleware(cookieSession, fixture.SessionService, fixture.UserService, []string{"/static"})

	var seen *models.User

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = viewmodels.GetUserFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	cookiesFor := func(key string) []*http.Cookie {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		require.NoError(t, cookieSession.Set(r, &models.SessionCookie{Key: key}))
		require.NoError(t, cookieSession.Save(w, r))
		return w.Result().Cookies()
	}

	request := func(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, path, nil)

		for _, cookie := range cookies {
			r.AddCookie(cookie)
		}

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	t.Run("no cookie redirects to login", func(t *testing.T) {
		w := request("/home", nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?reason=required", w.Header().Get("Location"))
	})

	t.Run("unknown session key redirects to login", func(t *testing.T) {
		w := request("/home", cookiesFor("forged"))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?reason=expired", w.Header().Get("Location"))
	})

	t.Run("live session puts the user in context", func(t *testing.T) {
		session, err := fixture.SessionService.Start(context.Background(), models.SessionPayload{UserID: 2})
		require.NoError(t, err)

		w := request("/home", cookiesFor(session.Key))

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "Bob", seen.Name)
	})

	t.Run("excluded paths pass through", func(t *testing.T) {
		w := request("/static/css/site.css", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
