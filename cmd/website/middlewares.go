package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/services"
)

/*
newSessionMiddleware resolves the session key carried in the cookie to a
live server side session and its user. Anything short of that sends the
browser to the login page.
*/
func newSessionMiddleware(
	cookieSession sessions.Session[*models.SessionCookie],
	sessionService services.SessionServicer,
	userService services.UserServicer,
	excludedPaths []string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				err     error
				cookie  *models.SessionCookie
				session models.Session
				user    *models.User
			)

			path := r.URL.Path

			/*
			 * If this path is excluded, keep going.
			 */
			for _, excludedPath := range excludedPaths {
				if strings.HasPrefix(path, excludedPath) {
					next.ServeHTTP(w, r)
					return
				}
			}

			if cookie, err = cookieSession.Get(r); err != nil || cookie == nil {
				http.Redirect(w, r, "/login?reason=required", http.StatusFound)
				return
			}

			if session, err = sessionService.Lookup(r.Context(), cookie.Key); err != nil {
				http.Redirect(w, r, "/login?reason=expired", http.StatusFound)
				return
			}

			if user, err = userService.GetUser(r.Context(), session.Payload.UserID); err != nil {
				_ = sessionService.End(r.Context(), session.Key)
				http.Redirect(w, r, "/login?reason=expired", http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), "user", user)
			ctx = context.WithValue(ctx, "sessionKey", session.Key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
