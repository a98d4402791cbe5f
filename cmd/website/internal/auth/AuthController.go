package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/mediacatalog/cmd/website/internal/viewmodels"
	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/services"
)

type AuthControllerConfig struct {
	CookieSession  sessions.Session[*models.SessionCookie]
	Renderer       rendering.TemplateRenderer
	SessionService services.SessionServicer
	UserService    services.UserServicer
}

type AuthController struct {
	cookieSession  sessions.Session[*models.SessionCookie]
	renderer       rendering.TemplateRenderer
	sessionService services.SessionServicer
	userService    services.UserServicer
}

func NewAuthController(config AuthControllerConfig) AuthController {
	return AuthController{
		cookieSession:  config.CookieSession,
		renderer:       config.Renderer,
		sessionService: config.SessionService,
		userService:    config.UserService,
	}
}

/*
GET /, GET /login
*/
func (c AuthController) LoginPage(w http.ResponseWriter, r *http.Request) {
	viewData := viewmodels.LoginPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
	}

	switch httphelpers.GetFromRequest[string](r, "reason") {
	case "required":
		viewData.IsWarning = true
		viewData.Message = "Please log in to continue."

	case "expired":
		viewData.IsWarning = true
		viewData.Message = "Your session has expired. Please log in again."

	case "loggedout":
		viewData.Message = "You have been logged out."
	}

	c.renderer.Render("pages/login", viewData, w)
}

/*
POST /login
*/
func (c AuthController) LoginAction(w http.ResponseWriter, r *http.Request) {
	var (
		err     error
		user    *models.User
		session models.Session
	)

	pageName := "pages/login"

	viewData := viewmodels.LoginPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
		Email: httphelpers.GetFromRequest[string](r, "email"),
	}

	password := httphelpers.GetFromRequest[string](r, "password")

	if user, err = c.userService.ValidateCredentials(r.Context(), viewData.Email, password); err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			viewData.IsWarning = true
			viewData.Message = "Invalid email or password"

			c.renderer.Render(pageName, viewData, w)
			return
		}

		slog.Error("error validating credentials", "error", err)
		viewData.IsError = true
		viewData.Message = "An unexpected error occurred. Please try again later."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	/*
	 * Setup the session and redirect to the happy place
	 */
	if session, err = c.sessionService.Start(r.Context(), models.SessionPayload{UserID: user.ID}); err != nil {
		slog.Error("error starting session", "error", err, "userID", user.ID)
		viewData.IsError = true
		viewData.Message = "An unexpected error occurred. Please try again later."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	if err = c.cookieSession.Set(r, &models.SessionCookie{Key: session.Key}); err != nil {
		slog.Error("error setting session cookie", "error", err)
	}

	if err = c.cookieSession.Save(w, r); err != nil {
		slog.Error("error saving session cookie", "error", err)
	}

	http.Redirect(w, r, "/home", http.StatusFound)
}

/*
GET /logout
*/
func (c AuthController) LogoutAction(w http.ResponseWriter, r *http.Request) {
	if cookie, err := c.cookieSession.Get(r); err == nil && cookie != nil {
		if err = c.sessionService.End(r.Context(), cookie.Key); err != nil {
			slog.Error("error ending session", "error", err)
		}
	}

	_ = c.cookieSession.Destroy(w, r)
	_ = c.cookieSession.Save(w, r)
	http.Redirect(w, r, "/login?reason=loggedout", http.StatusFound)
}

/*
GET /register
*/
func (c AuthController) RegisterPage(w http.ResponseWriter, r *http.Request) {
	viewData := viewmodels.RegisterPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
	}

	c.renderer.Render("pages/register", viewData, w)
}

/*
POST /register
*/
func (c AuthController) RegisterAction(w http.ResponseWriter, r *http.Request) {
	var (
		err error
	)

	pageName := "pages/register"

	viewData := viewmodels.RegisterPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
		ID:    httphelpers.GetFromRequest[int](r, "id"),
		Name:  httphelpers.GetFromRequest[string](r, "name"),
		Email: httphelpers.GetFromRequest[string](r, "email"),
	}

	request := services.RegisterRequest{
		ID:              viewData.ID,
		Name:            viewData.Name,
		Email:           viewData.Email,
		Password:        httphelpers.GetFromRequest[string](r, "password"),
		ConfirmPassword: httphelpers.GetFromRequest[string](r, "confirmPassword"),
	}

	if _, err = c.userService.Register(r.Context(), request); err != nil {
		viewData.IsWarning = true

		switch {
		case errors.Is(err, models.ErrUserUnavailable):
			viewData.Message = "User already exists"

		case errors.Is(err, models.ErrPasswordMismatch):
			viewData.Message = "Passwords do not match"

		case errors.Is(err, models.ErrValidation):
			viewData.Message = "Please fill in every field. The ID must be a positive number."

		default:
			slog.Error("error registering user", "error", err, "email", viewData.Email)
			viewData.IsWarning = false
			viewData.IsError = true
			viewData.Message = "An unexpected error occurred. Please try again later."
		}

		c.renderer.Render(pageName, viewData, w)
		return
	}

	loginData := viewmodels.LoginPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx:  httphelpers.IsHtmx(r),
			Message: "Account created successfully!",
		},
		Email: viewData.Email,
	}

	c.renderer.Render("pages/login", loginData, w)
}
