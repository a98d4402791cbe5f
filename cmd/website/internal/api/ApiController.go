/*
Package api is the JSON face of the catalog. It is served by gin under
/api/ and authenticates with the same server side sessions as the web
pages, passed as "Authorization: Bearer <session key>".
*/
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/services"
	"github.com/gin-gonic/gin"
)

type ApiControllerConfig struct {
	CatalogService services.CatalogServicer
	SessionService services.SessionServicer
	UserService    services.UserServicer
}

type ApiController struct {
	catalogService services.CatalogServicer
	sessionService services.SessionServicer
	userService    services.UserServicer
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	SessionKey string       `json:"sessionKey"`
	ExpiresAt  time.Time    `json:"expiresAt"`
	User       *models.User `json:"user"`
}

type detailsRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type tagRequest struct {
	Tag string `json:"tag"`
}

type visibilityRequest struct {
	Visibility string `json:"visibility"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type photoResponse struct {
	models.Photo
	AlbumNames string `json:"albumNames"`
}

type userResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type albumPhotosResponse struct {
	Album  *models.Album   `json:"album"`
	Photos []models.Photo `json:"photos"`
}

func NewApiController(config ApiControllerConfig) ApiController {
	return ApiController{
		catalogService: config.CatalogService,
		sessionService: config.SessionService,
		userService:    config.UserService,
	}
}

/*
NewRouter builds the gin engine with every API route. Paths keep their
/api prefix so the engine can be mounted as-is on the site's mux.
*/
func NewRouter(controller ApiController) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	group := router.Group("/api")
	group.POST("/login", controller.Login)

	authed := group.Group("", controller.RequireSession())
	authed.POST("/logout", controller.Logout)
	authed.GET("/users", controller.Users)
	authed.GET("/photos", controller.ReadablePhotos)
	authed.GET("/photos/mine", controller.MyPhotos)
	authed.GET("/photos/public", controller.PublicPhotos)
	authed.GET("/photos/:id", controller.GetPhoto)
	authed.PATCH("/photos/:id", controller.UpdateDetails)
	authed.POST("/photos/:id/tags", controller.AddTag)
	authed.PUT("/photos/:id/visibility", controller.ChangeVisibility)
	authed.POST("/photos/:id/comments", controller.AddComment)
	authed.GET("/albums", controller.Albums)
	authed.GET("/albums/:name/photos", controller.AlbumPhotos)

	return router
}

func (a ApiController) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := httphelpers.GetAuthorizationBearer(c.Request)

		if err != nil || key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}

		session, err := a.sessionService.Lookup(c.Request.Context(), key)

		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}

		c.Set("userID", session.Payload.UserID)
		c.Set("sessionKey", session.Key)
		c.Next()
	}
}

/*
POST /api/login
*/
func (a ApiController) Login(c *gin.Context) {
	var (
		err     error
		request loginRequest
		user    *models.User
		session models.Session
	)

	if err = c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	if user, err = a.userService.ValidateCredentials(c.Request.Context(), request.Email, request.Password); err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
			return
		}

		writeError(c, err)
		return
	}

	if session, err = a.sessionService.Start(c.Request.Context(), models.SessionPayload{UserID: user.ID}); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		SessionKey: session.Key,
		ExpiresAt:  session.Expiry,
		User:       user,
	})
}

/*
POST /api/logout
*/
func (a ApiController) Logout(c *gin.Context) {
	if err := a.sessionService.End(c.Request.Context(), c.GetString("sessionKey")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

/*
GET /api/users
*/
func (a ApiController) Users(c *gin.Context) {
	users, err := a.userService.GetAll(c.Request.Context())

	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, slices.Map(users, func(user models.User, _ int) userResponse {
		return userResponse{ID: user.ID, Name: user.Name}
	}))
}

/*
GET /api/photos
*/
func (a ApiController) ReadablePhotos(c *gin.Context) {
	photos, err := a.catalogService.ListReadablePhotos(c.Request.Context(), c.GetInt("userID"))

	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, photos)
}

/*
GET /api/photos/mine
*/
func (a ApiController) MyPhotos(c *gin.Context) {
	photos, err := a.catalogService.ListMyPhotos(c.Request.Context(), c.GetInt("userID"))

	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, photos)
}

/*
GET /api/photos/public
*/
func (a ApiController) PublicPhotos(c *gin.Context) {
	photos, err := a.catalogService.ListPublicPhotos(c.Request.Context(), c.GetInt("userID"))

	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, photos)
}

/*
GET /api/photos/:id
*/
func (a ApiController) GetPhoto(c *gin.Context) {
	photoID, ok := photoIDParam(c)

	if !ok {
		return
	}

	a.writePhoto(c, http.StatusOK, photoID)
}

/*
PATCH /api/photos/:id
*/
func (a ApiController) UpdateDetails(c *gin.Context) {
	var (
		request detailsRequest
	)

	photoID, ok := photoIDParam(c)

	if !ok {
		return
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if err := a.catalogService.UpdateDetails(c.Request.Context(), c.GetInt("userID"), photoID, request.Title, request.Description); err != nil {
		writeError(c, err)
		return
	}

	a.writePhoto(c, http.StatusOK, photoID)
}

/*
POST /api/photos/:id/tags
*/
func (a ApiController) AddTag(c *gin.Context) {
	var (
		request tagRequest
	)

	photoID, ok := photoIDParam(c)

	if !ok {
		return
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if err := a.catalogService.AddTag(c.Request.Context(), c.GetInt("userID"), photoID, request.Tag); err != nil {
		writeError(c, err)
		return
	}

	a.writePhoto(c, http.StatusCreated, photoID)
}

/*
PUT /api/photos/:id/visibility
*/
func (a ApiController) ChangeVisibility(c *gin.Context) {
	var (
		request visibilityRequest
	)

	photoID, ok := photoIDParam(c)

	if !ok {
		return
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if err := a.catalogService.ChangeVisibility(c.Request.Context(), c.GetInt("userID"), photoID, request.Visibility); err != nil {
		writeError(c, err)
		return
	}

	a.writePhoto(c, http.StatusOK, photoID)
}

/*
POST /api/photos/:id/comments
*/
func (a ApiController) AddComment(c *gin.Context) {
	var (
		request commentRequest
	)

	photoID, ok := photoIDParam(c)

	if !ok {
		return
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	comment, err := a.catalogService.AddComment(c.Request.Context(), c.GetInt("userID"), photoID, request.Text)

	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

/*
GET /api/albums
*/
func (a ApiController) Albums(c *gin.Context) {
	albums, err := a.catalogService.ListAlbums(c.Request.Context())

	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, albums)
}

/*
GET /api/albums/:name/photos
*/
func (a ApiController) AlbumPhotos(c *gin.Context) {
	album, photos, err := a.catalogService.ListAlbumPhotos(c.Request.Context(), c.GetInt("userID"), c.Param("name"))

	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, albumPhotosResponse{Album: album, Photos: photos})
}

func (a ApiController) writePhoto(c *gin.Context, status, photoID int) {
	photo, err := a.catalogService.GetPhoto(c.Request.Context(), c.GetInt("userID"), photoID)

	if err != nil {
		writeError(c, err)
		return
	}

	albumNames, err := a.catalogService.AlbumNames(c.Request.Context(), photo.Albums)

	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(status, photoResponse{Photo: *photo, AlbumNames: albumNames})
}

func photoIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))

	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid photo id"})
		return 0, false
	}

	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrSessionInvalid), errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})

	case errors.Is(err, models.ErrPhotoNotFound), errors.Is(err, models.ErrAlbumNotFound), errors.Is(err, models.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})

	case errors.Is(err, models.ErrTagExists):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})

	case errors.Is(err, models.ErrEmptyTag), errors.Is(err, models.ErrEmptyComment), errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})

	default:
		slog.Error("unexpected api error", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"message": "an unexpected error occurred"})
	}
}
