package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/slices"
	internalmodels "github.com/adampresley/mediacatalog/cmd/website/internal/models"
	"github.com/adampresley/mediacatalog/cmd/website/internal/viewmodels"
	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/services"
)

type resultMessage struct {
	message   string
	isWarning bool
}

/*
Photo actions redirect back to the photo page with a result code so a
refresh never repeats the post.
*/
var resultMessages = map[string]resultMessage{
	"updated":      {message: "Photo details saved."},
	"tagadded":     {message: "Tag added."},
	"tagexists":    {message: "That tag is already on this photo.", isWarning: true},
	"tagempty":     {message: "Tags cannot be blank.", isWarning: true},
	"visibility":   {message: "Visibility changed."},
	"commented":    {message: "Comment added."},
	"commentempty": {message: "Comments cannot be blank.", isWarning: true},
	"failed":       {message: "That change could not be saved.", isWarning: true},
}

type CatalogControllerConfig struct {
	CatalogService services.CatalogServicer
	MediaService   services.MediaServicer
	Renderer       rendering.TemplateRenderer
}

type CatalogController struct {
	catalogService services.CatalogServicer
	mediaService   services.MediaServicer
	renderer       rendering.TemplateRenderer
}

func NewCatalogController(config CatalogControllerConfig) CatalogController {
	return CatalogController{
		catalogService: config.CatalogService,
		mediaService:   config.MediaService,
		renderer:       config.Renderer,
	}
}

/*
GET /home
*/
func (c CatalogController) HomePage(w http.ResponseWriter, r *http.Request) {
	var (
		err          error
		myPhotos     []models.Photo
		publicPhotos []models.Photo
	)

	pageName := "pages/home"

	viewData := viewmodels.HomePage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			User:   viewmodels.GetUserFromContext(r),
		},
		MyPhotos:     []internalmodels.PhotoCard{},
		PublicPhotos: []internalmodels.PhotoCard{},
		Albums:       []models.Album{},
	}

	userID := viewData.User.ID

	if myPhotos, err = c.catalogService.ListMyPhotos(r.Context(), userID); err != nil {
		slog.Error("error listing user's photos", "error", err, "userID", userID)
		viewData.IsError = true
		viewData.Message = "An unexpected error occurred. Please try again later."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	if publicPhotos, err = c.catalogService.ListPublicPhotos(r.Context(), userID); err != nil {
		slog.Error("error listing public photos", "error", err, "userID", userID)
		viewData.IsError = true
		viewData.Message = "An unexpected error occurred. Please try again later."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	if viewData.Albums, err = c.catalogService.ListAlbums(r.Context()); err != nil {
		slog.Error("error listing albums", "error", err)
		viewData.IsError = true
		viewData.Message = "An unexpected error occurred. Please try again later."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.MyPhotos = slices.Map(myPhotos, c.convertPhotoToCard)
	viewData.PublicPhotos = slices.Map(publicPhotos, c.convertPhotoToCard)

	c.renderer.Render(pageName, viewData, w)
}

/*
GET /album/{name}
*/
func (c CatalogController) AlbumPage(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		album  *models.Album
		photos []models.Photo
	)

	pageName := "pages/album"

	viewData := viewmodels.AlbumPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			User:   viewmodels.GetUserFromContext(r),
		},
		AlbumName: httphelpers.GetFromRequest[string](r, "name"),
		Photos:    []internalmodels.PhotoCard{},
	}

	if album, photos, err = c.catalogService.ListAlbumPhotos(r.Context(), viewData.User.ID, viewData.AlbumName); err != nil {
		if errors.Is(err, models.ErrAlbumNotFound) {
			viewData.IsWarning = true
			viewData.Message = "Album not found"

			c.renderer.Render(pageName, viewData, w)
			return
		}

		slog.Error("error listing album photos", "error", err, "album", viewData.AlbumName)
		viewData.IsError = true
		viewData.Message = "An unexpected error occurred. Please try again later."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.AlbumName = album.Name
	viewData.Photos = slices.Map(photos, c.convertPhotoToCard)

	c.renderer.Render(pageName, viewData, w)
}

/*
GET /photo/{id}
*/
func (c CatalogController) PhotoPage(w http.ResponseWriter, r *http.Request) {
	var (
		err   error
		photo *models.Photo
	)

	pageName := "pages/photo"

	viewData := viewmodels.PhotoPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			User:   viewmodels.GetUserFromContext(r),
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/pages/photo.js"},
			},
		},
	}

	photoID := httphelpers.GetFromRequest[int](r, "id")

	if photo, err = c.catalogService.GetPhoto(r.Context(), viewData.User.ID, photoID); err != nil {
		c.renderPhotoError(pageName, &viewData.BaseViewModel, &viewData, err, photoID, w)
		return
	}

	if result, ok := resultMessages[httphelpers.GetFromRequest[string](r, "result")]; ok {
		viewData.Message = result.message
		viewData.IsWarning = result.isWarning
	}

	viewData.Photo = c.convertPhotoToDetail(r, photo)
	viewData.CanWrite = photo.OwnerID == viewData.User.ID

	c.renderer.Render(pageName, viewData, w)
}

/*
GET /photo/{id}/edit
*/
func (c CatalogController) EditPhotoPage(w http.ResponseWriter, r *http.Request) {
	var (
		err   error
		photo *models.Photo
	)

	pageName := "pages/edit-photo"

	viewData := viewmodels.EditPhotoPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			User:   viewmodels.GetUserFromContext(r),
		},
		PhotoID: httphelpers.GetFromRequest[int](r, "id"),
	}

	if photo, err = c.catalogService.GetPhoto(r.Context(), viewData.User.ID, viewData.PhotoID); err != nil {
		c.renderPhotoError(pageName, &viewData.BaseViewModel, &viewData, err, viewData.PhotoID, w)
		return
	}

	if photo.OwnerID != viewData.User.ID {
		viewData.IsWarning = true
		viewData.Message = "Photo not found"

		c.renderer.Render(pageName, viewData, w)
		return
	}

	viewData.Title = photo.Title
	viewData.Description = photo.Description

	c.renderer.Render(pageName, viewData, w)
}

/*
POST /photo/{id}/edit
*/
func (c CatalogController) EditPhotoAction(w http.ResponseWriter, r *http.Request) {
	var (
		err error
	)

	pageName := "pages/edit-photo"

	viewData := viewmodels.EditPhotoPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			User:   viewmodels.GetUserFromContext(r),
		},
		PhotoID:     httphelpers.GetFromRequest[int](r, "id"),
		Title:       httphelpers.GetFromRequest[string](r, "title"),
		Description: httphelpers.GetFromRequest[string](r, "description"),
	}

	err = c.catalogService.UpdateDetails(r.Context(), viewData.User.ID, viewData.PhotoID, viewData.Title, viewData.Description)

	if err != nil {
		if !errors.Is(err, models.ErrPhotoNotFound) {
			slog.Error("error updating photo details", "error", err, "photoID", viewData.PhotoID)
		}

		viewData.IsWarning = true
		viewData.Message = "Photo could not be updated"

		c.renderer.Render(pageName, viewData, w)
		return
	}

	c.redirectToPhoto(w, r, viewData.PhotoID, "updated")
}

/*
POST /photo/{id}/tags
*/
func (c CatalogController) AddTagAction(w http.ResponseWriter, r *http.Request) {
	user := viewmodels.GetUserFromContext(r)
	photoID := httphelpers.GetFromRequest[int](r, "id")
	tag := httphelpers.GetFromRequest[string](r, "tag")

	err := c.catalogService.AddTag(r.Context(), user.ID, photoID, tag)

	switch {
	case err == nil:
		c.redirectToPhoto(w, r, photoID, "tagadded")

	case errors.Is(err, models.ErrTagExists):
		c.redirectToPhoto(w, r, photoID, "tagexists")

	case errors.Is(err, models.ErrEmptyTag):
		c.redirectToPhoto(w, r, photoID, "tagempty")

	default:
		c.logUnexpected("error adding tag", err, photoID)
		c.redirectToPhoto(w, r, photoID, "failed")
	}
}

/*
POST /photo/{id}/visibility
*/
func (c CatalogController) ChangeVisibilityAction(w http.ResponseWriter, r *http.Request) {
	user := viewmodels.GetUserFromContext(r)
	photoID := httphelpers.GetFromRequest[int](r, "id")
	visibility := httphelpers.GetFromRequest[string](r, "visibility")

	if err := c.catalogService.ChangeVisibility(r.Context(), user.ID, photoID, visibility); err != nil {
		c.logUnexpected("error changing visibility", err, photoID)
		c.redirectToPhoto(w, r, photoID, "failed")
		return
	}

	c.redirectToPhoto(w, r, photoID, "visibility")
}

/*
POST /photo/{id}/comments
*/
func (c CatalogController) AddCommentAction(w http.ResponseWriter, r *http.Request) {
	user := viewmodels.GetUserFromContext(r)
	photoID := httphelpers.GetFromRequest[int](r, "id")
	text := httphelpers.GetFromRequest[string](r, "text")

	_, err := c.catalogService.AddComment(r.Context(), user.ID, photoID, text)

	switch {
	case err == nil:
		c.redirectToPhoto(w, r, photoID, "commented")

	case errors.Is(err, models.ErrEmptyComment):
		c.redirectToPhoto(w, r, photoID, "commentempty")

	default:
		c.logUnexpected("error adding comment", err, photoID)
		c.redirectToPhoto(w, r, photoID, "failed")
	}
}

func (c CatalogController) renderPhotoError(pageName string, base *viewmodels.BaseViewModel, viewData any, err error, photoID int, w http.ResponseWriter) {
	if errors.Is(err, models.ErrPhotoNotFound) {
		base.IsWarning = true
		base.Message = "Photo not found"
	} else {
		slog.Error("error getting photo", "error", err, "photoID", photoID)
		base.IsError = true
		base.Message = "An unexpected error occurred. Please try again later."
	}

	c.renderer.Render(pageName, viewData, w)
}

func (c CatalogController) redirectToPhoto(w http.ResponseWriter, r *http.Request, photoID int, result string) {
	http.Redirect(w, r, fmt.Sprintf("/photo/%d?result=%s", photoID, result), http.StatusSeeOther)
}

func (c CatalogController) logUnexpected(message string, err error, photoID int) {
	if errors.Is(err, models.ErrPhotoNotFound) {
		return
	}

	slog.Error(message, "error", err, "photoID", photoID)
}

func (c CatalogController) convertPhotoToCard(photo models.Photo, index int) internalmodels.PhotoCard {
	return internalmodels.PhotoCard{
		ID:         photo.ID,
		Title:      photo.Title,
		Filename:   photo.Filename,
		Resolution: photo.Resolution,
		IsPublic:   photo.IsPublic,
		ImageURL:   c.mediaService.PhotoURL(photo),
	}
}

func (c CatalogController) convertPhotoToDetail(r *http.Request, photo *models.Photo) internalmodels.PhotoDetail {
	var (
		err        error
		albumNames string
	)

	if albumNames, err = c.catalogService.AlbumNames(r.Context(), photo.Albums); err != nil {
		slog.Error("error resolving album names", "error", err, "photoID", photo.ID)
	}

	result := internalmodels.PhotoDetail{
		ID:          photo.ID,
		OwnerID:     photo.OwnerID,
		Title:       photo.Title,
		Description: photo.Description,
		Filename:    photo.Filename,
		Resolution:  photo.Resolution,
		Tags:        photo.Tags,
		AlbumNames:  albumNames,
		IsPublic:    photo.IsPublic,
		Visibility:  "private",
		ImageURL:    c.mediaService.PhotoURL(*photo),
		Comments: slices.Map(photo.Comments, func(comment models.Comment, index int) internalmodels.Comment {
			return internalmodels.Comment{
				UserName:  comment.UserName,
				Text:      comment.Text,
				CreatedAt: comment.CreatedAt.Format("Jan _2, 2006 3:04 PM"),
			}
		}),
	}

	if photo.IsPublic {
		result.Visibility = "public"
	}

	if !photo.Date.IsZero() {
		result.Date = photo.Date.Format("Jan _2, 2006")
	}

	return result
}
