package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/stores"
)

type CatalogServicer interface {
	AddComment(ctx context.Context, userID, photoID int, text string) (models.Comment, error)
	AddTag(ctx context.Context, userID, photoID int, tag string) error
	AlbumNames(ctx context.Context, albumIDs []int) (string, error)
	ChangeVisibility(ctx context.Context, userID, photoID int, visibility string) error
	FindAlbumByName(ctx context.Context, name string) (*models.Album, error)
	GetPhoto(ctx context.Context, userID, photoID int) (*models.Photo, error)
	ListAlbumPhotos(ctx context.Context, userID int, albumName string) (*models.Album, []models.Photo, error)
	ListAlbums(ctx context.Context) ([]models.Album, error)
	ListMyPhotos(ctx context.Context, userID int) ([]models.Photo, error)
	ListPublicPhotos(ctx context.Context, userID int) ([]models.Photo, error)
	ListReadablePhotos(ctx context.Context, userID int) ([]models.Photo, error)
	UpdateDetails(ctx context.Context, userID, photoID int, title, description string) error
}

/*
CommentListener is told about every comment after it has been stored.
*/
type CommentListener interface {
	CommentAdded(ctx context.Context, photo models.Photo, comment models.Comment)
}

type CatalogServiceConfig struct {
	Access           AccessService
	AlbumStore       stores.AlbumStorer
	CommentListeners []CommentListener
	Now              func() time.Time
	PhotoStore       stores.PhotoStorer
	UserStore        stores.UserStorer
}

type CatalogService struct {
	access           AccessService
	albumStore       stores.AlbumStorer
	commentListeners []CommentListener
	now              func() time.Time
	photoStore       stores.PhotoStorer
	userStore        stores.UserStorer
}

func NewCatalogService(config CatalogServiceConfig) CatalogService {
	if config.Now == nil {
		config.Now = time.Now
	}

	return CatalogService{
		access:           config.Access,
		albumStore:       config.AlbumStore,
		commentListeners: config.CommentListeners,
		now:              config.Now,
		photoStore:       config.PhotoStore,
		userStore:        config.UserStore,
	}
}

func (s CatalogService) AddComment(ctx context.Context, userID, photoID int, text string) (models.Comment, error) {
	var (
		err   error
		photo *models.Photo
		user  *models.User
	)

	text = strings.TrimSpace(text)

	if text == "" {
		return models.Comment{}, models.ErrEmptyComment
	}

	if photo, err = s.photoStore.FindByID(ctx, photoID); err != nil {
		return models.Comment{}, err
	}

	if !s.access.CanComment(userID, *photo) {
		return models.Comment{}, models.ErrPhotoNotFound
	}

	if user, err = s.userStore.FindByID(ctx, userID); err != nil {
		return models.Comment{}, fmt.Errorf("error resolving commenter %d: %w", userID, err)
	}

	comment := models.Comment{
		UserID:    user.ID,
		UserName:  user.Name,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}

	if err = s.photoStore.AddComment(ctx, photoID, comment); err != nil {
		return models.Comment{}, err
	}

	for _, listener := range s.commentListeners {
		listener.CommentAdded(ctx, *photo, comment)
	}

	return comment, nil
}

/*
AddTag adds a trimmed tag to a photo the user owns. A tag that is already
present, compared exactly, gives models.ErrTagExists.
*/
func (s CatalogService) AddTag(ctx context.Context, userID, photoID int, tag string) error {
	var (
		err   error
		added bool
	)

	tag = strings.TrimSpace(tag)

	if tag == "" {
		return models.ErrEmptyTag
	}

	if _, err = s.writablePhoto(ctx, userID, photoID); err != nil {
		return err
	}

	if added, err = s.photoStore.AddTag(ctx, photoID, tag); err != nil {
		return err
	}

	if !added {
		return models.ErrTagExists
	}

	return nil
}

/*
AlbumNames returns the names of the given albums joined with ", ", in the
order the album store lists them.
*/
func (s CatalogService) AlbumNames(ctx context.Context, albumIDs []int) (string, error) {
	albums, err := s.albumStore.FindAll(ctx)

	if err != nil {
		return "", err
	}

	names := slices.FilterAndMap(albums, func(album models.Album, _ int) (string, bool) {
		return album.Name, slices.IsInSlice(album.ID, albumIDs)
	})

	return strings.Join(names, ", "), nil
}

func (s CatalogService) ChangeVisibility(ctx context.Context, userID, photoID int, visibility string) error {
	if _, err := s.writablePhoto(ctx, userID, photoID); err != nil {
		return err
	}

	return s.photoStore.SetVisibility(ctx, photoID, models.VisibilityFromString(visibility))
}

func (s CatalogService) FindAlbumByName(ctx context.Context, name string) (*models.Album, error) {
	if strings.TrimSpace(name) == "" {
		return nil, models.ErrAlbumNotFound
	}

	return s.albumStore.FindByName(ctx, name)
}

func (s CatalogService) GetPhoto(ctx context.Context, userID, photoID int) (*models.Photo, error) {
	photo, err := s.photoStore.FindByID(ctx, photoID)

	if err != nil {
		return nil, err
	}

	if !s.access.CanRead(userID, *photo) {
		return nil, models.ErrPhotoNotFound
	}

	return photo, nil
}

/*
ListAlbumPhotos finds an album by name, ignoring case, and returns the
photos in it that the user may read.
*/
func (s CatalogService) ListAlbumPhotos(ctx context.Context, userID int, albumName string) (*models.Album, []models.Photo, error) {
	var (
		err    error
		album  *models.Album
		photos []models.Photo
	)

	if album, err = s.FindAlbumByName(ctx, albumName); err != nil {
		return nil, nil, err
	}

	if photos, err = s.photoStore.FindByAlbum(ctx, album.ID); err != nil {
		return nil, nil, err
	}

	return album, s.access.FilterReadable(userID, photos), nil
}

func (s CatalogService) ListAlbums(ctx context.Context) ([]models.Album, error) {
	return s.albumStore.FindAll(ctx)
}

func (s CatalogService) ListMyPhotos(ctx context.Context, userID int) ([]models.Photo, error) {
	return s.photoStore.FindByOwner(ctx, userID)
}

func (s CatalogService) ListPublicPhotos(ctx context.Context, userID int) ([]models.Photo, error) {
	photos, err := s.photoStore.FindPublic(ctx)

	if err != nil {
		return nil, err
	}

	return s.access.FilterPublicNotOwned(userID, photos), nil
}

/*
ListReadablePhotos returns every photo in the catalog the user may read:
their own and everyone's public ones.
*/
func (s CatalogService) ListReadablePhotos(ctx context.Context, userID int) ([]models.Photo, error) {
	photos, err := s.photoStore.FindAll(ctx)

	if err != nil {
		return nil, err
	}

	return s.access.FilterReadable(userID, photos), nil
}

/*
UpdateDetails changes title and description of a photo the user owns. A
value that is blank after trimming leaves that field as it was.
*/
func (s CatalogService) UpdateDetails(ctx context.Context, userID, photoID int, title, description string) error {
	var (
		titleUpdate       *string
		descriptionUpdate *string
	)

	if _, err := s.writablePhoto(ctx, userID, photoID); err != nil {
		return err
	}

	if strings.TrimSpace(title) != "" {
		titleUpdate = &title
	}

	if strings.TrimSpace(description) != "" {
		descriptionUpdate = &description
	}

	if titleUpdate == nil && descriptionUpdate == nil {
		slog.Debug("no photo details to update", "photoID", photoID)
	}

	return s.photoStore.UpdateDetails(ctx, photoID, titleUpdate, descriptionUpdate)
}

func (s CatalogService) writablePhoto(ctx context.Context, userID, photoID int) (*models.Photo, error) {
	photo, err := s.photoStore.FindByID(ctx, photoID)

	if err != nil {
		return nil, err
	}

	if !s.access.CanWrite(userID, *photo) {
		return nil, models.ErrPhotoNotFound
	}

	return photo, nil
}
