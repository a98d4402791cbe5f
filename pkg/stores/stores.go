/*
Package stores describes the persistence contracts the services depend on.
Backends live in the sub packages sqlitestore, documentstore, and redisstore.

Every write operation is a single atomic unit in its backend. Nothing in
this package reads a whole record, mutates it in memory, and writes it
back.
*/
package stores

import (
	"context"
	"time"

	"github.com/adampresley/mediacatalog/pkg/models"
)

/*
UserStorer is the credential store. Lookups that find nothing return
models.ErrUserNotFound. Create does not check for duplicates; callers do.
*/
type UserStorer interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
}

/*
PhotoStorer persists photos and the data embedded in them (tags, album
membership, comments). Lookups that find nothing return models.ErrPhotoNotFound.
*/
type PhotoStorer interface {
	AddComment(ctx context.Context, photoID int, comment models.Comment) error
	AddTag(ctx context.Context, photoID int, tag string) (bool, error)
	Create(ctx context.Context, photo *models.Photo) error
	FindAll(ctx context.Context) ([]models.Photo, error)
	FindByAlbum(ctx context.Context, albumID int) ([]models.Photo, error)
	FindByID(ctx context.Context, id int) (*models.Photo, error)
	FindByOwner(ctx context.Context, ownerID int) ([]models.Photo, error)
	FindPublic(ctx context.Context) ([]models.Photo, error)
	SetVisibility(ctx context.Context, photoID int, isPublic bool) error
	UpdateDetails(ctx context.Context, photoID int, title, description *string) error
}

type AlbumStorer interface {
	Create(ctx context.Context, album *models.Album) error
	FindAll(ctx context.Context) ([]models.Album, error)
	FindByID(ctx context.Context, id int) (*models.Album, error)
	FindByName(ctx context.Context, name string) (*models.Album, error)
}

/*
SessionStorer keeps session records. Get returns models.ErrSessionInvalid
when the key is unknown. Expiry is not judged here; the session manager
does that.
*/
type SessionStorer interface {
	Create(ctx context.Context, session models.Session) error
	Delete(ctx context.Context, key string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	Get(ctx context.Context, key string) (models.Session, error)
}
