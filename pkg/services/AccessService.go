package services

import (
	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/mediacatalog/pkg/models"
)

/*
AccessService decides what a user may do with a photo. Owners may read and
write. Anyone may read a public photo. Commenting needs read access.
*/
type AccessService struct{}

func NewAccessService() AccessService {
	return AccessService{}
}

func (a AccessService) CanRead(userID int, photo models.Photo) bool {
	return photo.OwnerID == userID || photo.IsPublic
}

func (a AccessService) CanWrite(userID int, photo models.Photo) bool {
	return photo.OwnerID == userID
}

func (a AccessService) CanComment(userID int, photo models.Photo) bool {
	return a.CanRead(userID, photo)
}

func (a AccessService) FilterReadable(userID int, photos []models.Photo) []models.Photo {
	return keepPhotos(photos, func(p models.Photo) bool {
		return a.CanRead(userID, p)
	})
}

func (a AccessService) FilterOwned(userID int, photos []models.Photo) []models.Photo {
	return keepPhotos(photos, func(p models.Photo) bool {
		return p.OwnerID == userID
	})
}

// FilterPublicNotOwned is the "public photos of others" listing.
func (a AccessService) FilterPublicNotOwned(userID int, photos []models.Photo) []models.Photo {
	return keepPhotos(photos, func(p models.Photo) bool {
		return p.IsPublic && p.OwnerID != userID
	})
}

func keepPhotos(photos []models.Photo, keep func(p models.Photo) bool) []models.Photo {
	return slices.FilterAndMap(photos, func(p models.Photo, _ int) (models.Photo, bool) {
		return p, keep(p)
	})
}
