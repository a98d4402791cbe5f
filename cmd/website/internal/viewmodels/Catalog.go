package viewmodels

import (
	internalmodels "github.com/adampresley/mediacatalog/cmd/website/internal/models"
	"github.com/adampresley/mediacatalog/pkg/models"
)

type HomePage struct {
	BaseViewModel
	MyPhotos     []internalmodels.PhotoCard
	PublicPhotos []internalmodels.PhotoCard
	Albums       []models.Album
}

type AlbumPage struct {
	BaseViewModel
	AlbumName string
	Photos    []internalmodels.PhotoCard
}

type PhotoPage struct {
	BaseViewModel
	Photo    internalmodels.PhotoDetail
	CanWrite bool
}

type EditPhotoPage struct {
	BaseViewModel
	PhotoID     int
	Title       string
	Description string
}
