package services

import (
	"log/slog"
	"path"
	"strconv"
	"time"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/s3/geturloptions"
	"github.com/adampresley/mediacatalog/pkg/models"
)

type MediaServicer interface {
	PhotoURL(photo models.Photo) string
}

type MediaServiceConfig struct {
	Bucket        string
	PhotoFolder   string
	S3Client      s3.S3Client
	URLExpiration time.Duration
}

/*
MediaService hands out links to photo files kept in an S3 bucket under
PhotoFolder/<owner id>/<filename>. Without an S3 client every URL is empty
and pages show the filename only.
*/
type MediaService struct {
	bucket        string
	photoFolder   string
	s3Client      s3.S3Client
	urlExpiration time.Duration
}

func NewMediaService(config MediaServiceConfig) MediaService {
	if config.URLExpiration <= 0 {
		config.URLExpiration = time.Minute * 30
	}

	return MediaService{
		bucket:        config.Bucket,
		photoFolder:   config.PhotoFolder,
		s3Client:      config.S3Client,
		urlExpiration: config.URLExpiration,
	}
}

func (s MediaService) PhotoURL(photo models.Photo) string {
	if s.s3Client == nil || s.bucket == "" {
		return ""
	}

	key := path.Join(s.photoFolder, strconv.Itoa(photo.OwnerID), photo.Filename)
	url, err := s.s3Client.GetUrl(s.bucket, key, geturloptions.WithExpiration(s.urlExpiration))

	if err != nil {
		slog.Error("error getting photo url", "error", err, "key", key)
		return ""
	}

	return url
}
