package documentstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/ostafen/clover/v2"
	"github.com/ostafen/clover/v2/document"
	"github.com/ostafen/clover/v2/query"
)

const albumNameClaim = "album-name"

type AlbumStoreConfig struct {
	DB *clover.DB
}

type AlbumStore struct {
	db *clover.DB
}

type albumRecord struct {
	ID   int    `clover:"id" json:"id"`
	Name string `clover:"name" json:"name"`
}

func NewAlbumStore(config AlbumStoreConfig) AlbumStore {
	return AlbumStore{
		db: config.DB,
	}
}

func (s AlbumStore) Create(ctx context.Context, album *models.Album) error {
	if err := checkContext(ctx, "AlbumStore.Create"); err != nil {
		return err
	}

	var (
		err     error
		claimed bool
	)

	if album.ID <= 0 || strings.TrimSpace(album.Name) == "" {
		return fmt.Errorf("%w: album needs an id and a name", models.ErrValidation)
	}

	if claimed, err = claim(s.db, albumNameClaim, album.Name, album.ID); err != nil {
		return err
	}

	if !claimed {
		return fmt.Errorf("%w: album '%s' already exists", models.ErrValidation, album.Name)
	}

	record := albumRecord{ID: album.ID, Name: album.Name}

	if _, err = s.db.InsertOne(albumsCollection, newDocument(record, documentID(albumsCollection, album.ID))); err != nil {
		_ = releaseClaim(s.db, albumNameClaim, album.Name)

		if errors.Is(err, clover.ErrDuplicateKey) {
			return fmt.Errorf("%w: album %d already exists", models.ErrValidation, album.ID)
		}

		return fmt.Errorf("error inserting album %d: %w", album.ID, err)
	}

	return nil
}

func (s AlbumStore) FindAll(ctx context.Context) ([]models.Album, error) {
	if err := checkContext(ctx, "AlbumStore.FindAll"); err != nil {
		return nil, err
	}

	var (
		err  error
		docs []*document.Document
	)

	if docs, err = s.db.FindAll(query.NewQuery(albumsCollection)); err != nil {
		return nil, fmt.Errorf("error querying for albums: %w", err)
	}

	result := make([]models.Album, 0, len(docs))

	for _, doc := range docs {
		result = append(result, models.Album{
			ID:   toInt(doc.Get("id")),
			Name: fmt.Sprint(doc.Get("name")),
		})
	}

	sortByID(result, func(a models.Album) int { return a.ID })
	return result, nil
}

func (s AlbumStore) FindByID(ctx context.Context, id int) (*models.Album, error) {
	if err := checkContext(ctx, "AlbumStore.FindByID"); err != nil {
		return nil, err
	}

	var (
		err    error
		doc    *document.Document
		record albumRecord
	)

	if doc, err = s.db.FindById(albumsCollection, documentID(albumsCollection, id)); err != nil {
		return nil, fmt.Errorf("error querying for album %d: %w", id, err)
	}

	if doc == nil {
		return nil, models.ErrAlbumNotFound
	}

	if err = doc.Unmarshal(&record); err != nil {
		return nil, fmt.Errorf("error decoding album %d: %w", id, err)
	}

	return &models.Album{ID: record.ID, Name: record.Name}, nil
}

func (s AlbumStore) FindByName(ctx context.Context, name string) (*models.Album, error) {
	if err := checkContext(ctx, "AlbumStore.FindByName"); err != nil {
		return nil, err
	}

	var (
		err   error
		owner int
		found bool
	)

	if owner, found, err = findClaim(s.db, albumNameClaim, name); err != nil {
		return nil, err
	}

	if !found {
		return nil, models.ErrAlbumNotFound
	}

	return s.FindByID(ctx, owner)
}
