package sqlitestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/rfberaldo/sqlz"
)

type AlbumStoreConfig struct {
	DB *sqlz.DB
}

type AlbumStore struct {
	db *sqlz.DB
}

type albumRow struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

func NewAlbumStore(config AlbumStoreConfig) AlbumStore {
	return AlbumStore{
		db: config.DB,
	}
}

func (s AlbumStore) Create(ctx context.Context, album *models.Album) error {
	var (
		err error
	)

	if album.ID <= 0 || strings.TrimSpace(album.Name) == "" {
		return fmt.Errorf("%w: album needs an id and a name", models.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, `INSERT INTO albums (id, name) VALUES (?, ?)`, album.ID, album.Name); err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: album %d '%s' already exists", models.ErrValidation, album.ID, album.Name)
		}

		return fmt.Errorf("error inserting album %d: %w", album.ID, err)
	}

	return nil
}

func (s AlbumStore) FindAll(ctx context.Context) ([]models.Album, error) {
	var (
		err  error
		rows []albumRow
	)

	sql := `
SELECT
   a.id
   , a.name
FROM albums AS a
ORDER BY a.id
`

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &rows, sql); err != nil {
		return nil, fmt.Errorf("error querying for all albums: %w", err)
	}

	result := make([]models.Album, 0, len(rows))

	for _, row := range rows {
		result = append(result, models.Album{ID: row.ID, Name: row.Name})
	}

	return result, nil
}

func (s AlbumStore) FindByID(ctx context.Context, id int) (*models.Album, error) {
	var (
		err error
		row albumRow
	)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &row, `SELECT a.id, a.name FROM albums AS a WHERE a.id=?`, id); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrAlbumNotFound
		}

		return nil, fmt.Errorf("error querying for album %d: %w", id, err)
	}

	return &models.Album{ID: row.ID, Name: row.Name}, nil
}

func (s AlbumStore) FindByName(ctx context.Context, name string) (*models.Album, error) {
	var (
		err error
		row albumRow
	)

	sql := `
SELECT
   a.id
   , a.name
FROM albums AS a
WHERE 1=1
   AND LOWER(a.name)=LOWER(?)
`

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &row, sql, strings.TrimSpace(name)); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrAlbumNotFound
		}

		return nil, fmt.Errorf("error querying for album by name '%s': %w", name, err)
	}

	return &models.Album{ID: row.ID, Name: row.Name}, nil
}
