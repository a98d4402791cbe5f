package sqlitestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/rfberaldo/sqlz"
)

type PhotoStoreConfig struct {
	DB *sqlz.DB
}

type PhotoStore struct {
	db *sqlz.DB
}

type photoRow struct {
	ID          int    `db:"id"`
	OwnerID     int    `db:"owner_id"`
	Filename    string `db:"filename"`
	Title       string `db:"title"`
	Description string `db:"description"`
	PhotoDate   int64  `db:"photo_date"`
	Resolution  string `db:"resolution"`
	IsPublic    bool   `db:"is_public"`
}

type photoTagRow struct {
	PhotoID int    `db:"photo_id"`
	Tag     string `db:"tag"`
}

type photoAlbumRow struct {
	PhotoID int `db:"photo_id"`
	AlbumID int `db:"album_id"`
}

type photoCommentRow struct {
	PhotoID   int    `db:"photo_id"`
	UserID    int    `db:"user_id"`
	UserName  string `db:"user_name"`
	Text      string `db:"text"`
	CreatedAt int64  `db:"created_at"`
}

const selectPhotoColumns = `
SELECT
   p.id
   , p.owner_id
   , p.filename
   , p.title
   , p.description
   , p.photo_date
   , p.resolution
   , p.is_public
FROM photos AS p
`

func NewPhotoStore(config PhotoStoreConfig) PhotoStore {
	return PhotoStore{
		db: config.DB,
	}
}

func (s PhotoStore) AddComment(ctx context.Context, photoID int, comment models.Comment) error {
	var (
		err error
		tx  *sqlz.Tx
	)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if tx, err = s.db.Begin(ctx); err != nil {
		return fmt.Errorf("error starting transaction to add comment to photo %d: %w", photoID, err)
	}

	defer func() { _ = tx.Rollback() }()

	if err = s.ensureExists(ctx, tx, photoID); err != nil {
		return err
	}

	sql := `
INSERT INTO photo_comments (
   photo_id
   , user_id
   , user_name
   , text
   , created_at
) VALUES (?, ?, ?, ?, ?)
`

	if _, err = tx.Exec(ctx, sql, photoID, comment.UserID, comment.UserName, comment.Text, toMillis(comment.CreatedAt)); err != nil {
		return fmt.Errorf("error inserting comment for photo %d: %w", photoID, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing comment for photo %d: %w", photoID, err)
	}

	return nil
}

/*
AddTag appends tag to the end of the photo's tag list. The primary key on
(photo_id, tag) makes the insert a no-op for a duplicate, in which case
false is returned.
*/
func (s PhotoStore) AddTag(ctx context.Context, photoID int, tag string) (bool, error) {
	var (
		err      error
		tx       *sqlz.Tx
		affected int64
	)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if tx, err = s.db.Begin(ctx); err != nil {
		return false, fmt.Errorf("error starting transaction to tag photo %d: %w", photoID, err)
	}

	defer func() { _ = tx.Rollback() }()

	if err = s.ensureExists(ctx, tx, photoID); err != nil {
		return false, err
	}

	sql := `
INSERT OR IGNORE INTO photo_tags (
   photo_id
   , tag
   , position
)
SELECT ?, ?, COALESCE(MAX(pt.position), 0) + 1
FROM photo_tags AS pt
WHERE pt.photo_id=?
`

	result, err := tx.Exec(ctx, sql, photoID, tag, photoID)

	if err != nil {
		return false, fmt.Errorf("error adding tag '%s' to photo %d: %w", tag, photoID, err)
	}

	affected, _ = result.RowsAffected()

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("error committing tag for photo %d: %w", photoID, err)
	}

	return affected > 0, nil
}

func (s PhotoStore) Create(ctx context.Context, photo *models.Photo) error {
	var (
		err error
		tx  *sqlz.Tx
	)

	if err = photo.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if tx, err = s.db.Begin(ctx); err != nil {
		return fmt.Errorf("error starting transaction to create photo %d: %w", photo.ID, err)
	}

	defer func() { _ = tx.Rollback() }()

	sql := `
INSERT INTO photos (
   id
   , owner_id
   , filename
   , title
   , description
   , photo_date
   , resolution
   , is_public
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

	_, err = tx.Exec(ctx, sql,
		photo.ID,
		photo.OwnerID,
		photo.Filename,
		photo.Title,
		photo.Description,
		toMillis(photo.Date),
		photo.Resolution,
		photo.IsPublic,
	)

	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: photo %d conflicts with existing data: %w", models.ErrValidation, photo.ID, err)
		}

		return fmt.Errorf("error inserting photo %d: %w", photo.ID, err)
	}

	for index, tag := range photo.Tags {
		if _, err = tx.Exec(ctx, `INSERT INTO photo_tags (photo_id, tag, position) VALUES (?, ?, ?)`, photo.ID, tag, index+1); err != nil {
			return fmt.Errorf("error inserting tag '%s' for photo %d: %w", tag, photo.ID, err)
		}
	}

	for index, albumID := range photo.Albums {
		if _, err = tx.Exec(ctx, `INSERT INTO photo_albums (photo_id, album_id, position) VALUES (?, ?, ?)`, photo.ID, albumID, index+1); err != nil {
			if isConstraintError(err) {
				return fmt.Errorf("%w: photo %d references unknown album %d", models.ErrValidation, photo.ID, albumID)
			}

			return fmt.Errorf("error inserting album %d for photo %d: %w", albumID, photo.ID, err)
		}
	}

	for _, comment := range photo.Comments {
		_, err = tx.Exec(ctx,
			`INSERT INTO photo_comments (photo_id, user_id, user_name, text, created_at) VALUES (?, ?, ?, ?, ?)`,
			photo.ID, comment.UserID, comment.UserName, comment.Text, toMillis(comment.CreatedAt),
		)

		if err != nil {
			return fmt.Errorf("error inserting comment for photo %d: %w", photo.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing photo %d: %w", photo.ID, err)
	}

	return nil
}

func (s PhotoStore) FindAll(ctx context.Context) ([]models.Photo, error) {
	return s.findMany(ctx, selectPhotoColumns+`ORDER BY p.id`)
}

func (s PhotoStore) FindByAlbum(ctx context.Context, albumID int) ([]models.Photo, error) {
	sql := selectPhotoColumns + `
   INNER JOIN photo_albums AS pa ON pa.photo_id=p.id
WHERE 1=1
   AND pa.album_id=?
ORDER BY p.id
`

	return s.findMany(ctx, sql, albumID)
}

func (s PhotoStore) FindByID(ctx context.Context, id int) (*models.Photo, error) {
	var (
		err error
		row photoRow
	)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &row, selectPhotoColumns+`WHERE p.id=?`, id); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrPhotoNotFound
		}

		return nil, fmt.Errorf("error querying for photo %d: %w", id, err)
	}

	photos, err := s.attachChildren(ctx, []photoRow{row})

	if err != nil {
		return nil, err
	}

	return &photos[0], nil
}

func (s PhotoStore) FindByOwner(ctx context.Context, ownerID int) ([]models.Photo, error) {
	return s.findMany(ctx, selectPhotoColumns+`WHERE p.owner_id=? ORDER BY p.id`, ownerID)
}

func (s PhotoStore) FindPublic(ctx context.Context) ([]models.Photo, error) {
	return s.findMany(ctx, selectPhotoColumns+`WHERE p.is_public=1 ORDER BY p.id`)
}

func (s PhotoStore) SetVisibility(ctx context.Context, photoID int, isPublic bool) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	result, err := s.db.Exec(ctx, `UPDATE photos SET is_public=? WHERE id=?`, isPublic, photoID)

	if err != nil {
		return fmt.Errorf("error updating visibility of photo %d: %w", photoID, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return models.ErrPhotoNotFound
	}

	return nil
}

/*
UpdateDetails writes only the fields that are not nil. With both nil it
only confirms the photo exists.
*/
func (s PhotoStore) UpdateDetails(ctx context.Context, photoID int, title, description *string) error {
	var (
		err  error
		sets []string
		args []any
	)

	if title != nil {
		sets = append(sets, "title=?")
		args = append(args, *title)
	}

	if description != nil {
		sets = append(sets, "description=?")
		args = append(args, *description)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if len(sets) == 0 {
		var count int

		if err = s.db.QueryRow(ctx, &count, `SELECT COUNT(*) FROM photos WHERE id=?`, photoID); err != nil {
			return fmt.Errorf("error checking photo %d: %w", photoID, err)
		}

		if count == 0 {
			return models.ErrPhotoNotFound
		}

		return nil
	}

	args = append(args, photoID)
	sql := fmt.Sprintf(`UPDATE photos SET %s WHERE id=?`, strings.Join(sets, ", "))

	result, err := s.db.Exec(ctx, sql, args...)

	if err != nil {
		return fmt.Errorf("error updating details of photo %d: %w", photoID, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return models.ErrPhotoNotFound
	}

	return nil
}

func (s PhotoStore) ensureExists(ctx context.Context, tx *sqlz.Tx, photoID int) error {
	var (
		err   error
		count int
	)

	if err = tx.QueryRow(ctx, &count, `SELECT COUNT(*) FROM photos WHERE id=?`, photoID); err != nil {
		return fmt.Errorf("error checking photo %d: %w", photoID, err)
	}

	if count == 0 {
		return models.ErrPhotoNotFound
	}

	return nil
}

func (s PhotoStore) findMany(ctx context.Context, sql string, args ...any) ([]models.Photo, error) {
	var (
		err  error
		rows []photoRow
	)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("error querying for photos: %w", err)
	}

	return s.attachChildren(ctx, rows)
}

/*
attachChildren loads tags, album membership, and comments for every row
with one query per child table.
*/
func (s PhotoStore) attachChildren(ctx context.Context, rows []photoRow) ([]models.Photo, error) {
	var (
		err      error
		tags     []photoTagRow
		albums   []photoAlbumRow
		comments []photoCommentRow
	)

	result := make([]models.Photo, 0, len(rows))

	if len(rows) == 0 {
		return result, nil
	}

	ids := make([]int, 0, len(rows))
	byID := make(map[int]int, len(rows))

	for index, row := range rows {
		ids = append(ids, row.ID)
		byID[row.ID] = index

		result = append(result, models.Photo{
			ID:          row.ID,
			OwnerID:     row.OwnerID,
			Filename:    row.Filename,
			Title:       row.Title,
			Description: row.Description,
			Date:        fromMillis(row.PhotoDate),
			Resolution:  row.Resolution,
			IsPublic:    row.IsPublic,
			Tags:        []string{},
			Albums:      []int{},
			Comments:    []models.Comment{},
		})
	}

	if err = s.db.Query(ctx, &tags, `SELECT photo_id, tag FROM photo_tags WHERE photo_id IN (?) ORDER BY photo_id, position`, ids); err != nil {
		return nil, fmt.Errorf("error querying for photo tags: %w", err)
	}

	if err = s.db.Query(ctx, &albums, `SELECT photo_id, album_id FROM photo_albums WHERE photo_id IN (?) ORDER BY photo_id, position`, ids); err != nil {
		return nil, fmt.Errorf("error querying for photo albums: %w", err)
	}

	sql := `
SELECT
   photo_id
   , user_id
   , user_name
   , text
   , created_at
FROM photo_comments
WHERE photo_id IN (?)
ORDER BY photo_id, id
`

	if err = s.db.Query(ctx, &comments, sql, ids); err != nil {
		return nil, fmt.Errorf("error querying for photo comments: %w", err)
	}

	for _, tag := range tags {
		p := &result[byID[tag.PhotoID]]
		p.Tags = append(p.Tags, tag.Tag)
	}

	for _, album := range albums {
		p := &result[byID[album.PhotoID]]
		p.Albums = append(p.Albums, album.AlbumID)
	}

	for _, comment := range comments {
		p := &result[byID[comment.PhotoID]]
		p.Comments = append(p.Comments, models.Comment{
			UserID:    comment.UserID,
			UserName:  comment.UserName,
			Text:      comment.Text,
			CreatedAt: fromMillis(comment.CreatedAt),
		})
	}

	return result, nil
}
