package documentstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/ostafen/clover/v2"
	"github.com/ostafen/clover/v2/document"
	"github.com/ostafen/clover/v2/query"
)

type PhotoStoreConfig struct {
	DB *clover.DB
}

type PhotoStore struct {
	db *clover.DB
}

type photoRecord struct {
	ID          int             `clover:"id" json:"id"`
	OwnerID     int             `clover:"ownerId" json:"ownerId"`
	Filename    string          `clover:"filename" json:"filename"`
	Title       string          `clover:"title" json:"title"`
	Description string          `clover:"description" json:"description"`
	Date        int64           `clover:"date" json:"date"`
	Resolution  string          `clover:"resolution" json:"resolution"`
	Tags        []string        `clover:"tags" json:"tags"`
	Albums      []int           `clover:"albums" json:"albums"`
	IsPublic    bool            `clover:"isPublic" json:"isPublic"`
	Comments    []commentRecord `clover:"comments" json:"comments"`
}

type commentRecord struct {
	UserID    int    `clover:"userId" json:"userId"`
	UserName  string `clover:"userName" json:"userName"`
	Text      string `clover:"text" json:"text"`
	CreatedAt int64  `clover:"createdAt" json:"createdAt"`
}

func (r photoRecord) toModel() models.Photo {
	result := models.Photo{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Filename:    r.Filename,
		Title:       r.Title,
		Description: r.Description,
		Date:        fromMillis(r.Date),
		Resolution:  r.Resolution,
		Tags:        append([]string{}, r.Tags...),
		Albums:      append([]int{}, r.Albums...),
		IsPublic:    r.IsPublic,
		Comments:    make([]models.Comment, 0, len(r.Comments)),
	}

	for _, c := range r.Comments {
		result.Comments = append(result.Comments, models.Comment{
			UserID:    c.UserID,
			UserName:  c.UserName,
			Text:      c.Text,
			CreatedAt: fromMillis(c.CreatedAt),
		})
	}

	return result
}

func newCommentRecord(comment models.Comment) commentRecord {
	return commentRecord{
		UserID:    comment.UserID,
		UserName:  comment.UserName,
		Text:      comment.Text,
		CreatedAt: toMillis(comment.CreatedAt),
	}
}

func NewPhotoStore(config PhotoStoreConfig) PhotoStore {
	return PhotoStore{
		db: config.DB,
	}
}

func (s PhotoStore) AddComment(ctx context.Context, photoID int, comment models.Comment) error {
	if err := checkContext(ctx, "PhotoStore.AddComment"); err != nil {
		return err
	}

	err := s.db.UpdateById(photosCollection, documentID(photosCollection, photoID), func(doc *document.Document) *document.Document {
		existing, _ := doc.Get("comments").([]any)

		comments := make([]any, 0, len(existing)+1)
		comments = append(comments, existing...)
		comments = append(comments, newCommentRecord(comment))

		updated := doc.Copy()
		updated.Set("comments", comments)
		return updated
	})

	return s.mapUpdateError(photoID, err)
}

/*
AddTag appends tag inside a single clover update so two concurrent calls
cannot overwrite each other's tags.
*/
func (s PhotoStore) AddTag(ctx context.Context, photoID int, tag string) (bool, error) {
	if err := checkContext(ctx, "PhotoStore.AddTag"); err != nil {
		return false, err
	}

	added := false

	err := s.db.UpdateById(photosCollection, documentID(photosCollection, photoID), func(doc *document.Document) *document.Document {
		tags := toStrings(doc.Get("tags"))

		for _, existing := range tags {
			if existing == tag {
				return doc
			}
		}

		added = true
		updated := doc.Copy()
		updated.Set("tags", append(tags, tag))
		return updated
	})

	if err = s.mapUpdateError(photoID, err); err != nil {
		return false, err
	}

	return added, nil
}

/*
Create checks that the owner and every referenced album exist before
inserting the photo.
*/
func (s PhotoStore) Create(ctx context.Context, photo *models.Photo) error {
	if err := checkContext(ctx, "PhotoStore.Create"); err != nil {
		return err
	}

	var (
		err error
		doc *document.Document
	)

	if err = photo.Validate(); err != nil {
		return err
	}

	if doc, err = s.db.FindById(usersCollection, documentID(usersCollection, photo.OwnerID)); err != nil {
		return fmt.Errorf("error looking up owner of photo %d: %w", photo.ID, err)
	}

	if doc == nil {
		return fmt.Errorf("%w: photo %d references unknown owner %d", models.ErrValidation, photo.ID, photo.OwnerID)
	}

	for _, albumID := range photo.Albums {
		if doc, err = s.db.FindById(albumsCollection, documentID(albumsCollection, albumID)); err != nil {
			return fmt.Errorf("error looking up album %d: %w", albumID, err)
		}

		if doc == nil {
			return fmt.Errorf("%w: photo %d references unknown album %d", models.ErrValidation, photo.ID, albumID)
		}
	}

	record := photoRecord{
		ID:          photo.ID,
		OwnerID:     photo.OwnerID,
		Filename:    photo.Filename,
		Title:       photo.Title,
		Description: photo.Description,
		Date:        toMillis(photo.Date),
		Resolution:  photo.Resolution,
		Tags:        append([]string{}, photo.Tags...),
		Albums:      append([]int{}, photo.Albums...),
		IsPublic:    photo.IsPublic,
		Comments:    make([]commentRecord, 0, len(photo.Comments)),
	}

	for _, comment := range photo.Comments {
		record.Comments = append(record.Comments, newCommentRecord(comment))
	}

	if _, err = s.db.InsertOne(photosCollection, newDocument(record, documentID(photosCollection, photo.ID))); err != nil {
		if errors.Is(err, clover.ErrDuplicateKey) {
			return fmt.Errorf("%w: photo %d already exists", models.ErrValidation, photo.ID)
		}

		return fmt.Errorf("error inserting photo %d: %w", photo.ID, err)
	}

	return nil
}

func (s PhotoStore) FindAll(ctx context.Context) ([]models.Photo, error) {
	if err := checkContext(ctx, "PhotoStore.FindAll"); err != nil {
		return nil, err
	}

	return s.findMany(query.NewQuery(photosCollection))
}

func (s PhotoStore) FindByAlbum(ctx context.Context, albumID int) ([]models.Photo, error) {
	if err := checkContext(ctx, "PhotoStore.FindByAlbum"); err != nil {
		return nil, err
	}

	return s.findMany(query.NewQuery(photosCollection).MatchFunc(func(doc *document.Document) bool {
		albums, _ := doc.Get("albums").([]any)

		for _, album := range albums {
			if toInt(album) == albumID {
				return true
			}
		}

		return false
	}))
}

func (s PhotoStore) FindByID(ctx context.Context, id int) (*models.Photo, error) {
	if err := checkContext(ctx, "PhotoStore.FindByID"); err != nil {
		return nil, err
	}

	var (
		err    error
		doc    *document.Document
		record photoRecord
	)

	if doc, err = s.db.FindById(photosCollection, documentID(photosCollection, id)); err != nil {
		return nil, fmt.Errorf("error querying for photo %d: %w", id, err)
	}

	if doc == nil {
		return nil, models.ErrPhotoNotFound
	}

	if err = doc.Unmarshal(&record); err != nil {
		return nil, fmt.Errorf("error decoding photo %d: %w", id, err)
	}

	result := record.toModel()
	return &result, nil
}

func (s PhotoStore) FindByOwner(ctx context.Context, ownerID int) ([]models.Photo, error) {
	if err := checkContext(ctx, "PhotoStore.FindByOwner"); err != nil {
		return nil, err
	}

	return s.findMany(query.NewQuery(photosCollection).MatchFunc(func(doc *document.Document) bool {
		return toInt(doc.Get("ownerId")) == ownerID
	}))
}

func (s PhotoStore) FindPublic(ctx context.Context) ([]models.Photo, error) {
	if err := checkContext(ctx, "PhotoStore.FindPublic"); err != nil {
		return nil, err
	}

	return s.findMany(query.NewQuery(photosCollection).MatchFunc(func(doc *document.Document) bool {
		isPublic, _ := doc.Get("isPublic").(bool)
		return isPublic
	}))
}

func (s PhotoStore) SetVisibility(ctx context.Context, photoID int, isPublic bool) error {
	if err := checkContext(ctx, "PhotoStore.SetVisibility"); err != nil {
		return err
	}

	err := s.db.UpdateById(photosCollection, documentID(photosCollection, photoID), func(doc *document.Document) *document.Document {
		updated := doc.Copy()
		updated.Set("isPublic", isPublic)
		return updated
	})

	return s.mapUpdateError(photoID, err)
}

func (s PhotoStore) UpdateDetails(ctx context.Context, photoID int, title, description *string) error {
	if err := checkContext(ctx, "PhotoStore.UpdateDetails"); err != nil {
		return err
	}

	err := s.db.UpdateById(photosCollection, documentID(photosCollection, photoID), func(doc *document.Document) *document.Document {
		updated := doc.Copy()

		if title != nil {
			updated.Set("title", *title)
		}

		if description != nil {
			updated.Set("description", *description)
		}

		return updated
	})

	return s.mapUpdateError(photoID, err)
}

func (s PhotoStore) findMany(q *query.Query) ([]models.Photo, error) {
	var (
		err  error
		docs []*document.Document
	)

	if docs, err = s.db.FindAll(q); err != nil {
		return nil, fmt.Errorf("error querying for photos: %w", err)
	}

	result := make([]models.Photo, 0, len(docs))

	for _, doc := range docs {
		record := photoRecord{}

		if err = doc.Unmarshal(&record); err != nil {
			return nil, fmt.Errorf("error decoding photo: %w", err)
		}

		result = append(result, record.toModel())
	}

	sortByID(result, func(p models.Photo) int { return p.ID })
	return result, nil
}

func (s PhotoStore) mapUpdateError(photoID int, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, clover.ErrDocumentNotExist) {
		return models.ErrPhotoNotFound
	}

	return fmt.Errorf("error updating photo %d: %w", photoID, err)
}
