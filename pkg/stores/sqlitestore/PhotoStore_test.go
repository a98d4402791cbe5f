package sqlitestore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/stores/sqlitestore"
	"github.com/rfberaldo/sqlz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPhotoFixture(t *testing.T) (*sqlz.DB, sqlitestore.PhotoStore) {
	t.Helper()

	ctx := context.Background()
	db := newTestDB(t)

	seedUser(t, db, 1, "A", "a@x.com")
	seedUser(t, db, 2, "B", "b@x.com")

	albums := sqlitestore.NewAlbumStore(sqlitestore.AlbumStoreConfig{DB: db})
	require.NoError(t, albums.Create(ctx, &models.Album{ID: 1, Name: "Holidays"}))
	require.NoError(t, albums.Create(ctx, &models.Album{ID: 2, Name: "Family"}))

	store := sqlitestore.NewPhotoStore(sqlitestore.PhotoStoreConfig{DB: db})

	require.NoError(t, store.Create(ctx, &models.Photo{
		ID:         10,
		OwnerID:    1,
		Filename:   "beach.jpg",
		Title:      "Beach",
		Date:       time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Resolution: "4000x3000",
		Tags:       []string{"sun", "sea"},
		Albums:     []int{2, 1},
	}))

	require.NoError(t, store.Create(ctx, &models.Photo{
		ID:       11,
		OwnerID:  2,
		Filename: "dog.jpg",
		Albums:   []int{2},
		IsPublic: true,
	}))

	return db, store
}

func TestPhotoStoreFindByIDLoadsChildren(t *testing.T) {
	_, store := newPhotoFixture(t)

	got, err := store.FindByID(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, "beach.jpg", got.Filename)
	assert.Equal(t, []string{"sun", "sea"}, got.Tags)
	assert.Equal(t, []int{2, 1}, got.Albums)
	assert.Empty(t, got.Comments)
	assert.False(t, got.IsPublic)
	assert.True(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC).Equal(got.Date))

	_, err = store.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, models.ErrPhotoNotFound)
}

func TestPhotoStoreQueries(t *testing.T) {
	ctx := context.Background()
	_, store := newPhotoFixture(t)

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	owned, err := store.FindByOwner(ctx, 2)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, 11, owned[0].ID)

	public, err := store.FindPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, 11, public[0].ID)

	family, err := store.FindByAlbum(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, family, 2)

	none, err := store.FindByAlbum(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPhotoStoreAddTag(t *testing.T) {
	ctx := context.Background()
	_, store := newPhotoFixture(t)

	added, err := store.AddTag(ctx, 10, "sun")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = store.AddTag(ctx, 10, "Sun")
	require.NoError(t, err)
	assert.True(t, added)

	got, err := store.FindByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"sun", "sea", "Sun"}, got.Tags)

	_, err = store.AddTag(ctx, 99, "x")
	assert.ErrorIs(t, err, models.ErrPhotoNotFound)
}

func TestPhotoStoreConcurrentTagsAreAllKept(t *testing.T) {
	ctx := context.Background()
	_, store := newPhotoFixture(t)

	tags := []string{"a", "b", "c", "d", "e", "f"}
	wg := sync.WaitGroup{}

	for _, tag := range tags {
		wg.Add(1)

		go func(tag string) {
			defer wg.Done()
			_, err := store.AddTag(ctx, 11, tag)
			assert.NoError(t, err)
		}(tag)
	}

	wg.Wait()

	got, err := store.FindByID(ctx, 11)
	require.NoError(t, err)
	assert.ElementsMatch(t, tags, got.Tags)
}

func TestPhotoStoreUpdateDetails(t *testing.T) {
	ctx := context.Background()
	_, store := newPhotoFixture(t)

	description := "Sunset at the beach"
	require.NoError(t, store.UpdateDetails(ctx, 10, nil, &description))

	got, err := store.FindByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Beach", got.Title)
	assert.Equal(t, description, got.Description)

	require.NoError(t, store.UpdateDetails(ctx, 10, nil, nil))

	title := "x"
	assert.ErrorIs(t, store.UpdateDetails(ctx, 99, &title, nil), models.ErrPhotoNotFound)
	assert.ErrorIs(t, store.UpdateDetails(ctx, 99, nil, nil), models.ErrPhotoNotFound)
}

func TestPhotoStoreSetVisibilityAndComments(t *testing.T) {
	ctx := context.Background()
	_, store := newPhotoFixture(t)

	require.NoError(t, store.SetVisibility(ctx, 10, true))
	assert.ErrorIs(t, store.SetVisibility(ctx, 99, true), models.ErrPhotoNotFound)

	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, store.AddComment(ctx, 10, models.Comment{UserID: 2, UserName: "B", Text: "nice", CreatedAt: now}))
	require.NoError(t, store.AddComment(ctx, 10, models.Comment{UserID: 1, UserName: "A", Text: "thanks", CreatedAt: now}))

	got, err := store.FindByID(ctx, 10)
	require.NoError(t, err)
	assert.True(t, got.IsPublic)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "nice", got.Comments[0].Text)
	assert.Equal(t, "thanks", got.Comments[1].Text)

	err = store.AddComment(ctx, 99, models.Comment{UserID: 1, UserName: "A", Text: "x", CreatedAt: now})
	assert.ErrorIs(t, err, models.ErrPhotoNotFound)
}

func TestPhotoStoreCreateValidates(t *testing.T) {
	ctx := context.Background()
	_, store := newPhotoFixture(t)

	err := store.Create(ctx, &models.Photo{ID: 12, OwnerID: 1, Filename: "x.jpg", Tags: []string{"a", "a"}})
	assert.ErrorIs(t, err, models.ErrValidation)

	err = store.Create(ctx, &models.Photo{ID: 10, OwnerID: 1, Filename: "dup.jpg"})
	assert.ErrorIs(t, err, models.ErrValidation)

	err = store.Create(ctx, &models.Photo{ID: 13, OwnerID: 1, Filename: "x.jpg", Albums: []int{77}})
	assert.ErrorIs(t, err, models.ErrValidation)
}
