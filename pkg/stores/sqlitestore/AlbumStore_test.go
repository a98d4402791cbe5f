package sqlitestore_test

import (
	"context"
	"testing"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/stores/sqlitestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlbumStoreFindByNameIgnoresCase(t *testing.T) {
	ctx := context.Background()
	store := sqlitestore.NewAlbumStore(sqlitestore.AlbumStoreConfig{DB: newTestDB(t)})

	require.NoError(t, store.Create(ctx, &models.Album{ID: 1, Name: "Holidays"}))
	require.NoError(t, store.Create(ctx, &models.Album{ID: 2, Name: "Family"}))

	got, err := store.FindByName(ctx, "  holidays ")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ID)

	_, err = store.FindByName(ctx, "work")
	assert.ErrorIs(t, err, models.ErrAlbumNotFound)
}

func TestAlbumStoreRejectsDuplicateNames(t *testing.T) {
	ctx := context.Background()
	store := sqlitestore.NewAlbumStore(sqlitestore.AlbumStoreConfig{DB: newTestDB(t)})

	require.NoError(t, store.Create(ctx, &models.Album{ID: 1, Name: "Holidays"}))

	err := store.Create(ctx, &models.Album{ID: 2, Name: "HOLIDAYS"})
	assert.ErrorIs(t, err, models.ErrValidation)

	err = store.Create(ctx, &models.Album{ID: 3, Name: "   "})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAlbumStoreFindAllAndByID(t *testing.T) {
	ctx := context.Background()
	store := sqlitestore.NewAlbumStore(sqlitestore.AlbumStoreConfig{DB: newTestDB(t)})

	require.NoError(t, store.Create(ctx, &models.Album{ID: 2, Name: "Family"}))
	require.NoError(t, store.Create(ctx, &models.Album{ID: 1, Name: "Holidays"}))

	got, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Album{{ID: 1, Name: "Holidays"}, {ID: 2, Name: "Family"}}, got)

	album, err := store.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Family", album.Name)

	_, err = store.FindByID(ctx, 9)
	assert.ErrorIs(t, err, models.ErrAlbumNotFound)
}
