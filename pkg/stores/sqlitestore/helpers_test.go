package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/stores/sqlitestore"
	"github.com/rfberaldo/sqlz"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlz.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sqlitestore.Connect(dsn)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Pool().Close() })
	return db
}

func seedUser(t *testing.T, db *sqlz.DB, id int, name, email string) {
	t.Helper()

	store := sqlitestore.NewUserStore(sqlitestore.UserStoreConfig{DB: db})
	err := store.Create(context.Background(), &models.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: "digest",
	})

	require.NoError(t, err)
}
