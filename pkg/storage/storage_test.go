package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackends(t *testing.T) {
	server := miniredis.RunT(t)

	tests := []struct {
		name   string
		config storage.Config
	}{
		{
			name:   "sqlite",
			config: storage.Config{StoreDriver: "sqlite", DSN: "file:" + filepath.Join(t.TempDir(), "a.db") + "?_pragma=foreign_keys(1)"},
		},
		{
			name: "blank store driver with explicit sqlite sessions",
			config: storage.Config{
				DSN:           "file:" + filepath.Join(t.TempDir(), "c.db") + "?_pragma=foreign_keys(1)",
				SessionDriver: "sqlite",
			},
		},
		{
			name:   "clover",
			config: storage.Config{StoreDriver: "clover", CloverDir: t.TempDir()},
		},
		{
			name: "sqlite with redis sessions",
			config: storage.Config{
				StoreDriver:   "sqlite",
				DSN:           "file:" + filepath.Join(t.TempDir(), "b.db") + "?_pragma=foreign_keys(1)",
				SessionDriver: "redis",
				RedisAddr:     server.Addr(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			s, err := storage.Open(tt.config)
			require.NoError(t, err)
			defer s.Close()

			require.NoError(t, s.Users.Create(ctx, &models.User{ID: 1, Name: "A", Email: "a@x.com", PasswordHash: "d"}))
			require.NoError(t, s.Sessions.Create(ctx, models.Session{Key: "k", Expiry: time.Now().Add(time.Minute), Payload: models.SessionPayload{UserID: 1}}))

			got, err := s.Sessions.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, 1, got.Payload.UserID)
		})
	}
}

func TestOpenRejectsUnknownDrivers(t *testing.T) {
	_, err := storage.Open(storage.Config{StoreDriver: "mongo"})
	assert.Error(t, err)

	_, err = storage.Open(storage.Config{
		StoreDriver:   "clover",
		CloverDir:     t.TempDir(),
		SessionDriver: "memcached",
	})
	assert.Error(t, err)
}
