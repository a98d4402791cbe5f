package sqlitestore

import (
	"context"
	"fmt"
	"time"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/rfberaldo/sqlz"
)

type SessionStoreConfig struct {
	DB *sqlz.DB
}

type SessionStore struct {
	db *sqlz.DB
}

type sessionRow struct {
	SessionKey string `db:"session_key"`
	UserID     int    `db:"user_id"`
	ExpiresAt  int64  `db:"expires_at"`
}

func NewSessionStore(config SessionStoreConfig) SessionStore {
	return SessionStore{
		db: config.DB,
	}
}

func (s SessionStore) Create(ctx context.Context, session models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	sql := `
INSERT INTO sessions (
   session_key
   , user_id
   , expires_at
) VALUES (?, ?, ?)
`

	if _, err := s.db.Exec(ctx, sql, session.Key, session.Payload.UserID, session.Expiry.UnixMilli()); err != nil {
		return fmt.Errorf("error inserting session: %w", err)
	}

	return nil
}

func (s SessionStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE session_key=?`, key); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}

	return nil
}

func (s SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	result, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.UnixMilli())

	if err != nil {
		return 0, fmt.Errorf("error deleting expired sessions: %w", err)
	}

	removed, _ := result.RowsAffected()
	return int(removed), nil
}

func (s SessionStore) Get(ctx context.Context, key string) (models.Session, error) {
	var (
		err error
		row sessionRow
	)

	sql := `
SELECT
   s.session_key
   , s.user_id
   , s.expires_at
FROM sessions AS s
WHERE 1=1
   AND s.session_key=?
`

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &row, sql, key); err != nil {
		if sqlz.IsNotFound(err) {
			return models.Session{}, models.ErrSessionInvalid
		}

		return models.Session{}, fmt.Errorf("error querying for session: %w", err)
	}

	return models.Session{
		Key:     row.SessionKey,
		Expiry:  time.UnixMilli(row.ExpiresAt).UTC(),
		Payload: models.SessionPayload{UserID: row.UserID},
	}, nil
}
