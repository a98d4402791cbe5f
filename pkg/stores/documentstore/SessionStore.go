package documentstore

import (
	"context"
	"fmt"
	"time"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/ostafen/clover/v2"
	"github.com/ostafen/clover/v2/document"
	"github.com/ostafen/clover/v2/query"
)

type SessionStoreConfig struct {
	DB *clover.DB
}

type SessionStore struct {
	db *clover.DB
}

type sessionRecord struct {
	Key       string `clover:"key" json:"key"`
	UserID    int    `clover:"userId" json:"userId"`
	ExpiresAt int64  `clover:"expiresAt" json:"expiresAt"`
}

func NewSessionStore(config SessionStoreConfig) SessionStore {
	return SessionStore{
		db: config.DB,
	}
}

func (s SessionStore) Create(ctx context.Context, session models.Session) error {
	if err := checkContext(ctx, "SessionStore.Create"); err != nil {
		return err
	}

	record := sessionRecord{
		Key:       session.Key,
		UserID:    session.Payload.UserID,
		ExpiresAt: session.Expiry.UnixMilli(),
	}

	if _, err := s.db.InsertOne(sessionsCollection, newDocument(record, documentID(sessionsCollection, session.Key))); err != nil {
		return fmt.Errorf("error inserting session: %w", err)
	}

	return nil
}

func (s SessionStore) Delete(ctx context.Context, key string) error {
	if err := checkContext(ctx, "SessionStore.Delete"); err != nil {
		return err
	}

	var (
		err error
		doc *document.Document
	)

	id := documentID(sessionsCollection, key)

	if doc, err = s.db.FindById(sessionsCollection, id); err != nil {
		return fmt.Errorf("error looking up session: %w", err)
	}

	if doc == nil {
		return nil
	}

	if err = s.db.DeleteById(sessionsCollection, id); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}

	return nil
}

/*
DeleteExpired removes every session whose expiry is at or before now in a
single clover transaction and reports how many were removed.
*/
func (s SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if err := checkContext(ctx, "SessionStore.DeleteExpired"); err != nil {
		return 0, err
	}

	removed := 0
	cutoff := now.UnixMilli()

	q := query.NewQuery(sessionsCollection).MatchFunc(func(doc *document.Document) bool {
		return toInt64(doc.Get("expiresAt")) <= cutoff
	})

	err := s.db.UpdateFunc(q, func(doc *document.Document) *document.Document {
		removed++
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("error deleting expired sessions: %w", err)
	}

	return removed, nil
}

func (s SessionStore) Get(ctx context.Context, key string) (models.Session, error) {
	if err := checkContext(ctx, "SessionStore.Get"); err != nil {
		return models.Session{}, err
	}

	var (
		err    error
		doc    *document.Document
		record sessionRecord
	)

	if doc, err = s.db.FindById(sessionsCollection, documentID(sessionsCollection, key)); err != nil {
		return models.Session{}, fmt.Errorf("error querying for session: %w", err)
	}

	if doc == nil {
		return models.Session{}, models.ErrSessionInvalid
	}

	if err = doc.Unmarshal(&record); err != nil {
		return models.Session{}, fmt.Errorf("error decoding session: %w", err)
	}

	return models.Session{
		Key:     record.Key,
		Expiry:  time.UnixMilli(record.ExpiresAt).UTC(),
		Payload: models.SessionPayload{UserID: record.UserID},
	}, nil
}
