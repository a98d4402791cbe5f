/*
Package redisstore keeps session records in Redis. Each session is a
single key whose Redis expiry mirrors the session expiry, so Redis
discards abandoned sessions on its own.
*/
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mediacatalog:session:"

type SessionStoreConfig struct {
	Client *redis.Client
}

type SessionStore struct {
	client *redis.Client
}

type sessionRecord struct {
	UserID    int   `json:"userId"`
	ExpiresAt int64 `json:"expiresAt"`
}

/*
NewClient connects to Redis at addr. An empty password means no AUTH.
*/
func NewClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

func NewSessionStore(config SessionStoreConfig) SessionStore {
	return SessionStore{
		client: config.Client,
	}
}

func (s SessionStore) Create(ctx context.Context, session models.Session) error {
	var (
		err error
		b   []byte
	)

	record := sessionRecord{
		UserID:    session.Payload.UserID,
		ExpiresAt: session.Expiry.UnixMilli(),
	}

	if b, err = json.Marshal(record); err != nil {
		return fmt.Errorf("error encoding session: %w", err)
	}

	// Redis rejects a non-positive expiry, and an already expired session
	// still has to be readable until the session manager sweeps it.
	ttl := time.Until(session.Expiry)

	if ttl < time.Second {
		ttl = time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.client.Set(ctx, keyPrefix+session.Key, b, ttl).Err(); err != nil {
		return fmt.Errorf("error storing session: %w", err)
	}

	return nil
}

func (s SessionStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}

	return nil
}

/*
DeleteExpired walks the session keys and removes those whose recorded
expiry is at or before now. Redis key expiry normally gets there first.
*/
func (s SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	var (
		err     error
		keys    []string
		cursor  uint64
		removed int
	)

	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	for {
		if keys, cursor, err = s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result(); err != nil {
			return removed, fmt.Errorf("error scanning sessions: %w", err)
		}

		for _, key := range keys {
			record, err := s.read(ctx, key)

			if errors.Is(err, models.ErrSessionInvalid) {
				continue
			}

			if err != nil {
				return removed, err
			}

			if record.ExpiresAt > now.UnixMilli() {
				continue
			}

			deleted, err := s.client.Del(ctx, key).Result()

			if err != nil {
				return removed, fmt.Errorf("error deleting expired session: %w", err)
			}

			removed += int(deleted)
		}

		if cursor == 0 {
			break
		}
	}

	return removed, nil
}

func (s SessionStore) Get(ctx context.Context, key string) (models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	record, err := s.read(ctx, keyPrefix+key)

	if err != nil {
		return models.Session{}, err
	}

	return models.Session{
		Key:     key,
		Expiry:  time.UnixMilli(record.ExpiresAt).UTC(),
		Payload: models.SessionPayload{UserID: record.UserID},
	}, nil
}

func (s SessionStore) read(ctx context.Context, redisKey string) (sessionRecord, error) {
	var (
		err    error
		b      []byte
		record sessionRecord
	)

	if b, err = s.client.Get(ctx, redisKey).Bytes(); err != nil {
		if errors.Is(err, redis.Nil) {
			return record, models.ErrSessionInvalid
		}

		return record, fmt.Errorf("error reading session: %w", err)
	}

	if err = json.Unmarshal(b, &record); err != nil {
		return record, fmt.Errorf("error decoding session: %w", err)
	}

	return record, nil
}
