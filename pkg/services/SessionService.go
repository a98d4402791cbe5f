package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/stores"
	"github.com/google/uuid"
)

const DefaultSessionTTL = 4 * time.Minute

type SessionServicer interface {
	End(ctx context.Context, key string) error
	GetPayload(ctx context.Context, key string) (models.SessionPayload, bool)
	IsValid(ctx context.Context, key string) bool
	Lookup(ctx context.Context, key string) (models.Session, error)
	Start(ctx context.Context, payload models.SessionPayload) (models.Session, error)
	StartCleanupRoutine(interval time.Duration)
	StopCleanupRoutine()
	Sweep(ctx context.Context) (int, error)
}

type SessionServiceConfig struct {
	Now   func() time.Time
	Store stores.SessionStorer
	TTL   time.Duration
}

type SessionService struct {
	now   func() time.Time
	store stores.SessionStorer
	ttl   time.Duration

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	wg            *sync.WaitGroup
}

func NewSessionService(config SessionServiceConfig) *SessionService {
	if config.TTL <= 0 {
		config.TTL = DefaultSessionTTL
	}

	if config.Now == nil {
		config.Now = time.Now
	}

	return &SessionService{
		now:   config.Now,
		store: config.Store,
		ttl:   config.TTL,
		wg:    &sync.WaitGroup{},
	}
}

func (s *SessionService) End(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	return s.store.Delete(ctx, key)
}

func (s *SessionService) GetPayload(ctx context.Context, key string) (models.SessionPayload, bool) {
	session, err := s.Lookup(ctx, key)

	if err != nil {
		return models.SessionPayload{}, false
	}

	return session.Payload, true
}

func (s *SessionService) IsValid(ctx context.Context, key string) bool {
	_, err := s.Lookup(ctx, key)
	return err == nil
}

/*
Lookup resolves a key to its session in one store round trip. A missing or
expired session is reported as models.ErrSessionInvalid, and an expired
record is deleted on the way out.
*/
func (s *SessionService) Lookup(ctx context.Context, key string) (models.Session, error) {
	if key == "" {
		return models.Session{}, models.ErrSessionInvalid
	}

	session, err := s.store.Get(ctx, key)

	if err != nil {
		return models.Session{}, err
	}

	if session.IsExpired(s.now()) {
		if err = s.store.Delete(ctx, key); err != nil {
			slog.Error("error deleting expired session", "error", err)
		}

		return models.Session{}, models.ErrSessionInvalid
	}

	return session, nil
}

func (s *SessionService) Start(ctx context.Context, payload models.SessionPayload) (models.Session, error) {
	var (
		err error
		key string
	)

	if key, err = newSessionKey(); err != nil {
		return models.Session{}, err
	}

	session := models.Session{
		Key:     key,
		Expiry:  s.now().Add(s.ttl),
		Payload: payload,
	}

	if err = s.store.Create(ctx, session); err != nil {
		return models.Session{}, fmt.Errorf("error starting session for user %d: %w", payload.UserID, err)
	}

	return session, nil
}

// StartCleanupRoutine starts a periodic routine that removes expired sessions.
// A non-positive interval leaves the sweep off; expired sessions are still
// rejected and deleted by Lookup.
func (s *SessionService) StartCleanupRoutine(interval time.Duration) {
	if interval <= 0 {
		slog.Info("session cleanup routine disabled", "interval", interval)
		return
	}

	s.stopCleanup = make(chan struct{})
	s.cleanupTicker = time.NewTicker(interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case <-s.cleanupTicker.C:
				if _, err := s.Sweep(context.Background()); err != nil {
					slog.Error("error sweeping expired sessions", "error", err)
				}

			case <-s.stopCleanup:
				s.cleanupTicker.Stop()
				return
			}
		}
	}()

	slog.Info("session cleanup routine started", "interval", interval)
}

// StopCleanupRoutine stops the cleanup routine
func (s *SessionService) StopCleanupRoutine() {
	if s.cleanupTicker != nil {
		close(s.stopCleanup)
		s.wg.Wait()
		s.cleanupTicker = nil
		slog.Info("session cleanup routine stopped")
	}
}

func (s *SessionService) Sweep(ctx context.Context) (int, error) {
	removed, err := s.store.DeleteExpired(ctx, s.now())

	if err != nil {
		return removed, err
	}

	if removed > 0 {
		slog.Info("removed expired sessions", "removed", removed)
	}

	return removed, nil
}

/*
newSessionKey returns a 256-bit opaque key: a random UUID with the dashes
removed followed by 16 more random bytes, hex encoded.
*/
func newSessionKey() (string, error) {
	extra := make([]byte, 16)

	if _, err := rand.Read(extra); err != nil {
		return "", errors.Join(fmt.Errorf("error generating session key"), err)
	}

	return strings.ReplaceAll(uuid.NewString(), "-", "") + hex.EncodeToString(extra), nil
}
