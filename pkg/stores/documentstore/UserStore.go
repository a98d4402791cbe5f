package documentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/ostafen/clover/v2"
	"github.com/ostafen/clover/v2/document"
	"github.com/ostafen/clover/v2/query"
)

const emailClaim = "email"

type UserStoreConfig struct {
	DB *clover.DB
}

type UserStore struct {
	db *clover.DB
}

type userRecord struct {
	ID           int    `clover:"id" json:"id"`
	Name         string `clover:"name" json:"name"`
	Email        string `clover:"email" json:"email"`
	PasswordHash string `clover:"passwordHash" json:"passwordHash"`
	CreatedAt    int64  `clover:"createdAt" json:"createdAt"`
}

func (r userRecord) toModel() models.User {
	return models.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    fromMillis(r.CreatedAt),
	}
}

func NewUserStore(config UserStoreConfig) UserStore {
	return UserStore{
		db: config.DB,
	}
}

/*
Create claims the email first and then inserts the user under a document
id derived from the numeric id. Either collision reports the user as
unavailable.
*/
func (s UserStore) Create(ctx context.Context, user *models.User) error {
	if err := checkContext(ctx, "UserStore.Create"); err != nil {
		return err
	}

	var (
		err     error
		claimed bool
	)

	if err = user.Validate(); err != nil {
		return err
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	user.Email = models.NormalizeEmail(user.Email)

	if claimed, err = claim(s.db, emailClaim, user.Email, user.ID); err != nil {
		return err
	}

	if !claimed {
		return fmt.Errorf("%w: email '%s' is taken", models.ErrUserUnavailable, user.Email)
	}

	record := userRecord{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    toMillis(user.CreatedAt),
	}

	if _, err = s.db.InsertOne(usersCollection, newDocument(record, documentID(usersCollection, user.ID))); err != nil {
		_ = releaseClaim(s.db, emailClaim, user.Email)

		if errors.Is(err, clover.ErrDuplicateKey) {
			return fmt.Errorf("%w: id %d is taken", models.ErrUserUnavailable, user.ID)
		}

		return fmt.Errorf("error inserting user %d: %w", user.ID, err)
	}

	return nil
}

func (s UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := checkContext(ctx, "UserStore.FindByEmail"); err != nil {
		return nil, err
	}

	var (
		err   error
		owner int
		found bool
	)

	if owner, found, err = findClaim(s.db, emailClaim, models.NormalizeEmail(email)); err != nil {
		return nil, err
	}

	if !found {
		return nil, models.ErrUserNotFound
	}

	return s.FindByID(ctx, owner)
}

func (s UserStore) FindByID(ctx context.Context, id int) (*models.User, error) {
	if err := checkContext(ctx, "UserStore.FindByID"); err != nil {
		return nil, err
	}

	var (
		err    error
		doc    *document.Document
		record userRecord
	)

	if doc, err = s.db.FindById(usersCollection, documentID(usersCollection, id)); err != nil {
		return nil, fmt.Errorf("error querying for user %d: %w", id, err)
	}

	if doc == nil {
		return nil, models.ErrUserNotFound
	}

	if err = doc.Unmarshal(&record); err != nil {
		return nil, fmt.Errorf("error decoding user %d: %w", id, err)
	}

	result := record.toModel()
	return &result, nil
}

func (s UserStore) GetAll(ctx context.Context) ([]models.User, error) {
	if err := checkContext(ctx, "UserStore.GetAll"); err != nil {
		return nil, err
	}

	var (
		err  error
		docs []*document.Document
	)

	if docs, err = s.db.FindAll(query.NewQuery(usersCollection).Sort(query.SortOption{Field: "name", Direction: 1})); err != nil {
		return nil, fmt.Errorf("error querying for all users: %w", err)
	}

	result := make([]models.User, 0, len(docs))

	for _, doc := range docs {
		record := userRecord{}

		if err = doc.Unmarshal(&record); err != nil {
			return nil, fmt.Errorf("error decoding user: %w", err)
		}

		result = append(result, record.toModel())
	}

	return result, nil
}
