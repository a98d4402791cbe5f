package sqlitestore

import (
	"context"
	"fmt"
	"time"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/rfberaldo/sqlz"
)

type UserStoreConfig struct {
	DB *sqlz.DB
}

type UserStore struct {
	db *sqlz.DB
}

type userRow struct {
	ID           int    `db:"id"`
	CreatedAt    int64  `db:"created_at"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
}

func (r userRow) toModel() models.User {
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

func (s UserStore) Create(ctx context.Context, user *models.User) error {
	var (
		err error
	)

	if err = user.Validate(); err != nil {
		return err
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	user.Email = models.NormalizeEmail(user.Email)

	sql := `
INSERT INTO users (
   id
   , created_at
   , name
   , email
   , password_hash
) VALUES (?, ?, ?, ?, ?)
`

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, user.ID, toMillis(user.CreatedAt), user.Name, user.Email, user.PasswordHash); err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: %w", models.ErrUserUnavailable, err)
		}

		return fmt.Errorf("error inserting user %d: %w", user.ID, err)
	}

	return nil
}

func (s UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var (
		err error
		row userRow
	)

	sql := `
SELECT
   u.id
   , u.created_at
   , u.name
   , u.email
   , u.password_hash
FROM users AS u
WHERE 1=1
   AND u.email=?
`

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &row, sql, models.NormalizeEmail(email)); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrUserNotFound
		}

		return nil, fmt.Errorf("error querying for user by email: %w", err)
	}

	result := row.toModel()
	return &result, nil
}

func (s UserStore) FindByID(ctx context.Context, id int) (*models.User, error) {
	var (
		err error
		row userRow
	)

	sql := `
SELECT
   u.id
   , u.created_at
   , u.name
   , u.email
   , u.password_hash
FROM users AS u
WHERE 1=1
   AND u.id=?
`

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &row, sql, id); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrUserNotFound
		}

		return nil, fmt.Errorf("error querying for user %d: %w", id, err)
	}

	result := row.toModel()
	return &result, nil
}

func (s UserStore) GetAll(ctx context.Context) ([]models.User, error) {
	var (
		err  error
		rows []userRow
	)

	sql := `
SELECT
   u.id
   , u.created_at
   , u.name
   , u.email
   , u.password_hash
FROM users AS u
ORDER BY u.name
`

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &rows, sql); err != nil {
		return nil, fmt.Errorf("error querying for all users: %w", err)
	}

	result := make([]models.User, 0, len(rows))

	for _, row := range rows {
		result = append(result, row.toModel())
	}

	return result, nil
}
