package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/stores"
)

type UserServicer interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	Register(ctx context.Context, request RegisterRequest) (*models.User, error)
	ValidateCredentials(ctx context.Context, email, password string) (*models.User, error)
}

type UserServiceConfig struct {
	Hasher PasswordHasher
	Store  stores.UserStorer
}

type UserService struct {
	hasher PasswordHasher
	store  stores.UserStorer
}

type RegisterRequest struct {
	ID              int
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

func NewUserService(config UserServiceConfig) UserService {
	return UserService{
		hasher: config.Hasher,
		store:  config.Store,
	}
}

func (s UserService) GetAll(ctx context.Context) ([]models.User, error) {
	return s.store.GetAll(ctx)
}

func (s UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.store.FindByID(ctx, id)
}

/*
Register validates the request, makes sure neither the id nor the email is
taken, and stores the user with a hashed password.
*/
func (s UserService) Register(ctx context.Context, request RegisterRequest) (*models.User, error) {
	var (
		err    error
		digest string
	)

	name := strings.TrimSpace(request.Name)
	email := models.NormalizeEmail(request.Email)

	if request.ID <= 0 || name == "" || email == "" || request.Password == "" {
		return nil, fmt.Errorf("%w: id, name, email, and password are required", models.ErrValidation)
	}

	if request.Password != request.ConfirmPassword {
		return nil, models.ErrPasswordMismatch
	}

	if err = s.ensureAvailable(ctx, request.ID, email); err != nil {
		return nil, err
	}

	if digest, err = s.hasher.Hash(request.Password); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           request.ID,
		Name:         name,
		Email:        email,
		PasswordHash: digest,
	}

	if err = s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

/*
ValidateCredentials returns the user when password matches the stored
digest. An unknown email and a wrong password give the same error.
*/
func (s UserService) ValidateCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.FindByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}

		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}

	return user, nil
}

func (s UserService) ensureAvailable(ctx context.Context, id int, email string) error {
	if _, err := s.store.FindByID(ctx, id); err == nil {
		return fmt.Errorf("%w: id %d is taken", models.ErrUserUnavailable, id)
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return err
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return fmt.Errorf("%w: email '%s' is taken", models.ErrUserUnavailable, email)
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return err
	}

	return nil
}
