package models

import (
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

/*
NormalizeEmail is the form every store uses for email storage and lookup.
*/
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u User) Validate() error {
	if u.ID <= 0 {
		return fmt.Errorf("%w: user id must be a positive number", ErrValidation)
	}

	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: user name is required", ErrValidation)
	}

	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: user email is required", ErrValidation)
	}

	if u.PasswordHash == "" {
		return fmt.Errorf("%w: user password digest is required", ErrValidation)
	}

	return nil
}
