package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	PasswordModeBcrypt       = "bcrypt"
	PasswordModeLegacySha256 = "legacy-sha256"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

/*
NewPasswordHasher returns the hasher for mode. An empty mode means bcrypt.
A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
*/
func NewPasswordHasher(mode string, cost int) (PasswordHasher, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", PasswordModeBcrypt:
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			cost = bcrypt.DefaultCost
		}

		return BcryptPasswordHasher{cost: cost}, nil

	case PasswordModeLegacySha256:
		return LegacyDigestPasswordHasher{}, nil
	}

	return nil, fmt.Errorf("unknown password mode '%s'", mode)
}

type BcryptPasswordHasher struct {
	cost int
}

func (h BcryptPasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)

	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	return string(b), nil
}

func (h BcryptPasswordHasher) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

/*
LegacyDigestPasswordHasher reproduces digests written by older deployments:
an unsalted SHA-256 of the password, hex encoded. Identical passwords give
identical digests. Only use it to read existing credential data.
*/
type LegacyDigestPasswordHasher struct{}

func (h LegacyDigestPasswordHasher) Hash(plain string) (string, error) {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:]), nil
}

func (h LegacyDigestPasswordHasher) Verify(plain, digest string) bool {
	want, _ := h.Hash(plain)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(digest))) == 1
}
