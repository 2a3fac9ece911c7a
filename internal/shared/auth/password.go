package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptySecret    = errors.New("dev login secret is empty")
	ErrSecretMismatch = errors.New("dev login secret does not match")
)

// DevSecret holds the bcrypt hash from DEV_LOGIN_PASSWORD_HASH.
type DevSecret struct {
	hash []byte
}

// NewDevSecret parses a configured bcrypt hash. A malformed hash fails here
// rather than on the first sign-in.
func NewDevSecret(hash string) (*DevSecret, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid DEV_LOGIN_PASSWORD_HASH: %w", err)
	}
	return &DevSecret{hash: []byte(hash)}, nil
}

// Check reports whether secret matches the configured hash.
func (d *DevSecret) Check(secret string) error {
	if secret == "" {
		return ErrEmptySecret
	}
	err := bcrypt.CompareHashAndPassword(d.hash, []byte(secret))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrSecretMismatch
	}
	return err
}

// HashDevSecret produces a value for DEV_LOGIN_PASSWORD_HASH.
func HashDevSecret(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash dev login secret: %w", err)
	}
	return string(hash), nil
}
