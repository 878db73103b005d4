package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidPassword  = errors.New("invalid password")
)

// Subject is the only principal; the service gates a single account.
const Subject = "app_user"

// SessionStore issues and revokes bearer tokens.
type SessionStore interface {
	Create(ctx context.Context, subject string) (string, error)
	Delete(ctx context.Context, token string) error
}

// AuthService checks the shared password and issues sessions.
type AuthService struct {
	hash     []byte
	sessions SessionStore
}

// NewAuthService returns an AuthService for a bcrypt password hash.
func NewAuthService(passwordHash string, sessions SessionStore) *AuthService {
	return &AuthService{hash: []byte(passwordHash), sessions: sessions}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Login validates password and returns a new bearer token.
func (s *AuthService) Login(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrPasswordRequired
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}
	return s.sessions.Create(ctx, Subject)
}

// Logout revokes token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}
