package session

import (
	"context"
	"errors"
	"log"
)

var (
	ErrNoSession      = errors.New("no session")
	ErrInvalidSession = errors.New("invalid session")
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Session is the signed-in identity the panel persists links for.
type Session struct {
	User User `json:"user"`
}

// Provider resolves the session carried by a request credential.
// It returns ErrNoSession when the token does not belong to it.
type Provider interface {
	GetSession(ctx context.Context, token string) (*Session, error)
}

// Chain asks each provider in turn and returns the first session found.
type Chain []Provider

func (c Chain) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	var errs []error
	for _, p := range c {
		if p == nil {
			continue
		}
		s, err := p.GetSession(ctx, token)
		if err == nil && s != nil && s.User.ID != "" {
			return s, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil, ErrNoSession
	}
	return nil, errors.Join(errs...)
}

// Resolve returns the session for token, or nil for an anonymous visitor.
// Provider failures are logged and degrade to anonymous.
func Resolve(ctx context.Context, p Provider, token string) *Session {
	if p == nil || token == "" {
		return nil
	}

	s, err := p.GetSession(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			log.Printf("Session lookup failed, continuing anonymously: %v", err)
		}
		return nil
	}
	if s == nil || s.User.ID == "" {
		return nil
	}
	return s
}

type contextKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// UserID returns the session user ID in ctx, or "" when anonymous.
func UserID(ctx context.Context) string {
	if s, ok := FromContext(ctx); ok {
		return s.User.ID
	}
	return ""
}
