package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"

	"socialnexus/internal/domain/session"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// SessionProvider resolves sessions from Firebase ID tokens.
type SessionProvider struct {
	verifier idTokenVerifier
}

func NewSessionProvider(ctx context.Context, app *firebase.App) (*SessionProvider, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}
	return &SessionProvider{verifier: client}, nil
}

func (p *SessionProvider) GetSession(ctx context.Context, idToken string) (*session.Session, error) {
	if idToken == "" {
		return nil, session.ErrNoSession
	}

	tok, err := p.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: firebase: %v", session.ErrInvalidSession, err)
	}
	if tok.UID == "" {
		return nil, fmt.Errorf("%w: firebase token without uid", session.ErrInvalidSession)
	}

	email, _ := tok.Claims["email"].(string)
	return &session.Session{User: session.User{ID: tok.UID, Email: email}}, nil
}
