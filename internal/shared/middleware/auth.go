package middleware

import (
	"context"
	"net/http"
	"strings"

	"socialnexus/internal/domain/session"
)

type ContextKey string

const (
	UserIDKey ContextKey = "user_id"
	EmailKey  ContextKey = "email"
)

// AccessTokenCookie carries the session token for browser requests.
const AccessTokenCookie = "access_token"

// TokenFromRequest returns the session token from the access_token cookie,
// falling back to an Authorization: Bearer header.
func TokenFromRequest(r *http.Request) string {
	// Try HttpOnly cookie first (browser requests)
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	// Fall back to Authorization header (API clients)
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Session resolves the optional session for every request. A missing or
// unusable credential leaves the request anonymous.
func Session(provider session.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.Resolve(r.Context(), provider, TokenFromRequest(r))
			if s == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), s)))
		})
	}
}

// Auth rejects requests without a valid session.
func Auth(provider session.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Already resolved by Session
			if _, ok := session.FromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			token := TokenFromRequest(r)
			if token == "" {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			s := session.Resolve(r.Context(), provider, token)
			if s == nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), s)))
		})
	}
}

func withSession(ctx context.Context, s *session.Session) context.Context {
	ctx = session.WithSession(ctx, s)
	ctx = context.WithValue(ctx, UserIDKey, s.User.ID)
	return context.WithValue(ctx, EmailKey, s.User.Email)
}
