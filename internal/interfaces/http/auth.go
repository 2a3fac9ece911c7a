package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"socialnexus/internal/domain/session"
	"socialnexus/internal/shared/auth"
	"socialnexus/internal/shared/middleware"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Generate(userID, email string) (string, error)
	TTL() time.Duration
}

// SecretChecker verifies the shared dev login secret.
type SecretChecker interface {
	Check(secret string) error
}

// AuthHandler signs users in during development. Any user ID is accepted
// as long as the shared secret checks out. With a nil checker dev login is
// off and the endpoint answers 404.
type AuthHandler struct {
	tokens TokenIssuer
	secret SecretChecker
}

func NewAuthHandler(tokens TokenIssuer, secret SecretChecker) *AuthHandler {
	return &AuthHandler{tokens: tokens, secret: secret}
}

type DevLoginRequest struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

// HandleDevLogin issues a session token cookie for the requested user.
func (h *AuthHandler) HandleDevLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.secret == nil {
		http.NotFound(w, r)
		return
	}

	var req DevLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" || req.Password == "" {
		http.Error(w, "User ID and password are required", http.StatusBadRequest)
		return
	}

	if err := h.secret.Check(req.Password); err != nil {
		if !errors.Is(err, auth.ErrSecretMismatch) {
			log.Printf("Error checking dev login secret for user %s: %v", req.UserID, err)
		}
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.tokens.Generate(req.UserID, req.Email)
	if err != nil {
		log.Printf("Error generating token for user %s: %v", req.UserID, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	setAuthCookie(w, r, token, h.tokens.TTL())
	writeJSON(w, http.StatusOK, AuthResponse{
		Token: token,
		User:  session.User{ID: req.UserID, Email: req.Email},
	})
}

// HandleLogout clears the auth cookie
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Only set Secure flag when actually using HTTPS
	secure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	w.WriteHeader(http.StatusNoContent)
}

// setAuthCookie sets the session token as an HttpOnly cookie
func setAuthCookie(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	secure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}
