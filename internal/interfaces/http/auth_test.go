package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"socialnexus/internal/shared/auth"
	"socialnexus/internal/shared/middleware"
)

// MockTokenIssuer implements TokenIssuer for testing
type MockTokenIssuer struct {
	GenerateFunc func(userID, email string) (string, error)
}

func (m *MockTokenIssuer) Generate(userID, email string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(userID, email)
	}
	return "token-" + userID, nil
}

func (m *MockTokenIssuer) TTL() time.Duration { return time.Hour }

func TestHandleDevLogin(t *testing.T) {
	hash, err := auth.HashDevSecret("letmein")
	if err != nil {
		t.Fatalf("HashDevSecret() error = %v", err)
	}
	secret, err := auth.NewDevSecret(hash)
	if err != nil {
		t.Fatalf("NewDevSecret() error = %v", err)
	}

	tests := []struct {
		name           string
		body           string
		issuer         *MockTokenIssuer
		expectedStatus int
		expectCookie   bool
	}{
		{
			name:           "Success",
			body:           `{"userId":"u1","email":"u1@example.com","password":"letmein"}`,
			issuer:         &MockTokenIssuer{},
			expectedStatus: http.StatusOK,
			expectCookie:   true,
		},
		{
			name:           "Wrong Password",
			body:           `{"userId":"u1","password":"nope"}`,
			issuer:         &MockTokenIssuer{},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing User",
			body:           `{"userId":"  ","password":"letmein"}`,
			issuer:         &MockTokenIssuer{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid Body",
			body:           `{`,
			issuer:         &MockTokenIssuer{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Token Error",
			body: `{"userId":"u1","password":"letmein"}`,
			issuer: &MockTokenIssuer{
				GenerateFunc: func(string, string) (string, error) { return "", errors.New("signing failed") },
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(tt.issuer, secret)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/dev-login", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.HandleDevLogin(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}

			var cookie *http.Cookie
			for _, c := range rr.Result().Cookies() {
				if c.Name == middleware.AccessTokenCookie {
					cookie = c
				}
			}
			if tt.expectCookie {
				if cookie == nil || cookie.Value != "token-u1" || !cookie.HttpOnly {
					t.Errorf("access cookie = %+v", cookie)
				}
				if cookie != nil && cookie.MaxAge != 3600 {
					t.Errorf("cookie MaxAge = %d, want 3600", cookie.MaxAge)
				}
			} else if cookie != nil {
				t.Errorf("unexpected access cookie %+v", cookie)
			}
		})
	}
}

func TestHandleDevLogin_Disabled(t *testing.T) {
	handler := NewAuthHandler(&MockTokenIssuer{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/dev-login",
		strings.NewReader(`{"userId":"u1","password":"letmein"}`))
	rr := httptest.NewRecorder()
	handler.HandleDevLogin(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("disabled dev login set a cookie")
	}
}

func TestHandleLogout(t *testing.T) {
	handler := NewAuthHandler(&MockTokenIssuer{}, nil)

	rr := httptest.NewRecorder()
	handler.HandleLogout(rr, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("logout cookies = %+v, want expired access cookie", cookies)
	}
}

func TestHandleHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("health = %d %q", rr.Code, rr.Body.String())
	}
}
