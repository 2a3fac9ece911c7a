package middleware

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"socialnexus/internal/domain/session"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		userID     string
		cookie     string
		handler    http.HandlerFunc
		wantStatus int
		wantLine   string
	}{
		{
			name:   "anonymous first visit gets a panel",
			method: http.MethodGet,
			path:   "/panel",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.SetCookie(w, &http.Cookie{Name: PanelCookie, Value: "p-new", Path: "/"})
				w.Write([]byte("<html>"))
			},
			wantStatus: http.StatusOK,
			wantLine:   "GET /panel 200",
		},
		{
			name:   "signed in user on known panel",
			method: http.MethodPost,
			path:   "/panel/connect",
			userID: "u1",
			cookie: "p-1",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/panel", http.StatusSeeOther)
			},
			wantStatus: http.StatusSeeOther,
			wantLine:   "POST /panel/connect 303",
		},
		{
			name:   "api conflict",
			method: http.MethodPost,
			path:   "/api/social/connect",
			userID: "u2",
			cookie: "p-2",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				w.WriteHeader(http.StatusOK)
			},
			wantStatus: http.StatusConflict,
			wantLine:   "POST /api/social/connect 409",
		},
		{
			name:       "health without panel",
			method:     http.MethodGet,
			path:       "/health",
			handler:    func(w http.ResponseWriter, r *http.Request) {},
			wantStatus: http.StatusOK,
			wantLine:   "GET /health 200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: PanelCookie, Value: tt.cookie})
			}
			if tt.userID != "" {
				s := &session.Session{User: session.User{ID: tt.userID}}
				req = req.WithContext(session.WithSession(req.Context(), s))
			}
			rr := httptest.NewRecorder()

			Logging(tt.handler).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}

			line := buf.String()
			if !strings.HasPrefix(line, tt.wantLine+" ") {
				t.Errorf("log line = %q, want prefix %q", line, tt.wantLine)
			}

			wantUser := "user=-"
			if tt.userID != "" {
				wantUser = "user=" + tt.userID
			}
			if !strings.Contains(line, wantUser) {
				t.Errorf("log line = %q, want %q", line, wantUser)
			}

			wantPanel := "panel=-"
			switch {
			case tt.cookie != "":
				wantPanel = "panel=" + tt.cookie
			case rr.Header().Get("Set-Cookie") != "":
				wantPanel = "panel=p-new"
			}
			if !strings.Contains(line, wantPanel) {
				t.Errorf("log line = %q, want %q", line, wantPanel)
			}
		})
	}
}

func TestLogging_SeesSessionUser(t *testing.T) {
	buf := captureLog(t)

	handler := Session(&countingProvider{})(Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	req := httptest.NewRequest(http.MethodGet, "/api/social/panel", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "abc"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(buf.String(), "user=user-9") {
		t.Errorf("log line = %q, want user=user-9", buf.String())
	}
}
