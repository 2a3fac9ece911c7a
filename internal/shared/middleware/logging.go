package middleware

import (
	"log"
	"net/http"
	"time"

	"socialnexus/internal/domain/session"
)

// PanelCookie identifies the browser's panel in the registry.
const PanelCookie = "panel_id"

// statusRecorder remembers the first status written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.status != 0 {
		return
	}
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}

// Logging writes one line per request with the session user and the panel
// the request touched. It must run inside Session to see the user.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}

		log.Printf(
			"%s %s %d %s user=%s panel=%s",
			r.Method,
			r.URL.Path,
			status,
			time.Since(start),
			orDash(session.UserID(r.Context())),
			orDash(panelID(r, rec.Header())),
		)
	})
}

// panelID prefers the panel cookie the browser sent and falls back to one
// the handler just issued.
func panelID(r *http.Request, h http.Header) string {
	if c, err := r.Cookie(PanelCookie); err == nil && c.Value != "" {
		return c.Value
	}
	for _, line := range h.Values("Set-Cookie") {
		c, err := http.ParseSetCookie(line)
		if err == nil && c.Name == PanelCookie && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
