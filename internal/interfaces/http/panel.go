package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"socialnexus/internal/domain/session"
	"socialnexus/internal/domain/social"
	"socialnexus/internal/shared/middleware"
	"socialnexus/internal/web"
)

// PanelCookie identifies the browser's panel in the registry.
const PanelCookie = middleware.PanelCookie

var (
	panelMeter       = otel.Meter("socialnexus/panel")
	panelActions, _  = panelMeter.Int64Counter("panel.action.total", metric.WithDescription("Panel actions by name and outcome"))
	panelsCreated, _ = panelMeter.Int64Counter("panel.created.total", metric.WithDescription("Panels created"))
)

// PanelRegistry is the subset of social.Registry the handlers use.
type PanelRegistry interface {
	Acquire(ctx context.Context, id, userID string) (*social.Panel, bool)
	Get(id string) (*social.Panel, bool)
	Remove(id string)
}

// PanelHandler serves the server-rendered panel.
type PanelHandler struct {
	panels           PanelRegistry
	tmpl             *template.Template
	closeRedirectURL string
}

func NewPanelHandler(panels PanelRegistry, closeRedirectURL string) (*PanelHandler, error) {
	tmpl, err := web.PanelTemplate()
	if err != nil {
		return nil, fmt.Errorf("parse panel template: %w", err)
	}
	if closeRedirectURL == "" {
		closeRedirectURL = "/"
	}
	return &PanelHandler{panels: panels, tmpl: tmpl, closeRedirectURL: closeRedirectURL}, nil
}

// acquirePanel returns the caller's panel, creating one and setting the
// panel cookie when needed.
func acquirePanel(w http.ResponseWriter, r *http.Request, panels PanelRegistry) *social.Panel {
	var id string
	if c, err := r.Cookie(PanelCookie); err == nil {
		id = c.Value
	}

	p, created := panels.Acquire(r.Context(), id, session.UserID(r.Context()))
	if created {
		panelsCreated.Add(r.Context(), 1)
		http.SetCookie(w, &http.Cookie{
			Name:     PanelCookie,
			Value:    p.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return p
}

// closePanel closes the caller's live panel, if there is one.
// It never creates a panel.
func closePanel(r *http.Request, panels PanelRegistry) {
	c, err := r.Cookie(PanelCookie)
	if err != nil || c.Value == "" {
		return
	}
	p, ok := panels.Get(c.Value)
	if !ok || p.Closed() || p.UserID() != session.UserID(r.Context()) {
		return
	}
	p.Close()
	panels.Remove(p.ID())
	recordAction(r.Context(), "close", nil)
}

func recordAction(ctx context.Context, action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = errorKind(err)
	}
	panelActions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}

// HandlePanel renders the panel.
func (h *PanelHandler) HandlePanel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p := acquirePanel(w, r, h.panels)

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, p.View()); err != nil {
		log.Printf("Error rendering panel %s: %v", p.ID(), err)
		http.Error(w, "Failed to render panel", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// HandleSelectTab switches the active provider.
func (h *PanelHandler) HandleSelectTab(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p := acquirePanel(w, r, h.panels)
	err := p.SelectTab(social.Provider(r.FormValue("provider")))
	recordAction(r.Context(), "tab", err)
	if err != nil {
		log.Printf("Panel %s: ignoring tab switch: %v", p.ID(), err)
	}
	h.backToPanel(w, r)
}

// HandleConnect submits the connect form.
func (h *PanelHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p := acquirePanel(w, r, h.panels)
	raw := r.FormValue("link")
	p.SetInput(raw)

	// the panel reports failures as toasts on the next render
	err := p.Connect(r.Context(), raw)
	recordAction(r.Context(), "connect", err)
	h.backToPanel(w, r)
}

// HandleDisconnect clears the active provider's link.
func (h *PanelHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p := acquirePanel(w, r, h.panels)
	err := p.Disconnect(r.Context())
	recordAction(r.Context(), "disconnect", err)
	h.backToPanel(w, r)
}

// HandleOpen sends the browser to the active provider's stored link.
func (h *PanelHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p := acquirePanel(w, r, h.panels)
	link, err := p.Open()
	recordAction(r.Context(), "open", err)
	if err != nil {
		h.backToPanel(w, r)
		return
	}
	http.Redirect(w, r, link, http.StatusSeeOther)
}

// HandleClose dismisses the panel and fires the host's onClose callback.
func (h *PanelHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	closePanel(r, h.panels)

	http.SetCookie(w, &http.Cookie{
		Name:     PanelCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.closeRedirectURL, http.StatusSeeOther)
}

func (h *PanelHandler) backToPanel(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/panel", http.StatusSeeOther)
}

// errorKind names an error for metrics and maps onto statusFor.
func errorKind(err error) string {
	var verr *social.ValidationError
	switch {
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, social.ErrUnknownProvider):
		return "invalid"
	case errors.Is(err, social.ErrConnectInProgress):
		return "in_progress"
	case errors.Is(err, social.ErrNotConnected):
		return "not_connected"
	default:
		return "error"
	}
}

// statusFor maps panel errors onto HTTP status codes.
func statusFor(err error) int {
	switch errorKind(err) {
	case "invalid":
		return http.StatusBadRequest
	case "in_progress":
		return http.StatusConflict
	case "not_connected":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
