package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"socialnexus/internal/domain/notification"
	"socialnexus/internal/domain/session"
	"socialnexus/internal/domain/social"
)

type apiClient struct {
	t      *testing.T
	userID string
	cookie *http.Cookie
}

func (c *apiClient) do(handler http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	if c.userID != "" {
		s := &session.Session{User: session.User{ID: c.userID}}
		req = req.WithContext(session.WithSession(req.Context(), s))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)

	for _, ck := range rr.Result().Cookies() {
		if ck.Name == PanelCookie {
			c.cookie = ck
		}
	}
	return rr
}

func decodeView(t *testing.T, rr *httptest.ResponseRecorder) social.View {
	t.Helper()
	var v social.View
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

func TestPanelAPI_GetPanel(t *testing.T) {
	env := newTestEnv(t)
	h := NewPanelAPIHandler(env.registry)
	c := &apiClient{t: t}

	rr := c.do(h.HandlePanel, http.MethodGet, "/api/social/panel", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	got := decodeView(t, rr)
	want := social.View{
		PanelID:    c.cookie.Value,
		Anonymous:  true,
		Persistent: false,
		Active:     social.YouTube,
		Current:    social.ProviderView{Provider: social.YouTube, Name: "YouTube", Status: "disconnected", Active: true},
		Tabs: []social.ProviderView{
			{Provider: social.YouTube, Name: "YouTube", Status: "disconnected", Active: true},
			{Provider: social.Instagram, Name: "Instagram", Status: "disconnected"},
		},
		Toasts: []notification.Notification{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("view mismatch (-want +got):\n%s", diff)
	}
}

func TestPanelAPI_ConnectThenOpen(t *testing.T) {
	env := newTestEnv(t)
	h := NewPanelAPIHandler(env.registry)
	c := &apiClient{t: t, userID: "7"}

	rr := c.do(h.HandleSelectTab, http.MethodPost, "/api/social/tab", SelectTabRequest{Provider: "instagram"})
	if rr.Code != http.StatusOK {
		t.Fatalf("tab status = %d", rr.Code)
	}

	rr = c.do(h.HandleConnect, http.MethodPost, "/api/social/connect", ConnectRequest{Link: "https://instagram.com/nexus"})
	if rr.Code != http.StatusAccepted {
		t.Fatalf("connect status = %d, want %d", rr.Code, http.StatusAccepted)
	}

	env.registry.Wait()

	rr = c.do(h.HandlePanel, http.MethodGet, "/api/social/panel", nil)
	v := decodeView(t, rr)
	if v.Current.Status != "connected" || v.Current.Link != "https://instagram.com/nexus" {
		t.Errorf("current = %+v, want connected instagram", v.Current)
	}
	wantToasts := []notification.Notification{
		{Level: notification.LevelSuccess, Message: "Instagram connected successfully!"},
	}
	if diff := cmp.Diff(wantToasts, v.Toasts, cmpopts.IgnoreFields(notification.Notification{}, "CreatedAt")); diff != "" {
		t.Errorf("toasts mismatch (-want +got):\n%s", diff)
	}
	if len(v.Stats) != len(social.DashboardStats) {
		t.Errorf("stats = %d, want %d", len(v.Stats), len(social.DashboardStats))
	}

	rr = c.do(h.HandleOpen, http.MethodGet, "/api/social/open", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("open status = %d", rr.Code)
	}
	var open OpenResponse
	json.NewDecoder(rr.Body).Decode(&open)
	if open.Provider != social.Instagram || open.Link != "https://instagram.com/nexus" {
		t.Errorf("open = %+v", open)
	}
}

func TestPanelAPI_ErrorMapping(t *testing.T) {
	env := newTestEnv(t)
	h := NewPanelAPIHandler(env.registry)

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		method     string
		body       any
		wantStatus int
	}{
		{"invalid body", h.HandleConnect, http.MethodPost, "{not json", http.StatusBadRequest},
		{"empty link", h.HandleConnect, http.MethodPost, ConnectRequest{Link: ""}, http.StatusBadRequest},
		{"bad url", h.HandleConnect, http.MethodPost, ConnectRequest{Link: "youtube"}, http.StatusBadRequest},
		{"unknown provider", h.HandleSelectTab, http.MethodPost, SelectTabRequest{Provider: "vine"}, http.StatusBadRequest},
		{"disconnect when disconnected", h.HandleDisconnect, http.MethodPost, nil, http.StatusNotFound},
		{"open when disconnected", h.HandleOpen, http.MethodGet, nil, http.StatusNotFound},
		{"wrong method", h.HandlePanel, http.MethodDelete, nil, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &apiClient{t: t}
			rr := c.do(tt.handler, tt.method, "/api/social", tt.body)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %q)", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
}

func TestPanelAPI_ConnectInProgress(t *testing.T) {
	release := make(chan struct{})
	registry := social.NewRegistry(social.RegistryConfig{
		Store: social.NewLinkStore(nil),
		Connector: connectorFunc(func(ctx context.Context, _ social.Provider, _ string) error {
			<-release
			return nil
		}),
	})
	h := NewPanelAPIHandler(registry)
	c := &apiClient{t: t}

	rr := c.do(h.HandleConnect, http.MethodPost, "/api/social/connect", ConnectRequest{Link: "https://youtube.com/@a"})
	if rr.Code != http.StatusAccepted {
		t.Fatalf("first connect status = %d", rr.Code)
	}
	if v := decodeView(t, rr); !v.Busy {
		t.Error("view should be busy while connecting")
	}

	rr = c.do(h.HandleConnect, http.MethodPost, "/api/social/connect", ConnectRequest{Link: "https://youtube.com/@b"})
	if rr.Code != http.StatusConflict {
		t.Errorf("second connect status = %d, want %d", rr.Code, http.StatusConflict)
	}

	rr = c.do(h.HandleDisconnect, http.MethodPost, "/api/social/disconnect", nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("disconnect while connecting status = %d, want %d", rr.Code, http.StatusConflict)
	}

	close(release)
	registry.Wait()
}

func TestPanelAPI_DisconnectPersistenceFailure(t *testing.T) {
	kv := &failingKV{value: "https://youtube.com/@a"}
	registry := social.NewRegistry(social.RegistryConfig{
		Store:     social.NewLinkStore(kv),
		Connector: social.NewSimulatedConnector(0),
	})
	h := NewPanelAPIHandler(registry)
	c := &apiClient{t: t, userID: "1"}

	rr := c.do(h.HandleDisconnect, http.MethodPost, "/api/social/disconnect", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}

	rr = c.do(h.HandlePanel, http.MethodGet, "/api/social/panel", nil)
	v := decodeView(t, rr)
	if v.Current.Status != "connected" {
		t.Errorf("status = %q, want connected after failed disconnect", v.Current.Status)
	}
	if len(v.Toasts) != 1 || v.Toasts[0].Message != "Something went wrong, please try again" {
		t.Errorf("toasts = %+v, want generic error", v.Toasts)
	}
}

func TestPanelAPI_Close(t *testing.T) {
	env := newTestEnv(t)
	h := NewPanelAPIHandler(env.registry)
	c := &apiClient{t: t}

	c.do(h.HandlePanel, http.MethodGet, "/api/social/panel", nil)
	rr := c.do(h.HandleClose, http.MethodPost, "/api/social/close", nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if len(env.closedPanels()) != 1 {
		t.Errorf("onClose calls = %d, want 1", len(env.closedPanels()))
	}
}

func TestPanelAPI_CloseWithoutPanel(t *testing.T) {
	env := newTestEnv(t)
	h := NewPanelAPIHandler(env.registry)
	c := &apiClient{t: t}

	rr := c.do(h.HandleClose, http.MethodPost, "/api/social/close", nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if len(env.closedPanels()) != 0 {
		t.Errorf("onClose calls = %d, want 0", len(env.closedPanels()))
	}
	if n := env.registry.Len(); n != 0 {
		t.Errorf("registry has %d panels, want 0", n)
	}
	if c.cookie != nil {
		t.Error("close handed out a panel cookie")
	}
}

type connectorFunc func(ctx context.Context, p social.Provider, link string) error

func (f connectorFunc) Connect(ctx context.Context, p social.Provider, link string) error {
	return f(ctx, p, link)
}

// failingKV serves one stored value and fails every write.
type failingKV struct {
	value string
}

func (f *failingKV) Get(ctx context.Context, key string) (string, bool, error) {
	return f.value, true, nil
}

func (f *failingKV) Set(ctx context.Context, key, value string) error {
	return errBackend
}

func (f *failingKV) Remove(ctx context.Context, key string) error {
	return errBackend
}
