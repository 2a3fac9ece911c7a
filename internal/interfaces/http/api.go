package http

import (
	"encoding/json"
	"log"
	"net/http"

	"socialnexus/internal/domain/social"
)

// PanelAPIHandler exposes the panel as JSON for script-driven hosts.
type PanelAPIHandler struct {
	panels PanelRegistry
}

func NewPanelAPIHandler(panels PanelRegistry) *PanelAPIHandler {
	return &PanelAPIHandler{panels: panels}
}

type SelectTabRequest struct {
	Provider string `json:"provider"`
}

type ConnectRequest struct {
	Link string `json:"link"`
}

type OpenResponse struct {
	Provider social.Provider `json:"provider"`
	Link     string          `json:"link"`
}

// HandlePanel returns the current panel view.
func (h *PanelAPIHandler) HandlePanel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p := acquirePanel(w, r, h.panels)
	writeJSON(w, http.StatusOK, p.View())
}

// HandleSelectTab switches the active provider.
func (h *PanelAPIHandler) HandleSelectTab(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SelectTabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p := acquirePanel(w, r, h.panels)
	err := p.SelectTab(social.Provider(req.Provider))
	recordAction(r.Context(), "tab", err)
	if err != nil {
		writePanelError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p.View())
}

// HandleConnect starts connecting the active provider. The response is
// 202 with the provider Connecting; poll the panel for the outcome.
func (h *PanelAPIHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p := acquirePanel(w, r, h.panels)
	p.SetInput(req.Link)
	err := p.Connect(r.Context(), req.Link)
	recordAction(r.Context(), "connect", err)
	if err != nil {
		writePanelError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, p.View())
}

// HandleDisconnect clears the active provider's link.
func (h *PanelAPIHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p := acquirePanel(w, r, h.panels)
	err := p.Disconnect(r.Context())
	recordAction(r.Context(), "disconnect", err)
	if err != nil {
		writePanelError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p.View())
}

// HandleOpen returns the link the outbound opener should navigate to.
func (h *PanelAPIHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p := acquirePanel(w, r, h.panels)
	link, err := p.Open()
	recordAction(r.Context(), "open", err)
	if err != nil {
		writePanelError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, OpenResponse{Provider: p.Active(), Link: link})
}

// HandleClose dismisses the panel.
func (h *PanelAPIHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	closePanel(r, h.panels)
	w.WriteHeader(http.StatusNoContent)
}

// writePanelError reports a panel error. Internal failures get a generic body.
func writePanelError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		http.Error(w, "Something went wrong, please try again", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
