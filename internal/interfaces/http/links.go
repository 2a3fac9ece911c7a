package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"socialnexus/internal/domain/session"
	"socialnexus/internal/domain/social"
)

// LinkStore is the subset of social.LinkStore the links API uses.
type LinkStore interface {
	LoadAll(ctx context.Context, userID string) map[social.Provider]string
	Save(ctx context.Context, userID string, p social.Provider, link string) error
	Clear(ctx context.Context, userID string, p social.Provider) error
}

// LinksHandler manages a signed-in user's stored links directly, outside
// any panel. Changes show up in panels mounted afterwards.
type LinksHandler struct {
	links LinkStore
}

func NewLinksHandler(links LinkStore) *LinksHandler {
	return &LinksHandler{links: links}
}

type LinkResponse struct {
	Provider  social.Provider `json:"provider"`
	Name      string          `json:"name"`
	Connected bool            `json:"connected"`
	Link      string          `json:"link,omitempty"`
}

type SaveLinkRequest struct {
	Link string `json:"link"`
}

// HandleLinks lists the stored link for every provider.
func (h *LinksHandler) HandleLinks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := session.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stored := h.links.LoadAll(r.Context(), userID)
	response := make([]LinkResponse, 0, len(social.Providers()))
	for _, p := range social.Providers() {
		link, ok := stored[p]
		response = append(response, LinkResponse{
			Provider:  p,
			Name:      p.DisplayName(),
			Connected: ok,
			Link:      link,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// HandleLinkByProvider routes requests for a single provider's link
func (h *LinksHandler) HandleLinkByProvider(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		h.handleSaveLink(w, r)
	case http.MethodDelete:
		h.handleClearLink(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *LinksHandler) handleSaveLink(w http.ResponseWriter, r *http.Request) {
	userID, provider, ok := h.target(w, r)
	if !ok {
		return
	}

	var req SaveLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	link, err := social.ValidateLink(req.Link)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.links.Save(r.Context(), userID, provider, link); err != nil {
		log.Printf("Error saving %s link for user %s: %v", provider, userID, err)
		http.Error(w, "Failed to save link", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, LinkResponse{
		Provider:  provider,
		Name:      provider.DisplayName(),
		Connected: true,
		Link:      link,
	})
}

func (h *LinksHandler) handleClearLink(w http.ResponseWriter, r *http.Request) {
	userID, provider, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.links.Clear(r.Context(), userID, provider); err != nil {
		log.Printf("Error clearing %s link for user %s: %v", provider, userID, err)
		http.Error(w, "Failed to clear link", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// target resolves the session user and the provider path segment.
func (h *LinksHandler) target(w http.ResponseWriter, r *http.Request) (string, social.Provider, bool) {
	userID := session.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", "", false
	}

	provider, err := social.ParseProvider(r.PathValue("provider"))
	if err != nil {
		http.Error(w, "Unknown provider", http.StatusNotFound)
		return "", "", false
	}
	return userID, provider, true
}
