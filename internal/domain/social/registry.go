package social

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"socialnexus/internal/domain/notification"
	"socialnexus/internal/shared/messages"
)

// RegistryConfig configures how panels are built.
type RegistryConfig struct {
	Store     *LinkStore
	Connector Connector
	Executor  Executor
	Messages  *messages.Messages
	Sink      notification.Sink
	// OnClose is the host callback fired when a user dismisses a panel.
	OnClose func(panelID string)
}

// Registry keeps one panel per open browser panel.
type Registry struct {
	cfg RegistryConfig

	mu     sync.Mutex
	panels map[string]*Panel
}

func NewRegistry(cfg RegistryConfig) *Registry {
	return &Registry{
		cfg:    cfg,
		panels: make(map[string]*Panel),
	}
}

// Acquire returns the panel for id, creating and mounting a new one when id
// is unknown, closed, or was mounted for a different user. The returned bool
// is true when a new panel was created.
func (r *Registry) Acquire(ctx context.Context, id, userID string) (*Panel, bool) {
	if p, ok := r.Get(id); ok && !p.Closed() && p.UserID() == userID {
		return p, false
	}

	p := r.newPanel()
	p.Mount(ctx, userID)

	r.mu.Lock()
	r.panels[p.ID()] = p
	r.mu.Unlock()

	return p, true
}

// Get returns an existing panel.
func (r *Registry) Get(id string) (*Panel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.panels[id]
	return p, ok
}

// Remove drops a panel. Pending connects still complete.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.panels, id)
}

// Len returns the number of live panels.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.panels)
}

// Sweep removes panels idle for longer than maxIdle that have no connect in
// flight, and returns how many were removed. Panels are inspected without the
// registry lock held.
func (r *Registry) Sweep(now time.Time, maxIdle time.Duration) int {
	r.mu.Lock()
	panels := make([]*Panel, 0, len(r.panels))
	for _, p := range r.panels {
		panels = append(panels, p)
	}
	r.mu.Unlock()

	var stale []*Panel
	for _, p := range panels {
		if p.Busy() {
			continue
		}
		if p.Closed() || now.Sub(p.IdleSince()) > maxIdle {
			stale = append(stale, p)
		}
	}
	if len(stale) == 0 {
		return 0
	}

	r.mu.Lock()
	removed := 0
	for _, p := range stale {
		// the id may have been reused by a newer panel in the meantime
		if r.panels[p.ID()] == p {
			delete(r.panels, p.ID())
			removed++
		}
	}
	remaining := len(r.panels)
	r.mu.Unlock()

	if removed > 0 {
		log.Printf("Panel registry: evicted %d idle panels, %d remaining", removed, remaining)
	}
	return removed
}

// Wait blocks until every panel's connects have settled.
func (r *Registry) Wait() {
	r.mu.Lock()
	panels := make([]*Panel, 0, len(r.panels))
	for _, p := range r.panels {
		panels = append(panels, p)
	}
	r.mu.Unlock()

	for _, p := range panels {
		p.Wait()
	}
}

func (r *Registry) newPanel() *Panel {
	id := uuid.NewString()
	var onClose func()
	if r.cfg.OnClose != nil {
		onClose = func() { r.cfg.OnClose(id) }
	}

	return NewPanel(id, PanelDeps{
		Store:     r.cfg.Store,
		Connector: r.cfg.Connector,
		Executor:  r.cfg.Executor,
		Messages:  r.cfg.Messages,
		Sink:      r.cfg.Sink,
		OnClose:   onClose,
	})
}
