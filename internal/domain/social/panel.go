package social

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"socialnexus/internal/domain/notification"
	"socialnexus/internal/shared/messages"
)

// PanelDeps are the collaborators a panel needs.
type PanelDeps struct {
	Store     *LinkStore
	Connector Connector
	Executor  Executor
	Messages  *messages.Messages
	// Sink receives a copy of every notification besides the panel's own queue.
	Sink notification.Sink
	// OnClose is called when the user dismisses the panel.
	OnClose func()
}

// Panel is the connect/disconnect state machine for one open panel.
// Each provider is Disconnected, Connecting or Connected; only the active
// provider is shown.
type Panel struct {
	id   string
	deps PanelDeps

	mu       sync.Mutex
	userID   string
	active   Provider
	input    string
	states   map[Provider]ConnectionState
	clearing map[Provider]bool
	lastSeen time.Time
	closed   bool

	toasts   *notification.Queue
	inflight sync.WaitGroup
	pending  int
}

func NewPanel(id string, deps PanelDeps) *Panel {
	if deps.Connector == nil {
		deps.Connector = NewSimulatedConnector(DefaultConnectDelay)
	}
	if deps.Executor == nil {
		deps.Executor = GoExecutor{}
	}
	if deps.Messages == nil {
		deps.Messages = messages.Default()
	}
	if deps.Store == nil {
		deps.Store = NewLinkStore(nil)
	}

	states := make(map[Provider]ConnectionState, len(Providers()))
	for _, p := range Providers() {
		states[p] = disconnected()
	}

	return &Panel{
		id:       id,
		deps:     deps,
		active:   DefaultProvider,
		states:   states,
		clearing: make(map[Provider]bool),
		lastSeen: time.Now(),
		toasts:   notification.NewQueue(notification.DefaultQueueSize),
	}
}

func (p *Panel) ID() string { return p.id }

// UserID returns the session user the panel was mounted for; empty when anonymous.
func (p *Panel) UserID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userID
}

// Mount binds the panel to a session user and loads both providers' links.
// Providers with a stored link start Connected.
func (p *Panel) Mount(ctx context.Context, userID string) {
	links := p.deps.Store.LoadAll(ctx, userID)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.userID = userID
	for _, prov := range Providers() {
		if p.states[prov].Status == Connecting {
			continue
		}
		if link, ok := links[prov]; ok {
			p.states[prov] = connected(link)
		} else {
			p.states[prov] = disconnected()
		}
	}
	p.touch()
}

// SelectTab makes prov the active provider and drops unsubmitted input.
// Stored links are untouched.
func (p *Panel) SelectTab(prov Provider) error {
	parsed, err := ParseProvider(string(prov))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.active = parsed
	p.input = ""
	p.touch()
	return nil
}

// SetInput records the text typed into the connect form.
func (p *Panel) SetInput(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = s
	p.touch()
}

// Active returns the provider currently shown.
func (p *Panel) Active() Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// State returns the state of one provider.
func (p *Panel) State(prov Provider) ConnectionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.states[prov]
}

// Connect validates raw and starts connecting the active provider.
// It returns once the provider is Connecting; the connector, the store write
// and the transition to Connected happen on the executor. The completion
// applies to the provider that was active here even if the tab changes.
func (p *Panel) Connect(ctx context.Context, raw string) error {
	link, err := ValidateLink(raw)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			p.notify(ctx, notification.Error(p.validationMessage(verr)))
		}
		return err
	}

	p.mu.Lock()
	prov := p.active
	prev := p.states[prov]
	if prev.Status == Connecting || p.clearing[prov] {
		p.mu.Unlock()
		p.notify(ctx, notification.Error(p.deps.Messages.ConnectInProgress))
		return ErrConnectInProgress
	}
	userID := p.userID
	p.states[prov] = ConnectionState{Status: Connecting, Link: link}
	p.input = raw
	p.pending++
	p.inflight.Add(1)
	p.touch()
	p.mu.Unlock()

	desc := fmt.Sprintf("Connect %s for panel %s", prov, p.id)
	err = p.deps.Executor.Run(userID, desc, func(jobCtx context.Context) error {
		defer p.inflight.Done()
		return p.complete(jobCtx, userID, prov, link, prev)
	})
	if err != nil {
		p.inflight.Done()
		p.mu.Lock()
		p.states[prov] = prev
		p.pending--
		p.mu.Unlock()
		log.Printf("Error dispatching connect for panel %s: %v", p.id, err)
		p.notify(ctx, notification.Error(p.deps.Messages.GenericError))
		return fmt.Errorf("dispatch connect: %w", err)
	}

	return nil
}

func (p *Panel) complete(ctx context.Context, userID string, prov Provider, link string, prev ConnectionState) error {
	if err := p.deps.Connector.Connect(ctx, prov, link); err != nil {
		p.settle(prov, prev, false)
		log.Printf("Connector failed for %s on panel %s: %v", prov, p.id, err)
		p.notify(ctx, notification.Error(p.deps.Messages.ConnectFailed))
		return err
	}

	if err := p.deps.Store.Save(ctx, userID, prov, link); err != nil {
		p.settle(prov, prev, false)
		log.Printf("Error saving %s link for panel %s: %v", prov, p.id, err)
		p.notify(ctx, notification.Error(p.deps.Messages.GenericError))
		return err
	}

	p.settle(prov, connected(link), true)
	p.notify(ctx, notification.Success(p.deps.Messages.Connected(prov.DisplayName())))
	return nil
}

// settle leaves Connecting. The input is cleared only on success and only
// when the provider is still on screen.
func (p *Panel) settle(prov Provider, state ConnectionState, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.states[prov] = state
	p.pending--
	if ok && p.active == prov {
		p.input = ""
	}
}

// Disconnect clears the active provider's link and returns it to Disconnected.
// The store is called without the panel lock held; connects and disconnects of
// the same provider are refused until it returns. On a storage failure the
// provider stays Connected.
func (p *Panel) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	prov := p.active
	if p.states[prov].Status == Connecting || p.clearing[prov] {
		p.mu.Unlock()
		return ErrConnectInProgress
	}
	if p.states[prov].Status == Disconnected {
		p.mu.Unlock()
		return ErrNotConnected
	}
	userID := p.userID
	p.clearing[prov] = true
	p.pending++
	p.touch()
	p.mu.Unlock()

	err := p.deps.Store.Clear(ctx, userID, prov)

	p.mu.Lock()
	delete(p.clearing, prov)
	p.pending--
	if err == nil {
		p.states[prov] = disconnected()
	}
	p.touch()
	p.mu.Unlock()

	if err != nil {
		log.Printf("Error clearing %s link for panel %s: %v", prov, p.id, err)
		p.notify(ctx, notification.Error(p.deps.Messages.GenericError))
		return err
	}

	p.notify(ctx, notification.Success(p.deps.Messages.Disconnected))
	return nil
}

// Open returns the active provider's link for the outbound opener.
func (p *Panel) Open() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.states[p.active]
	if st.Status != Connected {
		return "", ErrNotConnected
	}
	p.touch()
	return st.Link, nil
}

// Close dismisses the panel and fires the host's OnClose callback once.
func (p *Panel) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	if p.deps.OnClose != nil {
		p.deps.OnClose()
	}
}

// Closed reports whether Close has been called.
func (p *Panel) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Wait blocks until every started connect has settled.
func (p *Panel) Wait() {
	p.inflight.Wait()
}

// Busy reports whether any provider is Connecting or being cleared.
func (p *Panel) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending > 0
}

// IdleSince returns the last time the panel was used.
func (p *Panel) IdleSince() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

func (p *Panel) touch() {
	p.lastSeen = time.Now()
}

func (p *Panel) notify(ctx context.Context, n notification.Notification) {
	userID := p.UserID()
	p.toasts.Notify(ctx, userID, n)
	if p.deps.Sink != nil {
		p.deps.Sink.Notify(ctx, userID, n)
	}
}

func (p *Panel) validationMessage(err *ValidationError) string {
	switch err.Reason {
	case ReasonEmpty:
		return p.deps.Messages.EmptyLink
	case ReasonTooLong:
		return p.deps.Messages.LinkTooLong
	default:
		return p.deps.Messages.InvalidLink
	}
}
