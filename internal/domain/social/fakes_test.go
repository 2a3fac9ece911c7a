package social

import (
	"context"
	"errors"
	"sync"
)

// memKV implements KVStore for testing
type memKV struct {
	mu      sync.Mutex
	data    map[string]string
	writes  int
	failGet error
	failSet error
	failDel error
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return "", false, m.failGet
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.writes++
	m.data[key] = value
	return nil
}

func (m *memKV) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDel != nil {
		return m.failDel
	}
	m.writes++
	delete(m.data, key)
	return nil
}

func (m *memKV) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *memKV) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// gateConnector blocks until release is closed
type gateConnector struct {
	release chan struct{}
	err     error
}

func newGateConnector() *gateConnector {
	return &gateConnector{release: make(chan struct{})}
}

func (c *gateConnector) Connect(ctx context.Context, p Provider, link string) error {
	select {
	case <-c.release:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// failingExecutor refuses every job
type failingExecutor struct{}

func (failingExecutor) Run(userID, description string, fn func(ctx context.Context) error) error {
	return errors.New("queue full")
}

var instantConnector = NewSimulatedConnector(0)

func newTestPanel(kv KVStore, connector Connector) *Panel {
	return NewPanel("panel-1", PanelDeps{
		Store:     NewLinkStore(kv),
		Connector: connector,
	})
}

// stallingKV holds every Remove until release is closed.
type stallingKV struct {
	*memKV
	entered chan struct{}
	release chan struct{}
}

func newStallingKV() *stallingKV {
	return &stallingKV{
		memKV:   newMemKV(),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (s *stallingKV) Remove(ctx context.Context, key string) error {
	s.entered <- struct{}{}
	<-s.release
	return s.memKV.Remove(ctx, key)
}
