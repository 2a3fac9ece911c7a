package social

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRegistry(kv KVStore, onClose func(string)) *Registry {
	return NewRegistry(RegistryConfig{
		Store:     NewLinkStore(kv),
		Connector: instantConnector,
		OnClose:   onClose,
	})
}

func TestRegistry_Acquire(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data["social_yt_u1"] = "https://youtube.com/@x"
	r := newTestRegistry(kv, nil)

	p, created := r.Acquire(ctx, "", "u1")
	if !created {
		t.Fatal("Acquire() with empty id should create a panel")
	}
	if p.State(YouTube).Status != Connected {
		t.Errorf("new panel was not mounted with stored links")
	}

	same, created := r.Acquire(ctx, p.ID(), "u1")
	if created || same != p {
		t.Error("Acquire() with known id should return the same panel")
	}

	other, created := r.Acquire(ctx, p.ID(), "u2")
	if !created || other == p {
		t.Error("Acquire() for a different user should create a new panel")
	}
	if other.State(YouTube).Status != Disconnected {
		t.Error("panel for u2 shows u1's link")
	}

	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestRegistry_CloseCallsHost(t *testing.T) {
	ctx := context.Background()
	var closedID string
	var r *Registry
	r = newTestRegistry(newMemKV(), func(id string) {
		closedID = id
		r.Remove(id)
	})

	p, _ := r.Acquire(ctx, "", "u1")
	p.Close()

	if closedID != p.ID() {
		t.Errorf("OnClose got %q, want %q", closedID, p.ID())
	}
	if _, ok := r.Get(p.ID()); ok {
		t.Error("closed panel still registered")
	}

	next, created := r.Acquire(ctx, p.ID(), "u1")
	if !created || next == p {
		t.Error("Acquire() after close should create a fresh panel")
	}
}

func TestRegistry_Sweep(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	gate := newGateConnector()
	r := NewRegistry(RegistryConfig{Store: NewLinkStore(kv), Connector: gate})

	idle, _ := r.Acquire(ctx, "", "u1")
	busy, _ := r.Acquire(ctx, "", "u2")
	busy.Connect(ctx, "https://youtube.com/@x")

	removed := r.Sweep(time.Now().Add(time.Hour), 30*time.Minute)
	if removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if _, ok := r.Get(idle.ID()); ok {
		t.Error("idle panel survived sweep")
	}
	if _, ok := r.Get(busy.ID()); !ok {
		t.Error("panel with a pending connect was evicted")
	}

	close(gate.release)
	r.Wait()
	if got, _ := NewLinkStore(kv).Load(ctx, "u2", YouTube); got != "https://youtube.com/@x" {
		t.Errorf("pending connect lost: stored %q", got)
	}
}

// finishesWithin fails the test when fn does not return in d.
func finishesWithin(t *testing.T, d time.Duration, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("%s blocked for more than %v", what, d)
	}
}

func TestRegistry_StalledStoreDoesNotBlockOtherPanels(t *testing.T) {
	ctx := context.Background()
	kv := newStallingKV()
	kv.data["social_yt_u1"] = "https://youtube.com/@x"
	r := NewRegistry(RegistryConfig{Store: NewLinkStore(kv), Connector: instantConnector})

	p, _ := r.Acquire(ctx, "", "u1")

	disconnected := make(chan error, 1)
	go func() { disconnected <- p.Disconnect(ctx) }()
	<-kv.entered

	finishesWithin(t, time.Second, "View() during a stalled store call", func() {
		if v := p.View(); v.Current.Status != "connected" {
			t.Errorf("status during clear = %q, want connected", v.Current.Status)
		}
	})
	finishesWithin(t, time.Second, "Sweep()", func() {
		if n := r.Sweep(time.Now().Add(time.Hour), time.Minute); n != 0 {
			t.Errorf("Sweep() evicted %d panels, want 0 while a clear is in flight", n)
		}
	})
	finishesWithin(t, time.Second, "Acquire() for another user", func() {
		r.Acquire(ctx, "", "u2")
	})

	if err := p.Connect(ctx, "https://youtube.com/@y"); !errors.Is(err, ErrConnectInProgress) {
		t.Errorf("Connect() during clear error = %v, want ErrConnectInProgress", err)
	}
	if err := p.Disconnect(ctx); !errors.Is(err, ErrConnectInProgress) {
		t.Errorf("second Disconnect() error = %v, want ErrConnectInProgress", err)
	}

	close(kv.release)
	if err := <-disconnected; err != nil {
		t.Fatalf("Disconnect() failed: %v", err)
	}
	if got := p.State(YouTube); got.Status != Disconnected {
		t.Errorf("State() = %+v, want Disconnected", got)
	}
	if _, ok := kv.data["social_yt_u1"]; ok {
		t.Error("link still stored after Disconnect")
	}
}
