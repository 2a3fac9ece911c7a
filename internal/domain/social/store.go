package social

import (
	"context"
	"fmt"
	"log"
)

// KVStore is the narrow key/value contract the link store persists through.
// Get reports found=false for a missing key.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// LinkStore reads and writes one link per (user, provider).
// An empty user ID means an anonymous session: reads find nothing and
// writes are skipped.
type LinkStore struct {
	kv KVStore
}

func NewLinkStore(kv KVStore) *LinkStore {
	return &LinkStore{kv: kv}
}

// Persistent reports whether links saved for userID outlive the panel.
func (s *LinkStore) Persistent(userID string) bool {
	return userID != "" && s.kv != nil
}

// Load returns the stored link for the user and provider.
// Read failures are logged and treated as absent.
func (s *LinkStore) Load(ctx context.Context, userID string, p Provider) (string, bool) {
	if !s.Persistent(userID) {
		return "", false
	}

	link, found, err := s.kv.Get(ctx, StorageKey(userID, p))
	if err != nil {
		log.Printf("Error loading %s link for user %s: %v", p, userID, err)
		return "", false
	}
	if !found || link == "" {
		return "", false
	}
	return link, true
}

// Save stores link, replacing any prior value.
func (s *LinkStore) Save(ctx context.Context, userID string, p Provider, link string) error {
	if !s.Persistent(userID) {
		return nil
	}

	if err := s.kv.Set(ctx, StorageKey(userID, p), link); err != nil {
		return fmt.Errorf("%w: save %s link: %v", ErrPersistence, p, err)
	}
	return nil
}

// Clear removes the stored link. Removing a missing link is not an error.
func (s *LinkStore) Clear(ctx context.Context, userID string, p Provider) error {
	if !s.Persistent(userID) {
		return nil
	}

	if err := s.kv.Remove(ctx, StorageKey(userID, p)); err != nil {
		return fmt.Errorf("%w: clear %s link: %v", ErrPersistence, p, err)
	}
	return nil
}

// LoadAll returns every stored link for a user keyed by provider.
func (s *LinkStore) LoadAll(ctx context.Context, userID string) map[Provider]string {
	links := make(map[Provider]string, len(Providers()))
	for _, p := range Providers() {
		if link, ok := s.Load(ctx, userID, p); ok {
			links[p] = link
		}
	}
	return links
}
