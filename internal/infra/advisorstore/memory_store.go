package advisorstore

import (
	"context"
	"sync"
	"time"

	"github.com/voyora/tripweaver/internal/domain/advisor"
)

type entry struct {
	payload   advisor.Response
	expiresAt time.Time
}

// MemoryStore is an in-memory decision cache used for tests/dev and as the
// fallback when valkey is not configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry)}
}

// Get implements advisor.Store.
func (s *MemoryStore) Get(_ context.Context, key string) (advisor.Response, bool, error) {
	if key == "" {
		return advisor.Response{}, false, nil
	}
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return advisor.Response{}, false, nil
	}
	if hasExpired(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return advisor.Response{}, false, nil
	}
	return e.payload, true, nil
}

// Save caches the decision with optional TTL.
func (s *MemoryStore) Save(_ context.Context, key string, res advisor.Response, ttl time.Duration) error {
	if key == "" {
		return nil
	}
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = entry{payload: res, expiresAt: exp}
	s.mu.Unlock()
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ advisor.Store = (*MemoryStore)(nil)
