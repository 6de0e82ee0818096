package catalog

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/voyora/tripweaver/internal/domain/trip"
)

// MemoryRepository is an in-memory CatalogRepository used for tests/dev.
type MemoryRepository struct {
	mu   sync.RWMutex
	sets map[string][]byte
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sets: make(map[string][]byte)}
}

// GetSet implements trip.CatalogRepository.
func (r *MemoryRepository) GetSet(_ context.Context, name string) (trip.Resources, bool, error) {
	r.mu.RLock()
	payload, ok := r.sets[name]
	r.mu.RUnlock()
	if !ok {
		return trip.Resources{}, false, nil
	}
	var res trip.Resources
	if err := json.Unmarshal(payload, &res); err != nil {
		return trip.Resources{}, false, err
	}
	return res, true, nil
}

// SaveSet implements trip.CatalogRepository.
func (r *MemoryRepository) SaveSet(_ context.Context, name string, res trip.Resources) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.sets[name] = payload
	r.mu.Unlock()
	return nil
}

var _ trip.CatalogRepository = (*MemoryRepository)(nil)
