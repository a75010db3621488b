// internal/infra/memory/processed_repository.go
package memory

import (
	"context"
	"sync"
)

// ProcessedRepository is the default, session-lifetime implementation of the
// processed set: a mutex-guarded id set that lives and dies with the process.
type ProcessedRepository struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

func NewProcessedRepository() *ProcessedRepository {
	return &ProcessedRepository{seen: make(map[string]struct{})}
}

func (r *ProcessedRepository) Contains(_ context.Context, lineItemID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.seen[lineItemID]
	return ok, nil
}

func (r *ProcessedRepository) Add(_ context.Context, lineItemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[lineItemID] = struct{}{}
	return nil
}

func (r *ProcessedRepository) Remove(_ context.Context, lineItemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.seen, lineItemID)
	return nil
}

func (r *ProcessedRepository) Reset(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = make(map[string]struct{})
	return nil
}

// Count returns the number of processed ids. Used by tests and diagnostics.
func (r *ProcessedRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.seen)
}
