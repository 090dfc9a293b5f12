package commands

import (
	"sync"

	"medslot/internal/domain/booking"

	"github.com/google/uuid"
)

// draftRegistry holds in-flight drafts until they are committed or
// discarded. Drafts are process-local by design: losing one before
// commit loses no capacity.
type draftRegistry struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID]*booking.Draft
}

func newDraftRegistry() *draftRegistry {
	return &draftRegistry{drafts: make(map[uuid.UUID]*booking.Draft)}
}

func (r *draftRegistry) put(d *booking.Draft) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[d.ID()] = d
}

func (r *draftRegistry) get(id uuid.UUID) (*booking.Draft, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drafts[id]
	return d, ok
}

func (r *draftRegistry) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drafts, id)
}

func (r *draftRegistry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.drafts)
}
