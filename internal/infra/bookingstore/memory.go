package bookingstore

import (
	"context"
	"sort"
	"sync"

	"medslot/internal/domain/booking"
	"medslot/internal/domain/capacity"
	"medslot/internal/usecase/queries"
)

// Memory is the in-process append-only record store. Records are kept in
// (committed_at, id) order; there is no update or delete path.
type Memory struct {
	mu      sync.RWMutex
	records []*booking.Record
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, rec *booking.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := sort.Search(len(m.records), func(i int) bool {
		return less(rec, m.records[i])
	})
	m.records = append(m.records, nil)
	copy(m.records[i+1:], m.records[i:])
	m.records[i] = rec
	return nil
}

func (m *Memory) ListByResource(
	_ context.Context,
	resource capacity.ResourceKey,
	after *queries.Cursor,
	limit int32,
) ([]*booking.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*booking.Record, 0, limit)
	for _, rec := range m.records {
		if rec.Resource() != resource {
			continue
		}
		if after != nil && !afterCursor(rec, after) {
			continue
		}
		out = append(out, rec)
		if limit > 0 && int32(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func less(a, b *booking.Record) bool {
	if !a.CommittedAt().Equal(b.CommittedAt()) {
		return a.CommittedAt().Before(b.CommittedAt())
	}
	return a.ID().String() < b.ID().String()
}

func afterCursor(rec *booking.Record, c *queries.Cursor) bool {
	if !rec.CommittedAt().Equal(c.CommittedAt) {
		return rec.CommittedAt().After(c.CommittedAt)
	}
	return rec.ID().String() > c.ID.String()
}
