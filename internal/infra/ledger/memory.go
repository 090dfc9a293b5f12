package ledger

import (
	"context"
	"time"

	"medslot/internal/domain/capacity"
	"medslot/internal/infra"
	"medslot/internal/pkg/errs"
)

type entry struct {
	limit int
	used  int
}

// Memory is the in-process capacity ledger. A single semaphore guards the
// whole table, which keeps TryReserve trivially all-or-nothing: no other
// reserve or release can observe a partially applied batch. Acquisition
// is bounded so a stuck holder surfaces as a retryable timeout instead of
// an indefinite block.
type Memory struct {
	sem      chan struct{}
	lockWait time.Duration
	limits   capacity.Limits
	entries  map[capacity.Key]*entry
}

func NewMemory(limits capacity.Limits, lockWait time.Duration) *Memory {
	return &Memory{
		sem:      make(chan struct{}, 1),
		lockWait: lockWait,
		limits:   limits,
		entries:  make(map[capacity.Key]*entry),
	}
}

func (m *Memory) acquire(ctx context.Context) error {
	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return infra.WrapRepoErr("ledger wait canceled", ctx.Err(), infra.KindLockTimeout)
	case <-time.After(m.lockWait):
		return infra.WrapRepoErr("ledger lock wait exceeded", nil, infra.KindLockTimeout)
	}
}

func (m *Memory) unlock() {
	<-m.sem
}

func (m *Memory) Remaining(ctx context.Context, key capacity.Key) (int, error) {
	if err := m.acquire(ctx); err != nil {
		return 0, err
	}
	defer m.unlock()

	e, ok := m.entries[key]
	if !ok {
		// Unreferenced keys report the category default without being
		// materialized; only writes create entries.
		return m.limits.For(key), nil
	}
	return e.limit - e.used, nil
}

func (m *Memory) TryReserve(ctx context.Context, items []capacity.Reservation) error {
	deltas, err := aggregate(items)
	if err != nil {
		return err
	}

	if err := m.acquire(ctx); err != nil {
		return err
	}
	defer m.unlock()

	// Check every key before touching any of them.
	for _, d := range deltas {
		e := m.ensure(d.Key)
		if e.used+d.Quantity > e.limit {
			return &capacity.InsufficientError{
				Key:       d.Key,
				Requested: d.Quantity,
				Remaining: e.limit - e.used,
			}
		}
	}
	for _, d := range deltas {
		m.entries[d.Key].used += d.Quantity
	}
	return nil
}

func (m *Memory) Release(ctx context.Context, items []capacity.Reservation) error {
	deltas, err := aggregate(items)
	if err != nil {
		return err
	}

	if err := m.acquire(ctx); err != nil {
		return err
	}
	defer m.unlock()

	for _, d := range deltas {
		e, ok := m.entries[d.Key]
		if !ok || e.used < d.Quantity {
			return infra.WrapRepoErr("release exceeds reserved capacity for "+d.Key.String(), nil, infra.KindConflict)
		}
	}
	for _, d := range deltas {
		m.entries[d.Key].used -= d.Quantity
	}
	return nil
}

func (m *Memory) ensure(key capacity.Key) *entry {
	e, ok := m.entries[key]
	if !ok {
		e = &entry{limit: m.limits.For(key)}
		m.entries[key] = e
	}
	return e
}

// aggregate folds duplicate keys into one delta each so the check phase
// sees the batch's combined effect per key. Order is preserved for
// deterministic first-failure reporting.
func aggregate(items []capacity.Reservation) ([]capacity.Reservation, error) {
	index := make(map[capacity.Key]int, len(items))
	out := make([]capacity.Reservation, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, errs.Newf("non-positive reservation quantity %d for %s", it.Quantity, it.Key)
		}
		if i, ok := index[it.Key]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.Key] = len(out)
		out = append(out, it)
	}
	return out, nil
}
