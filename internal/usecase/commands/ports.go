package commands

import (
	"context"

	"medslot/internal/domain/booking"
	"medslot/internal/domain/capacity"
)

// Ledger is the authoritative capacity store. TryReserve is all-or-nothing
// across the given keys: either every delta is applied or none is, and
// concurrent calls sharing any key serialize. A losing call returns
// *capacity.InsufficientError for the first exhausted key.
type Ledger interface {
	Remaining(ctx context.Context, key capacity.Key) (int, error)
	TryReserve(ctx context.Context, items []capacity.Reservation) error
	Release(ctx context.Context, items []capacity.Reservation) error
}

// RecordStore is the append-only log of committed bookings.
type RecordStore interface {
	Append(ctx context.Context, rec *booking.Record) error
}

// Catalog resolves resource descriptors against the configured
// provider/unit/slot catalogs.
type Catalog interface {
	HasResource(resource capacity.ResourceKey) bool
	ValidSlot(resource capacity.ResourceKey, slot string) bool
}
