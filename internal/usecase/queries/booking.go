package queries

import (
	"context"
	"time"

	"medslot/internal/domain/booking"
	"medslot/internal/domain/capacity"
	"medslot/internal/infra"
	"medslot/internal/pkg/errs"

	"github.com/google/uuid"
)

// Ledger is the read side of the capacity ledger.
type Ledger interface {
	Remaining(ctx context.Context, key capacity.Key) (int, error)
}

// Cursor is a keyset position in a booking listing, so operator views can
// restart where they left off.
type Cursor struct {
	CommittedAt time.Time
	ID          uuid.UUID
}

// RecordReader lists committed bookings ordered by (committed_at, id).
type RecordReader interface {
	ListByResource(ctx context.Context, resource capacity.ResourceKey, after *Cursor, limit int32) ([]*booking.Record, error)
}

type BookingView struct {
	ID           uuid.UUID
	Category     string
	ProviderID   string
	UnitID       string
	Buckets      []string
	Quantity     int
	RequesterRef string
	CommittedAt  time.Time
}

func ViewFromRecord(r *booking.Record) *BookingView {
	buckets := r.Buckets()
	encoded := make([]string, len(buckets))
	for i, b := range buckets {
		encoded[i] = b.Encode()
	}
	res := r.Resource()
	return &BookingView{
		ID:           r.ID(),
		Category:     string(res.Category),
		ProviderID:   res.ProviderID,
		UnitID:       res.UnitID,
		Buckets:      encoded,
		Quantity:     r.Quantity(),
		RequesterRef: r.RequesterRef(),
		CommittedAt:  r.CommittedAt(),
	}
}

type BookingQueries interface {
	// Availability returns how many units are actually bookable for the
	// whole descriptor: the minimum remaining across every capacity key
	// the descriptor expands to. Side-effect-free.
	Availability(ctx context.Context, resource capacity.ResourceKey, spec booking.TimeSpec) (int, error)
	ListBookings(ctx context.Context, resource capacity.ResourceKey, after *Cursor, limit int32) ([]*BookingView, error)
}

type bookingQueriesImpl struct {
	ledger Ledger
	reader RecordReader
}

func NewBookingQueries(ledger Ledger, reader RecordReader) BookingQueries {
	return &bookingQueriesImpl{ledger: ledger, reader: reader}
}

func (q *bookingQueriesImpl) Availability(
	ctx context.Context,
	resource capacity.ResourceKey,
	spec booking.TimeSpec,
) (int, error) {
	keys := make([]capacity.Key, 0, 2)
	for _, b := range spec.Expand() {
		keys = append(keys, capacity.Key{Resource: resource, Bucket: b})
	}
	if resource.Category == capacity.CategoryTest {
		keys = append(keys, capacity.Key{Resource: resource, Bucket: capacity.TotalBucket()})
	}

	min := -1
	for _, key := range keys {
		remaining, err := q.ledger.Remaining(ctx, key)
		if err != nil {
			if infra.IsKind(err, infra.KindLockTimeout) {
				return 0, errs.Mark(err, errs.ErrLedgerTimeout)
			}
			return 0, errs.Wrap(err, "failed to read remaining capacity")
		}
		if min < 0 || remaining < min {
			min = remaining
		}
	}
	if min < 0 {
		min = 0
	}
	return min, nil
}

func (q *bookingQueriesImpl) ListBookings(
	ctx context.Context,
	resource capacity.ResourceKey,
	after *Cursor,
	limit int32,
) ([]*BookingView, error) {
	records, err := q.reader.ListByResource(ctx, resource, after, limit)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list bookings")
	}

	views := make([]*BookingView, len(records))
	for i, r := range records {
		views[i] = ViewFromRecord(r)
	}
	return views, nil
}
