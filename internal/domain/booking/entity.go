package booking

import (
	"time"

	"medslot/internal/domain/capacity"

	"github.com/google/uuid"
)

// Draft is an uncommitted booking request. It never touches the ledger;
// discarding a draft is always safe.
type Draft struct {
	id           uuid.UUID
	resource     capacity.ResourceKey
	buckets      []capacity.TimeBucket
	quantity     int
	requesterRef string
	createdAt    time.Time
}

func (d *Draft) ID() uuid.UUID                  { return d.id }
func (d *Draft) Resource() capacity.ResourceKey { return d.resource }
func (d *Draft) Quantity() int                  { return d.quantity }
func (d *Draft) RequesterRef() string           { return d.requesterRef }
func (d *Draft) CreatedAt() time.Time           { return d.createdAt }

func (d *Draft) Buckets() []capacity.TimeBucket {
	out := make([]capacity.TimeBucket, len(d.buckets))
	copy(out, d.buckets)
	return out
}

// CapacityReservations builds the (key, quantity) list a commit must
// apply atomically. Bed drafts touch one key per day in the range; test
// drafts touch the per-slot key plus the whole-resource total key, so
// both constraint families are checked in one ledger call.
func (d *Draft) CapacityReservations() []capacity.Reservation {
	items := make([]capacity.Reservation, 0, len(d.buckets)+1)
	for _, b := range d.buckets {
		items = append(items, capacity.Reservation{
			Key:      capacity.Key{Resource: d.resource, Bucket: b},
			Quantity: d.quantity,
		})
	}
	if d.resource.Category == capacity.CategoryTest {
		items = append(items, capacity.Reservation{
			Key:      capacity.Key{Resource: d.resource, Bucket: capacity.TotalBucket()},
			Quantity: d.quantity,
		})
	}
	return items
}

// Record is a committed booking. Immutable; the store holding it is
// append-only and corrections are modeled as compensating entries plus a
// ledger release, never as edits.
type Record struct {
	id           uuid.UUID
	resource     capacity.ResourceKey
	buckets      []capacity.TimeBucket
	quantity     int
	requesterRef string
	committedAt  time.Time
}

func NewRecord(d *Draft, committedAt time.Time) *Record {
	return &Record{
		id:           uuid.New(),
		resource:     d.resource,
		buckets:      d.Buckets(),
		quantity:     d.quantity,
		requesterRef: d.requesterRef,
		committedAt:  committedAt,
	}
}

func ReconstructRecord(
	id uuid.UUID,
	resource capacity.ResourceKey,
	buckets []capacity.TimeBucket,
	quantity int,
	requesterRef string,
	committedAt time.Time,
) *Record {
	return &Record{
		id:           id,
		resource:     resource,
		buckets:      buckets,
		quantity:     quantity,
		requesterRef: requesterRef,
		committedAt:  committedAt,
	}
}

func (r *Record) ID() uuid.UUID                  { return r.id }
func (r *Record) Resource() capacity.ResourceKey { return r.resource }
func (r *Record) Quantity() int                  { return r.quantity }
func (r *Record) RequesterRef() string           { return r.requesterRef }
func (r *Record) CommittedAt() time.Time         { return r.committedAt }

func (r *Record) Buckets() []capacity.TimeBucket {
	out := make([]capacity.TimeBucket, len(r.buckets))
	copy(out, r.buckets)
	return out
}
