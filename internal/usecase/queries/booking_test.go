//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"medslot/internal/domain/booking"
	"medslot/internal/domain/capacity"
	"medslot/internal/infra/bookingstore"
	"medslot/internal/infra/ledger"
	"medslot/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture() (queries.BookingQueries, *ledger.Memory, *bookingstore.Memory) {
	limits := capacity.Limits{BedsPerWard: 10, TestTotalQuota: 10, SlotsPerTimeSlot: 3}
	led := ledger.NewMemory(limits, time.Second)
	store := bookingstore.NewMemory()
	return queries.NewBookingQueries(led, store), led, store
}

func wardResource() capacity.ResourceKey {
	return capacity.ResourceKey{Category: capacity.CategoryBed, ProviderID: "H1", UnitID: "W1"}
}

func labResource() capacity.ResourceKey {
	return capacity.ResourceKey{Category: capacity.CategoryTest, ProviderID: "L1", UnitID: "cbc"}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAvailabilityIsMinimumAcrossRange(t *testing.T) {
	q, led, _ := newFixture()
	ctx := context.Background()

	// Uneven usage across the range; the bottleneck day decides.
	require.NoError(t, led.TryReserve(ctx, []capacity.Reservation{
		{Key: capacity.Key{Resource: wardResource(), Bucket: capacity.DayBucket(day("2025-04-01"))}, Quantity: 2},
		{Key: capacity.Key{Resource: wardResource(), Bucket: capacity.DayBucket(day("2025-04-02"))}, Quantity: 7},
	}))

	spec, err := booking.NewDateRangeSpec(day("2025-04-01"), day("2025-04-03"))
	require.NoError(t, err)

	available, err := q.Availability(ctx, wardResource(), spec)
	require.NoError(t, err)
	assert.Equal(t, 3, available)
}

func TestAvailabilityOfUntouchedRangeIsDefaultLimit(t *testing.T) {
	q, _, _ := newFixture()

	spec, err := booking.NewDateRangeSpec(day("2025-04-01"), day("2025-04-05"))
	require.NoError(t, err)

	available, err := q.Availability(context.Background(), wardResource(), spec)
	require.NoError(t, err)
	assert.Equal(t, 10, available)
}

func TestAvailabilityForSlotHonorsTotalQuota(t *testing.T) {
	q, led, _ := newFixture()
	ctx := context.Background()

	// Morning has 1 of 3 used, but the resource-wide total has only 2
	// left; the total quota is the bottleneck.
	require.NoError(t, led.TryReserve(ctx, []capacity.Reservation{
		{Key: capacity.Key{Resource: labResource(), Bucket: capacity.SlotBucket("morning")}, Quantity: 1},
		{Key: capacity.Key{Resource: labResource(), Bucket: capacity.TotalBucket()}, Quantity: 8},
	}))

	spec, err := booking.NewNamedSlotSpec("morning")
	require.NoError(t, err)

	available, err := q.Availability(ctx, labResource(), spec)
	require.NoError(t, err)
	assert.Equal(t, 2, available)
}

func TestAvailabilityIsSideEffectFree(t *testing.T) {
	q, led, _ := newFixture()
	ctx := context.Background()

	spec, err := booking.NewDateRangeSpec(day("2025-04-01"), day("2025-04-03"))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		available, qerr := q.Availability(ctx, wardResource(), spec)
		require.NoError(t, qerr)
		assert.Equal(t, 10, available)
	}

	// Probing availability must not consume capacity.
	key := capacity.Key{Resource: wardResource(), Bucket: capacity.DayBucket(day("2025-04-02"))}
	remaining, err := led.Remaining(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)
}

func TestListBookingsProjectsRecords(t *testing.T) {
	q, _, store := newFixture()
	ctx := context.Background()

	committedAt := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	rec := booking.ReconstructRecord(
		uuid.New(),
		wardResource(),
		[]capacity.TimeBucket{capacity.DayBucket(day("2025-04-01")), capacity.DayBucket(day("2025-04-02"))},
		2,
		"patient-42",
		committedAt,
	)
	require.NoError(t, store.Append(ctx, rec))

	views, err := q.ListBookings(ctx, wardResource(), nil, 10)
	require.NoError(t, err)
	require.Len(t, views, 1)

	assert.Equal(t, rec.ID(), views[0].ID)
	assert.Equal(t, "bed", views[0].Category)
	assert.Equal(t, "H1", views[0].ProviderID)
	assert.Equal(t, "W1", views[0].UnitID)
	assert.Equal(t, []string{"day:2025-04-01", "day:2025-04-02"}, views[0].Buckets)
	assert.Equal(t, 2, views[0].Quantity)
	assert.Equal(t, "patient-42", views[0].RequesterRef)
	assert.Equal(t, committedAt, views[0].CommittedAt)
}

func TestListBookingsPassesCursorThrough(t *testing.T) {
	q, _, store := newFixture()
	ctx := context.Background()

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	recs := make([]*booking.Record, 4)
	for i := range recs {
		recs[i] = booking.ReconstructRecord(
			uuid.New(),
			wardResource(),
			[]capacity.TimeBucket{capacity.DayBucket(day("2025-04-01"))},
			1,
			"patient-42",
			base.Add(time.Duration(i)*time.Minute),
		)
		require.NoError(t, store.Append(ctx, recs[i]))
	}

	first, err := q.ListBookings(ctx, wardResource(), nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)

	cursor := &queries.Cursor{CommittedAt: first[1].CommittedAt, ID: first[1].ID}
	rest, err := q.ListBookings(ctx, wardResource(), cursor, 10)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, recs[2].ID(), rest[0].ID)
	assert.Equal(t, recs[3].ID(), rest[1].ID)
}
