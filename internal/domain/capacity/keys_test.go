//go:build unit

package capacity_test

import (
	"testing"
	"time"

	"medslot/internal/domain/capacity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayBucketNormalization(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	morning := time.Date(2025, 4, 1, 8, 30, 0, 0, time.UTC)
	// 2025-04-01 23:30 UTC is already 2025-04-02 in JST; normalization is
	// by the UTC calendar day regardless of the input zone.
	lateUTC := time.Date(2025, 4, 1, 23, 30, 0, 0, time.UTC).In(tokyo)

	assert.Equal(t, capacity.DayBucket(morning), capacity.DayBucket(lateUTC))
	assert.Equal(t, "day:2025-04-01", capacity.DayBucket(morning).Encode())
}

func TestBucketsAreMapKeys(t *testing.T) {
	seen := map[capacity.TimeBucket]int{
		capacity.DayBucket(time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)): 1,
		capacity.SlotBucket("morning"):                                   2,
		capacity.TotalBucket():                                           3,
	}

	assert.Equal(t, 1, seen[capacity.DayBucket(time.Date(2025, 4, 1, 22, 0, 0, 0, time.UTC))])
	assert.Equal(t, 2, seen[capacity.SlotBucket("morning")])
	assert.Equal(t, 3, seen[capacity.TotalBucket()])
}

func TestDecodeBucket(t *testing.T) {
	testCases := []struct {
		name    string
		encoded string
		want    capacity.TimeBucket
		wantErr bool
	}{
		{
			name:    "day bucket",
			encoded: "day:2025-04-01",
			want:    capacity.DayBucket(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:    "slot bucket",
			encoded: "slot:morning",
			want:    capacity.SlotBucket("morning"),
		},
		{
			name:    "total bucket",
			encoded: "total",
			want:    capacity.TotalBucket(),
		},
		{
			name:    "missing separator",
			encoded: "day",
			wantErr: true,
		},
		{
			name:    "unknown kind",
			encoded: "week:2025-04",
			wantErr: true,
		},
		{
			name:    "malformed day",
			encoded: "day:01-04-2025",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := capacity.DecodeBucket(tc.encoded)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, actual)
			assert.Equal(t, tc.encoded, actual.Encode())
		})
	}
}

func TestLimitsFor(t *testing.T) {
	limits := capacity.Limits{BedsPerWard: 10, TestTotalQuota: 8, SlotsPerTimeSlot: 3}
	ward := capacity.ResourceKey{Category: capacity.CategoryBed, ProviderID: "H", UnitID: "W"}
	test := capacity.ResourceKey{Category: capacity.CategoryTest, ProviderID: "L", UnitID: "T"}
	day := capacity.DayBucket(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 10, limits.For(capacity.Key{Resource: ward, Bucket: day}))
	assert.Equal(t, 3, limits.For(capacity.Key{Resource: test, Bucket: capacity.SlotBucket("morning")}))
	assert.Equal(t, 8, limits.For(capacity.Key{Resource: test, Bucket: capacity.TotalBucket()}))

	// Combinations outside the two booking shapes admit nothing.
	assert.Equal(t, 0, limits.For(capacity.Key{Resource: ward, Bucket: capacity.SlotBucket("morning")}))
	assert.Equal(t, 0, limits.For(capacity.Key{Resource: test, Bucket: day}))
}

func TestInsufficientErrorCarriesKey(t *testing.T) {
	key := capacity.Key{
		Resource: capacity.ResourceKey{Category: capacity.CategoryBed, ProviderID: "H", UnitID: "W"},
		Bucket:   capacity.DayBucket(time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)),
	}
	err := &capacity.InsufficientError{Key: key, Requested: 5, Remaining: 4}

	assert.ErrorIs(t, err, capacity.ErrInsufficientCapacity)
	assert.Contains(t, err.Error(), "bed/H/W@day:2025-04-02")
	assert.Contains(t, err.Error(), "4 remaining")
}
