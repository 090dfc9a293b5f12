package capacity

import (
	"strings"
	"time"

	"medslot/internal/pkg/errs"
)

// Category partitions bookable units by how their capacity is counted.
// Bed resources consume one day-bucket per night; test resources consume a
// named slot-bucket plus a total-bucket covering the whole resource.
type Category string

const (
	CategoryBed  Category = "bed"
	CategoryTest Category = "test"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryBed, CategoryTest:
		return true
	default:
		return false
	}
}

// ResourceKey identifies a bookable unit: a ward at a hospital or a test at
// a lab. Opaque to the ledger beyond equality.
type ResourceKey struct {
	Category   Category
	ProviderID string
	UnitID     string
}

func (r ResourceKey) String() string {
	return string(r.Category) + "/" + r.ProviderID + "/" + r.UnitID
}

type BucketKind string

const (
	BucketDay   BucketKind = "day"
	BucketSlot  BucketKind = "slot"
	BucketTotal BucketKind = "total"
)

const dayLayout = "2006-01-02"

// TimeBucket is the schedulable period a reservation consumes: a calendar
// day, a named time slot, or the whole-resource total constraint.
// Day values are normalized to UTC midnight so buckets are comparable and
// usable as map keys.
type TimeBucket struct {
	kind BucketKind
	day  time.Time
	slot string
}

func DayBucket(t time.Time) TimeBucket {
	return TimeBucket{kind: BucketDay, day: normalizeDay(t)}
}

func SlotBucket(name string) TimeBucket {
	return TimeBucket{kind: BucketSlot, slot: name}
}

func TotalBucket() TimeBucket {
	return TimeBucket{kind: BucketTotal}
}

func (b TimeBucket) Kind() BucketKind { return b.kind }
func (b TimeBucket) Day() time.Time   { return b.day }
func (b TimeBucket) Slot() string     { return b.slot }

// Encode renders the bucket as a stable text form used in storage and
// error messages: "day:2025-04-01", "slot:morning" or "total".
func (b TimeBucket) Encode() string {
	switch b.kind {
	case BucketDay:
		return "day:" + b.day.Format(dayLayout)
	case BucketSlot:
		return "slot:" + b.slot
	default:
		return "total"
	}
}

func (b TimeBucket) String() string { return b.Encode() }

func DecodeBucket(s string) (TimeBucket, error) {
	if s == "total" {
		return TotalBucket(), nil
	}
	kind, rest, ok := strings.Cut(s, ":")
	if !ok {
		return TimeBucket{}, errs.Newf("malformed bucket %q", s)
	}
	switch BucketKind(kind) {
	case BucketDay:
		day, err := time.Parse(dayLayout, rest)
		if err != nil {
			return TimeBucket{}, errs.Wrap(err, "malformed day bucket")
		}
		return DayBucket(day), nil
	case BucketSlot:
		return SlotBucket(rest), nil
	default:
		return TimeBucket{}, errs.Newf("unknown bucket kind %q", kind)
	}
}

func normalizeDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Key is the pair remaining capacity is tracked against.
type Key struct {
	Resource ResourceKey
	Bucket   TimeBucket
}

func (k Key) String() string {
	return k.Resource.String() + "@" + k.Bucket.Encode()
}

// Reservation is one (key, quantity) delta of a multi-key reserve or
// release call.
type Reservation struct {
	Key      Key
	Quantity int
}
