package booking

import (
	"errors"
	"time"

	"medslot/internal/domain/capacity"
)

var (
	ErrInvertedRange    = errors.New("range end is before range start")
	ErrEmptySlot        = errors.New("slot name is empty")
	ErrTimeSpecMismatch = errors.New("time spec does not match resource category")
)

type specKind int

const (
	specDateRange specKind = iota
	specNamedSlot
)

// TimeSpec is the caller-facing description of when a booking applies:
// either a calendar date range (bed bookings) or a single named slot
// (test bookings). Expand turns it into the concrete bucket set.
type TimeSpec struct {
	kind specKind
	from time.Time
	to   time.Time
	slot string
}

func NewDateRangeSpec(from, to time.Time) (TimeSpec, error) {
	if to.Before(from) {
		return TimeSpec{}, ErrInvertedRange
	}
	return TimeSpec{kind: specDateRange, from: from, to: to}, nil
}

func NewNamedSlotSpec(slot string) (TimeSpec, error) {
	if slot == "" {
		return TimeSpec{}, ErrEmptySlot
	}
	return TimeSpec{kind: specNamedSlot, slot: slot}, nil
}

func (s TimeSpec) IsDateRange() bool { return s.kind == specDateRange }
func (s TimeSpec) IsNamedSlot() bool { return s.kind == specNamedSlot }
func (s TimeSpec) From() time.Time   { return s.from }
func (s TimeSpec) To() time.Time     { return s.to }
func (s TimeSpec) Slot() string      { return s.slot }

// Expand returns one bucket per day for a date range (both ends
// inclusive) or the single slot bucket for a named slot.
func (s TimeSpec) Expand() []capacity.TimeBucket {
	if s.kind == specNamedSlot {
		return []capacity.TimeBucket{capacity.SlotBucket(s.slot)}
	}

	first := capacity.DayBucket(s.from)
	last := capacity.DayBucket(s.to)
	buckets := []capacity.TimeBucket{first}
	for d := first.Day().AddDate(0, 0, 1); !d.After(last.Day()); d = d.AddDate(0, 0, 1) {
		buckets = append(buckets, capacity.DayBucket(d))
	}
	return buckets
}
