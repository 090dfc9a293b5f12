package request

import (
	"errors"
	"time"

	"medslot/internal/domain/booking"
	"medslot/internal/domain/capacity"
)

const dayLayout = "2006-01-02"

var (
	errMissingTimeSpec   = errors.New("either from/to dates or a slot name is required")
	errAmbiguousTimeSpec = errors.New("from/to dates and slot name are mutually exclusive")
	errMalformedDate     = errors.New("dates must be formatted as YYYY-MM-DD")
)

type CreateDraftRequest struct {
	Category     string  `json:"category" binding:"required,oneof=bed test"`
	ProviderID   string  `json:"provider_id" binding:"required"`
	UnitID       string  `json:"unit_id" binding:"required"`
	From         *string `json:"from,omitempty"`
	To           *string `json:"to,omitempty"`
	Slot         *string `json:"slot,omitempty"`
	Quantity     int     `json:"quantity" binding:"required"`
	RequesterRef string  `json:"requester_ref" binding:"required"`
}

func (r CreateDraftRequest) ToDomain() (capacity.ResourceKey, booking.TimeSpec, error) {
	return toDomain(r.Category, r.ProviderID, r.UnitID, r.From, r.To, r.Slot)
}

// AvailabilityQuery mirrors CreateDraftRequest as URL query parameters for
// the read-only availability endpoint.
type AvailabilityQuery struct {
	Category   string  `form:"category" binding:"required,oneof=bed test"`
	ProviderID string  `form:"provider_id" binding:"required"`
	UnitID     string  `form:"unit_id" binding:"required"`
	From       *string `form:"from"`
	To         *string `form:"to"`
	Slot       *string `form:"slot"`
}

func (q AvailabilityQuery) ToDomain() (capacity.ResourceKey, booking.TimeSpec, error) {
	return toDomain(q.Category, q.ProviderID, q.UnitID, q.From, q.To, q.Slot)
}

type ListBookingsQuery struct {
	Category       string  `form:"category" binding:"required,oneof=bed test"`
	ProviderID     string  `form:"provider_id" binding:"required"`
	UnitID         string  `form:"unit_id" binding:"required"`
	AfterCommitted *string `form:"after_committed_at"`
	AfterID        *string `form:"after_id"`
	Limit          int32   `form:"limit,default=50"`
}

func (q ListBookingsQuery) Resource() capacity.ResourceKey {
	return capacity.ResourceKey{
		Category:   capacity.Category(q.Category),
		ProviderID: q.ProviderID,
		UnitID:     q.UnitID,
	}
}

func toDomain(category, providerID, unitID string, from, to, slot *string) (capacity.ResourceKey, booking.TimeSpec, error) {
	resource := capacity.ResourceKey{
		Category:   capacity.Category(category),
		ProviderID: providerID,
		UnitID:     unitID,
	}

	hasRange := from != nil || to != nil
	hasSlot := slot != nil

	switch {
	case hasRange && hasSlot:
		return capacity.ResourceKey{}, booking.TimeSpec{}, errAmbiguousTimeSpec
	case hasSlot:
		spec, err := booking.NewNamedSlotSpec(*slot)
		return resource, spec, err
	case from != nil && to != nil:
		fromDay, err := time.Parse(dayLayout, *from)
		if err != nil {
			return capacity.ResourceKey{}, booking.TimeSpec{}, errMalformedDate
		}
		toDay, err := time.Parse(dayLayout, *to)
		if err != nil {
			return capacity.ResourceKey{}, booking.TimeSpec{}, errMalformedDate
		}
		spec, err := booking.NewDateRangeSpec(fromDay, toDay)
		return resource, spec, err
	default:
		return capacity.ResourceKey{}, booking.TimeSpec{}, errMissingTimeSpec
	}
}
