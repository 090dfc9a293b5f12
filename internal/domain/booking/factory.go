package booking

import (
	"errors"
	"strings"

	"medslot/internal/domain/capacity"
	"medslot/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrInvalidCategory  = errors.New("invalid resource category")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrMissingRequester = errors.New("requester reference required")
	ErrSlotNotInCatalog = errors.New("slot not in resource catalog")
)

// SlotCatalog answers whether a named slot is configured for a resource.
type SlotCatalog interface {
	ValidSlot(resource capacity.ResourceKey, slot string) bool
}

type Factory struct {
	clock clock.Clock
	slots SlotCatalog
}

func NewFactory(clk clock.Clock, slots SlotCatalog) *Factory {
	return &Factory{clock: clk, slots: slots}
}

// CreateDraft validates the request and expands the time spec into
// concrete buckets. All failures here are caller errors; nothing has
// been reserved yet.
func (f *Factory) CreateDraft(
	resource capacity.ResourceKey,
	spec TimeSpec,
	quantity int,
	requesterRef string,
) (*Draft, error) {
	if !resource.Category.IsValid() {
		return nil, ErrInvalidCategory
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	requesterRef = strings.TrimSpace(requesterRef)
	if requesterRef == "" {
		return nil, ErrMissingRequester
	}

	// Bed resources book date ranges, test resources book named slots.
	switch resource.Category {
	case capacity.CategoryBed:
		if !spec.IsDateRange() {
			return nil, ErrTimeSpecMismatch
		}
	case capacity.CategoryTest:
		if !spec.IsNamedSlot() {
			return nil, ErrTimeSpecMismatch
		}
		if !f.slots.ValidSlot(resource, spec.Slot()) {
			return nil, ErrSlotNotInCatalog
		}
	}

	return &Draft{
		id:           uuid.New(),
		resource:     resource,
		buckets:      spec.Expand(),
		quantity:     quantity,
		requesterRef: requesterRef,
		createdAt:    f.clock.Now(),
	}, nil
}
