package commands

import (
	"context"
	"errors"
	"log/slog"

	"medslot/internal/domain/booking"
	"medslot/internal/domain/capacity"
	"medslot/internal/infra"
	"medslot/internal/pkg/clock"
	"medslot/internal/pkg/errs"
	"medslot/internal/usecase/queries"

	"github.com/google/uuid"
)

type DraftView struct {
	ID           uuid.UUID
	Category     string
	ProviderID   string
	UnitID       string
	Buckets      []string
	Quantity     int
	RequesterRef string
}

type BookingCommands interface {
	// CreateDraft stages a request without touching the ledger.
	CreateDraft(ctx context.Context, resource capacity.ResourceKey, spec booking.TimeSpec, quantity int, requesterRef string) (*DraftView, error)
	// Commit atomically reserves every capacity key the draft touches and
	// appends the booking record. Validation and reservation are one
	// ledger call, so there is no check-then-act window.
	Commit(ctx context.Context, draftID uuid.UUID) (*queries.BookingView, error)
	// Discard forgets a draft. Idempotent; never a ledger operation.
	Discard(ctx context.Context, draftID uuid.UUID) error
}

type bookingCommandsImpl struct {
	ledger  Ledger
	store   RecordStore
	catalog Catalog
	factory *booking.Factory
	drafts  *draftRegistry
	clock   clock.Clock
}

func NewBookingCommands(
	ledger Ledger,
	store RecordStore,
	catalog Catalog,
	factory *booking.Factory,
	clk clock.Clock,
) BookingCommands {
	return &bookingCommandsImpl{
		ledger:  ledger,
		store:   store,
		catalog: catalog,
		factory: factory,
		drafts:  newDraftRegistry(),
		clock:   clk,
	}
}

func (b *bookingCommandsImpl) CreateDraft(
	ctx context.Context,
	resource capacity.ResourceKey,
	spec booking.TimeSpec,
	quantity int,
	requesterRef string,
) (*DraftView, error) {
	if !b.catalog.HasResource(resource) {
		return nil, errs.ErrResourceNotFound
	}

	draft, err := b.factory.CreateDraft(resource, spec, quantity, requesterRef)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidRequest)
	}

	b.drafts.put(draft)
	return draftToView(draft), nil
}

func (b *bookingCommandsImpl) Commit(ctx context.Context, draftID uuid.UUID) (*queries.BookingView, error) {
	draft, ok := b.drafts.get(draftID)
	if !ok {
		return nil, errs.ErrDraftNotFound
	}

	items := draft.CapacityReservations()
	if err := b.ledger.TryReserve(ctx, items); err != nil {
		var insufficient *capacity.InsufficientError
		if errors.As(err, &insufficient) {
			// Business rejection; the draft stays until the caller
			// discards it or retries with different parameters.
			return nil, err
		}
		if infra.IsKind(err, infra.KindLockTimeout) {
			return nil, errs.Mark(err, errs.ErrLedgerTimeout)
		}
		return nil, errs.Mark(err, errs.ErrStoreOperationFailed)
	}

	record := booking.NewRecord(draft, b.clock.Now())
	if err := b.store.Append(ctx, record); err != nil {
		// Capacity was already taken; release it so the ledger never
		// reflects a booking that was not recorded.
		if relErr := b.ledger.Release(ctx, items); relErr != nil {
			slog.Error("failed to release capacity after append failure",
				"draft_id", draftID, "error", relErr.Error())
		}
		return nil, errs.Mark(err, errs.ErrStoreOperationFailed)
	}

	b.drafts.remove(draftID)
	return queries.ViewFromRecord(record), nil
}

func (b *bookingCommandsImpl) Discard(_ context.Context, draftID uuid.UUID) error {
	b.drafts.remove(draftID)
	return nil
}

func draftToView(d *booking.Draft) *DraftView {
	buckets := d.Buckets()
	encoded := make([]string, len(buckets))
	for i, bk := range buckets {
		encoded[i] = bk.Encode()
	}
	res := d.Resource()
	return &DraftView{
		ID:           d.ID(),
		Category:     string(res.Category),
		ProviderID:   res.ProviderID,
		UnitID:       res.UnitID,
		Buckets:      encoded,
		Quantity:     d.Quantity(),
		RequesterRef: d.RequesterRef(),
	}
}
