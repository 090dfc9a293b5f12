package components

import (
	"medslot/internal/domain/booking"
	"medslot/internal/infra/catalog"
	"medslot/internal/pkg/clock"
	"medslot/internal/pkg/config"
	"medslot/internal/usecase/commands"
	"medslot/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		NewCatalog,
		NewDraftFactory,
		NewBookingCommands,
		queries.NewBookingQueries,
	),
)

func NewCatalog(cfg config.Config) *catalog.Static {
	return catalog.NewStatic(cfg.Capacity.TimeSlots)
}

func NewDraftFactory(clk clock.Clock, cat *catalog.Static) *booking.Factory {
	return booking.NewFactory(clk, cat)
}

func NewBookingCommands(
	led commands.Ledger,
	store commands.RecordStore,
	cat *catalog.Static,
	factory *booking.Factory,
	clk clock.Clock,
) commands.BookingCommands {
	return commands.NewBookingCommands(led, store, cat, factory, clk)
}
