package components

import (
	"context"

	"medslot/internal/domain/capacity"
	"medslot/internal/infra/bookingstore"
	"medslot/internal/infra/ledger"
	"medslot/internal/pkg/config"
	"medslot/internal/usecase/commands"
	"medslot/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewPersistence,
	),
)

// Persistence bundles the ledger and record store behind their command-
// and query-side ports. The memory driver keeps everything in process;
// postgres shares one pool between ledger and store.
type Persistence struct {
	fx.Out

	Ledger       commands.Ledger
	QueryLedger  queries.Ledger
	RecordStore  commands.RecordStore
	RecordReader queries.RecordReader
}

func NewPersistence(lc fx.Lifecycle, cfg config.Config) (Persistence, error) {
	limits := capacity.Limits{
		BedsPerWard:      cfg.Capacity.BedsPerWard,
		TestTotalQuota:   cfg.Capacity.TestTotalQuota,
		SlotsPerTimeSlot: cfg.Capacity.SlotsPerTimeSlot,
	}

	if cfg.Store.Driver == "postgres" {
		pool, err := pgxpool.New(context.Background(), cfg.DB.BuildDSN())
		if err != nil {
			return Persistence{}, err
		}

		led := ledger.NewPostgres(pool, limits, cfg.Capacity.LockWait)
		store := bookingstore.NewPostgres(pool)

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := led.EnsureSchema(ctx); err != nil {
					return err
				}
				return store.EnsureSchema(ctx)
			},
			OnStop: func(_ context.Context) error {
				pool.Close()
				return nil
			},
		})

		return Persistence{
			Ledger:       led,
			QueryLedger:  led,
			RecordStore:  store,
			RecordReader: store,
		}, nil
	}

	led := ledger.NewMemory(limits, cfg.Capacity.LockWait)
	store := bookingstore.NewMemory()
	return Persistence{
		Ledger:       led,
		QueryLedger:  led,
		RecordStore:  store,
		RecordReader: store,
	}, nil
}
