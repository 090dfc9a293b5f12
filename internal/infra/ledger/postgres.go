package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"medslot/internal/domain/capacity"
	"medslot/internal/infra"
	"medslot/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
	pgErrCodeLockNotAvailable     = "55P03"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS capacity_ledger (
    category    text NOT NULL,
    provider_id text NOT NULL,
    unit_id     text NOT NULL,
    bucket      text NOT NULL,
    limit_qty   integer NOT NULL,
    used_qty    integer NOT NULL DEFAULT 0,
    PRIMARY KEY (category, provider_id, unit_id, bucket),
    CHECK (used_qty >= 0 AND used_qty <= limit_qty)
)`

// Postgres is the durable capacity ledger. Atomicity comes from a single
// transaction of conditional updates; keys are touched in sorted order so
// overlapping commits acquire row locks consistently, and serialization
// failures are retried with backoff.
type Postgres struct {
	pool     *pgxpool.Pool
	limits   capacity.Limits
	lockWait time.Duration
}

func NewPostgres(pool *pgxpool.Pool, limits capacity.Limits, lockWait time.Duration) *Postgres {
	return &Postgres{pool: pool, limits: limits, lockWait: lockWait}
}

// EnsureSchema creates the ledger table if missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, ledgerSchema); err != nil {
		return infra.WrapRepoErr("failed to ensure ledger schema", err)
	}
	return nil
}

func (p *Postgres) Remaining(ctx context.Context, key capacity.Key) (int, error) {
	var remaining int
	err := p.pool.QueryRow(ctx,
		`SELECT limit_qty - used_qty FROM capacity_ledger
		 WHERE category = $1 AND provider_id = $2 AND unit_id = $3 AND bucket = $4`,
		string(key.Resource.Category), key.Resource.ProviderID, key.Resource.UnitID, key.Bucket.Encode(),
	).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return p.limits.For(key), nil
	}
	if err != nil {
		return 0, infra.WrapRepoErr("failed to read remaining capacity", err)
	}
	return remaining, nil
}

func (p *Postgres) TryReserve(ctx context.Context, items []capacity.Reservation) error {
	deltas, err := aggregate(items)
	if err != nil {
		return err
	}
	sortByKey(deltas)

	return p.withRetry(ctx, func(tx pgx.Tx) error {
		for _, d := range deltas {
			if err := p.reserveOne(ctx, tx, d); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Postgres) reserveOne(ctx context.Context, tx pgx.Tx, d capacity.Reservation) error {
	cat := string(d.Key.Resource.Category)
	prov := d.Key.Resource.ProviderID
	unit := d.Key.Resource.UnitID
	bucket := d.Key.Bucket.Encode()

	// Lazy-create unknown keys with the category default limit.
	if _, err := tx.Exec(ctx,
		`INSERT INTO capacity_ledger (category, provider_id, unit_id, bucket, limit_qty)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (category, provider_id, unit_id, bucket) DO NOTHING`,
		cat, prov, unit, bucket, p.limits.For(d.Key),
	); err != nil {
		return infra.WrapRepoErr("failed to initialize ledger key", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE capacity_ledger
		 SET used_qty = used_qty + $5
		 WHERE category = $1 AND provider_id = $2 AND unit_id = $3 AND bucket = $4
		   AND used_qty + $5 <= limit_qty`,
		cat, prov, unit, bucket, d.Quantity,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to reserve capacity", err)
	}
	if tag.RowsAffected() == 0 {
		var remaining int
		if err := tx.QueryRow(ctx,
			`SELECT limit_qty - used_qty FROM capacity_ledger
			 WHERE category = $1 AND provider_id = $2 AND unit_id = $3 AND bucket = $4`,
			cat, prov, unit, bucket,
		).Scan(&remaining); err != nil {
			return infra.WrapRepoErr("failed to read exhausted key", err)
		}
		return &capacity.InsufficientError{Key: d.Key, Requested: d.Quantity, Remaining: remaining}
	}
	return nil
}

func (p *Postgres) Release(ctx context.Context, items []capacity.Reservation) error {
	deltas, err := aggregate(items)
	if err != nil {
		return err
	}
	sortByKey(deltas)

	return p.withRetry(ctx, func(tx pgx.Tx) error {
		for _, d := range deltas {
			tag, err := tx.Exec(ctx,
				`UPDATE capacity_ledger
				 SET used_qty = used_qty - $5
				 WHERE category = $1 AND provider_id = $2 AND unit_id = $3 AND bucket = $4
				   AND used_qty >= $5`,
				string(d.Key.Resource.Category), d.Key.Resource.ProviderID,
				d.Key.Resource.UnitID, d.Key.Bucket.Encode(), d.Quantity,
			)
			if err != nil {
				return infra.WrapRepoErr("failed to release capacity", err)
			}
			if tag.RowsAffected() == 0 {
				return infra.WrapRepoErr("release exceeds reserved capacity for "+d.Key.String(), nil, infra.KindConflict)
			}
		}
		return nil
	})
}

// withRetry runs fn in a transaction, rolling the whole batch back on any
// failure and retrying serialization conflicts. Avoids defer accumulation
// in the retry loop to prevent connection leaks.
func (p *Postgres) withRetry(ctx context.Context, fn func(tx pgx.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := p.runOnce(ctx, fn)
		if err == nil {
			return nil
		}

		if !isRetryable(err) || attempt == maxRetries {
			return classify(err)
		}

		wait := base * time.Duration(1<<attempt)
		slog.Warn("retrying ledger transaction",
			"attempt", attempt+1, "wait", wait.String(), "error", err.Error())
		select {
		case <-ctx.Done():
			return infra.WrapRepoErr("ledger wait canceled", ctx.Err(), infra.KindLockTimeout)
		case <-time.After(wait):
		}
	}
	return nil
}

func (p *Postgres) runOnce(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return infra.WrapRepoErr("failed to begin ledger transaction", err)
	}

	// Bound row-lock waits so a contended commit fails fast as a
	// retryable timeout instead of queueing behind a stuck transaction.
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", p.lockWait.Milliseconds())); err != nil {
		_ = tx.Rollback(ctx)
		return infra.WrapRepoErr("failed to set lock timeout", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("ledger rollback failed", "error", rbErr.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr("failed to commit ledger transaction", err)
	}
	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrCodeSerializationFailure || pgErr.Code == pgErrCodeDeadlockDetected
	}
	return false
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeLockNotAvailable {
		return infra.WrapRepoErr("ledger lock wait exceeded", err, infra.KindLockTimeout)
	}
	var insufficient *capacity.InsufficientError
	if errors.As(err, &insufficient) {
		return err
	}
	return errs.Wrap(err, "ledger transaction failed")
}

func sortByKey(deltas []capacity.Reservation) {
	sort.Slice(deltas, func(i, j int) bool {
		return deltas[i].Key.String() < deltas[j].Key.String()
	})
}
