package bookingstore

import (
	"context"
	"strconv"
	"time"

	"medslot/internal/domain/booking"
	"medslot/internal/domain/capacity"
	"medslot/internal/infra"
	"medslot/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordSchema = `
CREATE TABLE IF NOT EXISTS booking_records (
    id            uuid PRIMARY KEY,
    category      text NOT NULL,
    provider_id   text NOT NULL,
    unit_id       text NOT NULL,
    buckets       text[] NOT NULL,
    quantity      integer NOT NULL,
    requester_ref text NOT NULL,
    committed_at  timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS booking_records_resource_idx
    ON booking_records (category, provider_id, unit_id, committed_at, id)`

// Postgres is the durable append-only record store. The table has no
// update or delete statements anywhere in this package.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, recordSchema); err != nil {
		return infra.WrapRepoErr("failed to ensure booking record schema", err)
	}
	return nil
}

func (p *Postgres) Append(ctx context.Context, rec *booking.Record) error {
	buckets := rec.Buckets()
	encoded := make([]string, len(buckets))
	for i, b := range buckets {
		encoded[i] = b.Encode()
	}
	res := rec.Resource()

	_, err := p.pool.Exec(ctx,
		`INSERT INTO booking_records
		 (id, category, provider_id, unit_id, buckets, quantity, requester_ref, committed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID(), string(res.Category), res.ProviderID, res.UnitID,
		encoded, rec.Quantity(), rec.RequesterRef(), rec.CommittedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to append booking record", err)
	}
	return nil
}

func (p *Postgres) ListByResource(
	ctx context.Context,
	resource capacity.ResourceKey,
	after *queries.Cursor,
	limit int32,
) ([]*booking.Record, error) {
	query := `SELECT id, buckets, quantity, requester_ref, committed_at
		 FROM booking_records
		 WHERE category = $1 AND provider_id = $2 AND unit_id = $3`
	args := []any{string(resource.Category), resource.ProviderID, resource.UnitID}

	if after != nil {
		query += ` AND (committed_at, id) > ($4, $5)`
		args = append(args, after.CommittedAt, after.ID)
	}
	query += ` ORDER BY committed_at, id`
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list booking records", err)
	}
	defer rows.Close()

	var out []*booking.Record
	for rows.Next() {
		var (
			id           uuid.UUID
			encoded      []string
			quantity     int
			requesterRef string
			committedAt  time.Time
		)
		if err := rows.Scan(&id, &encoded, &quantity, &requesterRef, &committedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking record", err)
		}

		buckets := make([]capacity.TimeBucket, len(encoded))
		for i, s := range encoded {
			b, decErr := capacity.DecodeBucket(s)
			if decErr != nil {
				return nil, infra.WrapRepoErr("corrupt bucket encoding in store", decErr)
			}
			buckets[i] = b
		}
		out = append(out, booking.ReconstructRecord(id, resource, buckets, quantity, requesterRef, committedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking records", err)
	}
	return out, nil
}
