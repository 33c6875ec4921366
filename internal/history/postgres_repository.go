package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/envroute/envroute/internal/env"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
//
// Expected schema:
//
//	CREATE TABLE zone_readings (
//	    id          BIGSERIAL PRIMARY KEY,
//	    zone        TEXT        NOT NULL,
//	    metrics     JSONB       NOT NULL,
//	    observed_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX zone_readings_zone_observed_idx
//	    ON zone_readings (zone, observed_at DESC);
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL history repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// RecordBatch stores one refresh's samples in a single batch.
func (r *PostgresRepository) RecordBatch(ctx context.Context, samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range samples {
		metrics, err := json.Marshal(s.Metrics)
		if err != nil {
			return fmt.Errorf("encode metrics for %s: %w", s.Zone, err)
		}
		batch.Queue(
			`INSERT INTO zone_readings (zone, metrics, observed_at) VALUES ($1, $2, $3)`,
			s.Zone, metrics, s.ObservedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range samples {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert zone reading: %w", err)
		}
	}
	return nil
}

// ListByZone returns the most recent samples for a zone, newest first.
func (r *PostgresRepository) ListByZone(ctx context.Context, zone string, limit int) ([]Sample, error) {
	if limit <= 0 {
		limit = 24
	}

	rows, err := r.pool.Query(ctx,
		`SELECT zone, metrics, observed_at
		 FROM zone_readings
		 WHERE zone = $1
		 ORDER BY observed_at DESC
		 LIMIT $2`,
		zone, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query zone readings: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var metrics []byte
		if err := rows.Scan(&s.Zone, &metrics, &s.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan zone reading: %w", err)
		}
		s.Metrics = make(env.Reading)
		if err := json.Unmarshal(metrics, &s.Metrics); err != nil {
			return nil, fmt.Errorf("decode metrics: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
