package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lucasnoah/defendercheck/internal/logging"
)

// DB wraps the PostgreSQL connection pool holding the run log.
type DB struct {
	pool *pgxpool.Pool
}

// Open connects to the database at url and verifies the connection. When log
// is non-nil, pgx query logging is routed through it.
func Open(ctx context.Context, url string, log *zap.Logger) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if log != nil {
		cfg.ConnConfig.Tracer = logging.PgxTracer(log)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes every pooled connection.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pool for advanced queries.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS defender_runs (
    id             UUID PRIMARY KEY,
    host           TEXT NOT NULL,
    evaluated_at   TIMESTAMPTZ NOT NULL,
    date_format    TEXT NOT NULL,
    issues         JSONB NOT NULL DEFAULT '[]',
    unknown_fields TEXT[],
    recorded_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_runs_host_time ON defender_runs(host, evaluated_at DESC);

CREATE TABLE IF NOT EXISTS check_runs (
    id           BIGSERIAL PRIMARY KEY,
    run_id       UUID NOT NULL REFERENCES defender_runs(id) ON DELETE CASCADE,
    position     INTEGER NOT NULL,
    item         TEXT NOT NULL,
    label        TEXT NOT NULL,
    state        TEXT NOT NULL CHECK(state IN ('OK','WARN','CRIT','UNKNOWN')),
    summary      TEXT NOT NULL,
    details      TEXT,
    metric_name  TEXT,
    metric_value DOUBLE PRECISION,
    metric_warn  DOUBLE PRECISION,
    metric_crit  DOUBLE PRECISION,
    future       BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_check_runs_run ON check_runs(run_id, position);
CREATE INDEX IF NOT EXISTS idx_check_runs_item ON check_runs(item);
`

// Migrate applies the database schema. It is a no-op on an up-to-date database.
func (d *DB) Migrate(ctx context.Context) error {
	var count int
	err := d.pool.QueryRow(ctx, "SELECT COUNT(*) FROM schema_version WHERE version = 1").Scan(&count)
	if err == nil && count > 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, schemaV1); err != nil {
		return fmt.Errorf("apply schema v1: %w", err)
	}
	if _, err := tx.Exec(ctx, "INSERT INTO schema_version (version) VALUES (1) ON CONFLICT DO NOTHING"); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit(ctx)
}

// Reset drops all tables and re-applies the schema.
func (d *DB) Reset(ctx context.Context) error {
	tables := []string{"check_runs", "defender_runs", "schema_version"}
	for _, t := range tables {
		if _, err := d.pool.Exec(ctx, "DROP TABLE IF EXISTS "+t+" CASCADE"); err != nil {
			return fmt.Errorf("drop table %s: %w", t, err)
		}
	}
	return d.Migrate(ctx)
}
