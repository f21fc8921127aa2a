package database

import (
	"context"
	"fmt"

	"github.com/yourusername/strategy-tester/internal/config"
)

// schema holds the tables the toolkit persists into. Timestamps are
// epoch milliseconds to match the candle wire format.
const schema = `
CREATE TABLE IF NOT EXISTS candles (
	symbol     TEXT NOT NULL,
	interval   TEXT NOT NULL,
	date       BIGINT NOT NULL,
	open       DOUBLE PRECISION NOT NULL,
	high       DOUBLE PRECISION NOT NULL,
	low        DOUBLE PRECISION NOT NULL,
	close      DOUBLE PRECISION NOT NULL,
	volume     DOUBLE PRECISION NOT NULL,
	close_time BIGINT NOT NULL,
	PRIMARY KEY (symbol, interval, date)
);

CREATE TABLE IF NOT EXISTS trades (
	id                 UUID PRIMARY KEY,
	run_id             UUID NOT NULL,
	type               TEXT NOT NULL,
	entry_date         BIGINT NOT NULL,
	entry_price        DOUBLE PRECISION NOT NULL,
	entry_signal       TEXT NOT NULL,
	contract           DOUBLE PRECISION NOT NULL,
	comment            TEXT,
	exit_date          BIGINT,
	exit_price         DOUBLE PRECISION,
	exit_signal        TEXT,
	profit             DOUBLE PRECISION,
	profit_percent     DOUBLE PRECISION,
	draw_down          DOUBLE PRECISION,
	run_up             DOUBLE PRECISION,
	bars_traded        INTEGER,
	cum_profit         DOUBLE PRECISION,
	cum_profit_percent DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS backtest_results (
	run_id     UUID PRIMARY KEY,
	strategy   TEXT NOT NULL,
	symbol     TEXT NOT NULL,
	interval   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	result     JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS periodic_results (
	run_id       UUID NOT NULL,
	bucket_end   BIGINT NOT NULL,
	bucket_start BIGINT NOT NULL,
	result       JSONB NOT NULL,
	PRIMARY KEY (run_id, bucket_end)
);
`

// Initialize creates a database connection pool and ensures the schema
// exists.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// EnsureSchema creates any missing tables on an existing connection.
func EnsureSchema(ctx context.Context, db *DB) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
