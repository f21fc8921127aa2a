package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/strategy-tester/internal/backtest"
	"github.com/yourusername/strategy-tester/internal/database"
)

// PostgresPeriodicResultRepository implements PeriodicResultRepository for PostgreSQL
type PostgresPeriodicResultRepository struct {
	db *database.DB
}

// NewPostgresPeriodicResultRepository creates a new periodic result repository
func NewPostgresPeriodicResultRepository(db *database.DB) PeriodicResultRepository {
	return &PostgresPeriodicResultRepository{db: db}
}

// Save inserts one row per bucket for a run
func (r *PostgresPeriodicResultRepository) Save(ctx context.Context, runID uuid.UUID, periods backtest.PeriodicResult) error {
	query := `
		INSERT INTO periodic_results (run_id, bucket_end, bucket_start, result)
		VALUES ($1,$2,$3,$4)
	`

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, bucket := range periods {
			payload, err := json.Marshal(bucket)
			if err != nil {
				return fmt.Errorf("failed to encode bucket %d: %w", bucket.End, err)
			}
			if _, err := tx.Exec(ctx, query, runID, bucket.End, bucket.Start, payload); err != nil {
				return fmt.Errorf("failed to save bucket %d: %w", bucket.End, err)
			}
		}
		return nil
	})
}

// GetByRun retrieves a run's buckets in chronological order
func (r *PostgresPeriodicResultRepository) GetByRun(ctx context.Context, runID uuid.UUID) (backtest.PeriodicResult, error) {
	query := `
		SELECT result FROM periodic_results WHERE run_id = $1 ORDER BY bucket_end
	`
	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query periodic results: %w", err)
	}
	defer rows.Close()

	var periods backtest.PeriodicResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan periodic result: %w", err)
		}
		var bucket backtest.PeriodicBucket
		if err := json.Unmarshal(payload, &bucket); err != nil {
			return nil, fmt.Errorf("failed to decode periodic result: %w", err)
		}
		periods = append(periods, bucket)
	}
	return periods, rows.Err()
}
