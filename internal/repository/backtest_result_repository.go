package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/strategy-tester/internal/database"
	"github.com/yourusername/strategy-tester/internal/models"
)

const errScanBacktestResult = "failed to scan backtest result: %w"

// PostgresBacktestResultRepository implements BacktestResultRepository for PostgreSQL
type PostgresBacktestResultRepository struct {
	db *database.DB
}

// NewPostgresBacktestResultRepository creates a new backtest result repository
func NewPostgresBacktestResultRepository(db *database.DB) BacktestResultRepository {
	return &PostgresBacktestResultRepository{db: db}
}

// Save inserts a backtest run's aggregate result as JSONB
func (r *PostgresBacktestResultRepository) Save(ctx context.Context, run *BacktestRun) error {
	payload, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	query := `
		INSERT INTO backtest_results (run_id, strategy, symbol, interval, created_at, result)
		VALUES ($1,$2,$3,$4,$5,$6)
	`
	if _, err := r.db.Exec(ctx, query,
		run.RunID, run.Strategy, run.Symbol, run.Interval, run.CreatedAt, payload,
	); err != nil {
		return fmt.Errorf("failed to save backtest result: %w", err)
	}
	return nil
}

// GetByRun retrieves one run's result
func (r *PostgresBacktestResultRepository) GetByRun(ctx context.Context, runID uuid.UUID) (*BacktestRun, error) {
	query := `
		SELECT run_id, strategy, symbol, interval, created_at, result
		FROM backtest_results WHERE run_id = $1
	`
	run, err := scanRun(r.db.QueryRow(ctx, query, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

// GetLatest retrieves the most recent runs
func (r *PostgresBacktestResultRepository) GetLatest(ctx context.Context, limit int) ([]*BacktestRun, error) {
	query := `
		SELECT run_id, strategy, symbol, interval, created_at, result
		FROM backtest_results ORDER BY created_at DESC LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest backtest results: %w", err)
	}
	defer rows.Close()

	var runs []*BacktestRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*BacktestRun, error) {
	run := &BacktestRun{}
	var payload []byte
	if err := row.Scan(&run.RunID, &run.Strategy, &run.Symbol, &run.Interval, &run.CreatedAt, &payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf(errScanBacktestResult, err)
	}
	if err := json.Unmarshal(payload, &run.Result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return run, nil
}
