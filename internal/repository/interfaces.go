// Package repository persists candle series, trade ledgers and backtest
// results to postgres.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/strategy-tester/internal/backtest"
	"github.com/yourusername/strategy-tester/internal/models"
)

// BacktestRun is one stored aggregate result with its provenance.
type BacktestRun struct {
	RunID     uuid.UUID       `json:"run_id"`
	Strategy  string          `json:"strategy"`
	Symbol    string          `json:"symbol"`
	Interval  string          `json:"interval"`
	CreatedAt time.Time       `json:"created_at"`
	Result    backtest.Result `json:"result"`
}

// CandleRepository stores and retrieves OHLCV candles per symbol and
// interval.
type CandleRepository interface {
	Save(ctx context.Context, symbol, interval string, candles []models.Candle) error
	GetRange(ctx context.Context, symbol, interval string, startTime, endTime int64) ([]models.Candle, error)
	LatestCloseTime(ctx context.Context, symbol, interval string) (int64, error)
}

// TradeRepository stores trade ledger snapshots keyed by run.
type TradeRepository interface {
	SaveAll(ctx context.Context, runID uuid.UUID, trades []*models.Trade) error
	GetByRun(ctx context.Context, runID uuid.UUID) ([]*models.Trade, error)
}

// BacktestResultRepository stores aggregate backtest results.
type BacktestResultRepository interface {
	Save(ctx context.Context, run *BacktestRun) error
	GetByRun(ctx context.Context, runID uuid.UUID) (*BacktestRun, error)
	GetLatest(ctx context.Context, limit int) ([]*BacktestRun, error)
}

// PeriodicResultRepository stores per-bucket periodic results keyed by run.
type PeriodicResultRepository interface {
	Save(ctx context.Context, runID uuid.UUID, periods backtest.PeriodicResult) error
	GetByRun(ctx context.Context, runID uuid.UUID) (backtest.PeriodicResult, error)
}
