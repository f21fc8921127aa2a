package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/strategy-tester/internal/ledger"
	"github.com/yourusername/strategy-tester/internal/metrics"
	"github.com/yourusername/strategy-tester/internal/models"
	"github.com/yourusername/strategy-tester/internal/series"
	"github.com/yourusername/strategy-tester/internal/strategy"
)

// Engine orchestrates a backtest run: it evaluates the strategy's
// indicator and condition columns once over the candle series, then
// replays the series candle by candle, routing the strategy's trade
// intents through the ledger, and finally aggregates the result.
type Engine struct {
	data     *series.Series
	strategy strategy.Strategy
	book     *ledger.Ledger
	logger   *logrus.Logger
	replayed bool
}

// NewEngine creates a backtest engine over a candle series.
func NewEngine(data *series.Series, strat strategy.Strategy, cfg ledger.Config, logger *logrus.Logger) (*Engine, error) {
	if data == nil {
		return nil, fmt.Errorf("candle series is required")
	}
	if strat == nil {
		return nil, fmt.Errorf("strategy is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	book, err := ledger.New(data, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Engine{
		data:     data,
		strategy: strat,
		book:     book,
		logger:   logger,
	}, nil
}

// Book returns the engine's trade ledger.
func (e *Engine) Book() *ledger.Ledger {
	return e.book
}

// Logger returns the engine logger
func (e *Engine) Logger() *logrus.Logger {
	return e.logger
}

// EquityCurve reconstructs account equity from the trades closed so
// far. Call after Run or Replay.
func (e *Engine) EquityCurve() EquityCurve {
	return BuildEquityCurve(e.book.Trades(), e.book.InitialCapital())
}

// Run replays the candle series through the strategy and aggregates the
// resulting ledger. It fails with ErrNoClosedTrades when the strategy
// never completed a round trip.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	started := time.Now()
	e.logger.WithFields(logrus.Fields{
		"strategy": e.strategy.Name(),
		"candles":  e.data.Len(),
	}).Info("Starting backtest run")

	if err := e.Replay(ctx); err != nil {
		return Result{}, err
	}
	if !e.book.HasClosedTrades() {
		return Result{}, models.ErrNoClosedTrades
	}

	result, err := Compute(e.book.Trades(), e.data.Candles(), e.book.InitialCapital())
	if err != nil {
		return Result{}, err
	}

	metrics.BacktestDuration.Observe(time.Since(started).Seconds())
	e.logger.WithFields(logrus.Fields{
		"strategy":      e.strategy.Name(),
		"net_profit":    result.NetProfit,
		"closed_trades": result.TotalClosedTrades,
		"duration":      time.Since(started).String(),
	}).Info("Backtest run complete")

	return result, nil
}

// Replay drives the strategy across every candle without aggregating,
// leaving the populated ledger available through Book. The series is
// replayed at most once per engine: later calls return immediately so
// Run and RunPeriodic can share one ledger without double-booking.
func (e *Engine) Replay(ctx context.Context) error {
	if e.replayed {
		return nil
	}
	cols, err := e.strategy.Indicators(e.data)
	if err != nil {
		return fmt.Errorf("indicator evaluation failed: %w", err)
	}
	conds, err := e.strategy.Condition(cols)
	if err != nil {
		return fmt.Errorf("condition evaluation failed: %w", err)
	}
	if err := strategy.ValidateConditions(conds, e.data.Len()); err != nil {
		return err
	}

	// Mark before the loop: a partially replayed ledger must never be
	// replayed again on top of itself.
	e.replayed = true
	for i := 0; i < e.data.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.book.SetCursor(i)
		if err := e.strategy.Trade(e.book, e.data.At(i), i, conds); err != nil {
			return fmt.Errorf("strategy trade failed at candle %d: %w", i, err)
		}
	}
	return nil
}

// RunPeriodic replays the series once and segments the resulting ledger
// into periodic buckets.
func (e *Engine) RunPeriodic(ctx context.Context, freq Frequency, opts SegmentOptions) (PeriodicResult, error) {
	if err := e.Replay(ctx); err != nil {
		return nil, err
	}
	if !e.book.HasClosedTrades() {
		return nil, models.ErrNoClosedTrades
	}
	return Segment(e.book.Trades(), e.data.Candles(), e.book.InitialCapital(), freq, opts)
}
