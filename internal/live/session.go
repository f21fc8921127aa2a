package live

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/strategy-tester/internal/ledger"
	applogger "github.com/yourusername/strategy-tester/internal/logger"
	"github.com/yourusername/strategy-tester/internal/metrics"
	"github.com/yourusername/strategy-tester/internal/series"
	"github.com/yourusername/strategy-tester/internal/strategy"
)

// Session drives a strategy from a live kline stream. All candle appends
// and trade intents happen on the stream goroutine, so the ledger sees a
// single writer and every bar is fully committed before the strategy
// evaluates it.
//
// A closed bar is not evaluated until the next bar's first update has
// arrived: the ledger refuses to close positions on the series tail, and
// waiting one tick keeps live evaluation identical to historical replay,
// where every traded bar has a successor.
type Session struct {
	data     *series.Series
	strat    strategy.Strategy
	book     *ledger.Ledger
	stream   *KlineStream
	logger   *logrus.Logger
	stratLog *applogger.StrategyLogger
	reported map[uuid.UUID]struct{}

	pending     bool
	pendingDate int64
}

// NewSession creates a live trading session over an already-loaded
// historical series. The stream's first bars overlap the tail of the
// history; same-timestamp appends revise that final unclosed bar in
// place rather than duplicating it.
func NewSession(data *series.Series, strat strategy.Strategy, cfg ledger.Config, stream *KlineStream, logger *logrus.Logger) (*Session, error) {
	if data == nil {
		return nil, fmt.Errorf("candle series is required")
	}
	if strat == nil {
		return nil, fmt.Errorf("strategy is required")
	}
	if stream == nil {
		return nil, fmt.Errorf("kline stream is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	book, err := ledger.New(data, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Session{
		data:     data,
		strat:    strat,
		book:     book,
		stream:   stream,
		logger:   logger,
		stratLog: applogger.NewStrategyLogger(logger),
		reported: make(map[uuid.UUID]struct{}),
	}, nil
}

// Book returns the session's trade ledger.
func (s *Session) Book() *ledger.Ledger {
	return s.book
}

// Run consumes the stream until the context is cancelled.
func (s *Session) Run(ctx context.Context) error {
	s.logger.WithFields(logrus.Fields{
		"strategy": s.strat.Name(),
		"candles":  s.data.Len(),
	}).Info("Starting live session")

	return s.stream.Run(ctx, s.handle)
}

func (s *Session) handle(event KlineEvent) error {
	if err := s.data.Append(event.Candle); err != nil {
		s.logger.WithError(err).Warn("Dropping out-of-order stream candle")
		return nil
	}
	metrics.CandlesIngestedTotal.Inc()

	if s.pending && event.Candle.Date > s.pendingDate {
		s.pending = false
		if err := s.evaluate(s.data.Len() - 2); err != nil {
			return err
		}
	}
	if event.Final {
		s.pending = true
		s.pendingDate = event.Candle.Date
	}
	return nil
}

// evaluate recomputes strategy columns over the grown series and fires
// trade intents for the candle at index.
func (s *Session) evaluate(index int) error {
	if index < 0 {
		return nil
	}
	started := time.Now()
	openBefore := len(s.book.OpenTrades())

	cols, err := s.strat.Indicators(s.data)
	if err != nil {
		return fmt.Errorf("indicator evaluation failed: %w", err)
	}
	conds, err := s.strat.Condition(cols)
	if err != nil {
		return fmt.Errorf("condition evaluation failed: %w", err)
	}
	if err := strategy.ValidateConditions(conds, s.data.Len()); err != nil {
		return err
	}

	s.book.SetCursor(index)
	if err := s.strat.Trade(s.book, s.data.At(index), index, conds); err != nil {
		return fmt.Errorf("strategy trade failed: %w", err)
	}

	s.logFills(openBefore)
	s.stratLog.LogEvaluation(s.strat.Name(), s.data.At(index).Date, s.data.Len(),
		float64(time.Since(started).Microseconds())/1000)
	return nil
}

// logFills reports every position opened or settled by the evaluation
// just finished.
func (s *Session) logFills(openBefore int) {
	open := s.book.OpenTrades()
	if openBefore > len(open) {
		openBefore = len(open)
	}
	for _, t := range open[openBefore:] {
		s.stratLog.LogTradeOpened(s.strat.Name(), t.ID.String(), string(t.Type),
			t.EntrySignal, t.EntryPrice, t.Contract)
	}

	closed := s.book.ClosedTrades()
	newlyClosed := 0
	for _, t := range closed {
		if _, ok := s.reported[t.ID]; ok {
			continue
		}
		s.reported[t.ID] = struct{}{}
		newlyClosed++
		s.stratLog.LogTradeClosed(s.strat.Name(), t.ID.String(), strOr(t.ExitSignal),
			floatOr(t.ExitPrice), floatOr(t.Profit), floatOr(t.ProfitPercent), intOr(t.BarsTraded))
	}
	if len(open) != openBefore || newlyClosed > 0 {
		s.stratLog.LogCashUpdate(s.strat.Name(), s.book.Cash(), s.book.CommissionPaid(), len(open))
	}
}

func strOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOr(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
