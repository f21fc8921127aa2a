package backtest

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/strategy-tester/internal/ledger"
	"github.com/yourusername/strategy-tester/internal/models"
	"github.com/yourusername/strategy-tester/internal/series"
	"github.com/yourusername/strategy-tester/internal/strategy"
	"github.com/yourusername/strategy-tester/test/helpers"
)

// scriptedStrategy enters and exits at fixed candle indices so engine
// tests stay independent of indicator math.
type scriptedStrategy struct {
	entries map[int]bool
	exits   map[int]bool
}

func (s *scriptedStrategy) Name() string { return "scripted" }

func (s *scriptedStrategy) Indicators(data *series.Series) (strategy.Columns, error) {
	closes := make([]float64, data.Len())
	for i := 0; i < data.Len(); i++ {
		closes[i] = data.At(i).Close
	}
	return strategy.Columns{"close": closes}, nil
}

func (s *scriptedStrategy) Condition(cols strategy.Columns) (strategy.Conditions, error) {
	n := len(cols["close"])
	enter := make([]bool, n)
	exit := make([]bool, n)
	for i := range enter {
		enter[i] = s.entries[i]
		exit[i] = s.exits[i]
	}
	return strategy.Conditions{"enter": enter, "exit": exit}, nil
}

func (s *scriptedStrategy) Trade(book *ledger.Ledger, candle models.Candle, index int, conds strategy.Conditions) error {
	if conds["enter"][index] {
		if _, err := book.Entry("long", models.TradeTypeLong, 0.5, ""); err != nil {
			return err
		}
	}
	if conds["exit"][index] {
		if _, err := book.Exit("long", "exit", 1, ""); err != nil {
			return err
		}
	}
	return nil
}

func (s *scriptedStrategy) Parameters() map[string]interface{} {
	return map[string]interface{}{}
}

func testEngine(t *testing.T, strat strategy.Strategy, closes ...float64) *Engine {
	t.Helper()
	data := helpers.Series(t, helpers.Candles(baseDate, closes[0], closes...))
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := ledger.Config{InitialCapital: 10000, Mode: ledger.QtyFractionOfCash}
	engine, err := NewEngine(data, strat, cfg, logger)
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	return engine
}

func TestNewEngineValidation(t *testing.T) {
	data := helpers.Series(t, helpers.Candles(baseDate, 100, 100))
	cfg := ledger.Config{InitialCapital: 10000, Mode: ledger.QtyFractionOfCash}

	if _, err := NewEngine(nil, &scriptedStrategy{}, cfg, nil); err == nil {
		t.Error("expected error for nil series")
	}
	if _, err := NewEngine(data, nil, cfg, nil); err == nil {
		t.Error("expected error for nil strategy")
	}
}

func TestEngineRun(t *testing.T) {
	strat := &scriptedStrategy{
		entries: map[int]bool{1: true},
		exits:   map[int]bool{3: true},
	}
	engine := testEngine(t, strat, 100, 100, 110, 120, 115)

	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf(expectedNoError, err)
	}

	if result.TotalClosedTrades != 1 {
		t.Errorf("expected 1 closed trade, got %d", result.TotalClosedTrades)
	}
	// entered half the cash at 100, exited at 120: 50 contracts, 20 each
	if !almostEqual(result.NetProfit, 1000) {
		t.Errorf("expected net profit 1000, got %v", result.NetProfit)
	}
	if !almostEqual(result.InitialCapital, 10000) {
		t.Errorf("expected initial capital 10000, got %v", result.InitialCapital)
	}
}

func TestEngineRunNoClosedTrades(t *testing.T) {
	strat := &scriptedStrategy{entries: map[int]bool{1: true}}
	engine := testEngine(t, strat, 100, 100, 110, 120)

	_, err := engine.Run(context.Background())
	if !errors.Is(err, models.ErrNoClosedTrades) {
		t.Fatalf("expected ErrNoClosedTrades, got %v", err)
	}
}

func TestEngineRunContextCancelled(t *testing.T) {
	strat := &scriptedStrategy{
		entries: map[int]bool{1: true},
		exits:   map[int]bool{3: true},
	}
	engine := testEngine(t, strat, 100, 100, 110, 120, 115)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEngineRunPeriodic(t *testing.T) {
	strat := &scriptedStrategy{
		entries: map[int]bool{0: true, 2: true},
		exits:   map[int]bool{1: true, 3: true},
	}
	engine := testEngine(t, strat, 100, 110, 105, 112, 120)

	buckets, err := engine.RunPeriodic(context.Background(), Frequency{Kind: FrequencyDays, Days: 2}, SegmentOptions{})
	if err != nil {
		t.Fatalf(expectedNoError, err)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	for i, b := range buckets {
		if b.TradeCount != 1 {
			t.Errorf("bucket %d: expected 1 trade, got %d", i, b.TradeCount)
		}
	}
}

func TestEngineRunThenPeriodicSharesLedger(t *testing.T) {
	strat := &scriptedStrategy{
		entries: map[int]bool{1: true},
		exits:   map[int]bool{3: true},
	}
	engine := testEngine(t, strat, 100, 100, 110, 120, 115, 118)

	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf(expectedNoError, err)
	}
	if result.TotalClosedTrades != 1 {
		t.Fatalf("expected 1 closed trade after run, got %d", result.TotalClosedTrades)
	}

	buckets, err := engine.RunPeriodic(context.Background(), Frequency{Kind: FrequencyDays, Days: 2}, SegmentOptions{})
	if err != nil {
		t.Fatalf(expectedNoError, err)
	}

	// the same engine must segment the ledger Run populated, not
	// replay the strategy a second time on top of it
	if got := len(engine.Book().Trades()); got != 1 {
		t.Errorf("expected 1 trade in the ledger, got %d", got)
	}
	if !almostEqual(engine.Book().Cash(), 11000) {
		t.Errorf("expected cash 11000, got %v", engine.Book().Cash())
	}
	total := 0
	for _, b := range buckets {
		total += b.TradeCount
	}
	if total != 1 {
		t.Errorf("expected 1 trade across buckets, got %d", total)
	}
}

func TestEngineEquityCurve(t *testing.T) {
	strat := &scriptedStrategy{
		entries: map[int]bool{1: true},
		exits:   map[int]bool{3: true},
	}
	engine := testEngine(t, strat, 100, 100, 110, 120, 115)

	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf(expectedNoError, err)
	}

	curve := engine.EquityCurve()
	if len(curve) != 1 {
		t.Fatalf("expected 1 equity point, got %d", len(curve))
	}
	if !almostEqual(curve[0].Value, 11000) {
		t.Errorf("expected equity 11000 after the round trip, got %v", curve[0].Value)
	}
	if !almostEqual(curve[0].TradePnL, 1000) {
		t.Errorf("expected trade pnl 1000, got %v", curve[0].TradePnL)
	}
}
