package strategy

import (
	"fmt"

	"github.com/yourusername/strategy-tester/internal/indicator"
	"github.com/yourusername/strategy-tester/internal/ledger"
	"github.com/yourusername/strategy-tester/internal/models"
	"github.com/yourusername/strategy-tester/internal/series"
)

// SMACrossStrategy implements a two-average crossover strategy.
// Strategy logic: go long when the fast average crosses above the slow
// average, close when it crosses back under.
type SMACrossStrategy struct {
	BaseStrategy
	FastLength int
	SlowLength int
	Qty        float64
}

// NewSMACrossStrategy creates an SMA crossover strategy with the classic
// 10/30 lengths, sizing each entry at half the available cash.
func NewSMACrossStrategy() *SMACrossStrategy {
	return &SMACrossStrategy{
		BaseStrategy: NewBaseStrategy(),
		FastLength:   10,
		SlowLength:   30,
		Qty:          0.5,
	}
}

// Name returns strategy name
func (s *SMACrossStrategy) Name() string {
	return fmt.Sprintf("sma_cross_%d_%d", s.FastLength, s.SlowLength)
}

// Indicators computes the fast and slow moving averages over closes.
func (s *SMACrossStrategy) Indicators(data *series.Series) (Columns, error) {
	if s.FastLength <= 0 || s.SlowLength <= s.FastLength {
		return nil, fmt.Errorf("invalid lengths: fast=%d slow=%d", s.FastLength, s.SlowLength)
	}
	closes := Closes(data)
	fast := s.Cached("sma", s.FastLength, closes, func() []float64 {
		return indicator.SMA(closes, s.FastLength)
	})
	slow := s.Cached("sma", s.SlowLength, closes, func() []float64 {
		return indicator.SMA(closes, s.SlowLength)
	})
	cols := Columns{"fast": fast, "slow": slow}
	if err := ValidateColumns(cols, data.Len()); err != nil {
		return nil, err
	}
	return cols, nil
}

// Condition derives crossover flags from the average columns.
func (s *SMACrossStrategy) Condition(cols Columns) (Conditions, error) {
	fast, ok := cols["fast"]
	if !ok {
		return nil, fmt.Errorf("missing indicator column %q", "fast")
	}
	slow, ok := cols["slow"]
	if !ok {
		return nil, fmt.Errorf("missing indicator column %q", "slow")
	}
	return Conditions{
		"entry_long": indicator.Crossover(fast, slow),
		"exit_long":  indicator.Crossunder(fast, slow),
	}, nil
}

// Trade places entry/exit intents for one candle.
func (s *SMACrossStrategy) Trade(book *ledger.Ledger, candle models.Candle, index int, conds Conditions) error {
	_ = candle
	if conds["entry_long"][index] {
		if _, err := book.Entry("long_cross", models.TradeTypeLong, s.Qty, "fast above slow"); err != nil {
			return err
		}
	}
	if conds["exit_long"][index] {
		if _, err := book.Exit("long_cross", "cross_exit", 1.0, "fast below slow"); err != nil {
			return err
		}
	}
	return nil
}

// Parameters returns strategy parameters for result export
func (s *SMACrossStrategy) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"fast_length": s.FastLength,
		"slow_length": s.SlowLength,
		"qty":         s.Qty,
	}
}
