package strategy

import (
	"fmt"
	"time"

	"github.com/yourusername/strategy-tester/internal/indicator"
	"github.com/yourusername/strategy-tester/internal/series"
)

// BaseStrategy provides shared functionality for strategies: an injected
// indicator cache and column bookkeeping helpers.
type BaseStrategy struct {
	Cache *indicator.SeriesCache
}

// NewBaseStrategy creates a base with a one-hour indicator cache.
func NewBaseStrategy() BaseStrategy {
	return BaseStrategy{Cache: indicator.NewSeriesCache(time.Hour)}
}

// Cached computes an indicator column through the content-addressed
// cache, keyed by the indicator name, its length parameter and a hash of
// the input window.
func (b *BaseStrategy) Cached(name string, length int, input []float64, compute func() []float64) []float64 {
	if b.Cache == nil {
		return compute()
	}
	key := indicator.CacheKey{
		Indicator: name,
		Length:    length,
		DataHash:  indicator.HashData(input),
	}
	return b.Cache.GetOrCompute(key, compute)
}

// Closes extracts the close column from a candle series.
func Closes(data *series.Series) []float64 {
	candles := data.Candles()
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// ValidateColumns ensures every column spans the full series length.
func ValidateColumns(cols Columns, length int) error {
	for name, values := range cols {
		if len(values) != length {
			return fmt.Errorf("indicator column %q has %d values, want %d", name, len(values), length)
		}
	}
	return nil
}

// ValidateConditions ensures every condition spans the full series length.
func ValidateConditions(conds Conditions, length int) error {
	for name, values := range conds {
		if len(values) != length {
			return fmt.Errorf("condition column %q has %d values, want %d", name, len(values), length)
		}
	}
	return nil
}
