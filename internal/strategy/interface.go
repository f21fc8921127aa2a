// Package strategy defines the contract between the backtest engine and
// user trading rules. A strategy computes named indicator columns over
// the candle series, derives named boolean condition columns from them,
// and places entry/exit intents through the ledger once per candle.
package strategy

import (
	"github.com/yourusername/strategy-tester/internal/ledger"
	"github.com/yourusername/strategy-tester/internal/models"
	"github.com/yourusername/strategy-tester/internal/series"
)

// Columns maps an indicator name to its per-candle values, aligned
// index-for-index with the candle series.
type Columns map[string][]float64

// Conditions maps a condition name to its per-candle truth values,
// aligned index-for-index with the candle series.
type Conditions map[string][]bool

// Strategy defines the interface for backtesting strategies. Indicators
// and Condition run once over the full series before replay; Trade runs
// once per candle with the ledger cursor already positioned on it.
type Strategy interface {
	Name() string
	Indicators(data *series.Series) (Columns, error)
	Condition(cols Columns) (Conditions, error)
	Trade(book *ledger.Ledger, candle models.Candle, index int, conds Conditions) error
	Parameters() map[string]interface{}
}

// Metadata describes a strategy for result tracking and export.
type Metadata struct {
	Name       string                 `json:"name"`
	Version    string                 `json:"version"`
	Parameters map[string]interface{} `json:"parameters"`
}

// Describe builds export metadata for a strategy.
func Describe(s Strategy, version string) Metadata {
	return Metadata{
		Name:       s.Name(),
		Version:    version,
		Parameters: s.Parameters(),
	}
}
