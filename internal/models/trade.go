package models

import (
	"github.com/google/uuid"
)

// TradeType is the direction of a position.
type TradeType string

const (
	TradeTypeLong  TradeType = "long"
	TradeTypeShort TradeType = "short"
)

// Trade represents a single position. Entry fields are set when the position
// is opened; exit fields and the derived metrics stay nil until the position
// is closed, at which point they are sealed and never mutated again.
type Trade struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Type        TradeType `json:"type" db:"type" validate:"required,oneof=long short"`
	EntryDate   int64     `json:"entry_date" db:"entry_date"`
	EntryPrice  float64   `json:"entry_price" db:"entry_price" validate:"required,gt=0"`
	Contract    float64   `json:"contract" db:"contract" validate:"required,gt=0"`
	EntrySignal string    `json:"entry_signal" db:"entry_signal"`
	Comment     *string   `json:"comment,omitempty" db:"comment"`

	ExitDate   *int64   `json:"exit_date,omitempty" db:"exit_date"`
	ExitPrice  *float64 `json:"exit_price,omitempty" db:"exit_price"`
	ExitSignal *string  `json:"exit_signal,omitempty" db:"exit_signal"`

	Profit           *float64 `json:"profit,omitempty" db:"profit"`
	ProfitPercent    *float64 `json:"profit_percent,omitempty" db:"profit_percent"`
	DrawDown         *float64 `json:"draw_down,omitempty" db:"draw_down"`
	RunUp            *float64 `json:"run_up,omitempty" db:"run_up"`
	BarsTraded       *int     `json:"bars_traded,omitempty" db:"bars_traded"`
	CumProfit        *float64 `json:"cum_profit,omitempty" db:"cum_profit"`
	CumProfitPercent *float64 `json:"cum_profit_percent,omitempty" db:"cum_profit_percent"`
}

// IsClosed reports whether the trade has been closed. A trade is open iff its
// exit date is unset.
func (t *Trade) IsClosed() bool {
	return t.ExitDate != nil
}

// WeightedProfit returns profit scaled by contract size, or 0 for open trades.
func (t *Trade) WeightedProfit() float64 {
	if t.Profit == nil {
		return 0
	}
	return *t.Profit * t.Contract
}

// TradeColumns enumerates the columns a trade table must provide.
var TradeColumns = []string{
	"type", "entry_date", "exit_date", "entry_price", "exit_price",
	"entry_signal", "exit_signal", "contract", "profit", "profit_percent",
	"cum_profit", "cum_profit_percent", "run_up", "draw_down", "bars_traded",
}
