package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for empty or missing inputs. Validation failures abort the
// current operation; they are never retried or silently recovered from.
var (
	ErrEmptyData      = errors.New("candle data is empty")
	ErrEmptyCandles   = errors.New("candles are empty")
	ErrEmptyTrades    = errors.New("trade table is empty")
	ErrNoClosedTrades = errors.New("there are no closed positions")
	ErrNotFound       = errors.New("record not found")
)

// SchemaError reports a candle table missing required columns.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("candle data is missing columns: %s", strings.Join(e.Missing, ", "))
}

// MissingColumnsError reports a tabular input missing required columns at
// aggregation time. Table names the offending input ("trades" or "candles").
type MissingColumnsError struct {
	Table   string
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s are missing columns: %s", e.Table, strings.Join(e.Missing, ", "))
}

// InvalidQuantityError reports a trade quantity outside the allowed range for
// the ledger's sizing mode.
type InvalidQuantityError struct {
	Qty    float64
	Reason string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %v: %s", e.Qty, e.Reason)
}

// InvalidFrequencyError reports a periodic bucketing specification that is
// neither a positive day count nor a recognized frequency token.
type InvalidFrequencyError struct {
	Spec string
}

func (e *InvalidFrequencyError) Error() string {
	return fmt.Sprintf("invalid bucketing frequency %q: want a positive day count or one of D, W, M", e.Spec)
}
