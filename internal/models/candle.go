package models

import "time"

// Candle represents a single OHLCV bar. Date and CloseTime are milliseconds
// since epoch; Date is the bar's open time and CloseTime is strictly greater.
type Candle struct {
	Date      int64   `json:"date" db:"date"`
	Open      float64 `json:"open" db:"open"`
	High      float64 `json:"high" db:"high"`
	Low       float64 `json:"low" db:"low"`
	Close     float64 `json:"close" db:"close"`
	Volume    float64 `json:"volume" db:"volume"`
	CloseTime int64   `json:"close_time" db:"close_time"`
}

// OpenedAt returns the bar open time as a UTC time.Time.
func (c Candle) OpenedAt() time.Time {
	return time.UnixMilli(c.Date).UTC()
}

// ClosedAt returns the bar close time as a UTC time.Time.
func (c Candle) ClosedAt() time.Time {
	return time.UnixMilli(c.CloseTime).UTC()
}

// CandleColumns enumerates the columns a candle table must provide.
var CandleColumns = []string{"date", "open", "high", "low", "close", "volume", "close_time"}
