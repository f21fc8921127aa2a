// Package datasource fetches and loads OHLCV candle data from external
// providers and local files, producing validated candle series for the
// backtest engine.
package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/strategy-tester/internal/models"
)

// DataSource defines the interface for fetching candle data from external providers
type DataSource interface {
	// FetchCandles retrieves candles for a symbol and interval within
	// [startTime, endTime] in epoch milliseconds.
	FetchCandles(ctx context.Context, symbol, interval string, startTime, endTime int64) ([]models.Candle, error)

	// Name returns the name of the data source
	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
	ErrCodeUnknown           = "unknown"
)

// Error constructors
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrInvalidData       = errors.New("invalid data format")
	ErrInvalidInterval   = errors.New("unsupported kline interval")
	ErrNetworkError      = errors.New("network error")
	ErrServerError       = errors.New("server error")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
