package datasource

import (
	"fmt"
	"log"
)

// SourceType represents the type of data source
type SourceType string

const (
	// Binance spot kline data source type
	BinanceSourceType SourceType = "binance"
)

// Factory creates DataSource implementations based on configuration
type Factory struct {
	logger *log.Logger
}

// NewFactory creates a new data source factory
func NewFactory(logger *log.Logger) *Factory {
	return &Factory{logger: logger}
}

// Create creates a new data source of the given type
func (f *Factory) Create(sourceType SourceType, httpClient *RateLimitedHTTPClient) (DataSource, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}

	switch sourceType {
	case BinanceSourceType:
		return NewBinanceClient(httpClient, f.logger), nil
	default:
		return nil, fmt.Errorf("unknown data source type: %s", sourceType)
	}
}

// ListAvailableSources returns a list of available source types
func (f *Factory) ListAvailableSources() []SourceType {
	return []SourceType{BinanceSourceType}
}
