package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/strategy-tester/internal/metrics"
	"github.com/yourusername/strategy-tester/internal/models"
)

// klineBatchLimit is the maximum rows a single kline request may return.
const klineBatchLimit = 1000

// supportedIntervals enumerates the exchange's kline interval tokens.
var supportedIntervals = map[string]bool{
	"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true, "1M": true,
}

// BinanceClient implements DataSource for Binance spot kline data
type BinanceClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	logger     *log.Logger
}

// NewBinanceClient creates a new Binance kline data client
func NewBinanceClient(httpClient *RateLimitedHTTPClient, logger *log.Logger) *BinanceClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &BinanceClient{
		httpClient: httpClient,
		baseURL:    "https://api.binance.com",
		logger:     logger,
	}
}

// Name returns the name of the data source
func (c *BinanceClient) Name() string {
	return "binance"
}

// FetchCandles retrieves klines for the symbol and interval, paginating
// in batches until the requested window is covered. Timestamps are epoch
// milliseconds; rows are returned sorted by open time.
func (c *BinanceClient) FetchCandles(ctx context.Context, symbol, interval string, startTime, endTime int64) ([]models.Candle, error) {
	if !supportedIntervals[interval] {
		return nil, NewDataSourceError(c.Name(), ErrCodeInvalidData, fmt.Sprintf("interval %q", interval), ErrInvalidInterval)
	}
	if endTime <= startTime {
		return nil, NewDataSourceError(c.Name(), ErrCodeInvalidData, "end time must follow start time", nil)
	}

	var candles []models.Candle
	cursor := startTime
	for cursor < endTime {
		batch, err := c.fetchBatch(ctx, symbol, interval, cursor, endTime)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		candles = append(candles, batch...)
		cursor = batch[len(batch)-1].CloseTime + 1
		if len(batch) < klineBatchLimit {
			break
		}
	}

	metrics.CandlesIngestedTotal.Add(float64(len(candles)))
	c.logger.Printf("fetched %d candles for %s %s", len(candles), symbol, interval)
	return candles, nil
}

func (c *BinanceClient) fetchBatch(ctx context.Context, symbol, interval string, startTime, endTime int64) ([]models.Candle, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("interval", interval)
	query.Set("startTime", fmt.Sprintf("%d", startTime))
	query.Set("endTime", fmt.Sprintf("%d", endTime))
	query.Set("limit", fmt.Sprintf("%d", klineBatchLimit))

	started := time.Now()
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/api/v3/klines?"+query.Encode())
	if err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeNetworkError, "kline request failed", err)
	}
	defer resp.Body.Close()
	metrics.CandleFetchLatency.Observe(time.Since(started).Seconds())

	if resp.StatusCode == 429 {
		return nil, NewDataSourceError(c.Name(), ErrCodeRateLimitExceeded, "kline request throttled", ErrRateLimitExceeded)
	}
	if resp.StatusCode >= 500 {
		return nil, NewDataSourceError(c.Name(), ErrCodeServerError, fmt.Sprintf("status %d", resp.StatusCode), ErrServerError)
	}
	if resp.StatusCode != 200 {
		return nil, NewDataSourceError(c.Name(), ErrCodeUnknown, fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var rows [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeInvalidData, "malformed kline payload", err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := parseKlineRow(row)
		if err != nil {
			return nil, NewDataSourceError(c.Name(), ErrCodeInvalidData, "malformed kline row", err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseKlineRow converts one exchange kline row. The wire format is a
// mixed array: timestamps as numbers, prices and volume as decimal
// strings.
func parseKlineRow(row []json.RawMessage) (models.Candle, error) {
	if len(row) < 7 {
		return models.Candle{}, fmt.Errorf("kline row has %d fields, want at least 7", len(row))
	}

	var candle models.Candle
	if err := json.Unmarshal(row[0], &candle.Date); err != nil {
		return models.Candle{}, fmt.Errorf("open time: %w", err)
	}
	if err := json.Unmarshal(row[6], &candle.CloseTime); err != nil {
		return models.Candle{}, fmt.Errorf("close time: %w", err)
	}

	fields := []struct {
		raw  json.RawMessage
		dst  *float64
		name string
	}{
		{row[1], &candle.Open, "open"},
		{row[2], &candle.High, "high"},
		{row[3], &candle.Low, "low"},
		{row[4], &candle.Close, "close"},
		{row[5], &candle.Volume, "volume"},
	}
	for _, f := range fields {
		var s string
		if err := json.Unmarshal(f.raw, &s); err != nil {
			return models.Candle{}, fmt.Errorf("%s: %w", f.name, err)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return models.Candle{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst, _ = d.Float64()
	}
	return candle, nil
}
