package helpers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/strategy-tester/internal/models"
	"github.com/yourusername/strategy-tester/internal/series"
)

// Day is one day of candle spacing in epoch milliseconds.
const Day int64 = 24 * 60 * 60 * 1000

// Candle builds a single daily candle at the given epoch-millisecond
// date. High and low are widened around the open/close range so the
// candle is always internally consistent.
func Candle(date int64, open, close float64) models.Candle {
	high := open
	if close > high {
		high = close
	}
	low := open
	if close < low {
		low = close
	}
	return models.Candle{
		Date:      date,
		Open:      open,
		High:      high * 1.01,
		Low:       low * 0.99,
		Close:     close,
		Volume:    1000,
		CloseTime: date + Day - 1,
	}
}

// Candles builds a daily series of len(closes) candles starting at
// start. Each candle opens at the previous close.
func Candles(start int64, open float64, closes ...float64) []models.Candle {
	out := make([]models.Candle, 0, len(closes))
	prev := open
	for i, c := range closes {
		out = append(out, Candle(start+int64(i)*Day, prev, c))
		prev = c
	}
	return out
}

// Series builds a candle series or fails the test.
func Series(t *testing.T, candles []models.Candle) *series.Series {
	t.Helper()
	s, err := series.New(candles)
	require.NoError(t, err, "failed to build candle series")
	return s
}

// ClosedTrade builds a fully settled trade with the given entry and
// exit, one contract, long direction.
func ClosedTrade(entryDate int64, entryPrice float64, exitDate int64, exitPrice float64) *models.Trade {
	profit := exitPrice - entryPrice
	profitPercent := 0.0
	if entryPrice != 0 {
		profitPercent = profit / entryPrice * 100
	}
	exitSignal := "exit"
	bars := int((exitDate - entryDate) / Day)
	return &models.Trade{
		ID:            uuid.New(),
		Type:          models.TradeTypeLong,
		EntryDate:     entryDate,
		EntryPrice:    entryPrice,
		Contract:      1,
		EntrySignal:   "entry",
		ExitDate:      &exitDate,
		ExitPrice:     &exitPrice,
		ExitSignal:    &exitSignal,
		Profit:        &profit,
		ProfitPercent: &profitPercent,
		BarsTraded:    &bars,
	}
}

// OpenTrade builds an unsettled long trade.
func OpenTrade(entryDate int64, entryPrice float64) *models.Trade {
	return &models.Trade{
		ID:          uuid.New(),
		Type:        models.TradeTypeLong,
		EntryDate:   entryDate,
		EntryPrice:  entryPrice,
		Contract:    1,
		EntrySignal: "entry",
	}
}

// MockKlinesServer creates a mock HTTP server answering the exchange
// klines endpoint with the given candles, in wire row format.
func MockKlinesServer(t *testing.T, candles []models.Candle) *httptest.Server {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		rows := make([][]interface{}, 0, len(candles))
		for _, c := range candles {
			rows = append(rows, []interface{}{
				c.Date,
				formatPrice(c.Open),
				formatPrice(c.High),
				formatPrice(c.Low),
				formatPrice(c.Close),
				formatPrice(c.Volume),
				c.CloseTime,
			})
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(rows)
	})

	return httptest.NewServer(handler)
}

func formatPrice(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// WaitForCondition waits for a condition to become true or times out.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}

	require.Fail(t, "condition not met within timeout", message)
}

// CreateTestContext creates a context with a timeout for testing.
func CreateTestContext(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)

	return ctx
}

// GetEnvOrDefault returns environment variable value or a default.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// SkipIfShort skips test if running in short mode.
func SkipIfShort(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode")
	}
}
