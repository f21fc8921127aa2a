package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/strategy-tester/internal/models"
)

// intervalDurations maps kline interval names to their candle spacing.
var intervalDurations = map[string]time.Duration{
	"1m":  time.Minute,
	"3m":  3 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"2h":  2 * time.Hour,
	"4h":  4 * time.Hour,
	"6h":  6 * time.Hour,
	"8h":  8 * time.Hour,
	"12h": 12 * time.Hour,
	"1d":  24 * time.Hour,
	"3d":  72 * time.Hour,
	"1w":  7 * 24 * time.Hour,
}

// CandleValidator checks fetched candles for structural problems
// before they are stored.
type CandleValidator struct {
	logger *logrus.Logger
}

// NewCandleValidator creates a new candle validator
func NewCandleValidator(logger *logrus.Logger) *CandleValidator {
	if logger == nil {
		logger = logrus.New()
	}
	return &CandleValidator{logger: logger}
}

// ValidateCandle validates one candle for required fields and price
// constraints
func (v *CandleValidator) ValidateCandle(c models.Candle) []string {
	var errors []string

	if c.Date <= 0 {
		errors = append(errors, fmt.Sprintf("date must be positive, got %d", c.Date))
	}
	if c.CloseTime > 0 && c.CloseTime <= c.Date {
		errors = append(errors, fmt.Sprintf("close_time %d must follow date %d", c.CloseTime, c.Date))
	}
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		errors = append(errors, "prices must be positive")
	}
	if c.High < c.Low {
		errors = append(errors, fmt.Sprintf("high %.8f below low %.8f", c.High, c.Low))
	}
	if c.Open > c.High || c.Open < c.Low {
		errors = append(errors, fmt.Sprintf("open %.8f outside high/low range", c.Open))
	}
	if c.Close > c.High || c.Close < c.Low {
		errors = append(errors, fmt.Sprintf("close %.8f outside high/low range", c.Close))
	}
	if c.Volume < 0 {
		errors = append(errors, fmt.Sprintf("volume cannot be negative, got %.8f", c.Volume))
	}

	return errors
}

// ValidateBatch validates a fetched batch: ordering, duplicates and
// per-candle constraints. Returns every problem found rather than
// stopping at the first.
func (v *CandleValidator) ValidateBatch(candles []models.Candle) []string {
	var errors []string

	for i, c := range candles {
		for _, msg := range v.ValidateCandle(c) {
			errors = append(errors, fmt.Sprintf("candle %d: %s", i, msg))
		}
		if i == 0 {
			continue
		}
		if c.Date == candles[i-1].Date {
			errors = append(errors, fmt.Sprintf("candle %d: duplicate timestamp %d", i, c.Date))
		} else if c.Date < candles[i-1].Date {
			errors = append(errors, fmt.Sprintf("candle %d: timestamp %d out of order", i, c.Date))
		}
	}

	return errors
}

// FindGaps returns the index of every candle whose spacing from its
// predecessor exceeds the expected interval. Unknown intervals report
// no gaps.
func (v *CandleValidator) FindGaps(candles []models.Candle, interval string) []int {
	spacing, ok := intervalDurations[interval]
	if !ok {
		return nil
	}
	expected := spacing.Milliseconds()

	var gaps []int
	for i := 1; i < len(candles); i++ {
		if candles[i].Date-candles[i-1].Date > expected {
			gaps = append(gaps, i)
		}
	}
	return gaps
}

// LogBatchIssues runs batch validation and gap detection, logging any
// findings. Returns true when the batch is clean.
func (v *CandleValidator) LogBatchIssues(candles []models.Candle, symbol, interval string) bool {
	issues := v.ValidateBatch(candles)
	gaps := v.FindGaps(candles, interval)

	for _, issue := range issues {
		v.logger.WithFields(logrus.Fields{
			"symbol":   symbol,
			"interval": interval,
		}).Warn(issue)
	}
	if len(gaps) > 0 {
		v.logger.WithFields(logrus.Fields{
			"symbol":   symbol,
			"interval": interval,
			"gaps":     len(gaps),
		}).Warn("Candle series has gaps")
	}

	return len(issues) == 0 && len(gaps) == 0
}
