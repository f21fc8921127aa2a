package series

import (
	"fmt"
	"strconv"
	"time"

	"github.com/yourusername/strategy-tester/internal/models"
)

// timestampLayouts are the calendar formats candle feeds are known to emit.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ValidateColumns checks that a candle table header carries every required
// column, failing with a SchemaError naming the missing ones.
func ValidateColumns(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	missing := []string{}
	for _, col := range models.CandleColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &models.SchemaError{Missing: missing}
	}
	return nil
}

// NormalizeTimestamp converts a raw timestamp cell to milliseconds since
// epoch. Numeric input passes through untouched, which makes the conversion
// idempotent; calendar input is parsed against the known layouts.
func NormalizeTimestamp(raw string) (int64, error) {
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ms, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(f), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized timestamp %q", raw)
}
