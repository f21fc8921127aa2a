package backtest

import (
	"strconv"
	"time"

	"github.com/yourusername/strategy-tester/internal/models"
)

// FrequencyKind selects how bucket boundaries are derived.
type FrequencyKind int

const (
	// FrequencyDays buckets by a fixed number of days anchored at the
	// first candle's UTC midnight.
	FrequencyDays FrequencyKind = iota
	// FrequencyWeek buckets by ISO weeks (Monday 00:00 UTC).
	FrequencyWeek
	// FrequencyMonth buckets by calendar months.
	FrequencyMonth
)

// Frequency is a parsed bucketing specification.
type Frequency struct {
	Kind FrequencyKind
	Days int
}

// ParseFrequency accepts a positive integer day count ("7", "30"), the
// day token "D", the week token "W" or the month token "M". Anything else
// is an InvalidFrequencyError.
func ParseFrequency(spec string) (Frequency, error) {
	switch spec {
	case "D":
		return Frequency{Kind: FrequencyDays, Days: 1}, nil
	case "W":
		return Frequency{Kind: FrequencyWeek}, nil
	case "M":
		return Frequency{Kind: FrequencyMonth}, nil
	}
	n, err := strconv.Atoi(spec)
	if err != nil || n <= 0 {
		return Frequency{}, &models.InvalidFrequencyError{Spec: spec}
	}
	return Frequency{Kind: FrequencyDays, Days: n}, nil
}

// PeriodicBucket is one time window's aggregate, labelled by the bucket's
// end timestamp in epoch milliseconds.
type PeriodicBucket struct {
	Start          int64   `json:"start"`
	End            int64   `json:"end"`
	OpeningCapital float64 `json:"opening_capital"`
	TradeCount     int     `json:"trade_count"`
	Result         Result  `json:"result"`
}

// PeriodicResult holds per-bucket aggregates in chronological order.
type PeriodicResult []PeriodicBucket

// SegmentOptions bound the candle window of a periodic run. Zero values
// leave the corresponding side unbounded.
type SegmentOptions struct {
	StartDate int64
	EndDate   int64
}

// Segment partitions candles into time buckets per the frequency and runs
// Compute over each bucket that contains at least one trade. A trade
// belongs to the bucket whose half-open window [start, end) contains its
// entry_date; buckets with no trades produce no output row.
//
// The opening capital of a bucket is the carried-over position value of
// the closed trade immediately preceding the bucket's first trade in the
// master trade ordering, contract times exit_price; when no such trade
// exists, the global initial capital is used.
func Segment(trades []*models.Trade, candles []models.Candle, initialCapital float64, freq Frequency, opts SegmentOptions) (PeriodicResult, error) {
	if len(trades) == 0 {
		return nil, models.ErrEmptyTrades
	}
	if len(candles) == 0 {
		return nil, models.ErrEmptyCandles
	}

	window := boundCandles(candles, opts)
	if len(window) == 0 {
		return PeriodicResult{}, nil
	}

	var out PeriodicResult
	for _, b := range splitCandles(window, freq) {
		bucketTrades, firstIdx := tradesIn(trades, b.start, b.end)
		if len(bucketTrades) == 0 {
			continue
		}

		capital := carriedCapital(trades, firstIdx, initialCapital)
		result, err := Compute(bucketTrades, b.candles, capital)
		if err != nil {
			return nil, err
		}

		out = append(out, PeriodicBucket{
			Start:          b.start,
			End:            b.end,
			OpeningCapital: capital,
			TradeCount:     len(bucketTrades),
			Result:         result,
		})
	}
	if out == nil {
		out = PeriodicResult{}
	}
	return out, nil
}

type candleBucket struct {
	start   int64
	end     int64
	candles []models.Candle
}

func boundCandles(candles []models.Candle, opts SegmentOptions) []models.Candle {
	lo := 0
	hi := len(candles)
	for lo < hi && opts.StartDate > 0 && candles[lo].Date < opts.StartDate {
		lo++
	}
	for hi > lo && opts.EndDate > 0 && candles[hi-1].Date > opts.EndDate {
		hi--
	}
	return candles[lo:hi]
}

// splitCandles groups the window into contiguous buckets. Bucket starts
// are derived per candle so gaps in the data never shift later buckets.
func splitCandles(candles []models.Candle, freq Frequency) []candleBucket {
	anchor := truncateUTCDay(candles[0].Date)

	var buckets []candleBucket
	for _, c := range candles {
		start := bucketStart(c.Date, freq, anchor)
		if len(buckets) == 0 || buckets[len(buckets)-1].start != start {
			buckets = append(buckets, candleBucket{
				start: start,
				end:   bucketEnd(start, freq),
			})
		}
		last := &buckets[len(buckets)-1]
		last.candles = append(last.candles, c)
	}
	return buckets
}

func bucketStart(ts int64, freq Frequency, anchor int64) int64 {
	switch freq.Kind {
	case FrequencyWeek:
		t := time.UnixMilli(ts).UTC()
		day := (int(t.Weekday()) + 6) % 7 // Monday = 0
		monday := time.Date(t.Year(), t.Month(), t.Day()-day, 0, 0, 0, 0, time.UTC)
		return monday.UnixMilli()
	case FrequencyMonth:
		t := time.UnixMilli(ts).UTC()
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	default:
		span := int64(freq.Days) * millisPerDay
		return anchor + (ts-anchor)/span*span
	}
}

func bucketEnd(start int64, freq Frequency) int64 {
	switch freq.Kind {
	case FrequencyWeek:
		return start + 7*millisPerDay
	case FrequencyMonth:
		t := time.UnixMilli(start).UTC()
		return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	default:
		return start + int64(freq.Days)*millisPerDay
	}
}

const millisPerDay = int64(24 * time.Hour / time.Millisecond)

func truncateUTCDay(ts int64) int64 {
	t := time.UnixMilli(ts).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).UnixMilli()
}

// tradesIn returns the trades whose entry_date lies in [start, end) plus
// the master-order index of the first match, or -1 when empty.
func tradesIn(trades []*models.Trade, start, end int64) ([]*models.Trade, int) {
	var picked []*models.Trade
	firstIdx := -1
	for i, t := range trades {
		if t.EntryDate >= start && t.EntryDate < end {
			if firstIdx < 0 {
				firstIdx = i
			}
			picked = append(picked, t)
		}
	}
	return picked, firstIdx
}

// carriedCapital walks back from the trade before firstIdx to the most
// recent trade holding exit data and values its position at exit.
func carriedCapital(trades []*models.Trade, firstIdx int, initialCapital float64) float64 {
	for i := firstIdx - 1; i >= 0; i-- {
		if trades[i].ExitPrice != nil {
			return trades[i].Contract * *trades[i].ExitPrice
		}
	}
	return initialCapital
}
