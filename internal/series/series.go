// Package series holds the validated OHLCV candle table every other
// component reads from.
package series

import (
	"fmt"
	"sync"

	"github.com/yourusername/strategy-tester/internal/models"
)

// Series is an ordered candle table with a strictly increasing timestamp
// axis. Reads and appends are safe to interleave: an appended row becomes
// visible as a whole, never partially. Consumers receive copies, so a Series
// can back a running ledger while a live feed keeps appending to it.
type Series struct {
	mu      sync.RWMutex
	candles []models.Candle
}

// New validates the candle table and wraps it in a Series. It fails with
// models.ErrEmptyData on an empty table and rejects rows that break the
// timestamp invariants (strictly increasing date, close_time > date).
func New(candles []models.Candle) (*Series, error) {
	if len(candles) == 0 {
		return nil, models.ErrEmptyData
	}
	for i, c := range candles {
		if c.CloseTime <= c.Date {
			return nil, fmt.Errorf("candle %d: close_time %d must be greater than date %d", i, c.CloseTime, c.Date)
		}
		if i > 0 && c.Date <= candles[i-1].Date {
			return nil, fmt.Errorf("candle %d: date %d is not strictly increasing", i, c.Date)
		}
	}
	owned := make([]models.Candle, len(candles))
	copy(owned, candles)
	return &Series{candles: owned}, nil
}

// Len returns the number of candles.
func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candles)
}

// At returns the candle at index i.
func (s *Series) At(i int) models.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.candles[i]
}

// First returns the first candle.
func (s *Series) First() models.Candle {
	return s.At(0)
}

// Last returns the most recent candle.
func (s *Series) Last() models.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.candles[len(s.candles)-1]
}

// IsLast reports whether index i addresses the final candle.
func (s *Series) IsLast(i int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return i == len(s.candles)-1
}

// Slice returns the candles whose date falls within [from, to], inclusive on
// both ends. The result is a copy and may be empty.
func (s *Series) Slice(from, to int64) []models.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Candle{}
	for _, c := range s.candles {
		if c.Date >= from && c.Date <= to {
			out = append(out, c)
		}
	}
	return out
}

// Candles returns a copy of the full table.
func (s *Series) Candles() []models.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Candle, len(s.candles))
	copy(out, s.candles)
	return out
}

// Append adds a candle produced by a live feed. A row carrying the same open
// time as the final candle replaces it (the feed re-sends the closing version
// of a provisional bar); a newer row is appended; an older row is rejected.
func (s *Series) Append(c models.Candle) error {
	if c.CloseTime <= c.Date {
		return fmt.Errorf("candle close_time %d must be greater than date %d", c.CloseTime, c.Date)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	last := s.candles[len(s.candles)-1]
	switch {
	case c.Date == last.Date:
		s.candles[len(s.candles)-1] = c
	case c.Date > last.Date:
		s.candles = append(s.candles, c)
	default:
		return fmt.Errorf("candle date %d precedes the series tail %d", c.Date, last.Date)
	}
	return nil
}
