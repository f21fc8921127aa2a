package series

import (
	"errors"
	"testing"

	"github.com/yourusername/strategy-tester/internal/models"
)

const day int64 = 24 * 60 * 60 * 1000

// 2023-01-01T00:00:00Z
const baseDate int64 = 1672531200000

func candle(date int64, close float64) models.Candle {
	return models.Candle{
		Date:      date,
		Open:      close,
		High:      close * 1.01,
		Low:       close * 0.99,
		Close:     close,
		Volume:    1000,
		CloseTime: date + day - 1,
	}
}

func dailyCandles(n int) []models.Candle {
	out := make([]models.Candle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, candle(baseDate+int64(i)*day, 100+float64(i)))
	}
	return out
}

func TestNewEmpty(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, models.ErrEmptyData) {
		t.Fatalf("expected ErrEmptyData, got %v", err)
	}
}

func TestNewRejectsNonIncreasingDates(t *testing.T) {
	candles := dailyCandles(3)
	candles[2].Date = candles[1].Date

	_, err := New(candles)
	if err == nil {
		t.Fatal("expected error for non-increasing dates")
	}
}

func TestNewRejectsCloseTimeBeforeDate(t *testing.T) {
	candles := dailyCandles(2)
	candles[1].CloseTime = candles[1].Date

	_, err := New(candles)
	if err == nil {
		t.Fatal("expected error for close_time <= date")
	}
}

func TestNewCopiesInput(t *testing.T) {
	candles := dailyCandles(3)
	s, err := New(candles)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	candles[0].Close = -1
	if s.First().Close == -1 {
		t.Fatal("series must own a copy of the input candles")
	}
}

func TestAccessors(t *testing.T) {
	s, err := New(dailyCandles(5))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if s.Len() != 5 {
		t.Errorf("expected length 5, got %d", s.Len())
	}
	if s.First().Date != baseDate {
		t.Errorf("expected first date %d, got %d", baseDate, s.First().Date)
	}
	if s.Last().Date != baseDate+4*day {
		t.Errorf("expected last date %d, got %d", baseDate+4*day, s.Last().Date)
	}
	if !s.IsLast(4) {
		t.Error("expected index 4 to be the last candle")
	}
	if s.IsLast(3) {
		t.Error("expected index 3 not to be the last candle")
	}
	if s.At(2).Close != 102 {
		t.Errorf("expected close 102 at index 2, got %v", s.At(2).Close)
	}
}

func TestSliceInclusiveBounds(t *testing.T) {
	s, err := New(dailyCandles(5))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got := s.Slice(baseDate+day, baseDate+3*day)
	if len(got) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(got))
	}
	if got[0].Date != baseDate+day || got[2].Date != baseDate+3*day {
		t.Errorf("slice bounds must be inclusive, got %d..%d", got[0].Date, got[2].Date)
	}
}

func TestSliceEmptyWindow(t *testing.T) {
	s, err := New(dailyCandles(3))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got := s.Slice(baseDate+10*day, baseDate+20*day)
	if len(got) != 0 {
		t.Fatalf("expected empty slice, got %d candles", len(got))
	}
}

func TestAppendNewer(t *testing.T) {
	s, err := New(dailyCandles(3))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := s.Append(candle(baseDate+3*day, 200)); err != nil {
		t.Fatalf("expected no error appending newer candle, got %v", err)
	}
	if s.Len() != 4 {
		t.Errorf("expected length 4 after append, got %d", s.Len())
	}
	if s.Last().Close != 200 {
		t.Errorf("expected appended close 200, got %v", s.Last().Close)
	}
}

func TestAppendSameDateReplacesTail(t *testing.T) {
	s, err := New(dailyCandles(3))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	revised := candle(baseDate+2*day, 300)
	if err := s.Append(revised); err != nil {
		t.Fatalf("expected no error revising tail candle, got %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("expected length to stay 3, got %d", s.Len())
	}
	if s.Last().Close != 300 {
		t.Errorf("expected revised close 300, got %v", s.Last().Close)
	}
}

func TestAppendOlderRejected(t *testing.T) {
	s, err := New(dailyCandles(3))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := s.Append(candle(baseDate, 50)); err == nil {
		t.Fatal("expected error appending candle older than the tail")
	}
	if s.Len() != 3 {
		t.Errorf("expected length unchanged, got %d", s.Len())
	}
}

func TestCandlesReturnsCopy(t *testing.T) {
	s, err := New(dailyCandles(2))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out := s.Candles()
	out[0].Close = -1
	if s.First().Close == -1 {
		t.Fatal("Candles must return a copy")
	}
}
