package ledger

import (
	"math"
	"testing"

	"github.com/yourusername/strategy-tester/internal/models"
	"github.com/yourusername/strategy-tester/test/helpers"
)

func sealedTrade(t *testing.T, direction models.TradeType, entry, exit float64) (*models.Trade, []models.Candle) {
	t.Helper()
	slice := helpers.Candles(baseDate, entry, entry, (entry+exit)/2, exit)
	exitDate := slice[len(slice)-1].CloseTime
	trade := &models.Trade{
		Type:       direction,
		EntryDate:  baseDate,
		EntryPrice: entry,
		Contract:   1,
		ExitDate:   &exitDate,
		ExitPrice:  &exit,
	}
	return trade, slice
}

func TestSealLong(t *testing.T) {
	trade, slice := sealedTrade(t, models.TradeTypeLong, 100, 120)

	Seal(trade, slice)

	if trade.Profit == nil {
		t.Fatal("expected the trade to be sealed")
	}
	if *trade.Profit != 20 {
		t.Errorf("expected profit 20, got %v", *trade.Profit)
	}
	if *trade.ProfitPercent != 20 {
		t.Errorf("expected profit percent 20, got %v", *trade.ProfitPercent)
	}
	if *trade.BarsTraded != len(slice) {
		t.Errorf("expected %d bars, got %d", len(slice), *trade.BarsTraded)
	}
	if *trade.DrawDown >= 0 {
		t.Errorf("expected negative draw down, got %v", *trade.DrawDown)
	}
	if *trade.RunUp <= 0 {
		t.Errorf("expected positive run up, got %v", *trade.RunUp)
	}
}

func TestSealShortNegatesExcursions(t *testing.T) {
	trade, slice := sealedTrade(t, models.TradeTypeShort, 100, 80)

	Seal(trade, slice)

	if *trade.Profit != 20 {
		t.Errorf("expected short profit 20, got %v", *trade.Profit)
	}

	ref := slice[0].Open
	low := slice[0].Low
	high := slice[0].High
	for _, c := range slice[1:] {
		low = math.Min(low, c.Low)
		high = math.Max(high, c.High)
	}
	wantDrawDown := -(high - ref) * 100 / ref
	wantRunUp := -(low - ref) * 100 / ref

	if math.Abs(*trade.DrawDown-wantDrawDown) > 1e-9 {
		t.Errorf("expected draw down %v, got %v", wantDrawDown, *trade.DrawDown)
	}
	if math.Abs(*trade.RunUp-wantRunUp) > 1e-9 {
		t.Errorf("expected run up %v, got %v", wantRunUp, *trade.RunUp)
	}
}

func TestSealOpenTradeUntouched(t *testing.T) {
	trade := helpers.OpenTrade(baseDate, 100)
	slice := helpers.Candles(baseDate, 100, 110, 120)

	Seal(trade, slice)

	if trade.Profit != nil {
		t.Fatal("expected an open trade to stay unsealed")
	}
}

func TestSealEmptySliceUntouched(t *testing.T) {
	trade, _ := sealedTrade(t, models.TradeTypeLong, 100, 120)

	Seal(trade, nil)

	if trade.Profit != nil {
		t.Fatal("expected a trade with an empty lifetime slice to stay unsealed")
	}
}

// Sealing happens exactly once; a second call must not overwrite the
// stored metrics.
func TestSealWriteOnce(t *testing.T) {
	trade, slice := sealedTrade(t, models.TradeTypeLong, 100, 120)

	Seal(trade, slice)

	mutated := 999.0
	trade.Profit = &mutated
	Seal(trade, slice)

	if *trade.Profit != mutated {
		t.Errorf("expected the second seal to be a no-op, got %v", *trade.Profit)
	}
}
