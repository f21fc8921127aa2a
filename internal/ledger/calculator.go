package ledger

import (
	"github.com/yourusername/strategy-tester/internal/models"
)

// Seal computes the derived metrics of a closed trade from the candle slice
// covering its lifetime and writes them exactly once. A trade that is still
// open, already sealed, or has an empty lifetime slice is left untouched.
// Recomputing on the same inputs yields identical values, so the write-once
// guard exists to enforce the sealing contract, not to hide drift.
func Seal(trade *models.Trade, slice []models.Candle) {
	if trade.ExitPrice == nil || trade.Profit != nil || len(slice) == 0 {
		return
	}

	profit := tradeProfit(trade)
	profitPercent := profit * 100 / trade.EntryPrice
	drawDown, runUp := excursions(trade, slice)
	bars := len(slice)

	trade.Profit = &profit
	trade.ProfitPercent = &profitPercent
	trade.DrawDown = &drawDown
	trade.RunUp = &runUp
	trade.BarsTraded = &bars
}

func tradeProfit(trade *models.Trade) float64 {
	if trade.Type == models.TradeTypeLong {
		return *trade.ExitPrice - trade.EntryPrice
	}
	return trade.EntryPrice - *trade.ExitPrice
}

// excursions measures the maximum adverse and favorable price moves over the
// trade's lifetime, as percentages of the first bar's open.
func excursions(trade *models.Trade, slice []models.Candle) (drawDown, runUp float64) {
	ref := slice[0].Open
	low := slice[0].Low
	high := slice[0].High
	for _, c := range slice[1:] {
		if c.Low < low {
			low = c.Low
		}
		if c.High > high {
			high = c.High
		}
	}

	if trade.Type == models.TradeTypeLong {
		drawDown = (low - ref) * 100 / ref
		runUp = (high - ref) * 100 / ref
		return drawDown, runUp
	}
	drawDown = -(high - ref) * 100 / ref
	runUp = -(low - ref) * 100 / ref
	return drawDown, runUp
}
