// Package backtest derives aggregate performance statistics from a trade
// ledger snapshot and the candle series it traded over.
package backtest

import (
	"github.com/yourusername/strategy-tester/internal/metrics"
	"github.com/yourusername/strategy-tester/internal/models"
)

// Compute aggregates the full metric set from a ledger snapshot. The trade
// slice may contain open trades; their unsealed metric fields are skipped by
// every reduction the way a column aggregate skips missing cells. Candles
// delimit the evaluation window for the buy-and-hold baseline.
//
// All divide-by-zero cases resolve to a defined numeric fallback instead of
// an error: profit_factor falls back to gross_profit when there are no
// losses, ratios and percentages fall back to 0 when their denominator is
// empty.
func Compute(trades []*models.Trade, candles []models.Candle, initialCapital float64) (Result, error) {
	if len(trades) == 0 {
		return Result{}, models.ErrEmptyTrades
	}
	if len(candles) == 0 {
		return Result{}, models.ErrEmptyCandles
	}

	first := candles[0]
	last := candles[len(candles)-1]

	r := Result{InitialCapital: initialCapital}

	r.NetProfit = weightedProfitSum(trades, anyProfit)
	r.GrossProfit = weightedProfitSum(trades, winning)
	r.GrossLoss = weightedProfitSum(trades, losing)
	r.NetProfitPercent = percentOfCapital(r.NetProfit, initialCapital)
	r.GrossProfitPercent = percentOfCapital(r.GrossProfit, initialCapital)
	r.GrossLossPercent = percentOfCapital(r.GrossLoss, initialCapital)

	r.MaxDrawDown = minDrawDown(trades)
	r.BuyAndHoldReturn = last.Close - first.Open
	r.BuyAndHoldReturnPercent = r.BuyAndHoldReturn * 100 / first.Open
	r.ProfitFactor = profitFactor(r.GrossProfit, r.GrossLoss)
	r.MaxContractHeld = maxContract(trades)

	r.TotalClosedTrades = countTrades(trades, closed)
	r.TotalOpenTrades = len(trades) - r.TotalClosedTrades
	r.NumberWinningTrades = countTrades(trades, winning)
	r.NumberLosingTrades = countTrades(trades, losing)
	r.PercentProfitable = percentProfitable(r.NumberWinningTrades, r.TotalClosedTrades)

	r.AvgTrade = meanWeightedProfit(trades, anyProfit)
	r.AvgTradePercent = meanProfitPercent(trades, anyProfitPercent)
	r.AvgWinningTrade = meanWeightedProfit(trades, winning)
	r.AvgWinningTradePercent = meanProfitPercent(trades, winningPercent)
	r.AvgLosingTrade = meanWeightedProfit(trades, losing)
	r.AvgLosingTradePercent = meanProfitPercent(trades, losingPercent)
	r.RatioAvgWinDivideAvgLose = winLoseRatio(r.AvgWinningTrade, r.AvgLosingTrade)

	if best := extremeByProfitPercent(trades, true); best != nil {
		r.LargestWinningTrade = best.WeightedProfit()
		r.LargestWinningTradePercent = *best.ProfitPercent
	}
	if worst := extremeByProfitPercent(trades, false); worst != nil {
		r.LargestLosingTrade = worst.WeightedProfit()
		r.LargestLosingTradePercent = *worst.ProfitPercent
	}

	r.AvgBarsInTrade = meanBars(trades, anyProfit)
	r.AvgBarsInWinningTrade = meanBars(trades, winning)
	r.AvgBarsInLosingTrade = meanBars(trades, losing)

	metrics.BacktestRunsTotal.Inc()
	metrics.NetProfit.Set(r.NetProfit)

	return r, nil
}

// Trade selectors. Winning and losing partition the sealed trades: zero
// profit counts as a loss, never as a win.
func anyProfit(t *models.Trade) bool        { return t.Profit != nil }
func winning(t *models.Trade) bool          { return t.Profit != nil && *t.Profit > 0 }
func losing(t *models.Trade) bool           { return t.Profit != nil && *t.Profit <= 0 }
func closed(t *models.Trade) bool           { return t.IsClosed() }
func anyProfitPercent(t *models.Trade) bool { return t.ProfitPercent != nil }
func winningPercent(t *models.Trade) bool   { return t.ProfitPercent != nil && *t.ProfitPercent > 0 }
func losingPercent(t *models.Trade) bool    { return t.ProfitPercent != nil && *t.ProfitPercent <= 0 }

func weightedProfitSum(trades []*models.Trade, match func(*models.Trade) bool) float64 {
	sum := 0.0
	for _, t := range trades {
		if match(t) {
			sum += *t.Profit * t.Contract
		}
	}
	return sum
}

func meanWeightedProfit(trades []*models.Trade, match func(*models.Trade) bool) float64 {
	sum := 0.0
	count := 0
	for _, t := range trades {
		if match(t) {
			sum += *t.Profit * t.Contract
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func meanProfitPercent(trades []*models.Trade, match func(*models.Trade) bool) float64 {
	sum := 0.0
	count := 0
	for _, t := range trades {
		if match(t) {
			sum += *t.ProfitPercent
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func meanBars(trades []*models.Trade, match func(*models.Trade) bool) float64 {
	sum := 0
	count := 0
	for _, t := range trades {
		if match(t) && t.BarsTraded != nil {
			sum += *t.BarsTraded
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

func countTrades(trades []*models.Trade, match func(*models.Trade) bool) int {
	count := 0
	for _, t := range trades {
		if match(t) {
			count++
		}
	}
	return count
}

func minDrawDown(trades []*models.Trade) float64 {
	min := 0.0
	found := false
	for _, t := range trades {
		if t.DrawDown == nil {
			continue
		}
		if !found || *t.DrawDown < min {
			min = *t.DrawDown
			found = true
		}
	}
	return min
}

func maxContract(trades []*models.Trade) float64 {
	max := 0.0
	for i, t := range trades {
		if i == 0 || t.Contract > max {
			max = t.Contract
		}
	}
	return max
}

func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		return grossProfit
	}
	return grossProfit / abs(grossLoss)
}

func percentProfitable(wins, totalClosed int) float64 {
	if totalClosed == 0 {
		return 0
	}
	return float64(wins) * 100 / float64(totalClosed)
}

func winLoseRatio(avgWin, avgLose float64) float64 {
	if avgLose == 0 {
		return 0
	}
	return avgWin / abs(avgLose)
}

func percentOfCapital(src, initialCapital float64) float64 {
	return src / initialCapital * 100
}

// extremeByProfitPercent is a stable argmax/argmin over profit_percent:
// ties keep the first occurrence.
func extremeByProfitPercent(trades []*models.Trade, max bool) *models.Trade {
	var pick *models.Trade
	for _, t := range trades {
		if t.ProfitPercent == nil {
			continue
		}
		if pick == nil {
			pick = t
			continue
		}
		if max && *t.ProfitPercent > *pick.ProfitPercent {
			pick = t
		}
		if !max && *t.ProfitPercent < *pick.ProfitPercent {
			pick = t
		}
	}
	return pick
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
