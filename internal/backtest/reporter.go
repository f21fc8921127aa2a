package backtest

import (
	"fmt"
	"strings"
	"time"
)

// GenerateConsoleReport formats an aggregate result for terminal output
func GenerateConsoleReport(result Result) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Initial Capital: %.2f\n", result.InitialCapital))
	builder.WriteString(fmt.Sprintf("Net Profit: %.2f (%.2f%%)\n", result.NetProfit, result.NetProfitPercent))
	builder.WriteString(fmt.Sprintf("Gross Profit: %.2f (%.2f%%)\n", result.GrossProfit, result.GrossProfitPercent))
	builder.WriteString(fmt.Sprintf("Gross Loss: %.2f (%.2f%%)\n", result.GrossLoss, result.GrossLossPercent))
	builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", result.ProfitFactor))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", result.MaxDrawDown))
	builder.WriteString(fmt.Sprintf("Buy & Hold Return: %.2f (%.2f%%)\n", result.BuyAndHoldReturn, result.BuyAndHoldReturnPercent))
	builder.WriteString(fmt.Sprintf("Closed Trades: %d (open: %d)\n", result.TotalClosedTrades, result.TotalOpenTrades))
	builder.WriteString(fmt.Sprintf("Percent Profitable: %.2f%%\n", result.PercentProfitable))
	builder.WriteString(fmt.Sprintf("Avg Trade: %.2f (%.2f%%)\n", result.AvgTrade, result.AvgTradePercent))
	builder.WriteString(fmt.Sprintf("Avg Win / Avg Loss: %.2f\n", result.RatioAvgWinDivideAvgLose))
	builder.WriteString(fmt.Sprintf("Avg Bars In Trade: %.1f\n", result.AvgBarsInTrade))
	return builder.String()
}

// GeneratePeriodicReport formats periodic bucket results, one row per
// period labelled by its end date.
func GeneratePeriodicReport(periods PeriodicResult) string {
	var builder strings.Builder
	builder.WriteString("Periodic Report\n")
	builder.WriteString("================\n")
	if len(periods) == 0 {
		builder.WriteString("No periods with trades\n")
		return builder.String()
	}
	for _, bucket := range periods {
		label := time.UnixMilli(bucket.End).UTC().Format("2006-01-02")
		builder.WriteString(fmt.Sprintf(
			"%s  capital=%.2f  trades=%d  net_profit=%.2f (%.2f%%)  profit_factor=%.2f\n",
			label,
			bucket.OpeningCapital,
			bucket.TradeCount,
			bucket.Result.NetProfit,
			bucket.Result.NetProfitPercent,
			bucket.Result.ProfitFactor,
		))
	}
	return builder.String()
}
