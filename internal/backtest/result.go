package backtest

import "encoding/json"

// Result is the flat aggregate statistics mapping produced from a trade
// ledger snapshot. It is derived read-only and recomputed fresh on request;
// nothing mutates a Result after Compute returns it.
type Result struct {
	InitialCapital             float64 `json:"initial_capital"`
	NetProfit                  float64 `json:"net_profit"`
	NetProfitPercent           float64 `json:"net_profit_percent"`
	GrossProfit                float64 `json:"gross_profit"`
	GrossProfitPercent         float64 `json:"gross_profit_percent"`
	GrossLoss                  float64 `json:"gross_loss"`
	GrossLossPercent           float64 `json:"gross_loss_percent"`
	MaxDrawDown                float64 `json:"max_draw_down"`
	BuyAndHoldReturn           float64 `json:"buy_and_hold_return"`
	BuyAndHoldReturnPercent    float64 `json:"buy_and_hold_return_percent"`
	ProfitFactor               float64 `json:"profit_factor"`
	MaxContractHeld            float64 `json:"max_contract_held"`
	TotalClosedTrades          int     `json:"total_closed_trades"`
	TotalOpenTrades            int     `json:"total_open_trades"`
	NumberWinningTrades        int     `json:"number_winning_trades"`
	NumberLosingTrades         int     `json:"number_losing_trades"`
	PercentProfitable          float64 `json:"percent_profitable"`
	AvgTrade                   float64 `json:"avg_trade"`
	AvgTradePercent            float64 `json:"avg_trade_percent"`
	AvgWinningTrade            float64 `json:"avg_winning_trade"`
	AvgWinningTradePercent     float64 `json:"avg_winning_trade_percent"`
	AvgLosingTrade             float64 `json:"avg_losing_trade"`
	AvgLosingTradePercent      float64 `json:"avg_losing_trade_percent"`
	LargestWinningTrade        float64 `json:"largest_winning_trade"`
	LargestWinningTradePercent float64 `json:"largest_winning_trade_percent"`
	LargestLosingTrade         float64 `json:"largest_losing_trade"`
	LargestLosingTradePercent  float64 `json:"largest_losing_trade_percent"`
	RatioAvgWinDivideAvgLose   float64 `json:"ratio_avg_win_divide_avg_lose"`
	AvgBarsInTrade             float64 `json:"avg_bars_in_trade"`
	AvgBarsInWinningTrade      float64 `json:"avg_bars_in_winning_trade"`
	AvgBarsInLosingTrade       float64 `json:"avg_bars_in_losing_trade"`
}

// resultFieldOrder fixes the column order for tabular export.
var resultFieldOrder = []string{
	"initial_capital", "net_profit", "net_profit_percent",
	"gross_profit", "gross_profit_percent", "gross_loss", "gross_loss_percent",
	"max_draw_down", "buy_and_hold_return", "buy_and_hold_return_percent",
	"profit_factor", "max_contract_held", "total_closed_trades",
	"total_open_trades", "number_winning_trades", "number_losing_trades",
	"percent_profitable", "avg_trade", "avg_trade_percent",
	"avg_winning_trade", "avg_winning_trade_percent",
	"avg_losing_trade", "avg_losing_trade_percent",
	"largest_winning_trade", "largest_winning_trade_percent",
	"largest_losing_trade", "largest_losing_trade_percent",
	"ratio_avg_win_divide_avg_lose", "avg_bars_in_trade",
	"avg_bars_in_winning_trade", "avg_bars_in_losing_trade",
}

// FieldNames returns the metric names in export order.
func FieldNames() []string {
	out := make([]string, len(resultFieldOrder))
	copy(out, resultFieldOrder)
	return out
}

// Fields returns the result as a metric-name to value mapping.
func (r Result) Fields() map[string]float64 {
	return map[string]float64{
		"initial_capital":               r.InitialCapital,
		"net_profit":                    r.NetProfit,
		"net_profit_percent":            r.NetProfitPercent,
		"gross_profit":                  r.GrossProfit,
		"gross_profit_percent":          r.GrossProfitPercent,
		"gross_loss":                    r.GrossLoss,
		"gross_loss_percent":            r.GrossLossPercent,
		"max_draw_down":                 r.MaxDrawDown,
		"buy_and_hold_return":           r.BuyAndHoldReturn,
		"buy_and_hold_return_percent":   r.BuyAndHoldReturnPercent,
		"profit_factor":                 r.ProfitFactor,
		"max_contract_held":             r.MaxContractHeld,
		"total_closed_trades":           float64(r.TotalClosedTrades),
		"total_open_trades":             float64(r.TotalOpenTrades),
		"number_winning_trades":         float64(r.NumberWinningTrades),
		"number_losing_trades":          float64(r.NumberLosingTrades),
		"percent_profitable":            r.PercentProfitable,
		"avg_trade":                     r.AvgTrade,
		"avg_trade_percent":             r.AvgTradePercent,
		"avg_winning_trade":             r.AvgWinningTrade,
		"avg_winning_trade_percent":     r.AvgWinningTradePercent,
		"avg_losing_trade":              r.AvgLosingTrade,
		"avg_losing_trade_percent":      r.AvgLosingTradePercent,
		"largest_winning_trade":         r.LargestWinningTrade,
		"largest_winning_trade_percent": r.LargestWinningTradePercent,
		"largest_losing_trade":          r.LargestLosingTrade,
		"largest_losing_trade_percent":  r.LargestLosingTradePercent,
		"ratio_avg_win_divide_avg_lose": r.RatioAvgWinDivideAvgLose,
		"avg_bars_in_trade":             r.AvgBarsInTrade,
		"avg_bars_in_winning_trade":     r.AvgBarsInWinningTrade,
		"avg_bars_in_losing_trade":      r.AvgBarsInLosingTrade,
	}
}

// ToJSON exports the result to JSON.
func (r Result) ToJSON() string {
	data, _ := json.Marshal(r)
	return string(data)
}
