// Package logger provides strategy-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// StrategyLogger provides dedicated logging for strategy operations.
type StrategyLogger struct {
	*logrus.Entry
}

// NewStrategyLogger creates a new strategy logger.
func NewStrategyLogger(baseLogger *logrus.Logger) *StrategyLogger {
	return &StrategyLogger{
		Entry: baseLogger.WithField("component", "strategy"),
	}
}

// LogEvaluation logs one strategy pass over a closed candle.
func (sl *StrategyLogger) LogEvaluation(strategyName string, candleDate int64, seriesLen int, durationMs float64) {
	sl.WithFields(logrus.Fields{
		"event_type":  "strategy_evaluation",
		"strategy":    strategyName,
		"candle_date": candleDate,
		"series_len":  seriesLen,
		"duration_ms": durationMs,
	}).Debug("Strategy evaluated")
}

// LogTradeOpened logs a new position.
func (sl *StrategyLogger) LogTradeOpened(strategyName, tradeID, direction, signal string, entryPrice, contract float64) {
	sl.WithFields(logrus.Fields{
		"event_type":  "trade_opened",
		"strategy":    strategyName,
		"trade_id":    tradeID,
		"direction":   direction,
		"signal":      signal,
		"entry_price": entryPrice,
		"contract":    contract,
	}).Info("Trade opened")
}

// LogTradeClosed logs a settled position.
func (sl *StrategyLogger) LogTradeClosed(strategyName, tradeID, signal string, exitPrice, profit, profitPercent float64, barsTraded int) {
	sl.WithFields(logrus.Fields{
		"event_type":     "trade_closed",
		"strategy":       strategyName,
		"trade_id":       tradeID,
		"signal":         signal,
		"exit_price":     exitPrice,
		"profit":         profit,
		"profit_percent": profitPercent,
		"bars_traded":    barsTraded,
	}).Info("Trade closed")
}

// LogCashUpdate logs the ledger's cash position after a fill.
func (sl *StrategyLogger) LogCashUpdate(strategyName string, cash, commissionPaid float64, openPositions int) {
	sl.WithFields(logrus.Fields{
		"event_type":      "cash_update",
		"strategy":        strategyName,
		"cash":            cash,
		"commission_paid": commissionPaid,
		"open_positions":  openPositions,
	}).Debug("Cash updated")
}
