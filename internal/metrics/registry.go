// Package metrics provides the centralized Prometheus registry for the
// strategy tester.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	TradesOpenedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "strategy_tester",
		Name:      "trades_opened_total",
		Help:      "Total number of positions opened",
	})
	TradesClosedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "strategy_tester",
		Name:      "trades_closed_total",
		Help:      "Total number of positions closed",
	})
	BacktestRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "strategy_tester",
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest aggregations computed",
	})
	CandlesIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "strategy_tester",
		Name:      "candles_ingested_total",
		Help:      "Total number of closed candles appended to the series",
	})
	StreamReconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "strategy_tester",
		Name:      "stream_reconnects_total",
		Help:      "Total number of websocket stream reconnects",
	})
)

// Gauge metrics
var (
	CurrentCash = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "strategy_tester",
		Name:      "current_cash",
		Help:      "Current ledger cash in quote-currency units",
	})
	OpenPositions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "strategy_tester",
		Name:      "open_positions",
		Help:      "Number of currently open positions",
	})
	CommissionPaidTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "strategy_tester",
		Name:      "commission_paid_total",
		Help:      "Running commission total paid by the ledger",
	})
	NetProfit = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "strategy_tester",
		Name:      "net_profit",
		Help:      "Net profit of the most recent backtest aggregation",
	})
)

// Histogram metrics
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "strategy_tester",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})
	CandleFetchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "strategy_tester",
		Name:      "candle_fetch_latency_seconds",
		Help:      "Latency of REST candle fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(TradesOpenedTotal)
		registry.MustRegister(TradesClosedTotal)
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(CandlesIngestedTotal)
		registry.MustRegister(StreamReconnectsTotal)

		registry.MustRegister(CurrentCash)
		registry.MustRegister(OpenPositions)
		registry.MustRegister(CommissionPaidTotal)
		registry.MustRegister(NetProfit)

		registry.MustRegister(BacktestDuration)
		registry.MustRegister(CandleFetchLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
