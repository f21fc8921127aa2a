// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/strategy-tester/internal/backtest"
	"github.com/yourusername/strategy-tester/internal/datasource"
	"github.com/yourusername/strategy-tester/internal/export"
	"github.com/yourusername/strategy-tester/internal/ledger"
	"github.com/yourusername/strategy-tester/internal/metrics"
	"github.com/yourusername/strategy-tester/internal/series"
	"github.com/yourusername/strategy-tester/internal/strategy"
)

func main() {
	var (
		dataPath     = flag.String("data", "", "Path to OHLCV candle CSV file")
		strategyName = flag.String("strategy", "sma_cross", "Strategy name to test")
		capital      = flag.Float64("capital", 10000, "Initial capital")
		commission   = flag.Float64("commission", 0, "Commission percent per order")
		minCash      = flag.Float64("min-cash", 0, "Minimum cash floor for entries")
		qtyMode      = flag.String("qty-mode", "fraction", "Quantity mode: fraction or absolute")
		frequency    = flag.String("frequency", "", "Periodic report frequency: D, W, M or a number of days")
		output       = flag.String("output", "", "Output path for the result CSV")
		tradesOutput = flag.String("trades-output", "", "Output path for the trade list CSV")
		equityOutput = flag.String("equity-output", "", "Output path for the equity curve CSV")
	)
	flag.Parse()

	logger := newLogger()
	ctx := context.Background()
	metrics.InitRegistry()

	if *dataPath == "" {
		logger.Fatal("A candle CSV is required; pass -data")
	}

	data := loadData(*dataPath, logger)
	strat := resolveStrategy(*strategyName)
	cfg := ledger.Config{
		InitialCapital:    *capital,
		CommissionPercent: *commission,
		MinCash:           *minCash,
		Mode:              ledger.QtyMode(*qtyMode),
	}

	engine, err := backtest.NewEngine(data, strat, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create engine: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"strategy": strat.Name(),
		"candles":  data.Len(),
	}).Info("Starting backtest")

	result, err := engine.Run(ctx)
	if err != nil {
		logger.Fatalf("Backtest failed: %v", err)
	}
	fmt.Println(backtest.GenerateConsoleReport(result))

	if *frequency != "" {
		runPeriodic(ctx, engine, *frequency, logger)
	}
	writeOutputs(engine, result, *output, *tradesOutput, *equityOutput, logger)
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}

func loadData(path string, logger *logrus.Logger) *series.Series {
	data, err := datasource.LoadCSV(path)
	if err != nil {
		logger.Fatalf("Failed to load candles from %s: %v", path, err)
	}
	return data
}

func resolveStrategy(name string) strategy.Strategy {
	constructors := map[string]func() strategy.Strategy{
		"sma_cross": func() strategy.Strategy { return strategy.NewSMACrossStrategy() },
	}
	if build, ok := constructors[name]; ok {
		return build()
	}
	return strategy.NewSMACrossStrategy()
}

func runPeriodic(ctx context.Context, engine *backtest.Engine, spec string, logger *logrus.Logger) {
	freq, err := backtest.ParseFrequency(spec)
	if err != nil {
		logger.Fatalf("Invalid frequency: %v", err)
	}
	periods, err := engine.RunPeriodic(ctx, freq, backtest.SegmentOptions{})
	if err != nil {
		logger.Fatalf("Periodic segmentation failed: %v", err)
	}
	fmt.Println(backtest.GeneratePeriodicReport(periods))
}

func writeOutputs(engine *backtest.Engine, result backtest.Result, output, tradesOutput, equityOutput string, logger *logrus.Logger) {
	if output != "" {
		if err := export.WriteResultCSV(result, output); err != nil {
			logger.Fatalf("Failed to write result CSV: %v", err)
		}
		logger.WithField("path", output).Info("Result CSV written")
	}
	if tradesOutput != "" {
		if err := export.WriteTradesCSV(engine.Book().Trades(), tradesOutput); err != nil {
			logger.Fatalf("Failed to write trades CSV: %v", err)
		}
		logger.WithField("path", tradesOutput).Info("Trades CSV written")
	}
	if equityOutput != "" {
		if err := os.WriteFile(equityOutput, []byte(engine.EquityCurve().ToCSV()), 0o644); err != nil {
			logger.Fatalf("Failed to write equity curve CSV: %v", err)
		}
		logger.WithField("path", equityOutput).Info("Equity curve CSV written")
	}
}
