package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/strategy-tester/internal/backtest"
	"github.com/yourusername/strategy-tester/internal/config"
	"github.com/yourusername/strategy-tester/internal/database"
	"github.com/yourusername/strategy-tester/internal/datasource"
	"github.com/yourusername/strategy-tester/internal/export"
	"github.com/yourusername/strategy-tester/internal/health"
	"github.com/yourusername/strategy-tester/internal/ledger"
	"github.com/yourusername/strategy-tester/internal/live"
	applogger "github.com/yourusername/strategy-tester/internal/logger"
	"github.com/yourusername/strategy-tester/internal/metrics"
	"github.com/yourusername/strategy-tester/internal/repository"
	"github.com/yourusername/strategy-tester/internal/scheduler"
	"github.com/yourusername/strategy-tester/internal/series"
	"github.com/yourusername/strategy-tester/internal/service"
	"github.com/yourusername/strategy-tester/internal/strategy"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile   string
	strategyName string
	frequency    string
	outputPath   string
	logger       *logrus.Logger
	cfg          *config.Config
	db           *database.DB
	repos        *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	backtestCmd.Flags().StringVarP(&strategyName, "strategy", "s", "sma_cross", "Strategy name to test")
	backtestCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path for the result CSV")
	periodicCmd.Flags().StringVarP(&strategyName, "strategy", "s", "sma_cross", "Strategy name to test")
	periodicCmd.Flags().StringVarP(&frequency, "frequency", "f", "M", "Report frequency: D, W, M or a number of days")
	periodicCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path for the periodic CSV")
	liveCmd.Flags().StringVarP(&strategyName, "strategy", "s", "sma_cross", "Strategy name to run")
}

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "Candle-series strategy tester",
	Long:  `Backtest trading strategies over stored candle data, segment results by period, and paper-trade them against a live kline stream.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return setupDependencies(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a historical backtest over stored candles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBacktest(cmd.Context())
	},
}

var periodicCmd = &cobra.Command{
	Use:   "periodic",
	Short: "Run a backtest segmented into periodic buckets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPeriodic(cmd.Context())
	},
}

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Paper-trade a strategy against the live kline stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLive(cmd.Context())
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync stored candles from the exchange",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context())
	},
}

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return database.EnsureSchema(cmd.Context(), db)
	},
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd.AddCommand(backtestCmd, periodicCmd, liveCmd, syncCmd, initDBCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	logger = applogger.NewLogger(cfg.App.LogLevel)
	logger.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Info("Strategy tester starting")

	metrics.InitRegistry()

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	return nil
}

func resolveStrategy(name string) (strategy.Strategy, error) {
	constructors := map[string]func() strategy.Strategy{
		"sma_cross": func() strategy.Strategy { return strategy.NewSMACrossStrategy() },
	}
	build, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return build(), nil
}

func ledgerConfig() ledger.Config {
	return ledger.Config{
		InitialCapital:    cfg.Backtest.InitialCapital,
		CommissionPercent: cfg.Backtest.CommissionPercent,
		MinCash:           cfg.Backtest.MinCash,
		Mode:              ledger.QtyMode(cfg.Backtest.QtyMode),
	}
}

func loadStoredSeries(ctx context.Context) (*series.Series, error) {
	start, end, err := cfg.BacktestWindow()
	if err != nil {
		return nil, err
	}
	candles, err := repos.Candle.GetRange(ctx, cfg.Backtest.Symbol, cfg.Backtest.Interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("load candles: %w", err)
	}
	return series.New(candles)
}

func buildEngine(ctx context.Context) (*backtest.Engine, strategy.Strategy, error) {
	strat, err := resolveStrategy(strategyName)
	if err != nil {
		return nil, nil, err
	}
	data, err := loadStoredSeries(ctx)
	if err != nil {
		return nil, nil, err
	}
	engine, err := backtest.NewEngine(data, strat, ledgerConfig(), logger)
	if err != nil {
		return nil, nil, err
	}
	return engine, strat, nil
}

func runBacktest(ctx context.Context) error {
	engine, strat, err := buildEngine(ctx)
	if err != nil {
		return err
	}

	result, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}
	fmt.Println(backtest.GenerateConsoleReport(result))

	if outputPath != "" {
		if err := export.WriteResultCSV(result, outputPath); err != nil {
			return fmt.Errorf("write result CSV: %w", err)
		}
	}
	if cfg.Features.PersistenceEnabled {
		return persistRun(ctx, strat.Name(), result, engine)
	}
	return nil
}

func runPeriodic(ctx context.Context) error {
	engine, _, err := buildEngine(ctx)
	if err != nil {
		return err
	}

	freq, err := backtest.ParseFrequency(frequency)
	if err != nil {
		return err
	}
	periods, err := engine.RunPeriodic(ctx, freq, backtest.SegmentOptions{})
	if err != nil {
		return fmt.Errorf("periodic backtest failed: %w", err)
	}
	fmt.Println(backtest.GeneratePeriodicReport(periods))

	if outputPath != "" {
		if err := export.WritePeriodicCSV(periods, outputPath); err != nil {
			return fmt.Errorf("write periodic CSV: %w", err)
		}
	}
	return nil
}

func runLive(ctx context.Context) error {
	if !cfg.Features.LiveTradingEnabled {
		return fmt.Errorf("live trading is disabled; enable features.live_trading_enabled")
	}

	strat, err := resolveStrategy(strategyName)
	if err != nil {
		return err
	}
	data, err := loadStoredSeries(ctx)
	if err != nil {
		return err
	}

	stream := live.NewKlineStream(cfg.Backtest.Symbol, cfg.Backtest.Interval, logger)
	session, err := live.NewSession(data, strat, ledgerConfig(), stream, logger)
	if err != nil {
		return err
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        fmt.Sprintf("%d", cfg.Metrics.Port),
		Logger:      logger,
		DB:          db,
		Stream:      stream,
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("start health server: %w", err)
	}
	healthServer.SetReady(true)

	logger.WithFields(logrus.Fields{
		"symbol":   cfg.Backtest.Symbol,
		"interval": cfg.Backtest.Interval,
		"strategy": strat.Name(),
	}).Info("Live session starting")

	if err := session.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("live session failed: %w", err)
	}
	return nil
}

func runSync(ctx context.Context) error {
	syncSvc, err := buildSyncService()
	if err != nil {
		return err
	}
	lookback := time.Duration(cfg.Sync.LookbackDays) * 24 * time.Hour

	if !cfg.Sync.Enabled || cfg.Sync.CronSchedule == "" {
		count, err := syncSvc.Sync(ctx, cfg.Backtest.Symbol, cfg.Backtest.Interval, lookback)
		if err != nil {
			return fmt.Errorf("candle sync failed: %w", err)
		}
		fmt.Printf("Synced %d candles for %s %s\n", count, cfg.Backtest.Symbol, cfg.Backtest.Interval)
		return nil
	}

	sched := scheduler.NewScheduler(syncSvc, logger)
	if err := sched.ScheduleCandleSync(cfg.Sync.CronSchedule, cfg.Backtest.Symbol, cfg.Backtest.Interval, lookback); err != nil {
		return fmt.Errorf("schedule candle sync: %w", err)
	}
	if err := sched.Start(); err != nil {
		return err
	}
	logger.WithField("next_run", sched.GetNextRun()).Info("Candle sync scheduler running")

	<-ctx.Done()
	return sched.Stop()
}

func buildSyncService() (*service.CandleSyncService, error) {
	httpCfg := datasource.DefaultHTTPClientConfig()
	if cfg.Exchange.RESTTimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.Exchange.RESTTimeoutSeconds) * time.Second
	}
	if cfg.Exchange.RateLimitPerSecond > 0 {
		httpCfg.RateLimit = cfg.Exchange.RateLimitPerSecond
	}
	if cfg.Exchange.MaxRetries > 0 {
		httpCfg.MaxRetries = cfg.Exchange.MaxRetries
	}

	stdLog := log.New(os.Stderr, "datasource ", log.LstdFlags)
	httpClient := datasource.NewRateLimitedHTTPClient(httpCfg, stdLog)
	source, err := datasource.NewFactory(stdLog).Create(datasource.BinanceSourceType, httpClient)
	if err != nil {
		return nil, err
	}
	return service.NewCandleSyncService(source, repos.Candle, logger)
}

func persistRun(ctx context.Context, stratName string, result backtest.Result, engine *backtest.Engine) error {
	runID := uuid.New()
	run := &repository.BacktestRun{
		RunID:     runID,
		Strategy:  stratName,
		Symbol:    cfg.Backtest.Symbol,
		Interval:  cfg.Backtest.Interval,
		CreatedAt: time.Now().UTC(),
		Result:    result,
	}
	if err := repos.BacktestResult.Save(ctx, run); err != nil {
		return fmt.Errorf("persist backtest result: %w", err)
	}
	if err := repos.Trade.SaveAll(ctx, runID, engine.Book().Trades()); err != nil {
		return fmt.Errorf("persist trades: %w", err)
	}
	logger.WithField("run_id", runID).Info("Backtest run persisted")
	return nil
}
