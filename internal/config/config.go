// Package config provides configuration management for the strategy
// tester application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Exchange ExchangeConfig `mapstructure:"exchange" validate:"required"`
	Backtest BacktestConfig `mapstructure:"backtest" validate:"required"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
	Features FeaturesConfig `mapstructure:"features"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// ExchangeConfig represents exchange API configuration
type ExchangeConfig struct {
	RESTTimeoutSeconds int     `mapstructure:"rest_timeout_seconds" validate:"required,gt=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"gte=0"`
	APIKey             string  `mapstructure:"api_key"`
	APISecret          string  `mapstructure:"api_secret"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	Symbol            string  `mapstructure:"symbol" validate:"required"`
	Interval          string  `mapstructure:"interval" validate:"required,interval"`
	StartDate         string  `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate           string  `mapstructure:"end_date" validate:"required,datetime=2006-01-02"`
	InitialCapital    float64 `mapstructure:"initial_capital" validate:"required,gt=0"`
	CommissionPercent float64 `mapstructure:"commission_percent" validate:"gte=0,lte=10"`
	MinCash           float64 `mapstructure:"min_cash" validate:"gte=0"`
	QtyMode           string  `mapstructure:"qty_mode" validate:"required,oneof=fraction absolute"`
	OutputPath        string  `mapstructure:"output_path"`
}

// SyncConfig represents candle sync scheduling configuration
type SyncConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	CronSchedule string `mapstructure:"cron_schedule"`
	LookbackDays int    `mapstructure:"lookback_days" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	LiveTradingEnabled     bool `mapstructure:"live_trading_enabled"`
	PersistenceEnabled     bool `mapstructure:"persistence_enabled"`
	PeriodicReportsEnabled bool `mapstructure:"periodic_reports_enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// BacktestWindow parses the configured date bounds into epoch
// milliseconds. Dates are interpreted as UTC midnights; the end bound
// covers the whole end day.
func (c *Config) BacktestWindow() (int64, int64, error) {
	start, err := time.Parse("2006-01-02", c.Backtest.StartDate)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := time.Parse("2006-01-02", c.Backtest.EndDate)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end_date: %w", err)
	}
	return start.UnixMilli(), end.Add(24*time.Hour).UnixMilli() - 1, nil
}
