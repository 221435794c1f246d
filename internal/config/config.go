// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for the databases, always absolute
	LogLevel         string
	Port             int
	DevMode          bool
	TargetCurrency   domain.Currency
	FairValueYears   int
	PortfoliosFile   string
	SnapshotSchedule string // cron expression with seconds field
}

// HistoryDBPath returns the path of the market data database
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// SnapshotsDBPath returns the path of the KPI snapshot database
func (c *Config) SnapshotsDBPath() string {
	return filepath.Join(c.DataDir, "snapshots.db")
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("QC_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnvAsInt("GO_PORT", 8001),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		TargetCurrency:   domain.Currency(getEnv("QC_TARGET_CURRENCY", string(domain.CurrencyEUR))),
		FairValueYears:   getEnvAsInt("QC_FAIR_VALUE_YEARS", 5),
		PortfoliosFile:   getEnv("QC_PORTFOLIOS_FILE", filepath.Join(absDataDir, "portfolios.yaml")),
		SnapshotSchedule: getEnv("QC_SNAPSHOT_SCHEDULE", "0 0 22 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.Port <= 0 {
		return fmt.Errorf("port must be positive, got %d", c.Port)
	}
	if c.FairValueYears <= 0 {
		return fmt.Errorf("fair value years must be positive, got %d", c.FairValueYears)
	}
	if c.TargetCurrency != domain.CurrencyEUR {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedTargetCurrency, c.TargetCurrency)
	}
	if c.SnapshotSchedule != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.SnapshotSchedule); err != nil {
			return fmt.Errorf("invalid snapshot schedule %q: %w", c.SnapshotSchedule, err)
		}
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
