package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the market fetcher application.
type Config struct {
	// Output directory root; per-run files are written beneath it.
	OutDir string `mapstructure:"out_dir"`

	// Holdings list file (one 'symbol' column, Yahoo-format tickers).
	HoldingsCSV string `mapstructure:"holdings_csv"`

	// Lookback windows, converted to a start date at run time.
	IndexLookbackYears    int `mapstructure:"index_lookback_years"`
	HoldingsLookbackYears int `mapstructure:"holdings_lookback_years"`

	// Base URLs for vendor endpoints (configurable for testing)
	YahooBaseURL     string `mapstructure:"yahoo_base_url"`
	EastmoneyBaseURL string `mapstructure:"eastmoney_base_url"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from environment variables and optional config file.
// Environment variables take precedence over config file values. Every key
// has a default, so Load only fails on a malformed config file.
//
// Expected environment variables (all optional):
//   - OUT_DIR
//   - HOLDINGS_CSV
//   - INDEX_LOOKBACK_YEARS
//   - HOLDINGS_LOOKBACK_YEARS
//   - YAHOO_BASE_URL
//   - EASTMONEY_BASE_URL
//   - LOG_LEVEL
func Load() (*Config, error) {
	v := viper.New()

	// Set up environment variable support
	v.SetEnvPrefix("") // No prefix, use full names
	v.AutomaticEnv()

	// Defaults match the original job definitions
	v.SetDefault("out_dir", "docs")
	v.SetDefault("holdings_csv", "data/holdings.csv")
	v.SetDefault("index_lookback_years", 15)
	v.SetDefault("holdings_lookback_years", 10)
	v.SetDefault("yahoo_base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("eastmoney_base_url", "https://push2his.eastmoney.com")
	v.SetDefault("log_level", "info")

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.marketfetcher")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	// Bind environment variables
	v.BindEnv("out_dir", "OUT_DIR")
	v.BindEnv("holdings_csv", "HOLDINGS_CSV")
	v.BindEnv("index_lookback_years", "INDEX_LOOKBACK_YEARS")
	v.BindEnv("holdings_lookback_years", "HOLDINGS_LOOKBACK_YEARS")
	v.BindEnv("yahoo_base_url", "YAHOO_BASE_URL")
	v.BindEnv("eastmoney_base_url", "EASTMONEY_BASE_URL")
	v.BindEnv("log_level", "LOG_LEVEL")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// IndexStart returns the start date for the index pipeline.
func (c *Config) IndexStart(now time.Time) time.Time {
	return lookback(now, c.IndexLookbackYears)
}

// HoldingsStart returns the start date for the holdings pipeline.
func (c *Config) HoldingsStart(now time.Time) time.Time {
	return lookback(now, c.HoldingsLookbackYears)
}

// lookback converts a window in years to a start date, using 365-day years
// like the original jobs did.
func lookback(now time.Time, years int) time.Time {
	return now.UTC().AddDate(0, 0, -365*years).Truncate(24 * time.Hour)
}
