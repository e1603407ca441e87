package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application settings. A YAML file may override the defaults,
// and a handful of environment variables override the file (API keys are
// env-only so they never end up in config files).
type Config struct {
	CatalogPath string `yaml:"catalog_path"`
	CachePath   string `yaml:"cache_path"`

	// Search parameters.
	FeeRate       float64 `yaml:"fee_rate"`
	MinProfit     float64 `yaml:"min_profit"`
	MaxInputPrice float64 `yaml:"max_input_price"` // 0 = no cap
	MaxResults    int     `yaml:"max_results"`

	// Price validation.
	TolerancePercent  float64       `yaml:"tolerance_percent"`
	FreshnessWindow   time.Duration `yaml:"freshness_window"`
	ValidationWorkers int           `yaml:"validation_workers"`

	// Quote sources.
	OracleBaseURL        string        `yaml:"oracle_base_url"`
	AuthoritativeBaseURL string        `yaml:"authoritative_base_url"`
	RequestTimeout       time.Duration `yaml:"request_timeout"`
	RequestInterval      time.Duration `yaml:"request_interval"` // min spacing between authoritative calls
	MaxRetries           int           `yaml:"max_retries"`
	QuoteCacheTTL        time.Duration `yaml:"quote_cache_ttl"`

	// Env-only secrets.
	OracleAPIKey string `yaml:"-"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		CatalogPath:          "data/catalog.db",
		CachePath:            "data/scout.db",
		FeeRate:              0.15,
		MinProfit:            0.01,
		MaxResults:           50,
		TolerancePercent:     20.0,
		FreshnessWindow:      7 * 24 * time.Hour,
		ValidationWorkers:    4,
		OracleBaseURL:        "https://api.pricempire.com/v4/paid",
		AuthoritativeBaseURL: "https://steamcommunity.com/market",
		RequestTimeout:       30 * time.Second,
		RequestInterval:      1100 * time.Millisecond,
		MaxRetries:           3,
		QuoteCacheTTL:        30 * time.Minute,
	}
}

// Load builds a Config from defaults, an optional YAML file, and environment
// overrides, in that order. An empty path skips the file step.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ORACLE_API_KEY"); v != "" {
		c.OracleAPIKey = v
	}
	if v := os.Getenv("CATALOG_PATH"); v != "" {
		c.CatalogPath = v
	}
	if v := os.Getenv("CACHE_PATH"); v != "" {
		c.CachePath = v
	}
	if v := os.Getenv("FEE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.FeeRate = f
		}
	}
}

func (c *Config) validate() error {
	if c.FeeRate < 0 || c.FeeRate >= 1 {
		return fmt.Errorf("fee_rate must be in [0, 1): got %v", c.FeeRate)
	}
	if c.TolerancePercent <= 0 {
		return fmt.Errorf("tolerance_percent must be positive: got %v", c.TolerancePercent)
	}
	if c.ValidationWorkers <= 0 {
		c.ValidationWorkers = 1
	}
	return nil
}
