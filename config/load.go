// Package config loads and validates the optimizer's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"lp-optimizer-go/logger"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env       string          `yaml:"env"`
	Log       logger.Config   `yaml:"log"`
	API       APIConfig       `yaml:"api"`
	Scanner   ScannerConfig   `yaml:"scanner"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Storage   StorageConfig   `yaml:"storage"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// APIConfig points at the venue's market-data endpoints.
type APIConfig struct {
	CLOBBase       string  `yaml:"clobBase"`
	GammaBase      string  `yaml:"gammaBase"`
	WSBase         string  `yaml:"wsBase"`
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
	RatePerSec     float64 `yaml:"ratePerSec"` // request budget per endpoint family
	Burst          int     `yaml:"burst"`
}

// ScannerConfig controls the multi-market scan loop.
type ScannerConfig struct {
	CapitalUSDC     float64 `yaml:"capitalUSDC"` // capital assumed per market
	MaxMarkets      int     `yaml:"maxMarkets"`
	Concurrency     int     `yaml:"concurrency"`
	IntervalSeconds int     `yaml:"intervalSeconds"` // daemon scan period
	LookbackHours   int     `yaml:"lookbackHours"`   // price history window
}

// OptimizerConfig mirrors strategy.Options; zero fields fall back to the
// strategy defaults.
type OptimizerConfig struct {
	TimeHorizonDays     float64 `yaml:"timeHorizonDays"`
	MinSpreadRatio      float64 `yaml:"minSpreadRatio"`
	MaxSpreadRatio      float64 `yaml:"maxSpreadRatio"`
	SpreadStep          float64 `yaml:"spreadStep"`
	TransactionCostRate float64 `yaml:"transactionCostRate"`
	OrderBookDepth      float64 `yaml:"orderBookDepth"`
	SingleSidedPenalty  float64 `yaml:"singleSidedPenalty"`
}

type StorageConfig struct {
	DSN string `yaml:"dsn"` // sqlite path; empty disables persistence
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // prometheus listen address; empty disables
}

// ScanInterval returns the daemon scan period as a duration.
func (c AppConfig) ScanInterval() time.Duration {
	if c.Scanner.IntervalSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Scanner.IntervalSeconds) * time.Second
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides selected fields from env
// vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("LP_CLOB_BASE"); v != "" {
		cfg.API.CLOBBase = v
	}
	if v := os.Getenv("LP_GAMMA_BASE"); v != "" {
		cfg.API.GammaBase = v
	}
	if v := os.Getenv("LP_CAPITAL_USDC"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("parse LP_CAPITAL_USDC: %w", err)
		}
		cfg.Scanner.CapitalUSDC = f
	}
	if v := os.Getenv("LP_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	return cfg, Validate(cfg)
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Log.Level == "" {
		cfg.Log = logger.DefaultConfig()
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 10
	}
	if cfg.API.RatePerSec <= 0 {
		cfg.API.RatePerSec = 10
	}
	if cfg.API.Burst <= 0 {
		cfg.API.Burst = 5
	}
	if cfg.Scanner.MaxMarkets <= 0 {
		cfg.Scanner.MaxMarkets = 50
	}
	if cfg.Scanner.Concurrency <= 0 {
		cfg.Scanner.Concurrency = 8
	}
	if cfg.Scanner.LookbackHours <= 0 {
		cfg.Scanner.LookbackHours = 7 * 24
	}
}

// Validate ensures required fields are present and numeric bounds hold.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Scanner.CapitalUSDC <= 0 {
		return errors.New("scanner.capitalUSDC must be > 0")
	}
	if cfg.Scanner.MaxMarkets <= 0 {
		return errors.New("scanner.maxMarkets must be > 0")
	}
	if cfg.Scanner.Concurrency <= 0 {
		return errors.New("scanner.concurrency must be > 0")
	}
	o := cfg.Optimizer
	if o.MinSpreadRatio < 0 || o.MaxSpreadRatio < 0 {
		return errors.New("optimizer spread ratios must be >= 0")
	}
	if o.MaxSpreadRatio > 0 && o.MinSpreadRatio > o.MaxSpreadRatio {
		return fmt.Errorf("optimizer.minSpreadRatio %v exceeds maxSpreadRatio %v", o.MinSpreadRatio, o.MaxSpreadRatio)
	}
	if o.SpreadStep < 0 {
		return errors.New("optimizer.spreadStep must be >= 0")
	}
	if o.TransactionCostRate < 0 {
		return errors.New("optimizer.transactionCostRate must be >= 0")
	}
	if o.SingleSidedPenalty < 0 {
		return errors.New("optimizer.singleSidedPenalty must be >= 0")
	}
	if o.TimeHorizonDays < 0 {
		return errors.New("optimizer.timeHorizonDays must be >= 0")
	}
	return nil
}
