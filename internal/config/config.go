package config

// Package config handles configuration loading for fairvalue.
// It supports YAML config files, an optional .env file and environment
// variable overrides.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. FAIRVALUE_BATCH_WORKERS.
const EnvPrefix = "FAIRVALUE"

// Config represents the complete application configuration.
type Config struct {
	Valuation ValuationConfig `mapstructure:"valuation" yaml:"valuation"`
	Batch     BatchConfig     `mapstructure:"batch"     yaml:"batch"`
	History   HistoryConfig   `mapstructure:"history"   yaml:"history"`
	Report    ReportConfig    `mapstructure:"report"    yaml:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`

	// File is the config file that was read, empty when running on defaults.
	File string `mapstructure:"-" yaml:"-"`
}

// ValuationConfig holds the seed and the Monte Carlo settings of the
// simulate command. Valuations always run the fixed simulation defaults.
type ValuationConfig struct {
	Seed               uint64  `mapstructure:"seed"                yaml:"seed"` // 0 = random per run
	Iterations         int     `mapstructure:"iterations"          yaml:"iterations"`
	GrowthVolatility   float64 `mapstructure:"growth_volatility"   yaml:"growth_volatility"`
	DiscountVolatility float64 `mapstructure:"discount_volatility" yaml:"discount_volatility"`
}

// BatchConfig holds batch runner settings.
type BatchConfig struct {
	Workers  int  `mapstructure:"workers"   yaml:"workers"`
	FailFast bool `mapstructure:"fail_fast" yaml:"fail_fast"`
}

// HistoryConfig holds the valuation history store settings.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// ReportConfig holds report rendering settings.
type ReportConfig struct {
	Format   string `mapstructure:"format"   yaml:"format"` // "text", "json" or "html"
	Currency string `mapstructure:"currency" yaml:"currency"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.fairvalue/config.yaml (home directory)
//  3. /etc/fairvalue/config.yaml (system)
//
// A .env file in the working directory is loaded first; it never overrides
// variables already set in the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".fairvalue"))
	v.AddConfigPath("/etc/fairvalue")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.History.Path = expandHome(cfg.History.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Valuation defaults
	v.SetDefault("valuation.seed", 0)
	v.SetDefault("valuation.iterations", 1000)
	v.SetDefault("valuation.growth_volatility", 0.15)
	v.SetDefault("valuation.discount_volatility", 0.10)

	// Batch defaults
	v.SetDefault("batch.workers", 4)
	v.SetDefault("batch.fail_fast", false)

	// History defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "~/.fairvalue/history.jsonl")

	// Report defaults
	v.SetDefault("report.format", "text")
	v.SetDefault("report.currency", "$")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks every section and reports the first invalid one.
func (c *Config) Validate() error {
	v := &c.Valuation
	if err := validation.ValidateStruct(v,
		validation.Field(&v.Iterations, validation.Required, validation.Min(2)),
		validation.Field(&v.GrowthVolatility, validation.Min(0.0)),
		validation.Field(&v.DiscountVolatility, validation.Min(0.0)),
	); err != nil {
		return fmt.Errorf("invalid valuation config: %w", err)
	}

	b := &c.Batch
	if err := validation.ValidateStruct(b,
		validation.Field(&b.Workers, validation.Required, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("invalid batch config: %w", err)
	}

	h := &c.History
	var pathRules []validation.Rule
	if h.Enabled {
		pathRules = append(pathRules, validation.Required)
	}
	if err := validation.ValidateStruct(h,
		validation.Field(&h.Path, pathRules...),
	); err != nil {
		return fmt.Errorf("invalid history config: %w", err)
	}

	r := &c.Report
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Format, validation.Required, validation.In("text", "json", "html")),
	); err != nil {
		return fmt.Errorf("invalid report config: %w", err)
	}

	l := &c.Logging
	if err := validation.ValidateStruct(l,
		validation.Field(&l.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&l.Format, validation.Required, validation.In("text", "json")),
	); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	return nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
