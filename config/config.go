package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/evdnx/gobs/betting"
	"github.com/evdnx/gobs/logger"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "GOBS_"

// SizingConfig holds everything needed to size the next trade of one
// instrument.
type SizingConfig struct {
	// Money management
	BettingSystem string  `yaml:"betting_system"` // e.g. "martingale", "Oscar's grind"
	UnitSize      float64 `yaml:"unit_size"`      // base stake in instrument units
	InitSize      float64 `yaml:"init_size"`      // optional reset target, 0 = unset

	// Account-derived init size: nav*UnitMarginRatio/MarginPerUnit.
	// Takes effect only when both are positive and InitSize is unset.
	UnitMarginRatio float64 `yaml:"unit_margin_ratio"`
	MarginPerUnit   float64 `yaml:"margin_per_unit"`

	// How many of the latest transactions to look at, 0 = all.
	ScannedTransactionCount int `yaml:"scanned_transaction_count"`

	// QuantityPrecision defines the number of decimal places to round to
	// (e.g. 2 for crypto/futures, 0 for FX units).
	QuantityPrecision int `yaml:"quantity_precision"`

	// Minimum order size accepted by the broker.
	MinQty float64 `yaml:"min_qty"`

	// StepSize – the increment allowed by the broker (e.g. 1 unit).
	StepSize float64 `yaml:"step_size"`

	Instrument  string         `yaml:"instrument"`
	JournalPath string         `yaml:"journal_path"`
	ListenAddr  string         `yaml:"listen_addr"`
	Log         logger.Options `yaml:"log"`
}

// Default returns a flat one-unit configuration.
func Default() SizingConfig {
	return SizingConfig{
		BettingSystem:     "constant",
		UnitSize:          1,
		QuantityPrecision: 0,
		StepSize:          1,
		Log:               logger.Options{Level: "warn"},
	}
}

// Validate checks that all numeric fields are within sensible bounds.
// It returns the first encountered error, allowing the caller to surface a
// clear configuration problem before any trading starts.
func (c *SizingConfig) Validate() error {
	if _, err := betting.ParseStrategy(c.BettingSystem); err != nil {
		return err
	}
	if c.UnitSize <= 0 {
		return fmt.Errorf("UnitSize (%f) must be positive", c.UnitSize)
	}
	if c.InitSize < 0 {
		return fmt.Errorf("InitSize (%f) cannot be negative", c.InitSize)
	}
	if c.UnitMarginRatio < 0 || c.UnitMarginRatio > 1 {
		return fmt.Errorf("UnitMarginRatio (%f) must be between 0 and 1", c.UnitMarginRatio)
	}
	if c.MarginPerUnit < 0 {
		return errors.New("MarginPerUnit cannot be negative")
	}
	if c.ScannedTransactionCount < 0 {
		return errors.New("ScannedTransactionCount cannot be negative")
	}
	if c.QuantityPrecision < 0 {
		return errors.New("QuantityPrecision cannot be negative")
	}
	if c.MinQty < 0 {
		return errors.New("MinQty cannot be negative")
	}
	if c.StepSize <= 0 {
		return errors.New("StepSize must be positive")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Load reads path (YAML) over Default, then applies .env files and GOBS_*
// environment variables, then validates. An empty path skips the file.
// Without explicit envFiles a missing ./.env is not an error.
func Load(path string, envFiles ...string) (SizingConfig, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load env: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(c *SizingConfig) error {
	str := map[string]*string{
		"BETTING_SYSTEM": &c.BettingSystem,
		"INSTRUMENT":     &c.Instrument,
		"JOURNAL":        &c.JournalPath,
		"LISTEN_ADDR":    &c.ListenAddr,
		"LOG_LEVEL":      &c.Log.Level,
		"LOG_FILE":       &c.Log.File,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}
	floats := map[string]*float64{
		"UNIT_SIZE":         &c.UnitSize,
		"INIT_SIZE":         &c.InitSize,
		"UNIT_MARGIN_RATIO": &c.UnitMarginRatio,
		"MARGIN_PER_UNIT":   &c.MarginPerUnit,
	}
	for key, dst := range floats {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = f
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SCANNED_TRANSACTION_COUNT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSCANNED_TRANSACTION_COUNT: %w", EnvPrefix, err)
		}
		c.ScannedTransactionCount = n
	}
	return nil
}
