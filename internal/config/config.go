// Package config loads and validates process configuration: attention
// bank fund/rate coefficients, the chosen storage backend and its pool
// size, and the rule engine's step budget (spec §6). Grounded on the
// teacher's internal/config layout — a single Config struct, YAML tags
// for file loading, sane Default() values, and a Validate pass
// that catches nonsensical operator input before it reaches the core.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AttentionConfig mirrors ecan.Config's fields for file/flag loading
// (spec §6: sti_fund, lti_fund, forgetting_threshold_sti, rent_rate_sti,
// rent_rate_lti, spread_fraction, sti_threshold_spread).
type AttentionConfig struct {
	STIFund int64 `yaml:"sti_fund" json:"sti_fund"`
	LTIFund int64 `yaml:"lti_fund" json:"lti_fund"`

	ThresholdSTI int16 `yaml:"rent_threshold_sti" json:"rent_threshold_sti"`
	ThresholdLTI int16 `yaml:"rent_threshold_lti" json:"rent_threshold_lti"`

	RentRateSTI float64 `yaml:"rent_rate_sti" json:"rent_rate_sti"`
	RentRateLTI float64 `yaml:"rent_rate_lti" json:"rent_rate_lti"`

	ForgettingThresholdSTI int16 `yaml:"forgetting_threshold_sti" json:"forgetting_threshold_sti"`

	SpreadThresholdSTI int16   `yaml:"sti_threshold_spread" json:"sti_threshold_spread"`
	SpreadFraction     float64 `yaml:"spread_fraction" json:"spread_fraction"`
}

// StorageConfig selects and sizes the persistence backend (spec §4.4).
type StorageConfig struct {
	Backend  string `yaml:"storage_backend" json:"storage_backend"` // "memory", "sql", "kv"
	DSN      string `yaml:"dsn" json:"dsn"`
	PoolSize int    `yaml:"pool_size" json:"pool_size"`
}

// ReasoningConfig bounds the rule engine's chaining effort (spec §4.6).
type ReasoningConfig struct {
	ChainStepBudget int `yaml:"chain_step_budget" json:"chain_step_budget"`
	MaxDepth        int `yaml:"max_depth" json:"max_depth"`
}

// Config is the full process configuration.
type Config struct {
	Attention AttentionConfig `yaml:"attention" json:"attention"`
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Reasoning ReasoningConfig `yaml:"reasoning" json:"reasoning"`
}

// Default returns the configuration the process starts with absent an
// operator-supplied file, matching the fund ceilings spec §4.2 names
// explicitly ("default 10,000 each").
func Default() *Config {
	return &Config{
		Attention: AttentionConfig{
			STIFund:                10000,
			LTIFund:                10000,
			ThresholdSTI:           100,
			ThresholdLTI:           100,
			RentRateSTI:            0.1,
			RentRateLTI:            0.1,
			ForgettingThresholdSTI: -50,
			SpreadThresholdSTI:     50,
			SpreadFraction:         0.2,
		},
		Storage: StorageConfig{
			Backend:  "memory",
			PoolSize: 10,
		},
		Reasoning: ReasoningConfig{
			ChainStepBudget: 20,
			MaxDepth:        10,
		},
	}
}

// Load reads a YAML config file at path, applying it on top of
// Default() so a partial file only overrides what it names.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configuration that would violate core invariants
// (negative funds, an unknown storage backend, a zero step budget).
func (c *Config) Validate() error {
	if c.Attention.STIFund < 0 || c.Attention.LTIFund < 0 {
		return fmt.Errorf("attention fund ceilings must be >= 0")
	}
	if c.Attention.RentRateSTI < 0 || c.Attention.RentRateLTI < 0 {
		return fmt.Errorf("rent rates must be >= 0")
	}
	if c.Attention.SpreadFraction < 0 || c.Attention.SpreadFraction > 1 {
		return fmt.Errorf("spread_fraction must be in [0,1]")
	}
	switch c.Storage.Backend {
	case "memory", "sql", "kv":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.PoolSize < 1 {
		return fmt.Errorf("pool_size must be >= 1")
	}
	if c.Reasoning.ChainStepBudget < 1 {
		return fmt.Errorf("chain_step_budget must be >= 1")
	}
	if c.Reasoning.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be >= 1")
	}
	return nil
}
