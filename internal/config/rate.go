package config

import (
	"fmt"
)

const (
	// MaxBasisPoints is 100% APY; the governance ceiling can never exceed it.
	MaxBasisPoints = 10_000

	defaultEpochsPerYear = 365
)

// RateConfig seeds the stored rate configuration at bootstrap. The APY is
// expressed in basis points, never as a raw per-epoch multiplier: 500 means
// 5% per year regardless of epoch length.
type RateConfig struct {
	APYBasisPoints    uint64 `mapstructure:"apy-basis-points"`
	MaxAPYBasisPoints uint64 `mapstructure:"max-apy-basis-points"`
	EpochsPerYear     uint64 `mapstructure:"epochs-per-year"`
}

func (cfg *RateConfig) Validate() error {
	if cfg.EpochsPerYear == 0 {
		cfg.EpochsPerYear = defaultEpochsPerYear
	}
	if cfg.MaxAPYBasisPoints == 0 {
		return fmt.Errorf("max apy basis points must be positive")
	}
	if cfg.MaxAPYBasisPoints > MaxBasisPoints {
		return fmt.Errorf("max apy basis points cannot exceed %d", MaxBasisPoints)
	}
	if cfg.APYBasisPoints > cfg.MaxAPYBasisPoints {
		return fmt.Errorf("apy basis points %d exceeds maximum %d", cfg.APYBasisPoints, cfg.MaxAPYBasisPoints)
	}
	return nil
}
