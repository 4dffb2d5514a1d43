package config

import (
	"fmt"
	"time"
)

// EpochConfig pins the epoch numbering: epoch 0 starts at GenesisTime and
// each epoch lasts EpochDuration. These values must never change once the
// system has settled any stake; renumbering epochs would corrupt every
// last-settled checkpoint.
type EpochConfig struct {
	GenesisTime   time.Time     `mapstructure:"genesis-time"`
	EpochDuration time.Duration `mapstructure:"epoch-duration"`
}

func (cfg *EpochConfig) Validate() error {
	if cfg.GenesisTime.IsZero() {
		return fmt.Errorf("epoch genesis time must be set")
	}
	if cfg.EpochDuration <= 0 {
		return fmt.Errorf("epoch duration should be positive")
	}
	return nil
}
