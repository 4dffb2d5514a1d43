package config

import (
	"fmt"
)

// GovernanceConfig holds the capability tokens accepted by privileged
// operations. Token issuance lives outside this service.
type GovernanceConfig struct {
	GovernanceToken string `mapstructure:"governance-token"`
	CustodyToken    string `mapstructure:"custody-token"`
}

func (cfg *GovernanceConfig) Validate() error {
	if cfg.GovernanceToken == "" {
		return fmt.Errorf("governance token cannot be empty")
	}
	if cfg.CustodyToken == "" {
		return fmt.Errorf("custody token cannot be empty")
	}
	return nil
}
