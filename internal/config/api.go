package config

import (
	"fmt"
	"time"
)

type APIConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle-timeout"`
}

func (cfg *APIConfig) Validate() error {
	if cfg.Host == "" {
		return fmt.Errorf("api host cannot be empty")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("api port must be between 1 and 65535")
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("api write timeout should be positive")
	}
	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("api read timeout should be positive")
	}
	if cfg.IdleTimeout <= 0 {
		return fmt.Errorf("api idle timeout should be positive")
	}
	return nil
}
