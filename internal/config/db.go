package config

import (
	"fmt"
	"net/url"
)

type DbConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Address  string `mapstructure:"address"`
	DbName   string `mapstructure:"db-name"`
}

func (cfg *DbConfig) Validate() error {
	if cfg.Address == "" {
		return fmt.Errorf("db address cannot be empty")
	}
	u, err := url.Parse(cfg.Address)
	if err != nil {
		return fmt.Errorf("invalid db address: %w", err)
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return fmt.Errorf("unsupported db scheme: %s", u.Scheme)
	}
	if cfg.Username == "" {
		return fmt.Errorf("db username cannot be empty")
	}
	if cfg.Password == "" {
		return fmt.Errorf("db password cannot be empty")
	}
	if cfg.DbName == "" {
		return fmt.Errorf("db name cannot be empty")
	}
	return nil
}
