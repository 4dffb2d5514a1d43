package config

import (
	"fmt"
	"time"
)

const (
	defaultPublishTimeout   = 5 * time.Second
	defaultMaxRetryAttempts = 5
	defaultRetryInterval    = 500 * time.Millisecond
)

// QueueConfig defines the RabbitMQ connection used to publish the
// append-only record stream for off-chain consumers.
type QueueConfig struct {
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	URL              string        `mapstructure:"url"`
	Exchange         string        `mapstructure:"exchange"`
	PublishTimeout   time.Duration `mapstructure:"publish-timeout"`
	MaxRetryAttempts uint          `mapstructure:"max-retry-attempts"`
	RetryInterval    time.Duration `mapstructure:"retry-interval"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.User == "" {
		return fmt.Errorf("queue user cannot be empty")
	}
	if cfg.Password == "" {
		return fmt.Errorf("queue password cannot be empty")
	}
	if cfg.URL == "" {
		return fmt.Errorf("queue url cannot be empty")
	}
	if cfg.Exchange == "" {
		return fmt.Errorf("queue exchange cannot be empty")
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	if cfg.MaxRetryAttempts == 0 {
		cfg.MaxRetryAttempts = defaultMaxRetryAttempts
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultRetryInterval
	}
	return nil
}
