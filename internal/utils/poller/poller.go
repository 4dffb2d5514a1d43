package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vaultpoint/staking-vault/internal/types"
)

// Poller drives a named recurring sweep, such as the settlement sweep that
// advances stake checkpoints once per epoch.
type Poller struct {
	name     string
	interval time.Duration
	quit     chan struct{}
	sweep    func(ctx context.Context) *types.Error
}

func NewPoller(name string, interval time.Duration, sweep func(ctx context.Context) *types.Error) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		quit:     make(chan struct{}),
		sweep:    sweep,
	}
}

// Start runs the sweep every interval until ctx is cancelled or Stop is
// called. A failed sweep is logged and retried on the next tick.
func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	logger := log.With().Str("sweep", p.name).Logger()
	logger.Info().Msgf("Starting %s sweep with interval %s", p.name, p.interval)

	for {
		select {
		case <-ticker.C:
			if err := p.sweep(ctx); err != nil {
				logger.Error().Err(err).Msg("Sweep failed")
			} else {
				logger.Debug().Msg("Sweep completed")
			}
		case <-ctx.Done():
			logger.Info().Msg("Sweep stopped due to context cancellation")
			return
		case <-p.quit:
			logger.Info().Msg("Sweep stopped")
			return
		}
	}
}

func (p *Poller) Stop() {
	close(p.quit)
}
