package services

import (
	"context"

	"github.com/vaultpoint/staking-vault/internal/auth"
	"github.com/vaultpoint/staking-vault/internal/config"
	"github.com/vaultpoint/staking-vault/internal/db"
	"github.com/vaultpoint/staking-vault/internal/epoch"
	"github.com/vaultpoint/staking-vault/internal/queue"
	"github.com/vaultpoint/staking-vault/internal/utils/poller"
)

// RecordPublisher sends append-only records to off-chain consumers.
type RecordPublisher interface {
	Publish(ctx context.Context, record queue.Record) error
}

type Service struct {
	cfg       *config.Config
	db        db.DbInterface
	publisher RecordPublisher
	clock     *epoch.Clock
	verifier  auth.Verifier
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	publisher RecordPublisher,
	clock *epoch.Clock,
	verifier auth.Verifier,
) *Service {
	return &Service{
		cfg:       cfg,
		db:        db,
		publisher: publisher,
		clock:     clock,
		verifier:  verifier,
	}
}

// StartBackgroundTasks seeds the rate configuration and launches the
// settlement poller. It blocks until ctx is cancelled.
func (s *Service) StartBackgroundTasks(ctx context.Context) {
	s.BootstrapRateConfig(ctx)

	settlementPoller := poller.NewPoller(
		"settlement",
		s.cfg.Poller.SettlementPollingInterval,
		s.SettleDueStakes,
	)
	settlementPoller.Start(ctx)
}
