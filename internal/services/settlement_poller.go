package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/vaultpoint/staking-vault/internal/observability/metrics"
	"github.com/vaultpoint/staking-vault/internal/types"
)

// SettleDueStakes settles every active stake whose checkpoint is behind the
// current epoch. Rate changes only apply to epochs settled after the change,
// so this poller is what keeps each stake settled at least once per epoch
// boundary and a rate change unambiguous.
func (s *Service) SettleDueStakes(ctx context.Context) *types.Error {
	start := time.Now()
	currentEpoch := s.clock.CurrentEpoch()
	metrics.RecordCurrentEpoch(currentEpoch)

	stakes, err := s.db.FindUnsettledStakes(ctx, currentEpoch, s.cfg.Poller.SettlementBatchLimit)
	if err != nil {
		metrics.ObserveSettlementRun(time.Since(start), true)
		return types.NewInternalServiceError(
			fmt.Errorf("failed to find unsettled stakes: %w", err),
		)
	}
	metrics.RecordUnsettledStakes(len(stakes))
	if len(stakes) == 0 {
		metrics.ObserveSettlementRun(time.Since(start), false)
		return nil
	}

	log.Ctx(ctx).Info().
		Int("stakes", len(stakes)).
		Uint64("epoch", currentEpoch).
		Msg("Settling due stakes")

	// each settlement is independent and idempotent, so losing a race with
	// a caller-initiated settle is harmless
	workers := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(s.cfg.Poller.SettlementConcurrency)

	for _, stake := range stakes {
		stakeID := stake.ID
		workers.Go(func(ctx context.Context) error {
			if _, terr := s.SettleStake(ctx, stakeID); terr != nil {
				log.Ctx(ctx).Error().Err(terr).
					Str("stakeId", stakeID).
					Msg("Failed to settle stake")
				return terr
			}
			return nil
		})
	}

	werr := workers.Wait()
	metrics.ObserveSettlementRun(time.Since(start), werr != nil)
	if werr != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("settlement run finished with errors: %w", werr),
		)
	}
	return nil
}
