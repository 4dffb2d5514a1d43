package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vaultpoint/staking-vault/internal/db"
	"github.com/vaultpoint/staking-vault/internal/db/model"
	"github.com/vaultpoint/staking-vault/internal/types"
)

// BootstrapRateConfig seeds the stored rate configuration from the config
// file on first start. An existing document wins over the file.
func (s *Service) BootstrapRateConfig(ctx context.Context) {
	rateDoc := &model.RateConfigDocument{
		ID:                model.RateConfigID,
		APYBasisPoints:    s.cfg.Rate.APYBasisPoints,
		MaxAPYBasisPoints: s.cfg.Rate.MaxAPYBasisPoints,
		EpochsPerYear:     s.cfg.Rate.EpochsPerYear,
		UpdatedAt:         time.Now().Unix(),
	}
	if err := s.db.InitRateConfig(ctx, rateDoc); err != nil {
		log.Ctx(ctx).Fatal().Err(err).Msg("Failed to bootstrap rate config")
	}
}

// GetRateConfig returns the stored accrual parameters.
func (s *Service) GetRateConfig(ctx context.Context) (*model.RateConfigDocument, *types.Error) {
	rateDoc, err := s.db.GetRateConfig(ctx)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewNotFoundError("rate config")
		}
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to get rate config: %w", err),
		)
	}
	return rateDoc, nil
}

// SetRate replaces the APY, expressed in basis points, after verifying the
// governance capability. The change is not retroactive: epochs settled
// before the update keep their old points. The settlement poller keeps every
// stake settled at least once per epoch so a rate change never spans an
// unsettled boundary ambiguously.
func (s *Service) SetRate(
	ctx context.Context, capabilityToken string, newAPYBasisPoints uint64,
) *types.Error {
	if err := s.verifier.VerifyGovernance(ctx, capabilityToken); err != nil {
		return types.NewError(http.StatusForbidden, types.Unauthorized, err)
	}

	if err := s.db.UpdateRate(ctx, newAPYBasisPoints); err != nil {
		if db.IsNotFoundError(err) {
			// the filter also carries the ceiling check; find out which
			// condition failed
			if _, terr := s.GetRateConfig(ctx); terr != nil {
				return terr
			}
			return types.NewErrorWithMsg(
				http.StatusUnprocessableEntity,
				types.InvalidRate,
				fmt.Sprintf("rate %d exceeds the governance ceiling", newAPYBasisPoints),
			)
		}
		return types.NewInternalServiceError(
			fmt.Errorf("failed to update rate: %w", err),
		)
	}

	log.Ctx(ctx).Info().Uint64("apyBasisPoints", newAPYBasisPoints).Msg("Rate updated")
	return nil
}
