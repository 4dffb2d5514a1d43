package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vaultpoint/staking-vault/internal/accrual"
	"github.com/vaultpoint/staking-vault/internal/db"
	"github.com/vaultpoint/staking-vault/internal/db/model"
	"github.com/vaultpoint/staking-vault/internal/observability/metrics"
	"github.com/vaultpoint/staking-vault/internal/queue"
	"github.com/vaultpoint/staking-vault/internal/types"
)

// SettlementResult reports the outcome of one settlement call. A repeated
// call within the same epoch returns the unchanged totals with a zero delta.
type SettlementResult struct {
	StakeID     string `json:"stake_id"`
	DeltaPoints uint64 `json:"delta_points"`
	TotalPoints uint64 `json:"total_points"`
	Epoch       uint64 `json:"epoch"`
}

// OpenStake deposits principal into the vault and creates the stake record
// as one atomic unit. The new stake starts settled at the current epoch.
func (s *Service) OpenStake(
	ctx context.Context, vaultID string, principal uint64, owner string,
) (*model.StakeDocument, *types.Error) {
	if principal == 0 {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.ZeroDeposit, "stake principal must be positive")
	}
	if owner == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.ValidationError, "stake owner is required")
	}

	currentEpoch := s.clock.CurrentEpoch()
	stakeDoc := &model.StakeDocument{
		ID:               uuid.New().String(),
		VaultID:          vaultID,
		Owner:            owner,
		Principal:        principal,
		OpenedEpoch:      currentEpoch,
		LastSettledEpoch: currentEpoch,
		AccruedPoints:    0,
		State:            types.StateActive,
	}

	if err := s.db.OpenStake(ctx, stakeDoc); err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewNotFoundError(fmt.Sprintf("vault %s", vaultID))
		}
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to open stake: %w", err),
		)
	}

	// the principal entered the vault, so it shows up in the deposit stream
	// like any other deposit; CloseStake mirrors it with a Withdrawn record
	s.emitRecord(ctx, queue.DepositedRecord{
		VaultID: vaultID,
		Amount:  principal,
		By:      owner,
	})
	s.emitRecord(ctx, queue.StakeOpenedRecord{
		StakeID:   stakeDoc.ID,
		VaultID:   vaultID,
		Principal: principal,
		Owner:     owner,
		Epoch:     currentEpoch,
	})
	log.Ctx(ctx).Info().
		Str("stakeId", stakeDoc.ID).
		Str("vaultId", vaultID).
		Uint64("principal", principal).
		Msg("Stake opened")

	return stakeDoc, nil
}

// SettleStake converts the epochs elapsed since the stake's checkpoint into
// points and advances the checkpoint. Idempotent within an epoch: settling
// twice leaves accrued points and the checkpoint unchanged.
func (s *Service) SettleStake(ctx context.Context, stakeID string) (*SettlementResult, *types.Error) {
	stakeDoc, terr := s.getActiveStake(ctx, stakeID)
	if terr != nil {
		return nil, terr
	}

	currentEpoch := s.clock.CurrentEpoch()
	if currentEpoch <= stakeDoc.LastSettledEpoch {
		// nothing elapsed; return totals unchanged
		return &SettlementResult{
			StakeID:     stakeID,
			DeltaPoints: 0,
			TotalPoints: stakeDoc.AccruedPoints,
			Epoch:       stakeDoc.LastSettledEpoch,
		}, nil
	}

	delta, terr := s.accruePoints(ctx, stakeDoc, currentEpoch)
	if terr != nil {
		return nil, terr
	}

	if delta > math.MaxUint64-stakeDoc.AccruedPoints {
		metrics.RecordAccrualOverflowError()
		return nil, types.NewErrorWithMsg(
			http.StatusUnprocessableEntity,
			types.Overflow,
			fmt.Sprintf("accrued points for stake %s overflow uint64", stakeID),
		)
	}

	err := s.db.UpdateStakeSettlement(ctx, stakeID, stakeDoc.LastSettledEpoch, currentEpoch, delta)
	if err != nil {
		if db.IsStaleSettlementError(err) {
			// a concurrent settlement won the race; collapse to its result
			return s.reloadSettlement(ctx, stakeID)
		}
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to commit settlement: %w", err),
		)
	}

	result := &SettlementResult{
		StakeID:     stakeID,
		DeltaPoints: delta,
		TotalPoints: stakeDoc.AccruedPoints + delta,
		Epoch:       currentEpoch,
	}

	metrics.IncSettledStakes()
	s.emitRecord(ctx, queue.StakeSettledRecord{
		StakeID:     stakeID,
		DeltaPoints: result.DeltaPoints,
		TotalPoints: result.TotalPoints,
		Epoch:       currentEpoch,
	})
	log.Ctx(ctx).Debug().
		Str("stakeId", stakeID).
		Uint64("deltaPoints", delta).
		Uint64("epoch", currentEpoch).
		Msg("Stake settled")

	return result, nil
}

// CloseStake settles the stake up to the current epoch, transitions it to
// CLOSED and releases the original principal back to the recipient. The
// accrued points stay on the closed record; their redemption happens outside
// this service.
func (s *Service) CloseStake(
	ctx context.Context, stakeID, recipient string,
) (*model.StakeDocument, *types.Error) {
	if recipient == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.ValidationError, "recipient is required")
	}

	// final accrual up to the closing epoch; the settlement checkpoint is the
	// closing epoch, so an epoch boundary between the two steps cannot leave
	// the closed record ahead of its last settlement
	settled, terr := s.SettleStake(ctx, stakeID)
	if terr != nil {
		return nil, terr
	}

	closedEpoch := settled.Epoch
	closedStake, err := s.db.CloseStake(ctx, stakeID, types.QualifiedStatesForClosure(), closedEpoch)
	if err != nil {
		if db.IsNotFoundError(err) {
			// the settlement above saw the stake, so a miss here means a
			// concurrent closure took it out of the qualified states
			return nil, s.classifyStakeMiss(ctx, stakeID)
		}
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to close stake: %w", err),
		)
	}

	s.emitRecord(ctx, queue.WithdrawnRecord{
		VaultID:   closedStake.VaultID,
		Amount:    closedStake.Principal,
		By:        closedStake.Owner,
		Recipient: recipient,
	})
	s.emitRecord(ctx, queue.StakeClosedRecord{
		StakeID:     stakeID,
		FinalPoints: closedStake.AccruedPoints,
		Epoch:       closedEpoch,
		Recipient:   recipient,
	})
	log.Ctx(ctx).Info().
		Str("stakeId", stakeID).
		Uint64("finalPoints", closedStake.AccruedPoints).
		Msg("Stake closed")

	return closedStake, nil
}

// GetStake returns the stake document.
func (s *Service) GetStake(ctx context.Context, stakeID string) (*model.StakeDocument, *types.Error) {
	stakeDoc, err := s.db.GetStake(ctx, stakeID)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewNotFoundError(fmt.Sprintf("stake %s", stakeID))
		}
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to get stake: %w", err),
		)
	}
	return stakeDoc, nil
}

// accruePoints runs the canonical accrual formula for the stake between its
// checkpoint and toEpoch at the currently stored rate. This is the only call
// site pattern allowed: settlement and projection both funnel through here
// with identical arguments, so they can never disagree.
func (s *Service) accruePoints(
	ctx context.Context, stakeDoc *model.StakeDocument, toEpoch uint64,
) (uint64, *types.Error) {
	rateDoc, err := s.db.GetRateConfig(ctx)
	if err != nil {
		return 0, types.NewInternalServiceError(
			fmt.Errorf("failed to get rate config: %w", err),
		)
	}

	delta, err := accrual.Points(
		stakeDoc.Principal,
		rateDoc.APYBasisPoints,
		toEpoch-stakeDoc.LastSettledEpoch,
		rateDoc.EpochsPerYear,
	)
	if err != nil {
		if errors.Is(err, accrual.ErrOverflow) {
			metrics.RecordAccrualOverflowError()
			return 0, types.NewError(http.StatusUnprocessableEntity, types.Overflow, err)
		}
		return 0, types.NewInternalServiceError(
			fmt.Errorf("accrual failed: %w", err),
		)
	}
	return delta, nil
}

func (s *Service) getActiveStake(ctx context.Context, stakeID string) (*model.StakeDocument, *types.Error) {
	stakeDoc, terr := s.GetStake(ctx, stakeID)
	if terr != nil {
		return nil, terr
	}
	if stakeDoc.State != types.StateActive {
		return nil, types.NewErrorWithMsg(
			http.StatusUnprocessableEntity,
			types.NotActive,
			fmt.Sprintf("stake %s is %s", stakeID, stakeDoc.State),
		)
	}
	return stakeDoc, nil
}

func (s *Service) classifyStakeMiss(ctx context.Context, stakeID string) *types.Error {
	stakeDoc, err := s.db.GetStake(ctx, stakeID)
	if err != nil {
		if db.IsNotFoundError(err) {
			return types.NewNotFoundError(fmt.Sprintf("stake %s", stakeID))
		}
		return types.NewInternalServiceError(err)
	}
	return types.NewErrorWithMsg(
		http.StatusUnprocessableEntity,
		types.NotActive,
		fmt.Sprintf("stake %s is %s", stakeID, stakeDoc.State),
	)
}

// reloadSettlement re-reads a stake after losing a settlement race and
// reports the winner's totals.
func (s *Service) reloadSettlement(ctx context.Context, stakeID string) (*SettlementResult, *types.Error) {
	stakeDoc, terr := s.getActiveStake(ctx, stakeID)
	if terr != nil {
		return nil, terr
	}
	return &SettlementResult{
		StakeID:     stakeID,
		DeltaPoints: 0,
		TotalPoints: stakeDoc.AccruedPoints,
		Epoch:       stakeDoc.LastSettledEpoch,
	}, nil
}
