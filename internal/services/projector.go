package services

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/vaultpoint/staking-vault/internal/observability/metrics"
	"github.com/vaultpoint/staking-vault/internal/types"
)

// PointsProjection is the read-only view of a stake's points. SettledPoints
// are committed; PendingPoints are what the next settlement would add at the
// current rate. SettledPoints + PendingPoints is exactly the total a
// settlement at AsOfEpoch would leave behind.
type PointsProjection struct {
	StakeID       string `json:"stake_id"`
	SettledPoints uint64 `json:"settled_points"`
	PendingPoints uint64 `json:"pending_points"`
	TotalPoints   uint64 `json:"total_points"`
	AsOfEpoch     uint64 `json:"as_of_epoch"`
	State         string `json:"state"`
}

// ProjectPoints computes the display view of a stake without mutating it.
// It feeds the same inputs into the same accrual function the settlement
// path uses, so projection and settlement cannot diverge.
func (s *Service) ProjectPoints(ctx context.Context, stakeID string) (*PointsProjection, *types.Error) {
	stakeDoc, terr := s.GetStake(ctx, stakeID)
	if terr != nil {
		return nil, terr
	}

	projection := &PointsProjection{
		StakeID:       stakeID,
		SettledPoints: stakeDoc.AccruedPoints,
		TotalPoints:   stakeDoc.AccruedPoints,
		AsOfEpoch:     stakeDoc.LastSettledEpoch,
		State:         stakeDoc.State.String(),
	}

	// a closed stake is immutable; nothing is pending
	if stakeDoc.State != types.StateActive {
		return projection, nil
	}

	currentEpoch := s.clock.CurrentEpoch()
	if currentEpoch <= stakeDoc.LastSettledEpoch {
		return projection, nil
	}

	pending, terr := s.accruePoints(ctx, stakeDoc, currentEpoch)
	if terr != nil {
		return nil, terr
	}
	if pending > math.MaxUint64-stakeDoc.AccruedPoints {
		metrics.RecordAccrualOverflowError()
		return nil, types.NewErrorWithMsg(
			http.StatusUnprocessableEntity,
			types.Overflow,
			fmt.Sprintf("accrued points for stake %s overflow uint64", stakeID),
		)
	}

	projection.PendingPoints = pending
	projection.TotalPoints = stakeDoc.AccruedPoints + pending
	projection.AsOfEpoch = currentEpoch
	return projection, nil
}
