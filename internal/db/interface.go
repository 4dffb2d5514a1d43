package db

import (
	"context"

	"github.com/vaultpoint/staking-vault/internal/db/model"
	"github.com/vaultpoint/staking-vault/internal/types"
)

type DbInterface interface {
	Ping(ctx context.Context) error

	SaveNewVault(ctx context.Context, vaultDoc *model.VaultDocument) error
	GetVault(ctx context.Context, vaultID string) (*model.VaultDocument, error)
	CreditVault(ctx context.Context, vaultID string, amount uint64) error
	DebitVault(ctx context.Context, vaultID string, amount uint64) error
	DeleteEmptyVault(ctx context.Context, vaultID string) error

	GetStake(ctx context.Context, stakeID string) (*model.StakeDocument, error)
	OpenStake(ctx context.Context, stakeDoc *model.StakeDocument) error
	UpdateStakeSettlement(ctx context.Context, stakeID string, fromEpoch, toEpoch uint64, deltaPoints uint64) error
	CloseStake(ctx context.Context, stakeID string, qualifiedPreviousStates []types.StakeState, closedEpoch uint64) (*model.StakeDocument, error)
	FindUnsettledStakes(ctx context.Context, currentEpoch, limit uint64) ([]model.StakeDocument, error)
	GetStakesByVault(ctx context.Context, vaultID string) ([]model.StakeDocument, error)

	GetRateConfig(ctx context.Context) (*model.RateConfigDocument, error)
	InitRateConfig(ctx context.Context, rateDoc *model.RateConfigDocument) error
	UpdateRate(ctx context.Context, newAPYBasisPoints uint64) error
}
