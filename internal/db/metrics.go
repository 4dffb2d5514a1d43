package db

import (
	"context"
	"time"

	"github.com/vaultpoint/staking-vault/internal/db/model"
	"github.com/vaultpoint/staking-vault/internal/observability/metrics"
	"github.com/vaultpoint/staking-vault/internal/types"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) SaveNewVault(ctx context.Context, vaultDoc *model.VaultDocument) error {
	return d.run("SaveNewVault", func() error {
		return d.db.SaveNewVault(ctx, vaultDoc)
	})
}

func (d *DbWithMetrics) GetVault(ctx context.Context, vaultID string) (result *model.VaultDocument, err error) {
	//nolint:errcheck
	d.run("GetVault", func() error {
		result, err = d.db.GetVault(ctx, vaultID)
		return err
	})

	return
}

func (d *DbWithMetrics) CreditVault(ctx context.Context, vaultID string, amount uint64) error {
	return d.run("CreditVault", func() error {
		return d.db.CreditVault(ctx, vaultID, amount)
	})
}

func (d *DbWithMetrics) DebitVault(ctx context.Context, vaultID string, amount uint64) error {
	return d.run("DebitVault", func() error {
		return d.db.DebitVault(ctx, vaultID, amount)
	})
}

func (d *DbWithMetrics) DeleteEmptyVault(ctx context.Context, vaultID string) error {
	return d.run("DeleteEmptyVault", func() error {
		return d.db.DeleteEmptyVault(ctx, vaultID)
	})
}

func (d *DbWithMetrics) GetStake(ctx context.Context, stakeID string) (result *model.StakeDocument, err error) {
	//nolint:errcheck
	d.run("GetStake", func() error {
		result, err = d.db.GetStake(ctx, stakeID)
		return err
	})

	return
}

func (d *DbWithMetrics) OpenStake(ctx context.Context, stakeDoc *model.StakeDocument) error {
	return d.run("OpenStake", func() error {
		return d.db.OpenStake(ctx, stakeDoc)
	})
}

func (d *DbWithMetrics) UpdateStakeSettlement(ctx context.Context, stakeID string, fromEpoch, toEpoch uint64, deltaPoints uint64) error {
	return d.run("UpdateStakeSettlement", func() error {
		return d.db.UpdateStakeSettlement(ctx, stakeID, fromEpoch, toEpoch, deltaPoints)
	})
}

func (d *DbWithMetrics) CloseStake(ctx context.Context, stakeID string, qualifiedPreviousStates []types.StakeState, closedEpoch uint64) (result *model.StakeDocument, err error) {
	//nolint:errcheck
	d.run("CloseStake", func() error {
		result, err = d.db.CloseStake(ctx, stakeID, qualifiedPreviousStates, closedEpoch)
		return err
	})

	return
}

func (d *DbWithMetrics) FindUnsettledStakes(ctx context.Context, currentEpoch, limit uint64) (result []model.StakeDocument, err error) {
	//nolint:errcheck
	d.run("FindUnsettledStakes", func() error {
		result, err = d.db.FindUnsettledStakes(ctx, currentEpoch, limit)
		return err
	})

	return
}

func (d *DbWithMetrics) GetStakesByVault(ctx context.Context, vaultID string) (result []model.StakeDocument, err error) {
	//nolint:errcheck
	d.run("GetStakesByVault", func() error {
		result, err = d.db.GetStakesByVault(ctx, vaultID)
		return err
	})

	return
}

func (d *DbWithMetrics) GetRateConfig(ctx context.Context) (result *model.RateConfigDocument, err error) {
	//nolint:errcheck
	d.run("GetRateConfig", func() error {
		result, err = d.db.GetRateConfig(ctx)
		return err
	})

	return
}

func (d *DbWithMetrics) InitRateConfig(ctx context.Context, rateDoc *model.RateConfigDocument) error {
	return d.run("InitRateConfig", func() error {
		return d.db.InitRateConfig(ctx, rateDoc)
	})
}

func (d *DbWithMetrics) UpdateRate(ctx context.Context, newAPYBasisPoints uint64) error {
	return d.run("UpdateRate", func() error {
		return d.db.UpdateRate(ctx, newAPYBasisPoints)
	})
}

func (d *DbWithMetrics) run(method string, f func() error) error {
	start := time.Now()
	err := f()
	metrics.ObserveDbLatency(method, time.Since(start), err != nil)
	return err
}
