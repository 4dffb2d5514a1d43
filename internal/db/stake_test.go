//go:build integration

package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultpoint/staking-vault/internal/db"
	"github.com/vaultpoint/staking-vault/internal/types"
	"github.com/vaultpoint/staking-vault/testutil"
)

func TestStake(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	t.Run("open", func(t *testing.T) {
		t.Run("missing vault aborts without creating the stake", func(t *testing.T) {
			stake := testutil.RandomStake(t, "no-such-vault", 0)
			err := testDB.OpenStake(ctx, stake)
			require.Error(t, err)
			assert.True(t, db.IsNotFoundError(err))

			_, err = testDB.GetStake(ctx, stake.ID)
			require.Error(t, err)
			assert.True(t, db.IsNotFoundError(err))
		})

		t.Run("deposits and attributes principal atomically", func(t *testing.T) {
			vault := testutil.RandomVault(t)
			require.NoError(t, testDB.SaveNewVault(ctx, vault))

			stake := testutil.RandomStake(t, vault.ID, 4)
			require.NoError(t, testDB.OpenStake(ctx, stake))

			stored, err := testDB.GetStake(ctx, stake.ID)
			require.NoError(t, err)
			assert.Equal(t, stake, stored)

			storedVault, err := testDB.GetVault(ctx, vault.ID)
			require.NoError(t, err)
			assert.Equal(t, stake.Principal, storedVault.Balance)
			assert.Equal(t, stake.Principal, storedVault.TotalDeposited)
			assert.Equal(t, stake.Principal, storedVault.AttributedPrincipal)

			// error due to duplicate key
			err = testDB.OpenStake(ctx, stake)
			require.Error(t, err)
			assert.True(t, db.IsDuplicateKeyError(err))
		})
	})

	t.Run("settlement", func(t *testing.T) {
		vault := testutil.RandomVault(t)
		require.NoError(t, testDB.SaveNewVault(ctx, vault))
		stake := testutil.RandomStake(t, vault.ID, 0)
		require.NoError(t, testDB.OpenStake(ctx, stake))

		t.Run("advances checkpoint and accumulates points", func(t *testing.T) {
			require.NoError(t, testDB.UpdateStakeSettlement(ctx, stake.ID, 0, 7, 100))
			require.NoError(t, testDB.UpdateStakeSettlement(ctx, stake.ID, 7, 9, 30))

			stored, err := testDB.GetStake(ctx, stake.ID)
			require.NoError(t, err)
			assert.Equal(t, uint64(9), stored.LastSettledEpoch)
			assert.Equal(t, uint64(130), stored.AccruedPoints)
		})

		t.Run("stale checkpoint is rejected", func(t *testing.T) {
			// checkpoint already moved to 9; replaying from 7 must miss
			err := testDB.UpdateStakeSettlement(ctx, stake.ID, 7, 9, 30)
			require.Error(t, err)
			assert.True(t, db.IsStaleSettlementError(err))

			stored, err := testDB.GetStake(ctx, stake.ID)
			require.NoError(t, err)
			assert.Equal(t, uint64(9), stored.LastSettledEpoch)
			assert.Equal(t, uint64(130), stored.AccruedPoints)
		})

		t.Run("missing stake", func(t *testing.T) {
			err := testDB.UpdateStakeSettlement(ctx, "no-such-stake", 0, 1, 1)
			require.Error(t, err)
			assert.True(t, db.IsStaleSettlementError(err))
		})
	})

	t.Run("close", func(t *testing.T) {
		vault := testutil.RandomVault(t)
		require.NoError(t, testDB.SaveNewVault(ctx, vault))
		stake := testutil.RandomStake(t, vault.ID, 0)
		require.NoError(t, testDB.OpenStake(ctx, stake))

		closed, err := testDB.CloseStake(ctx, stake.ID, types.QualifiedStatesForClosure(), 12)
		require.NoError(t, err)
		assert.Equal(t, types.StateClosed, closed.State)
		require.NotNil(t, closed.ClosedEpoch)
		assert.Equal(t, uint64(12), *closed.ClosedEpoch)

		// the principal left the vault together with its attribution
		storedVault, err := testDB.GetVault(ctx, vault.ID)
		require.NoError(t, err)
		assert.Zero(t, storedVault.Balance)
		assert.Zero(t, storedVault.AttributedPrincipal)
		assert.Equal(t, stake.Principal, storedVault.TotalWithdrawn)

		// CLOSED is not a qualified previous state, so a replay misses
		_, err = testDB.CloseStake(ctx, stake.ID, types.QualifiedStatesForClosure(), 13)
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))
	})

	t.Run("find unsettled", func(t *testing.T) {
		resetDatabase(t)

		vault := testutil.RandomVault(t)
		require.NoError(t, testDB.SaveNewVault(ctx, vault))

		behind := testutil.RandomStake(t, vault.ID, 3)
		require.NoError(t, testDB.OpenStake(ctx, behind))
		current := testutil.RandomStake(t, vault.ID, 5)
		require.NoError(t, testDB.OpenStake(ctx, current))
		closed := testutil.RandomStake(t, vault.ID, 1)
		require.NoError(t, testDB.OpenStake(ctx, closed))
		_, err := testDB.CloseStake(ctx, closed.ID, types.QualifiedStatesForClosure(), 2)
		require.NoError(t, err)

		// only the active stake behind epoch 5 qualifies
		stakes, err := testDB.FindUnsettledStakes(ctx, 5, 10)
		require.NoError(t, err)
		require.Len(t, stakes, 1)
		assert.Equal(t, behind.ID, stakes[0].ID)

		// limit is honored
		stakes, err = testDB.FindUnsettledStakes(ctx, 100, 1)
		require.NoError(t, err)
		assert.Len(t, stakes, 1)
	})

	t.Run("by vault", func(t *testing.T) {
		resetDatabase(t)

		vault := testutil.RandomVault(t)
		require.NoError(t, testDB.SaveNewVault(ctx, vault))
		other := testutil.RandomVault(t)
		require.NoError(t, testDB.SaveNewVault(ctx, other))

		first := testutil.RandomStake(t, vault.ID, 0)
		require.NoError(t, testDB.OpenStake(ctx, first))
		second := testutil.RandomStake(t, vault.ID, 0)
		require.NoError(t, testDB.OpenStake(ctx, second))
		elsewhere := testutil.RandomStake(t, other.ID, 0)
		require.NoError(t, testDB.OpenStake(ctx, elsewhere))

		stakes, err := testDB.GetStakesByVault(ctx, vault.ID)
		require.NoError(t, err)
		assert.Len(t, stakes, 2)
		assert.Contains(t, stakes, *first)
		assert.Contains(t, stakes, *second)
	})
}

func TestRateConfig(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := testDB.GetRateConfig(ctx)
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))
	})

	t.Run("init is idempotent", func(t *testing.T) {
		rate := testutil.RandomRateConfig(t)
		require.NoError(t, testDB.InitRateConfig(ctx, rate))

		// a second init must not clobber the stored document
		replay := testutil.RandomRateConfig(t)
		require.NoError(t, testDB.InitRateConfig(ctx, replay))

		stored, err := testDB.GetRateConfig(ctx)
		require.NoError(t, err)
		assert.Equal(t, rate, stored)
	})

	t.Run("update", func(t *testing.T) {
		require.NoError(t, testDB.UpdateRate(ctx, 750))

		stored, err := testDB.GetRateConfig(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(750), stored.APYBasisPoints)

		// rate above the stored ceiling misses the qualified filter
		err = testDB.UpdateRate(ctx, stored.MaxAPYBasisPoints+1)
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))
	})
}
