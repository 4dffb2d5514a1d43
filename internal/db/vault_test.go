//go:build integration

package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultpoint/staking-vault/internal/db"
	"github.com/vaultpoint/staking-vault/testutil"
)

func TestVault(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	t.Run("save", func(t *testing.T) {
		vault := testutil.RandomVault(t)
		err := testDB.SaveNewVault(ctx, vault)
		require.NoError(t, err)

		stored, err := testDB.GetVault(ctx, vault.ID)
		require.NoError(t, err)
		assert.Equal(t, vault, stored)

		// error due to duplicate key
		err = testDB.SaveNewVault(ctx, vault)
		require.Error(t, err)
		assert.True(t, db.IsDuplicateKeyError(err))
	})

	t.Run("get missing", func(t *testing.T) {
		stored, err := testDB.GetVault(ctx, "no-such-vault")
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))
		assert.Nil(t, stored)
	})

	t.Run("credit", func(t *testing.T) {
		vault := testutil.RandomVault(t)
		require.NoError(t, testDB.SaveNewVault(ctx, vault))

		require.NoError(t, testDB.CreditVault(ctx, vault.ID, 1_000))
		require.NoError(t, testDB.CreditVault(ctx, vault.ID, 250))

		stored, err := testDB.GetVault(ctx, vault.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1_250), stored.Balance)
		assert.Equal(t, uint64(1_250), stored.TotalDeposited)
		assert.Zero(t, stored.TotalWithdrawn)

		err = testDB.CreditVault(ctx, "no-such-vault", 1)
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))
	})

	t.Run("debit", func(t *testing.T) {
		vault := testutil.RandomVault(t)
		require.NoError(t, testDB.SaveNewVault(ctx, vault))
		require.NoError(t, testDB.CreditVault(ctx, vault.ID, 1_000))

		t.Run("insufficient balance leaves vault unchanged", func(t *testing.T) {
			err := testDB.DebitVault(ctx, vault.ID, 1_001)
			require.Error(t, err)
			assert.True(t, db.IsInsufficientBalanceError(err))

			stored, err := testDB.GetVault(ctx, vault.ID)
			require.NoError(t, err)
			assert.Equal(t, uint64(1_000), stored.Balance)
			assert.Zero(t, stored.TotalWithdrawn)
		})

		t.Run("successful debit moves balance and counter together", func(t *testing.T) {
			require.NoError(t, testDB.DebitVault(ctx, vault.ID, 400))

			stored, err := testDB.GetVault(ctx, vault.ID)
			require.NoError(t, err)
			assert.Equal(t, uint64(600), stored.Balance)
			assert.Equal(t, uint64(1_000), stored.TotalDeposited)
			assert.Equal(t, uint64(400), stored.TotalWithdrawn)
		})

		t.Run("missing vault", func(t *testing.T) {
			err := testDB.DebitVault(ctx, "no-such-vault", 1)
			require.Error(t, err)
			assert.True(t, db.IsNotFoundError(err))
		})
	})

	t.Run("debit respects attributed principal", func(t *testing.T) {
		vault := testutil.RandomVault(t)
		require.NoError(t, testDB.SaveNewVault(ctx, vault))
		require.NoError(t, testDB.CreditVault(ctx, vault.ID, 500))

		stake := testutil.RandomStake(t, vault.ID, 0)
		stake.Principal = 300
		require.NoError(t, testDB.OpenStake(ctx, stake))

		// balance 800, of which 300 is attributed to the stake
		err := testDB.DebitVault(ctx, vault.ID, 501)
		require.Error(t, err)
		assert.True(t, db.IsInsufficientBalanceError(err))

		require.NoError(t, testDB.DebitVault(ctx, vault.ID, 500))

		stored, err := testDB.GetVault(ctx, vault.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(300), stored.Balance)
		assert.Equal(t, uint64(300), stored.AttributedPrincipal)
	})

	t.Run("delete empty", func(t *testing.T) {
		vault := testutil.RandomVault(t)
		require.NoError(t, testDB.SaveNewVault(ctx, vault))
		require.NoError(t, testDB.CreditVault(ctx, vault.ID, 1))

		// error due to remaining balance
		err := testDB.DeleteEmptyVault(ctx, vault.ID)
		require.Error(t, err)
		assert.True(t, db.IsNotEmptyError(err))

		require.NoError(t, testDB.DebitVault(ctx, vault.ID, 1))
		require.NoError(t, testDB.DeleteEmptyVault(ctx, vault.ID))

		_, err = testDB.GetVault(ctx, vault.ID)
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))

		// already gone
		err = testDB.DeleteEmptyVault(ctx, vault.ID)
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))
	})
}
