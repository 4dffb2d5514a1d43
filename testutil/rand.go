package testutil

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	"github.com/vaultpoint/staking-vault/internal/db/model"
	"github.com/vaultpoint/staking-vault/internal/types"
)

// RandomAlphaNum generates random alphanumeric string
// in case length <= 0 it returns empty string
func RandomAlphaNum(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	if length <= 0 {
		return "", fmt.Errorf("length must be greater than 0")
	}

	randomString := make([]byte, length)
	for i := range randomString {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		randomString[i] = charset[num.Int64()]
	}

	return string(randomString), nil
}

// RandomVault returns an empty vault with random identity fields.
func RandomVault(t *testing.T) *model.VaultDocument {
	t.Helper()

	var doc model.VaultDocument
	err := gofakeit.Struct(&doc)
	require.NoError(t, err)

	doc.ID = gofakeit.UUID()
	doc.AssetType = gofakeit.CurrencyShort()
	doc.Balance = 0
	doc.TotalDeposited = 0
	doc.TotalWithdrawn = 0
	doc.AttributedPrincipal = 0
	return &doc
}

// RandomStake returns an active stake against the given vault, opened and
// settled at epoch.
func RandomStake(t *testing.T, vaultID string, epoch uint64) *model.StakeDocument {
	t.Helper()

	return &model.StakeDocument{
		ID:               gofakeit.UUID(),
		VaultID:          vaultID,
		Owner:            gofakeit.Username(),
		Principal:        uint64(gofakeit.Number(1, 1_000_000_000)),
		OpenedEpoch:      epoch,
		LastSettledEpoch: epoch,
		AccruedPoints:    0,
		State:            types.StateActive,
	}
}

// RandomRateConfig returns a rate configuration with a random rate under the
// ceiling.
func RandomRateConfig(t *testing.T) *model.RateConfigDocument {
	t.Helper()

	return &model.RateConfigDocument{
		ID:                model.RateConfigID,
		APYBasisPoints:    uint64(gofakeit.Number(1, 10_000)),
		MaxAPYBasisPoints: 10_000,
		EpochsPerYear:     365,
	}
}
