package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vaultpoint/staking-vault/internal/db"
	"github.com/vaultpoint/staking-vault/internal/db/model"
	"github.com/vaultpoint/staking-vault/internal/queue"
	"github.com/vaultpoint/staking-vault/internal/types"
)

// CreateVault creates an empty custody vault for one asset type.
// Requires the governance capability.
func (s *Service) CreateVault(
	ctx context.Context, capabilityToken, assetType, creator string,
) (*model.VaultDocument, *types.Error) {
	if err := s.verifier.VerifyGovernance(ctx, capabilityToken); err != nil {
		return nil, types.NewError(http.StatusForbidden, types.Unauthorized, err)
	}
	if assetType == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.ValidationError, "asset type is required")
	}

	vaultDoc := &model.VaultDocument{
		ID:        uuid.New().String(),
		AssetType: assetType,
		CreatedBy: creator,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.db.SaveNewVault(ctx, vaultDoc); err != nil {
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to save new vault: %w", err),
		)
	}

	s.emitRecord(ctx, queue.VaultCreatedRecord{
		VaultID:   vaultDoc.ID,
		AssetType: assetType,
		Creator:   creator,
	})
	log.Ctx(ctx).Info().Str("vaultId", vaultDoc.ID).Msg("Vault created")

	return vaultDoc, nil
}

// Deposit moves amount into the vault. The balance change and the cumulative
// deposit counter move in the same atomic update, so the conservation
// invariant cannot be observed broken.
func (s *Service) Deposit(
	ctx context.Context, vaultID string, amount uint64, depositor string,
) *types.Error {
	if amount == 0 {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.ZeroDeposit, "deposit amount must be positive")
	}

	if err := s.db.CreditVault(ctx, vaultID, amount); err != nil {
		if db.IsNotFoundError(err) {
			return types.NewNotFoundError(fmt.Sprintf("vault %s", vaultID))
		}
		return types.NewInternalServiceError(
			fmt.Errorf("failed to credit vault: %w", err),
		)
	}

	s.emitRecord(ctx, queue.DepositedRecord{
		VaultID: vaultID,
		Amount:  amount,
		By:      depositor,
	})
	return nil
}

// Withdraw releases unattributed value from the vault to the recipient.
// Rejected when the remaining balance would not cover the principal of
// active stakes.
func (s *Service) Withdraw(
	ctx context.Context, vaultID string, amount uint64, by, recipient string,
) *types.Error {
	if amount == 0 {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.ValidationError, "withdrawal amount must be positive")
	}

	if err := s.db.DebitVault(ctx, vaultID, amount); err != nil {
		switch {
		case db.IsNotFoundError(err):
			return types.NewNotFoundError(fmt.Sprintf("vault %s", vaultID))
		case db.IsInsufficientBalanceError(err):
			return types.NewError(http.StatusUnprocessableEntity, types.InsufficientFunds, err)
		default:
			return types.NewInternalServiceError(
				fmt.Errorf("failed to debit vault: %w", err),
			)
		}
	}

	s.emitRecord(ctx, queue.WithdrawnRecord{
		VaultID:   vaultID,
		Amount:    amount,
		By:        by,
		Recipient: recipient,
	})
	return nil
}

// GetVault returns the vault document, including its current balance.
func (s *Service) GetVault(ctx context.Context, vaultID string) (*model.VaultDocument, *types.Error) {
	vaultDoc, err := s.db.GetVault(ctx, vaultID)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewNotFoundError(fmt.Sprintf("vault %s", vaultID))
		}
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to get vault: %w", err),
		)
	}
	return vaultDoc, nil
}

// DestroyVault irreversibly removes an empty vault.
// Requires the governance capability.
func (s *Service) DestroyVault(
	ctx context.Context, capabilityToken, vaultID, by string,
) *types.Error {
	if err := s.verifier.VerifyGovernance(ctx, capabilityToken); err != nil {
		return types.NewError(http.StatusForbidden, types.Unauthorized, err)
	}

	if err := s.db.DeleteEmptyVault(ctx, vaultID); err != nil {
		switch {
		case db.IsNotFoundError(err):
			return types.NewNotFoundError(fmt.Sprintf("vault %s", vaultID))
		case db.IsNotEmptyError(err):
			return types.NewError(http.StatusUnprocessableEntity, types.VaultNotEmpty, err)
		default:
			return types.NewInternalServiceError(
				fmt.Errorf("failed to delete vault: %w", err),
			)
		}
	}

	s.emitRecord(ctx, queue.VaultDestroyedRecord{
		VaultID: vaultID,
		By:      by,
	})
	log.Ctx(ctx).Info().Str("vaultId", vaultID).Msg("Vault destroyed")
	return nil
}

// emitRecord publishes one record. State is already committed by the time a
// record is emitted, so failures are logged and counted but not propagated.
func (s *Service) emitRecord(ctx context.Context, record queue.Record) {
	if err := s.publisher.Publish(ctx, record); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("recordType", record.RecordType().String()).
			Msg("Failed to publish record")
	}
}
