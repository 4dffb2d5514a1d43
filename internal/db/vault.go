package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vaultpoint/staking-vault/internal/db/model"
)

func (db *Database) SaveNewVault(ctx context.Context, vaultDoc *model.VaultDocument) error {
	_, err := db.collection(model.VaultCollection).InsertOne(ctx, vaultDoc)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     vaultDoc.ID,
						Message: "vault already exists",
					}
				}
			}
		}
		return err
	}
	return nil
}

func (db *Database) GetVault(ctx context.Context, vaultID string) (*model.VaultDocument, error) {
	filter := bson.M{"_id": vaultID}

	res := db.collection(model.VaultCollection).FindOne(ctx, filter)

	var vaultDoc model.VaultDocument
	if err := res.Decode(&vaultDoc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     vaultID,
				Message: "vault not found",
			}
		}
		return nil, err
	}
	return &vaultDoc, nil
}

// CreditVault increases the vault balance and the cumulative deposit counter
// in one atomic update; there is no way to move one without the other.
func (db *Database) CreditVault(ctx context.Context, vaultID string, amount uint64) error {
	filter := bson.M{"_id": vaultID}
	update := bson.M{
		"$inc": bson.M{
			"balance":         amount,
			"total_deposited": amount,
		},
	}

	res, err := db.collection(model.VaultCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &NotFoundError{
			Key:     vaultID,
			Message: "vault not found",
		}
	}
	return nil
}

// DebitVault decreases the vault balance and increases the cumulative
// withdrawal counter. The filter requires the remaining balance to cover
// both the amount and the principal attributed to active stakes, so the
// conservation check and the mutation are a single atomic step.
func (db *Database) DebitVault(ctx context.Context, vaultID string, amount uint64) error {
	filter := bson.M{
		"_id": vaultID,
		"$expr": bson.M{
			"$gte": bson.A{
				bson.M{"$subtract": bson.A{"$balance", amount}},
				"$attributed_principal",
			},
		},
	}
	update := bson.M{
		"$inc": bson.M{
			"balance":         -int64(amount),
			"total_withdrawn": amount,
		},
	}

	res, err := db.collection(model.VaultCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return db.classifyVaultMiss(ctx, vaultID, amount)
	}
	return nil
}

// classifyVaultMiss turns a filter miss into a specific error. The vault is
// re-read only to pick the error kind; the failed update itself left no
// partial state behind.
func (db *Database) classifyVaultMiss(ctx context.Context, vaultID string, amount uint64) error {
	if _, err := db.GetVault(ctx, vaultID); err != nil {
		return err
	}
	return &InsufficientBalanceError{
		Key:     vaultID,
		Message: fmt.Sprintf("vault %s cannot cover withdrawal of %d", vaultID, amount),
	}
}

// DeleteEmptyVault removes a vault only when its balance is exactly zero.
func (db *Database) DeleteEmptyVault(ctx context.Context, vaultID string) error {
	filter := bson.M{"_id": vaultID, "balance": 0}

	res, err := db.collection(model.VaultCollection).DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		if _, err := db.GetVault(ctx, vaultID); err != nil {
			return err
		}
		return &NotEmptyError{
			Key:     vaultID,
			Message: "vault still holds value",
		}
	}
	return nil
}
