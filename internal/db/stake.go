package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaultpoint/staking-vault/internal/db/model"
	"github.com/vaultpoint/staking-vault/internal/types"
)

func (db *Database) GetStake(ctx context.Context, stakeID string) (*model.StakeDocument, error) {
	filter := bson.M{"_id": stakeID}

	res := db.collection(model.StakeCollection).FindOne(ctx, filter)

	var stakeDoc model.StakeDocument
	if err := res.Decode(&stakeDoc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     stakeID,
				Message: "stake not found",
			}
		}
		return nil, err
	}
	return &stakeDoc, nil
}

// OpenStake credits the vault with the stake principal and inserts the stake
// document as one transaction. Either both happen or neither does, so the
// vault balance can never disagree with the set of stakes attributed to it.
func (db *Database) OpenStake(ctx context.Context, stakeDoc *model.StakeDocument) error {
	return db.withTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		filter := bson.M{"_id": stakeDoc.VaultID}
		update := bson.M{
			"$inc": bson.M{
				"balance":              stakeDoc.Principal,
				"total_deposited":      stakeDoc.Principal,
				"attributed_principal": stakeDoc.Principal,
			},
		}
		res, err := db.collection(model.VaultCollection).UpdateOne(sc, filter, update)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, &NotFoundError{
				Key:     stakeDoc.VaultID,
				Message: "vault not found",
			}
		}

		if _, err := db.collection(model.StakeCollection).InsertOne(sc, stakeDoc); err != nil {
			var writeErr mongo.WriteException
			if errors.As(err, &writeErr) {
				for _, e := range writeErr.WriteErrors {
					if mongo.IsDuplicateKeyError(e) {
						return nil, &DuplicateKeyError{
							Key:     stakeDoc.ID,
							Message: "stake already exists",
						}
					}
				}
			}
			return nil, err
		}
		return nil, nil
	})
}

// UpdateStakeSettlement advances the settlement checkpoint from fromEpoch to
// toEpoch and adds deltaPoints, qualified on the stake still being ACTIVE
// with its checkpoint exactly at fromEpoch. Two settlements racing on the
// same epoch window therefore collapse to one: the loser's filter misses and
// it surfaces StaleSettlementError instead of accruing twice.
func (db *Database) UpdateStakeSettlement(
	ctx context.Context,
	stakeID string,
	fromEpoch, toEpoch uint64,
	deltaPoints uint64,
) error {
	filter := bson.M{
		"_id":                stakeID,
		"state":              types.StateActive.String(),
		"last_settled_epoch": fromEpoch,
	}
	update := bson.M{
		"$set": bson.M{"last_settled_epoch": toEpoch},
		"$inc": bson.M{"accrued_points": deltaPoints},
	}

	res, err := db.collection(model.StakeCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &StaleSettlementError{
			Key:     stakeID,
			Message: fmt.Sprintf("stake %s not active or checkpoint moved past epoch %d", stakeID, fromEpoch),
		}
	}
	return nil
}

// CloseStake transitions the stake to CLOSED and releases its principal from
// the vault in one transaction. The state transition is qualified on the
// current state being in qualifiedPreviousStates, so closing an already
// closed stake matches nothing and fails cleanly.
func (db *Database) CloseStake(
	ctx context.Context,
	stakeID string,
	qualifiedPreviousStates []types.StakeState,
	closedEpoch uint64,
) (*model.StakeDocument, error) {
	qualifiedStateStrs := make([]string, len(qualifiedPreviousStates))
	for i, state := range qualifiedPreviousStates {
		qualifiedStateStrs[i] = state.String()
	}

	var closedStake model.StakeDocument
	err := db.withTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		filter := bson.M{
			"_id":   stakeID,
			"state": bson.M{"$in": qualifiedStateStrs},
		}
		update := bson.M{
			"$set": bson.M{
				"state":        types.StateClosed.String(),
				"closed_epoch": closedEpoch,
			},
		}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		res := db.collection(model.StakeCollection).FindOneAndUpdate(sc, filter, update, opts)
		if res.Err() != nil {
			if errors.Is(res.Err(), mongo.ErrNoDocuments) {
				return nil, &NotFoundError{
					Key:     stakeID,
					Message: "stake not found or current state is not qualified states",
				}
			}
			return nil, res.Err()
		}
		if err := res.Decode(&closedStake); err != nil {
			return nil, err
		}

		vaultFilter := bson.M{
			"_id":                  closedStake.VaultID,
			"balance":              bson.M{"$gte": closedStake.Principal},
			"attributed_principal": bson.M{"$gte": closedStake.Principal},
		}
		vaultUpdate := bson.M{
			"$inc": bson.M{
				"balance":              -int64(closedStake.Principal),
				"total_withdrawn":      closedStake.Principal,
				"attributed_principal": -int64(closedStake.Principal),
			},
		}
		vaultRes, err := db.collection(model.VaultCollection).UpdateOne(sc, vaultFilter, vaultUpdate)
		if err != nil {
			return nil, err
		}
		if vaultRes.MatchedCount == 0 {
			// aborting the transaction rolls the state change back
			return nil, &InsufficientBalanceError{
				Key:     closedStake.VaultID,
				Message: fmt.Sprintf("vault %s cannot release principal %d", closedStake.VaultID, closedStake.Principal),
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return &closedStake, nil
}

// FindUnsettledStakes returns active stakes whose checkpoint is behind
// currentEpoch, up to limit.
func (db *Database) FindUnsettledStakes(ctx context.Context, currentEpoch, limit uint64) ([]model.StakeDocument, error) {
	filter := bson.M{
		"state":              types.StateActive.String(),
		"last_settled_epoch": bson.M{"$lt": currentEpoch},
	}

	opts := options.Find().SetLimit(int64(limit))
	cursor, err := db.collection(model.StakeCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stakes []model.StakeDocument
	if err = cursor.All(ctx, &stakes); err != nil {
		return nil, err
	}

	return stakes, nil
}

// GetStakesByVault returns every stake referencing the vault.
func (db *Database) GetStakesByVault(ctx context.Context, vaultID string) ([]model.StakeDocument, error) {
	filter := bson.M{"vault_id": vaultID}

	cursor, err := db.collection(model.StakeCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stakes []model.StakeDocument
	if err = cursor.All(ctx, &stakes); err != nil {
		return nil, err
	}

	return stakes, nil
}
