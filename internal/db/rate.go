package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaultpoint/staking-vault/internal/db/model"
)

func (db *Database) GetRateConfig(ctx context.Context) (*model.RateConfigDocument, error) {
	filter := bson.M{"_id": model.RateConfigID}

	res := db.collection(model.RateConfigCollection).FindOne(ctx, filter)

	var rateDoc model.RateConfigDocument
	if err := res.Decode(&rateDoc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.RateConfigID,
				Message: "rate config not found",
			}
		}
		return nil, err
	}
	return &rateDoc, nil
}

// InitRateConfig seeds the rate configuration document if it does not exist
// yet. An existing document is left untouched: bootstrap never overrides a
// rate that governance has since changed.
func (db *Database) InitRateConfig(ctx context.Context, rateDoc *model.RateConfigDocument) error {
	filter := bson.M{"_id": model.RateConfigID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"apy_basis_points":     rateDoc.APYBasisPoints,
			"max_apy_basis_points": rateDoc.MaxAPYBasisPoints,
			"epochs_per_year":      rateDoc.EpochsPerYear,
			"updated_at":           rateDoc.UpdatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.RateConfigCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

// UpdateRate replaces apy_basis_points atomically. The filter carries the
// ceiling check, so a rate above max_apy_basis_points can never land even if
// two updates race with a ceiling change.
func (db *Database) UpdateRate(ctx context.Context, newAPYBasisPoints uint64) error {
	filter := bson.M{
		"_id":                  model.RateConfigID,
		"max_apy_basis_points": bson.M{"$gte": newAPYBasisPoints},
	}
	update := bson.M{
		"$set": bson.M{
			"apy_basis_points": newAPYBasisPoints,
			"updated_at":       time.Now().Unix(),
		},
	}

	res, err := db.collection(model.RateConfigCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &NotFoundError{
			Key:     model.RateConfigID,
			Message: "rate config not found or new rate exceeds maximum",
		}
	}
	return nil
}
