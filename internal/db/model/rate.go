package model

const (
	RateConfigCollection = "rate_config"

	// RateConfigID is the _id of the single rate configuration document.
	RateConfigID = "rate_config"
)

// RateConfigDocument holds the governance-set accrual parameters.
// APYBasisPoints is an annual rate in basis points (500 = 5% APY), never a
// per-epoch multiplier. Mutated only by the governance-gated rate update;
// accrual logic reads it and nothing else.
type RateConfigDocument struct {
	ID                string `bson:"_id" json:"id"`
	APYBasisPoints    uint64 `bson:"apy_basis_points" json:"apy_basis_points"`
	MaxAPYBasisPoints uint64 `bson:"max_apy_basis_points" json:"max_apy_basis_points"`
	EpochsPerYear     uint64 `bson:"epochs_per_year" json:"epochs_per_year"`
	UpdatedAt         int64  `bson:"updated_at" json:"updated_at"`
}
