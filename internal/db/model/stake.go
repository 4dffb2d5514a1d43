package model

import (
	"github.com/vaultpoint/staking-vault/internal/types"
)

const StakeCollection = "stakes"

// StakeDocument tracks one stake's principal and settlement checkpoint.
// AccruedPoints only ever grows while the stake is ACTIVE; a CLOSED stake
// is immutable.
type StakeDocument struct {
	ID               string           `bson:"_id" json:"id"`
	VaultID          string           `bson:"vault_id" json:"vault_id"`
	Owner            string           `bson:"owner" json:"owner"`
	Principal        uint64           `bson:"principal" json:"principal"`
	OpenedEpoch      uint64           `bson:"opened_epoch" json:"opened_epoch"`
	LastSettledEpoch uint64           `bson:"last_settled_epoch" json:"last_settled_epoch"`
	AccruedPoints    uint64           `bson:"accrued_points" json:"accrued_points"`
	State            types.StakeState `bson:"state" json:"state"`
	ClosedEpoch      *uint64          `bson:"closed_epoch,omitempty" json:"closed_epoch,omitempty"`
}
