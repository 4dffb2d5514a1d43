package model

const VaultCollection = "vaults"

// VaultDocument custodies the aggregate balance of one asset type.
// Balance must always equal TotalDeposited - TotalWithdrawn: the only
// mutation paths are the checked deposit/withdraw updates in the db layer,
// each of which moves the balance and its counter in one atomic update.
// AttributedPrincipal is the sum of principal across active stakes
// referencing this vault; the balance may never drop below it.
type VaultDocument struct {
	ID                  string `bson:"_id" json:"id"`
	AssetType           string `bson:"asset_type" json:"asset_type"`
	Balance             uint64 `bson:"balance" json:"balance"`
	TotalDeposited      uint64 `bson:"total_deposited" json:"total_deposited"`
	TotalWithdrawn      uint64 `bson:"total_withdrawn" json:"total_withdrawn"`
	AttributedPrincipal uint64 `bson:"attributed_principal" json:"attributed_principal"`
	CreatedBy           string `bson:"created_by" json:"created_by"`
	CreatedAt           int64  `bson:"created_at" json:"created_at"`
}
