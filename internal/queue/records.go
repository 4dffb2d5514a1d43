package queue

// Record types published for off-chain consumption. Each record is routed by
// its type; the stream is append-only and the database remains the system of
// record for balances and points.

type RecordType string

func (r RecordType) String() string {
	return string(r)
}

const (
	RecordVaultCreated   RecordType = "vault.created"
	RecordDeposited      RecordType = "vault.deposited"
	RecordWithdrawn      RecordType = "vault.withdrawn"
	RecordVaultDestroyed RecordType = "vault.destroyed"
	RecordStakeOpened    RecordType = "stake.opened"
	RecordStakeSettled   RecordType = "stake.settled"
	RecordStakeClosed    RecordType = "stake.closed"
)

type VaultCreatedRecord struct {
	VaultID   string `json:"vault_id"`
	AssetType string `json:"asset_type"`
	Creator   string `json:"creator"`
}

func (VaultCreatedRecord) RecordType() RecordType { return RecordVaultCreated }

type DepositedRecord struct {
	VaultID string `json:"vault_id"`
	Amount  uint64 `json:"amount"`
	By      string `json:"by"`
}

func (DepositedRecord) RecordType() RecordType { return RecordDeposited }

type WithdrawnRecord struct {
	VaultID   string `json:"vault_id"`
	Amount    uint64 `json:"amount"`
	By        string `json:"by"`
	Recipient string `json:"recipient"`
}

func (WithdrawnRecord) RecordType() RecordType { return RecordWithdrawn }

type VaultDestroyedRecord struct {
	VaultID string `json:"vault_id"`
	By      string `json:"by"`
}

func (VaultDestroyedRecord) RecordType() RecordType { return RecordVaultDestroyed }

type StakeOpenedRecord struct {
	StakeID   string `json:"stake_id"`
	VaultID   string `json:"vault_id"`
	Principal uint64 `json:"principal"`
	Owner     string `json:"owner"`
	Epoch     uint64 `json:"epoch"`
}

func (StakeOpenedRecord) RecordType() RecordType { return RecordStakeOpened }

type StakeSettledRecord struct {
	StakeID     string `json:"stake_id"`
	DeltaPoints uint64 `json:"delta_points"`
	TotalPoints uint64 `json:"total_points"`
	Epoch       uint64 `json:"epoch"`
}

func (StakeSettledRecord) RecordType() RecordType { return RecordStakeSettled }

type StakeClosedRecord struct {
	StakeID     string `json:"stake_id"`
	FinalPoints uint64 `json:"final_points"`
	Epoch       uint64 `json:"epoch"`
	Recipient   string `json:"recipient"`
}

func (StakeClosedRecord) RecordType() RecordType { return RecordStakeClosed }

// Record is any payload that knows its routing key.
type Record interface {
	RecordType() RecordType
}
