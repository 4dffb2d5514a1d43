package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vaultpoint/staking-vault/internal/auth"
	"github.com/vaultpoint/staking-vault/internal/config"
	"github.com/vaultpoint/staking-vault/internal/db"
	"github.com/vaultpoint/staking-vault/internal/db/model"
	"github.com/vaultpoint/staking-vault/internal/epoch"
	"github.com/vaultpoint/staking-vault/internal/queue"
	"github.com/vaultpoint/staking-vault/internal/services"
	"github.com/vaultpoint/staking-vault/internal/types"
)

const (
	testGovernanceToken = "gov-token"
	testCustodyToken    = "custody-token"
)

// fakeDB is an in-memory stand-in for the mongo-backed Database. It mirrors
// the same qualified-update semantics: conditional updates miss with the
// same typed errors the real layer produces.
type fakeDB struct {
	mu     sync.Mutex
	vaults map[string]*model.VaultDocument
	stakes map[string]*model.StakeDocument
	rate   *model.RateConfigDocument
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		vaults: make(map[string]*model.VaultDocument),
		stakes: make(map[string]*model.StakeDocument),
	}
}

func (f *fakeDB) Ping(ctx context.Context) error { return nil }

func (f *fakeDB) SaveNewVault(ctx context.Context, vaultDoc *model.VaultDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vaults[vaultDoc.ID]; ok {
		return &db.DuplicateKeyError{Key: vaultDoc.ID, Message: "vault already exists"}
	}
	copied := *vaultDoc
	f.vaults[vaultDoc.ID] = &copied
	return nil
}

func (f *fakeDB) GetVault(ctx context.Context, vaultID string) (*model.VaultDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vault, ok := f.vaults[vaultID]
	if !ok {
		return nil, &db.NotFoundError{Key: vaultID, Message: "vault not found"}
	}
	copied := *vault
	return &copied, nil
}

func (f *fakeDB) CreditVault(ctx context.Context, vaultID string, amount uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vault, ok := f.vaults[vaultID]
	if !ok {
		return &db.NotFoundError{Key: vaultID, Message: "vault not found"}
	}
	vault.Balance += amount
	vault.TotalDeposited += amount
	return nil
}

func (f *fakeDB) DebitVault(ctx context.Context, vaultID string, amount uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vault, ok := f.vaults[vaultID]
	if !ok {
		return &db.NotFoundError{Key: vaultID, Message: "vault not found"}
	}
	if vault.Balance < amount || vault.Balance-amount < vault.AttributedPrincipal {
		return &db.InsufficientBalanceError{
			Key:     vaultID,
			Message: fmt.Sprintf("vault %s cannot cover withdrawal of %d", vaultID, amount),
		}
	}
	vault.Balance -= amount
	vault.TotalWithdrawn += amount
	return nil
}

func (f *fakeDB) DeleteEmptyVault(ctx context.Context, vaultID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vault, ok := f.vaults[vaultID]
	if !ok {
		return &db.NotFoundError{Key: vaultID, Message: "vault not found"}
	}
	if vault.Balance != 0 {
		return &db.NotEmptyError{Key: vaultID, Message: "vault still holds value"}
	}
	delete(f.vaults, vaultID)
	return nil
}

func (f *fakeDB) GetStake(ctx context.Context, stakeID string) (*model.StakeDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stake, ok := f.stakes[stakeID]
	if !ok {
		return nil, &db.NotFoundError{Key: stakeID, Message: "stake not found"}
	}
	copied := *stake
	return &copied, nil
}

func (f *fakeDB) OpenStake(ctx context.Context, stakeDoc *model.StakeDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vault, ok := f.vaults[stakeDoc.VaultID]
	if !ok {
		return &db.NotFoundError{Key: stakeDoc.VaultID, Message: "vault not found"}
	}
	if _, ok := f.stakes[stakeDoc.ID]; ok {
		return &db.DuplicateKeyError{Key: stakeDoc.ID, Message: "stake already exists"}
	}
	vault.Balance += stakeDoc.Principal
	vault.TotalDeposited += stakeDoc.Principal
	vault.AttributedPrincipal += stakeDoc.Principal
	copied := *stakeDoc
	f.stakes[stakeDoc.ID] = &copied
	return nil
}

func (f *fakeDB) UpdateStakeSettlement(ctx context.Context, stakeID string, fromEpoch, toEpoch uint64, deltaPoints uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stake, ok := f.stakes[stakeID]
	if !ok || stake.State != types.StateActive || stake.LastSettledEpoch != fromEpoch {
		return &db.StaleSettlementError{
			Key:     stakeID,
			Message: fmt.Sprintf("stake %s not active or checkpoint moved past epoch %d", stakeID, fromEpoch),
		}
	}
	stake.LastSettledEpoch = toEpoch
	stake.AccruedPoints += deltaPoints
	return nil
}

func (f *fakeDB) CloseStake(ctx context.Context, stakeID string, qualifiedPreviousStates []types.StakeState, closedEpoch uint64) (*model.StakeDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stake, ok := f.stakes[stakeID]
	if !ok {
		return nil, &db.NotFoundError{Key: stakeID, Message: "stake not found"}
	}
	qualified := false
	for _, state := range qualifiedPreviousStates {
		if stake.State == state {
			qualified = true
		}
	}
	if !qualified {
		return nil, &db.NotFoundError{Key: stakeID, Message: "stake not found or current state is not qualified states"}
	}
	vault, ok := f.vaults[stake.VaultID]
	if !ok {
		return nil, &db.NotFoundError{Key: stake.VaultID, Message: "vault not found"}
	}
	if vault.Balance < stake.Principal || vault.AttributedPrincipal < stake.Principal {
		return nil, &db.InsufficientBalanceError{
			Key:     stake.VaultID,
			Message: fmt.Sprintf("vault %s cannot release principal %d", stake.VaultID, stake.Principal),
		}
	}
	stake.State = types.StateClosed
	stake.ClosedEpoch = &closedEpoch
	vault.Balance -= stake.Principal
	vault.TotalWithdrawn += stake.Principal
	vault.AttributedPrincipal -= stake.Principal
	copied := *stake
	return &copied, nil
}

func (f *fakeDB) FindUnsettledStakes(ctx context.Context, currentEpoch, limit uint64) ([]model.StakeDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.StakeDocument
	for _, stake := range f.stakes {
		if stake.State == types.StateActive && stake.LastSettledEpoch < currentEpoch {
			result = append(result, *stake)
		}
		if uint64(len(result)) == limit {
			break
		}
	}
	return result, nil
}

func (f *fakeDB) GetStakesByVault(ctx context.Context, vaultID string) ([]model.StakeDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.StakeDocument
	for _, stake := range f.stakes {
		if stake.VaultID == vaultID {
			result = append(result, *stake)
		}
	}
	return result, nil
}

func (f *fakeDB) GetRateConfig(ctx context.Context) (*model.RateConfigDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rate == nil {
		return nil, &db.NotFoundError{Key: model.RateConfigID, Message: "rate config not found"}
	}
	copied := *f.rate
	return &copied, nil
}

func (f *fakeDB) InitRateConfig(ctx context.Context, rateDoc *model.RateConfigDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rate == nil {
		copied := *rateDoc
		f.rate = &copied
	}
	return nil
}

func (f *fakeDB) UpdateRate(ctx context.Context, newAPYBasisPoints uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rate == nil || f.rate.MaxAPYBasisPoints < newAPYBasisPoints {
		return &db.NotFoundError{Key: model.RateConfigID, Message: "rate config not found or new rate exceeds maximum"}
	}
	f.rate.APYBasisPoints = newAPYBasisPoints
	return nil
}

// recorder captures published records in order.
type recorder struct {
	mu      sync.Mutex
	records []queue.Record
}

func (r *recorder) Publish(ctx context.Context, record queue.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *recorder) ofType(recordType queue.RecordType) []queue.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []queue.Record
	for _, record := range r.records {
		if record.RecordType() == recordType {
			matched = append(matched, record)
		}
	}
	return matched
}

// testClock advances only when the test says so.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) AdvanceEpochs(n uint64, epochDuration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Duration(n) * epochDuration)
}

// tickingClock jumps forward a fixed step on every read, so two consecutive
// reads never land in the same epoch.
type tickingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

type testEnv struct {
	service   *services.Service
	db        *fakeDB
	clock     *testClock
	recorder  *recorder
	epochCfg  config.EpochConfig
	govToken  string
	custToken string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clk := &testClock{now: testGenesis}
	return buildTestEnv(t, clk, clk.Now)
}

// newTickingEnv swaps in a clock that crosses an epoch boundary on every
// read. Tests use it to catch operations that read the clock more than once
// and assume both reads agree.
func newTickingEnv(t *testing.T) *testEnv {
	t.Helper()
	tick := &tickingClock{now: testGenesis, step: testEpochDuration}
	return buildTestEnv(t, nil, tick.Now)
}

var testGenesis = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

const testEpochDuration = 24 * time.Hour

func buildTestEnv(t *testing.T, clk *testClock, now func() time.Time) *testEnv {
	t.Helper()

	genesis := testGenesis
	epochDuration := testEpochDuration
	cfg := &config.Config{
		Epoch: config.EpochConfig{
			GenesisTime:   genesis,
			EpochDuration: epochDuration,
		},
		Rate: config.RateConfig{
			APYBasisPoints:    500,
			MaxAPYBasisPoints: 10_000,
			EpochsPerYear:     365,
		},
		Poller: config.PollerConfig{
			SettlementPollingInterval: time.Minute,
			SettlementBatchLimit:      100,
			SettlementConcurrency:     4,
		},
		Governance: config.GovernanceConfig{
			GovernanceToken: testGovernanceToken,
			CustodyToken:    testCustodyToken,
		},
	}

	fake := newFakeDB()
	rec := &recorder{}
	epochClock := epoch.NewClockWithNow(genesis, epochDuration, now)
	verifier := auth.NewStaticVerifier(testGovernanceToken, testCustodyToken)

	service := services.NewService(cfg, fake, rec, epochClock, verifier)
	service.BootstrapRateConfig(t.Context())

	return &testEnv{
		service:   service,
		db:        fake,
		clock:     clk,
		recorder:  rec,
		epochCfg:  cfg.Epoch,
		govToken:  testGovernanceToken,
		custToken: testCustodyToken,
	}
}

func (e *testEnv) advanceEpochs(n uint64) {
	e.clock.AdvanceEpochs(n, e.epochCfg.EpochDuration)
}
