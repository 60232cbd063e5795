package vault

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/yieldforge/yvm/internal/bank"
	"github.com/yieldforge/yvm/internal/clock"
	"github.com/yieldforge/yvm/internal/types"
)

const (
	testOwner    = types.AccountID("owner")
	testTreasury = types.AccountID("treasury")
	alice        = types.AccountID("alice")
	bob          = types.AccountID("bob")
)

func testParams() types.VaultParameters {
	return types.VaultParameters{
		MinDeposit:               sdkmath.NewInt(1_000_000),
		MaxDeposit:               sdkmath.NewInt(1_000_000_000_000),
		DepositCooldownTicks:     10,
		WithdrawalCooldownTicks:  10,
		CompoundCooldownTicks:    6,
		PerformanceFeeCeilingBps: 1000,
		WithdrawalFeeCeilingBps:  1000,
		SlippageCeilingBps:       1000,
		BronzeThreshold:          sdkmath.NewInt(100_000_000),
		SilverThreshold:          sdkmath.NewInt(10_000_000_000),
		GoldThreshold:            sdkmath.NewInt(1_000_000_000_000),
		TicksPerYear:             52_560,
	}
}

func newTestEngine(t *testing.T) (*Engine, *clock.Manual, *bank.Ledger) {
	t.Helper()

	ticks := clock.NewManual(1)
	ledger := bank.NewLedger()
	seed := sdkmath.NewInt(10_000_000_000_000)
	for _, account := range []types.AccountID{testOwner, alice, bob} {
		ledger.Credit(account, seed)
	}

	engine, err := NewEngine(Config{
		Owner:          testOwner,
		Treasury:       testTreasury,
		Clock:          ticks,
		Mover:          ledger,
		Params:         testParams(),
		Fees:           types.FeeConfig{PerformanceFeeBps: 500, WithdrawalFeeBps: 50},
		MaxSlippageBps: 500,
	})
	require.NoError(t, err)
	return engine, ticks, ledger
}

// requireSharesConserved checks the aggregate invariant: the sum of all
// account shares equals the outstanding total.
func requireSharesConserved(t *testing.T, engine *Engine) {
	t.Helper()
	sum := sdkmath.ZeroInt()
	for _, account := range engine.accounts {
		sum = sum.Add(account.SharesOwned)
	}
	require.True(t, sum.Equal(engine.state.TotalShares),
		"share supply mismatch: accounts sum %s, total %s", sum, engine.state.TotalShares)
}

func TestNewEngine_Validation(t *testing.T) {
	ticks := clock.NewManual(1)
	base := Config{
		Owner:    testOwner,
		Treasury: testTreasury,
		Clock:    ticks,
		Params:   testParams(),
		Fees:     types.FeeConfig{PerformanceFeeBps: 500, WithdrawalFeeBps: 50},
	}

	_, err := NewEngine(base)
	require.NoError(t, err)

	missingOwner := base
	missingOwner.Owner = ""
	_, err = NewEngine(missingOwner)
	require.Error(t, err)

	feeOverCeiling := base
	feeOverCeiling.Fees = types.FeeConfig{PerformanceFeeBps: 1001}
	_, err = NewEngine(feeOverCeiling)
	require.ErrorIs(t, err, ErrFeeTooHigh)

	slippageOverCeiling := base
	slippageOverCeiling.MaxSlippageBps = 1500
	_, err = NewEngine(slippageOverCeiling)
	require.ErrorIs(t, err, ErrSlippageTooHigh)
}

func TestPause_OwnerOnly(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	require.ErrorIs(t, engine.EmergencyPause(alice), ErrNotOwner)
	require.False(t, engine.GetVaultInfo().IsPaused)

	require.NoError(t, engine.EmergencyPause(testOwner))
	require.True(t, engine.GetVaultInfo().IsPaused)

	require.ErrorIs(t, engine.ResumeOperations(bob), ErrNotOwner)
	require.NoError(t, engine.ResumeOperations(testOwner))
	require.False(t, engine.GetVaultInfo().IsPaused)
}

func TestPause_Idempotent(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	require.NoError(t, engine.ResumeOperations(testOwner)) // already active
	require.False(t, engine.GetVaultInfo().IsPaused)

	require.NoError(t, engine.EmergencyPause(testOwner))
	require.NoError(t, engine.EmergencyPause(testOwner)) // already paused
	require.True(t, engine.GetVaultInfo().IsPaused)
}

func TestUpdateMaxSlippage(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	err := engine.UpdateMaxSlippage(testOwner, 1500)
	require.ErrorIs(t, err, ErrSlippageTooHigh)
	require.Equal(t, uint64(500), engine.GetMaxSlippageBps())

	require.NoError(t, engine.UpdateMaxSlippage(testOwner, 300))
	require.Equal(t, uint64(300), engine.GetMaxSlippageBps())

	require.ErrorIs(t, engine.UpdateMaxSlippage(alice, 300), ErrNotOwner)
}

func TestSetTreasury(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	require.ErrorIs(t, engine.SetTreasury(alice, alice), ErrNotOwner)

	newTreasury := types.AccountID("treasury2")
	require.NoError(t, engine.SetTreasury(testOwner, newTreasury))
	require.Equal(t, newTreasury, engine.GetFeeInfo().Treasury)

	require.Error(t, engine.SetTreasury(testOwner, ""))
}

func TestUpdateFees(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	require.ErrorIs(t, engine.UpdateFees(alice, 100, 10), ErrNotOwner)
	require.ErrorIs(t, engine.UpdateFees(testOwner, 1001, 10), ErrFeeTooHigh)
	require.ErrorIs(t, engine.UpdateFees(testOwner, 100, 1001), ErrFeeTooHigh)

	require.NoError(t, engine.UpdateFees(testOwner, 300, 25))
	fees := engine.GetFeeInfo()
	require.Equal(t, uint64(300), fees.PerformanceFeeBps)
	require.Equal(t, uint64(25), fees.WithdrawalFeeBps)
}

func TestCooldown_FirstActionAtTickZero(t *testing.T) {
	ticks := clock.NewManual(0)
	ledger := bank.NewLedger()
	ledger.Credit(alice, sdkmath.NewInt(10_000_000_000))

	engine, err := NewEngine(Config{
		Owner:          testOwner,
		Treasury:       testTreasury,
		Clock:          ticks,
		Mover:          ledger,
		Params:         testParams(),
		Fees:           types.FeeConfig{PerformanceFeeBps: 500, WithdrawalFeeBps: 50},
		MaxSlippageBps: 500,
	})
	require.NoError(t, err)

	// A first deposit at tick zero still arms the cooldown.
	_, err = engine.Deposit(alice, sdkmath.NewInt(10_000_000))
	require.NoError(t, err)
	_, err = engine.Deposit(alice, sdkmath.NewInt(10_000_000))
	require.ErrorIs(t, err, ErrCooldownActive)

	// Same for the first withdrawal.
	_, err = engine.Withdraw(alice, sdkmath.NewInt(1_000_000))
	require.NoError(t, err)
	_, err = engine.Withdraw(alice, sdkmath.NewInt(1_000_000))
	require.ErrorIs(t, err, ErrCooldownActive)

	ticks.Advance(testParams().WithdrawalCooldownTicks)
	_, err = engine.Withdraw(alice, sdkmath.NewInt(1_000_000))
	require.NoError(t, err)
}

// reentrantMover re-enters the engine from inside the transfer callback,
// the attack pattern the reentrancy lock exists to stop.
type reentrantMover struct {
	engine   *Engine
	innerErr error
}

func (m *reentrantMover) MoveIn(from types.AccountID, amount sdkmath.Int) error {
	_, m.innerErr = m.engine.Deposit(from, amount)
	return m.innerErr
}

func (m *reentrantMover) MoveOut(types.AccountID, sdkmath.Int) error { return nil }

func (m *reentrantMover) AccrueIn(sdkmath.Int) error { return nil }

func TestDeposit_ReentrancyBlocked(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	mover := &reentrantMover{engine: engine}
	engine.mover = mover

	_, err := engine.Deposit(alice, sdkmath.NewInt(5_000_000))
	require.ErrorIs(t, err, ErrReentrancyDetected)
	require.ErrorIs(t, mover.innerErr, ErrReentrancyDetected)

	// No partial state from the failed call.
	require.True(t, engine.GetVaultInfo().TotalShares.IsZero())
	require.True(t, engine.GetUserInfo(alice).SharesOwned.IsZero())

	// The lock is released on the failure path: a well-behaved mover can
	// deposit immediately afterwards.
	engine.mover = NopMover{}
	minted, err := engine.Deposit(alice, sdkmath.NewInt(5_000_000))
	require.NoError(t, err)
	require.True(t, minted.Equal(sdkmath.NewInt(5_000_000)))
}
