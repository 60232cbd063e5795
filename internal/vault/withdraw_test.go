package vault

import (
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/yieldforge/yvm/internal/bank"
	"github.com/yieldforge/yvm/internal/types"
)

func TestWithdraw_Validation(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.Withdraw(alice, sdkmath.ZeroInt())
	require.ErrorIs(t, err, ErrZeroAmount)

	_, err = engine.Withdraw(alice, sdkmath.NewInt(1))
	require.ErrorIs(t, err, ErrInsufficientShares)

	_, err = engine.Deposit(alice, sdkmath.NewInt(10_000_000))
	require.NoError(t, err)

	_, err = engine.Withdraw(alice, sdkmath.NewInt(10_000_001))
	require.ErrorIs(t, err, ErrInsufficientShares)
}

func TestWithdraw_NoGainNoPerformanceFee(t *testing.T) {
	engine, _, ledger := newTestEngine(t)

	_, err := engine.Deposit(alice, sdkmath.NewInt(100_000_000))
	require.NoError(t, err)

	// Price is still 1:1, so gross == principal and only the withdrawal
	// fee applies: 0.5% of 50_000_000.
	net, err := engine.Withdraw(alice, sdkmath.NewInt(50_000_000))
	require.NoError(t, err)
	require.True(t, net.Equal(sdkmath.NewInt(49_750_000)))

	require.True(t, ledger.BalanceOf(testTreasury).Equal(sdkmath.NewInt(250_000)))
	require.True(t, engine.GetVaultInfo().TotalShares.Equal(sdkmath.NewInt(50_000_000)))
	requireSharesConserved(t, engine)
}

func TestWithdraw_FeesOnGain(t *testing.T) {
	engine, ticks, ledger := newTestEngine(t)

	_, err := engine.Deposit(alice, sdkmath.NewInt(100_000_000))
	require.NoError(t, err)

	// Raise the share price to 1.1 via compounding.
	require.NoError(t, engine.AccrueReward(sdkmath.NewInt(10_000_000)))
	ticks.Advance(testParams().CompoundCooldownTicks)
	_, err = engine.CompoundRewards(bob)
	require.NoError(t, err)
	require.True(t, engine.GetSharePrice().Equal(sdkmath.NewInt(1_100_000)))

	// Redeem half: gross 55_000_000, principal 50_000_000, gain 5_000_000.
	// Performance fee 5% of gain = 250_000; withdrawal fee 0.5% of gross
	// = 275_000; net = 54_475_000.
	net, err := engine.Withdraw(alice, sdkmath.NewInt(50_000_000))
	require.NoError(t, err)
	require.True(t, net.Equal(sdkmath.NewInt(54_475_000)))

	require.True(t, ledger.BalanceOf(testTreasury).Equal(sdkmath.NewInt(525_000)))

	stats := engine.GetVaultStatistics()
	require.True(t, stats.TotalFeesCollected.Equal(sdkmath.NewInt(525_000)))

	// The remaining basis halved along with the shares.
	info := engine.GetUserInfo(alice)
	require.True(t, info.BaseAssetDeposited.Equal(sdkmath.NewInt(50_000_000)))
	require.True(t, info.SharesOwned.Equal(sdkmath.NewInt(50_000_000)))
	requireSharesConserved(t, engine)
}

// feeRejectingMover delegates to a real ledger but rejects the treasury leg
// of a redemption, after the caller payout already went through.
type feeRejectingMover struct {
	ledger *bank.Ledger
}

func (m *feeRejectingMover) MoveIn(from types.AccountID, amount sdkmath.Int) error {
	return m.ledger.MoveIn(from, amount)
}

func (m *feeRejectingMover) MoveOut(to types.AccountID, amount sdkmath.Int) error {
	if to == testTreasury {
		return errors.New("treasury rejected the transfer")
	}
	return m.ledger.MoveOut(to, amount)
}

func (m *feeRejectingMover) AccrueIn(amount sdkmath.Int) error {
	return m.ledger.AccrueIn(amount)
}

func TestWithdraw_FeeTransferFailureRollsBack(t *testing.T) {
	engine, _, ledger := newTestEngine(t)

	_, err := engine.Deposit(alice, sdkmath.NewInt(100_000_000))
	require.NoError(t, err)

	engine.mover = &feeRejectingMover{ledger: ledger}
	balanceBefore := ledger.BalanceOf(alice)

	_, err = engine.Withdraw(alice, sdkmath.NewInt(50_000_000))
	require.ErrorIs(t, err, ErrTransferFailed)

	// The caller payout was reversed and no shares were burned, so the
	// failed redemption left no value behind on either side.
	require.True(t, ledger.BalanceOf(alice).Equal(balanceBefore))
	require.True(t, ledger.VaultBalance().Equal(sdkmath.NewInt(100_000_000)))
	require.True(t, ledger.BalanceOf(testTreasury).IsZero())
	require.True(t, engine.GetUserInfo(alice).SharesOwned.Equal(sdkmath.NewInt(100_000_000)))
	require.True(t, engine.GetVaultInfo().TotalShares.Equal(sdkmath.NewInt(100_000_000)))
	requireSharesConserved(t, engine)

	// With the transfer path restored, the same redemption settles fully.
	engine.mover = ledger
	net, err := engine.Withdraw(alice, sdkmath.NewInt(50_000_000))
	require.NoError(t, err)
	require.True(t, net.Equal(sdkmath.NewInt(49_750_000)))
	require.True(t, ledger.BalanceOf(testTreasury).Equal(sdkmath.NewInt(250_000)))
}

func TestWithdraw_FullRedemptionAfterCompound(t *testing.T) {
	engine, _, ledger := newTestEngine(t)

	_, err := engine.Deposit(alice, sdkmath.NewInt(100_000_000))
	require.NoError(t, err)
	require.NoError(t, engine.AccrueReward(sdkmath.NewInt(10_000_000)))
	_, err = engine.CompoundRewards(bob)
	require.NoError(t, err)

	// Accrual credited the vault's holdings, so the whole supply redeems
	// at the quoted 1.1 price: gross 110_000_000, performance fee 500_000,
	// withdrawal fee 550_000, net 108_950_000.
	balanceBefore := ledger.BalanceOf(alice)
	net, err := engine.Withdraw(alice, sdkmath.NewInt(100_000_000))
	require.NoError(t, err)
	require.True(t, net.Equal(sdkmath.NewInt(108_950_000)))

	require.True(t, ledger.BalanceOf(alice).Sub(balanceBefore).Equal(net))
	require.True(t, ledger.BalanceOf(testTreasury).Equal(sdkmath.NewInt(1_050_000)))
	require.True(t, ledger.VaultBalance().IsZero())
	require.True(t, engine.GetVaultInfo().TotalShares.IsZero())
}

func TestWithdraw_Cooldown(t *testing.T) {
	engine, ticks, _ := newTestEngine(t)

	_, err := engine.Deposit(alice, sdkmath.NewInt(100_000_000))
	require.NoError(t, err)

	// The first withdrawal has no prior to space from.
	_, err = engine.Withdraw(alice, sdkmath.NewInt(10_000_000))
	require.NoError(t, err)

	_, err = engine.Withdraw(alice, sdkmath.NewInt(10_000_000))
	require.ErrorIs(t, err, ErrCooldownActive)

	ticks.Advance(testParams().WithdrawalCooldownTicks)
	_, err = engine.Withdraw(alice, sdkmath.NewInt(10_000_000))
	require.NoError(t, err)
}

func TestWithdraw_Limit(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.Deposit(alice, sdkmath.NewInt(100_000_000))
	require.NoError(t, err)

	require.NoError(t, engine.SetWithdrawalLimit(testOwner, alice, sdkmath.NewInt(1_000_000)))

	_, err = engine.Withdraw(alice, sdkmath.NewInt(50_000_000))
	require.ErrorIs(t, err, ErrLimitExceeded)

	// Under the cap the withdrawal clears: 1_000_000 shares gross
	// 1_000_000, net 995_000 after the 0.5% withdrawal fee.
	net, err := engine.Withdraw(alice, sdkmath.NewInt(1_000_000))
	require.NoError(t, err)
	require.True(t, net.Equal(sdkmath.NewInt(995_000)))

	// Clearing the limit restores unlimited withdrawals.
	require.NoError(t, engine.SetWithdrawalLimit(testOwner, alice, sdkmath.Int{}))
	_, ok := engine.GetWithdrawalLimit(alice)
	require.False(t, ok)
}

func TestEmergencyWithdraw(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.Deposit(alice, sdkmath.NewInt(100_000_000))
	require.NoError(t, err)

	// Only permitted while paused.
	_, err = engine.EmergencyWithdraw(alice, sdkmath.NewInt(10_000_000))
	require.ErrorIs(t, err, ErrNotPaused)

	require.NoError(t, engine.EmergencyPause(testOwner))

	// Regular withdrawal is blocked while paused.
	_, err = engine.Withdraw(alice, sdkmath.NewInt(10_000_000))
	require.ErrorIs(t, err, ErrPaused)

	// Emergency withdrawal works, skips the cooldown, and still charges
	// the withdrawal fee.
	net, err := engine.EmergencyWithdraw(alice, sdkmath.NewInt(10_000_000))
	require.NoError(t, err)
	require.True(t, net.Equal(sdkmath.NewInt(9_950_000)))

	net, err = engine.EmergencyWithdraw(alice, sdkmath.NewInt(10_000_000))
	require.NoError(t, err)
	require.True(t, net.Equal(sdkmath.NewInt(9_950_000)))

	// Ownership is still enforced.
	_, err = engine.EmergencyWithdraw(bob, sdkmath.NewInt(1))
	require.ErrorIs(t, err, ErrInsufficientShares)
	requireSharesConserved(t, engine)
}

func TestCalculateWithdrawableAmount(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	require.True(t, engine.CalculateWithdrawableAmount(alice).IsZero())

	_, err := engine.Deposit(alice, sdkmath.NewInt(100_000_000))
	require.NoError(t, err)

	// Full redemption at 1:1 less the 0.5% withdrawal fee.
	require.True(t, engine.CalculateWithdrawableAmount(alice).Equal(sdkmath.NewInt(99_500_000)))
	require.True(t, engine.GetUserInfo(alice).WithdrawableAmount.Equal(sdkmath.NewInt(99_500_000)))

	// A configured limit caps the reported amount.
	require.NoError(t, engine.SetWithdrawalLimit(testOwner, alice, sdkmath.NewInt(5_000_000)))
	require.True(t, engine.CalculateWithdrawableAmount(alice).Equal(sdkmath.NewInt(5_000_000)))
}
