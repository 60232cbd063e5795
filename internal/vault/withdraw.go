/*

This file contains the withdrawal path: regular withdrawals, the
emergency-withdraw variant permitted only while paused, and the
withdrawable-amount calculation shared with the query surface.

Fee model (pinned): redeeming s of an account's S shares attributes
basis * s / S of its deposit basis as principal, and the basis is reduced
by the same amount so repeated partial withdrawals never double-count
principal. The performance fee applies to the gain above that principal;
the withdrawal fee applies to the gross payout.

*/

package vault

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/yieldforge/yvm/internal/types"
)

// payoutBreakdown is the computed settlement of a redemption.
type payoutBreakdown struct {
	Gross          sdkmath.Int
	Principal      sdkmath.Int
	PerformanceFee sdkmath.Int
	WithdrawalFee  sdkmath.Int
	Net            sdkmath.Int
}

// Withdraw burns sharesToRedeem from the caller and pays out the net
// proceeds after fees. Returns the net payout.
func (e *Engine) Withdraw(caller types.AccountID, sharesToRedeem sdkmath.Int) (sdkmath.Int, error) {
	if e.state.IsPaused {
		return sdkmath.ZeroInt(), ErrPaused
	}
	return e.redeem(caller, sharesToRedeem, false)
}

// EmergencyWithdraw is the sole operation permitted while paused. It skips
// the withdrawal cooldown so users can exit during an incident, but still
// enforces share ownership, reentrancy, withdrawal limits, and fees.
func (e *Engine) EmergencyWithdraw(caller types.AccountID, sharesToRedeem sdkmath.Int) (sdkmath.Int, error) {
	if !e.state.IsPaused {
		return sdkmath.ZeroInt(), ErrNotPaused
	}
	return e.redeem(caller, sharesToRedeem, true)
}

func (e *Engine) redeem(caller types.AccountID, sharesToRedeem sdkmath.Int, emergency bool) (sdkmath.Int, error) {
	release, err := e.acquire()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer release()

	if sharesToRedeem.IsNil() || !sharesToRedeem.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroAmount
	}
	account, ok := e.accounts[caller]
	if !ok || sharesToRedeem.GT(account.SharesOwned) {
		return sdkmath.ZeroInt(), ErrInsufficientShares
	}

	tick := e.clock.Now()
	if !emergency && account.HasWithdrawn {
		if tick-account.LastWithdrawTick < e.params.WithdrawalCooldownTicks {
			return sdkmath.ZeroInt(), ErrCooldownActive
		}
	}

	breakdown := e.settle(account, sharesToRedeem)
	if limit, ok := e.withdrawalLimits[caller]; ok && breakdown.Net.GT(limit) {
		return sdkmath.ZeroInt(), ErrLimitExceeded
	}

	// Both transfers must fully succeed before the ledger mutation. A fee
	// transfer failing after the caller was paid reverses the payout, so a
	// failed redemption never leaves a partial transfer behind.
	totalFees := breakdown.PerformanceFee.Add(breakdown.WithdrawalFee)
	if breakdown.Net.IsPositive() {
		if err := e.mover.MoveOut(caller, breakdown.Net); err != nil {
			return sdkmath.ZeroInt(), fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
	}
	if totalFees.IsPositive() {
		if err := e.mover.MoveOut(e.state.Treasury, totalFees); err != nil {
			if breakdown.Net.IsPositive() {
				if reverseErr := e.mover.MoveIn(caller, breakdown.Net); reverseErr != nil {
					e.log.Error().Err(reverseErr).
						Str("account", string(caller)).
						Str("amount", breakdown.Net.String()).
						Msg("Failed to reverse payout after fee transfer failure")
				}
			}
			return sdkmath.ZeroInt(), fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
	}

	e.touchGlobalAccumulator(tick)
	e.touchAccountAccumulator(account, tick)

	account.SharesOwned = account.SharesOwned.Sub(sharesToRedeem)
	account.BaseAssetDeposited = account.BaseAssetDeposited.Sub(breakdown.Principal)
	account.LastWithdrawTick = tick
	account.HasWithdrawn = true
	e.state.TotalShares = e.state.TotalShares.Sub(sharesToRedeem)
	e.state.TotalBaseAsset = e.state.TotalBaseAsset.Sub(breakdown.Gross)
	e.state.TotalDepositedGross = e.state.TotalDepositedGross.Sub(breakdown.Principal)
	e.state.TotalFeesCollected = e.state.TotalFeesCollected.Add(totalFees)

	e.log.Info().
		Str("account", string(caller)).
		Str("shares", sharesToRedeem.String()).
		Str("gross", breakdown.Gross.String()).
		Str("net", breakdown.Net.String()).
		Str("fees", totalFees.String()).
		Bool("emergency", emergency).
		Uint64("tick", tick).
		Msg("Withdrawal settled")

	return breakdown.Net, nil
}

// settle computes the payout breakdown for redeeming shares from an
// account at the current share price. Pure computation, no writes.
func (e *Engine) settle(account *types.UserAccount, sharesToRedeem sdkmath.Int) payoutBreakdown {
	gross := sharesToRedeem.Mul(e.sharePrice()).QuoRaw(PricePrecision)

	principal := account.BaseAssetDeposited.Mul(sharesToRedeem).Quo(account.SharesOwned)

	gain := gross.Sub(principal)
	performanceFee := sdkmath.ZeroInt()
	if gain.IsPositive() {
		performanceFee = gain.MulRaw(int64(e.fees.PerformanceFeeBps)).QuoRaw(bpsDenominator)
	}
	withdrawalFee := gross.MulRaw(int64(e.fees.WithdrawalFeeBps)).QuoRaw(bpsDenominator)

	return payoutBreakdown{
		Gross:          gross,
		Principal:      principal,
		PerformanceFee: performanceFee,
		WithdrawalFee:  withdrawalFee,
		Net:            gross.Sub(performanceFee).Sub(withdrawalFee),
	}
}

// CalculateWithdrawableAmount returns the net payout the account would
// receive for redeeming its full share balance right now, capped at any
// configured withdrawal limit. Absent accounts read as zero.
func (e *Engine) CalculateWithdrawableAmount(account types.AccountID) sdkmath.Int {
	record, ok := e.accounts[account]
	if !ok || record.SharesOwned.IsZero() {
		return sdkmath.ZeroInt()
	}
	net := e.settle(record, record.SharesOwned).Net
	if limit, ok := e.withdrawalLimits[account]; ok && net.GT(limit) {
		return limit
	}
	return net
}
