/*

This file contains the read-only query surface. Queries observe committed
state only and never mutate; absent accounts read as zero-initialized.

*/

package vault

import (
	sdkmath "cosmossdk.io/math"

	"github.com/yieldforge/yvm/internal/types"
)

// GetVaultInfo returns the vault-level summary.
func (e *Engine) GetVaultInfo() types.VaultInfo {
	return types.VaultInfo{
		TotalBaseAsset:     e.state.TotalBaseAsset,
		TotalRewardAccrued: e.state.TotalRewardAccrued,
		TotalShares:        e.state.TotalShares,
		IsPaused:           e.state.IsPaused,
		LastCompoundTick:   e.state.LastCompoundTick,
		CurrentCycle:       e.state.CurrentCycle,
	}
}

// GetSharePrice returns the PRECISION-scaled share price.
func (e *Engine) GetSharePrice() sdkmath.Int {
	return e.sharePrice()
}

// GetFeeInfo returns the fee schedule and treasury destination.
func (e *Engine) GetFeeInfo() types.FeeInfo {
	return types.FeeInfo{
		PerformanceFeeBps: e.fees.PerformanceFeeBps,
		WithdrawalFeeBps:  e.fees.WithdrawalFeeBps,
		Treasury:          e.state.Treasury,
	}
}

// GetMaxSlippageBps returns the configured slippage bound.
func (e *Engine) GetMaxSlippageBps() uint64 {
	return e.state.MaxSlippageBps
}

// IsBlacklisted reports whether an account is blocked from depositing.
func (e *Engine) IsBlacklisted(account types.AccountID) bool {
	return e.blacklist[account]
}

// GetWithdrawalLimit returns the configured limit for an account; the
// second return is false when the account is unlimited.
func (e *Engine) GetWithdrawalLimit(account types.AccountID) (sdkmath.Int, bool) {
	limit, ok := e.withdrawalLimits[account]
	return limit, ok
}

// GetUserInfo returns the per-account summary, including the net amount a
// full redemption would pay out right now.
func (e *Engine) GetUserInfo(account types.AccountID) types.UserInfo {
	record, ok := e.accounts[account]
	if !ok {
		return types.UserInfo{
			BaseAssetDeposited: sdkmath.ZeroInt(),
			SharesOwned:        sdkmath.ZeroInt(),
			WithdrawableAmount: sdkmath.ZeroInt(),
		}
	}
	return types.UserInfo{
		BaseAssetDeposited: record.BaseAssetDeposited,
		SharesOwned:        record.SharesOwned,
		LastDepositTick:    record.LastDepositTick,
		WithdrawableAmount: e.CalculateWithdrawableAmount(account),
	}
}

// GetUserBoostInfo returns the account's boost tier, derived from its
// accumulator projected to the current tick.
func (e *Engine) GetUserBoostInfo(account types.AccountID) types.UserBoostInfo {
	tier := types.BoostNone
	if record, ok := e.accounts[account]; ok {
		tier = e.tierFor(projectedAccumulator(record, e.clock.Now()))
	}
	return types.UserBoostInfo{
		Tier:          tier,
		TierName:      tier.String(),
		MultiplierBps: tier.MultiplierBps(),
	}
}

// GetUserTimeWeightedData returns the raw accumulator state projected to
// the current tick.
func (e *Engine) GetUserTimeWeightedData(account types.AccountID) types.UserTimeWeightedData {
	record, ok := e.accounts[account]
	if !ok {
		return types.UserTimeWeightedData{Accumulator: sdkmath.ZeroInt()}
	}
	return types.UserTimeWeightedData{
		Accumulator:    projectedAccumulator(record, e.clock.Now()),
		LastUpdateTick: record.LastAccumulatorTick,
	}
}

// GetUserEstimatedRewards returns the advisory boosted entitlement the
// account could claim right now. Purely informational.
func (e *Engine) GetUserEstimatedRewards(account types.AccountID) sdkmath.Int {
	record, ok := e.accounts[account]
	if !ok {
		return sdkmath.ZeroInt()
	}

	tick := e.clock.Now()
	userAccumulator := projectedAccumulator(record, tick)
	globalAccumulator := e.globalAccumulator
	if tick > e.lastAccumulatorTick {
		elapsed := sdkmath.NewIntFromUint64(tick - e.lastAccumulatorTick)
		globalAccumulator = globalAccumulator.Add(e.state.TotalShares.Mul(elapsed))
	}
	if e.state.RewardBalance.IsZero() || !globalAccumulator.IsPositive() || !userAccumulator.IsPositive() {
		return sdkmath.ZeroInt()
	}

	base := e.state.RewardBalance.Mul(userAccumulator).Quo(globalAccumulator)
	tier := e.tierFor(userAccumulator)
	boosted := base.MulRaw(int64(tier.MultiplierBps())).QuoRaw(bpsDenominator)
	if boosted.GT(e.state.RewardBalance) {
		return e.state.RewardBalance
	}
	return boosted
}
