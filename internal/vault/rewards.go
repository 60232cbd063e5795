/*

This file contains the reward flows: external reward accrual, permissionless
compounding into the share price, time-weighted boost tiers, and per-account
reward claims.

Claim model (pinned): claims are paid in base asset out of the undistributed
reward balance, apportioned by the claimer's share of the vault-wide
time-weighted accumulator and scaled by the boost tier multiplier, capped at
the remaining balance. Claiming never mints shares, so the share-supply
invariant is untouched; the claimer's accumulator resets to zero.

*/

package vault

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/yieldforge/yvm/internal/types"
)

// AccrueReward is the external reward-deposit channel: an opaque top-up of
// the vault's reward balance. It is not a user operation and bypasses the
// pause switch so rewards keep accruing through an incident.
func (e *Engine) AccrueReward(amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return ErrZeroAmount
	}
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	// The funds must land in the vault's holdings before the accounting
	// recognizes them, or later claims and redemptions would draw against
	// assets the mover does not hold.
	if err := e.mover.AccrueIn(amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	e.state.RewardBalance = e.state.RewardBalance.Add(amount)
	e.state.TotalRewardAccrued = e.state.TotalRewardAccrued.Add(amount)
	e.log.Debug().Str("amount", amount.String()).Msg("External reward accrued")
	return nil
}

// CompoundRewards converts the accumulated reward balance into vault
// holdings, raising the share price for all holders. Callable by anyone.
// A compound attempted before the cooldown elapses, or with nothing to
// compound, is a benign no-op returning zero, not an error.
func (e *Engine) CompoundRewards(caller types.AccountID) (sdkmath.Int, error) {
	if e.state.IsPaused {
		return sdkmath.ZeroInt(), ErrPaused
	}
	release, err := e.acquire()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer release()

	tick := e.clock.Now()
	if e.state.LastCompoundTick > 0 && tick-e.state.LastCompoundTick < e.params.CompoundCooldownTicks {
		return sdkmath.ZeroInt(), nil
	}
	if e.state.RewardBalance.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	compounded := e.state.RewardBalance
	e.state.TotalBaseAsset = e.state.TotalBaseAsset.Add(compounded)
	e.state.RewardBalance = sdkmath.ZeroInt()
	e.state.LastCompoundTick = tick

	e.log.Info().
		Str("caller", string(caller)).
		Str("compounded", compounded.String()).
		Str("sharePrice", e.sharePrice().String()).
		Uint64("tick", tick).
		Msg("Rewards compounded")

	return compounded, nil
}

// ClaimRewards pays the caller's reward entitlement in base asset and
// resets their time-weighted accumulator. Fails with ErrNoRewardsAvailable
// when the entitlement rounds to zero.
func (e *Engine) ClaimRewards(caller types.AccountID) (sdkmath.Int, error) {
	if e.state.IsPaused {
		return sdkmath.ZeroInt(), ErrPaused
	}
	release, err := e.acquire()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer release()

	account, ok := e.accounts[caller]
	if !ok {
		return sdkmath.ZeroInt(), ErrNoRewardsAvailable
	}

	tick := e.clock.Now()
	e.touchGlobalAccumulator(tick)
	e.touchAccountAccumulator(account, tick)

	entitlement := e.entitlementFor(account)
	if !entitlement.IsPositive() {
		return sdkmath.ZeroInt(), ErrNoRewardsAvailable
	}

	if err := e.mover.MoveOut(caller, entitlement); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	e.state.RewardBalance = e.state.RewardBalance.Sub(entitlement)
	e.globalAccumulator = e.globalAccumulator.Sub(account.TimeWeightedAccumulator)
	if e.globalAccumulator.IsNegative() {
		e.globalAccumulator = sdkmath.ZeroInt()
	}
	account.TimeWeightedAccumulator = sdkmath.ZeroInt()

	e.log.Info().
		Str("account", string(caller)).
		Str("entitlement", entitlement.String()).
		Uint64("tick", tick).
		Msg("Rewards claimed")

	return entitlement, nil
}

// entitlementFor apportions the reward balance by the account's share of
// the vault-wide time-weighted accumulator, scaled by its boost multiplier
// and capped at the remaining balance. Accumulators must be current.
func (e *Engine) entitlementFor(account *types.UserAccount) sdkmath.Int {
	if e.state.RewardBalance.IsZero() ||
		!e.globalAccumulator.IsPositive() ||
		!account.TimeWeightedAccumulator.IsPositive() {
		return sdkmath.ZeroInt()
	}

	base := e.state.RewardBalance.
		Mul(account.TimeWeightedAccumulator).
		Quo(e.globalAccumulator)
	tier := e.tierFor(account.TimeWeightedAccumulator)
	boosted := base.MulRaw(int64(tier.MultiplierBps())).QuoRaw(bpsDenominator)
	if boosted.GT(e.state.RewardBalance) {
		return e.state.RewardBalance
	}
	return boosted
}

// tierFor maps an accumulator value onto the boost tier ladder.
func (e *Engine) tierFor(accumulator sdkmath.Int) types.BoostTier {
	switch {
	case accumulator.GTE(e.params.GoldThreshold):
		return types.BoostGold
	case accumulator.GTE(e.params.SilverThreshold):
		return types.BoostSilver
	case accumulator.GTE(e.params.BronzeThreshold):
		return types.BoostBronze
	default:
		return types.BoostNone
	}
}

// projectedAccumulator returns an account's accumulator brought current to
// the given tick without writing anything, for the query surface.
func projectedAccumulator(account *types.UserAccount, tick uint64) sdkmath.Int {
	accumulator := account.TimeWeightedAccumulator
	if tick > account.LastAccumulatorTick {
		elapsed := sdkmath.NewIntFromUint64(tick - account.LastAccumulatorTick)
		accumulator = accumulator.Add(account.SharesOwned.Mul(elapsed))
	}
	return accumulator
}
