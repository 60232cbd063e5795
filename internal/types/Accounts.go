/*

This file contains the per-account types: user positions, time-weighted
balance tracking, and the boost tier ladder.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// UserAccount is the per-account ledger record, created lazily on the first
// deposit. Records are never deleted, only zeroed, to preserve history.
type UserAccount struct {
	BaseAssetDeposited      sdkmath.Int `json:"base_asset_deposited"` // Remaining principal basis; reduced pro-rata on withdrawal.
	SharesOwned             sdkmath.Int `json:"shares_owned"`
	LastDepositTick         uint64      `json:"last_deposit_tick"`
	LastWithdrawTick        uint64      `json:"last_withdraw_tick"`
	HasWithdrawn            bool        `json:"has_withdrawn"` // Distinguishes "never withdrew" from a withdrawal at tick zero.
	TimeWeightedAccumulator sdkmath.Int `json:"time_weighted_accumulator"` // Integral of shares held over ticks; reset on reward claim.
	LastAccumulatorTick     uint64      `json:"last_accumulator_tick"`
}

// BoostTier is the discrete reward multiplier band derived from an account's
// time-weighted balance accumulation. It is advisory for reward estimation
// and claim apportioning; it is not an independent ledger balance.
type BoostTier int

const (
	BoostNone BoostTier = iota
	BoostBronze
	BoostSilver
	BoostGold
)

// String returns the human-readable tier name.
func (t BoostTier) String() string {
	switch t {
	case BoostBronze:
		return "bronze"
	case BoostSilver:
		return "silver"
	case BoostGold:
		return "gold"
	default:
		return "none"
	}
}

// MultiplierBps returns the reward multiplier for the tier in basis points,
// where 10000 means no boost.
func (t BoostTier) MultiplierBps() uint64 {
	switch t {
	case BoostBronze:
		return 11000 // +10%
	case BoostSilver:
		return 12500 // +25%
	case BoostGold:
		return 15000 // +50%
	default:
		return 10000
	}
}

// UserInfo is the read-only account summary.
type UserInfo struct {
	BaseAssetDeposited sdkmath.Int `json:"base_asset_deposited"`
	SharesOwned        sdkmath.Int `json:"shares_owned"`
	LastDepositTick    uint64      `json:"last_deposit_tick"`
	WithdrawableAmount sdkmath.Int `json:"withdrawable_amount"` // Net payout for a full redemption, after fees and limits.
}

// UserBoostInfo is the read-only boost summary for an account.
type UserBoostInfo struct {
	Tier          BoostTier `json:"tier"`
	TierName      string    `json:"tier_name"`
	MultiplierBps uint64    `json:"multiplier_bps"`
}

// UserTimeWeightedData exposes the raw accumulator state for an account,
// projected to the current tick.
type UserTimeWeightedData struct {
	Accumulator    sdkmath.Int `json:"accumulator"`
	LastUpdateTick uint64      `json:"last_update_tick"`
}

// BatchDepositEntry is a single (account, amount) pair in an owner-driven
// batch deposit (migrations and airdrops).
type BatchDepositEntry struct {
	Account AccountID   `json:"account"`
	Amount  sdkmath.Int `json:"amount"`
}
