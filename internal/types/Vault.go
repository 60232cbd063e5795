/*

This file contains the core vault state types: the singleton vault ledger
aggregate and the fee configuration.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// AccountID identifies an account interacting with the vault.
type AccountID string

// VaultState is the singleton ledger aggregate. It is owned and mutated
// exclusively by the vault engine; readers observe committed state only.
type VaultState struct {
	TotalBaseAsset      sdkmath.Int `json:"total_base_asset"`      // Total base-asset units held by the vault.
	TotalRewardAccrued  sdkmath.Int `json:"total_reward_accrued"`  // Cumulative external reward ever received (monotone counter).
	RewardBalance       sdkmath.Int `json:"reward_balance"`        // External reward received but not yet compounded or claimed.
	TotalShares         sdkmath.Int `json:"total_shares"`          // Outstanding shares; zero only before the first deposit.
	TotalDepositedGross sdkmath.Int `json:"total_deposited_gross"` // Outstanding deposited principal; reduced as principal is withdrawn.
	TotalFeesCollected  sdkmath.Int `json:"total_fees_collected"`  // Cumulative fees routed to the treasury.
	IsPaused            bool        `json:"is_paused"`
	LastCompoundTick    uint64      `json:"last_compound_tick"`
	CurrentCycle        uint64      `json:"current_cycle"` // Next APY snapshot cycle ID; increments on each snapshot.
	Treasury            AccountID   `json:"treasury"`
	MaxSlippageBps      uint64      `json:"max_slippage_bps"`
}

// FeeConfig holds the fee rates in basis points. Rates are bounded by the
// ceilings in VaultParameters, enforced whenever they are updated.
type FeeConfig struct {
	PerformanceFeeBps uint64 `json:"performance_fee_bps"` // Charged on the gain portion of a withdrawal.
	WithdrawalFeeBps  uint64 `json:"withdrawal_fee_bps"`  // Charged on the gross payout of a withdrawal.
}

// VaultInfo is the read-only summary returned by the vault info query.
type VaultInfo struct {
	TotalBaseAsset     sdkmath.Int `json:"total_base_asset"`
	TotalRewardAccrued sdkmath.Int `json:"total_reward_accrued"`
	TotalShares        sdkmath.Int `json:"total_shares"`
	IsPaused           bool        `json:"is_paused"`
	LastCompoundTick   uint64      `json:"last_compound_tick"`
	CurrentCycle       uint64      `json:"current_cycle"`
}

// FeeInfo is the read-only fee summary.
type FeeInfo struct {
	PerformanceFeeBps uint64    `json:"performance_fee_bps"`
	WithdrawalFeeBps  uint64    `json:"withdrawal_fee_bps"`
	Treasury          AccountID `json:"treasury"`
}

// VaultStatistics aggregates vault-wide figures for reporting.
type VaultStatistics struct {
	TotalBaseAsset     sdkmath.Int `json:"total_base_asset"`
	TotalShares        sdkmath.Int `json:"total_shares"`
	SharePrice         sdkmath.Int `json:"share_price"`
	TotalFeesCollected sdkmath.Int `json:"total_fees_collected"`
	LatestApyBps       uint64      `json:"latest_apy_bps"`
	CumulativeYield    sdkmath.Int `json:"cumulative_yield"` // TotalBaseAsset + TotalFeesCollected - TotalDepositedGross: unrealized gain plus collected fees.
	IsPaused           bool        `json:"is_paused"`
}
