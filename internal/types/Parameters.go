/*

This file contains the tunable vault parameters: deposit bounds, cooldowns,
fee and slippage ceilings, and the boost tier thresholds.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// VaultParameters holds all tunable bounds and thresholds used by the vault
// engine for validation, cooldown enforcement, and boost tier derivation.
// A parameter set is fixed at engine construction.
type VaultParameters struct {
	// --- Deposit bounds ---
	MinDeposit sdkmath.Int `json:"min_deposit"` // Smallest accepted single deposit, in base-asset units.
	MaxDeposit sdkmath.Int `json:"max_deposit"` // Largest accepted single deposit, in base-asset units.

	// --- Cooldowns, in ticks ---
	DepositCooldownTicks    uint64 `json:"deposit_cooldown_ticks"`    // Minimum spacing between deposits by one account; skipped on the first-ever deposit.
	WithdrawalCooldownTicks uint64 `json:"withdrawal_cooldown_ticks"` // Minimum spacing between withdrawals by one account.
	CompoundCooldownTicks   uint64 `json:"compound_cooldown_ticks"`   // Minimum spacing between reward compounding calls, vault-wide.

	// --- Fee and slippage ceilings, in basis points ---
	PerformanceFeeCeilingBps uint64 `json:"performance_fee_ceiling_bps"` // Upper bound on the performance fee rate.
	WithdrawalFeeCeilingBps  uint64 `json:"withdrawal_fee_ceiling_bps"`  // Upper bound on the withdrawal fee rate.
	SlippageCeilingBps       uint64 `json:"slippage_ceiling_bps"`        // Upper bound on the configurable max slippage.

	// --- Boost tier thresholds, in share-ticks ---
	// An account's time-weighted accumulator (integral of shares held over
	// ticks) is compared against these to derive the tier.
	BronzeThreshold sdkmath.Int `json:"bronze_threshold"`
	SilverThreshold sdkmath.Int `json:"silver_threshold"`
	GoldThreshold   sdkmath.Int `json:"gold_threshold"`

	// --- APY annualization ---
	TicksPerYear uint64 `json:"ticks_per_year"` // Ratio used to annualize the per-cycle share-price delta.
}
