/*

This file contains the default parameters for the vault engine.

These parameters are designed for a vault custodying significant user capital
in a production environment. Each value balances user protection against
operational flexibility.

*/

package config

import (
	sdkmath "cosmossdk.io/math"

	"github.com/yieldforge/yvm/internal/types"
)

// DefaultVaultParameters provides the baseline parameter set used when the
// engine is constructed without an explicit override.
//
// IMPORTANT: deposit bounds assume a 6-decimal base asset, so 1_000_000
// units is one whole token.
var DefaultVaultParameters = types.VaultParameters{
	MinDeposit: sdkmath.NewInt(1_000_000), // 1 token minimum.
	// Rationale: sub-token deposits mint share amounts small enough for
	// floor division to dominate the result, which hurts the depositor and
	// bloats the account table with dust positions.

	MaxDeposit: sdkmath.NewInt(1_000_000_000_000), // 1M tokens maximum.
	// Rationale: a single deposit above this size can move the share price
	// enough to make sandwich-style flows profitable. Whales split across
	// multiple deposits, which the deposit cooldown then paces.

	DepositCooldownTicks: 10,
	// Rationale: back-to-back deposit/withdraw in adjacent ticks is the
	// classic flash-style yield-skimming pattern. Ten ticks of spacing makes
	// same-cycle round trips impossible while barely affecting real users.

	WithdrawalCooldownTicks: 10,
	// Rationale: symmetric with the deposit cooldown; the pair bounds the
	// round-trip frequency of any single account.

	CompoundCooldownTicks: 6,
	// Rationale: compounding is permissionless, so the cooldown is what
	// stops griefers from burning the reward balance into rounding dust by
	// compounding every tick.

	PerformanceFeeCeilingBps: 1000, // 10% hard ceiling on the performance fee.
	WithdrawalFeeCeilingBps:  1000, // 10% hard ceiling on the withdrawal fee.
	SlippageCeilingBps:       1000, // 10% hard ceiling on configurable slippage.
	// Rationale: the ceilings bound owner privilege. Even a compromised
	// owner key cannot raise fees past 10%.

	// Boost thresholds are in share-ticks: holding 1 token's worth of shares
	// (1e6 at bootstrap price) for 100 ticks accrues 1e8 share-ticks.
	BronzeThreshold: sdkmath.NewInt(100_000_000),
	SilverThreshold: sdkmath.NewInt(10_000_000_000),
	GoldThreshold:   sdkmath.NewInt(1_000_000_000_000),
	// Rationale: each tier is two orders of magnitude apart so tier
	// membership reflects sustained holding rather than a brief spike.

	TicksPerYear: 52_560, // 10-minute ticks.
}

// DefaultFeeConfig is the fee schedule applied when none is supplied.
var DefaultFeeConfig = types.FeeConfig{
	PerformanceFeeBps: 500, // 5% of realized gains.
	WithdrawalFeeBps:  50,  // 0.5% of gross payout.
}

// DefaultMaxSlippageBps is the initial max-slippage bound, well under the
// ceiling so the owner has room to tune in either direction.
const DefaultMaxSlippageBps uint64 = 500
