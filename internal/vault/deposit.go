/*

This file contains the deposit path: single deposits and the owner-only
batch deposit used for migrations and airdrops.

Share minting follows the pro-rata formula with floor division: at the
current price p, a deposit of a base units mints a * PRECISION / p shares;
the very first deposit bootstraps 1:1.

*/

package vault

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/yieldforge/yvm/internal/types"
)

// Deposit moves amount from the caller into the vault and mints shares at
// the current share price. Returns the minted share count.
func (e *Engine) Deposit(caller types.AccountID, amount sdkmath.Int) (sdkmath.Int, error) {
	if e.state.IsPaused {
		return sdkmath.ZeroInt(), ErrPaused
	}
	release, err := e.acquire()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer release()

	tick := e.clock.Now()
	if err := e.validateDeposit(caller, amount, tick); err != nil {
		return sdkmath.ZeroInt(), err
	}

	minted := e.sharesForDeposit(amount)
	if minted.IsZero() {
		return sdkmath.ZeroInt(), ErrZeroAmount
	}

	// The transfer must fully succeed before any ledger write.
	if err := e.mover.MoveIn(caller, amount); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	e.touchGlobalAccumulator(tick)
	account := e.getOrCreateAccount(caller, tick)
	e.touchAccountAccumulator(account, tick)

	account.SharesOwned = account.SharesOwned.Add(minted)
	account.BaseAssetDeposited = account.BaseAssetDeposited.Add(amount)
	account.LastDepositTick = tick
	e.state.TotalShares = e.state.TotalShares.Add(minted)
	e.state.TotalBaseAsset = e.state.TotalBaseAsset.Add(amount)
	e.state.TotalDepositedGross = e.state.TotalDepositedGross.Add(amount)

	e.log.Info().
		Str("account", string(caller)).
		Str("amount", amount.String()).
		Str("minted", minted.String()).
		Uint64("tick", tick).
		Msg("Deposit accepted")

	return minted, nil
}

// BatchDeposit applies a sequence of (account, amount) deposits as one
// all-or-nothing operation. Owner-restricted; the funds for the whole batch
// are drawn from the caller. An empty batch succeeds with zero effect.
// Returns the total shares minted.
func (e *Engine) BatchDeposit(caller types.AccountID, entries []types.BatchDepositEntry) (sdkmath.Int, error) {
	if e.state.IsPaused {
		return sdkmath.ZeroInt(), ErrPaused
	}
	release, err := e.acquire()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer release()

	if err := e.requireOwner(caller); err != nil {
		return sdkmath.ZeroInt(), err
	}

	tick := e.clock.Now()

	// Validate every entry before applying any. Entries are checked against
	// the pre-batch state; a repeated account within one batch trips the
	// deposit cooldown, since both entries share the same tick.
	total := sdkmath.ZeroInt()
	seen := make(map[types.AccountID]bool, len(entries))
	for i, entry := range entries {
		if seen[entry.Account] && e.params.DepositCooldownTicks > 0 {
			return sdkmath.ZeroInt(), fmt.Errorf("%w: duplicate account %s at entry %d",
				ErrCooldownActive, entry.Account, i)
		}
		if err := e.validateDeposit(entry.Account, entry.Amount, tick); err != nil {
			return sdkmath.ZeroInt(), fmt.Errorf("entry %d (%s): %w", i, entry.Account, err)
		}
		seen[entry.Account] = true
		total = total.Add(entry.Amount)
	}
	if total.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	if err := e.mover.MoveIn(caller, total); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	e.touchGlobalAccumulator(tick)

	// Shares for every entry are priced at the pre-batch share price; minting
	// first and adding base asset after would misprice later entries.
	totalMinted := sdkmath.ZeroInt()
	price := e.sharePrice()
	for _, entry := range entries {
		// At the bootstrap price of exactly PricePrecision this reduces to 1:1.
		minted := entry.Amount.MulRaw(PricePrecision).Quo(price)

		account := e.getOrCreateAccount(entry.Account, tick)
		e.touchAccountAccumulator(account, tick)
		account.SharesOwned = account.SharesOwned.Add(minted)
		account.BaseAssetDeposited = account.BaseAssetDeposited.Add(entry.Amount)
		account.LastDepositTick = tick
		totalMinted = totalMinted.Add(minted)
	}

	e.state.TotalShares = e.state.TotalShares.Add(totalMinted)
	e.state.TotalBaseAsset = e.state.TotalBaseAsset.Add(total)
	e.state.TotalDepositedGross = e.state.TotalDepositedGross.Add(total)

	e.log.Info().
		Int("entries", len(entries)).
		Str("total", total.String()).
		Str("minted", totalMinted.String()).
		Uint64("tick", tick).
		Msg("Batch deposit applied")

	return totalMinted, nil
}

// validateDeposit runs the blacklist, cooldown, and bounds checks in order.
// It performs no writes.
func (e *Engine) validateDeposit(account types.AccountID, amount sdkmath.Int, tick uint64) error {
	if e.blacklist[account] {
		return ErrBlacklisted
	}
	// Account records only materialize on a deposit, so existence alone
	// means the cooldown applies, even when the first deposit landed on
	// tick zero.
	if existing, ok := e.accounts[account]; ok {
		if tick-existing.LastDepositTick < e.params.DepositCooldownTicks {
			return ErrCooldownActive
		}
	}
	if amount.IsNil() || amount.LT(e.params.MinDeposit) {
		return ErrBelowMinimum
	}
	if amount.GT(e.params.MaxDeposit) {
		return ErrAboveMaximum
	}
	return nil
}

// sharesForDeposit prices a deposit at the current share price, with the
// 1:1 bootstrap before any shares exist.
func (e *Engine) sharesForDeposit(amount sdkmath.Int) sdkmath.Int {
	if e.state.TotalShares.IsZero() {
		return amount
	}
	return amount.MulRaw(PricePrecision).Quo(e.sharePrice())
}
