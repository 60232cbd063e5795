/*

This file contains the in-memory asset ledger backing the vault's transfer
primitive. A transfer either fully succeeds or fully fails; the vault engine
finalizes its own ledger mutation only after the transfer succeeds.

*/

package bank

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/yieldforge/yvm/internal/types"
)

// Error definitions for transfer failures.
var (
	ErrInsufficientFunds = errors.New("insufficient funds for transfer")
	ErrInvalidAmount     = errors.New("transfer amount is invalid")
)

// Ledger is an in-memory base-asset ledger. It tracks external account
// balances plus the vault's own holdings, and implements the atomic
// move-in/move-out primitive the engine consumes.
type Ledger struct {
	balances map[types.AccountID]sdkmath.Int
	vault    sdkmath.Int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[types.AccountID]sdkmath.Int),
		vault:    sdkmath.ZeroInt(),
	}
}

// Credit adds funds to an external account. Used to seed balances.
func (l *Ledger) Credit(account types.AccountID, amount sdkmath.Int) {
	l.balances[account] = l.balanceOf(account).Add(amount)
}

// BalanceOf returns an external account's balance; absent accounts read as zero.
func (l *Ledger) BalanceOf(account types.AccountID) sdkmath.Int {
	return l.balanceOf(account)
}

// VaultBalance returns the funds currently held by the vault side of the ledger.
func (l *Ledger) VaultBalance() sdkmath.Int {
	return l.vault
}

// MoveIn transfers amount from an external account into the vault.
func (l *Ledger) MoveIn(from types.AccountID, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return ErrInvalidAmount
	}
	balance := l.balanceOf(from)
	if balance.LT(amount) {
		return fmt.Errorf("%w: account %s has %s, needs %s", ErrInsufficientFunds, from, balance, amount)
	}
	l.balances[from] = balance.Sub(amount)
	l.vault = l.vault.Add(amount)
	return nil
}

// AccrueIn adds externally sourced funds to the vault's holdings without
// debiting any account. Used for reward income.
func (l *Ledger) AccrueIn(amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return ErrInvalidAmount
	}
	l.vault = l.vault.Add(amount)
	return nil
}

// MoveOut transfers amount from the vault to an external account.
func (l *Ledger) MoveOut(to types.AccountID, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return ErrInvalidAmount
	}
	if l.vault.LT(amount) {
		return fmt.Errorf("%w: vault holds %s, needs %s", ErrInsufficientFunds, l.vault, amount)
	}
	l.vault = l.vault.Sub(amount)
	l.balances[to] = l.balanceOf(to).Add(amount)
	return nil
}

func (l *Ledger) balanceOf(account types.AccountID) sdkmath.Int {
	if balance, ok := l.balances[account]; ok {
		return balance
	}
	return sdkmath.ZeroInt()
}
