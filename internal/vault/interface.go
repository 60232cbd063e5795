package vault

import (
	sdkmath "cosmossdk.io/math"

	"github.com/yieldforge/yvm/internal/types"
)

// AssetMover is the external transfer primitive used to move base-asset
// funds in and out of the vault. An implementation must be atomic: a call
// either fully succeeds or fully fails, and the engine finalizes its own
// ledger mutation only after the move succeeds.
//
// Implementations may trigger callbacks that re-enter the vault (the reason
// the reentrancy lock exists); such re-entry fails with
// ErrReentrancyDetected rather than interleaving partial state.
type AssetMover interface {
	// MoveIn pulls amount from an external account into the vault.
	MoveIn(from types.AccountID, amount sdkmath.Int) error

	// MoveOut pays amount from the vault to an external account.
	MoveOut(to types.AccountID, amount sdkmath.Int) error

	// AccrueIn records externally sourced funds arriving in the vault
	// without debiting any account. Reward income enters through this
	// channel so the vault's holdings stay redeemable at the quoted price.
	AccrueIn(amount sdkmath.Int) error
}

// NopMover is an AssetMover that records nothing and always succeeds. It is
// the default backend when the vault runs as a pure accounting ledger.
type NopMover struct{}

func (NopMover) MoveIn(types.AccountID, sdkmath.Int) error  { return nil }
func (NopMover) MoveOut(types.AccountID, sdkmath.Int) error { return nil }
func (NopMover) AccrueIn(sdkmath.Int) error                 { return nil }
