package vault

import "errors"

// Error definitions for the vault operation surface. Every mutating entry
// point returns one of these on failure; none are silently swallowed and
// none crash the vault.
var (
	ErrNotOwner           = errors.New("caller is not the vault owner")
	ErrPaused             = errors.New("vault is paused")
	ErrNotPaused          = errors.New("vault is not paused")
	ErrReentrancyDetected = errors.New("reentrant call detected")
	ErrBlacklisted        = errors.New("account is blacklisted")
	ErrBelowMinimum       = errors.New("amount is below the minimum deposit")
	ErrAboveMaximum       = errors.New("amount is above the maximum deposit")
	ErrCooldownActive     = errors.New("cooldown has not elapsed")
	ErrZeroAmount         = errors.New("amount must be greater than zero")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrLimitExceeded      = errors.New("payout exceeds the withdrawal limit")
	ErrSlippageTooHigh    = errors.New("slippage exceeds the allowed ceiling")
	ErrFeeTooHigh         = errors.New("fee rate exceeds the allowed ceiling")
	ErrNoRewardsAvailable = errors.New("no rewards available")
	ErrSnapshotNotFound   = errors.New("snapshot not found")
	ErrTransferFailed     = errors.New("asset transfer failed")
)
