/*

This file contains the vault engine aggregate: construction, the access and
reentrancy guards, pause control, and the owner-only registry operations.

The engine is the single owner of all mutable vault state. Execution is
strictly sequential: one operation at a time, totally ordered by the
caller's sequencer. Every mutating entry point validates in the order
pause -> reentrancy -> authorization/blacklist -> cooldown -> bounds before
touching any state, so a failed call leaves no partial mutation behind.

*/

package vault

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/yieldforge/yvm/internal/clock"
	"github.com/yieldforge/yvm/internal/logger"
	"github.com/yieldforge/yvm/internal/types"
)

const (
	// PricePrecision is the fixed-point scale of the share price:
	// a price of exactly PricePrecision means 1 share redeems 1 base unit.
	PricePrecision = 1_000_000

	// bpsDenominator converts basis points to a fraction.
	bpsDenominator = 10_000
)

// Engine is the vault state machine. All mutation of VaultState, user
// accounts, and the registries goes through its entry points.
type Engine struct {
	log   zerolog.Logger
	clock clock.Clock
	mover AssetMover

	owner  types.AccountID
	params types.VaultParameters
	fees   types.FeeConfig
	state  types.VaultState

	accounts         map[types.AccountID]*types.UserAccount
	blacklist        map[types.AccountID]bool
	withdrawalLimits map[types.AccountID]sdkmath.Int
	snapshots        map[uint64]types.APYSnapshot

	// Vault-wide time-weighted share integral, the denominator for
	// apportioning rewards across accounts.
	globalAccumulator   sdkmath.Int
	lastAccumulatorTick uint64

	reentrancyEngaged bool
}

// Config holds the dependencies and initial settings for a new Engine.
type Config struct {
	Owner    types.AccountID
	Treasury types.AccountID
	Clock    clock.Clock
	Mover    AssetMover // Optional; defaults to NopMover.
	Params   types.VaultParameters
	Fees     types.FeeConfig

	// MaxSlippageBps is the initial slippage bound; must not exceed the
	// ceiling in Params.
	MaxSlippageBps uint64

	// StartCycle lets a restarted process resume its snapshot numbering.
	StartCycle uint64
}

// NewEngine creates a vault engine with validated configuration.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Owner == "" {
		return nil, errors.New("owner account is required")
	}
	if cfg.Treasury == "" {
		return nil, errors.New("treasury account is required")
	}
	if cfg.Clock == nil {
		return nil, errors.New("clock is required")
	}
	if cfg.Mover == nil {
		cfg.Mover = NopMover{}
	}
	if err := validateParameters(cfg.Params); err != nil {
		return nil, err
	}
	if cfg.Fees.PerformanceFeeBps > cfg.Params.PerformanceFeeCeilingBps {
		return nil, fmt.Errorf("%w: performance fee %d bps over ceiling %d",
			ErrFeeTooHigh, cfg.Fees.PerformanceFeeBps, cfg.Params.PerformanceFeeCeilingBps)
	}
	if cfg.Fees.WithdrawalFeeBps > cfg.Params.WithdrawalFeeCeilingBps {
		return nil, fmt.Errorf("%w: withdrawal fee %d bps over ceiling %d",
			ErrFeeTooHigh, cfg.Fees.WithdrawalFeeBps, cfg.Params.WithdrawalFeeCeilingBps)
	}
	if cfg.MaxSlippageBps > cfg.Params.SlippageCeilingBps {
		return nil, fmt.Errorf("%w: %d bps over ceiling %d",
			ErrSlippageTooHigh, cfg.MaxSlippageBps, cfg.Params.SlippageCeilingBps)
	}

	e := &Engine{
		log:    logger.GetForComponent("vault_engine"),
		clock:  cfg.Clock,
		mover:  cfg.Mover,
		owner:  cfg.Owner,
		params: cfg.Params,
		fees:   cfg.Fees,
		state: types.VaultState{
			TotalBaseAsset:      sdkmath.ZeroInt(),
			TotalRewardAccrued:  sdkmath.ZeroInt(),
			RewardBalance:       sdkmath.ZeroInt(),
			TotalShares:         sdkmath.ZeroInt(),
			TotalDepositedGross: sdkmath.ZeroInt(),
			TotalFeesCollected:  sdkmath.ZeroInt(),
			Treasury:            cfg.Treasury,
			MaxSlippageBps:      cfg.MaxSlippageBps,
			CurrentCycle:        cfg.StartCycle,
		},
		accounts:            make(map[types.AccountID]*types.UserAccount),
		blacklist:           make(map[types.AccountID]bool),
		withdrawalLimits:    make(map[types.AccountID]sdkmath.Int),
		snapshots:           make(map[uint64]types.APYSnapshot),
		globalAccumulator:   sdkmath.ZeroInt(),
		lastAccumulatorTick: cfg.Clock.Now(),
	}

	e.log.Info().
		Str("owner", string(cfg.Owner)).
		Str("treasury", string(cfg.Treasury)).
		Uint64("startCycle", cfg.StartCycle).
		Msg("Vault engine initialized")

	return e, nil
}

func validateParameters(p types.VaultParameters) error {
	if p.MinDeposit.IsNil() || p.MaxDeposit.IsNil() || !p.MinDeposit.IsPositive() {
		return errors.New("deposit bounds must be positive")
	}
	if p.MaxDeposit.LT(p.MinDeposit) {
		return errors.New("max deposit must not be below min deposit")
	}
	if p.TicksPerYear == 0 {
		return errors.New("ticks per year must be positive")
	}
	if p.BronzeThreshold.IsNil() || p.SilverThreshold.IsNil() || p.GoldThreshold.IsNil() {
		return errors.New("boost thresholds must be set")
	}
	if p.SilverThreshold.LT(p.BronzeThreshold) || p.GoldThreshold.LT(p.SilverThreshold) {
		return errors.New("boost thresholds must be non-decreasing")
	}
	return nil
}

// acquire engages the reentrancy lock and returns the paired release.
// Callers must defer the release immediately so every exit path, including
// validation failures, disengages the lock.
func (e *Engine) acquire() (func(), error) {
	if e.reentrancyEngaged {
		return nil, ErrReentrancyDetected
	}
	e.reentrancyEngaged = true
	return func() { e.reentrancyEngaged = false }, nil
}

// requireOwner authorizes a privileged operation.
func (e *Engine) requireOwner(caller types.AccountID) error {
	if caller != e.owner {
		return ErrNotOwner
	}
	return nil
}

// sharePrice derives the PRECISION-scaled share price from the ledger.
// Before the first deposit the price is defined as exactly PricePrecision.
func (e *Engine) sharePrice() sdkmath.Int {
	if e.state.TotalShares.IsZero() {
		return sdkmath.NewInt(PricePrecision)
	}
	return e.state.TotalBaseAsset.MulRaw(PricePrecision).Quo(e.state.TotalShares)
}

// touchGlobalAccumulator brings the vault-wide share integral current.
// Must run before TotalShares changes.
func (e *Engine) touchGlobalAccumulator(tick uint64) {
	if tick > e.lastAccumulatorTick {
		elapsed := sdkmath.NewIntFromUint64(tick - e.lastAccumulatorTick)
		e.globalAccumulator = e.globalAccumulator.Add(e.state.TotalShares.Mul(elapsed))
	}
	e.lastAccumulatorTick = tick
}

// touchAccountAccumulator brings an account's share integral current.
// Must run before the account's SharesOwned changes.
func (e *Engine) touchAccountAccumulator(account *types.UserAccount, tick uint64) {
	if tick > account.LastAccumulatorTick {
		elapsed := sdkmath.NewIntFromUint64(tick - account.LastAccumulatorTick)
		account.TimeWeightedAccumulator = account.TimeWeightedAccumulator.Add(account.SharesOwned.Mul(elapsed))
	}
	account.LastAccumulatorTick = tick
}

// getOrCreateAccount materializes the lazily created per-account record.
func (e *Engine) getOrCreateAccount(id types.AccountID, tick uint64) *types.UserAccount {
	if account, ok := e.accounts[id]; ok {
		return account
	}
	account := &types.UserAccount{
		BaseAssetDeposited:      sdkmath.ZeroInt(),
		SharesOwned:             sdkmath.ZeroInt(),
		TimeWeightedAccumulator: sdkmath.ZeroInt(),
		LastAccumulatorTick:     tick,
	}
	e.accounts[id] = account
	return account
}

// EmergencyPause engages the global pause switch. Pausing an already paused
// vault is an accepted no-op.
func (e *Engine) EmergencyPause(caller types.AccountID) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if !e.state.IsPaused {
		e.state.IsPaused = true
		e.log.Warn().Uint64("tick", e.clock.Now()).Msg("Vault paused")
	}
	return nil
}

// ResumeOperations disengages the pause switch. Resuming an active vault is
// an accepted no-op.
func (e *Engine) ResumeOperations(caller types.AccountID) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if e.state.IsPaused {
		e.state.IsPaused = false
		e.log.Info().Uint64("tick", e.clock.Now()).Msg("Vault resumed")
	}
	return nil
}

// BlacklistAddress sets or clears the blocked flag for an account.
// Blacklisted accounts cannot deposit. Idempotent.
func (e *Engine) BlacklistAddress(caller, account types.AccountID, flag bool) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if flag {
		e.blacklist[account] = true
	} else {
		delete(e.blacklist, account)
	}
	e.log.Info().Str("account", string(account)).Bool("blacklisted", flag).Msg("Blacklist updated")
	return nil
}

// SetWithdrawalLimit caps the net payout of a single withdrawal for an
// account. Passing a nil Int clears the cap; absence means unlimited.
func (e *Engine) SetWithdrawalLimit(caller, account types.AccountID, limit sdkmath.Int) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if limit.IsNil() {
		delete(e.withdrawalLimits, account)
		e.log.Info().Str("account", string(account)).Msg("Withdrawal limit cleared")
		return nil
	}
	if limit.IsNegative() {
		return ErrZeroAmount
	}
	e.withdrawalLimits[account] = limit
	e.log.Info().Str("account", string(account)).Str("limit", limit.String()).Msg("Withdrawal limit set")
	return nil
}

// UpdateMaxSlippage changes the slippage bound, rejecting values above the
// fixed ceiling.
func (e *Engine) UpdateMaxSlippage(caller types.AccountID, bps uint64) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if bps > e.params.SlippageCeilingBps {
		return fmt.Errorf("%w: %d bps over ceiling %d", ErrSlippageTooHigh, bps, e.params.SlippageCeilingBps)
	}
	e.state.MaxSlippageBps = bps
	e.log.Info().Uint64("maxSlippageBps", bps).Msg("Max slippage updated")
	return nil
}

// SetTreasury changes the fee destination account.
func (e *Engine) SetTreasury(caller, treasury types.AccountID) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if treasury == "" {
		return errors.New("treasury account is required")
	}
	e.state.Treasury = treasury
	e.log.Info().Str("treasury", string(treasury)).Msg("Treasury updated")
	return nil
}

// UpdateFees changes the fee schedule, enforcing the parameter ceilings at
// the point of mutation.
func (e *Engine) UpdateFees(caller types.AccountID, performanceFeeBps, withdrawalFeeBps uint64) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if performanceFeeBps > e.params.PerformanceFeeCeilingBps {
		return fmt.Errorf("%w: performance fee %d bps over ceiling %d",
			ErrFeeTooHigh, performanceFeeBps, e.params.PerformanceFeeCeilingBps)
	}
	if withdrawalFeeBps > e.params.WithdrawalFeeCeilingBps {
		return fmt.Errorf("%w: withdrawal fee %d bps over ceiling %d",
			ErrFeeTooHigh, withdrawalFeeBps, e.params.WithdrawalFeeCeilingBps)
	}
	e.fees.PerformanceFeeBps = performanceFeeBps
	e.fees.WithdrawalFeeBps = withdrawalFeeBps
	e.log.Info().
		Uint64("performanceFeeBps", performanceFeeBps).
		Uint64("withdrawalFeeBps", withdrawalFeeBps).
		Msg("Fee schedule updated")
	return nil
}
