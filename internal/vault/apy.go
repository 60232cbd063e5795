/*

This file contains the per-cycle APY snapshots and the vault-wide
statistics aggregation.

Annualization (pinned): apyBps = (p1 - p0) * 10000 / p0 * TicksPerYear /
elapsedTicks, in integer floor math, clamped to zero for non-positive
deltas. The first snapshot has no prior to compare against and records 0.

*/

package vault

import (
	sdkmath "cosmossdk.io/math"

	"github.com/yieldforge/yvm/internal/types"
)

// SnapshotAPY records the current share price and annualized yield for the
// current cycle, then advances the cycle counter. Callable by anyone.
func (e *Engine) SnapshotAPY(caller types.AccountID) (types.APYSnapshot, error) {
	if e.state.IsPaused {
		return types.APYSnapshot{}, ErrPaused
	}
	release, err := e.acquire()
	if err != nil {
		return types.APYSnapshot{}, err
	}
	defer release()

	tick := e.clock.Now()
	price := e.sharePrice()

	var apyBps uint64
	if e.state.CurrentCycle > 0 {
		if previous, ok := e.snapshots[e.state.CurrentCycle-1]; ok {
			apyBps = annualizedBps(previous, price, tick, e.params.TicksPerYear)
		}
	}

	snapshot := types.APYSnapshot{
		CycleID:    e.state.CurrentCycle,
		Tick:       tick,
		SharePrice: price,
		ApyBps:     apyBps,
	}
	e.snapshots[snapshot.CycleID] = snapshot
	e.state.CurrentCycle++

	e.log.Info().
		Str("caller", string(caller)).
		Uint64("cycle", snapshot.CycleID).
		Str("sharePrice", price.String()).
		Uint64("apyBps", apyBps).
		Msg("APY snapshot recorded")

	return snapshot, nil
}

// annualizedBps derives the annualized yield in basis points from the
// share-price delta since the previous snapshot.
func annualizedBps(previous types.APYSnapshot, price sdkmath.Int, tick, ticksPerYear uint64) uint64 {
	if tick <= previous.Tick || !previous.SharePrice.IsPositive() {
		return 0
	}
	delta := price.Sub(previous.SharePrice)
	if !delta.IsPositive() {
		return 0
	}
	elapsed := sdkmath.NewIntFromUint64(tick - previous.Tick)
	bps := delta.
		MulRaw(bpsDenominator).
		Mul(sdkmath.NewIntFromUint64(ticksPerYear)).
		Quo(previous.SharePrice).
		Quo(elapsed)
	if !bps.IsUint64() {
		// A delta that annualizes past uint64 range is saturated rather
		// than wrapped.
		return ^uint64(0)
	}
	return bps.Uint64()
}

// GetApySnapshot returns the snapshot for a cycle, or ErrSnapshotNotFound.
func (e *Engine) GetApySnapshot(cycleID uint64) (types.APYSnapshot, error) {
	snapshot, ok := e.snapshots[cycleID]
	if !ok {
		return types.APYSnapshot{}, ErrSnapshotNotFound
	}
	return snapshot, nil
}

// GetVaultStatistics aggregates the vault-wide figures, including the
// latest recorded APY and the cumulative yield over gross deposits.
func (e *Engine) GetVaultStatistics() types.VaultStatistics {
	var latestApyBps uint64
	if e.state.CurrentCycle > 0 {
		if latest, ok := e.snapshots[e.state.CurrentCycle-1]; ok {
			latestApyBps = latest.ApyBps
		}
	}

	return types.VaultStatistics{
		TotalBaseAsset:     e.state.TotalBaseAsset,
		TotalShares:        e.state.TotalShares,
		SharePrice:         e.sharePrice(),
		TotalFeesCollected: e.state.TotalFeesCollected,
		LatestApyBps:       latestApyBps,
		CumulativeYield: e.state.TotalBaseAsset.
			Add(e.state.TotalFeesCollected).
			Sub(e.state.TotalDepositedGross),
		IsPaused: e.state.IsPaused,
	}
}
