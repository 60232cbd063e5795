package vault

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestSnapshotAPY_FirstCycle(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.Deposit(alice, sdkmath.NewInt(100_000_000))
	require.NoError(t, err)

	snapshot, err := engine.SnapshotAPY(bob)
	require.NoError(t, err)
	require.Equal(t, uint64(0), snapshot.CycleID)
	require.Equal(t, uint64(0), snapshot.ApyBps)
	require.True(t, snapshot.SharePrice.Equal(sdkmath.NewInt(PricePrecision)))

	require.Equal(t, uint64(1), engine.GetVaultInfo().CurrentCycle)
}

func TestSnapshotAPY_Annualization(t *testing.T) {
	engine, ticks, _ := newTestEngine(t)

	_, err := engine.Deposit(alice, sdkmath.NewInt(100_000_000))
	require.NoError(t, err)
	_, err = engine.SnapshotAPY(bob)
	require.NoError(t, err)

	// Raise the price 10% over a tenth of a year of ticks; annualized
	// that is exactly 100% = 10_000 bps.
	require.NoError(t, engine.AccrueReward(sdkmath.NewInt(10_000_000)))
	_, err = engine.CompoundRewards(bob)
	require.NoError(t, err)
	ticks.Advance(testParams().TicksPerYear / 10)

	snapshot, err := engine.SnapshotAPY(bob)
	require.NoError(t, err)
	require.Equal(t, uint64(1), snapshot.CycleID)
	require.True(t, snapshot.SharePrice.Equal(sdkmath.NewInt(1_100_000)))
	require.Equal(t, uint64(10_000), snapshot.ApyBps)
}

func TestSnapshotAPY_FlatPriceReadsZero(t *testing.T) {
	engine, ticks, _ := newTestEngine(t)

	_, err := engine.Deposit(alice, sdkmath.NewInt(100_000_000))
	require.NoError(t, err)
	_, err = engine.SnapshotAPY(bob)
	require.NoError(t, err)

	ticks.Advance(1_000)
	snapshot, err := engine.SnapshotAPY(bob)
	require.NoError(t, err)
	require.Equal(t, uint64(0), snapshot.ApyBps)
}

func TestSnapshotAPY_Paused(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	require.NoError(t, engine.EmergencyPause(testOwner))
	_, err := engine.SnapshotAPY(bob)
	require.ErrorIs(t, err, ErrPaused)
}

func TestGetApySnapshot_NotFound(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.GetApySnapshot(42)
	require.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = engine.SnapshotAPY(bob)
	require.NoError(t, err)
	snapshot, err := engine.GetApySnapshot(0)
	require.NoError(t, err)
	require.Equal(t, uint64(0), snapshot.CycleID)
}

func TestGetVaultStatistics(t *testing.T) {
	engine, ticks, _ := newTestEngine(t)

	_, err := engine.Deposit(alice, sdkmath.NewInt(100_000_000))
	require.NoError(t, err)
	require.NoError(t, engine.AccrueReward(sdkmath.NewInt(10_000_000)))
	_, err = engine.CompoundRewards(bob)
	require.NoError(t, err)

	stats := engine.GetVaultStatistics()
	require.True(t, stats.TotalBaseAsset.Equal(sdkmath.NewInt(110_000_000)))
	require.True(t, stats.SharePrice.Equal(sdkmath.NewInt(1_100_000)))
	require.True(t, stats.CumulativeYield.Equal(sdkmath.NewInt(10_000_000)))
	require.Equal(t, uint64(0), stats.LatestApyBps)

	// Redeeming half attributes 50_000_000 of principal out: the vault
	// keeps the remaining unrealized gain plus the collected fees.
	ticks.Advance(testParams().WithdrawalCooldownTicks)
	_, err = engine.Withdraw(alice, sdkmath.NewInt(50_000_000))
	require.NoError(t, err)

	stats = engine.GetVaultStatistics()
	require.True(t, stats.TotalBaseAsset.Equal(sdkmath.NewInt(55_000_000)))
	require.True(t, stats.TotalFeesCollected.Equal(sdkmath.NewInt(525_000)))
	require.True(t, stats.CumulativeYield.Equal(sdkmath.NewInt(5_525_000)))
}
