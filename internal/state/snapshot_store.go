// ./internal/state/snapshot_store.go
package state

import (
	"database/sql"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/yieldforge/yvm/internal/types"
)

// SaveAPYSnapshot persists one cycle's snapshot. The engine's in-memory
// history is the source of truth; this is write-behind for restart
// continuity and the dashboard, so a replayed cycle upserts.
func SaveAPYSnapshot(snapshot types.APYSnapshot) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO apy_snapshots (cycle_id, tick, share_price, apy_bps)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cycle_id) DO UPDATE
		SET tick = EXCLUDED.tick, share_price = EXCLUDED.share_price, apy_bps = EXCLUDED.apy_bps;
	`
	_, err := DB.Exec(query, snapshot.CycleID, snapshot.Tick, snapshot.SharePrice.String(), snapshot.ApyBps)
	if err != nil {
		return fmt.Errorf("failed to save APY snapshot for cycle %d: %w", snapshot.CycleID, err)
	}

	log.Debug().Uint64("cycle", snapshot.CycleID).Msg("Persisted APY snapshot")
	return nil
}

// GetSnapshotByCycle retrieves a single persisted snapshot.
func GetSnapshotByCycle(cycleID uint64) (types.APYSnapshot, error) {
	if DB == nil {
		return types.APYSnapshot{}, fmt.Errorf("database not initialized")
	}

	query := `SELECT cycle_id, tick, share_price, apy_bps FROM apy_snapshots WHERE cycle_id = $1;`
	row := DB.QueryRow(query, cycleID)

	snapshot, err := scanSnapshot(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.APYSnapshot{}, fmt.Errorf("no snapshot for cycle %d", cycleID)
		}
		return types.APYSnapshot{}, fmt.Errorf("failed to get snapshot for cycle %d: %w", cycleID, err)
	}
	return snapshot, nil
}

// GetRecentSnapshots retrieves the most recent persisted snapshots,
// newest first.
func GetRecentSnapshots(limit int) ([]types.APYSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 10 // Default limit
	}

	query := `
		SELECT cycle_id, tick, share_price, apy_bps
		FROM apy_snapshots
		ORDER BY cycle_id DESC
		LIMIT $1;
	`
	rows, err := DB.Query(query, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query recent snapshots")
		return nil, fmt.Errorf("failed to query recent snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []types.APYSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (types.APYSnapshot, error) {
	var (
		snapshot      types.APYSnapshot
		sharePriceStr string
	)
	if err := row.Scan(&snapshot.CycleID, &snapshot.Tick, &sharePriceStr, &snapshot.ApyBps); err != nil {
		return types.APYSnapshot{}, err
	}
	sharePrice, ok := sdkmath.NewIntFromString(sharePriceStr)
	if !ok {
		return types.APYSnapshot{}, fmt.Errorf("invalid share price in database: %q", sharePriceStr)
	}
	snapshot.SharePrice = sharePrice
	return snapshot, nil
}

// GetCurrentCycleNumber retrieves the persisted cycle counter.
func GetCurrentCycleNumber() (uint64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `SELECT current_cycle FROM cycle_counter WHERE id = 1;`

	var currentCycle uint64
	row := DB.QueryRow(query)
	err := row.Scan(&currentCycle)

	if err != nil {
		if err == sql.ErrNoRows {
			log.Warn().Msg("No cycle counter row found, initializing to 0")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get current cycle number: %w", err)
	}

	return currentCycle, nil
}

// SetCycleNumber persists the engine's cycle counter after a snapshot.
func SetCycleNumber(cycle uint64) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	updateQuery := `
		UPDATE cycle_counter
		SET current_cycle = $1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1;
	`
	result, err := DB.Exec(updateQuery, cycle)
	if err != nil {
		return fmt.Errorf("failed to persist cycle number %d: %w", cycle, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows updated when persisting cycle number")
	}

	log.Debug().Uint64("cycle", cycle).Msg("Persisted cycle counter")
	return nil
}
