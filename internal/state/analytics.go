package state

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// YieldSummary represents aggregated yield data over the persisted
// snapshot history, for the dashboard.
type YieldSummary struct {
	TotalCycles      int             `json:"total_cycles"`
	LatestApyPercent decimal.Decimal `json:"latest_apy_percent"`
	AvgApyPercent    decimal.Decimal `json:"avg_apy_percent"`
	PeakApyPercent   decimal.Decimal `json:"peak_apy_percent"`
	FirstCycle       uint64          `json:"first_cycle"`
	LatestCycle      uint64          `json:"latest_cycle"`
}

// bpsDivisor converts basis points to percent.
var bpsDivisor = decimal.NewFromInt(100)

// GetYieldSummary aggregates the persisted APY history into a summary.
func GetYieldSummary() (YieldSummary, error) {
	if DB == nil {
		return YieldSummary{}, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT
			COUNT(*),
			COALESCE(MIN(cycle_id), 0),
			COALESCE(MAX(cycle_id), 0),
			COALESCE(AVG(apy_bps), 0),
			COALESCE(MAX(apy_bps), 0)
		FROM apy_snapshots;
	`

	var (
		totalCycles int
		firstCycle  uint64
		latestCycle uint64
		avgBps      float64
		peakBps     int64
	)
	row := DB.QueryRow(query)
	if err := row.Scan(&totalCycles, &firstCycle, &latestCycle, &avgBps, &peakBps); err != nil {
		log.Error().Err(err).Msg("Failed to aggregate yield summary")
		return YieldSummary{}, fmt.Errorf("failed to aggregate yield summary: %w", err)
	}

	summary := YieldSummary{
		TotalCycles:   totalCycles,
		AvgApyPercent: decimal.NewFromFloat(avgBps).Div(bpsDivisor).Round(4),
		PeakApyPercent: decimal.NewFromInt(peakBps).
			Div(bpsDivisor),
		FirstCycle:  firstCycle,
		LatestCycle: latestCycle,
	}

	if totalCycles > 0 {
		latest, err := GetSnapshotByCycle(latestCycle)
		if err != nil {
			return YieldSummary{}, err
		}
		summary.LatestApyPercent = decimal.NewFromInt(int64(latest.ApyBps)).Div(bpsDivisor)
	} else {
		summary.LatestApyPercent = decimal.Zero
	}

	return summary, nil
}
