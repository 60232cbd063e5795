/*

This file contains the APY snapshot type recorded once per cycle.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// APYSnapshot is an append-only record of the share price at a given tick,
// with the annualized yield derived from the delta versus the prior snapshot.
type APYSnapshot struct {
	CycleID    uint64      `json:"cycle_id"`
	Tick       uint64      `json:"tick"`
	SharePrice sdkmath.Int `json:"share_price"` // PRECISION-scaled.
	ApyBps     uint64      `json:"apy_bps"`     // Annualized; 0 for the first snapshot or a non-positive delta.
}
