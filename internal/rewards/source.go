/*

This file contains the external reward source driver. The vault treats
reward income as an opaque top-up; this driver simulates a protocol-level
source that deposits a fixed amount at a fixed tick interval.

*/

package rewards

import (
	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/yieldforge/yvm/internal/logger"
)

// Source periodically feeds rewards into the vault through the injected
// accrue callback. It is driven by the process's tick loop, not by its own
// goroutine, so reward accrual stays totally ordered with vault operations.
type Source struct {
	log           zerolog.Logger
	amount        sdkmath.Int
	intervalTicks uint64
	lastTick      uint64
}

// NewSource returns a reward source emitting amount every intervalTicks.
func NewSource(amount sdkmath.Int, intervalTicks uint64) *Source {
	if intervalTicks == 0 {
		intervalTicks = 1
	}
	return &Source{
		log:           logger.GetForComponent("reward_source"),
		amount:        amount,
		intervalTicks: intervalTicks,
	}
}

// Tick emits a reward into accrue when the interval has elapsed. Must be
// called from the operation loop once per tick advance.
func (s *Source) Tick(tick uint64, accrue func(sdkmath.Int) error) {
	if s.amount.IsNil() || !s.amount.IsPositive() {
		return
	}
	if tick-s.lastTick < s.intervalTicks {
		return
	}
	if err := accrue(s.amount); err != nil {
		s.log.Error().Err(err).Uint64("tick", tick).Msg("Reward accrual rejected")
		return
	}
	s.lastTick = tick
	s.log.Debug().Uint64("tick", tick).Str("amount", s.amount.String()).Msg("Reward emitted")
}
