/*

This file contains the tick source abstraction. Ticks are discrete,
monotonically increasing time units driven by an external sequencer; the
engine never reads wall-clock time directly, so all cooldown and snapshot
logic is deterministic under an injected clock.

*/

package clock

// Clock exposes the current tick count.
type Clock interface {
	Now() uint64
}

// Manual is a hand-advanced clock used by the process driver and by tests.
type Manual struct {
	tick uint64
}

// NewManual returns a manual clock starting at the given tick.
func NewManual(start uint64) *Manual {
	return &Manual{tick: start}
}

// Now returns the current tick.
func (m *Manual) Now() uint64 {
	return m.tick
}

// Advance moves the clock forward by n ticks.
func (m *Manual) Advance(n uint64) {
	m.tick += n
}

// Set moves the clock to an absolute tick. Moving backwards is ignored;
// ticks are monotone.
func (m *Manual) Set(tick uint64) {
	if tick > m.tick {
		m.tick = tick
	}
}
