package clock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManual(t *testing.T) {
	ticks := NewManual(1)
	require.Equal(t, uint64(1), ticks.Now())

	ticks.Advance(9)
	require.Equal(t, uint64(10), ticks.Now())

	ticks.Set(25)
	require.Equal(t, uint64(25), ticks.Now())

	// Ticks never move backwards.
	ticks.Set(5)
	require.Equal(t, uint64(25), ticks.Now())
}
