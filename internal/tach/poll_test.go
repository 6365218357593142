package tach

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollCountsFallingEdgesOnly(t *testing.T) {
	r := newRig(t, ModePolled, 1000, fan("E0", 3, 1))

	// low high low low high high low: falling edges at 2 and 6
	r.pins.Script(3, false, true, false, false, true, true, false)
	for i := 0; i < 7; i++ {
		require.NoError(t, r.tach.PollEdges())
	}
	assert.Equal(t, uint32(2), r.tach.channels[0].count.Load())
}

func TestPollInitialLevelIsLow(t *testing.T) {
	r := newRig(t, ModePolled, 1000, fan("E0", 3, 1))

	// Starting low means the first low sample is not an edge.
	r.pins.Script(3, false)
	require.NoError(t, r.tach.PollEdges())
	assert.Equal(t, uint32(0), r.tach.channels[0].count.Load())
}

func TestPollSkipsDisabledChannel(t *testing.T) {
	r := newRig(t, ModePolled, 1000, fan("E0", 3, 1), ChannelConfig{Name: "E1", Pin: 4, PPR: 1})

	r.pins.Script(3, true, false)
	for i := 0; i < 2; i++ {
		require.NoError(t, r.tach.PollEdges(), "disabled pin 4 is never read")
	}
	assert.Equal(t, uint32(1), r.tach.channels[0].count.Load())
	assert.Equal(t, uint32(0), r.tach.channels[1].count.Load())
}

func TestPollReadErrorKeepsState(t *testing.T) {
	r := newRig(t, ModePolled, 1000, fan("E0", 3, 1))
	r.pins.Script(3, true, false)

	require.NoError(t, r.tach.PollEdges())
	assert.True(t, r.tach.channels[0].level)

	r.pins.ReadError = errors.New("bus fault")
	err := r.tach.PollEdges()
	assert.ErrorContains(t, err, "E0")
	assert.ErrorContains(t, err, "bus fault")
	assert.True(t, r.tach.channels[0].level, "level must survive a failed read")

	r.pins.ReadError = nil
	require.NoError(t, r.tach.PollEdges())
	assert.Equal(t, uint32(1), r.tach.channels[0].count.Load())
}

func TestPolledWindowFortyEdges(t *testing.T) {
	r := newRig(t, ModePolled, 1000, fan("E0", 3, 2))

	var levels []bool
	for i := 0; i < 40; i++ {
		levels = append(levels, true, false)
	}
	r.pins.Script(3, levels...)
	for range levels {
		require.NoError(t, r.tach.PollEdges())
	}
	r.clock.Advance(1000)

	require.True(t, r.tach.UpdateRpm())
	assert.Equal(t, uint32(1200), r.tach.RPMOf(0))
}

// squareWave is high for the first half of every period.
func squareWave(periodMs, t uint32) bool {
	return t%periodMs < periodMs/2
}

// referenceFallingEdges models the poll loop independently: sample the
// waveform every pollMs starting from a low level and count high-to-low
// transitions between consecutive samples.
func referenceFallingEdges(periodMs, pollMs, windowMs uint32) uint32 {
	var n uint32
	prev := false
	for t := uint32(0); t < windowMs; t += pollMs {
		cur := squareWave(periodMs, t)
		if prev && !cur {
			n++
		}
		prev = cur
	}
	return n
}

func TestPolledUndercountMatchesReferenceModel(t *testing.T) {
	tests := []struct {
		name              string
		period, poll, win uint32
		wantCount         uint32
	}{
		// 4ms pulses sampled every 3ms: only every third falling edge is seen.
		{"coarse poll", 4, 3, 1200, 100},
		// Sampling at the pulse period aliases to a constant level.
		{"aliased", 4, 4, 1200, 0},
		// Fast enough: every edge is seen.
		{"adequate poll", 8, 1, 1200, 150},
		// 5ms pulses sampled every 2ms still see both falls per 10ms.
		{"just adequate", 5, 2, 1000, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, ModePolled, tt.win, fan("E0", 3, 2))

			var levels []bool
			for ts := uint32(0); ts < tt.win; ts += tt.poll {
				levels = append(levels, squareWave(tt.period, ts))
			}
			r.pins.Script(3, levels...)

			for ts := uint32(0); ts < tt.win; ts += tt.poll {
				r.clock.Set(testStart + ts)
				require.NoError(t, r.tach.PollEdges())
				require.False(t, r.tach.UpdateRpm(), "window must not close early")
			}

			want := referenceFallingEdges(tt.period, tt.poll, tt.win)
			require.Equal(t, tt.wantCount, want, "reference model")
			assert.Equal(t, want, r.tach.channels[0].count.Load())

			actual := tt.win / tt.period
			assert.LessOrEqual(t, want, actual, "polling never overcounts")

			r.clock.Set(testStart + tt.win)
			require.True(t, r.tach.UpdateRpm())
			assert.Equal(t, Estimate(want, 2, tt.win), r.tach.RPMOf(0))
		})
	}
}
