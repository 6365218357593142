package tach

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sweeney/fan-tach/internal/clock"
	"github.com/sweeney/fan-tach/internal/gpio"
	"github.com/sweeney/fan-tach/internal/irq"
)

const testStart = 5000

type rig struct {
	tach  *Tach
	pins  *gpio.FakePins
	clock *clock.Manual
	mask  *irq.Mask
}

func newRig(t *testing.T, mode Mode, window uint32, channels ...ChannelConfig) *rig {
	t.Helper()
	return newRigWithController(t, mode, window, nil, channels...)
}

func newRigWithController(t *testing.T, mode Mode, window uint32, cpu irq.Controller, channels ...ChannelConfig) *rig {
	t.Helper()
	mask := &irq.Mask{}
	if cpu == nil {
		cpu = mask
	}
	pins := gpio.NewFakePins(mask)
	clk := clock.NewManual(testStart)

	tc, err := New(Config{
		Channels:        channels,
		MinWindowMillis: window,
		Mode:            mode,
	}, pins, clk, cpu, gpio.LinearMap(64))
	require.NoError(t, err)
	require.NoError(t, tc.Init())

	return &rig{tach: tc, pins: pins, clock: clk, mask: mask}
}

func fan(name string, pin gpio.Pin, ppr uint32) ChannelConfig {
	return ChannelConfig{Name: name, Pin: pin, PPR: ppr, Enabled: true}
}

func (r *rig) fire(t *testing.T, pin gpio.Pin, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.True(t, r.pins.Fire(pin), "no handler on pin %d", pin)
	}
}
