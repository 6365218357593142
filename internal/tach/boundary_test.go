package tach

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/fan-tach/internal/gpio"
	"github.com/sweeney/fan-tach/internal/irq"
)

// boundaryInjector delivers one edge immediately before the critical
// section is entered and another while it is held, so the second edge is
// dispatched as soon as the section is left.
type boundaryInjector struct {
	mask *irq.Mask
	pins *gpio.FakePins
	pin  gpio.Pin

	inflight sync.WaitGroup
	injected int
}

func (b *boundaryInjector) Disable() irq.State {
	b.pins.Fire(b.pin)
	s := b.mask.Disable()
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		b.pins.Fire(b.pin)
	}()
	b.injected += 2
	return s
}

func (b *boundaryInjector) Restore(s irq.State) {
	b.mask.Restore(s)
	b.inflight.Wait()
}

func TestEdgeAtCriticalSectionBoundary(t *testing.T) {
	inj := &boundaryInjector{pin: 3}
	r := newRigWithController(t, ModeInterrupt, 1000, inj, fan("E0", 3, 1))
	inj.mask = r.mask
	inj.pins = r.pins

	r.fire(t, 3, 10)
	r.clock.Advance(1000)
	require.True(t, r.tach.UpdateRpm())

	// The edge before the section belongs to this window, the held one to
	// the next.
	assert.Equal(t, uint32(11), r.tach.counts[0])
	assert.Equal(t, uint32(660), r.tach.RPMOf(0))
	assert.Equal(t, uint32(1), r.tach.channels[0].count.Load())

	r.clock.Advance(1000)
	require.True(t, r.tach.UpdateRpm())
	assert.Equal(t, uint32(2), r.tach.counts[0])
	assert.Equal(t, uint32(120), r.tach.RPMOf(0))

	delivered := uint32(10 + inj.injected)
	counted := uint32(11+2) + r.tach.channels[0].count.Load()
	assert.Equal(t, delivered, counted, "no edge lost or double-counted")
}

func TestConcurrentEdgesNeverLostOrDoubled(t *testing.T) {
	r := newRig(t, ModeInterrupt, 10, fan("E0", 3, 1), fan("E1", 4, 1))

	const producers = 4
	const perProducer = 5000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		pin := gpio.Pin(3 + p%2)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				r.pins.Fire(pin)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var total [2]uint64
	collect := func() {
		r.clock.Advance(10)
		if r.tach.UpdateRpm() {
			total[0] += uint64(r.tach.counts[0])
			total[1] += uint64(r.tach.counts[1])
		}
	}

loop:
	for {
		select {
		case <-done:
			break loop
		default:
			collect()
		}
	}
	collect()

	want := uint64(producers / 2 * perProducer)
	assert.Equal(t, want, total[0])
	assert.Equal(t, want, total[1])
}
