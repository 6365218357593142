package tach

import (
	"fmt"
	"sync/atomic"

	"github.com/sweeney/fan-tach/internal/clock"
	"github.com/sweeney/fan-tach/internal/gpio"
	"github.com/sweeney/fan-tach/internal/irq"
)

// channel is the runtime state of one tachometer input.
type channel struct {
	cfg ChannelConfig

	// count is written by the edge handler and swapped to zero by the
	// scheduler inside the critical section.
	count atomic.Uint32
	rpm   atomic.Uint32

	// level is the last polled level (polled mode only, initially low).
	level bool
}

// edge is the interrupt handler body: one increment, nothing else.
func (c *channel) edge() {
	c.count.Add(1)
}

// Tach owns the pulse counters, the sample clock and the last RPM of every
// channel. UpdateRpm and PollEdges must be called from one goroutine; RPMOf
// and Readings are safe from any goroutine.
type Tach struct {
	cfg   Config
	pins  gpio.Pins
	clock clock.Clock
	cpu   irq.Controller
	irqs  gpio.InterruptMap

	channels []*channel // index matches cfg.Channels
	active   []*channel // enabled channels only
	counts   []uint32   // scratch for the snapshot, len(active)

	lastWindowStart uint32
	lastInterval    atomic.Uint32
}

// New validates cfg and builds a Tach. irqs is only consulted in interrupt
// mode and may be nil in polled mode.
func New(cfg Config, pins gpio.Pins, clk clock.Clock, cpu irq.Controller, irqs gpio.InterruptMap) (*Tach, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if pins == nil || clk == nil || cpu == nil {
		return nil, fmt.Errorf("%w: pins, clock and controller are required", ErrInvalidConfig)
	}
	if cfg.Mode == ModeInterrupt && irqs == nil {
		return nil, fmt.Errorf("%w: interrupt mode needs an interrupt map", ErrInvalidConfig)
	}

	t := &Tach{
		cfg:   cfg,
		pins:  pins,
		clock: clk,
		cpu:   cpu,
		irqs:  irqs,
	}
	for _, cc := range cfg.Channels {
		ch := &channel{cfg: cc}
		t.channels = append(t.channels, ch)
		if cc.Enabled {
			t.active = append(t.active, ch)
		}
	}
	t.counts = make([]uint32, len(t.active))
	return t, nil
}

// Init configures every enabled pin, registers edge handlers in interrupt
// mode and seeds the sample clock. An error is fatal: the Tach must not be
// used.
func (t *Tach) Init() error {
	for _, ch := range t.active {
		if err := t.pins.ConfigureInput(ch.cfg.Pin, ch.cfg.PullUp); err != nil {
			return fmt.Errorf("configure %s: %w", ch.cfg.Name, err)
		}
	}

	if t.cfg.Mode == ModeInterrupt {
		for _, ch := range t.active {
			if _, ok := t.irqs.Line(ch.cfg.Pin); !ok {
				return fmt.Errorf("%s on pin %d: %w", ch.cfg.Name, ch.cfg.Pin, ErrNotInterruptCapable)
			}
			if err := t.pins.RegisterFallingEdge(ch.cfg.Pin, ch.edge); err != nil {
				return fmt.Errorf("attach %s: %w", ch.cfg.Name, err)
			}
		}
	}

	t.lastWindowStart = t.clock.NowMillis()
	return nil
}

// Mode returns the configured edge detection mode.
func (t *Tach) Mode() Mode {
	return t.cfg.Mode
}

// Channels returns the number of configured channels, enabled or not.
func (t *Tach) Channels() int {
	return len(t.channels)
}
