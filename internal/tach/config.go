package tach

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sweeney/fan-tach/internal/gpio"
)

// DefaultMinWindowMillis is the default minimum sample window.
const DefaultMinWindowMillis = 1000

// ChannelConfig describes one tachometer input.
type ChannelConfig struct {
	Name    string
	Pin     gpio.Pin
	PPR     uint32 // pulses per revolution, >= 1
	PullUp  bool
	Enabled bool
}

// Config is the static configuration of a Tach.
type Config struct {
	Channels        []ChannelConfig
	MinWindowMillis uint32
	Mode            Mode
}

// Validate checks c for values New cannot accept.
func (c Config) Validate() error {
	if c.MinWindowMillis == 0 {
		return fmt.Errorf("%w: minimum window must be positive", ErrInvalidConfig)
	}
	if c.Mode != ModeInterrupt && c.Mode != ModePolled {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidConfig, int(c.Mode))
	}

	names := make(map[string]bool)
	pins := make(map[gpio.Pin]string)
	for i, ch := range c.Channels {
		if ch.Name == "" {
			return fmt.Errorf("%w: channel %d has no name", ErrInvalidConfig, i)
		}
		if names[ch.Name] {
			return fmt.Errorf("%w: duplicate channel %q", ErrInvalidConfig, ch.Name)
		}
		names[ch.Name] = true
		if ch.PPR < 1 {
			return fmt.Errorf("%w: channel %q: pulses per revolution must be >= 1", ErrInvalidConfig, ch.Name)
		}
		if !ch.Enabled {
			continue
		}
		if other, ok := pins[ch.Pin]; ok {
			return fmt.Errorf("%w: channels %q and %q share pin %d", ErrInvalidConfig, other, ch.Name, ch.Pin)
		}
		pins[ch.Pin] = ch.Name
	}
	return nil
}

// ParseMode parses "interrupt" or "polled".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "interrupt", "irq":
		return ModeInterrupt, nil
	case "polled", "poll":
		return ModePolled, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
}

// ParseChannel parses "name:pin:ppr[:pullup][:disabled]", e.g. "E0:23:2:pullup".
func ParseChannel(s string) (ChannelConfig, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 {
		return ChannelConfig{}, fmt.Errorf("%w: channel %q: want name:pin:ppr[:pullup][:disabled]", ErrInvalidConfig, s)
	}

	pin, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return ChannelConfig{}, fmt.Errorf("%w: channel %q: pin: %v", ErrInvalidConfig, s, err)
	}
	ppr, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return ChannelConfig{}, fmt.Errorf("%w: channel %q: ppr: %v", ErrInvalidConfig, s, err)
	}

	ch := ChannelConfig{
		Name:    parts[0],
		Pin:     gpio.Pin(pin),
		PPR:     uint32(ppr),
		Enabled: true,
	}
	for _, opt := range parts[3:] {
		switch strings.ToLower(opt) {
		case "pullup":
			ch.PullUp = true
		case "disabled":
			ch.Enabled = false
		default:
			return ChannelConfig{}, fmt.Errorf("%w: channel %q: unknown option %q", ErrInvalidConfig, s, opt)
		}
	}
	return ch, nil
}
