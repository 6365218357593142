package gpio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sweeney/fan-tach/internal/irq"
)

// FakePins is a test double with scripted levels and manually fired edges.
type FakePins struct {
	mu sync.Mutex

	// levels holds scripted levels per pin. Each ReadLevel consumes the
	// next one; once exhausted the last level repeats.
	levels map[Pin][]bool
	index  map[Pin]int

	inputs   map[Pin]bool
	handlers map[Pin]func()
	dispatch irq.Dispatcher

	// ReadError, if set, will be returned by ReadLevel.
	ReadError error

	// RegisterError, if set, will be returned by RegisterFallingEdge.
	RegisterError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePins creates FakePins that deliver edges through d. A nil d calls
// handlers directly.
func NewFakePins(d irq.Dispatcher) *FakePins {
	return &FakePins{
		levels:   make(map[Pin][]bool),
		index:    make(map[Pin]int),
		inputs:   make(map[Pin]bool),
		handlers: make(map[Pin]func()),
		dispatch: d,
	}
}

// Script replaces the levels returned for pin.
func (f *FakePins) Script(pin Pin, levels ...bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels[pin] = levels
	f.index[pin] = 0
}

// ConfigureInput records the pin configuration.
func (f *FakePins) ConfigureInput(pin Pin, pullUp bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs[pin] = pullUp
	return nil
}

// Input reports whether pin was configured and with which pull-up setting.
func (f *FakePins) Input(pin Pin) (pullUp, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pullUp, ok = f.inputs[pin]
	return pullUp, ok
}

// ReadLevel returns the next scripted level for pin.
func (f *FakePins) ReadLevel(pin Pin) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ReadError != nil {
		return false, f.ReadError
	}
	if _, ok := f.inputs[pin]; !ok {
		return false, fmt.Errorf("pin %d not configured", pin)
	}

	levels := f.levels[pin]
	if len(levels) == 0 {
		return false, errors.New("no levels scripted")
	}

	i := f.index[pin]
	if i < len(levels)-1 {
		f.index[pin] = i + 1
	}
	return levels[i], nil
}

// RegisterFallingEdge stores handler for Fire.
func (f *FakePins) RegisterFallingEdge(pin Pin, handler func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RegisterError != nil {
		return f.RegisterError
	}
	f.handlers[pin] = handler
	return nil
}

// Fire delivers one falling edge on pin. It returns false if no handler is
// registered. Fire blocks while the dispatcher is masked.
func (f *FakePins) Fire(pin Pin) bool {
	f.mu.Lock()
	h := f.handlers[pin]
	d := f.dispatch
	f.mu.Unlock()

	if h == nil {
		return false
	}
	if d == nil {
		h()
		return true
	}
	d.Dispatch(h)
	return true
}

// Close marks the pins as closed.
func (f *FakePins) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
