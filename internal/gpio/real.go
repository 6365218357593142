//go:build linux && !tinygo

package gpio

import (
	"fmt"
	"io"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/fan-tach/internal/irq"
)

// RealPins reads tachometer inputs using the Linux GPIO character device.
type RealPins struct {
	mu       sync.Mutex
	chip     *gpiocdev.Chip
	lines    map[Pin]*gpiocdev.Line
	pullUps  map[Pin]bool
	dispatch irq.Dispatcher
}

// NewRealPins opens chipName (e.g. "gpiochip0"). Edge handlers are run
// through d so they respect the scheduler's critical section.
func NewRealPins(chipName string, d irq.Dispatcher) (*RealPins, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &RealPins{
		chip:     chip,
		lines:    make(map[Pin]*gpiocdev.Line),
		pullUps:  make(map[Pin]bool),
		dispatch: d,
	}, nil
}

// InterruptMap reports every line of the chip as edge-capable.
func (r *RealPins) InterruptMap() InterruptMap {
	return LinearMap(r.chip.Lines())
}

func inputOptions(pullUp bool) []gpiocdev.LineReqOption {
	if pullUp {
		return []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullUp}
	}
	return []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithBiasDisabled}
}

// ConfigureInput requests pin as an input line.
func (r *RealPins) ConfigureInput(pin Pin, pullUp bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old := r.lines[pin]; old != nil {
		old.Close()
		delete(r.lines, pin)
	}

	line, err := r.chip.RequestLine(int(pin), inputOptions(pullUp)...)
	if err != nil {
		return fmt.Errorf("request pin %d: %w", pin, err)
	}
	r.lines[pin] = line
	r.pullUps[pin] = pullUp
	return nil
}

// ReadLevel returns the raw level of pin.
func (r *RealPins) ReadLevel(pin Pin) (bool, error) {
	r.mu.Lock()
	line := r.lines[pin]
	r.mu.Unlock()

	if line == nil {
		return false, fmt.Errorf("read pin %d: not configured", pin)
	}
	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return v != 0, nil
}

// RegisterFallingEdge re-requests pin with falling-edge detection. The
// kernel queues edges while the handler is held off by the dispatcher.
func (r *RealPins) RegisterFallingEdge(pin Pin, handler func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pullUp := r.pullUps[pin]
	if old := r.lines[pin]; old != nil {
		old.Close()
		delete(r.lines, pin)
	}

	d := r.dispatch
	opts := append(inputOptions(pullUp),
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			d.Dispatch(handler)
		}))

	line, err := r.chip.RequestLine(int(pin), opts...)
	if err != nil {
		return fmt.Errorf("request edge events on pin %d: %w", pin, err)
	}
	r.lines[pin] = line
	return nil
}

// Close releases all lines and the chip.
func (r *RealPins) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var chip io.Closer
	if r.chip != nil {
		chip = r.chip
	}
	err := closeAll(r.lines, chip)
	r.lines = map[Pin]*gpiocdev.Line{}
	return err
}
