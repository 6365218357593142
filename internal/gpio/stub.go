//go:build !linux && !tinygo

package gpio

import (
	"errors"

	"github.com/sweeney/fan-tach/internal/irq"
)

// RealPins is not available on non-Linux platforms.
type RealPins struct{}

// NewRealPins returns an error on non-Linux platforms.
func NewRealPins(chipName string, d irq.Dispatcher) (*RealPins, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// InterruptMap reports no interrupt-capable pins.
func (r *RealPins) InterruptMap() InterruptMap {
	return LinearMap(0)
}

// ConfigureInput is not implemented on non-Linux platforms.
func (r *RealPins) ConfigureInput(pin Pin, pullUp bool) error {
	return errors.New("gpio: not supported")
}

// ReadLevel is not implemented on non-Linux platforms.
func (r *RealPins) ReadLevel(pin Pin) (bool, error) {
	return false, errors.New("gpio: not supported")
}

// RegisterFallingEdge is not implemented on non-Linux platforms.
func (r *RealPins) RegisterFallingEdge(pin Pin, handler func()) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealPins) Close() error {
	return nil
}
