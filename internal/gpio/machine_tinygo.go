//go:build tinygo

package gpio

import "machine"

// MachinePins drives board pins through TinyGo's machine package. Edge
// handlers run in interrupt context.
type MachinePins struct{}

// ConfigureInput configures pin as an input, with pull-up if requested.
func (MachinePins) ConfigureInput(pin Pin, pullUp bool) error {
	mode := machine.PinInput
	if pullUp {
		mode = machine.PinInputPullup
	}
	machine.Pin(pin).Configure(machine.PinConfig{Mode: mode})
	return nil
}

// ReadLevel returns the pin level.
func (MachinePins) ReadLevel(pin Pin) (bool, error) {
	return machine.Pin(pin).Get(), nil
}

// RegisterFallingEdge attaches handler to the pin's falling-edge interrupt.
func (MachinePins) RegisterFallingEdge(pin Pin, handler func()) error {
	return machine.Pin(pin).SetInterrupt(machine.PinFalling, func(machine.Pin) {
		handler()
	})
}

// Close is a no-op; board pins stay configured.
func (MachinePins) Close() error {
	return nil
}
