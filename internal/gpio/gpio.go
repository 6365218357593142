// Package gpio provides tachometer input pins with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Pin identifies an input line (line offset on Linux, board pin on TinyGo).
type Pin uint32

// Pins configures and reads tachometer inputs.
type Pins interface {
	// ConfigureInput prepares pin as an input, optionally with pull-up.
	ConfigureInput(pin Pin, pullUp bool) error

	// ReadLevel returns the raw level of pin (true = high).
	ReadLevel(pin Pin) (bool, error)

	// RegisterFallingEdge arranges for handler to run on every high-to-low
	// transition of pin. Handlers may run on another goroutine.
	RegisterFallingEdge(pin Pin, handler func()) error

	// Close releases GPIO resources.
	Close() error
}

// Default tachometer inputs (BCM numbering) for the two case fans.
const (
	DefaultPinFan0 = 23
	DefaultPinFan1 = 24
)
