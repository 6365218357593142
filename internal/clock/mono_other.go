//go:build !linux || tinygo

package clock

import "time"

var epoch = time.Now()

// Monotonic derives milliseconds from the runtime's monotonic reading.
type Monotonic struct{}

// NewMonotonic returns the process monotonic clock.
func NewMonotonic() Monotonic {
	return Monotonic{}
}

// NowMillis returns milliseconds since process start, truncated to 32 bits.
func (Monotonic) NowMillis() uint32 {
	return uint32(time.Since(epoch).Milliseconds())
}
