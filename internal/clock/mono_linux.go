//go:build linux && !tinygo

package clock

import "golang.org/x/sys/unix"

// Monotonic reads CLOCK_MONOTONIC. Unlike time.Now it is unaffected by
// wall-clock steps from NTP.
type Monotonic struct{}

// NewMonotonic returns the system monotonic clock.
func NewMonotonic() Monotonic {
	return Monotonic{}
}

// NowMillis returns CLOCK_MONOTONIC in milliseconds, truncated to 32 bits.
func (Monotonic) NowMillis() uint32 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// CLOCK_MONOTONIC is mandatory on Linux
		panic("clock: CLOCK_MONOTONIC unavailable: " + err.Error())
	}
	return uint32(ts.Nano() / 1e6)
}
