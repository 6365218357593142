// Package clock provides the monotonic millisecond time base for sample
// windows. Readings are uint32 and wrap about every 49.7 days; callers must
// compute durations with unsigned subtraction.
package clock

import "sync/atomic"

// Clock returns monotonic milliseconds.
type Clock interface {
	NowMillis() uint32
}

// Elapsed returns the milliseconds from start to now, correct across a
// single wraparound of the counter.
func Elapsed(start, now uint32) uint32 {
	return now - start
}

// Manual is a Clock advanced explicitly by tests and simulations.
// It is safe for concurrent use.
type Manual struct {
	now atomic.Uint32
}

// NewManual returns a Manual clock reading start.
func NewManual(start uint32) *Manual {
	m := &Manual{}
	m.now.Store(start)
	return m
}

// NowMillis returns the current reading.
func (m *Manual) NowMillis() uint32 {
	return m.now.Load()
}

// Set moves the clock to ms.
func (m *Manual) Set(ms uint32) {
	m.now.Store(ms)
}

// Advance moves the clock forward by ms, wrapping at the uint32 limit.
func (m *Manual) Advance(ms uint32) {
	m.now.Add(ms)
}
