// Package tach counts fan tachometer pulses and converts them to RPM over a
// minimum sample window.
//
// Edges are counted either by falling-edge interrupt handlers or by a
// polling routine that compares successive pin levels. UpdateRpm, called
// from the host's idle loop, snapshots and resets all counts inside a
// single critical section once the window has elapsed, then computes RPM
// outside it. This package does no logging and holds no global state.
package tach

import "errors"

// Mode selects how edges are detected. It applies to all channels.
type Mode int

const (
	// ModeInterrupt counts edges in falling-edge interrupt handlers.
	ModeInterrupt Mode = iota
	// ModePolled counts edges in PollEdges.
	ModePolled
)

// String returns the flag spelling of m.
func (m Mode) String() string {
	switch m {
	case ModeInterrupt:
		return "interrupt"
	case ModePolled:
		return "polled"
	}
	return "unknown"
}

var (
	// ErrInvalidConfig reports a configuration New cannot accept.
	ErrInvalidConfig = errors.New("invalid tach config")

	// ErrNotInterruptCapable reports an interrupt-mode channel on a pin
	// without an edge interrupt line. It is fatal at initialization.
	ErrNotInterruptCapable = errors.New("pin is not interrupt-capable")

	// ErrNotPolled is returned by PollEdges in interrupt mode.
	ErrNotPolled = errors.New("edge polling requires polled mode")
)

// Reading is the last computed speed of one channel.
type Reading struct {
	Name    string
	Enabled bool
	RPM     uint32
}

// Sink receives the diagnostic report.
type Sink interface {
	Write(label string, value uint32)
	EndLine()
}
