package tach

import (
	"fmt"
	"io"
)

// RPMOf returns the last computed RPM of channel i. Disabled channels and
// out-of-range indexes report 0.
func (t *Tach) RPMOf(i int) uint32 {
	if i < 0 || i >= len(t.channels) {
		return 0
	}
	return t.channels[i].rpm.Load()
}

// Interval returns the length in milliseconds of the last completed window,
// or 0 before the first one.
func (t *Tach) Interval() uint32 {
	return t.lastInterval.Load()
}

// Readings returns the last RPM of every configured channel in
// configuration order.
func (t *Tach) Readings() []Reading {
	out := make([]Reading, len(t.channels))
	for i, ch := range t.channels {
		out[i] = Reading{
			Name:    ch.cfg.Name,
			Enabled: ch.cfg.Enabled,
			RPM:     ch.rpm.Load(),
		}
	}
	return out
}

// PrintReport writes each enabled channel's name and RPM to s and ends the
// line.
func (t *Tach) PrintReport(s Sink) {
	for _, ch := range t.active {
		s.Write(ch.cfg.Name, ch.rpm.Load())
	}
	s.EndLine()
}

// TextSink renders a report as " E0: 1200 0: 840\n".
type TextSink struct {
	w io.Writer
}

// NewTextSink returns a Sink writing to w. Write errors are dropped; the
// report is diagnostic only.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Write appends " label: value".
func (s *TextSink) Write(label string, value uint32) {
	fmt.Fprintf(s.w, " %s: %d", label, value)
}

// EndLine terminates the report line.
func (s *TextSink) EndLine() {
	io.WriteString(s.w, "\n")
}
