//go:build tinygo

package irq

import "runtime/interrupt"

// State is the interrupt state saved by Disable.
type State = interrupt.State

// CPU masks hardware interrupts on the current core.
type CPU struct{}

// Disable disables interrupts and returns the previous state.
func (CPU) Disable() State {
	return interrupt.Disable()
}

// Restore restores the interrupt state.
func (CPU) Restore(s State) {
	interrupt.Restore(s)
}

// Dispatch calls fn directly. On hardware the handler already runs in
// interrupt context.
func (CPU) Dispatch(fn func()) {
	fn()
}
