// Package irq provides the critical section used to read and reset shared
// pulse counters.
//
// On hosted Go there are no hardware interrupts: edge handlers run on the
// GPIO backend's event goroutine and are routed through Mask.Dispatch, so a
// disabled Mask holds them off until Restore. Under TinyGo the CPU type
// masks real interrupts through runtime/interrupt.
package irq

// Controller disables and restores preemption of the calling context.
type Controller interface {
	// Disable masks interrupt dispatch and returns the state to restore.
	Disable() State

	// Restore re-enables dispatch as it was before the matching Disable.
	Restore(State)
}

// Dispatcher runs interrupt handlers with respect to a Controller.
type Dispatcher interface {
	// Dispatch runs fn as an interrupt handler would: never while the
	// controller is disabled.
	Dispatch(fn func())
}
