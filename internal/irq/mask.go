//go:build !tinygo

package irq

import "sync"

// State is the saved dispatch state. Hosted Go has nothing to save.
type State uintptr

// Mask emulates an interrupt mask for handlers delivered on goroutines.
// The zero value is ready to use.
type Mask struct {
	mu sync.Mutex
}

// Disable blocks handler dispatch until Restore.
func (m *Mask) Disable() State {
	m.mu.Lock()
	return 0
}

// Restore resumes handler dispatch. Handlers that arrived while masked run
// after this returns, in arrival order as far as the runtime allows.
func (m *Mask) Restore(State) {
	m.mu.Unlock()
}

// Dispatch runs fn unless the mask is disabled, in which case it waits.
func (m *Mask) Dispatch(fn func()) {
	m.mu.Lock()
	fn()
	m.mu.Unlock()
}
