package radiosim

import (
	"sync"
	"sync/atomic"
)

// Button is a simulated reset button. The monitor UI holds and releases it;
// the control loop polls it every tick.
type Button struct {
	pressed atomic.Bool
}

// NewButton creates a released button.
func NewButton() *Button {
	return &Button{}
}

// Press holds the button down.
func (b *Button) Press() {
	b.pressed.Store(true)
}

// Release lets the button go.
func (b *Button) Release() {
	b.pressed.Store(false)
}

// Pressed reports the current button state.
func (b *Button) Pressed() bool {
	return b.pressed.Load()
}

// Restarter records restart requests instead of restarting the host. The
// simulate command watches it to report that a factory reset completed.
type Restarter struct {
	mu       sync.Mutex
	restarts int
	notify   func()
}

// NewRestarter creates a restarter. notify, if non-nil, is invoked on every
// restart request.
func NewRestarter(notify func()) *Restarter {
	return &Restarter{notify: notify}
}

// Restart records the request.
func (r *Restarter) Restart() {
	r.mu.Lock()
	r.restarts++
	notify := r.notify
	r.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// Restarts returns how many restarts were requested.
func (r *Restarter) Restarts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restarts
}
