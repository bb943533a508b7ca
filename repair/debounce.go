package repair

import (
	"sync"
	"time"
)

// DefaultDebounce is the trailing-edge delay applied between an event
// arriving and the inspection it schedules.
const DefaultDebounce = 3 * time.Second

// Debouncer coalesces bursts of triggers into a single callback on the
// trailing edge. Each Trigger restarts the delay window, so the callback
// fires once the triggers go quiet.
//
// The callback runs on a timer goroutine outside the debouncer's lock,
// so callbacks from consecutive windows may overlap. Callers needing
// serial execution must synchronize inside the callback.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	pending bool
	stopped bool
}

// NewDebouncer creates a debouncer that invokes fn after triggers have
// been quiet for delay. A non-positive delay falls back to
// DefaultDebounce.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{
		delay: delay,
		fn:    fn,
	}
}

// Trigger schedules the callback, restarting the delay window if one is
// already open. Triggers after Stop are ignored.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Flush invokes the callback immediately if a window is open, cancelling
// the pending timer. It does nothing when no trigger is pending.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	d.fn()
}

// Stop cancels any pending callback and rejects further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Pending reports whether a trigger is waiting for its window to close.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()

	d.fn()
}
