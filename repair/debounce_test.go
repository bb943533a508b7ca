package repair

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestNewDebouncer_DefaultDelay(t *testing.T) {
	d := NewDebouncer(0, func() {})
	defer d.Stop()

	if d.delay != DefaultDebounce {
		t.Errorf("delay = %v, want %v", d.delay, DefaultDebounce)
	}

	d2 := NewDebouncer(-time.Second, func() {})
	defer d2.Stop()

	if d2.delay != DefaultDebounce {
		t.Errorf("delay = %v, want %v", d2.delay, DefaultDebounce)
	}
}

func TestDebouncer_TrailingEdge(t *testing.T) {
	fired := make(chan struct{}, 10)
	d := NewDebouncer(20*time.Millisecond, func() { fired <- struct{}{} })
	defer d.Stop()

	// A burst of triggers coalesces into one callback
	d.Trigger()
	d.Trigger()
	d.Trigger()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not fire")
	}

	select {
	case <-fired:
		t.Fatal("callback fired more than once for a single burst")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	fired := make(chan struct{}, 10)
	d := NewDebouncer(10*time.Millisecond, func() { fired <- struct{}{} })
	defer d.Stop()

	d.Trigger()
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("first callback did not fire")
	}

	d.Trigger()
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("second callback did not fire")
	}
}

func TestDebouncer_WindowRestart(t *testing.T) {
	var count atomic.Int32
	d := NewDebouncer(200*time.Millisecond, func() { count.Add(1) })
	defer d.Stop()

	// Each trigger restarts the window, so nothing fires while triggers
	// keep arriving faster than the delay.
	d.Trigger()
	time.Sleep(100 * time.Millisecond)
	d.Trigger()
	time.Sleep(100 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("callback fired %d time(s) during an open window, want 0", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for count.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := count.Load(); got != 1 {
		t.Errorf("callback fired %d time(s), want 1", got)
	}
}

func TestDebouncer_Flush(t *testing.T) {
	var count atomic.Int32
	d := NewDebouncer(time.Hour, func() { count.Add(1) })
	defer d.Stop()

	d.Trigger()
	if !d.Pending() {
		t.Error("Pending() = false after Trigger(), want true")
	}

	d.Flush()
	if got := count.Load(); got != 1 {
		t.Errorf("callback fired %d time(s) after Flush(), want 1", got)
	}
	if d.Pending() {
		t.Error("Pending() = true after Flush(), want false")
	}

	// Flush with nothing pending is a no-op
	d.Flush()
	if got := count.Load(); got != 1 {
		t.Errorf("callback fired %d time(s) after second Flush(), want 1", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	var count atomic.Int32
	d := NewDebouncer(10*time.Millisecond, func() { count.Add(1) })

	d.Trigger()
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	if got := count.Load(); got != 0 {
		t.Errorf("callback fired %d time(s) after Stop(), want 0", got)
	}

	// Triggers after Stop are ignored
	d.Trigger()
	if d.Pending() {
		t.Error("Pending() = true after Trigger() on stopped debouncer, want false")
	}

	time.Sleep(100 * time.Millisecond)
	if got := count.Load(); got != 0 {
		t.Errorf("callback fired %d time(s) after stopped Trigger(), want 0", got)
	}

	// Flush after Stop is a no-op
	d.Flush()
	if got := count.Load(); got != 0 {
		t.Errorf("callback fired %d time(s) after stopped Flush(), want 0", got)
	}
}

func TestDebouncer_Pending(t *testing.T) {
	d := NewDebouncer(time.Hour, func() {})
	defer d.Stop()

	if d.Pending() {
		t.Error("Pending() = true before any trigger, want false")
	}

	d.Trigger()
	if !d.Pending() {
		t.Error("Pending() = false after Trigger(), want true")
	}

	d.Stop()
	if d.Pending() {
		t.Error("Pending() = true after Stop(), want false")
	}
}
