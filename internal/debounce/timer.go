package debounce

// timer.go provides a cancellable debounce timer for rapidly-changing values
// such as search text typed into a list view.

import (
	"sync"
	"time"
)

// Timer delays a callback until the scheduled value has been stable for the
// requested delay. Each Schedule call restarts the quiet period; only the
// callback from the last call fires, receiving that call's value.
//
// The zero value is ready to use. A Timer must not be copied after first use.
type Timer[T any] struct {
	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64 // bumped on every Schedule/Cancel, fences late fires
	stopped bool
}

// Schedule restarts the timer. When delay elapses without another Schedule or
// Cancel, callback runs once on the timer's goroutine with value.
// Schedule on a stopped Timer is a no-op.
func (t *Timer[T]) Schedule(value T, delay time.Duration, callback func(T)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}

	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		// time.Timer.Stop can lose the race with a timer that has already
		// fired; the generation check drops those callbacks.
		if t.stopped || gen != t.gen {
			t.mu.Unlock()
			return
		}
		t.timer = nil
		t.mu.Unlock()

		callback(value)
	})
}

// Cancel drops the pending callback, if any. The timer can be scheduled again.
func (t *Timer[T]) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

// Stop cancels the pending callback and disables the timer for good.
// Use it when the owning view is discarded.
func (t *Timer[T]) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.stopped = true
}

// Pending reports whether a callback is waiting to fire.
func (t *Timer[T]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

func (t *Timer[T]) cancelLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}
