// Package debounce coalesces bursts of rapidly-changing values into a
// single delayed callback, used for search-as-you-type style inputs and
// for collapsing catalog invalidation storms into one cache reload.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the settle window used when no delay is configured
const DefaultDelay = 500 * time.Millisecond

// Debouncer delivers only the last value of a burst: each Trigger
// (re)starts the delay timer, cancelling any pending delivery, and the
// callback fires once no further Trigger arrives within the delay.
// The callback therefore only ever observes a value the input held
// continuously for the full delay.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(T)
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// New creates a debouncer that invokes fn with the settled value.
// A non-positive delay falls back to DefaultDelay.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{
		delay: delay,
		fn:    fn,
	}
}

// Trigger records a new input value and restarts the settle timer.
// Any previously pending delivery is cancelled. Trigger after Stop is
// a no-op.
func (d *Debouncer[T]) Trigger(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	// Stop does not wait for an expired timer whose callback is already
	// running, so the callback re-checks the generation under the lock.
	// A superseded callback must neither fire nor clear the timer that
	// replaced its own.
	d.gen++
	gen := d.gen

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		d.fn(value)
	})
}

// Stop cancels any pending delivery and prevents future ones.
// No new callback starts after Stop returns.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a delivery is currently scheduled
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
