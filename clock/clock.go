// Package clock abstracts the timers the sequencer runs on so playback can
// be driven by the wall clock in the app and stepped deterministically in
// tests.
package clock

import "time"

// Clock is the subset of the time package used for scheduling
type Clock interface {
	Now() time.Time

	// AfterFunc calls f once d has elapsed. The real clock calls f on its
	// own goroutine; the fake calls it from Advance.
	AfterFunc(d time.Duration, f func()) *Timer

	// NewTicker delivers ticks every d on C. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
}

// Timer is a pending AfterFunc call
type Timer struct {
	stop func() bool
}

// Stop cancels the call. Returns false if it already ran or was stopped.
func (t *Timer) Stop() bool { return t.stop() }

// Ticker delivers periodic ticks on C. C has capacity 1 and drops ticks
// the reader is too slow for.
type Ticker struct {
	C    <-chan time.Time
	stop func()
}

// Stop turns the ticker off. C is not closed.
func (t *Ticker) Stop() { t.stop() }
