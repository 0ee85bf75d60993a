package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock set to start. Time only moves when Advance is
// called.
func Fake(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// FakeClock is a deterministic Clock. Advance walks time forward one
// deadline at a time, so a callback that schedules the next tick is
// picked up within the same Advance if it falls inside the window.
//
// Callbacks run on the goroutine calling Advance, without the clock's
// lock held; they may call AfterFunc or Stop but must not call Advance.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	waiters []*waiter
}

type waiter struct {
	deadline time.Time
	seq      int // registration order breaks deadline ties
	fn       func()
	ch       chan time.Time
	interval time.Duration
	done     bool
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) add(w *waiter) {
	c.seq++
	w.seq = c.seq
	c.waiters = append(c.waiters, w)
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := &waiter{deadline: c.now.Add(max(d, 0)), fn: f}
	c.add(w)
	return &Timer{stop: func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if w.done {
			return false
		}
		w.done = true
		return true
	}}
}

func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	w := &waiter{deadline: c.now.Add(d), ch: ch, interval: d}
	c.add(w)
	return &Ticker{C: ch, stop: func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		w.done = true
	}}
}

// Advance moves the clock forward by d, firing every waiter whose
// deadline falls inside the window in deadline order. Now reports each
// waiter's deadline while it fires.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		w := c.nextLocked(target)
		if w == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = w.deadline
		if w.interval > 0 {
			w.deadline = w.deadline.Add(w.interval)
		} else {
			w.done = true
		}
		now := c.now
		c.mu.Unlock()

		if w.fn != nil {
			w.fn()
		} else {
			select {
			case w.ch <- now:
			default:
			}
		}
	}
}

// nextLocked drops finished waiters and returns the earliest one due by
// target, or nil.
func (c *FakeClock) nextLocked(target time.Time) *waiter {
	live := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.done {
			live = append(live, w)
		}
	}
	c.waiters = live
	sort.Slice(live, func(i, j int) bool {
		if live[i].deadline.Equal(live[j].deadline) {
			return live[i].seq < live[j].seq
		}
		return live[i].deadline.Before(live[j].deadline)
	})
	if len(live) == 0 || live[0].deadline.After(target) {
		return nil
	}
	return live[0]
}

// Pending returns the number of timers and tickers not yet fired or
// stopped.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, w := range c.waiters {
		if !w.done {
			n++
		}
	}
	return n
}
