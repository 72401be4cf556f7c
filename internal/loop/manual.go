package loop

import (
	"sync"
	"time"
)

// Manual is a deterministic Scheduler for tests and headless hosts.
// Deferred functions run only when Drain is called, timers tick only when
// Fire is called, and the clock moves only through Advance.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	pending []func()
	timers  []*manualTimer
}

// NewManual creates a manual loop whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Defer queues fn until the next Drain.
func (m *Manual) Defer(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.pending = append(m.pending, fn)
	m.mu.Unlock()
}

// Every registers a timer that ticks on Fire.
func (m *Manual) Every(interval time.Duration, fn func()) Timer {
	t := &manualTimer{interval: interval, fn: fn}
	m.mu.Lock()
	m.timers = append(m.timers, t)
	m.mu.Unlock()
	return t
}

// Now returns the manual clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Pending returns the number of queued functions.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Drain runs queued functions, including any queued while draining, and
// returns how many ran.
func (m *Manual) Drain() int {
	n := 0
	for {
		m.mu.Lock()
		batch := m.pending
		m.pending = nil
		m.mu.Unlock()
		if len(batch) == 0 {
			return n
		}
		for _, fn := range batch {
			fn()
			n++
		}
	}
}

// Fire ticks every running timer once, in creation order.
func (m *Manual) Fire() {
	for _, t := range m.ActiveTimers() {
		if !t.(*manualTimer).isStopped() {
			t.(*manualTimer).fn()
		}
	}
}

// Tick advances the clock by d, fires the timers and drains the queue.
func (m *Manual) Tick(d time.Duration) {
	m.Advance(d)
	m.Fire()
	m.Drain()
}

// ActiveTimers returns the timers that have not been stopped.
func (m *Manual) ActiveTimers() []Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Timer
	kept := m.timers[:0]
	for _, t := range m.timers {
		if t.isStopped() {
			continue
		}
		kept = append(kept, t)
		out = append(out, t)
	}
	m.timers = kept
	return out
}

// Interval returns the interval a manual timer was created with.
func Interval(t Timer) time.Duration {
	if mt, ok := t.(*manualTimer); ok {
		return mt.interval
	}
	return 0
}

type manualTimer struct {
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	stopped bool
}

func (t *manualTimer) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *manualTimer) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
