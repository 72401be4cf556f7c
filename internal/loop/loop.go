// Package loop provides the cooperative run loop that every component of
// indentscope executes on.
//
// A Loop owns a single goroutine. Work is submitted with Defer and always
// runs on a later turn of the loop, never synchronously inside the caller.
// Periodic timers created with Every do not run their callback on the timer
// goroutine; each tick is posted to the loop queue instead, so timer
// callbacks, deferred functions and host events never interleave.
package loop

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Run when the loop has been closed.
var ErrClosed = errors.New("loop closed")

// Scheduler is the part of a loop that components depend on.
type Scheduler interface {
	// Defer queues fn to run on a later turn of the loop.
	Defer(fn func())

	// Every calls fn on the loop once per interval until the returned
	// timer is stopped.
	Every(interval time.Duration, fn func()) Timer

	// Now returns the loop clock.
	Now() time.Time
}

// Timer is a periodic timer created by Scheduler.Every.
type Timer interface {
	// Stop stops the timer. Ticks already queued are discarded.
	Stop()
}

// Loop is a goroutine-backed Scheduler. The queue is unbounded so Defer
// never blocks, including when called from the loop goroutine itself.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// New creates an idle loop. Call Run to start processing.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Defer queues fn. Calls after Close are dropped.
func (l *Loop) Defer(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Now returns the wall clock.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Every starts a periodic timer whose ticks are posted to the loop.
func (l *Loop) Every(interval time.Duration, fn func()) Timer {
	if interval <= 0 {
		interval = time.Millisecond
	}
	t := &tickTimer{
		ticker: time.NewTicker(interval),
		stop:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				l.Defer(func() {
					if !t.stopped() {
						fn()
					}
				})
			case <-t.stop:
				return
			case <-l.done:
				t.ticker.Stop()
				return
			}
		}
	}()
	return t
}

// Run executes queued functions until ctx is cancelled or Close is called.
// Each wake-up runs the batch queued so far; work deferred by that batch
// runs on the next turn.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return ErrClosed
		case <-l.wake:
		}

		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}

		l.mu.Lock()
		more := len(l.pending) > 0
		l.mu.Unlock()
		if more {
			select {
			case l.wake <- struct{}{}:
			default:
			}
		}
	}
}

// Close stops the loop. Pending work is discarded.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.pending = nil
	close(l.done)
}

type tickTimer struct {
	ticker *time.Ticker
	once   sync.Once
	stop   chan struct{}

	mu     sync.Mutex
	halted bool
}

func (t *tickTimer) Stop() {
	t.once.Do(func() {
		t.mu.Lock()
		t.halted = true
		t.mu.Unlock()
		t.ticker.Stop()
		close(t.stop)
	})
}

func (t *tickTimer) stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.halted
}
