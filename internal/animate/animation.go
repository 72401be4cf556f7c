package animate

import (
	"math"
	"time"

	"github.com/dshills/indentscope/internal/animate/easing"
)

// snapBias is 1.5 * 2^52. Adding and subtracting it rounds a float64 of
// smaller magnitude to an integer using the current IEEE-754 rounding
// mode, which is round half to even.
const snapBias = 6755399441055744.0

// snapLimit bounds the magnitudes the bias trick handles exactly.
const snapLimit = 1 << 51

// Snap rounds v to an integer the way the FPU does: half to even.
func Snap(v float64) float64 {
	if math.Abs(v) >= snapLimit || math.IsNaN(v) {
		return v
	}
	x := v + snapBias
	return x - snapBias
}

// Duration describes how long an animation runs.
//
// Step is a per-unit-of-change duration; Total is a flat duration. When
// both are set the effective duration is min(Step*|to-from|, Total).
type Duration struct {
	Step  time.Duration
	Total time.Duration
}

// Resolve returns the effective duration for a change of delta units.
func (d Duration) Resolve(delta float64) time.Duration {
	delta = math.Abs(delta)
	switch {
	case d.Step > 0 && d.Total > 0:
		step := time.Duration(float64(d.Step) * delta)
		if step < d.Total {
			return step
		}
		return d.Total
	case d.Step > 0:
		return time.Duration(float64(d.Step) * delta)
	case d.Total > 0:
		return d.Total
	default:
		return 0
	}
}

// Options configures a single animation.
type Options struct {
	Duration Duration

	// Easing names a built-in easing function. Empty means linear.
	Easing string

	// EasingFunc overrides Easing when non-nil.
	EasingFunc easing.Func

	// Int snaps every intermediate value to an integer.
	Int bool

	// ID is the animation identity. It must be comparable. Adding an
	// animation with the ID of an active one replaces it. Nil assigns a
	// fresh identity.
	ID any

	// Buf and Name select the enablement toggles checked on each tick.
	Buf  int
	Name string

	// FPS is the shared timer rate requested by this animation.
	FPS int
}

// Context is passed to callbacks alongside the new value.
type Context struct {
	Animation *Animation
	Prev      float64
	Done      bool
}

// Callback receives animation values.
type Callback func(value float64, ctx Context)

// Animation interpolates a value from one number to another.
type Animation struct {
	sched *Scheduler

	id    any
	from  float64
	to    float64
	value float64

	duration time.Duration
	ease     easing.Func
	snap     bool

	buf  int
	name string

	start   time.Time
	started bool
	stopped bool

	cb Callback
}

// ID returns the animation identity.
func (a *Animation) ID() any { return a.id }

// From returns the start value.
func (a *Animation) From() float64 { return a.from }

// To returns the end value.
func (a *Animation) To() float64 { return a.to }

// Value returns the last value delivered to the callback.
func (a *Animation) Value() float64 { return a.value }

// Duration returns the effective duration.
func (a *Animation) Duration() time.Duration { return a.duration }

// Stopped reports whether the animation was stopped or replaced.
func (a *Animation) Stopped() bool { return a.stopped }

// Stop stops the animation and removes it from its scheduler without a
// final callback.
func (a *Animation) Stop() {
	a.stopped = true
	if a.sched != nil {
		a.sched.remove(a)
	}
}

// Next computes the value for the current time and whether the
// animation is complete. The start time is taken on the first call.
func (a *Animation) Next() (float64, bool) {
	if !a.sched.Enabled(a.buf, a.name) {
		return a.to, true
	}

	now := a.sched.now()
	if !a.started {
		a.start = now
		a.started = true
	}

	elapsed := now.Sub(a.start)
	if a.duration <= 0 || elapsed >= a.duration {
		return a.to, true
	}

	t := float64(elapsed) / float64(time.Millisecond)
	d := float64(a.duration) / float64(time.Millisecond)
	value := a.ease(t, a.from, a.to-a.from, d)
	if a.snap {
		value = Snap(value)
	}
	return value, false
}

// Dirty reports whether the next update would change the value or
// complete the animation.
func (a *Animation) Dirty() bool {
	if a.stopped {
		return false
	}
	value, done := a.Next()
	return done || value != a.value
}

// Update advances the animation and invokes the callback when the value
// changed or the animation just finished. It returns true when the
// animation should be removed.
func (a *Animation) Update() bool {
	if a.stopped {
		return true
	}
	value, done := a.Next()
	prev := a.value
	if value != prev || done {
		a.value = value
		if a.cb != nil {
			a.cb(value, Context{Animation: a, Prev: prev, Done: done})
		}
	}
	return done
}
