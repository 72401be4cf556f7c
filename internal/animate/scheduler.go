// Package animate drives time-based value animations on a shared timer.
//
// A Scheduler owns the set of active animations, keyed by identity. One
// periodic timer, created on demand and stopped when the set is empty,
// checks every tick whether any animation would produce a new value. When
// one would, a single dispatch pass is deferred to the next loop turn and
// updates every active animation; ticks that arrive while a pass is
// pending are coalesced into it. Callbacks therefore never run inside the
// timer tick itself.
package animate

import (
	"time"

	"github.com/dshills/indentscope/internal/animate/easing"
	"github.com/dshills/indentscope/internal/host"
	"github.com/dshills/indentscope/internal/logging"
	"github.com/dshills/indentscope/internal/loop"
)

// DefaultFPS is the timer rate used when an animation does not ask for one.
const DefaultFPS = 30

// DefaultTogglePrefix is the variable prefix of the enablement toggles.
const DefaultTogglePrefix = "indentscope_animate"

type autoID uint64

// Scheduler manages active animations.
type Scheduler struct {
	loop    loop.Scheduler
	toggles host.Toggles
	prefix  string
	logger  *logging.Logger

	active map[any]*Animation
	order  []*Animation
	nextID autoID

	timer     loop.Timer
	interval  time.Duration
	scheduled bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithToggles sets the variable source for the enablement predicate.
func WithToggles(t host.Toggles) Option {
	return func(s *Scheduler) {
		s.toggles = t
	}
}

// WithTogglePrefix sets the toggle variable prefix.
func WithTogglePrefix(prefix string) Option {
	return func(s *Scheduler) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a scheduler running on l.
func New(l loop.Scheduler, opts ...Option) *Scheduler {
	s := &Scheduler{
		loop:   l,
		prefix: DefaultTogglePrefix,
		logger: logging.Null,
		active: make(map[any]*Animation),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("animate")
	return s
}

// Add registers a new animation from from to to. An active animation with
// the same identity is stopped and replaced. Add panics when opts names an
// unknown easing function.
func (s *Scheduler) Add(from, to float64, cb Callback, opts Options) *Animation {
	ease := opts.EasingFunc
	if ease == nil {
		ease = easing.MustLookup(opts.Easing)
	}

	id := opts.ID
	if id == nil {
		s.nextID++
		id = s.nextID
	}

	a := &Animation{
		sched:    s,
		id:       id,
		from:     from,
		to:       to,
		value:    from,
		duration: opts.Duration.Resolve(to - from),
		ease:     ease,
		snap:     opts.Int,
		buf:      opts.Buf,
		name:     opts.Name,
		cb:       cb,
	}

	if old, ok := s.active[id]; ok {
		s.logger.Debug("replacing animation %v", id)
		old.stopped = true
		s.remove(old)
	}
	s.active[id] = a
	s.order = append(s.order, a)

	fps := opts.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	s.startTimer(fps)
	return a
}

// Del stops and removes the animation with the given identity. No final
// callback is made.
func (s *Scheduler) Del(id any) {
	if a, ok := s.active[id]; ok {
		a.Stop()
	}
}

// Get returns the active animation with the given identity.
func (s *Scheduler) Get(id any) (*Animation, bool) {
	a, ok := s.active[id]
	return a, ok
}

// Len returns the number of active animations.
func (s *Scheduler) Len() int {
	return len(s.order)
}

// Running reports whether the shared timer is running.
func (s *Scheduler) Running() bool {
	return s.timer != nil
}

// Interval returns the current timer interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Clear stops every animation and the timer.
func (s *Scheduler) Clear() {
	for _, a := range s.order {
		a.stopped = true
	}
	s.order = nil
	s.active = make(map[any]*Animation)
	s.stopTimer()
}

// Enabled reports whether animations for buf with the given name may run.
// A named check first requires the unnamed one to pass. The toggle key is
// prefix_name, or prefix when name is empty; a buffer variable takes
// precedence over the global one and an unset toggle means enabled.
func (s *Scheduler) Enabled(buf int, name string) bool {
	if name != "" && !s.Enabled(buf, "") {
		return false
	}
	if s.toggles == nil {
		return true
	}
	key := s.prefix
	if name != "" {
		key += "_" + name
	}
	if buf > 0 {
		if v, ok := s.toggles.BufferVar(buf, key); ok {
			return v
		}
	}
	if v, ok := s.toggles.GlobalVar(key); ok {
		return v
	}
	return true
}

// Step is the timer tick.
func (s *Scheduler) Step() {
	if s.scheduled {
		return
	}
	if len(s.order) == 0 {
		s.stopTimer()
		return
	}

	dirty := false
	for _, a := range s.order {
		if a.Dirty() {
			dirty = true
			break
		}
	}
	if !dirty {
		return
	}

	s.scheduled = true
	s.loop.Defer(s.dispatch)
}

// dispatch updates every active animation, then removes finished ones.
func (s *Scheduler) dispatch() {
	s.scheduled = false

	batch := make([]*Animation, len(s.order))
	copy(batch, s.order)

	var finished []*Animation
	for _, a := range batch {
		if a.Update() {
			finished = append(finished, a)
		}
	}
	for _, a := range finished {
		s.remove(a)
	}
}

func (s *Scheduler) now() time.Time {
	return s.loop.Now()
}

// remove drops a from the active set if it still owns its identity slot.
func (s *Scheduler) remove(a *Animation) {
	if cur, ok := s.active[a.id]; ok && cur == a {
		delete(s.active, a.id)
	}
	for i, cur := range s.order {
		if cur == a {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Scheduler) startTimer(fps int) {
	interval := time.Second / time.Duration(fps)
	if s.timer != nil && s.interval == interval {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.interval = interval
	s.timer = s.loop.Every(interval, s.Step)
}

func (s *Scheduler) stopTimer() {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	s.timer = nil
}
