// Package scope renders the scope around the cursor and animates its
// visible extent when the scope changes.
//
// The Controller keeps one record per window holding the scope reported
// by the provider and, while an animation runs, the currently visible
// sub-range. It implements indent.Scopes so the indent engine can draw
// the scope in the same frame as the guides.
package scope

import (
	"strconv"

	"github.com/dshills/indentscope/internal/animate"
	"github.com/dshills/indentscope/internal/config"
	"github.com/dshills/indentscope/internal/host"
	"github.com/dshills/indentscope/internal/logging"
)

// AnimationName is the enablement name of scope animations.
const AnimationName = "indent"

// AnimationID returns the animation identity used for win.
func AnimationID(win int) string {
	return "indent_scope_" + strconv.Itoa(win)
}

type shown struct {
	scope host.Scope
	// animate is the visible sub-range while an animation runs.
	animate *Range
}

func (s *shown) visible() Range {
	if s.animate != nil {
		return *s.animate
	}
	return Range{From: s.scope.From, To: s.scope.To}
}

// Controller renders scopes.
type Controller struct {
	host     host.Host
	deco     host.Decorator
	redraw   host.Redrawer
	hl       host.Highlights
	sched    *animate.Scheduler
	logger   *logging.Logger
	settings config.Settings

	windows map[int]*shown
}

// Option configures a Controller.
type Option func(*Controller)

// WithHighlights sets the highlight resolver used for underline groups.
func WithHighlights(hl host.Highlights) Option {
	return func(c *Controller) {
		c.hl = hl
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a controller. sched drives scope animations.
func New(h host.Host, deco host.Decorator, redraw host.Redrawer, sched *animate.Scheduler, settings config.Settings, opts ...Option) *Controller {
	c := &Controller{
		host:     h,
		deco:     deco,
		redraw:   redraw,
		sched:    sched,
		logger:   logging.Null,
		settings: settings,
		windows:  make(map[int]*shown),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("scope")
	return c
}

// OnScope handles a scope change reported by the provider.
func (c *Controller) OnScope(ch host.ScopeChange) {
	win := ch.Win
	id := AnimationID(win)

	if ch.Scope == nil {
		delete(c.windows, win)
		c.sched.Del(id)
	} else {
		rec := &shown{scope: *ch.Scope}
		c.windows[win] = rec

		if c.animated(ch) {
			c.start(ch, rec)
		} else {
			c.sched.Del(id)
			c.requestRedraw(win, rec.scope.From, rec.scope.To)
		}
	}

	if ch.Prev != nil {
		c.requestRedraw(win, ch.Prev.From, ch.Prev.To)
	}
}

// animated reports whether the change should be animated.
func (c *Controller) animated(ch host.ScopeChange) bool {
	if !c.settings.Animate.Enabled {
		return false
	}
	if !c.sched.Enabled(ch.Buf, AnimationName) {
		return false
	}
	return !c.suppressed(ch)
}

// suppressed reports whether the change looks like a line insertion at
// the start of the previous scope rather than a move to another scope.
func (c *Controller) suppressed(ch host.ScopeChange) bool {
	if ch.Prev == nil {
		return false
	}
	b, err := c.host.Buffer(ch.Buf)
	if err != nil {
		c.logger.Debug("buffer %d: %v", ch.Buf, err)
		return false
	}
	return b.NextNonBlank(ch.Prev.From+1) == ch.Scope.From
}

func (c *Controller) start(ch host.ScopeChange, rec *shown) {
	win := ch.Win
	sc := rec.scope
	a := c.settings.Animate

	initial := StyleRange(a.Style, sc, c.cursor(win, sc), 0)
	rec.animate = &initial

	c.sched.Add(0, float64(sc.To-sc.From), func(value float64, ctx animate.Context) {
		if cur, ok := c.windows[win]; !ok || cur != rec {
			return
		}
		prev := rec.visible()
		next := StyleRange(a.Style, sc, c.cursor(win, sc), int(value))
		if ctx.Done {
			rec.animate = nil
		} else {
			rec.animate = &next
		}
		dirty := prev.Union(next)
		c.requestRedraw(win, dirty.From, dirty.To)
	}, animate.Options{
		ID:         AnimationID(win),
		Int:        true,
		Buf:        ch.Buf,
		Name:       AnimationName,
		Easing:     a.Easing,
		EasingFunc: a.EasingFunc,
		Duration:   animate.Duration{Step: a.Step, Total: a.Total},
		FPS:        a.FPS,
	})
}

// cursor returns the cursor line of win, or the scope start when the
// window is gone.
func (c *Controller) cursor(win int, sc host.Scope) int {
	w, err := c.host.Window(win)
	if err != nil {
		return sc.From
	}
	return w.CursorLine
}

// requestRedraw asks for a redraw of [from, to] bounded to the viewport.
func (c *Controller) requestRedraw(win, from, to int) {
	r := Range{From: from, To: to}
	if w, err := c.host.Window(win); err == nil {
		var ok bool
		if r, ok = r.Clamp(w.Top, w.Bottom); !ok {
			return
		}
	}
	c.redraw.Redraw(win, r.From, r.To)
}

// Current returns the scope shown in win.
func (c *Controller) Current(win int) (host.Scope, bool) {
	rec, ok := c.windows[win]
	if !ok {
		return host.Scope{}, false
	}
	return rec.scope, true
}

// Visible returns the currently visible sub-range of the scope in win.
func (c *Controller) Visible(win int) (Range, bool) {
	rec, ok := c.windows[win]
	if !ok {
		return Range{}, false
	}
	return rec.visible(), true
}

// Animating reports whether the scope of win is being animated.
func (c *Controller) Animating(win int) bool {
	_, ok := c.sched.Get(AnimationID(win))
	return ok
}

// Forget drops the scope of win and stops its animation.
func (c *Controller) Forget(win int) {
	delete(c.windows, win)
	c.sched.Del(AnimationID(win))
}

// ForgetBuffer drops every scope shown for buf.
func (c *Controller) ForgetBuffer(buf int) {
	for win, rec := range c.windows {
		if rec.scope.Buf == buf {
			c.Forget(win)
		}
	}
}

// Reset installs new settings. Shown scopes are kept.
func (c *Controller) Reset(settings config.Settings) {
	c.settings = settings
}
