// Package indent computes per-line indent levels for the visible part of
// a window and emits indent guide decorations.
//
// The Engine keeps one State per window. A State caches resolved indents
// and blank lines for the buffer at one change tick, so a redraw of an
// unchanged buffer only resolves lines it has not seen before. Guide
// decorations are memoized by geometry.
package indent

import (
	"fmt"

	"github.com/dshills/indentscope/internal/config"
	"github.com/dshills/indentscope/internal/host"
	"github.com/dshills/indentscope/internal/logging"
)

// ToggleKey is the buffer and global variable that disables rendering
// when set to false.
const ToggleKey = "indentscope"

// Scopes is the scope side of a frame.
type Scopes interface {
	// Current returns the scope currently shown in win.
	Current(win int) (host.Scope, bool)

	// Render draws the current scope of the window described by st.
	Render(st *State, buf host.Buffer)
}

// Stats counts cache activity.
type Stats struct {
	Frames    uint64
	Skipped   uint64
	Resets    uint64
	MarkHits  uint64
	MarkMiss  uint64
	LinesSeen uint64
}

// Engine renders indent guides.
type Engine struct {
	host     host.Host
	deco     host.Decorator
	toggles  host.Toggles
	scopes   Scopes
	logger   *logging.Logger
	settings config.Settings

	states map[int]*State
	marks  map[markKey][]host.Decoration
	focus  int

	stats Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithScopes sets the scope renderer invoked after the guides of a frame.
func WithScopes(s Scopes) Option {
	return func(e *Engine) {
		e.scopes = s
	}
}

// WithToggles sets the variable source consulted for ToggleKey.
func WithToggles(t host.Toggles) Option {
	return func(e *Engine) {
		e.toggles = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine drawing into deco.
func New(h host.Host, deco host.Decorator, settings config.Settings, opts ...Option) *Engine {
	e := &Engine{
		host:     h,
		deco:     deco,
		logger:   logging.Null,
		settings: settings,
		states:   make(map[int]*State),
		marks:    make(map[markKey][]host.Decoration),
		focus:    h.CurrentWindow(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("indent")
	return e
}

// SetScopes sets the scope renderer after construction.
func (e *Engine) SetScopes(s Scopes) {
	e.scopes = s
}

// OnViewport renders lines [top, bottom] (1-indexed, inclusive) of buf in
// win. A failing host query skips the frame for that window; the error is
// returned for the caller's information and never leaves state half
// updated.
func (e *Engine) OnViewport(win, buf, top, bottom int) error {
	w, err := e.host.Window(win)
	if err != nil {
		return e.skip(win, fmt.Errorf("window %d: %w", win, err))
	}
	b, err := e.host.Buffer(buf)
	if err != nil {
		return e.skip(win, fmt.Errorf("buffer %d: %w", buf, err))
	}

	if !e.enabled(b) {
		return nil
	}

	top = max(top, 1)
	bottom = min(bottom, b.LineCount())
	if top > bottom {
		return nil
	}

	st := e.state(win, b, w)
	st.Top = top
	st.Bottom = bottom
	st.LeftCol = w.LeftCol
	st.TabStop = w.TabStop
	st.Offset = 0
	st.BreakIndent = w.Wrap && w.BreakIndent

	for l := top; l <= bottom; l++ {
		st.indent(b, l)
	}
	e.stats.Frames++

	if e.settings.Indent.Enabled && (!e.settings.Indent.OnlyCurrent || win == e.focus) {
		e.renderGuides(st, b)
	}
	if e.scopes != nil {
		e.scopes.Render(st, b)
	}
	return nil
}

// OnViewport0 is OnViewport for a 0-indexed range with an exclusive bottom.
func (e *Engine) OnViewport0(win, buf, top, bottom int) error {
	return e.OnViewport(win, buf, top+1, bottom)
}

func (e *Engine) skip(win int, err error) error {
	e.stats.Skipped++
	e.logger.Debug("skipping frame: %v", err)
	return err
}

func (e *Engine) enabled(b host.Buffer) bool {
	if e.toggles != nil {
		if v, ok := e.toggles.BufferVar(b.ID(), ToggleKey); ok && !v {
			return false
		}
		if v, ok := e.toggles.GlobalVar(ToggleKey); ok && !v {
			return false
		}
	}
	return e.settings.Accepts(b.Info())
}

// state returns the cache for win, rebuilding it when the window moved to
// another buffer, the buffer changed or the indent width changed.
func (e *Engine) state(win int, b host.Buffer, w host.WindowInfo) *State {
	width := w.IndentWidth()
	tick := b.ChangeTick()
	if st, ok := e.states[win]; ok && st.valid(b.ID(), tick) && st.Width == width {
		return st
	}
	st := newState(win, b.ID(), tick)
	st.Width = width
	e.states[win] = st
	e.stats.Resets++
	return st
}

func (e *Engine) renderGuides(st *State, b host.Buffer) {
	from, to := st.Top, st.Bottom
	if e.settings.Indent.OnlyScope {
		if e.scopes == nil {
			return
		}
		sc, ok := e.scopes.Current(st.Win)
		if !ok || sc.Buf != st.Buf {
			return
		}
		from = max(from, sc.From)
		to = min(to, sc.To)
		st.Offset = sc.Indent
	}

	var (
		prevRaw   int
		parent    int
		hasParent bool
		rendered  int
	)
	for l := from; l <= to; l++ {
		raw := st.Indents[l]
		switch {
		case l == from:
			rendered = raw
		default:
			if raw != prevRaw {
				parent = rendered
				hasParent = true
			}
			if hasParent {
				rendered = min(raw, parent+st.Width)
			} else {
				rendered = raw
			}
		}
		prevRaw = raw
		e.stats.LinesSeen++

		for _, d := range e.guides(rendered, st) {
			e.deco.Decorate(st.Win, st.Buf, l, d)
		}
	}
}

// SetFocus records the focused window.
func (e *Engine) SetFocus(win int) {
	e.focus = win
}

// Focus returns the focused window.
func (e *Engine) Focus() int {
	return e.focus
}

// State returns the cache of win.
func (e *Engine) State(win int) (*State, bool) {
	st, ok := e.states[win]
	return st, ok
}

// ForgetWindow drops the cache of win.
func (e *Engine) ForgetWindow(win int) {
	delete(e.states, win)
}

// ForgetBuffer drops every window cache built for buf.
func (e *Engine) ForgetBuffer(buf int) {
	for win, st := range e.states {
		if st.Buf == buf {
			delete(e.states, win)
		}
	}
}

// Reset installs new settings and drops all caches.
func (e *Engine) Reset(settings config.Settings) {
	e.settings = settings
	e.states = make(map[int]*State)
	e.marks = make(map[markKey][]host.Decoration)
}

// Settings returns the active settings.
func (e *Engine) Settings() config.Settings {
	return e.settings
}

// Stats returns cache counters.
func (e *Engine) Stats() Stats {
	return e.stats
}
