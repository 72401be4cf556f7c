package editor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/indentscope/internal/event"
	"github.com/dshills/indentscope/internal/host"
	"github.com/dshills/indentscope/internal/logging"
	"github.com/dshills/indentscope/internal/renderer/dirty"
)

const eventSource = "editor"

// Editor is an in-memory host: it owns buffers and windows and answers
// the queries of the indent engine and scope controller.
type Editor struct {
	mu      sync.RWMutex
	buffers map[int]*Buffer
	windows map[int]*Window
	current int
	nextBuf int
	nextWin int

	vars   *Vars
	deco   *Decorations
	dirty  *dirty.Tracker
	bus    *event.Bus
	logger *logging.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithBus publishes lifecycle and editing events on b.
func WithBus(b *event.Bus) Option {
	return func(e *Editor) {
		e.bus = b
	}
}

// WithTracker sets the redraw tracker.
func WithTracker(t *dirty.Tracker) Option {
	return func(e *Editor) {
		if t != nil {
			e.dirty = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an editor without buffers or windows.
func New(opts ...Option) *Editor {
	e := &Editor{
		buffers: make(map[int]*Buffer),
		windows: make(map[int]*Window),
		vars:    NewVars(),
		deco:    NewDecorations(),
		dirty:   dirty.NewTracker(),
		logger:  logging.Null,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("editor")
	return e
}

// Vars returns the variable store.
func (e *Editor) Vars() *Vars { return e.vars }

// Decorations returns the frame decoration collector.
func (e *Editor) Decorations() *Decorations { return e.deco }

// Tracker returns the redraw tracker.
func (e *Editor) Tracker() *dirty.Tracker { return e.dirty }

// Window implements host.Host.
func (e *Editor) Window(win int) (host.WindowInfo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	w, ok := e.windows[win]
	if !ok {
		return host.WindowInfo{}, host.ErrInvalidWindow
	}
	return w.Info(), nil
}

// Buffer implements host.Host.
func (e *Editor) Buffer(buf int) (host.Buffer, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.buffers[buf]
	if !ok {
		return nil, host.ErrInvalidBuffer
	}
	return b, nil
}

// CurrentWindow implements host.Host. It returns 0 when no window exists.
func (e *Editor) CurrentWindow() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Redraw implements host.Redrawer.
func (e *Editor) Redraw(win, from, to int) {
	e.dirty.Redraw(win, from, to)
}

// OpenBuffer creates a buffer holding text.
func (e *Editor) OpenBuffer(text string, opts ...BufferOption) *Buffer {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextBuf++
	b := NewBuffer(e.nextBuf, text, opts...)
	e.buffers[b.id] = b
	return b
}

// LoadFile creates a buffer from the file at path. The filetype is taken
// from the file extension.
func (e *Editor) LoadFile(path string, opts ...BufferOption) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	e.mu.Lock()
	defer e.mu.Unlock()
	base := []BufferOption{WithName(path), WithFiletype(FiletypeOf(path))}
	b, err := NewBufferFromReader(e.nextBuf+1, f, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	e.nextBuf++
	e.buffers[b.id] = b
	return b, nil
}

// FiletypeOf guesses a filetype from a file name.
func FiletypeOf(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	switch ext {
	case "py":
		return "python"
	case "js":
		return "javascript"
	case "ts":
		return "typescript"
	case "md":
		return "markdown"
	case "yml":
		return "yaml"
	}
	return ext
}

// Buf returns the buffer with id buf.
func (e *Editor) Buf(buf int) (*Buffer, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.buffers[buf]
	return b, ok
}

// WindowOption configures a Window.
type WindowOption func(*Window)

// WithShiftWidth sets the indent width of the window.
func WithShiftWidth(n int) WindowOption {
	return func(w *Window) {
		w.ShiftWidth = n
	}
}

// WithTabStop sets the tab stop of the window.
func WithTabStop(n int) WindowOption {
	return func(w *Window) {
		w.TabStop = n
	}
}

// WithWrap enables soft wrapping, optionally with breakindent.
func WithWrap(breakIndent bool) WindowOption {
	return func(w *Window) {
		w.Wrap = true
		w.BreakIndent = breakIndent
	}
}

// WithPosition places the window on screen.
func WithPosition(x, y int) WindowOption {
	return func(w *Window) {
		w.X, w.Y = x, y
	}
}

// OpenWindow shows buf in a new window of the given size. The first
// window becomes the current one.
func (e *Editor) OpenWindow(buf, width, height int, opts ...WindowOption) (*Window, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.buffers[buf]
	if !ok {
		return nil, host.ErrInvalidBuffer
	}
	e.nextWin++
	w := &Window{
		id:      e.nextWin,
		buf:     b,
		Width:   width,
		Height:  height,
		top:     1,
		cursor:  1,
		TabStop: b.TabWidth(),
	}
	for _, opt := range opts {
		opt(w)
	}
	e.windows[w.id] = w
	if e.current == 0 {
		e.current = w.id
	}
	e.dirty.RedrawAll(w.id)
	return w, nil
}

// Win returns the window with id win.
func (e *Editor) Win(win int) (*Window, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	w, ok := e.windows[win]
	return w, ok
}

// Windows returns every window ordered by id.
func (e *Editor) Windows() []*Window {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Window, 0, len(e.windows))
	for _, w := range e.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// CloseWindow removes win. When it was current, the window with the
// lowest id takes focus.
func (e *Editor) CloseWindow(win int) error {
	e.mu.Lock()
	if _, ok := e.windows[win]; !ok {
		e.mu.Unlock()
		return host.ErrInvalidWindow
	}
	delete(e.windows, win)
	refocus := e.current == win
	if refocus {
		e.current = e.firstWindow()
		if e.current != 0 {
			e.dirty.RedrawAll(e.current)
		}
	}
	next := e.current
	e.mu.Unlock()

	publish(e, event.TopicWindowClosed, event.WindowClosed{Win: win})
	if refocus && next != 0 {
		publish(e, event.TopicWindowFocused, event.WindowFocused{Win: next, Prev: win})
	}
	return nil
}

func (e *Editor) firstWindow() int {
	first := 0
	for id := range e.windows {
		if first == 0 || id < first {
			first = id
		}
	}
	return first
}

// DeleteBuffer closes the windows showing buf and removes it.
func (e *Editor) DeleteBuffer(buf int) error {
	e.mu.RLock()
	_, ok := e.buffers[buf]
	var wins []int
	for id, w := range e.windows {
		if w.buf.id == buf {
			wins = append(wins, id)
		}
	}
	e.mu.RUnlock()
	if !ok {
		return host.ErrInvalidBuffer
	}

	sort.Ints(wins)
	for _, win := range wins {
		if err := e.CloseWindow(win); err != nil {
			return err
		}
	}

	e.mu.Lock()
	delete(e.buffers, buf)
	e.mu.Unlock()
	e.vars.DropBuffer(buf)
	publish(e, event.TopicBufferDeleted, event.BufferDeleted{Buf: buf})
	return nil
}

// Focus makes win the current window.
func (e *Editor) Focus(win int) error {
	e.mu.Lock()
	if _, ok := e.windows[win]; !ok {
		e.mu.Unlock()
		return host.ErrInvalidWindow
	}
	prev := e.current
	if prev == win {
		e.mu.Unlock()
		return nil
	}
	e.current = win
	e.mu.Unlock()

	e.dirty.RedrawAll(win)
	if prev != 0 {
		e.dirty.RedrawAll(prev)
	}
	publish(e, event.TopicWindowFocused, event.WindowFocused{Win: win, Prev: prev})
	return nil
}

// SetCursor moves the cursor of win to line, scrolling as needed.
func (e *Editor) SetCursor(win, line int) error {
	return e.moveWindow(win, func(w *Window) {
		w.cursor = line
	})
}

// MoveCursor moves the cursor of win by delta lines.
func (e *Editor) MoveCursor(win, delta int) error {
	return e.moveWindow(win, func(w *Window) {
		w.cursor += delta
	})
}

// Scroll moves the viewport and the cursor of win by delta lines.
func (e *Editor) Scroll(win, delta int) error {
	return e.moveWindow(win, func(w *Window) {
		n := w.buf.LineCount()
		top := min(max(w.top+delta, 1), n)
		w.cursor += top - w.top
		w.top = top
		w.clamp()
	})
}

// ScrollLeft shifts the horizontal scroll offset of win by delta columns.
func (e *Editor) ScrollLeft(win, delta int) error {
	e.mu.Lock()
	w, ok := e.windows[win]
	if !ok {
		e.mu.Unlock()
		return host.ErrInvalidWindow
	}
	old := w.leftCol
	w.leftCol = max(w.leftCol+delta, 0)
	changed := old != w.leftCol
	e.mu.Unlock()

	if changed {
		e.dirty.RedrawAll(win)
	}
	return nil
}

// Resize changes the size of win.
func (e *Editor) Resize(win, width, height int) error {
	e.mu.Lock()
	w, ok := e.windows[win]
	if !ok {
		e.mu.Unlock()
		return host.ErrInvalidWindow
	}
	w.Width, w.Height = width, height
	w.clamp()
	e.mu.Unlock()

	e.dirty.RedrawAll(win)
	return nil
}

// Place moves win to screen position (x, y) and resizes it.
func (e *Editor) Place(win, x, y, width, height int) error {
	e.mu.Lock()
	w, ok := e.windows[win]
	if !ok {
		e.mu.Unlock()
		return host.ErrInvalidWindow
	}
	w.X, w.Y = x, y
	e.mu.Unlock()
	return e.Resize(win, width, height)
}

func (e *Editor) moveWindow(win int, move func(*Window)) error {
	e.mu.Lock()
	w, ok := e.windows[win]
	if !ok {
		e.mu.Unlock()
		return host.ErrInvalidWindow
	}
	oldCursor, oldTop := w.cursor, w.top
	move(w)
	w.clamp()
	scrolled := w.top != oldTop
	line := w.cursor
	e.mu.Unlock()

	if scrolled {
		e.dirty.RedrawAll(win)
	}
	if scrolled || line != oldCursor {
		publish(e, event.TopicCursorMoved, event.CursorMoved{Win: win, Line: line})
	}
	return nil
}

// SetLine replaces line of buf.
func (e *Editor) SetLine(buf, line int, text string) error {
	return e.edit(buf, func(b *Buffer) error {
		return b.SetLine(line, text)
	})
}

// InsertLines inserts text before line of buf.
func (e *Editor) InsertLines(buf, line int, text string) error {
	return e.edit(buf, func(b *Buffer) error {
		return b.InsertLines(line, text)
	})
}

// DeleteLines removes lines [from, to] of buf.
func (e *Editor) DeleteLines(buf, from, to int) error {
	return e.edit(buf, func(b *Buffer) error {
		return b.DeleteLines(from, to)
	})
}

func (e *Editor) edit(buf int, fn func(*Buffer) error) error {
	b, ok := e.Buf(buf)
	if !ok {
		return host.ErrInvalidBuffer
	}
	if err := fn(b); err != nil {
		return err
	}

	e.mu.Lock()
	var moved []int
	for id, w := range e.windows {
		if w.buf == b {
			w.clamp()
			e.dirty.RedrawAll(id)
			moved = append(moved, id)
		}
	}
	e.mu.Unlock()

	publish(e, event.TopicBufferChanged, event.BufferChanged{Buf: buf, Tick: b.ChangeTick()})
	sort.Ints(moved)
	for _, win := range moved {
		w, _ := e.Window(win)
		publish(e, event.TopicCursorMoved, event.CursorMoved{Win: win, Line: w.CursorLine})
	}
	return nil
}

// publish sends payload on the bus. Handler failures are logged; they
// never fail the edit that caused them.
func publish[T any](e *Editor, topic event.Topic, payload T) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(context.Background(), event.NewEvent(topic, payload, eventSource)); err != nil {
		e.logger.Debug("publish %s: %v", topic, err)
	}
}
