// Package host defines the interfaces indentscope consumes from the editor
// that embeds it, and the small value types exchanged across them.
//
// Line numbers are 1-indexed throughout. Columns are 0-indexed window
// columns for overlays and 0-indexed byte columns for highlight ranges.
package host

import "errors"

// Errors reported by hosts for stale handles.
var (
	// ErrInvalidWindow is returned when a window id no longer exists.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrInvalidBuffer is returned when a buffer id no longer exists.
	ErrInvalidBuffer = errors.New("invalid buffer")
)

// WindowInfo is a snapshot of the window state needed to render one frame.
type WindowInfo struct {
	ID     int
	Buffer int

	// Top and Bottom are the first and last visible buffer lines.
	Top    int
	Bottom int

	// LeftCol is the horizontal scroll offset.
	LeftCol int

	Width  int
	Height int

	// ShiftWidth is the indent width option; zero means use TabStop.
	ShiftWidth int
	TabStop    int

	Wrap        bool
	BreakIndent bool

	// CursorLine is the line holding the cursor.
	CursorLine int
}

// IndentWidth returns the effective indent width of the window.
func (w WindowInfo) IndentWidth() int {
	if w.ShiftWidth > 0 {
		return w.ShiftWidth
	}
	if w.TabStop > 0 {
		return w.TabStop
	}
	return 8
}

// BufferInfo describes a buffer for filtering.
type BufferInfo struct {
	ID       int
	Name     string
	Filetype string
	// Buftype is empty for normal file buffers.
	Buftype string
}

// Buffer is the read side of a host text buffer.
type Buffer interface {
	ID() int
	LineCount() int

	// ChangeTick increases on every modification of the buffer.
	ChangeTick() uint64

	// Indent returns the indent column of line, with tabs expanded.
	Indent(line int) int

	// PrevNonBlank returns the nearest line <= line that is not blank,
	// or 0 when there is none.
	PrevNonBlank(line int) int

	// NextNonBlank returns the nearest line >= line that is not blank,
	// or 0 when there is none.
	NextNonBlank(line int) int

	// LineText returns the text of line without its line ending.
	LineText(line int) string

	Info() BufferInfo
}

// Host answers window and buffer queries. Queries for windows or buffers
// that have been destroyed return ErrInvalidWindow or ErrInvalidBuffer.
type Host interface {
	Window(win int) (WindowInfo, error)
	Buffer(buf int) (Buffer, error)

	// CurrentWindow returns the focused window id.
	CurrentWindow() int
}

// Decoration is a single ephemeral decoration for one buffer line.
//
// When EndCol is zero the decoration is an overlay: Text is drawn at
// window column Col. Otherwise it highlights buffer columns [Col, EndCol)
// with Hl and Text is empty.
type Decoration struct {
	Text   string
	Hl     string
	Col    int
	EndCol int

	Priority int

	// RepeatLinebreak repeats the overlay on soft-wrapped continuation rows.
	RepeatLinebreak bool
}

// IsRange reports whether d is a highlight range rather than an overlay.
func (d Decoration) IsRange() bool {
	return d.EndCol > 0
}

// Decorator receives decorations for the frame being drawn.
type Decorator interface {
	Decorate(win, buf, line int, d Decoration)
}

// Redrawer requests a redraw of lines [from, to] in a window.
type Redrawer interface {
	Redraw(win, from, to int)
}

// Highlights resolves highlight group names.
type Highlights interface {
	// Defined reports whether a highlight group exists.
	Defined(name string) bool

	// UnderlineGroup returns the name of a group that underlines with the
	// foreground color of name, creating it when needed.
	UnderlineGroup(name string) string
}

// Toggles exposes boolean variables. The second result reports whether
// the variable is set to a boolean at all.
type Toggles interface {
	BufferVar(buf int, key string) (bool, bool)
	GlobalVar(key string) (bool, bool)
}

// Scope is a contiguous block of lines supplied by a scope provider.
type Scope struct {
	Buf    int
	Win    int
	From   int
	To     int
	Indent int
}

// Len returns the number of lines in the scope.
func (s Scope) Len() int {
	return s.To - s.From + 1
}

// Contains reports whether line lies inside the scope.
func (s Scope) Contains(line int) bool {
	return line >= s.From && line <= s.To
}

// ScopeChange is published when the scope around the cursor changes.
// Scope or Prev are nil when there is no scope.
type ScopeChange struct {
	Win   int
	Buf   int
	Scope *Scope
	Prev  *Scope
}

// ScopeProvider notifies subscribers of scope changes.
type ScopeProvider interface {
	Subscribe(fn func(ScopeChange)) (cancel func())
}
