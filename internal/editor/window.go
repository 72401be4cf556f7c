package editor

import "github.com/dshills/indentscope/internal/host"

// Window is a view on a buffer. Window state is owned by the Editor and
// changed through its methods.
type Window struct {
	id  int
	buf *Buffer

	// X and Y place the window on screen.
	X, Y          int
	Width, Height int

	top     int
	cursor  int
	leftCol int

	ShiftWidth  int
	TabStop     int
	Wrap        bool
	BreakIndent bool
}

// ID returns the window id.
func (w *Window) ID() int {
	return w.id
}

// Buffer returns the buffer shown in the window.
func (w *Window) Buffer() *Buffer {
	return w.buf
}

// bottom returns the last visible line.
func (w *Window) bottom() int {
	return max(min(w.top+w.Height-1, w.buf.LineCount()), w.top)
}

// Info returns the snapshot handed to renderers.
func (w *Window) Info() host.WindowInfo {
	return host.WindowInfo{
		ID:          w.id,
		Buffer:      w.buf.ID(),
		Top:         w.top,
		Bottom:      w.bottom(),
		LeftCol:     w.leftCol,
		Width:       w.Width,
		Height:      w.Height,
		ShiftWidth:  w.ShiftWidth,
		TabStop:     w.TabStop,
		Wrap:        w.Wrap,
		BreakIndent: w.BreakIndent,
		CursorLine:  w.cursor,
	}
}

// clamp keeps the cursor inside the buffer and the viewport around the
// cursor. It reports whether the viewport moved.
func (w *Window) clamp() bool {
	n := w.buf.LineCount()
	w.cursor = min(max(w.cursor, 1), n)
	top := w.top
	if w.cursor < w.top {
		w.top = w.cursor
	}
	if h := max(w.Height, 1); w.cursor > w.top+h-1 {
		w.top = w.cursor - h + 1
	}
	w.top = min(max(w.top, 1), n)
	w.leftCol = max(w.leftCol, 0)
	return top != w.top
}
