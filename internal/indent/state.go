package indent

import "github.com/dshills/indentscope/internal/host"

// State is the per-window indent cache. Indents and Blanks survive
// between frames only while the window shows the same buffer at the same
// change tick.
type State struct {
	Win int
	Buf int

	// ChangeTick is the buffer change counter the cache was built at.
	ChangeTick uint64

	// Top and Bottom are the visible lines of the last frame, inclusive.
	Top    int
	Bottom int

	LeftCol int
	// Width is the effective indent width.
	Width int
	// TabStop is the tab width of the window, zero for the default.
	TabStop int

	// Indents maps line numbers to their resolved indent. Line 0 is
	// always present with indent 0.
	Indents map[int]int
	// Blanks holds the blank lines seen so far.
	Blanks map[int]bool

	// Offset is subtracted from the first rendered guide when guides are
	// restricted to the current scope.
	Offset int

	// BreakIndent is set when the window wraps with breakindent.
	BreakIndent bool
}

func newState(win, buf int, tick uint64) *State {
	return &State{
		Win:        win,
		Buf:        buf,
		ChangeTick: tick,
		Indents:    map[int]int{0: 0},
		Blanks:     make(map[int]bool),
	}
}

// valid reports whether the cache still describes buf at tick.
func (s *State) valid(buf int, tick uint64) bool {
	return s.Buf == buf && s.ChangeTick == tick
}

// indent resolves the indent of line, filling the cache.
func (s *State) indent(b host.Buffer, line int) int {
	if v, ok := s.Indents[line]; ok {
		return v
	}

	prev := b.PrevNonBlank(line)
	if prev == line {
		v := b.Indent(line)
		s.Indents[line] = v
		return v
	}

	// Blank: interpolate from the nearest non-blank neighbours.
	s.Blanks[line] = true
	pi := s.indent(b, prev)
	ni := s.indent(b, b.NextNonBlank(line))
	v := min(pi, ni)
	if pi != ni && v > 0 {
		v += s.Width
	}
	s.Indents[line] = v
	return v
}

// Blank reports whether line was seen blank.
func (s *State) Blank(line int) bool {
	return s.Blanks[line]
}

// Indent returns the cached indent of line; zero when not computed.
func (s *State) Indent(line int) int {
	return s.Indents[line]
}
