package indent

import (
	"github.com/dshills/indentscope/internal/config"
	"github.com/dshills/indentscope/internal/host"
)

// markKey is the geometry a guide row depends on.
type markKey struct {
	indent      int
	leftcol     int
	width       int
	offset      int
	breakindent bool
}

// guides returns the memoized guide decorations of a line rendered at
// indent. The returned slice is shared and must not be modified.
func (e *Engine) guides(indent int, st *State) []host.Decoration {
	key := markKey{
		indent:      indent,
		leftcol:     st.LeftCol,
		width:       st.Width,
		offset:      st.Offset,
		breakindent: st.BreakIndent,
	}
	if marks, ok := e.marks[key]; ok {
		e.stats.MarkHits++
		return marks
	}
	e.stats.MarkMiss++
	marks := buildMarks(key, e.settings.Indent)
	e.marks[key] = marks
	return marks
}

// buildMarks places one guide at every indent stop up to indent.
func buildMarks(k markKey, s config.IndentSettings) []host.Decoration {
	if k.width <= 0 {
		return nil
	}
	last := k.indent - k.indent%k.width

	var marks []host.Decoration
	for i := 1 + k.offset; i <= last; i += k.width {
		col := i - 1 - k.leftcol
		if col < 0 {
			continue
		}
		level := (i-1)/k.width + 1
		marks = append(marks, host.Decoration{
			Text:            s.Char,
			Hl:              config.PickHl(s.Hl, level),
			Col:             col,
			Priority:        s.Priority,
			RepeatLinebreak: k.breakindent,
		})
	}
	return marks
}
