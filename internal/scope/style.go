package scope

import (
	"github.com/dshills/indentscope/internal/config"
	"github.com/dshills/indentscope/internal/host"
)

// Range is an inclusive line range.
type Range struct {
	From int
	To   int
}

// Union returns the smallest range covering r and o.
func (r Range) Union(o Range) Range {
	return Range{From: min(r.From, o.From), To: max(r.To, o.To)}
}

// Clamp intersects r with [from, to]. ok is false when nothing remains.
func (r Range) Clamp(from, to int) (Range, bool) {
	c := Range{From: max(r.From, from), To: min(r.To, to)}
	return c, c.From <= c.To
}

// StyleRange maps an animation value to the visible part of sc. cursor is
// the window's cursor line; it only matters for the out and up_down
// styles.
func StyleRange(style config.Style, sc host.Scope, cursor, value int) Range {
	switch style {
	case config.StyleDown:
		return Range{From: sc.From, To: min(sc.To, sc.From+value)}
	case config.StyleUp:
		return Range{From: max(sc.From, sc.To-value), To: sc.To}
	case config.StyleUpDown:
		if abs(cursor-sc.From) <= abs(cursor-sc.To) {
			return StyleRange(config.StyleDown, sc, cursor, value)
		}
		return StyleRange(config.StyleUp, sc, cursor, value)
	default:
		c := min(max(cursor, sc.From), sc.To)
		return Range{From: max(sc.From, c-value), To: min(sc.To, c+value)}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
