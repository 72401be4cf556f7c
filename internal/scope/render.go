package scope

import (
	"strings"

	"github.com/dshills/indentscope/internal/config"
	"github.com/dshills/indentscope/internal/host"
	"github.com/dshills/indentscope/internal/indent"
	"github.com/dshills/indentscope/internal/renderer/core"
)

var _ indent.Scopes = (*Controller)(nil)

// Render draws the scope of the window described by st for the lines of
// the frame.
func (c *Controller) Render(st *indent.State, b host.Buffer) {
	rec, ok := c.windows[st.Win]
	if !ok || rec.scope.Buf != st.Buf {
		return
	}
	r, ok := rec.visible().Clamp(st.Top, st.Bottom)
	if !ok {
		return
	}
	focused := c.host.CurrentWindow() == st.Win

	sc := rec.scope
	switch {
	case c.settings.Chunk.Enabled && sc.Indent >= st.Width:
		if c.settings.Chunk.OnlyCurrent && !focused {
			return
		}
		c.renderChunk(st, sc, r)
	case c.settings.Scope.Enabled:
		if c.settings.Scope.OnlyCurrent && !focused {
			return
		}
		c.renderScope(st, b, sc, r)
	}
}

// renderScope draws a vertical guide at the scope's indent column.
func (c *Controller) renderScope(st *indent.State, b host.Buffer, sc host.Scope, r Range) {
	s := c.settings.Scope
	hl := config.PickHl(s.Hl, sc.Indent+1)
	col := sc.Indent - st.LeftCol

	if col >= 0 {
		for l := r.From; l <= r.To; l++ {
			if st.Indent(l) > sc.Indent || s.AlwaysOverlap || st.Blank(l) {
				c.deco.Decorate(st.Win, st.Buf, l, host.Decoration{
					Text:            s.Char,
					Hl:              hl,
					Col:             col,
					Priority:        s.Priority,
					RepeatLinebreak: st.BreakIndent,
				})
			}
		}
	}

	if s.Underline && r.From == sc.From {
		line := b.LineText(sc.From)
		end := len(line)
		start := core.ByteOffset(line, max(sc.Indent, st.LeftCol), st.TabStop)
		if end > start {
			group := hl
			if c.hl != nil {
				group = c.hl.UnderlineGroup(hl)
			}
			c.deco.Decorate(st.Win, st.Buf, sc.From, host.Decoration{
				Hl:       group,
				Col:      start,
				EndCol:   end,
				Priority: s.Priority + 1,
			})
		}
	}
}

// renderChunk draws a box one indent level left of the scope's column:
// a top corner on the first line, a bottom corner with an arrow on the
// last line and vertical bars in between.
func (c *Controller) renderChunk(st *indent.State, sc host.Scope, r Range) {
	s := c.settings.Chunk
	hl := config.PickHl(s.Hl, sc.Indent+1)
	col := sc.Indent - st.Width - st.LeftCol
	if col < 0 {
		return
	}

	for l := r.From; l <= r.To; l++ {
		i := st.Indent(l) - st.LeftCol
		var text string
		repeat := false
		switch {
		case l == sc.From:
			text = s.Char.CornerTop + strings.Repeat(s.Char.Horizontal, max(i-col-1, 0))
		case l == sc.To:
			text = s.Char.CornerBottom + strings.Repeat(s.Char.Horizontal, max(i-col-2, 0)) + s.Char.Arrow
		case i > col:
			text = s.Char.Vertical
			repeat = st.BreakIndent
		default:
			continue
		}
		c.deco.Decorate(st.Win, st.Buf, l, host.Decoration{
			Text:            text,
			Hl:              hl,
			Col:             col,
			Priority:        s.Priority,
			RepeatLinebreak: repeat,
		})
	}
}
