// Package renderer composes window text and decorations into a terminal
// backend.
//
// Each screen row shows one buffer line. Tabs are expanded to the
// window's tab stop and the horizontal scroll offset is applied before
// decorations are drawn. Range decorations restyle the cells produced by
// a byte span of the line; overlays replace cells starting at a window
// column, lowest priority first.
package renderer

import (
	"sort"

	"github.com/dshills/indentscope/internal/host"
	"github.com/dshills/indentscope/internal/logging"
	"github.com/dshills/indentscope/internal/renderer/backend"
	"github.com/dshills/indentscope/internal/renderer/core"
	"github.com/dshills/indentscope/internal/renderer/dirty"
	"github.com/dshills/indentscope/internal/renderer/style"
)

// FillerRune marks rows past the end of the buffer.
const FillerRune = '~'

// Decorations returns the decorations of one line of a window.
type Decorations interface {
	Line(win, line int) []host.Decoration
}

// Pane places a window on screen.
type Pane struct {
	X, Y   int
	Info   host.WindowInfo
	Buffer host.Buffer
}

// Stats counts composer activity.
type Stats struct {
	Frames uint64
	Rows   uint64
}

// Composer draws panes into a backend.
type Composer struct {
	backend backend.Backend
	styles  *style.Registry
	logger  *logging.Logger
	stats   Stats
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a composer drawing into b with highlight groups from styles.
func New(b backend.Backend, styles *style.Registry, opts ...Option) *Composer {
	c := &Composer{
		backend: b,
		styles:  styles,
		logger:  logging.Null,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("renderer")
	return c
}

// Backend returns the backend drawn into.
func (c *Composer) Backend() backend.Backend {
	return c.backend
}

// Stats returns the composer counters.
func (c *Composer) Stats() Stats {
	return c.stats
}

// DrawPane draws the rows of p selected by frame and returns how many
// rows were drawn. A full frame draws every row of the window.
func (c *Composer) DrawPane(p Pane, decos Decorations, frame dirty.Frame) int {
	w := p.Info
	if w.Height <= 0 || w.Width <= 0 {
		return 0
	}
	last := w.Top + w.Height - 1

	view := dirty.NewLineRegion(w.Top, last)
	regions := []dirty.Region{view}
	if !frame.Full {
		regions = regions[:0]
		for _, r := range dirty.Coalesce(frame.Regions) {
			if in, ok := r.Intersect(view); ok {
				regions = append(regions, in)
			}
		}
	}

	rows := 0
	for _, r := range regions {
		for l := r.StartLine; l <= r.EndLine; l++ {
			c.drawLine(p, decos, l)
			rows++
		}
	}
	c.stats.Frames++
	c.stats.Rows += uint64(rows)
	return rows
}

// DrawStatus fills row y with text in style s.
func (c *Composer) DrawStatus(y int, text string, s core.Style) {
	width, _ := c.backend.Size()
	cells := core.CellsFromString(text, s)
	for x := range width {
		cell := core.NewStyledCell(' ', s)
		if x < len(cells) {
			cell = cells[x]
		}
		c.backend.SetCell(x, y, cell)
	}
}

// Show flushes the backend.
func (c *Composer) Show() {
	c.backend.Show()
}

func (c *Composer) drawLine(p Pane, decos Decorations, line int) {
	w := p.Info
	y := p.Y + line - w.Top
	normal := c.resolve(style.GroupNormal)

	row := make([]core.Cell, w.Width)
	for i := range row {
		row[i] = core.NewStyledCell(' ', normal)
	}

	if line > p.Buffer.LineCount() {
		row[0] = core.NewStyledCell(FillerRune, normal)
		c.flush(p.X, y, row)
		return
	}

	var ds []host.Decoration
	if decos != nil {
		ds = append(ds, decos.Line(w.ID, line)...)
	}
	sort.SliceStable(ds, func(i, j int) bool {
		return ds[i].Priority < ds[j].Priority
	})

	text := p.Buffer.LineText(line)
	cells, offsets := expand(text, tabStop(w), normal)
	for _, d := range ds {
		if !d.IsRange() {
			continue
		}
		s := c.resolve(d.Hl)
		for i := range cells {
			if offsets[i] >= d.Col && offsets[i] < d.EndCol {
				cells[i].Style = cells[i].Style.Merge(s)
			}
		}
	}

	for x := range row {
		col := x + w.LeftCol
		if col >= len(cells) {
			break
		}
		row[x] = cells[col]
	}
	if row[0].IsContinuation() {
		// The left half of a wide rune was scrolled away.
		row[0] = core.NewStyledCell(' ', row[0].Style)
	}
	if end := row[len(row)-1]; end.Width == 2 {
		// No room for the right half.
		row[len(row)-1] = core.NewStyledCell(' ', end.Style)
	}

	for _, d := range ds {
		if d.IsRange() || d.Col < 0 {
			continue
		}
		s := c.resolve(d.Hl)
		for i, cell := range core.CellsFromString(d.Text, s) {
			x := d.Col + i
			if x >= len(row) {
				break
			}
			cell.Style = row[x].Style.Merge(s)
			row[x] = cell
		}
	}
	c.flush(p.X, y, row)
}

func (c *Composer) flush(x0, y int, row []core.Cell) {
	for x, cell := range row {
		c.backend.SetCell(x0+x, y, cell)
	}
}

func (c *Composer) resolve(hl string) core.Style {
	if c.styles != nil {
		if s, ok := c.styles.Lookup(hl); ok {
			return s
		}
	}
	return core.DefaultStyle()
}

func tabStop(w host.WindowInfo) int {
	if w.TabStop > 0 {
		return w.TabStop
	}
	return 8
}

// expand lays out text in display columns. offsets[i] is the byte offset
// of the grapheme cluster that produced cell i.
func expand(text string, tab int, s core.Style) ([]core.Cell, []int) {
	cells := make([]core.Cell, 0, len(text))
	offsets := make([]int, 0, len(text))
	core.Graphemes(text, tab, func(off, _ int, r rune, width int) bool {
		switch {
		case r == '\t':
			for range width {
				cells = append(cells, core.NewStyledCell(' ', s))
				offsets = append(offsets, off)
			}
		case width > 0:
			cells = append(cells, core.Cell{Rune: r, Width: width, Style: s})
			offsets = append(offsets, off)
			if width == 2 {
				cont := core.ContinuationCell()
				cont.Style = s
				cells = append(cells, cont)
				offsets = append(offsets, off)
			}
		}
		return true
	})
	return cells, offsets
}
