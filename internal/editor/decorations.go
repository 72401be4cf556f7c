package editor

import (
	"sort"
	"sync"

	"github.com/dshills/indentscope/internal/host"
)

// Decorations collects the ephemeral decorations of one frame per window
// and line. It implements host.Decorator.
type Decorations struct {
	mu    sync.Mutex
	lines map[int]map[int][]host.Decoration
	count int
}

// NewDecorations creates an empty collector.
func NewDecorations() *Decorations {
	return &Decorations{lines: make(map[int]map[int][]host.Decoration)}
}

// Decorate records d for line of win.
func (d *Decorations) Decorate(win, _ int, line int, deco host.Decoration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.lines[win]
	if !ok {
		m = make(map[int][]host.Decoration)
		d.lines[win] = m
	}
	m[line] = append(m[line], deco)
	d.count++
}

// Line returns the decorations of line in win ordered by ascending
// priority, so later entries draw over earlier ones. Equal priorities keep
// insertion order.
func (d *Decorations) Line(win, line int) []host.Decoration {
	d.mu.Lock()
	defer d.mu.Unlock()
	src := d.lines[win][line]
	if len(src) == 0 {
		return nil
	}
	out := append([]host.Decoration(nil), src...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// Len returns the number of decorations recorded since the last Clear.
func (d *Decorations) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Clear drops the decorations of win before it is rendered again.
func (d *Decorations) Clear(win int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ds := range d.lines[win] {
		d.count -= len(ds)
	}
	delete(d.lines, win)
}
