// Package dirty tracks which window lines need redrawing and coalesces
// adjacent or overlapping requests.
package dirty

import (
	"sort"
	"sync"
)

// Region is an inclusive range of buffer lines.
type Region struct {
	StartLine int
	EndLine   int
}

// NewLineRegion creates a region covering lines [start, end]. Reversed
// bounds are swapped.
func NewLineRegion(start, end int) Region {
	if end < start {
		start, end = end, start
	}
	return Region{StartLine: start, EndLine: end}
}

// LineCount returns the number of lines in the region.
func (r Region) LineCount() int {
	return r.EndLine - r.StartLine + 1
}

// ContainsLine returns true if the region includes line.
func (r Region) ContainsLine(line int) bool {
	return line >= r.StartLine && line <= r.EndLine
}

// Overlaps returns true if two regions share a line.
func (r Region) Overlaps(other Region) bool {
	return r.StartLine <= other.EndLine && other.StartLine <= r.EndLine
}

// Adjacent returns true if one region ends on the line before the other
// starts.
func (r Region) Adjacent(other Region) bool {
	return r.EndLine+1 == other.StartLine || other.EndLine+1 == r.StartLine
}

// Merge combines two regions into a single region that covers both.
// Returns false when they neither overlap nor touch.
func (r Region) Merge(other Region) (Region, bool) {
	if !r.Overlaps(other) && !r.Adjacent(other) {
		return Region{}, false
	}
	return Region{
		StartLine: min(r.StartLine, other.StartLine),
		EndLine:   max(r.EndLine, other.EndLine),
	}, true
}

// Intersect returns the lines shared by both regions.
func (r Region) Intersect(other Region) (Region, bool) {
	if !r.Overlaps(other) {
		return Region{}, false
	}
	return Region{
		StartLine: max(r.StartLine, other.StartLine),
		EndLine:   min(r.EndLine, other.EndLine),
	}, true
}

// Coalesce sorts regions and merges every overlapping or adjacent pair.
func Coalesce(regions []Region) []Region {
	if len(regions) < 2 {
		return regions
	}
	sorted := append([]Region(nil), regions...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartLine < sorted[j].StartLine
	})
	out := sorted[:1]
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if m, ok := last.Merge(r); ok {
			*last = m
			continue
		}
		out = append(out, r)
	}
	return out
}

// Tracker accumulates redraw requests per window. It is safe for
// concurrent use and implements host.Redrawer.
type Tracker struct {
	mu      sync.Mutex
	windows map[int][]Region
	full    map[int]bool
	marks   uint64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		windows: make(map[int][]Region),
		full:    make(map[int]bool),
	}
}

// Redraw marks lines [from, to] of win dirty.
func (t *Tracker) Redraw(win, from, to int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.marks++
	t.windows[win] = Coalesce(append(t.windows[win], NewLineRegion(from, to)))
}

// RedrawAll marks the whole of win dirty.
func (t *Tracker) RedrawAll(win int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.marks++
	t.full[win] = true
}

// Pending reports whether any window has dirty lines.
func (t *Tracker) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows) > 0 || len(t.full) > 0
}

// Marks returns the number of redraw requests received so far.
func (t *Tracker) Marks() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.marks
}

// Frame describes what to redraw in one window.
type Frame struct {
	// Full is set when the whole window must be redrawn; Regions is then
	// empty.
	Full    bool
	Regions []Region
}

// Take returns and clears the pending requests.
func (t *Tracker) Take() map[int]Frame {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[int]Frame, len(t.windows)+len(t.full))
	for win, regions := range t.windows {
		out[win] = Frame{Regions: regions}
	}
	for win := range t.full {
		out[win] = Frame{Full: true}
	}
	t.windows = make(map[int][]Region)
	t.full = make(map[int]bool)
	return out
}
