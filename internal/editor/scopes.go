package editor

import (
	"sort"
	"sync"

	"github.com/dshills/indentscope/internal/host"
)

var _ host.ScopeProvider = (*IndentScopes)(nil)

// IndentScopes derives the scope around the cursor from indentation
// alone. A scope starts at an opening line, covers the maximal run of
// following lines indented deeper than it, and ends on the closing line
// that returns to the opening indent, when there is one.
type IndentScopes struct {
	host host.Host

	mu     sync.Mutex
	subs   map[int]func(host.ScopeChange)
	nextID int
	last   map[int]host.Scope
}

// NewIndentScopes creates a provider reading windows and buffers from h.
func NewIndentScopes(h host.Host) *IndentScopes {
	return &IndentScopes{
		host: h,
		subs: make(map[int]func(host.ScopeChange)),
		last: make(map[int]host.Scope),
	}
}

// Subscribe registers fn for scope changes.
func (p *IndentScopes) Subscribe(fn func(host.ScopeChange)) (cancel func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Current returns the last scope reported for win.
func (p *IndentScopes) Current(win int) (host.Scope, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sc, ok := p.last[win]
	return sc, ok
}

// Update recomputes the scope at the cursor of win and notifies the
// subscribers when it differs from the last one reported.
func (p *IndentScopes) Update(win int) {
	w, err := p.host.Window(win)
	if err != nil {
		p.Forget(win)
		return
	}
	b, err := p.host.Buffer(w.Buffer)
	if err != nil {
		p.Forget(win)
		return
	}

	next, ok := Find(b, w.CursorLine)
	if ok {
		next.Win = win
	}

	p.mu.Lock()
	prev, had := p.last[win]
	if had == ok && (!ok || prev == next) {
		p.mu.Unlock()
		return
	}
	ch := host.ScopeChange{Win: win, Buf: w.Buffer}
	if ok {
		p.last[win] = next
		ch.Scope = &next
	} else {
		delete(p.last, win)
	}
	if had {
		ch.Prev = &prev
	}
	subs := p.subscribers()
	p.mu.Unlock()

	for _, fn := range subs {
		fn(ch)
	}
}

// Forget drops the scope of win without notifying anyone.
func (p *IndentScopes) Forget(win int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.last, win)
}

// subscribers returns the callbacks in subscription order.
func (p *IndentScopes) subscribers() []func(host.ScopeChange) {
	ids := make([]int, 0, len(p.subs))
	for id := range p.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(host.ScopeChange), len(ids))
	for i, id := range ids {
		out[i] = p.subs[id]
	}
	return out
}

// Find returns the indentation scope of buffer b around line.
//
// The cursor line, or the nearest non-blank line above it when blank,
// decides the scope. A line followed by deeper indented lines opens its
// own scope. A line preceded by deeper indented lines closes the scope
// above it. Any other line lies inside the scope opened by the nearest
// line above with a smaller indent.
func Find(b host.Buffer, line int) (host.Scope, bool) {
	n := b.LineCount()
	if n == 0 {
		return host.Scope{}, false
	}
	line = min(max(line, 1), n)
	if b.PrevNonBlank(line) != line {
		anchor := b.PrevNonBlank(line)
		if anchor == 0 {
			anchor = b.NextNonBlank(line)
		}
		if anchor == 0 {
			return host.Scope{}, false
		}
		line = anchor
	}
	ind := b.Indent(line)

	var open int
	next := b.NextNonBlank(line + 1)
	prev := b.PrevNonBlank(line - 1)
	switch {
	case next > 0 && b.Indent(next) > ind:
		open = line
	case prev > 0 && b.Indent(prev) > ind:
		open = above(b, line, ind+1)
	default:
		open = above(b, line, ind)
	}
	if open == 0 {
		return host.Scope{}, false
	}

	oi := b.Indent(open)
	to := open
	for l := open + 1; l <= n; l++ {
		if b.PrevNonBlank(l) != l {
			continue
		}
		if b.Indent(l) <= oi {
			break
		}
		to = l
	}
	if to == open {
		return host.Scope{}, false
	}
	if edge := b.NextNonBlank(to + 1); edge > 0 && b.Indent(edge) == oi {
		to = edge
	}
	return host.Scope{Buf: b.ID(), From: open, To: to, Indent: oi}, true
}

// above returns the nearest non-blank line above line whose indent is
// below limit, or 0.
func above(b host.Buffer, line, limit int) int {
	for l := b.PrevNonBlank(line - 1); l > 0; l = b.PrevNonBlank(l - 1) {
		if b.Indent(l) < limit {
			return l
		}
	}
	return 0
}
