package scope

import (
	"strings"
	"testing"
	"time"

	"github.com/dshills/indentscope/internal/animate"
	"github.com/dshills/indentscope/internal/config"
	"github.com/dshills/indentscope/internal/host"
	"github.com/dshills/indentscope/internal/indent"
	"github.com/dshills/indentscope/internal/loop"
)

type fakeBuffer struct {
	lines []string
}

func (b *fakeBuffer) ID() int               { return 1 }
func (b *fakeBuffer) LineCount() int        { return len(b.lines) }
func (b *fakeBuffer) ChangeTick() uint64    { return 1 }
func (b *fakeBuffer) Info() host.BufferInfo { return host.BufferInfo{ID: 1} }

func (b *fakeBuffer) blank(line int) bool {
	return strings.TrimSpace(b.LineText(line)) == ""
}

func (b *fakeBuffer) Indent(line int) int {
	t := b.LineText(line)
	return len(t) - len(strings.TrimLeft(t, " "))
}

func (b *fakeBuffer) LineText(line int) string {
	if line < 1 || line > len(b.lines) {
		return ""
	}
	return b.lines[line-1]
}

func (b *fakeBuffer) PrevNonBlank(line int) int {
	for l := min(line, len(b.lines)); l >= 1; l-- {
		if !b.blank(l) {
			return l
		}
	}
	return 0
}

func (b *fakeBuffer) NextNonBlank(line int) int {
	for l := max(line, 1); l <= len(b.lines); l++ {
		if !b.blank(l) {
			return l
		}
	}
	return 0
}

type fakeHost struct {
	win     host.WindowInfo
	buf     *fakeBuffer
	current int
}

func (h *fakeHost) Window(win int) (host.WindowInfo, error) {
	if win != h.win.ID {
		return host.WindowInfo{}, host.ErrInvalidWindow
	}
	return h.win, nil
}

func (h *fakeHost) Buffer(buf int) (host.Buffer, error) {
	if buf != 1 {
		return nil, host.ErrInvalidBuffer
	}
	return h.buf, nil
}

func (h *fakeHost) CurrentWindow() int { return h.current }

type redraws struct {
	got []Range
}

func (r *redraws) Redraw(_ int, from, to int) {
	r.got = append(r.got, Range{From: from, To: to})
}

type placed struct {
	line int
	d    host.Decoration
}

type sink struct {
	placed []placed
}

func (s *sink) Decorate(_, _ int, line int, d host.Decoration) {
	s.placed = append(s.placed, placed{line: line, d: d})
}

func (s *sink) lines() []int {
	var out []int
	for _, p := range s.placed {
		out = append(out, p.line)
	}
	return out
}

type highlights struct{}

func (highlights) Defined(string) bool               { return true }
func (highlights) UnderlineGroup(name string) string { return name + "Underline" }

type toggles map[string]bool

func (t toggles) BufferVar(int, string) (bool, bool) { return false, false }
func (t toggles) GlobalVar(key string) (bool, bool) {
	v, ok := t[key]
	return v, ok
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	host    *fakeHost
	loop    *loop.Manual
	sched   *animate.Scheduler
	sink    *sink
	redraws *redraws
	ctrl    *Controller
}

func newFixture(settings config.Settings, lines []string, sopts ...animate.Option) *fixture {
	h := &fakeHost{
		win:     host.WindowInfo{ID: 1, Buffer: 1, Top: 1, Bottom: len(lines), ShiftWidth: 4, CursorLine: 1},
		buf:     &fakeBuffer{lines: lines},
		current: 1,
	}
	m := loop.NewManual(epoch)
	sched := animate.New(m, sopts...)
	f := &fixture{host: h, loop: m, sched: sched, sink: &sink{}, redraws: &redraws{}}
	f.ctrl = New(h, f.sink, f.redraws, sched, settings, WithHighlights(highlights{}))
	return f
}

func (f *fixture) render(settings config.Settings) {
	settings.Indent.Enabled = false
	e := indent.New(f.host, f.sink, settings, indent.WithScopes(f.ctrl))
	_ = e.OnViewport(1, 1, f.host.win.Top, f.host.win.Bottom)
}

func blankLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "x"
	}
	return lines
}

func noAnimation() config.Settings {
	s := config.Default()
	s.Animate.Enabled = false
	return s
}

func TestStyleRange(t *testing.T) {
	sc := host.Scope{From: 5, To: 20}
	tests := []struct {
		style  config.Style
		cursor int
		value  int
		want   Range
	}{
		{config.StyleOut, 10, 3, Range{7, 13}},
		{config.StyleOut, 10, 0, Range{10, 10}},
		{config.StyleOut, 2, 3, Range{5, 8}},
		{config.StyleOut, 30, 3, Range{17, 20}},
		{config.StyleOut, 10, 15, Range{5, 20}},
		{config.StyleDown, 10, 3, Range{5, 8}},
		{config.StyleDown, 10, 15, Range{5, 20}},
		{config.StyleUp, 10, 3, Range{17, 20}},
		{config.StyleUp, 10, 15, Range{5, 20}},
		{config.StyleUpDown, 6, 3, Range{5, 8}},
		{config.StyleUpDown, 19, 3, Range{17, 20}},
		{config.StyleUpDown, 12, 3, Range{5, 8}}, // tie goes down
		{config.StyleUpDown, 13, 3, Range{17, 20}},
	}
	for _, tt := range tests {
		if got := StyleRange(tt.style, sc, tt.cursor, tt.value); got != tt.want {
			t.Errorf("StyleRange(%s, cursor=%d, v=%d) = %v, want %v", tt.style, tt.cursor, tt.value, got, tt.want)
		}
	}
}

func TestScopeWithoutAnimation(t *testing.T) {
	f := newFixture(noAnimation(), blankLines(50))

	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: &host.Scope{Buf: 1, Win: 1, From: 5, To: 15, Indent: 4}})

	if len(f.redraws.got) != 1 || f.redraws.got[0] != (Range{5, 15}) {
		t.Errorf("redraws = %v, want [{5 15}]", f.redraws.got)
	}
	if f.ctrl.Animating(1) || f.sched.Len() != 0 {
		t.Error("animation scheduled with animation disabled")
	}
	if sc, ok := f.ctrl.Current(1); !ok || sc.From != 5 || sc.To != 15 {
		t.Errorf("Current = %+v, %v", sc, ok)
	}
}

func TestPreviousScopeIsRedrawn(t *testing.T) {
	f := newFixture(noAnimation(), blankLines(50))
	prev := &host.Scope{Buf: 1, From: 20, To: 30, Indent: 4}

	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: &host.Scope{Buf: 1, From: 5, To: 15, Indent: 4}, Prev: prev})
	want := []Range{{5, 15}, {20, 30}}
	if len(f.redraws.got) != 2 || f.redraws.got[0] != want[0] || f.redraws.got[1] != want[1] {
		t.Errorf("redraws = %v, want %v", f.redraws.got, want)
	}

	f.redraws.got = nil
	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Prev: &host.Scope{Buf: 1, From: 5, To: 15}})
	if len(f.redraws.got) != 1 || f.redraws.got[0] != (Range{5, 15}) {
		t.Errorf("redraws = %v, want [{5 15}]", f.redraws.got)
	}
	if _, ok := f.ctrl.Current(1); ok {
		t.Error("scope kept after it went away")
	}
}

func TestRedrawBoundedToViewport(t *testing.T) {
	f := newFixture(noAnimation(), blankLines(50))
	f.host.win.Top, f.host.win.Bottom = 1, 10

	first := &host.Scope{Buf: 1, From: 5, To: 15}
	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: first})
	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: &host.Scope{Buf: 1, From: 20, To: 30}, Prev: first})

	if len(f.redraws.got) != 2 || f.redraws.got[0] != (Range{5, 10}) || f.redraws.got[1] != (Range{5, 10}) {
		t.Errorf("redraws = %v, want [{5 10} {5 10}]", f.redraws.got)
	}
}

func animated(style config.Style) config.Settings {
	s := config.Default()
	s.Animate.Style = style
	s.Animate.Step = 10 * time.Millisecond
	s.Animate.Total = 0
	s.Animate.FPS = 100
	return s
}

func TestAnimatedScopeGrows(t *testing.T) {
	f := newFixture(animated(config.StyleDown), blankLines(50))
	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: &host.Scope{Buf: 1, From: 5, To: 15, Indent: 4}})

	if !f.ctrl.Animating(1) {
		t.Fatal("animation not started")
	}
	if len(f.redraws.got) != 0 {
		t.Errorf("animated scope redrawn before the first tick: %v", f.redraws.got)
	}
	if r, _ := f.ctrl.Visible(1); r != (Range{5, 5}) {
		t.Errorf("initial visible = %v, want {5 5}", r)
	}

	for i := 0; i < 30 && f.ctrl.Animating(1); i++ {
		f.loop.Tick(10 * time.Millisecond)
	}
	if f.ctrl.Animating(1) {
		t.Fatal("animation did not finish")
	}

	if len(f.redraws.got) == 0 {
		t.Fatal("no partial redraws")
	}
	for i, r := range f.redraws.got {
		if r.From != 5 || r.To > 15 {
			t.Errorf("redraw %d = %v outside the scope", i, r)
		}
		if i > 0 && r.To < f.redraws.got[i-1].To {
			t.Errorf("redraw %d = %v shrank", i, r)
		}
	}
	last := f.redraws.got[len(f.redraws.got)-1]
	if last.To != 15 {
		t.Errorf("last redraw = %v, want to reach 15", last)
	}
	if r, _ := f.ctrl.Visible(1); r != (Range{5, 15}) {
		t.Errorf("final visible = %v, want {5 15}", r)
	}
}

func TestAnimationRedrawsOnlyChangedLines(t *testing.T) {
	f := newFixture(animated(config.StyleOut), blankLines(50))
	f.host.win.CursorLine = 10
	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: &host.Scope{Buf: 1, From: 5, To: 15, Indent: 4}})

	f.loop.Tick(10 * time.Millisecond)
	f.loop.Tick(10 * time.Millisecond)
	if len(f.redraws.got) != 1 || f.redraws.got[0] != (Range{9, 11}) {
		t.Errorf("redraws after one step = %v, want [{9 11}]", f.redraws.got)
	}
}

func TestStaleAnimationTicksIgnored(t *testing.T) {
	f := newFixture(animated(config.StyleDown), blankLines(50))
	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: &host.Scope{Buf: 1, From: 5, To: 15}})
	f.loop.Tick(10 * time.Millisecond)

	f.ctrl.Reset(noAnimation())
	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: &host.Scope{Buf: 1, From: 30, To: 40}})
	f.redraws.got = nil

	for i := 0; i < 20; i++ {
		f.loop.Tick(10 * time.Millisecond)
	}
	if len(f.redraws.got) != 0 {
		t.Errorf("old animation redrew after the scope changed: %v", f.redraws.got)
	}
	if f.ctrl.Animating(1) {
		t.Error("old animation still active")
	}
}

func TestAnimationSuppressedOnInsertion(t *testing.T) {
	lines := blankLines(50)
	lines[3] = ""
	f := newFixture(animated(config.StyleDown), lines)

	// Line 4 is blank, so the next non-blank after line 4 is line 5.
	f.ctrl.OnScope(host.ScopeChange{
		Win: 1, Buf: 1,
		Scope: &host.Scope{Buf: 1, From: 5, To: 16},
		Prev:  &host.Scope{Buf: 1, From: 3, To: 14},
	})
	if f.ctrl.Animating(1) {
		t.Error("insertion was animated")
	}
	if len(f.redraws.got) != 2 || f.redraws.got[0] != (Range{5, 16}) {
		t.Errorf("redraws = %v", f.redraws.got)
	}
}

func TestAnimationToggle(t *testing.T) {
	f := newFixture(animated(config.StyleDown), blankLines(50),
		animate.WithToggles(toggles{animate.DefaultTogglePrefix + "_" + AnimationName: false}))
	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: &host.Scope{Buf: 1, From: 5, To: 15}})
	if f.ctrl.Animating(1) {
		t.Error("animation started while toggled off")
	}
	if len(f.redraws.got) != 1 {
		t.Errorf("redraws = %v, want one full redraw", f.redraws.got)
	}
}

func TestForget(t *testing.T) {
	f := newFixture(animated(config.StyleDown), blankLines(50))
	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: &host.Scope{Buf: 1, From: 5, To: 15}})
	f.ctrl.ForgetBuffer(1)
	if _, ok := f.ctrl.Current(1); ok || f.ctrl.Animating(1) {
		t.Error("ForgetBuffer kept the scope or its animation")
	}
}

var block = []string{
	"func main() {",
	"    if x {",
	"        a()",
	"",
	"        b()",
	"    }",
	"}",
}

func blockScope() *host.Scope {
	return &host.Scope{Buf: 1, Win: 1, From: 2, To: 6, Indent: 4}
}

func TestRenderPlainScope(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Settings)
		leftcol int
		lines   []int
		col     int
	}{
		{"inner lines", nil, 0, []int{3, 4, 5}, 4},
		{"always overlap", func(s *config.Settings) { s.Scope.AlwaysOverlap = true }, 0, []int{2, 3, 4, 5, 6}, 4},
		{"leftcol", nil, 2, []int{3, 4, 5}, 2},
		{"scrolled past", nil, 5, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := noAnimation()
			if tt.mutate != nil {
				tt.mutate(&settings)
			}
			f := newFixture(settings, block)
			f.host.win.LeftCol = tt.leftcol
			f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: blockScope()})
			f.render(settings)

			got := f.sink.lines()
			if len(got) != len(tt.lines) {
				t.Fatalf("decorated lines = %v, want %v", got, tt.lines)
			}
			for i, p := range f.sink.placed {
				if p.line != tt.lines[i] || p.d.Col != tt.col || p.d.Text != "│" {
					t.Errorf("mark %d = line %d %+v", i, p.line, p.d)
				}
				if p.d.Hl != config.HlScope || p.d.Priority != 200 {
					t.Errorf("mark %d hl/priority = %s/%d", i, p.d.Hl, p.d.Priority)
				}
			}
		})
	}
}

func TestRenderUnderline(t *testing.T) {
	settings := noAnimation()
	settings.Scope.Underline = true
	f := newFixture(settings, block)
	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: blockScope()})
	f.render(settings)

	var found bool
	for _, p := range f.sink.placed {
		if !p.d.IsRange() {
			continue
		}
		found = true
		if p.line != 2 || p.d.Col != 4 || p.d.EndCol != len(block[1]) {
			t.Errorf("underline = line %d %+v", p.line, p.d)
		}
		if p.d.Hl != config.HlScope+"Underline" || p.d.Priority != 201 {
			t.Errorf("underline hl/priority = %s/%d", p.d.Hl, p.d.Priority)
		}
	}
	if !found {
		t.Error("no underline")
	}
}

func TestRenderUnderlineTabIndent(t *testing.T) {
	settings := noAnimation()
	settings.Scope.Underline = true
	lines := []string{"func f() {", "\tif x {", "\t\ty()", "\t}", "}"}
	tests := []struct {
		name    string
		leftCol int
		wantCol int
	}{
		{"unscrolled", 0, 1},
		{"scrolled", 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(settings, lines)
			f.host.win.TabStop = 4
			f.host.win.LeftCol = tt.leftCol
			f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: &host.Scope{Buf: 1, Win: 1, From: 2, To: 4, Indent: 4}})
			f.render(settings)

			var found bool
			for _, p := range f.sink.placed {
				if !p.d.IsRange() {
					continue
				}
				found = true
				if p.line != 2 || p.d.Col != tt.wantCol || p.d.EndCol != len(lines[1]) {
					t.Errorf("underline = line %d %+v, want bytes [%d, %d)", p.line, p.d, tt.wantCol, len(lines[1]))
				}
			}
			if !found {
				t.Error("no underline")
			}
		})
	}
}

func TestRenderMidAnimation(t *testing.T) {
	settings := animated(config.StyleUp)
	settings.Scope.Underline = true
	f := newFixture(settings, block)
	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: blockScope()})
	f.loop.Tick(10 * time.Millisecond)
	f.loop.Tick(10 * time.Millisecond)
	f.loop.Tick(10 * time.Millisecond)

	if r, _ := f.ctrl.Visible(1); r != (Range{4, 6}) {
		t.Fatalf("visible = %v, want {4 6}", r)
	}
	f.render(settings)
	got := f.sink.lines()
	if len(got) != 2 || got[0] != 4 || got[1] != 5 {
		t.Errorf("decorated lines = %v, want [4 5] without underline", got)
	}
}

func TestRenderChunk(t *testing.T) {
	settings := noAnimation()
	settings.Chunk.Enabled = true
	f := newFixture(settings, block)
	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: blockScope()})
	f.render(settings)

	want := map[int]string{
		2: "┌───",
		3: "│",
		4: "│",
		5: "│",
		6: "└──>",
	}
	if len(f.sink.placed) != len(want) {
		t.Fatalf("placed %d decorations, want %d: %+v", len(f.sink.placed), len(want), f.sink.placed)
	}
	for _, p := range f.sink.placed {
		if p.d.Text != want[p.line] || p.d.Col != 0 || p.d.Hl != config.HlChunk {
			t.Errorf("line %d = %+v, want %q at 0", p.line, p.d, want[p.line])
		}
	}
}

func TestRenderChunkFallsBackForTopLevelScope(t *testing.T) {
	settings := noAnimation()
	settings.Chunk.Enabled = true
	f := newFixture(settings, block)
	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: &host.Scope{Buf: 1, From: 1, To: 7, Indent: 0}})
	f.render(settings)

	for _, p := range f.sink.placed {
		if p.d.Text != "│" || p.d.Col != 0 {
			t.Errorf("line %d = %+v, want plain guide", p.line, p.d)
		}
	}
	if len(f.sink.placed) != 5 {
		t.Errorf("placed = %d, want 5", len(f.sink.placed))
	}
}

func TestRenderOnlyCurrent(t *testing.T) {
	settings := noAnimation()
	settings.Scope.OnlyCurrent = true
	f := newFixture(settings, block)
	f.host.current = 2
	f.ctrl.OnScope(host.ScopeChange{Win: 1, Buf: 1, Scope: blockScope()})
	f.render(settings)
	if len(f.sink.placed) != 0 {
		t.Errorf("scope drawn in an unfocused window: %+v", f.sink.placed)
	}
}
