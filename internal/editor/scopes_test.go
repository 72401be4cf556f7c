package editor

import (
	"strings"
	"testing"

	"github.com/dshills/indentscope/internal/host"
)

const goSource = "func main() {\n" +
	"\tif x {\n" +
	"\t\ty()\n" +
	"\t}\n" +
	"\n" +
	"\tz()\n" +
	"}"

func TestFind(t *testing.T) {
	b := NewBuffer(1, goSource, WithTabWidth(4))
	outer := host.Scope{Buf: 1, From: 1, To: 7, Indent: 0}
	inner := host.Scope{Buf: 1, From: 2, To: 4, Indent: 4}

	tests := []struct {
		name   string
		cursor int
		want   host.Scope
	}{
		{"opening line", 1, outer},
		{"nested opening line", 2, inner},
		{"inside nested", 3, inner},
		{"closing line", 4, inner},
		{"blank uses line above", 5, inner},
		{"body of outer", 6, outer},
		{"outer closing line", 7, outer},
		{"clamped below", 40, outer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Find(b, tt.cursor)
			if !ok || got != tt.want {
				t.Errorf("Find(%d) = %+v, %v; want %+v", tt.cursor, got, ok, tt.want)
			}
		})
	}
}

func TestFind_NoScope(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"flat", "a\nb\nc"},
		{"single line", "x"},
		{"only blanks", "\n  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if sc, ok := Find(NewBuffer(1, tt.text), 1); ok {
				t.Errorf("Find = %+v, want none", sc)
			}
		})
	}
}

func TestFind_IndentDedent(t *testing.T) {
	// The line returning to a smaller, different indent ends the scope
	// without becoming its closing edge.
	b := NewBuffer(1, strings.Join([]string{
		"  a:",
		"      b",
		"      c",
		"d",
	}, "\n"))
	got, ok := Find(b, 2)
	want := host.Scope{Buf: 1, From: 1, To: 3, Indent: 2}
	if !ok || got != want {
		t.Errorf("Find = %+v, %v; want %+v", got, ok, want)
	}
}

func TestIndentScopes_Update(t *testing.T) {
	e := New()
	b := e.OpenBuffer(goSource, WithTabWidth(4))
	w, err := e.OpenWindow(b.ID(), 40, 10)
	if err != nil {
		t.Fatal(err)
	}

	p := NewIndentScopes(e)
	var changes []host.ScopeChange
	cancel := p.Subscribe(func(ch host.ScopeChange) {
		changes = append(changes, ch)
	})

	p.Update(w.ID())
	if len(changes) != 1 || changes[0].Scope == nil || changes[0].Prev != nil {
		t.Fatalf("first update = %+v", changes)
	}
	if sc := changes[0].Scope; sc.From != 1 || sc.To != 7 || sc.Win != w.ID() {
		t.Errorf("scope = %+v", sc)
	}

	// Same scope: no notification.
	_ = e.SetCursor(w.ID(), 6)
	p.Update(w.ID())
	if len(changes) != 1 {
		t.Errorf("unchanged scope notified: %+v", changes)
	}

	_ = e.SetCursor(w.ID(), 3)
	p.Update(w.ID())
	if len(changes) != 2 {
		t.Fatalf("changes = %d, want 2", len(changes))
	}
	ch := changes[1]
	if ch.Scope.From != 2 || ch.Prev == nil || ch.Prev.From != 1 {
		t.Errorf("change = scope %+v prev %+v", ch.Scope, ch.Prev)
	}
	if cur, ok := p.Current(w.ID()); !ok || cur.From != 2 {
		t.Errorf("Current = %+v, %v", cur, ok)
	}

	// Flatten the buffer: the scope disappears.
	for l := 1; l <= b.LineCount(); l++ {
		_ = b.SetLine(l, strings.TrimLeft(b.LineText(l), "\t"))
	}
	p.Update(w.ID())
	if len(changes) != 3 || changes[2].Scope != nil || changes[2].Prev == nil {
		t.Fatalf("scope removal = %+v", changes[len(changes)-1])
	}

	cancel()
	_ = b.SetLine(2, "\tindented")
	p.Update(w.ID())
	if len(changes) != 3 {
		t.Error("cancelled subscriber notified")
	}
}

func TestIndentScopes_UnknownWindow(t *testing.T) {
	p := NewIndentScopes(New())
	called := false
	p.Subscribe(func(host.ScopeChange) { called = true })
	p.Update(42)
	if called {
		t.Error("update of unknown window notified")
	}
	if _, ok := p.Current(42); ok {
		t.Error("unknown window has a scope")
	}
}
