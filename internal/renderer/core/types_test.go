package core

import (
	"testing"
)

func TestColorDefault(t *testing.T) {
	c := ColorDefault
	if !c.IsDefault() {
		t.Error("ColorDefault should be default")
	}
	if c.String() != "default" {
		t.Errorf("String() = %q", c.String())
	}
}

func TestColorFromHex(t *testing.T) {
	tests := []struct {
		hex     string
		r, g, b uint8
		wantErr bool
	}{
		{"#FF8040", 255, 128, 64, false},
		{"#ff8040", 255, 128, 64, false},
		{"FF8040", 255, 128, 64, false},
		{"#FFF", 255, 255, 255, false}, // Short form
		{"#000", 0, 0, 0, false},
		{"invalid", 0, 0, 0, true},
		{"#GGG", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			c, err := ColorFromHex(tt.hex)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.hex)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.R != tt.r || c.G != tt.g || c.B != tt.b {
				t.Errorf("got %v, want #%02X%02X%02X", c, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestColorEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b Color
		want bool
	}{
		{"same rgb", ColorFromRGB(1, 2, 3), ColorFromRGB(1, 2, 3), true},
		{"different rgb", ColorFromRGB(1, 2, 3), ColorFromRGB(1, 2, 4), false},
		{"defaults", ColorDefault, ColorDefault, true},
		{"default vs black", ColorDefault, ColorBlack, false},
		{"index ignores gb", Color{R: 4, G: 9, Indexed: true}, ColorFromIndex(4), true},
		{"index vs rgb", ColorFromIndex(4), ColorFromRGB(4, 0, 0), false},
	}
	for _, tt := range tests {
		if got := tt.a.Equals(tt.b); got != tt.want {
			t.Errorf("%s: Equals = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestColorBlend(t *testing.T) {
	black, white := ColorBlack, ColorWhite
	if got := black.Blend(white, 0); !got.Equals(black) {
		t.Errorf("Blend(0) = %v, want black", got)
	}
	if got := black.Blend(white, 1); !got.Equals(white) {
		t.Errorf("Blend(1) = %v, want white", got)
	}
	mid := black.Blend(white, 0.5)
	near := func(a, b uint8) bool { return a-b <= 1 || b-a <= 1 }
	if mid.R < 64 || mid.R > 192 || !near(mid.R, mid.G) || !near(mid.G, mid.B) {
		t.Errorf("Blend(0.5) = %v, want a neutral gray", mid)
	}

	idx := ColorFromIndex(3)
	if got := idx.Blend(white, 0.2); !got.Equals(idx) {
		t.Errorf("indexed Blend(0.2) = %v, want %v", got, idx)
	}
	if got := idx.Blend(white, 0.8); !got.Equals(white) {
		t.Errorf("indexed Blend(0.8) = %v, want white", got)
	}
}

func TestColorLightenDarken(t *testing.T) {
	base := ColorFromRGB(40, 80, 160)
	lum := func(c Color) int { return int(c.R) + int(c.G) + int(c.B) }

	if lighter := base.Lighten(0.5); lum(lighter) <= lum(base) {
		t.Errorf("Lighten(0.5) = %v, not lighter than %v", lighter, base)
	}
	if darker := base.Darken(0.5); lum(darker) >= lum(base) {
		t.Errorf("Darken(0.5) = %v, not darker than %v", darker, base)
	}
	if got := ColorDefault.Lighten(0.5); !got.IsDefault() {
		t.Error("Lighten changed the default color")
	}
}

func TestStyleMerge(t *testing.T) {
	red := ColorFromRGB(255, 0, 0)
	blue := ColorFromRGB(0, 0, 255)

	base := NewStyle(red).WithBackground(blue).Bold()
	over := DefaultStyle().WithForeground(blue).Underline()

	got := base.Merge(over)
	if !got.Foreground.Equals(blue) || !got.Background.Equals(blue) {
		t.Errorf("Merge colors = %v/%v", got.Foreground, got.Background)
	}
	if !got.Attributes.Has(AttrBold) || !got.Attributes.Has(AttrUnderline) {
		t.Errorf("Merge attributes = %b", got.Attributes)
	}
	if !got.Equals(got) || got.Equals(base) {
		t.Error("Equals misbehaves")
	}
}

func TestRuneWidth(t *testing.T) {
	tests := []struct {
		r    rune
		want int
	}{
		{'a', 1},
		{'│', 1},
		{'\t', 0},
		{0x7F, 0},
		{'世', 2},
		{'ｱ', 1},
	}
	for _, tt := range tests {
		if got := RuneWidth(tt.r); got != tt.want {
			t.Errorf("RuneWidth(%q) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestGraphemes(t *testing.T) {
	type cluster struct {
		off, col int
		r        rune
		width    int
	}
	var got []cluster
	// "e" plus a combining acute accent is one cluster.
	Graphemes("\tx世e\u0301\x01z", 4, func(off, col int, r rune, width int) bool {
		got = append(got, cluster{off, col, r, width})
		return true
	})
	want := []cluster{
		{0, 0, '\t', 4},
		{1, 4, 'x', 1},
		{2, 5, '世', 2},
		{5, 7, 'e', 1},
		{8, 8, 0x01, 0},
		{9, 8, 'z', 1},
	}
	if len(got) != len(want) {
		t.Fatalf("clusters = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cluster %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestByteOffset(t *testing.T) {
	tests := []struct {
		text     string
		col, tab int
		want     int
	}{
		{"    if x", 4, 8, 4},
		{"\t\tif x", 8, 4, 2},
		{"\t\tif x", 16, 8, 2},
		{"\tif", 4, 8, 1},
		{"世界x", 2, 8, 3},
		{"世界x", 3, 8, 6},
		{"ab", 5, 8, 2},
		{"", 0, 8, 0},
	}
	for _, tt := range tests {
		if got := ByteOffset(tt.text, tt.col, tt.tab); got != tt.want {
			t.Errorf("ByteOffset(%q, %d, %d) = %d, want %d", tt.text, tt.col, tt.tab, got, tt.want)
		}
	}
}

func TestCellsFromString(t *testing.T) {
	style := DefaultStyle().Bold()
	cells := CellsFromString("a世\x01b", style)

	if len(cells) != 4 {
		t.Fatalf("len = %d, want 4", len(cells))
	}
	if cells[1].Width != 2 || !cells[2].IsContinuation() {
		t.Errorf("wide rune cells = %+v, %+v", cells[1], cells[2])
	}
	if !cells[0].Style.Equals(style) {
		t.Error("style not applied")
	}
	if got := StringFromCells(cells); got != "a世b" {
		t.Errorf("StringFromCells = %q", got)
	}
}
