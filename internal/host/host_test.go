package host

import "testing"

func TestIndentWidth(t *testing.T) {
	tests := []struct {
		name string
		info WindowInfo
		want int
	}{
		{"shiftwidth", WindowInfo{ShiftWidth: 2, TabStop: 8}, 2},
		{"tabstop fallback", WindowInfo{ShiftWidth: 0, TabStop: 4}, 4},
		{"nothing set", WindowInfo{}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.IndentWidth(); got != tt.want {
				t.Errorf("IndentWidth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScopeContains(t *testing.T) {
	s := Scope{From: 5, To: 15}
	if s.Len() != 11 {
		t.Errorf("Len() = %d, want 11", s.Len())
	}
	for _, line := range []int{5, 10, 15} {
		if !s.Contains(line) {
			t.Errorf("Contains(%d) = false", line)
		}
	}
	for _, line := range []int{4, 16} {
		if s.Contains(line) {
			t.Errorf("Contains(%d) = true", line)
		}
	}
}

func TestDecorationIsRange(t *testing.T) {
	if (Decoration{Text: "│", Col: 4}).IsRange() {
		t.Error("overlay reported as range")
	}
	if !(Decoration{Col: 2, EndCol: 10}).IsRange() {
		t.Error("range not reported as range")
	}
}
