package config

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/indentscope/internal/config/loader"
	"github.com/dshills/indentscope/internal/host"
)

func TestDecode(t *testing.T) {
	data := map[string]any{
		"indent": map[string]any{
			"char":       "┊",
			"hl":         []any{"A", "B"},
			"priority":   int64(5),
			"only_scope": true,
		},
		"scope": map[string]any{
			"underline":      true,
			"hl":             "Scope",
			"always_overlap": true,
		},
		"chunk": map[string]any{
			"enabled": true,
			"char":    map[string]any{"arrow": "▶"},
		},
		"animate": map[string]any{
			"style":    "up_down",
			"easing":   "outQuad",
			"duration": map[string]any{"step": float64(10), "total": int64(300)},
			"fps":      float64(30),
		},
	}

	s, err := Decode(data, Default())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if s.Indent.Char != "┊" || s.Indent.Priority != 5 || !s.Indent.OnlyScope {
		t.Errorf("Indent = %+v", s.Indent)
	}
	if len(s.Indent.Hl) != 2 || s.Indent.Hl[1] != "B" {
		t.Errorf("Indent.Hl = %v", s.Indent.Hl)
	}
	if !s.Scope.Underline || !s.Scope.AlwaysOverlap || len(s.Scope.Hl) != 1 || s.Scope.Hl[0] != "Scope" {
		t.Errorf("Scope = %+v", s.Scope)
	}
	if !s.Chunk.Enabled || s.Chunk.Char.Arrow != "▶" || s.Chunk.Char.CornerTop != "┌" {
		t.Errorf("Chunk = %+v", s.Chunk)
	}
	a := s.Animate
	if a.Style != StyleUpDown || a.Easing != "outQuad" || a.FPS != 30 {
		t.Errorf("Animate = %+v", a)
	}
	if a.Step != 10*time.Millisecond || a.Total != 300*time.Millisecond {
		t.Errorf("durations = %v, %v", a.Step, a.Total)
	}
}

func TestDecode_DoesNotAliasBase(t *testing.T) {
	base := Default()
	s, err := Decode(map[string]any{}, base)
	if err != nil {
		t.Fatal(err)
	}
	s.Indent.Hl[0] = "Changed"
	if base.Indent.Hl[0] != HlIndent {
		t.Errorf("base modified: %v", base.Indent.Hl)
	}
}

func TestDecode_DurationShorthand(t *testing.T) {
	s, err := Decode(map[string]any{
		"animate": map[string]any{"duration": int64(120)},
	}, Default())
	if err != nil {
		t.Fatal(err)
	}
	if s.Animate.Total != 120*time.Millisecond {
		t.Errorf("Total = %v, want 120ms", s.Animate.Total)
	}
	if s.Animate.Step != Default().Animate.Step {
		t.Errorf("Step changed to %v", s.Animate.Step)
	}
}

func TestDecode_Errors(t *testing.T) {
	data := map[string]any{
		"bogus":  true,
		"indent": map[string]any{"enabled": "yes", "nope": 1},
		"scope":  "table please",
		"animate": map[string]any{
			"fps": 1.5,
		},
		"chunk": map[string]any{"hl": []any{"A", 2}},
	}

	s, err := Decode(data, Default())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}

	tests := []struct {
		path string
		want error
	}{
		{"bogus", ErrUnknownSetting},
		{"indent.enabled", ErrTypeMismatch},
		{"indent.nope", ErrUnknownSetting},
		{"scope", ErrTypeMismatch},
		{"animate.fps", ErrTypeMismatch},
		{"chunk.hl[1]", ErrTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			errs := verr.ForPath(tt.path)
			if len(errs) != 1 || !errors.Is(errs[0], tt.want) {
				t.Errorf("errors for %s = %v, want %v", tt.path, errs, tt.want)
			}
		})
	}

	if !errors.Is(err, ErrUnknownSetting) {
		t.Error("errors.Is does not see through ValidationError")
	}
	if !s.Indent.Enabled || s.Animate.FPS != Default().Animate.FPS {
		t.Error("bad values should leave base values in place")
	}
}

func TestDecode_ScriptEasing(t *testing.T) {
	half := loader.Func(func(args ...any) ([]any, error) {
		return []any{args[1].(float64) + args[2].(float64)/2}, nil
	})
	broken := loader.Func(func(args ...any) ([]any, error) {
		return nil, errors.New("boom")
	})

	tests := []struct {
		name string
		fn   loader.Func
		want float64
	}{
		{"result", half, 5},
		{"failure falls back to linear", broken, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode(map[string]any{
				"animate": map[string]any{"easing": tt.fn},
			}, Default())
			if err != nil {
				t.Fatal(err)
			}
			if s.Animate.EasingFunc == nil {
				t.Fatal("EasingFunc not set")
			}
			if got := s.Animate.EasingFunc(25, 0, 10, 100); got != tt.want {
				t.Errorf("EasingFunc(25, 0, 10, 100) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecode_Filter(t *testing.T) {
	script := loader.Func(func(args ...any) ([]any, error) {
		info := args[0].(map[string]any)
		return []any{info["filetype"] != "markdown"}, nil
	})

	tests := []struct {
		name   string
		filter any
		info   host.BufferInfo
		want   bool
	}{
		{"script accepts", script, host.BufferInfo{Filetype: "go"}, true},
		{"script rejects", script, host.BufferInfo{Filetype: "markdown"}, false},
		{"table excludes filetype", map[string]any{"exclude_filetypes": []any{"help"}}, host.BufferInfo{Filetype: "help"}, false},
		{"table default buftypes", map[string]any{"exclude_filetypes": []any{"help"}}, host.BufferInfo{Buftype: "terminal"}, false},
		{"table buftypes", map[string]any{"buftypes": []any{"", "terminal"}}, host.BufferInfo{Buftype: "terminal"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode(map[string]any{"filter": tt.filter}, Default())
			if err != nil {
				t.Fatal(err)
			}
			if got := s.Accepts(tt.info); got != tt.want {
				t.Errorf("Accepts(%+v) = %v, want %v", tt.info, got, tt.want)
			}
		})
	}
}
