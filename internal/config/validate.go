package config

import (
	"sort"
	"strings"

	"github.com/dshills/indentscope/internal/animate/easing"
)

// MaxFPS bounds animate.fps.
const MaxFPS = 240

// Validate checks s for values the renderers and scheduler cannot use.
func (s Settings) Validate() error {
	errs := &ValidationError{}

	glyph(errs, "indent.char", s.Indent.Char)
	glyph(errs, "scope.char", s.Scope.Char)
	glyph(errs, "chunk.char.corner_top", s.Chunk.Char.CornerTop)
	glyph(errs, "chunk.char.corner_bottom", s.Chunk.Char.CornerBottom)
	glyph(errs, "chunk.char.horizontal", s.Chunk.Char.Horizontal)
	glyph(errs, "chunk.char.vertical", s.Chunk.Char.Vertical)
	glyph(errs, "chunk.char.arrow", s.Chunk.Char.Arrow)

	for path, p := range map[string]int{
		"indent.priority": s.Indent.Priority,
		"scope.priority":  s.Scope.Priority,
		"chunk.priority":  s.Chunk.Priority,
	} {
		if p < 0 {
			errs.Add(path, p, ErrOutOfRange, "must not be negative")
		}
	}

	a := s.Animate
	if !a.Style.Valid() {
		errs.Add("animate.style", string(a.Style), ErrInvalidEnum, "one of out, up_down, down, up")
	}
	if a.EasingFunc == nil && a.Easing != "" {
		if _, ok := easing.Lookup(a.Easing); !ok {
			errs.Add("animate.easing", a.Easing, ErrInvalidEnum, "unknown easing")
		}
	}
	if a.FPS <= 0 || a.FPS > MaxFPS {
		errs.Add("animate.fps", a.FPS, ErrOutOfRange, "must be between 1 and 240")
	}
	if a.Step < 0 {
		errs.Add("animate.duration.step", a.Step, ErrOutOfRange, "must not be negative")
	}
	if a.Total < 0 {
		errs.Add("animate.duration.total", a.Total, ErrOutOfRange, "must not be negative")
	}

	sortErrors(errs)
	return errs.AsError()
}

func glyph(errs *ValidationError, path, s string) {
	if strings.TrimSpace(s) == "" {
		errs.Add(path, nil, ErrEmptyGlyph, "")
	}
}

// sortErrors orders errors by path so reports are stable.
func sortErrors(errs *ValidationError) {
	sort.SliceStable(errs.Errors, func(i, j int) bool {
		return errs.Errors[i].Path < errs.Errors[j].Path
	})
}
