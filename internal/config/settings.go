package config

import (
	"time"

	"github.com/dshills/indentscope/internal/animate/easing"
	"github.com/dshills/indentscope/internal/host"
)

// Style selects how an animated scope grows.
type Style string

// Animation styles.
const (
	// StyleOut grows outward from the cursor.
	StyleOut Style = "out"
	// StyleUpDown grows from whichever end of the scope is closer to the cursor.
	StyleUpDown Style = "up_down"
	// StyleDown grows from the first line downward.
	StyleDown Style = "down"
	// StyleUp grows from the last line upward.
	StyleUp Style = "up"
)

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	switch s {
	case StyleOut, StyleUpDown, StyleDown, StyleUp:
		return true
	}
	return false
}

// Filter decides whether a buffer receives any rendering.
type Filter func(info host.BufferInfo) bool

// DefaultFilter accepts normal file buffers.
func DefaultFilter(info host.BufferInfo) bool {
	return info.Buftype == ""
}

// Settings is the complete indentscope configuration.
type Settings struct {
	Indent  IndentSettings
	Scope   ScopeSettings
	Chunk   ChunkSettings
	Animate AnimateSettings

	// Filter selects the buffers to render. Nil means DefaultFilter.
	Filter Filter
}

// IndentSettings configures indent guides.
type IndentSettings struct {
	Enabled bool
	// Char is the guide glyph.
	Char string
	// Hl lists highlight groups cycled by indent level.
	Hl       []string
	Priority int
	// OnlyScope draws guides only inside the current scope.
	OnlyScope bool
	// OnlyCurrent draws guides only in the focused window.
	OnlyCurrent bool
}

// ScopeSettings configures the plain scope guide.
type ScopeSettings struct {
	Enabled bool
	Char    string
	// Underline underlines the opening line of the scope.
	Underline   bool
	Priority    int
	OnlyCurrent bool
	Hl          []string
	// AlwaysOverlap draws the scope guide over lines whose own indent
	// does not exceed the scope's.
	AlwaysOverlap bool
}

// ChunkChars are the glyphs of a chunk box.
type ChunkChars struct {
	CornerTop    string
	CornerBottom string
	Horizontal   string
	Vertical     string
	Arrow        string
}

// ChunkSettings configures box rendering of scopes.
type ChunkSettings struct {
	Enabled     bool
	Priority    int
	OnlyCurrent bool
	Hl          []string
	Char        ChunkChars
}

// AnimateSettings configures scope animations.
type AnimateSettings struct {
	Enabled bool
	Style   Style
	// Easing names a built-in easing function.
	Easing string
	// EasingFunc overrides Easing when set, e.g. from a Lua config.
	EasingFunc easing.Func
	Step       time.Duration
	Total      time.Duration
	FPS        int
}

// Default highlight group names.
const (
	HlIndent = "IndentScopeIndent"
	HlScope  = "IndentScopeScope"
	HlChunk  = "IndentScopeChunk"
)

// Default returns the default settings.
func Default() Settings {
	return Settings{
		Indent: IndentSettings{
			Enabled:  true,
			Char:     "│",
			Hl:       []string{HlIndent},
			Priority: 1,
		},
		Scope: ScopeSettings{
			Enabled:  true,
			Char:     "│",
			Priority: 200,
			Hl:       []string{HlScope},
		},
		Chunk: ChunkSettings{
			Enabled:  false,
			Priority: 200,
			Hl:       []string{HlChunk},
			Char: ChunkChars{
				CornerTop:    "┌",
				CornerBottom: "└",
				Horizontal:   "─",
				Vertical:     "│",
				Arrow:        ">",
			},
		},
		Animate: AnimateSettings{
			Enabled: true,
			Style:   StyleOut,
			Easing:  string(easing.Linear),
			Step:    20 * time.Millisecond,
			Total:   500 * time.Millisecond,
			FPS:     60,
		},
	}
}

// Accepts applies the buffer filter.
func (s Settings) Accepts(info host.BufferInfo) bool {
	if s.Filter == nil {
		return DefaultFilter(info)
	}
	return s.Filter(info)
}

// PickHl returns the group for a 1-indexed level, cycling through hls.
func PickHl(hls []string, level int) string {
	if len(hls) == 0 {
		return ""
	}
	if level < 1 {
		level = 1
	}
	return hls[(level-1)%len(hls)]
}
