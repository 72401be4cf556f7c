// Package core provides the cell, style and color types shared by the
// renderer and its backends.
package core

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Attribute represents text attributes (bold, italic, etc.).
type Attribute uint16

// Text attribute flags.
const (
	AttrNone          Attribute = 0
	AttrBold          Attribute = 1 << iota
	AttrDim                     // Faint/dim text
	AttrItalic                  // Italic text
	AttrUnderline               // Underlined text
	AttrReverse                 // Reverse video (swap fg/bg)
	AttrStrikethrough           // Strikethrough text
)

// Has returns true if the attribute set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Color represents a color value.
// Supports true color (RGB) and terminal palette colors.
type Color struct {
	R, G, B uint8
	// If Indexed is true, R contains the palette index (0-255).
	Indexed bool
	// Default indicates this is the terminal's default color.
	Default bool
}

// ColorDefault represents the terminal's default color.
var ColorDefault = Color{Default: true}

// Common colors.
var (
	ColorBlack = Color{R: 0, G: 0, B: 0}
	ColorWhite = Color{R: 255, G: 255, B: 255}
	ColorGray  = Color{R: 128, G: 128, B: 128}
)

// ColorFromRGB creates a true color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromIndex creates an indexed palette color.
func ColorFromIndex(index uint8) Color {
	return Color{R: index, Indexed: true}
}

// ColorFromHex parses "#rgb" or "#rrggbb", with or without the hash.
func ColorFromHex(hex string) (Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return fromColorful(c), nil
}

// FromHCL creates a color from hue (degrees), chroma and luminance.
func FromHCL(h, c, l float64) Color {
	return fromColorful(colorful.Hcl(h, c, l))
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// IsDefault returns true if this is the default/transparent color.
func (c Color) IsDefault() bool {
	return c.Default
}

// Equals returns true if two colors are equal.
func (c Color) Equals(other Color) bool {
	if c.Default || other.Default {
		return c.Default == other.Default
	}
	if c.Indexed != other.Indexed {
		return false
	}
	if c.Indexed {
		return c.R == other.R
	}
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// String returns a string representation of the color.
func (c Color) String() string {
	switch {
	case c.Default:
		return "default"
	case c.Indexed:
		return fmt.Sprintf("idx(%d)", c.R)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Blend mixes c toward other in Lab space. Palette and default colors
// cannot be mixed and snap to whichever side amount is closer to.
func (c Color) Blend(other Color, amount float64) Color {
	if c.Indexed || other.Indexed || c.Default || other.Default {
		if amount < 0.5 {
			return c
		}
		return other
	}
	return fromColorful(c.colorful().BlendLab(other.colorful(), amount))
}

// Lighten returns c with its luminance raised by amount (0..1).
func (c Color) Lighten(amount float64) Color {
	if c.Indexed || c.Default {
		return c
	}
	h, ch, l := c.colorful().Hcl()
	return fromColorful(colorful.Hcl(h, ch, l+(1-l)*amount))
}

// Darken returns c with its luminance lowered by amount (0..1).
func (c Color) Darken(amount float64) Color {
	if c.Indexed || c.Default {
		return c
	}
	h, ch, l := c.colorful().Hcl()
	return fromColorful(colorful.Hcl(h, ch, l*(1-amount)))
}

// Style represents the visual style of text.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the default terminal style.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// NewStyle creates a style with the given foreground color.
func NewStyle(fg Color) Style {
	return Style{Foreground: fg, Background: ColorDefault}
}

// WithForeground returns a new style with the given foreground color.
func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

// WithBackground returns a new style with the given background color.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// Bold returns a new style with bold attribute added.
func (s Style) Bold() Style {
	s.Attributes |= AttrBold
	return s
}

// Underline returns a new style with underline attribute added.
func (s Style) Underline() Style {
	s.Attributes |= AttrUnderline
	return s
}

// Merge combines two styles.
// The other style takes precedence for non-default values.
// Attributes are OR'd together.
func (s Style) Merge(other Style) Style {
	result := s
	if !other.Foreground.IsDefault() {
		result.Foreground = other.Foreground
	}
	if !other.Background.IsDefault() {
		result.Background = other.Background
	}
	result.Attributes |= other.Attributes
	return result
}

// Equals returns true if two styles are equal.
func (s Style) Equals(other Style) bool {
	return s.Foreground.Equals(other.Foreground) &&
		s.Background.Equals(other.Background) &&
		s.Attributes == other.Attributes
}

// Cell is one screen position.
type Cell struct {
	Rune rune
	// Width is the display width: 1 for normal, 2 for wide runes and 0
	// for the second half of a wide rune.
	Width int
	Style Style
}

// EmptyCell returns a blank cell with the default style.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1, Style: DefaultStyle()}
}

// NewStyledCell creates a cell for r with style.
func NewStyledCell(r rune, style Style) Cell {
	return Cell{Rune: r, Width: RuneWidth(r), Style: style}
}

// IsContinuation returns true for the second half of a wide rune.
func (c Cell) IsContinuation() bool {
	return c.Width == 0
}

// ContinuationCell returns the placeholder that follows a wide rune.
func ContinuationCell() Cell {
	return Cell{Rune: 0, Width: 0, Style: DefaultStyle()}
}

// RuneWidth returns the display width of a rune. Control characters have
// no width.
func RuneWidth(r rune) int {
	if r < 32 || r == 0x7F {
		return 0
	}
	return runewidth.RuneWidth(r)
}

// Graphemes walks the grapheme clusters of text. fn receives the byte
// offset and display column of each cluster, its first rune and its
// width; a tab is as wide as the distance to the next multiple of tab.
// Combining marks and emoji sequences form one cluster. Returning false
// stops the walk.
func Graphemes(text string, tab int, fn func(off, col int, r rune, width int) bool) {
	if tab <= 0 {
		tab = 8
	}
	state := -1
	off, col := 0, 0
	for rest := text; rest != ""; {
		var cluster string
		var boundaries int
		cluster, rest, boundaries, state = uniseg.StepString(rest, state)
		r, _ := utf8.DecodeRuneInString(cluster)

		var width int
		switch {
		case r == '\t':
			width = tab - col%tab
		case r < 32 || r == 0x7F:
			width = 0
		default:
			width = min(boundaries>>uniseg.ShiftWidth, 2)
		}
		if !fn(off, col, r, width) {
			return
		}
		off += len(cluster)
		col += width
	}
}

// ByteOffset returns the byte offset of the first grapheme cluster of
// text that starts at display column col or later, or len(text).
func ByteOffset(text string, col, tab int) int {
	res := len(text)
	Graphemes(text, tab, func(off, c int, _ rune, _ int) bool {
		if c >= col {
			res = off
			return false
		}
		return true
	})
	return res
}

// CellsFromString creates cells from a string.
func CellsFromString(s string, style Style) []Cell {
	cells := make([]Cell, 0, len(s))
	for _, r := range s {
		width := RuneWidth(r)
		if width == 0 {
			continue
		}
		cells = append(cells, Cell{Rune: r, Width: width, Style: style})
		if width == 2 {
			cells = append(cells, ContinuationCell())
		}
	}
	return cells
}

// StringFromCells converts cells back to a string.
func StringFromCells(cells []Cell) string {
	runes := make([]rune, 0, len(cells))
	for _, c := range cells {
		if !c.IsContinuation() && c.Rune != 0 {
			runes = append(runes, c.Rune)
		}
	}
	return string(runes)
}
