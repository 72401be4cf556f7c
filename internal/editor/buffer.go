package editor

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/dshills/indentscope/internal/host"
)

// Errors returned by buffer operations.
var (
	ErrLineOutOfRange = errors.New("line out of range")
	ErrRangeInvalid   = errors.New("invalid range")
)

// LineEnding specifies the line ending style of a buffer on disk.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// DetectLineEnding returns the most common line ending in text, or
// LineEndingLF when there is none.
func DetectLineEnding(text string) LineEnding {
	var lf, crlf, cr int
	for i := 0; i < len(text); i++ {
		switch {
		case text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n':
			crlf++
			i++
		case text[i] == '\r':
			cr++
		case text[i] == '\n':
			lf++
		}
	}
	switch {
	case crlf > 0 && crlf >= lf && crlf >= cr:
		return LineEndingCRLF
	case cr > 0 && cr >= lf:
		return LineEndingCR
	}
	return LineEndingLF
}

// splitLines normalizes every line ending to \n and splits text into lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// Buffer is a line-oriented text buffer. Lines are 1-indexed. All methods
// are safe for concurrent use.
type Buffer struct {
	mu         sync.RWMutex
	id         int
	lines      []string
	tick       uint64
	tabWidth   int
	lineEnding LineEnding
	name       string
	filetype   string
	buftype    string
}

// BufferOption configures a Buffer.
type BufferOption func(*Buffer)

// WithName sets the buffer name, usually its file path.
func WithName(name string) BufferOption {
	return func(b *Buffer) {
		b.name = name
	}
}

// WithFiletype sets the filetype used by buffer filters.
func WithFiletype(ft string) BufferOption {
	return func(b *Buffer) {
		b.filetype = ft
	}
}

// WithBuftype sets the buffer type. Normal file buffers leave it empty.
func WithBuftype(bt string) BufferOption {
	return func(b *Buffer) {
		b.buftype = bt
	}
}

// WithTabWidth sets the display width of a tab.
func WithTabWidth(width int) BufferOption {
	return func(b *Buffer) {
		if width > 0 {
			b.tabWidth = width
		}
	}
}

// WithLineEnding overrides the detected line ending.
func WithLineEnding(le LineEnding) BufferOption {
	return func(b *Buffer) {
		b.lineEnding = le
	}
}

// NewBuffer creates a buffer holding text. The line ending is detected
// from text; the buffer itself stores lines without endings.
func NewBuffer(id int, text string, opts ...BufferOption) *Buffer {
	b := &Buffer{
		id:         id,
		lines:      splitLines(text),
		tick:       1,
		tabWidth:   8,
		lineEnding: DetectLineEnding(text),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(id int, r io.Reader, opts ...BufferOption) (*Buffer, error) {
	// Read everything so CRLF pairs split across reads are detected.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBuffer(id, string(data), opts...), nil
}

// ID returns the buffer id.
func (b *Buffer) ID() int {
	return b.id
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// ChangeTick returns the modification counter.
func (b *Buffer) ChangeTick() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tick
}

// LineText returns the text of line, or "" when line is out of range.
func (b *Buffer) LineText(line int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if line < 1 || line > len(b.lines) {
		return ""
	}
	return b.lines[line-1]
}

// Text returns the buffer content joined with its line ending.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, b.lineEnding.Sequence())
}

// LineEnding returns the detected line ending.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// TabWidth returns the display width of a tab.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// Indent returns the indent column of line with tabs expanded to the
// next multiple of the tab width. Blank and out of range lines have
// indent 0.
func (b *Buffer) Indent(line int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if line < 1 || line > len(b.lines) {
		return 0
	}
	return indentOf(b.lines[line-1], b.tabWidth)
}

func indentOf(text string, tab int) int {
	col := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ' ':
			col++
		case '\t':
			col += tab - col%tab
		default:
			return col
		}
	}
	// Whitespace only.
	return 0
}

func blank(text string) bool {
	return strings.TrimLeft(text, " \t") == ""
}

// Blank reports whether line holds only whitespace.
func (b *Buffer) Blank(line int) bool {
	return blank(b.LineText(line))
}

// PrevNonBlank returns the nearest non-blank line at or above line, or 0.
func (b *Buffer) PrevNonBlank(line int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for l := min(line, len(b.lines)); l >= 1; l-- {
		if !blank(b.lines[l-1]) {
			return l
		}
	}
	return 0
}

// NextNonBlank returns the nearest non-blank line at or below line, or 0.
func (b *Buffer) NextNonBlank(line int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for l := max(line, 1); l <= len(b.lines); l++ {
		if !blank(b.lines[l-1]) {
			return l
		}
	}
	return 0
}

// Info returns the attributes consulted by buffer filters.
func (b *Buffer) Info() host.BufferInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return host.BufferInfo{
		ID:       b.id,
		Name:     b.name,
		Filetype: b.filetype,
		Buftype:  b.buftype,
	}
}

// SetLine replaces the text of line.
func (b *Buffer) SetLine(line int, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if line < 1 || line > len(b.lines) {
		return ErrLineOutOfRange
	}
	b.lines[line-1] = strings.TrimRight(text, "\r\n")
	b.tick++
	return nil
}

// InsertLines inserts text before line. Passing LineCount()+1 appends.
// text may span several lines.
func (b *Buffer) InsertLines(line int, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if line < 1 || line > len(b.lines)+1 {
		return ErrLineOutOfRange
	}
	ins := splitLines(text)
	lines := make([]string, 0, len(b.lines)+len(ins))
	lines = append(lines, b.lines[:line-1]...)
	lines = append(lines, ins...)
	lines = append(lines, b.lines[line-1:]...)
	b.lines = lines
	b.tick++
	return nil
}

// DeleteLines removes lines [from, to]. Deleting every line leaves one
// empty line.
func (b *Buffer) DeleteLines(from, to int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if from < 1 || to > len(b.lines) || from > to {
		return ErrRangeInvalid
	}
	b.lines = append(b.lines[:from-1], b.lines[to:]...)
	if len(b.lines) == 0 {
		b.lines = []string{""}
	}
	b.tick++
	return nil
}
