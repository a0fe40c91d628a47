package buffer

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// Errors returned by buffer operations.
var (
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrRangeInvalid       = errors.New("invalid range")
	ErrNoPath             = errors.New("no file path specified")
)

// LineEnding specifies the line ending style used when writing the buffer.
// In memory every line ending is "\n".
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

// Buffer holds a document as an ordered slice of lines.
type Buffer struct {
	id       ID
	lines    []string
	path     string
	revision uint64
	modified bool

	lineEnding LineEnding
	encoding   Encoding
}

// NewBuffer creates a new empty buffer: one empty line.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		id:         NewID(),
		lines:      []string{""},
		lineEnding: LineEndingLF,
		encoding:   EncodingUTF8,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.lines = splitLines(NormalizeLineEndings(s))
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
// The content is decoded the same way LoadFile decodes a file, and failures
// are reported as *IOError with an empty Path.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	b := NewBuffer(opts...)

	// Read everything first: CRLF pairs may straddle read boundaries.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &IOError{Op: "read", Err: err}
	}

	text, enc, err := decode(data)
	if err != nil {
		return nil, &IOError{Op: "decode", Err: err}
	}
	b.lineEnding = DetectLineEnding(text)
	b.encoding = enc
	b.lines = splitLines(NormalizeLineEndings(text))
	return b, nil
}

// LoadText replaces the entire content with text.
// History of the previous content is the caller's concern.
func (b *Buffer) LoadText(text string) {
	b.lines = splitLines(NormalizeLineEndings(text))
	b.modified = true
	b.revision++
}

// Read Operations

// ID returns the buffer's handle.
func (b *Buffer) ID() ID {
	return b.id
}

// LineCount returns the number of lines. Always at least 1.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// LineText returns the text of a specific line (without newline).
// Returns "" for lines outside the document.
func (b *Buffer) LineText(line int) string {
	if line < 0 || line >= len(b.lines) {
		return ""
	}
	return b.lines[line]
}

// LineLen returns the length of a line in runes (without newline).
// Returns 0 for lines outside the document.
func (b *Buffer) LineLen(line int) int {
	return utf8.RuneCountInString(b.LineText(line))
}

// Lines returns up to count consecutive lines starting at start.
func (b *Buffer) Lines(start, count int) []string {
	if start < 0 {
		count += start
		start = 0
	}
	if count <= 0 || start >= len(b.lines) {
		return nil
	}
	end := start + count
	if end > len(b.lines) {
		end = len(b.lines)
	}
	out := make([]string, end-start)
	copy(out, b.lines[start:end])
	return out
}

// Text returns the full buffer content joined with "\n".
func (b *Buffer) Text() string {
	return strings.Join(b.lines, "\n")
}

// Len returns the number of runes in the document, counting each line
// break as one rune.
func (b *Buffer) Len() int {
	n := len(b.lines) - 1
	for _, l := range b.lines {
		n += utf8.RuneCountInString(l)
	}
	return n
}

// TextRange returns the text in [start, end).
// Positions are clamped to the document; a reversed range yields "".
func (b *Buffer) TextRange(start, end Position) string {
	start = b.ClampPosition(start)
	end = b.ClampPosition(end)
	if !start.Before(end) {
		return ""
	}

	if start.Line == end.Line {
		line := b.lines[start.Line]
		return line[byteOffset(line, start.Col):byteOffset(line, end.Col)]
	}

	var sb strings.Builder
	first := b.lines[start.Line]
	sb.WriteString(first[byteOffset(first, start.Col):])
	for i := start.Line + 1; i < end.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(b.lines[i])
	}
	last := b.lines[end.Line]
	sb.WriteByte('\n')
	sb.WriteString(last[:byteOffset(last, end.Col)])
	return sb.String()
}

// Coordinate helpers

// IsValidPosition reports whether pos addresses a location in the document.
func (b *Buffer) IsValidPosition(pos Position) bool {
	if pos.Line < 0 || pos.Line >= len(b.lines) {
		return false
	}
	return pos.Col >= 0 && pos.Col <= utf8.RuneCountInString(b.lines[pos.Line])
}

// ClampPosition returns the nearest valid position to pos.
func (b *Buffer) ClampPosition(pos Position) Position {
	if pos.Line < 0 {
		return Position{}
	}
	if pos.Line >= len(b.lines) {
		return b.EndPosition()
	}
	if pos.Col < 0 {
		pos.Col = 0
	}
	if n := utf8.RuneCountInString(b.lines[pos.Line]); pos.Col > n {
		pos.Col = n
	}
	return pos
}

// EndPosition returns the position just past the last rune.
func (b *Buffer) EndPosition() Position {
	last := len(b.lines) - 1
	return Position{Line: last, Col: utf8.RuneCountInString(b.lines[last])}
}

// Write Operations

// Insert inserts text at pos and returns the position just past the
// inserted text. Text may contain newlines; "\r\n" and "\r" are normalized.
func (b *Buffer) Insert(pos Position, text string) (Position, error) {
	if !b.IsValidPosition(pos) {
		return Position{}, ErrPositionOutOfRange
	}
	if text == "" {
		return pos, nil
	}

	text = NormalizeLineEndings(text)
	line := b.lines[pos.Line]
	split := byteOffset(line, pos.Col)
	before, after := line[:split], line[split:]

	parts := strings.Split(text, "\n")
	if len(parts) == 1 {
		b.lines[pos.Line] = before + text + after
		b.touch()
		return Position{Line: pos.Line, Col: pos.Col + utf8.RuneCountInString(text)}, nil
	}

	last := parts[len(parts)-1]
	replacement := make([]string, 0, len(parts))
	replacement = append(replacement, before+parts[0])
	replacement = append(replacement, parts[1:len(parts)-1]...)
	replacement = append(replacement, last+after)

	b.lines = splice(b.lines, pos.Line, pos.Line+1, replacement)
	b.touch()

	return Position{
		Line: pos.Line + len(parts) - 1,
		Col:  utf8.RuneCountInString(last),
	}, nil
}

// Delete removes the text in [start, end) and returns it.
// Deleting across a line boundary merges the two lines.
func (b *Buffer) Delete(start, end Position) (string, error) {
	if !b.IsValidPosition(start) || !b.IsValidPosition(end) {
		return "", ErrPositionOutOfRange
	}
	if end.Before(start) {
		return "", ErrRangeInvalid
	}
	if start == end {
		return "", nil
	}

	deleted := b.TextRange(start, end)

	first := b.lines[start.Line]
	last := b.lines[end.Line]
	merged := first[:byteOffset(first, start.Col)] + last[byteOffset(last, end.Col):]

	if start.Line == end.Line {
		b.lines[start.Line] = merged
	} else {
		b.lines = splice(b.lines, start.Line, end.Line+1, []string{merged})
	}
	b.touch()

	return deleted, nil
}

// Replace replaces [start, end) with text. It returns the removed text and
// the position just past the inserted text.
func (b *Buffer) Replace(start, end Position, text string) (string, Position, error) {
	if !b.IsValidPosition(start) || !b.IsValidPosition(end) {
		return "", Position{}, ErrPositionOutOfRange
	}
	if end.Before(start) {
		return "", Position{}, ErrRangeInvalid
	}

	deleted, err := b.Delete(start, end)
	if err != nil {
		return "", Position{}, err
	}
	newEnd, err := b.Insert(start, text)
	if err != nil {
		return deleted, Position{}, err
	}
	return deleted, newEnd, nil
}

// Buffer State

// Path returns the file path associated with the buffer, if any.
func (b *Buffer) Path() string {
	return b.path
}

// IsModified reports whether the buffer changed since it was loaded or saved.
func (b *Buffer) IsModified() bool {
	return b.modified
}

// Revision returns a counter that increases with every mutation.
func (b *Buffer) Revision() uint64 {
	return b.revision
}

// LineEnding returns the line ending used by Save.
func (b *Buffer) LineEnding() LineEnding {
	return b.lineEnding
}

// SetLineEnding sets the line ending used by Save.
func (b *Buffer) SetLineEnding(le LineEnding) {
	b.lineEnding = le
}

// Encoding returns the encoding used by Save.
func (b *Buffer) Encoding() Encoding {
	return b.encoding
}

// HasBOM reports whether Save writes a byte order mark.
func (b *Buffer) HasBOM() bool {
	return b.encoding != EncodingUTF8
}

// Snapshot returns a frozen copy of the current lines.
func (b *Buffer) Snapshot() *Snapshot {
	lines := make([]string, len(b.lines))
	copy(lines, b.lines)
	return &Snapshot{
		id:       b.id,
		lines:    lines,
		revision: b.revision,
	}
}

func (b *Buffer) touch() {
	b.modified = true
	b.revision++
}

// Helper functions

// NormalizeLineEndings converts "\r\n" and "\r" to "\n", the only line
// ending a Buffer holds in memory.
func NormalizeLineEndings(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// splitLines splits normalized text into lines. "" yields one empty line,
// and a trailing "\n" yields a trailing empty line.
func splitLines(s string) []string {
	return strings.Split(s, "\n")
}

// byteOffset returns the byte index of rune column col in s, clamped to
// [0, len(s)].
func byteOffset(s string, col int) int {
	if col <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == col {
			return i
		}
		n++
	}
	return len(s)
}

// splice replaces lines[from:to] with repl.
func splice(lines []string, from, to int, repl []string) []string {
	out := make([]string, 0, len(lines)-(to-from)+len(repl))
	out = append(out, lines[:from]...)
	out = append(out, repl...)
	out = append(out, lines[to:]...)
	return out
}
