package buffer

import (
	"strings"
	"unicode/utf8"
)

// Snapshot is an immutable copy of a buffer's lines at one revision.
type Snapshot struct {
	id       ID
	lines    []string
	revision uint64
}

// ID returns the ID of the buffer the snapshot was taken from.
func (s *Snapshot) ID() ID {
	return s.id
}

// Revision returns the buffer revision at the time of the snapshot.
func (s *Snapshot) Revision() uint64 {
	return s.revision
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() int {
	return len(s.lines)
}

// LineText returns the text of line, or "" outside the snapshot.
func (s *Snapshot) LineText(line int) string {
	if line < 0 || line >= len(s.lines) {
		return ""
	}
	return s.lines[line]
}

// LineLen returns the rune length of line.
func (s *Snapshot) LineLen(line int) int {
	return utf8.RuneCountInString(s.LineText(line))
}

// Text returns the snapshot content joined with "\n".
func (s *Snapshot) Text() string {
	return strings.Join(s.lines, "\n")
}
