package buffer

import "fmt"

// Position addresses a location in the document.
// Both Line and Col are 0-indexed; Col is measured in runes from the start
// of the line, so 0 <= Col <= LineLen(Line) for a valid position.
type Position struct {
	Line int
	Col  int
}

// Pos is shorthand for Position{Line: line, Col: col}.
func Pos(line, col int) Position {
	return Position{Line: line, Col: col}
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Col)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
// Positions are ordered by line, then by column.
func (p Position) Compare(other Position) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Col < other.Col {
		return -1
	}
	if p.Col > other.Col {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}

// IsZero returns true if this is the zero position (0:0).
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Col == 0
}

// MinPosition returns the earlier of two positions.
func MinPosition(a, b Position) Position {
	if b.Before(a) {
		return b
	}
	return a
}

// MaxPosition returns the later of two positions.
func MaxPosition(a, b Position) Position {
	if b.After(a) {
		return b
	}
	return a
}

// EndOf returns the position just past text when it is inserted at start.
// It is the pure-arithmetic counterpart of Buffer.Insert's return value.
func EndOf(start Position, text string) Position {
	line, col := start.Line, start.Col
	for _, r := range text {
		if r == '\n' {
			line++
			col = 0
			continue
		}
		col++
	}
	return Position{Line: line, Col: col}
}
