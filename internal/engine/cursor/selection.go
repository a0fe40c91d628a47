package cursor

import (
	"fmt"

	"github.com/dshills/textcore/internal/engine/buffer"
)

// Range is an alias for buffer.Range for convenience.
type Range = buffer.Range

// Selection represents a range of selected text.
// Anchor is where the selection started; Head is the current caret position.
// When Anchor == Head, this represents a caret with no selection.
// Selection is an immutable value type.
type Selection struct {
	Anchor Position // Where selection started
	Head   Position // Current caret position (where typing occurs)
}

// NewSelection creates a selection from anchor to head, keeping its
// direction.
func NewSelection(anchor, head Position) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// NewCursorSelection creates a selection representing just a caret.
func NewCursorSelection(pos Position) Selection {
	return Selection{Anchor: pos, Head: pos}
}

// NewRangeSelection creates a forward selection covering the given range.
func NewRangeSelection(r Range) Selection {
	r = r.Normalize()
	return Selection{Anchor: r.Start, Head: r.End}
}

// IsEmpty returns true if the selection has no extent.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head
}

// Range returns the selection as a range (always Start <= End).
func (s Selection) Range() Range {
	return Range{Start: s.Start(), End: s.End()}
}

// Start returns the lower bound of the selection.
func (s Selection) Start() Position {
	return buffer.MinPosition(s.Anchor, s.Head)
}

// End returns the upper bound of the selection.
func (s Selection) End() Position {
	return buffer.MaxPosition(s.Anchor, s.Head)
}

// IsForward returns true if the selection extends forward (head >= anchor).
func (s Selection) IsForward() bool {
	return !s.Head.Before(s.Anchor)
}

// IsBackward returns true if the selection extends backward (head < anchor).
func (s Selection) IsBackward() bool {
	return s.Head.Before(s.Anchor)
}

// Extend returns a new selection extended to pos.
// The anchor remains fixed; only the head moves.
func (s Selection) Extend(pos Position) Selection {
	return Selection{Anchor: s.Anchor, Head: pos}
}

// MoveTo returns a new collapsed selection at pos.
func (s Selection) MoveTo(pos Position) Selection {
	return Selection{Anchor: pos, Head: pos}
}

// Collapse collapses the selection to a caret at the head.
func (s Selection) Collapse() Selection {
	return Selection{Anchor: s.Head, Head: s.Head}
}

// CollapseToStart collapses the selection to its start position.
func (s Selection) CollapseToStart() Selection {
	start := s.Start()
	return Selection{Anchor: start, Head: start}
}

// Flip returns a selection with anchor and head swapped.
func (s Selection) Flip() Selection {
	return Selection{Anchor: s.Head, Head: s.Anchor}
}

// Normalize returns a forward selection (anchor <= head).
func (s Selection) Normalize() Selection {
	return Selection{Anchor: s.Start(), Head: s.End()}
}

// Contains returns true if pos is within [Start, End).
// An empty selection contains nothing.
func (s Selection) Contains(pos Position) bool {
	return s.Range().Contains(pos)
}

// Clamp returns the selection with both ends moved into buf.
func (s Selection) Clamp(buf *buffer.Buffer) Selection {
	return Selection{
		Anchor: buf.ClampPosition(s.Anchor),
		Head:   buf.ClampPosition(s.Head),
	}
}

// String returns a string representation of the selection.
func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("Cursor%s", s.Head)
	}
	dir := "→"
	if s.IsBackward() {
		dir = "←"
	}
	return fmt.Sprintf("Selection(%s%s%s)", s.Anchor, dir, s.Head)
}
