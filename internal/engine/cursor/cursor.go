package cursor

import (
	"fmt"

	"github.com/dshills/textcore/internal/engine/buffer"
)

// Position is an alias for buffer.Position for convenience.
type Position = buffer.Position

// noGoal marks a cursor without a remembered visual column.
const noGoal = -1

// Cursor is the caret: a position plus the visual column it tries to
// return to when moving vertically across shorter lines.
// Cursor is an immutable value type.
type Cursor struct {
	pos  Position
	goal int
}

// NewCursor creates a cursor at pos with no goal column.
func NewCursor(pos Position) Cursor {
	return Cursor{pos: pos, goal: noGoal}
}

// Position returns the caret position.
func (c Cursor) Position() Position {
	return c.pos
}

// MoveTo returns a cursor at pos. Horizontal moves forget the goal column.
func (c Cursor) MoveTo(pos Position) Cursor {
	return Cursor{pos: pos, goal: noGoal}
}

// MoveVertical returns a cursor at pos that remembers goal.
func (c Cursor) MoveVertical(pos Position, goal int) Cursor {
	return Cursor{pos: pos, goal: goal}
}

// Goal returns the remembered visual column, or -1 when there is none.
func (c Cursor) Goal() int {
	return c.goal
}

// HasGoal reports whether a goal column is remembered.
func (c Cursor) HasGoal() bool {
	return c.goal != noGoal
}

// Clamp returns the cursor moved to the nearest valid position in buf.
func (c Cursor) Clamp(buf *buffer.Buffer) Cursor {
	c.pos = buf.ClampPosition(c.pos)
	return c
}

// String returns a string representation of the cursor.
func (c Cursor) String() string {
	return fmt.Sprintf("Cursor%s", c.pos)
}

// ToSelection converts this cursor to a selection with no extent.
func (c Cursor) ToSelection() Selection {
	return Selection{Anchor: c.pos, Head: c.pos}
}
