// Package cursor provides the caret and selection values used by the
// editing core, and the rules for carrying them across buffer changes.
//
// Selection Model:
//
// Selections use an anchor/head model where:
//   - Anchor: The position where the selection started
//   - Head: The current caret position (where typing would occur)
//
// When Anchor == Head, the selection represents just a caret with no
// selected text. The selection can extend forward (head > anchor) or
// backward (head < anchor), preserving the user's selection direction.
// Start and End always return the normalized bounds.
//
// Basic usage:
//
//	sel := cursor.NewCursorSelection(buffer.Pos(0, 2))
//	sel = sel.Extend(buffer.Pos(1, 4)) // select (0:2) to (1:4)
//
//	// Carry the selection across an edit made elsewhere
//	change := buffer.NewInsertChange(buffer.Pos(0, 0), "new line\n")
//	sel = cursor.TransformSelection(sel, change) // now (1:2) to (2:4)
//
// Cursor and Selection are immutable value types and safe to share.
package cursor
