// Package history provides undo/redo for the editing core.
//
// # Commands
//
// A Command is a reversible edit stored as a tagged union: an insert, a
// delete, or a batch of child commands. Every command can Execute, Undo and
// Redo against an Editor (a *buffer.Buffer) and reports where the caret
// belongs afterwards:
//
//	cmd := history.NewInsert(buffer.Pos(0, 5), "\n")
//	end, err := cmd.Execute(buf) // end == (1:0)
//
// A delete carries the text it expects to remove. If the buffer no longer
// holds that text, the command fails with ErrStaleCommand and changes
// nothing.
//
// # Manager
//
// The Manager keeps bounded undo and redo stacks. Callers execute a command
// first and push it afterwards; Push never executes:
//
//	m := history.NewManager(history.WithMaxHistory(1000))
//	m.Push(cmd)
//
//	pos, ok, err := m.Undo(buf) // ok is false when there is nothing to undo
//
// # Merging
//
// Consecutive single-character typing, backspacing and forward deleting
// coalesce into one entry, so a typed word undoes in one step. Call
// BreakMerge when the caret moves to start a new entry.
//
// # Batches
//
// Several commands can be recorded as a single undo step:
//
//	m.BeginBatch("Replace all")
//	// ... execute and push edits ...
//	m.EndBatch()
//
// Batches nest; an inner batch becomes one child of its parent.
//
// The Manager is not safe for concurrent use. It belongs to one editing
// session, like the buffer it edits.
package history
