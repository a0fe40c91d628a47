// Package script drives an editing engine from Lua.
//
// A State exposes two global tables to the script:
//
//	buf   text queries, edits, caret, undo/redo and batches
//	wrap  soft-wrap queries and visual caret movement
//
// Positions are zero-based (line, col) pairs, the same as the engine's;
// columns count runes. Functions that take a position return the caret
// position after the call as two numbers.
//
// Example:
//
//	buf.batch("Title case", function()
//	    buf.replace(0, 0, 0, 1, string.upper(buf.line(0):sub(1, 1)))
//	end)
//	print(buf.line_count(), wrap.rows())
//	buf.undo()
//
// Only the base, table, string and math libraries are opened. A State is
// not safe for concurrent use: gopher-lua's LState belongs to one
// goroutine at a time.
package script
