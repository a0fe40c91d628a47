// Package buffer provides the line-oriented text buffer at the center of the
// editing core.
//
// A Buffer owns the document text as an ordered slice of lines and is
// addressed exclusively by Position values: a 0-indexed line and a
// 0-indexed column counted in runes. An empty document is a single empty
// line, so LineCount is always at least 1.
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("hello world")
//
//	// Split the line in two
//	end, _ := buf.Insert(buffer.Pos(0, 5), "\n") // end == (1:0)
//
//	// Capture the text before removing it so it can be re-inserted later
//	deleted, _ := buf.Delete(buffer.Pos(0, 5), buffer.Pos(1, 0)) // "\n"
//
// Read queries never fail. Lines and columns outside the document yield
// empty strings and zero lengths, because callers that draw or move the
// caret routinely probe positions next to the document boundary. Mutations
// validate their positions and return ErrPositionOutOfRange or
// ErrRangeInvalid without touching the buffer.
//
// File I/O:
//
// LoadFile decodes UTF-8 (with or without BOM) and UTF-16 (with BOM),
// normalizes every line ending to "\n" in memory and remembers both the
// dominant line ending and the encoding so Save can write the file back the
// way it was found. A failed load leaves the buffer untouched; a save is
// written to a temporary file and renamed into place.
//
// Thread Safety:
//
// A Buffer is owned by a single editing session and is not safe for
// concurrent use. Use Snapshot to hand a frozen copy of the lines to
// another goroutine.
package buffer
