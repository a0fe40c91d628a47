// Package layout maps logical buffer lines to wrapped visual rows.
//
// A Mapper computes the segments of each line on demand and keeps them in
// a bounded LRU cache. It does not own the buffer: it resolves a
// buffer.ID through a buffer.Resolver on every query, and a released ID
// behaves like an empty document.
//
// Coordinates are rune columns. Widths are measured in terminal cells:
// wide runes count two cells, tabs advance to the next tab stop, and
// grapheme clusters are never split.
//
// The mapper does not observe edits. Callers invalidate the affected
// lines after every mutation:
//
//	buf.Insert(pos, text)
//	m.Invalidate(pos.Line, -1)
package layout
