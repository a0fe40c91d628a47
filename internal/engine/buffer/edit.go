package buffer

import "fmt"

// ChangeType categorizes the type of change made to the buffer.
type ChangeType uint8

const (
	ChangeInsert ChangeType = iota // Text was inserted
	ChangeDelete                   // Text was deleted
)

// String returns a string representation of the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change describes a single mutation that has been applied to a buffer.
// For an insert, Range spans the inserted text in the post-edit document.
// For a delete, Range spans the removed text in the pre-edit document.
// Text is the inserted or removed text.
type Change struct {
	Type  ChangeType
	Range Range
	Text  string
}

// NewInsertChange describes text inserted at pos.
func NewInsertChange(pos Position, text string) Change {
	return Change{
		Type:  ChangeInsert,
		Range: Range{Start: pos, End: EndOf(pos, text)},
		Text:  text,
	}
}

// NewDeleteChange describes text removed from [start, end).
func NewDeleteChange(start, end Position, text string) Change {
	return Change{
		Type:  ChangeDelete,
		Range: Range{Start: start, End: end},
		Text:  text,
	}
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	if c.Type == ChangeInsert {
		return fmt.Sprintf("Insert(%s, %q)", c.Range.Start, c.Text)
	}
	return fmt.Sprintf("Delete%s %q", c.Range, c.Text)
}

// Invert returns the change that undoes this one.
func (c Change) Invert() Change {
	switch c.Type {
	case ChangeInsert:
		return Change{Type: ChangeDelete, Range: c.Range, Text: c.Text}
	case ChangeDelete:
		return Change{Type: ChangeInsert, Range: c.Range, Text: c.Text}
	default:
		return c
	}
}

// FirstLine returns the first logical line touched by the change.
func (c Change) FirstLine() int {
	return c.Range.Start.Line
}

// LineDelta returns how many lines the change adds (positive) or removes
// (negative).
func (c Change) LineDelta() int {
	d := c.Range.End.Line - c.Range.Start.Line
	if c.Type == ChangeDelete {
		return -d
	}
	return d
}

// Apply applies the change to buf.
func (c Change) Apply(buf *Buffer) (Position, error) {
	switch c.Type {
	case ChangeInsert:
		return buf.Insert(c.Range.Start, c.Text)
	case ChangeDelete:
		if _, err := buf.Delete(c.Range.Start, c.Range.End); err != nil {
			return Position{}, err
		}
		return c.Range.Start, nil
	default:
		return Position{}, fmt.Errorf("apply change: unknown type %d", c.Type)
	}
}
