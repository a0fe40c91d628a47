package cursor

import "github.com/dshills/textcore/internal/engine/buffer"

// Change is an alias for buffer.Change for convenience.
type Change = buffer.Change

// TransformPosition maps pos across an applied change.
//
// Transformation rules:
//   - Insert at or before pos: pos shifts by the inserted text
//   - Delete entirely before pos: pos shifts back
//   - Delete containing pos: pos collapses to the delete start
//   - Change after pos: unchanged
func TransformPosition(pos Position, change Change) Position {
	return TransformPositionSticky(pos, change, false)
}

// TransformPositionSticky is like TransformPosition but decides what
// happens to a position exactly at an insertion point: sticky positions
// stay before the inserted text, others move past it.
func TransformPositionSticky(pos Position, change Change, sticky bool) Position {
	switch change.Type {
	case buffer.ChangeInsert:
		if sticky && pos == change.Range.Start {
			return pos
		}
		return AdjustForInsertion(pos, change.Range)
	case buffer.ChangeDelete:
		return AdjustForDeletion(pos, change.Range)
	default:
		return pos
	}
}

// TransformSelection updates a selection after a change.
// Both anchor and head are transformed independently.
func TransformSelection(sel Selection, change Change) Selection {
	return Selection{
		Anchor: TransformPosition(sel.Anchor, change),
		Head:   TransformPosition(sel.Head, change),
	}
}

// TransformSelectionWithBias transforms a selection with a bias for anchor
// and head. The anchor usually sticks; the head usually moves with typing.
func TransformSelectionWithBias(sel Selection, change Change, anchorSticky, headSticky bool) Selection {
	return Selection{
		Anchor: TransformPositionSticky(sel.Anchor, change, anchorSticky),
		Head:   TransformPositionSticky(sel.Head, change, headSticky),
	}
}

// TransformRanges updates a slice of ranges after a change.
// Ranges are normalized to ensure Start <= End after transformation.
func TransformRanges(ranges []Range, change Change) []Range {
	result := make([]Range, len(ranges))
	for i, r := range ranges {
		result[i] = Range{
			Start: TransformPosition(r.Start, change),
			End:   TransformPosition(r.End, change),
		}.Normalize()
	}
	return result
}

// AdjustForDeletion moves pos to account for the removal of del (in
// pre-delete coordinates). A position inside the deleted range moves to its
// start.
func AdjustForDeletion(pos Position, del Range) Position {
	if !del.Start.Before(pos) {
		return pos
	}
	if pos.Before(del.End) {
		return del.Start
	}
	if pos.Line == del.End.Line {
		return Position{Line: del.Start.Line, Col: del.Start.Col + pos.Col - del.End.Col}
	}
	return Position{Line: pos.Line - (del.End.Line - del.Start.Line), Col: pos.Col}
}

// AdjustForInsertion moves pos to account for text inserted over ins (in
// post-insert coordinates). Positions at or after the insertion point shift.
func AdjustForInsertion(pos Position, ins Range) Position {
	if pos.Before(ins.Start) {
		return pos
	}
	if pos.Line == ins.Start.Line {
		return Position{Line: ins.End.Line, Col: ins.End.Col + pos.Col - ins.Start.Col}
	}
	return Position{Line: pos.Line + (ins.End.Line - ins.Start.Line), Col: pos.Col}
}
