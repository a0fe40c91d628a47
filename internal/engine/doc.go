// Package engine ties a text buffer, its soft-wrap mapper and its undo
// history into one editing session.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - buffer: line-based document storage addressed by (line, col)
//   - cursor: caret, selection and position transforms
//   - history: command-based undo/redo with merging and batches
//
// The wrap mapper lives in renderer/layout. It holds only a handle to the
// buffer, resolved through the engine's registry, so loading a new file
// releases the old buffer and the stale mapper sees an empty document.
//
// # Edit Ordering
//
// Every edit runs in the same order:
//
//  1. the command reads and mutates the buffer
//  2. the mapper is invalidated from the first touched line to the end
//  3. the command is pushed to history, merging with the previous one
//     when both are single-rune typing steps
//
// # Basic Usage
//
//	e := engine.New(engine.WithContent("hello"))
//	e.SetCursor(engine.Position{Line: 0, Col: 5})
//	e.Insert(" world")
//
//	for row := 0; row < e.Mapper().TotalVisualLines(); row++ {
//	    vp, _ := e.Mapper().VisualToLogical(row)
//	    fmt.Println(e.Mapper().SegmentText(vp.Line, vp.Segment))
//	}
//
//	e.Undo() // "hello"
//
// # Concurrency
//
// An Engine is not safe for concurrent use. Watch delivers file events on
// a channel; apply any follow-up on the goroutine that owns the engine.
package engine
