package engine

import (
	"context"
	"time"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/cursor"
	"github.com/dshills/textcore/internal/engine/history"
	"github.com/dshills/textcore/internal/logging"
	"github.com/dshills/textcore/internal/renderer/layout"
	"github.com/dshills/textcore/internal/watcher"
)

// Re-export commonly used types for convenience.
type (
	// Position is a (line, rune column) location in the document.
	Position = buffer.Position

	// Range is a half-open range of positions.
	Range = buffer.Range

	// Selection is an anchor and a head position.
	Selection = cursor.Selection

	// LineEnding specifies the line ending style.
	LineEnding = buffer.LineEnding

	// Segment is one wrapped visual row of a logical line.
	Segment = layout.Segment

	// VisualPosition identifies one visual row.
	VisualPosition = layout.VisualPosition

	// OperationInfo describes an undo or redo entry.
	OperationInfo = history.OperationInfo
)

// Re-export constants.
const (
	LineEndingLF   = buffer.LineEndingLF
	LineEndingCRLF = buffer.LineEndingCRLF
	LineEndingCR   = buffer.LineEndingCR
)

// Engine is one editing session: a buffer, its wrap mapper, its undo
// history and a caret.
//
// Every edit runs in the same order: the command reads and mutates the
// buffer, the mapper is invalidated from the first touched line, and the
// command is pushed to history. The engine is not safe for concurrent use.
type Engine struct {
	registry *buffer.Registry
	buf      *buffer.Buffer
	mapper   *layout.Mapper
	history  *history.Manager
	logger   *logging.Logger

	caret  cursor.Cursor
	anchor Position

	// Configuration
	maxHistory      int
	mergeEdits      bool
	wrap            bool
	viewportWidth   float64
	charWidth       float64
	cacheSize       int
	tabWidth        int
	lineEnding      buffer.LineEnding
	forceLineEnding bool
	watchDebounce   time.Duration

	// Initialization
	initContent string
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry:      buffer.NewRegistry(),
		logger:        logging.Nop(),
		maxHistory:    DefaultMaxHistory,
		mergeEdits:    true,
		wrap:          true,
		viewportWidth: DefaultViewportWidth,
		charWidth:     DefaultCharWidth,
		cacheSize:     DefaultCacheSize,
		tabWidth:      DefaultTabWidth,
		lineEnding:    buffer.LineEndingLF,
		watchDebounce: DefaultWatchDebounce,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.history = history.NewManager(
		history.WithMaxHistory(e.maxHistory),
		history.WithMerge(e.mergeEdits),
		history.WithLogger(e.logger),
	)

	buf := buffer.NewBufferFromString(e.initContent, buffer.WithLineEnding(e.lineEnding))
	if !e.forceLineEnding && e.initContent != "" {
		buf.SetLineEnding(buffer.DetectLineEnding(e.initContent))
	}
	e.attach(buf)

	return e
}

// attach makes buf the session buffer: the previous buffer is released,
// a fresh mapper indexes buf, history is cleared and the caret reset.
func (e *Engine) attach(buf *buffer.Buffer) {
	if e.buf != nil {
		e.registry.Release(e.buf.ID())
	}
	e.registry.Register(buf)
	e.buf = buf

	e.mapper = layout.NewMapper(e.registry, buf.ID(),
		layout.WithEnabled(e.wrap),
		layout.WithViewport(e.viewportWidth, e.charWidth),
		layout.WithCacheSize(e.cacheSize),
		layout.WithTabWidth(e.tabWidth),
	)

	e.history.Clear()
	e.caret = cursor.NewCursor(Position{})
	e.anchor = Position{}
}

// ============================================================================
// Loading and Saving
// ============================================================================

// LoadFile replaces the session with the content of path. On failure the
// current buffer, its history and the caret are left untouched.
func (e *Engine) LoadFile(path string) error {
	buf := buffer.NewBuffer()
	if err := buf.LoadFile(path); err != nil {
		e.logger.Error("load %s: %v", path, err)
		return err
	}
	if e.forceLineEnding {
		buf.SetLineEnding(e.lineEnding)
	}
	e.attach(buf)

	e.logger.WithFields(map[string]any{
		"lines":      buf.LineCount(),
		"lineEnding": buf.LineEnding().String(),
		"encoding":   buf.Encoding().String(),
		"bom":        buf.HasBOM(),
	}).Debug("loaded %s", path)
	return nil
}

// LoadText replaces the session with text. The new buffer has no path.
func (e *Engine) LoadText(text string) {
	buf := buffer.NewBufferFromString(text)
	if e.forceLineEnding {
		buf.SetLineEnding(e.lineEnding)
	} else {
		buf.SetLineEnding(buffer.DetectLineEnding(text))
	}
	e.attach(buf)
	e.logger.Debug("loaded %d lines of text", buf.LineCount())
}

// Save writes the buffer to path, or to the path it was loaded from when
// path is empty.
func (e *Engine) Save(path string) error {
	if err := e.buf.Save(path); err != nil {
		e.logger.Error("save %s: %v", path, err)
		return err
	}
	e.logger.WithFields(map[string]any{
		"lines":      e.buf.LineCount(),
		"lineEnding": e.buf.LineEnding().String(),
		"bom":        e.buf.HasBOM(),
	}).Debug("saved %s", e.buf.Path())
	return nil
}

// Path returns the file the buffer was loaded from or saved to.
func (e *Engine) Path() string {
	return e.buf.Path()
}

// Watch reports external changes to the current file until ctx is done.
// The returned channel is closed when watching stops. The engine never
// reloads on its own.
func (e *Engine) Watch(ctx context.Context) (<-chan watcher.Event, error) {
	path := e.buf.Path()
	if path == "" {
		return nil, buffer.ErrNoPath
	}

	w, err := watcher.New(
		watcher.WithDebounce(e.watchDebounce),
		watcher.WithLogger(e.logger),
	)
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Close()
		return nil, err
	}

	logger := e.logger.WithComponent("watch")
	out := make(chan watcher.Event, 16)
	go func() {
		defer close(out)
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events():
				if !ok {
					return
				}
				logger.Debug("%s %s", ev.Op, ev.Path)
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				logger.Warn("watch %s: %v", path, err)
			}
		}
	}()

	return out, nil
}

// ============================================================================
// Editing
// ============================================================================

// apply executes cmd, invalidates the layout from the first line it
// touched, records it and moves the caret to where it leaves off.
func (e *Engine) apply(cmd *history.Command) (Position, error) {
	pos, err := cmd.Execute(e.buf)
	if err != nil {
		return e.caret.Position(), err
	}
	e.mapper.Invalidate(cmd.FirstLine(), -1)
	e.history.Push(cmd)
	e.placeCaret(pos)
	return pos, nil
}

// Insert types text at the caret, replacing the selection if there is
// one. It returns the new caret position.
func (e *Engine) Insert(text string) (Position, error) {
	sel := e.Selection()
	if sel.IsEmpty() {
		if text == "" {
			return e.caret.Position(), nil
		}
		return e.apply(history.NewInsert(sel.Head, text))
	}

	start, end := sel.Start(), sel.End()
	if text == "" {
		return e.apply(history.NewDelete(start, end, ""))
	}
	return e.apply(history.NewBatch("Replace selection",
		history.NewDelete(start, end, ""),
		history.NewInsert(start, text),
	))
}

// InsertAt inserts text at pos and moves the caret past it.
func (e *Engine) InsertAt(pos Position, text string) (Position, error) {
	if text == "" {
		return e.caret.Position(), nil
	}
	return e.apply(history.NewInsert(pos, text))
}

// Delete removes [start, end) and moves the caret to start.
// The endpoints may be given in either order.
func (e *Engine) Delete(start, end Position) (Position, error) {
	r := buffer.NewRange(start, end).Normalize()
	if r.IsEmpty() {
		return e.caret.Position(), nil
	}
	return e.apply(history.NewDelete(r.Start, r.End, ""))
}

// Replace replaces [start, end) with text as one undo step and moves the
// caret past the new text.
func (e *Engine) Replace(start, end Position, text string) (Position, error) {
	r := buffer.NewRange(start, end).Normalize()
	switch {
	case r.IsEmpty():
		return e.InsertAt(r.Start, text)
	case text == "":
		return e.Delete(r.Start, r.End)
	}
	return e.apply(history.NewBatch("Replace",
		history.NewDelete(r.Start, r.End, ""),
		history.NewInsert(r.Start, text),
	))
}

// Backspace deletes the selection, or the rune before the caret. At the
// start of a line it joins the line with the previous one.
func (e *Engine) Backspace() (Position, error) {
	sel := e.Selection()
	if !sel.IsEmpty() {
		return e.Delete(sel.Start(), sel.End())
	}

	pos := e.caret.Position()
	var prev Position
	switch {
	case pos.Col > 0:
		prev = Position{Line: pos.Line, Col: pos.Col - 1}
	case pos.Line > 0:
		prev = Position{Line: pos.Line - 1, Col: e.buf.LineLen(pos.Line - 1)}
	default:
		return pos, nil
	}
	return e.apply(history.NewDelete(prev, pos, ""))
}

// DeleteForward deletes the selection, or the rune after the caret. At
// the end of a line it joins the next line onto it.
func (e *Engine) DeleteForward() (Position, error) {
	sel := e.Selection()
	if !sel.IsEmpty() {
		return e.Delete(sel.Start(), sel.End())
	}

	pos := e.caret.Position()
	var next Position
	switch {
	case pos.Col < e.buf.LineLen(pos.Line):
		next = Position{Line: pos.Line, Col: pos.Col + 1}
	case pos.Line < e.buf.LineCount()-1:
		next = Position{Line: pos.Line + 1}
	default:
		return pos, nil
	}
	return e.apply(history.NewDelete(pos, next, ""))
}

// ============================================================================
// Undo/Redo
// ============================================================================

// Undo reverses the most recent edit and moves the caret to where it
// happened. ok is false when there is nothing to undo. It fails with
// history.ErrBatchOpen while a batch is open.
func (e *Engine) Undo() (Position, bool, error) {
	if e.history.InBatch() {
		return e.caret.Position(), false, history.ErrBatchOpen
	}
	info, ok := e.history.PeekUndo()
	if !ok {
		return e.caret.Position(), false, nil
	}

	pos, ok, err := e.history.Undo(e.buf)
	if err != nil || !ok {
		return e.caret.Position(), ok, err
	}
	e.mapper.Invalidate(info.FirstLine, -1)
	e.placeCaret(pos)
	return pos, true, nil
}

// Redo re-applies the most recently undone edit.
// ok is false when there is nothing to redo. It fails with
// history.ErrBatchOpen while a batch is open.
func (e *Engine) Redo() (Position, bool, error) {
	if e.history.InBatch() {
		return e.caret.Position(), false, history.ErrBatchOpen
	}
	info, ok := e.history.PeekRedo()
	if !ok {
		return e.caret.Position(), false, nil
	}

	pos, ok, err := e.history.Redo(e.buf)
	if err != nil || !ok {
		return e.caret.Position(), ok, err
	}
	e.mapper.Invalidate(info.FirstLine, -1)
	e.placeCaret(pos)
	return pos, true, nil
}

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// BeginBatch starts grouping edits into one undo step.
func (e *Engine) BeginBatch(name string) {
	e.history.BeginBatch(name)
}

// EndBatch closes the innermost batch.
func (e *Engine) EndBatch() {
	e.history.EndBatch()
}

// CancelBatch discards the innermost batch record. Its edits stay applied.
func (e *Engine) CancelBatch() {
	e.history.CancelBatch()
}

// ============================================================================
// Caret and Selection
// ============================================================================

// Cursor returns the caret position.
func (e *Engine) Cursor() Position {
	return e.caret.Position()
}

// SetCursor moves the caret to pos, clamped to the document, and clears
// the selection. The next edit starts a new undo step.
func (e *Engine) SetCursor(pos Position) {
	e.placeCaret(e.buf.ClampPosition(pos))
	e.history.BreakMerge()
}

// Selection returns the selection. It is empty when nothing is selected;
// its head is always the caret.
func (e *Engine) Selection() Selection {
	return cursor.NewSelection(e.anchor, e.caret.Position())
}

// SetSelection sets the selection, clamped to the document. The caret
// moves to its head.
func (e *Engine) SetSelection(sel Selection) {
	sel = sel.Clamp(e.buf)
	e.anchor = sel.Anchor
	e.caret = cursor.NewCursor(sel.Head)
	e.history.BreakMerge()
}

// MoveVisual moves the caret by rows wrapped rows, keeping its visual
// column across short rows. The selection is cleared.
func (e *Engine) MoveVisual(rows int) Position {
	pos, goal := e.mapper.MoveVertical(e.caret.Position(), rows, e.caret.Goal())
	e.caret = e.caret.MoveVertical(pos, goal)
	e.anchor = pos
	e.history.BreakMerge()
	return pos
}

// placeCaret collapses the selection at pos and forgets the goal column.
func (e *Engine) placeCaret(pos Position) {
	e.caret = e.caret.MoveTo(pos)
	e.anchor = pos
}

// ============================================================================
// Layout
// ============================================================================

// SetViewportWidth changes the viewport width and cell width in pixels.
func (e *Engine) SetViewportWidth(width, charWidth float64) {
	e.viewportWidth = width
	e.charWidth = charWidth
	e.mapper.SetViewportWidth(width, charWidth)
}

// SetWrap turns soft wrapping on or off.
func (e *Engine) SetWrap(enabled bool) {
	e.wrap = enabled
	e.mapper.SetEnabled(enabled)
}

// ============================================================================
// Accessors
// ============================================================================

// Buffer returns the session buffer for read queries. Edits must go
// through the engine so that layout and history stay in step.
func (e *Engine) Buffer() *buffer.Buffer {
	return e.buf
}

// Mapper returns the wrap mapper of the session buffer.
func (e *Engine) Mapper() *layout.Mapper {
	return e.mapper
}

// History returns the undo history.
func (e *Engine) History() *history.Manager {
	return e.history
}

// Registry returns the registry holding the session buffer.
func (e *Engine) Registry() *buffer.Registry {
	return e.registry
}

// Text returns the full document joined with "\n".
func (e *Engine) Text() string {
	return e.buf.Text()
}

// LineCount returns the number of lines.
func (e *Engine) LineCount() int {
	return e.buf.LineCount()
}

// LineText returns the text of line.
func (e *Engine) LineText(line int) string {
	return e.buf.LineText(line)
}

// IsModified reports whether the buffer changed since it was loaded or
// saved.
func (e *Engine) IsModified() bool {
	return e.buf.IsModified()
}
