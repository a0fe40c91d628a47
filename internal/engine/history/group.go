package history

// GroupScope provides a convenient way to batch commands using defer.
// Usage:
//
//	func indentLines(m *history.Manager, buf *buffer.Buffer) {
//	    defer m.GroupScope("Indent").End()
//	    // ... multiple edits, each executed and pushed ...
//	}
type GroupScope struct {
	manager *Manager
	active  bool
}

// GroupScope starts a batch and returns a scope that closes it.
func (m *Manager) GroupScope(name string) *GroupScope {
	m.BeginBatch(name)
	return &GroupScope{
		manager: m,
		active:  true,
	}
}

// End ends the batch.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.manager.EndBatch()
		g.active = false
	}
}

// Cancel discards the batch without recording it.
// Edits already applied to the buffer are not reverted.
func (g *GroupScope) Cancel() {
	if g.active {
		g.manager.CancelBatch()
		g.active = false
	}
}

// Transaction runs fn inside a batch. If fn returns an error, the commands
// it pushed are undone in reverse order and the batch is discarded, so the
// editor is back where it started.
func (m *Manager) Transaction(name string, ed Editor, fn func() error) error {
	m.BeginBatch(name)
	frame := m.batches[len(m.batches)-1]

	if err := fn(); err != nil {
		for i := len(frame.cmds) - 1; i >= 0; i-- {
			_, _ = frame.cmds[i].Undo(ed)
		}
		m.CancelBatch()
		return err
	}

	m.EndBatch()
	return nil
}

// ExecuteGrouped executes cmds against ed and records them as one undo
// step under name, even when there is only one. If one fails, those
// already executed are reverted.
func (m *Manager) ExecuteGrouped(name string, ed Editor, cmds ...*Command) (Position, error) {
	batch := NewBatch(name, cmds...)
	pos, err := batch.Execute(ed)
	if err != nil {
		return Position{}, err
	}
	if len(cmds) > 0 {
		m.Push(batch)
	}
	return pos, nil
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	undoDepth int
}

// CreateCheckpoint creates a checkpoint at the current history position.
func (m *Manager) CreateCheckpoint() Checkpoint {
	m.BreakMerge()
	return Checkpoint{undoDepth: len(m.undoStack)}
}

// UndoToCheckpoint undoes all operations since the checkpoint.
func (m *Manager) UndoToCheckpoint(cp Checkpoint, ed Editor) (Position, error) {
	var pos Position
	for m.UndoCount() > cp.undoDepth {
		p, ok, err := m.Undo(ed)
		if err != nil {
			return Position{}, err
		}
		if !ok {
			break
		}
		pos = p
	}
	return pos, nil
}
