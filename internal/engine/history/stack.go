package history

import (
	"time"

	"github.com/dshills/textcore/internal/logging"
)

// DefaultMaxHistory is the undo depth used when none is configured.
const DefaultMaxHistory = 10000

// OperationInfo provides read-only info about a history entry.
// Used for displaying undo/redo history and scrolling to the edit.
type OperationInfo struct {
	Description string    // Human-readable description
	Kind        Kind      // Command variant
	Timestamp   time.Time // When the entry was pushed
	Position    Position  // Where the edit happened
	FirstLine   int       // Smallest line the edit touches
}

// undoEntry wraps a command with metadata.
type undoEntry struct {
	command   *Command
	timestamp time.Time
}

// batchFrame collects commands pushed between BeginBatch and EndBatch.
type batchFrame struct {
	name string
	cmds []*Command
}

// Manager keeps the undo and redo stacks for one buffer.
//
// Commands are executed by the caller and then pushed; the manager never
// executes on Push. Undo and Redo apply the stored command to the Editor
// they are given and report where the caret belongs.
type Manager struct {
	undoStack []*undoEntry
	redoStack []*undoEntry
	batches   []*batchFrame

	maxHistory   int
	mergeEnabled bool
	mergeBroken  bool

	logger *logging.Logger
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxHistory sets the maximum number of undo entries.
func WithMaxHistory(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxHistory = n
		}
	}
}

// WithLogger sets the logger used for eviction and failure messages.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l.WithComponent("history")
		}
	}
}

// WithMerge sets whether consecutive typing steps are merged.
func WithMerge(enabled bool) Option {
	return func(m *Manager) {
		m.mergeEnabled = enabled
	}
}

// NewManager creates a history manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		maxHistory:   DefaultMaxHistory,
		mergeEnabled: true,
		logger:       logging.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Push records an already executed command.
// Inside a batch the command joins the innermost batch. Otherwise the redo
// stack is cleared, the command is merged into the previous entry when
// possible, and the oldest entries beyond the limit are evicted.
func (m *Manager) Push(cmd *Command) {
	if cmd == nil {
		return
	}

	if n := len(m.batches); n > 0 {
		frame := m.batches[n-1]
		frame.cmds = append(frame.cmds, cmd)
		return
	}

	m.redoStack = nil

	if m.mergeEnabled && !m.mergeBroken && len(m.undoStack) > 0 {
		top := m.undoStack[len(m.undoStack)-1]
		if merged := top.command.Merge(cmd); merged != nil {
			top.command = merged
			top.timestamp = m.now()
			return
		}
	}
	m.mergeBroken = false

	m.pushEntry(cmd)
}

// pushEntry appends to the undo stack and enforces the limit.
func (m *Manager) pushEntry(cmd *Command) {
	m.undoStack = append(m.undoStack, &undoEntry{
		command:   cmd,
		timestamp: m.now(),
	})
	m.trim()
}

// trim evicts the oldest entries beyond maxHistory.
func (m *Manager) trim() {
	excess := len(m.undoStack) - m.maxHistory
	if excess <= 0 {
		return
	}
	for i := 0; i < excess; i++ {
		m.undoStack[i] = nil
	}
	m.undoStack = m.undoStack[excess:]
	m.logger.Debug("evicted %d oldest undo entries (limit %d)", excess, m.maxHistory)
}

// Undo reverses the most recent command.
// ok is false, with no error, when there is nothing to undo. If the command
// fails it stays on the undo stack and the error is returned. Undo refuses
// with ErrBatchOpen while a batch is open.
func (m *Manager) Undo(ed Editor) (pos Position, ok bool, err error) {
	if m.InBatch() {
		return Position{}, false, ErrBatchOpen
	}
	if len(m.undoStack) == 0 {
		return Position{}, false, nil
	}

	entry := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]

	pos, err = entry.command.Undo(ed)
	if err != nil {
		// Restore entry on failure
		m.undoStack = append(m.undoStack, entry)
		m.logger.Error("undo %q: %v", entry.command.Description(), err)
		return Position{}, false, err
	}

	m.redoStack = append(m.redoStack, entry)
	m.mergeBroken = true
	return pos, true, nil
}

// Redo re-applies the most recently undone command.
// ok is false, with no error, when there is nothing to redo. Like Undo it
// refuses with ErrBatchOpen while a batch is open.
func (m *Manager) Redo(ed Editor) (pos Position, ok bool, err error) {
	if m.InBatch() {
		return Position{}, false, ErrBatchOpen
	}
	if len(m.redoStack) == 0 {
		return Position{}, false, nil
	}

	entry := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]

	pos, err = entry.command.Redo(ed)
	if err != nil {
		// Restore entry on failure
		m.redoStack = append(m.redoStack, entry)
		m.logger.Error("redo %q: %v", entry.command.Description(), err)
		return Position{}, false, err
	}

	m.undoStack = append(m.undoStack, entry)
	m.mergeBroken = true
	return pos, true, nil
}

// BeginBatch starts a batch. Commands pushed until the matching EndBatch
// undo and redo as one step. Batches nest.
func (m *Manager) BeginBatch(name string) {
	m.batches = append(m.batches, &batchFrame{name: name})
}

// EndBatch closes the innermost batch. A nested batch becomes one child of
// its parent; an outermost batch is pushed as a single entry. An empty
// batch is dropped. EndBatch without BeginBatch does nothing.
func (m *Manager) EndBatch() {
	n := len(m.batches)
	if n == 0 {
		return
	}
	frame := m.batches[n-1]
	m.batches = m.batches[:n-1]

	if len(frame.cmds) == 0 {
		return
	}
	batch := NewBatch(frame.name, frame.cmds...)

	if n > 1 {
		parent := m.batches[n-2]
		parent.cmds = append(parent.cmds, batch)
		return
	}

	m.redoStack = nil
	m.mergeBroken = false
	m.pushEntry(batch)
}

// CancelBatch discards the innermost batch without recording it.
// Edits already applied to the buffer are not reverted.
func (m *Manager) CancelBatch() {
	if n := len(m.batches); n > 0 {
		m.batches = m.batches[:n-1]
	}
}

// InBatch reports whether a batch is open.
func (m *Manager) InBatch() bool {
	return len(m.batches) > 0
}

// BatchDepth returns the number of open batches.
func (m *Manager) BatchDepth() int {
	return len(m.batches)
}

// Clear removes all undo/redo history and open batches.
func (m *Manager) Clear() {
	m.undoStack = nil
	m.redoStack = nil
	m.batches = nil
	m.mergeBroken = false
}

// SetMergeEnabled turns merging of typing steps on or off.
func (m *Manager) SetMergeEnabled(enabled bool) {
	m.mergeEnabled = enabled
}

// MergeEnabled reports whether merging is on.
func (m *Manager) MergeEnabled() bool {
	return m.mergeEnabled
}

// BreakMerge keeps the next pushed command from merging into the current
// top entry. Callers use it when the caret moves.
func (m *Manager) BreakMerge() {
	m.mergeBroken = true
}

// CanUndo returns true if undo is available.
func (m *Manager) CanUndo() bool {
	return len(m.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (m *Manager) CanRedo() bool {
	return len(m.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (m *Manager) UndoCount() int {
	return len(m.undoStack)
}

// RedoCount returns the number of redo operations available.
func (m *Manager) RedoCount() int {
	return len(m.redoStack)
}

// UndoInfo returns info about the undo stack, oldest first.
func (m *Manager) UndoInfo() []OperationInfo {
	return stackInfo(m.undoStack)
}

// RedoInfo returns info about the redo stack, oldest first.
func (m *Manager) RedoInfo() []OperationInfo {
	return stackInfo(m.redoStack)
}

func stackInfo(stack []*undoEntry) []OperationInfo {
	result := make([]OperationInfo, len(stack))
	for i, entry := range stack {
		result[i] = entry.command.Info(entry.timestamp)
	}
	return result
}

// PeekUndo returns info about the next undo operation without removing it.
func (m *Manager) PeekUndo() (OperationInfo, bool) {
	if len(m.undoStack) == 0 {
		return OperationInfo{}, false
	}
	entry := m.undoStack[len(m.undoStack)-1]
	return entry.command.Info(entry.timestamp), true
}

// PeekRedo returns info about the next redo operation without removing it.
func (m *Manager) PeekRedo() (OperationInfo, bool) {
	if len(m.redoStack) == 0 {
		return OperationInfo{}, false
	}
	entry := m.redoStack[len(m.redoStack)-1]
	return entry.command.Info(entry.timestamp), true
}

// SetMaxHistory changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (m *Manager) SetMaxHistory(n int) {
	if n <= 0 {
		n = DefaultMaxHistory
	}
	m.maxHistory = n
	m.trim()
}

// MaxHistory returns the maximum number of undo entries.
func (m *Manager) MaxHistory() int {
	return m.maxHistory
}
