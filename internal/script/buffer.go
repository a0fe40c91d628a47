package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/textcore/internal/engine"
	"github.com/dshills/textcore/internal/engine/cursor"
)

// bufferModule implements the buf table.
type bufferModule struct {
	e *engine.Engine
}

func registerBuffer(L *lua.LState, e *engine.Engine) {
	m := &bufferModule{e: e}
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"text":           m.text,
		"text_range":     m.textRange,
		"line":           m.line,
		"line_count":     m.lineCount,
		"line_len":       m.lineLen,
		"insert":         m.insert,
		"delete":         m.delete,
		"replace":        m.replace,
		"type":           m.typeText,
		"backspace":      m.backspace,
		"delete_forward": m.deleteForward,
		"undo":           m.undo,
		"redo":           m.redo,
		"can_undo":       m.canUndo,
		"can_redo":       m.canRedo,
		"batch":          m.batch,
		"cursor":         m.cursor,
		"set_cursor":     m.setCursor,
		"select":         m.selectRange,
		"selection":      m.selection,
		"path":           m.path,
		"modified":       m.modified,
	})
	L.SetGlobal("buf", mod)
}

func checkPosition(L *lua.LState, n int) engine.Position {
	return engine.Position{Line: L.CheckInt(n), Col: L.CheckInt(n + 1)}
}

func pushPosition(L *lua.LState, pos engine.Position) int {
	L.Push(lua.LNumber(pos.Line))
	L.Push(lua.LNumber(pos.Col))
	return 2
}

// text() -> string
func (m *bufferModule) text(L *lua.LState) int {
	L.Push(lua.LString(m.e.Text()))
	return 1
}

// text_range(l1, c1, l2, c2) -> string
func (m *bufferModule) textRange(L *lua.LState) int {
	start, end := checkPosition(L, 1), checkPosition(L, 3)
	L.Push(lua.LString(m.e.Buffer().TextRange(start, end)))
	return 1
}

// line(n) -> string
func (m *bufferModule) line(L *lua.LState) int {
	n := L.CheckInt(1)
	if n < 0 || n >= m.e.LineCount() {
		L.ArgError(1, "line out of range")
		return 0
	}
	L.Push(lua.LString(m.e.LineText(n)))
	return 1
}

// line_count() -> number
func (m *bufferModule) lineCount(L *lua.LState) int {
	L.Push(lua.LNumber(m.e.LineCount()))
	return 1
}

// line_len(n) -> number of runes
func (m *bufferModule) lineLen(L *lua.LState) int {
	L.Push(lua.LNumber(m.e.Buffer().LineLen(L.CheckInt(1))))
	return 1
}

// insert(line, col, text) -> line, col
func (m *bufferModule) insert(L *lua.LState) int {
	pos := checkPosition(L, 1)
	text := L.CheckString(3)

	end, err := m.e.InsertAt(pos, text)
	if err != nil {
		L.RaiseError("insert: %v", err)
		return 0
	}
	return pushPosition(L, end)
}

// delete(l1, c1, l2, c2) -> line, col
func (m *bufferModule) delete(L *lua.LState) int {
	start, end := checkPosition(L, 1), checkPosition(L, 3)

	pos, err := m.e.Delete(start, end)
	if err != nil {
		L.RaiseError("delete: %v", err)
		return 0
	}
	return pushPosition(L, pos)
}

// replace(l1, c1, l2, c2, text) -> line, col
func (m *bufferModule) replace(L *lua.LState) int {
	start, end := checkPosition(L, 1), checkPosition(L, 3)
	text := L.CheckString(5)

	pos, err := m.e.Replace(start, end, text)
	if err != nil {
		L.RaiseError("replace: %v", err)
		return 0
	}
	return pushPosition(L, pos)
}

// type(text) -> line, col
// Types text at the caret one rune at a time, so it merges into one undo
// step the way interactive typing does.
func (m *bufferModule) typeText(L *lua.LState) int {
	text := L.CheckString(1)
	pos := m.e.Cursor()
	for _, r := range text {
		var err error
		pos, err = m.e.Insert(string(r))
		if err != nil {
			L.RaiseError("type: %v", err)
			return 0
		}
	}
	return pushPosition(L, pos)
}

// backspace() -> line, col
func (m *bufferModule) backspace(L *lua.LState) int {
	pos, err := m.e.Backspace()
	if err != nil {
		L.RaiseError("backspace: %v", err)
		return 0
	}
	return pushPosition(L, pos)
}

// delete_forward() -> line, col
func (m *bufferModule) deleteForward(L *lua.LState) int {
	pos, err := m.e.DeleteForward()
	if err != nil {
		L.RaiseError("delete_forward: %v", err)
		return 0
	}
	return pushPosition(L, pos)
}

// undo() -> bool
func (m *bufferModule) undo(L *lua.LState) int {
	_, ok, err := m.e.Undo()
	if err != nil {
		L.RaiseError("undo: %v", err)
		return 0
	}
	L.Push(lua.LBool(ok))
	return 1
}

// redo() -> bool
func (m *bufferModule) redo(L *lua.LState) int {
	_, ok, err := m.e.Redo()
	if err != nil {
		L.RaiseError("redo: %v", err)
		return 0
	}
	L.Push(lua.LBool(ok))
	return 1
}

// can_undo() -> bool
func (m *bufferModule) canUndo(L *lua.LState) int {
	L.Push(lua.LBool(m.e.CanUndo()))
	return 1
}

// can_redo() -> bool
func (m *bufferModule) canRedo(L *lua.LState) int {
	L.Push(lua.LBool(m.e.CanRedo()))
	return 1
}

// batch(name, fn)
// Runs fn with every edit it makes grouped into one undo step. Edits made
// before an error stay applied and stay undoable as one step.
func (m *bufferModule) batch(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)

	m.e.BeginBatch(name)
	L.Push(fn)
	err := L.PCall(0, 0, nil)
	m.e.EndBatch()

	if err != nil {
		L.RaiseError("batch %q: %v", name, err)
	}
	return 0
}

// cursor() -> line, col
func (m *bufferModule) cursor(L *lua.LState) int {
	return pushPosition(L, m.e.Cursor())
}

// set_cursor(line, col) -> line, col
func (m *bufferModule) setCursor(L *lua.LState) int {
	m.e.SetCursor(checkPosition(L, 1))
	return pushPosition(L, m.e.Cursor())
}

// select(anchor_line, anchor_col, head_line, head_col)
func (m *bufferModule) selectRange(L *lua.LState) int {
	m.e.SetSelection(cursor.NewSelection(checkPosition(L, 1), checkPosition(L, 3)))
	return 0
}

// selection() -> l1, c1, l2, c2 (start before end)
func (m *bufferModule) selection(L *lua.LState) int {
	sel := m.e.Selection()
	pushPosition(L, sel.Start())
	return pushPosition(L, sel.End()) + 2
}

// path() -> string
func (m *bufferModule) path(L *lua.LState) int {
	L.Push(lua.LString(m.e.Path()))
	return 1
}

// modified() -> bool
func (m *bufferModule) modified(L *lua.LState) int {
	L.Push(lua.LBool(m.e.IsModified()))
	return 1
}
