package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/textcore/internal/engine"
)

// wrapModule implements the wrap table.
type wrapModule struct {
	e *engine.Engine
}

func registerWrap(L *lua.LState, e *engine.Engine) {
	m := &wrapModule{e: e}
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"rows":        m.rows,
		"count":       m.count,
		"segments":    m.segments,
		"text":        m.text,
		"to_visual":   m.toVisual,
		"to_logical":  m.toLogical,
		"offset":      m.offset,
		"move":        m.move,
		"columns":     m.columns,
		"set_width":   m.setWidth,
		"set_enabled": m.setEnabled,
	})
	L.SetGlobal("wrap", mod)
}

// rows() -> total visual rows
func (m *wrapModule) rows(L *lua.LState) int {
	L.Push(lua.LNumber(m.e.Mapper().TotalVisualLines()))
	return 1
}

// count(line) -> visual rows of line
func (m *wrapModule) count(L *lua.LState) int {
	L.Push(lua.LNumber(m.e.Mapper().VisualLineCount(L.CheckInt(1))))
	return 1
}

// segments(line) -> { {start=, stop=}, ... }
func (m *wrapModule) segments(L *lua.LState) int {
	segs := m.e.Mapper().Segments(L.CheckInt(1))
	tbl := L.CreateTable(len(segs), 0)
	for _, seg := range segs {
		t := L.CreateTable(0, 2)
		t.RawSetString("start", lua.LNumber(seg.Start))
		t.RawSetString("stop", lua.LNumber(seg.End))
		tbl.Append(t)
	}
	L.Push(tbl)
	return 1
}

// text(line, seg) -> string
func (m *wrapModule) text(L *lua.LState) int {
	L.Push(lua.LString(m.e.Mapper().SegmentText(L.CheckInt(1), L.CheckInt(2))))
	return 1
}

// to_visual(line, col) -> row
func (m *wrapModule) toVisual(L *lua.LState) int {
	L.Push(lua.LNumber(m.e.Mapper().LogicalToVisual(L.CheckInt(1), L.CheckInt(2))))
	return 1
}

// to_logical(row) -> line, seg, ok
func (m *wrapModule) toLogical(L *lua.LState) int {
	vp, ok := m.e.Mapper().VisualToLogical(L.CheckInt(1))
	L.Push(lua.LNumber(vp.Line))
	L.Push(lua.LNumber(vp.Segment))
	L.Push(lua.LBool(ok))
	return 3
}

// offset(line, col) -> seg, local col
func (m *wrapModule) offset(L *lua.LState) int {
	seg, local := m.e.Mapper().ColumnToVisualOffset(L.CheckInt(1), L.CheckInt(2))
	L.Push(lua.LNumber(seg))
	L.Push(lua.LNumber(local))
	return 2
}

// move(rows) -> line, col
func (m *wrapModule) move(L *lua.LState) int {
	return pushPosition(L, m.e.MoveVisual(L.CheckInt(1)))
}

// columns() -> wrap limit in cells
func (m *wrapModule) columns(L *lua.LState) int {
	L.Push(lua.LNumber(m.e.Mapper().Columns()))
	return 1
}

// set_width(pixels, char_pixels)
func (m *wrapModule) setWidth(L *lua.LState) int {
	width := float64(L.CheckNumber(1))
	charWidth := float64(L.OptNumber(2, lua.LNumber(m.e.Mapper().CharWidth())))
	if charWidth <= 0 {
		L.ArgError(2, "char width must be positive")
		return 0
	}
	m.e.SetViewportWidth(width, charWidth)
	return 0
}

// set_enabled(bool)
func (m *wrapModule) setEnabled(L *lua.LState) int {
	m.e.SetWrap(L.CheckBool(1))
	return 0
}
