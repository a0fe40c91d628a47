package layout

import (
	"math"
	"sort"

	"github.com/dshills/textcore/internal/engine/buffer"
)

// Default viewport metrics, in pixels.
const (
	DefaultViewportWidth = 800
	DefaultCharWidth     = 10
)

// VisualPosition identifies one visual row.
type VisualPosition struct {
	Line    int // logical line
	Segment int // segment index within the line
	Start   int // first rune column of the segment
	End     int // rune column after the segment
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithCacheSize sets how many lines keep their segments cached.
func WithCacheSize(n int) Option {
	return func(m *Mapper) {
		m.cache = NewLineCache(n)
	}
}

// WithTabWidth sets the tab stop interval in cells.
func WithTabWidth(n int) Option {
	return func(m *Mapper) {
		m.tabs = NewTabExpander(n)
	}
}

// WithEnabled turns wrapping on or off.
func WithEnabled(enabled bool) Option {
	return func(m *Mapper) {
		m.enabled = enabled
	}
}

// WithViewport sets the viewport width and the width of one cell, both in
// pixels.
func WithViewport(width, charWidth float64) Option {
	return func(m *Mapper) {
		m.SetViewportWidth(width, charWidth)
	}
}

// Mapper maps logical lines of one buffer to visual rows.
type Mapper struct {
	resolver buffer.Resolver
	id       buffer.ID

	enabled       bool
	viewportWidth float64
	charWidth     float64
	columns       int
	tabs          *TabExpander

	// generation changes whenever wrapping parameters change; the cache
	// is dropped lazily when it no longer matches.
	generation      uint64
	cacheGeneration uint64
	cache           *LineCache

	// rows[i] is the number of visual rows before logical line i.
	// Only the first len(rows) entries are valid.
	rows []int
}

// NewMapper creates a mapper for the buffer identified by id.
func NewMapper(resolver buffer.Resolver, id buffer.ID, opts ...Option) *Mapper {
	m := &Mapper{
		resolver:      resolver,
		id:            id,
		enabled:       true,
		viewportWidth: DefaultViewportWidth,
		charWidth:     DefaultCharWidth,
		columns:       DefaultViewportWidth / DefaultCharWidth,
		tabs:          DefaultTabExpander(),
		cache:         NewLineCache(DefaultCacheSize),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BufferID returns the handle of the mapped buffer.
func (m *Mapper) BufferID() buffer.ID {
	return m.id
}

// SetViewportWidth records the viewport width and cell width in pixels.
// Cached segments are dropped on the next query only if the resulting
// column count changed.
func (m *Mapper) SetViewportWidth(width, charWidth float64) {
	if charWidth <= 0 || math.IsNaN(charWidth) {
		charWidth = DefaultCharWidth
	}
	if width < 0 || math.IsNaN(width) {
		width = 0
	}
	m.viewportWidth = width
	m.charWidth = charWidth

	columns := int(math.Floor(width / charWidth))
	if columns < 1 {
		columns = 1
	}
	if columns != m.columns {
		m.columns = columns
		m.generation++
	}
}

// ViewportWidth returns the viewport width in pixels.
func (m *Mapper) ViewportWidth() float64 {
	return m.viewportWidth
}

// CharWidth returns the cell width in pixels.
func (m *Mapper) CharWidth() float64 {
	return m.charWidth
}

// Columns returns the wrap limit in cells.
func (m *Mapper) Columns() int {
	return m.columns
}

// SetEnabled turns wrapping on or off.
func (m *Mapper) SetEnabled(enabled bool) {
	if enabled == m.enabled {
		return
	}
	m.enabled = enabled
	m.generation++
}

// Enabled reports whether wrapping is on.
func (m *Mapper) Enabled() bool {
	return m.enabled
}

// Tabs returns the tab expander used for measuring.
func (m *Mapper) Tabs() *TabExpander {
	return m.tabs
}

// Invalidate drops cached segments for lines [from, to].
// A negative to means through the end of the document, which is what a
// caller wants after an edit that may add or remove lines.
func (m *Mapper) Invalidate(from, to int) {
	if from < 0 {
		from = 0
	}
	if to >= 0 && to < from {
		return
	}
	if to < 0 {
		m.cache.InvalidateFrom(from)
	} else {
		m.cache.InvalidateRange(from, to)
	}
	if len(m.rows) > from+1 {
		m.rows = m.rows[:from+1]
	}
}

// InvalidateAll drops every cached segment.
func (m *Mapper) InvalidateAll() {
	m.cache.InvalidateAll()
	m.rows = m.rows[:0]
}

// Stats returns segment cache statistics.
func (m *Mapper) Stats() CacheStats {
	return m.cache.Stats()
}

// ResetStats resets the segment cache counters.
func (m *Mapper) ResetStats() {
	m.cache.ResetStats()
}

// Segments returns the segments of a logical line. Lines outside the
// document, or any line of a released buffer, have no segments.
func (m *Mapper) Segments(line int) []Segment {
	buf := m.buffer()
	if buf == nil || line < 0 || line >= buf.LineCount() {
		return nil
	}
	segs := m.segments(buf, line)
	out := make([]Segment, len(segs))
	copy(out, segs)
	return out
}

// VisualLineCount returns the number of visual rows of a logical line.
func (m *Mapper) VisualLineCount(line int) int {
	buf := m.buffer()
	if buf == nil || line < 0 || line >= buf.LineCount() {
		return 0
	}
	return len(m.segments(buf, line))
}

// TotalVisualLines returns the number of visual rows in the document.
func (m *Mapper) TotalVisualLines() int {
	buf := m.buffer()
	if buf == nil {
		return 0
	}
	if !m.enabled {
		return buf.LineCount()
	}
	return m.rowsBefore(buf, buf.LineCount())
}

// SegmentText returns the text of segment seg of line.
func (m *Mapper) SegmentText(line, seg int) string {
	buf := m.buffer()
	if buf == nil || line < 0 || line >= buf.LineCount() {
		return ""
	}
	segs := m.segments(buf, line)
	if seg < 0 || seg >= len(segs) {
		return ""
	}
	runes := []rune(buf.LineText(line))
	return string(runes[segs[seg].Start:segs[seg].End])
}

// LogicalToVisual returns the visual row that shows (line, col).
// Lines outside the document map to row 0.
func (m *Mapper) LogicalToVisual(line, col int) int {
	buf := m.buffer()
	if buf == nil || line < 0 || line >= buf.LineCount() {
		return 0
	}
	seg, _ := m.columnToVisualOffset(buf, line, col)
	if !m.enabled {
		return line
	}
	return m.rowsBefore(buf, line) + seg
}

// VisualToLogical returns the line and segment shown on visual row row.
// Rows outside the document clamp to the first or last row and report
// false.
func (m *Mapper) VisualToLogical(row int) (VisualPosition, bool) {
	buf := m.buffer()
	if buf == nil {
		return VisualPosition{}, false
	}

	ok := true
	total := m.TotalVisualLines()
	if row < 0 {
		row, ok = 0, false
	} else if row >= total {
		row, ok = total-1, false
	}

	var line, seg int
	if !m.enabled {
		line = row
	} else {
		lineCount := buf.LineCount()
		rows := m.rows
		line = sort.Search(lineCount, func(i int) bool {
			return rows[i+1] > row
		})
		seg = row - rows[line]
	}

	segs := m.segments(buf, line)
	return VisualPosition{
		Line:    line,
		Segment: seg,
		Start:   segs[seg].Start,
		End:     segs[seg].End,
	}, ok
}

// ColumnToVisualOffset returns the segment index that shows col and the
// offset of col within that segment. A column on the whitespace consumed
// by a soft break maps to the end of the preceding segment. A column at
// a hard break maps to the start of the following segment.
func (m *Mapper) ColumnToVisualOffset(line, col int) (segment, local int) {
	buf := m.buffer()
	if buf == nil || line < 0 || line >= buf.LineCount() {
		return 0, 0
	}
	return m.columnToVisualOffset(buf, line, col)
}

func (m *Mapper) columnToVisualOffset(buf *buffer.Buffer, line, col int) (int, int) {
	if col < 0 {
		col = 0
	}
	segs := m.segments(buf, line)
	last := len(segs) - 1
	for k, s := range segs {
		if k == last {
			if col > s.End {
				col = s.End
			}
			return k, col - s.Start
		}
		if col < s.End {
			return k, col - s.Start
		}
		if col == s.End && segs[k+1].Start > col {
			return k, s.Len()
		}
	}
	return 0, 0
}

// MoveVertical moves pos by rows visual rows, keeping goalCol as the
// preferred cell offset within a row. A negative goalCol is taken from
// pos. It returns the new position and the goal column to carry into the
// next vertical move.
func (m *Mapper) MoveVertical(pos buffer.Position, rows, goalCol int) (buffer.Position, int) {
	buf := m.buffer()
	if buf == nil {
		return pos, goalCol
	}
	pos = buf.ClampPosition(pos)

	if goalCol < 0 {
		seg, local := m.columnToVisualOffset(buf, pos.Line, pos.Col)
		goalCol = m.tabs.CellColumn(m.rowText(buf, pos.Line, seg), local)
	}

	row := m.LogicalToVisual(pos.Line, pos.Col) + rows
	vp, _ := m.VisualToLogical(row)

	segs := m.segments(buf, vp.Line)
	text := m.rowText(buf, vp.Line, vp.Segment)

	// A column equal to End belongs to this row only on the last row of
	// the line or before a soft break.
	allowEnd := vp.Segment == len(segs)-1 || segs[vp.Segment+1].Start > vp.End

	col := vp.Start
	cells := 0
	cls := splitClusters(text)
	for i, cl := range cls {
		w := m.tabs.clusterWidth(cl, cells)
		if cells+w > goalCol {
			break
		}
		cells += w
		if i == len(cls)-1 && !allowEnd {
			break
		}
		col = vp.Start + cl.end
	}

	return buffer.Position{Line: vp.Line, Col: col}, goalCol
}

func (m *Mapper) rowText(buf *buffer.Buffer, line, seg int) string {
	segs := m.segments(buf, line)
	runes := []rune(buf.LineText(line))
	return string(runes[segs[seg].Start:segs[seg].End])
}

// buffer resolves the mapped buffer, or nil once it has been released.
func (m *Mapper) buffer() *buffer.Buffer {
	if m.resolver == nil {
		return nil
	}
	buf, ok := m.resolver.Lookup(m.id)
	if !ok {
		return nil
	}
	return buf
}

// sync drops cached state computed under older wrapping parameters.
func (m *Mapper) sync() {
	if m.cacheGeneration != m.generation {
		m.cache.InvalidateAll()
		m.rows = m.rows[:0]
		m.cacheGeneration = m.generation
	}
}

// segments returns the cached segments of a valid line, computing them
// on a miss. The result must not be modified.
func (m *Mapper) segments(buf *buffer.Buffer, line int) []Segment {
	m.sync()
	if segs, ok := m.cache.Get(line); ok {
		return segs
	}

	text := buf.LineText(line)
	var segs []Segment
	if m.enabled {
		segs = Wrap(text, m.columns, m.tabs)
	} else {
		segs = []Segment{{Start: 0, End: runeCount(text)}}
	}
	m.cache.Put(line, segs)
	return segs
}

// rowsBefore returns the number of visual rows before line, extending
// the prefix table as needed.
func (m *Mapper) rowsBefore(buf *buffer.Buffer, line int) int {
	m.sync()
	lineCount := buf.LineCount()
	if len(m.rows) > lineCount+1 {
		m.rows = m.rows[:lineCount+1]
	}
	if len(m.rows) == 0 {
		m.rows = append(m.rows, 0)
	}
	for len(m.rows) <= line {
		i := len(m.rows) - 1
		m.rows = append(m.rows, m.rows[i]+len(m.segments(buf, i)))
	}
	return m.rows[line]
}
