package layout

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/textcore/internal/engine/buffer"
)

func newTestMapper(text string, opts ...Option) (*Mapper, *buffer.Buffer, *buffer.Registry) {
	reg := buffer.NewRegistry()
	buf := buffer.NewBufferFromString(text)
	id := reg.Register(buf)
	return NewMapper(reg, id, opts...), buf, reg
}

func pos(line, col int) buffer.Position {
	return buffer.Position{Line: line, Col: col}
}

func TestMapperSegments(t *testing.T) {
	m, _, _ := newTestMapper("hello world\nabc\n", WithViewport(50, 10))

	assert.Equal(t, 5, m.Columns())
	assert.Equal(t, []Segment{{0, 5}, {6, 11}}, m.Segments(0))
	assert.Equal(t, []Segment{{0, 3}}, m.Segments(1))
	assert.Equal(t, []Segment{{0, 0}}, m.Segments(2))
	assert.Nil(t, m.Segments(3))
	assert.Nil(t, m.Segments(-1))

	assert.Equal(t, 2, m.VisualLineCount(0))
	assert.Equal(t, 0, m.VisualLineCount(7))
	assert.Equal(t, 4, m.TotalVisualLines())
	assert.Equal(t, "world", m.SegmentText(0, 1))
	assert.Equal(t, "", m.SegmentText(0, 2))
}

func TestMapperSegmentsIdempotent(t *testing.T) {
	m, _, _ := newTestMapper("the quick brown fox", WithViewport(60, 10))

	first := m.Segments(0)
	second := m.Segments(0)
	assert.Equal(t, first, second)

	// The returned slice is a copy.
	first[0].End = 99
	assert.Equal(t, second, m.Segments(0))

	stats := m.Stats()
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(2), stats.Hits)

	m.ResetStats()
	assert.Zero(t, m.Stats().Hits)
}

func TestMapperLogicalToVisual(t *testing.T) {
	m, _, _ := newTestMapper("hello world\nabc\n", WithViewport(50, 10))

	tests := []struct {
		line, col int
		want      int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{0, 6, 1},
		{0, 11, 1},
		{1, 2, 2},
		{2, 0, 3},
		{9, 0, 0},
		{-1, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.LogicalToVisual(tt.line, tt.col), "(%d,%d)", tt.line, tt.col)
	}
}

func TestMapperVisualToLogical(t *testing.T) {
	m, _, _ := newTestMapper("hello world\nabc\n", WithViewport(50, 10))

	tests := []struct {
		name   string
		row    int
		want   VisualPosition
		wantOK bool
	}{
		{"first row", 0, VisualPosition{Line: 0, Segment: 0, Start: 0, End: 5}, true},
		{"wrapped row", 1, VisualPosition{Line: 0, Segment: 1, Start: 6, End: 11}, true},
		{"second line", 2, VisualPosition{Line: 1, Segment: 0, Start: 0, End: 3}, true},
		{"empty last line", 3, VisualPosition{Line: 2, Segment: 0, Start: 0, End: 0}, true},
		{"past the end clamps", 10, VisualPosition{Line: 2, Segment: 0, Start: 0, End: 0}, false},
		{"negative clamps", -1, VisualPosition{Line: 0, Segment: 0, Start: 0, End: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.VisualToLogical(tt.row)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapperVisualRoundTrip(t *testing.T) {
	m, buf, _ := newTestMapper("one two three four five\n\nsix seven eight", WithViewport(70, 10))

	for line := 0; line < buf.LineCount(); line++ {
		for col := 0; col <= buf.LineLen(line); col++ {
			row := m.LogicalToVisual(line, col)
			vp, ok := m.VisualToLogical(row)
			require.True(t, ok)
			assert.Equal(t, line, vp.Line)

			seg, _ := m.ColumnToVisualOffset(line, col)
			assert.Equal(t, seg, vp.Segment)
		}
	}
}

func TestMapperColumnToVisualOffset(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		col       int
		wantSeg   int
		wantLocal int
	}{
		{"inside first segment", "hello world", 3, 0, 3},
		{"consumed space", "hello world", 5, 0, 5},
		{"start of second", "hello world", 6, 1, 0},
		{"line end", "hello world", 11, 1, 5},
		{"past end", "hello world", 40, 1, 5},
		{"negative", "hello world", -2, 0, 0},
		{"hard break boundary", "abcdefgh", 5, 1, 0},
		{"inside hard segment", "abcdefgh", 7, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestMapper(tt.text, WithViewport(50, 10))
			seg, local := m.ColumnToVisualOffset(0, tt.col)
			assert.Equal(t, tt.wantSeg, seg)
			assert.Equal(t, tt.wantLocal, local)
		})
	}

	m, _, _ := newTestMapper("abc")
	seg, local := m.ColumnToVisualOffset(5, 1)
	assert.Zero(t, seg)
	assert.Zero(t, local)
}

func TestMapperDisabled(t *testing.T) {
	m, _, _ := newTestMapper("hello world\nabc\n", WithViewport(50, 10), WithEnabled(false))

	assert.False(t, m.Enabled())
	assert.Equal(t, []Segment{{0, 11}}, m.Segments(0))
	assert.Equal(t, 3, m.TotalVisualLines())
	assert.Equal(t, 1, m.LogicalToVisual(1, 2))

	vp, ok := m.VisualToLogical(2)
	require.True(t, ok)
	assert.Equal(t, VisualPosition{Line: 2}, vp)

	m.SetEnabled(true)
	assert.Equal(t, []Segment{{0, 5}, {6, 11}}, m.Segments(0))
	assert.Equal(t, 4, m.TotalVisualLines())
}

func TestMapperViewportWidth(t *testing.T) {
	m, _, _ := newTestMapper("hello world", WithViewport(50, 10))
	m.Segments(0)
	require.Equal(t, 1, m.Stats().Size)

	// Same column count keeps the cache.
	m.SetViewportWidth(59, 10)
	m.Segments(0)
	assert.Equal(t, uint64(1), m.Stats().Hits)

	m.SetViewportWidth(30, 10)
	assert.Equal(t, 3, m.Columns())
	assert.Equal(t, []Segment{{0, 3}, {3, 5}, {6, 9}, {9, 11}}, m.Segments(0))
	assert.Equal(t, 4, m.TotalVisualLines())

	m.SetViewportWidth(3, 10)
	assert.Equal(t, 1, m.Columns())

	m.SetViewportWidth(100, 0)
	assert.Equal(t, 100/DefaultCharWidth, m.Columns())
}

func TestMapperCacheBound(t *testing.T) {
	m, _, _ := newTestMapper("a\nb\nc\nd\ne", WithCacheSize(2))

	for line := 0; line < 5; line++ {
		m.Segments(line)
	}

	stats := m.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 2, stats.MaxSize)
	assert.Equal(t, uint64(3), stats.Evictions)
}

func TestMapperWideRunes(t *testing.T) {
	m, _, _ := newTestMapper("日本語テキスト", WithViewport(50, 10))

	assert.Equal(t, []Segment{{0, 2}, {2, 4}, {4, 6}, {6, 7}}, m.Segments(0))
	assert.Equal(t, "語テ", m.SegmentText(0, 1))
	assert.Equal(t, 3, m.LogicalToVisual(0, 7))
}

func TestMapperReleasedBuffer(t *testing.T) {
	m, buf, reg := newTestMapper("hello world", WithViewport(50, 10))
	require.Len(t, m.Segments(0), 2)

	reg.Release(buf.ID())

	assert.Nil(t, m.Segments(0))
	assert.Zero(t, m.TotalVisualLines())
	assert.Zero(t, m.VisualLineCount(0))
	assert.Zero(t, m.LogicalToVisual(0, 3))
	assert.Empty(t, m.SegmentText(0, 0))

	_, ok := m.VisualToLogical(0)
	assert.False(t, ok)

	seg, local := m.ColumnToVisualOffset(0, 3)
	assert.Zero(t, seg)
	assert.Zero(t, local)

	p, goal := m.MoveVertical(pos(0, 3), 1, -1)
	assert.Equal(t, pos(0, 3), p)
	assert.Equal(t, -1, goal)
}

func TestMapperNilResolver(t *testing.T) {
	m := NewMapper(nil, buffer.NewID())
	assert.Nil(t, m.Segments(0))
	assert.Zero(t, m.TotalVisualLines())
}

func TestMapperInvalidate(t *testing.T) {
	m, buf, _ := newTestMapper("short\nline", WithViewport(50, 10))
	require.Equal(t, 2, m.TotalVisualLines())

	_, err := buf.Insert(pos(0, 5), " and longer")
	require.NoError(t, err)

	// Without invalidation the mapper still reports the old layout.
	assert.Equal(t, []Segment{{0, 5}}, m.Segments(0))

	m.Invalidate(0, 0)
	assert.Equal(t, []Segment{{0, 5}, {6, 9}, {10, 15}, {15, 16}}, m.Segments(0))
	assert.Equal(t, 5, m.TotalVisualLines())

	_, err = buf.Insert(pos(0, 0), "x\n")
	require.NoError(t, err)
	m.Invalidate(0, -1)
	assert.Equal(t, []Segment{{0, 1}}, m.Segments(0))
	assert.Equal(t, 6, m.TotalVisualLines())

	// A reversed range is a no-op.
	m.Invalidate(3, 1)

	m.InvalidateAll()
	assert.Zero(t, m.Stats().Size)
	assert.Equal(t, 6, m.TotalVisualLines())
}

func TestMapperInvalidationMatchesFreshMapper(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	inserts := []string{"a", "word ", "\n", "日本", " ", "a longer run of text", "x\ny\n"}

	reg := buffer.NewRegistry()
	buf := buffer.NewBufferFromString("start of the document\nsecond line")
	id := reg.Register(buf)
	opts := []Option{WithViewport(80, 10), WithCacheSize(4)}
	m := NewMapper(reg, id, opts...)

	for step := 0; step < 300; step++ {
		var first int
		if rng.Intn(3) > 0 || buf.Len() == 0 {
			line := rng.Intn(buf.LineCount())
			p := pos(line, rng.Intn(buf.LineLen(line)+1))
			_, err := buf.Insert(p, inserts[rng.Intn(len(inserts))])
			require.NoError(t, err)
			first = p.Line
		} else {
			a := randomPosition(rng, buf)
			b := randomPosition(rng, buf)
			if b.Before(a) {
				a, b = b, a
			}
			_, err := buf.Delete(a, b)
			require.NoError(t, err)
			first = a.Line
		}
		m.Invalidate(first, -1)

		// Interleave queries so the prefix table is partially built.
		m.LogicalToVisual(rng.Intn(buf.LineCount()), 0)

		fresh := NewMapper(reg, id, opts...)
		require.Equal(t, fresh.TotalVisualLines(), m.TotalVisualLines(), "step %d", step)
		for line := 0; line < buf.LineCount(); line++ {
			require.Equal(t, fresh.Segments(line), m.Segments(line), "step %d line %d", step, line)
			require.Equal(t, fresh.LogicalToVisual(line, 0), m.LogicalToVisual(line, 0), "step %d line %d", step, line)
		}
	}
}

func randomPosition(rng *rand.Rand, buf *buffer.Buffer) buffer.Position {
	line := rng.Intn(buf.LineCount())
	return pos(line, rng.Intn(buf.LineLen(line)+1))
}

func TestMapperMoveVertical(t *testing.T) {
	t.Run("across wrapped rows", func(t *testing.T) {
		m, _, _ := newTestMapper("hello world foo", WithViewport(50, 10))

		p, goal := m.MoveVertical(pos(0, 2), 1, -1)
		assert.Equal(t, pos(0, 8), p)
		assert.Equal(t, 2, goal)

		p, goal = m.MoveVertical(p, 1, goal)
		assert.Equal(t, pos(0, 14), p)

		// Already on the last row.
		p, _ = m.MoveVertical(p, 1, goal)
		assert.Equal(t, pos(0, 14), p)

		p, _ = m.MoveVertical(p, -2, goal)
		assert.Equal(t, pos(0, 2), p)
	})

	t.Run("keeps goal column over short lines", func(t *testing.T) {
		m, _, _ := newTestMapper("hello\nab\nhello")

		p, goal := m.MoveVertical(pos(0, 4), 1, -1)
		assert.Equal(t, pos(1, 2), p)
		assert.Equal(t, 4, goal)

		p, goal = m.MoveVertical(p, 1, goal)
		assert.Equal(t, pos(2, 4), p)
		assert.Equal(t, 4, goal)
	})

	t.Run("stays on row before hard break", func(t *testing.T) {
		m, _, _ := newTestMapper("abcdef", WithViewport(30, 10))

		p, _ := m.MoveVertical(pos(0, 5), -1, -1)
		assert.Equal(t, pos(0, 2), p)

		p, _ = m.MoveVertical(pos(0, 4), -1, 5)
		assert.Equal(t, pos(0, 2), p)
	})

	t.Run("wide runes use cell columns", func(t *testing.T) {
		m, _, _ := newTestMapper("日本語\nabcdef")

		p, goal := m.MoveVertical(pos(0, 1), 1, -1)
		assert.Equal(t, 2, goal)
		assert.Equal(t, pos(1, 2), p)

		p, _ = m.MoveVertical(pos(1, 3), -1, -1)
		assert.Equal(t, pos(0, 1), p)
	})
}

func BenchmarkMapperTotalVisualLines(b *testing.B) {
	reg := buffer.NewRegistry()
	text := ""
	for i := 0; i < 1000; i++ {
		text += "the quick brown fox jumps over the lazy dog and keeps running\n"
	}
	id := reg.Register(buffer.NewBufferFromString(text))
	m := NewMapper(reg, id, WithViewport(300, 10))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.InvalidateAll()
		m.TotalVisualLines()
	}
}
