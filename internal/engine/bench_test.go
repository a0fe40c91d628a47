package engine

import (
	"strings"
	"testing"
)

// ============================================================================
// Setup Helpers
// ============================================================================

func setupLargeEngine(b *testing.B, lines int) *Engine {
	b.Helper()
	var sb strings.Builder
	line := strings.Repeat("lorem ipsum ", 10) + "\n"
	for i := 0; i < lines; i++ {
		sb.WriteString(line)
	}
	return New(WithContent(sb.String()), WithViewport(400, 10))
}

// ============================================================================
// Edit Benchmarks
// ============================================================================

func BenchmarkEngineTyping(b *testing.B) {
	e := setupLargeEngine(b, 10000)
	e.SetCursor(Position{Line: 5000, Col: 0})
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = e.Insert("x")
	}
}

func BenchmarkEngineTypingWithLayout(b *testing.B) {
	e := setupLargeEngine(b, 10000)
	e.SetCursor(Position{Line: 5000, Col: 0})
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = e.Insert("x")
		_ = e.Mapper().TotalVisualLines()
	}
}

func BenchmarkEngineUndoRedo(b *testing.B) {
	e := setupLargeEngine(b, 1000)
	for i := 0; i < 100; i++ {
		e.SetCursor(Position{Line: i * 10, Col: 0})
		_, _ = e.Insert("edit ")
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _, _ = e.Undo()
		_, _, _ = e.Redo()
	}
}

// ============================================================================
// Layout Benchmarks
// ============================================================================

func BenchmarkEngineMoveVisual(b *testing.B) {
	e := setupLargeEngine(b, 1000)
	_ = e.Mapper().TotalVisualLines()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if e.Cursor().Line >= e.LineCount()-1 {
			e.SetCursor(Position{Line: 0, Col: 3})
		}
		e.MoveVisual(1)
	}
}

func BenchmarkEngineLoadText(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 10000; i++ {
		sb.WriteString("the quick brown fox jumps over the lazy dog\n")
	}
	text := sb.String()
	e := New()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.LoadText(text)
		_ = e.Mapper().TotalVisualLines()
	}
}
