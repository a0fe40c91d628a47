package layout

import (
	"math/rand"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []Segment
	}{
		{"soft break consumes space", "hello world", 5, []Segment{{0, 5}, {6, 11}}},
		{"empty line", "", 5, []Segment{{0, 0}}},
		{"fits", "abc", 5, []Segment{{0, 3}}},
		{"exact fit", "abcde", 5, []Segment{{0, 5}}},
		{"hard break", "abcdefgh", 3, []Segment{{0, 3}, {3, 6}, {6, 8}}},
		{"last space within limit", "aaa bbb ccc", 7, []Segment{{0, 7}, {8, 11}}},
		{"trailing space", "hello ", 5, []Segment{{0, 5}}},
		{"mixed breaks", "hello world", 3, []Segment{{0, 3}, {3, 5}, {6, 9}, {9, 11}}},
		{"wide runes", "日本語テキスト", 5, []Segment{{0, 2}, {2, 4}, {4, 6}, {6, 7}}},
		{"wide rune wider than limit", "日本", 1, []Segment{{0, 1}, {1, 2}}},
		{"combining marks stay together", "e\u0301e\u0301e\u0301", 2, []Segment{{0, 4}, {4, 6}}},
		{"runs of spaces", "   ", 1, []Segment{{0, 1}, {2, 3}}},
		{"zero limit clamps to one", "ab", 0, []Segment{{0, 1}, {1, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.text, tt.limit, nil))
		})
	}
}

func TestWrapTabs(t *testing.T) {
	te := NewTabExpander(4)

	// The tab fills the row, so 'a' starts the next one.
	assert.Equal(t, []Segment{{0, 1}, {1, 3}}, Wrap("\tab", 4, te))
	// Tabs are measured from the start of each row.
	assert.Equal(t, []Segment{{0, 5}}, Wrap("a\tbcd", 8, te))
}

var wrapAlphabet = []string{"a", "b", "word", " ", " ", "\t", "日", "本", "e\u0301", "x"}

func randomLine(rng *rand.Rand, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString(wrapAlphabet[rng.Intn(len(wrapAlphabet))])
	}
	return sb.String()
}

func TestWrapCoverage(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	te := DefaultTabExpander()

	for i := 0; i < 500; i++ {
		text := randomLine(rng, rng.Intn(40))
		limit := 1 + rng.Intn(12)
		runes := []rune(text)
		segs := Wrap(text, limit, te)

		if len(runes) == 0 {
			assert.Equal(t, []Segment{{0, 0}}, segs)
			continue
		}

		assert.Equal(t, 0, segs[0].Start, "text %q limit %d", text, limit)
		assert.Equal(t, len(runes), segs[len(segs)-1].End, "text %q limit %d", text, limit)

		for k, s := range segs {
			assert.Greater(t, s.Len(), 0, "empty segment in %q limit %d", text, limit)

			part := string(runes[s.Start:s.End])
			if len(splitClusters(part)) > 1 {
				assert.LessOrEqual(t, te.ExpandedWidth(part), limit, "segment %q too wide", part)
			}

			if k == 0 {
				continue
			}
			gap := s.Start - segs[k-1].End
			switch gap {
			case 0:
			case 1:
				assert.True(t, unicode.IsSpace(runes[segs[k-1].End]), "consumed non-space in %q", text)
			default:
				require.Failf(t, "unexpected gap", "gap %d between segments of %q limit %d", gap, text, limit)
			}
		}
	}
}

func BenchmarkWrap(b *testing.B) {
	line := strings.Repeat("the quick brown fox jumps over the lazy dog ", 50)
	te := DefaultTabExpander()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Wrap(line, 80, te)
	}
}
