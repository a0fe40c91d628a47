package layout

import (
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// cluster is one grapheme cluster of a line, addressed in rune columns.
type cluster struct {
	text  string
	start int // first rune column
	end   int // rune column after the cluster
	width int // cells, tabs excluded
	space bool
	tab   bool
}

// splitClusters splits s into grapheme clusters so wide and combining
// sequences are measured and broken as a unit.
func splitClusters(s string) []cluster {
	if s == "" {
		return nil
	}

	out := make([]cluster, 0, len(s))
	g := uniseg.NewGraphemes(s)
	col := 0
	for g.Next() {
		text := g.Str()
		n := utf8.RuneCountInString(text)
		out = append(out, cluster{
			text:  text,
			start: col,
			end:   col + n,
			width: cellWidth(text),
			space: n == 1 && unicode.IsSpace([]rune(text)[0]),
			tab:   text == "\t",
		})
		col += n
	}
	return out
}

// cellWidth returns the terminal width of a grapheme cluster.
func cellWidth(text string) int {
	w := runewidth.StringWidth(text)
	if w <= 0 {
		w = uniseg.StringWidth(text)
	}
	if w < 0 {
		w = 0
	}
	return w
}

func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}
