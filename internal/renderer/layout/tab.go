package layout

import "strings"

// DefaultTabWidth is the tab stop interval in cells.
const DefaultTabWidth = 4

// TabExpander measures text in terminal cells, expanding tabs to the next
// tab stop and counting wide runes as two cells.
type TabExpander struct {
	tabWidth int
}

// NewTabExpander creates a tab expander with the given tab width.
func NewTabExpander(tabWidth int) *TabExpander {
	if tabWidth < 1 {
		tabWidth = DefaultTabWidth
	}
	return &TabExpander{tabWidth: tabWidth}
}

// DefaultTabExpander returns a tab expander with the default tab width.
func DefaultTabExpander() *TabExpander {
	return NewTabExpander(DefaultTabWidth)
}

// TabWidth returns the tab width.
func (t *TabExpander) TabWidth() int {
	return t.tabWidth
}

// NextTabStop returns the next tab stop column after the given column.
func (t *TabExpander) NextTabStop(col int) int {
	return col + t.TabStopOffset(col)
}

// TabStopOffset returns how many cells a tab at the given column expands to.
func (t *TabExpander) TabStopOffset(col int) int {
	return t.tabWidth - (col % t.tabWidth)
}

// ExpandedWidth returns the width of s in cells, starting at cell 0.
func (t *TabExpander) ExpandedWidth(s string) int {
	cells := 0
	for _, cl := range splitClusters(s) {
		cells += t.clusterWidth(cl, cells)
	}
	return cells
}

// CellColumn returns the cell offset of rune column col in s.
// Columns past the end extrapolate one cell per rune.
func (t *TabExpander) CellColumn(s string, col int) int {
	cells := 0
	for _, cl := range splitClusters(s) {
		if cl.start >= col {
			return cells
		}
		cells += t.clusterWidth(cl, cells)
	}
	return cells + col - runeCount(s)
}

// ExpandTabs returns s with tabs replaced by spaces.
func (t *TabExpander) ExpandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var sb strings.Builder
	cells := 0
	for _, cl := range splitClusters(s) {
		w := t.clusterWidth(cl, cells)
		if cl.tab {
			sb.WriteString(strings.Repeat(" ", w))
		} else {
			sb.WriteString(cl.text)
		}
		cells += w
	}
	return sb.String()
}

// clusterWidth returns the cells cl occupies when it starts at cell at.
func (t *TabExpander) clusterWidth(cl cluster, at int) int {
	if cl.tab {
		return t.TabStopOffset(at)
	}
	return cl.width
}
