package layout

// Segment is a half-open rune column range [Start, End) of one logical
// line that renders as one visual row.
type Segment struct {
	Start int
	End   int
}

// Len returns the number of runes in the segment.
func (s Segment) Len() int {
	return s.End - s.Start
}

// Wrap splits text into segments no wider than limit cells.
//
// A soft break happens at the last whitespace rune that starts within
// the limit; that rune belongs to neither neighbouring segment. Without
// whitespace the line is hard-broken at the limit on a grapheme
// boundary. A single cluster wider than limit gets a segment of its own.
// An empty line yields one empty segment.
func Wrap(text string, limit int, tabs *TabExpander) []Segment {
	if tabs == nil {
		tabs = DefaultTabExpander()
	}
	if limit < 1 {
		limit = 1
	}

	cls := splitClusters(text)
	n := len(cls)
	if n == 0 {
		return []Segment{{}}
	}
	lineLen := cls[n-1].end

	var segs []Segment
	ci := 0
	for ci < n {
		// Advance j past every cluster that fits, measuring tabs from
		// the start of the row.
		cells := 0
		j := ci
		for j < n {
			w := tabs.clusterWidth(cls[j], cells)
			if cells+w > limit {
				break
			}
			cells += w
			j++
		}
		if j == n {
			segs = append(segs, Segment{Start: cls[ci].start, End: lineLen})
			break
		}
		if j == ci {
			j = ci + 1
			if j == n {
				segs = append(segs, Segment{Start: cls[ci].start, End: lineLen})
				break
			}
		}

		brk := -1
		for w := j; w > ci; w-- {
			if cls[w].space {
				brk = w
				break
			}
		}
		if brk > 0 {
			segs = append(segs, Segment{Start: cls[ci].start, End: cls[brk].start})
			ci = brk + 1
			continue
		}

		segs = append(segs, Segment{Start: cls[ci].start, End: cls[j].start})
		ci = j
	}
	return segs
}
