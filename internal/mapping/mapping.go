package mapping

import (
	"slices"
	"sort"
	"strings"

	"prose_lens/internal/doc"
)

// Entry records where a text node's content starts in the flattened string.
// Text is the node content at build time, so callers can detect nodes that
// were edited after the map was built.
type Entry struct {
	Node        doc.NodeID
	MarkdownPos int
	Text        string
}

func (e Entry) End() int {
	return e.MarkdownPos + len(e.Text)
}

// PositionMap is ordered by MarkdownPos. It is rebuilt on every pass.
type PositionMap []Entry

// Build aligns text nodes with the flattened string by greedy forward search.
// A node not found at or after the cursor is searched from the start of the
// string and recorded without moving the cursor; nodes found nowhere are left
// out. Repeated short substrings can bind to the wrong occurrence.
func Build(flat string, nodes []doc.TextNode) PositionMap {
	out := make(PositionMap, 0, len(nodes))
	pos := 0
	for _, n := range nodes {
		if n.Text == "" {
			continue
		}
		if i := strings.Index(flat[pos:], n.Text); i >= 0 {
			at := pos + i
			out = append(out, Entry{Node: n.ID, MarkdownPos: at, Text: n.Text})
			pos = at + len(n.Text)
			continue
		}
		if i := strings.Index(flat, n.Text); i >= 0 {
			out = append(out, Entry{Node: n.ID, MarkdownPos: i, Text: n.Text})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].MarkdownPos < out[b].MarkdownPos })
	return out
}

// Locate returns the entry whose text covers offset.
func (pm PositionMap) Locate(offset int) (Entry, bool) {
	i, _ := slices.BinarySearchFunc(pm, offset, func(e Entry, target int) int {
		switch {
		case e.End() <= target:
			return -1
		case e.MarkdownPos > target:
			return 1
		default:
			return 0
		}
	})
	if i < len(pm) && pm[i].MarkdownPos <= offset && offset < pm[i].End() {
		return pm[i], true
	}
	return Entry{}, false
}

// Overlapping returns the entries intersecting [start, end).
func (pm PositionMap) Overlapping(start, end int) []Entry {
	var out []Entry
	for _, e := range pm {
		if e.MarkdownPos >= end {
			break
		}
		if e.End() > start {
			out = append(out, e)
		}
	}
	return out
}
