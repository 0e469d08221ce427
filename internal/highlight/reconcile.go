package highlight

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"prose_lens/internal/analysis"
	"prose_lens/internal/doc"
	"prose_lens/internal/mapping"
)

// Origin marks batches written by the reconciler so listeners can ignore them.
const Origin = "highlight"

var ErrKindNotRegistered = errors.New("highlight node kind not registered with host")

// Host is the editing surface the reconciler writes through.
type Host interface {
	Registered(kind doc.Kind) bool
	Update(origin string, fn func(tx *doc.Tx)) doc.Batch
}

// Tree is the mutable view available inside a host update.
type Tree interface {
	Contains(id doc.NodeID) bool
	Node(id doc.NodeID) (doc.Node, bool)
	TaggedNodes() []doc.TaggedNode
	Replace(id doc.NodeID, n doc.Node) doc.NodeID
	InsertAfter(id doc.NodeID, n doc.Node) doc.NodeID
}

type Stats struct {
	Cleared int
	Kept    int
	Tagged  int
	Skipped int
}

// Reconciler is the only writer of highlight nodes for its categories.
type Reconciler struct {
	categories map[analysis.IssueType]struct{}
}

type span struct {
	start, end int
	category   analysis.IssueType
}

// New fails when the host has not registered doc.KindHighlight. With no
// categories given, every issue type is reconciled.
func New(host Host, categories ...analysis.IssueType) (*Reconciler, error) {
	if !host.Registered(doc.KindHighlight) {
		return nil, fmt.Errorf("%w: %s", ErrKindNotRegistered, doc.KindHighlight)
	}
	if len(categories) == 0 {
		categories = analysis.Types
	}
	r := &Reconciler{categories: make(map[analysis.IssueType]struct{}, len(categories))}
	for _, c := range categories {
		r.categories[c] = struct{}{}
	}
	return r, nil
}

func (r *Reconciler) owns(category string) bool {
	_, ok := r.categories[analysis.IssueType(category)]
	return ok
}

// Apply reconciles issues detected in flat against the host's current tree in
// a single batch. It does nothing and returns false when the tree no longer
// flattens to flat, since the issue offsets would be stale.
func (r *Reconciler) Apply(host Host, flat string, issues []analysis.Issue) (Stats, bool) {
	var stats Stats
	applied := false
	host.Update(Origin, func(tx *doc.Tx) {
		if tx.Flatten() != flat {
			return
		}
		stats = r.Reconcile(tx, issues, mapping.Build(flat, tx.TextNodes()))
		applied = true
	})
	return stats, applied
}

// Reconcile makes the tagged nodes of the owned categories match issues.
// Tagged nodes that already cover exactly one wanted range are kept as they
// are; other owned tags are replaced by plain text before the mapped nodes
// are split into prefix, tagged match and suffix. Entries whose node vanished
// or changed since pm was built are skipped.
func (r *Reconciler) Reconcile(t Tree, issues []analysis.Issue, pm mapping.PositionMap) Stats {
	var stats Stats
	wanted := make(map[doc.NodeID][]span, len(pm))
	valid := make(map[doc.NodeID]doc.Node, len(pm))

	for _, e := range pm {
		node, ok := t.Node(e.Node)
		if !ok || node.Text != e.Text || !node.Kind.IsText() {
			stats.Skipped += len(r.overlaps(e, issues))
			continue
		}
		if node.Kind == doc.KindHighlight && !r.owns(node.Category) {
			continue
		}
		valid[e.Node] = node
		if spans := r.overlaps(e, issues); len(spans) > 0 {
			wanted[e.Node] = normalize(spans)
		}
	}

	remap := map[doc.NodeID]doc.NodeID{}
	kept := map[doc.NodeID]bool{}
	for _, tn := range t.TaggedNodes() {
		if !r.owns(tn.Category) {
			continue
		}
		node, _ := t.Node(tn.ID)
		if spans := wanted[tn.ID]; len(spans) == 1 && spans[0].start == 0 &&
			spans[0].end == len(node.Text) && string(spans[0].category) == tn.Category {
			kept[tn.ID] = true
			stats.Kept++
			continue
		}
		remap[tn.ID] = t.Replace(tn.ID, doc.Node{Kind: doc.KindText, Text: node.Text, Format: node.Format})
		stats.Cleared++
	}

	for _, e := range pm {
		spans, ok := wanted[e.Node]
		if !ok || kept[e.Node] {
			continue
		}
		id := e.Node
		if next, moved := remap[id]; moved {
			id = next
		}
		if !t.Contains(id) {
			stats.Skipped += len(spans)
			continue
		}
		stats.Tagged += splice(t, id, valid[e.Node], spans)
	}
	return stats
}

// overlaps returns the owned issue ranges intersecting the entry, relative to
// the start of its node.
func (r *Reconciler) overlaps(e mapping.Entry, issues []analysis.Issue) []span {
	var out []span
	for _, is := range issues {
		if is.Length <= 0 {
			continue
		}
		if _, ok := r.categories[is.Type]; !ok {
			continue
		}
		start := max(is.Index, e.MarkdownPos)
		end := min(is.End(), e.End())
		if start < end {
			out = append(out, span{start: start - e.MarkdownPos, end: end - e.MarkdownPos, category: is.Type})
		}
	}
	return out
}

// normalize orders spans by start and clips overlaps so earlier spans win; a
// byte carries at most one tag.
func normalize(spans []span) []span {
	slices.SortStableFunc(spans, func(a, b span) int { return cmp.Compare(a.start, b.start) })
	out := spans[:0]
	at := 0
	for _, s := range spans {
		s.start = max(s.start, at)
		if s.start >= s.end {
			continue
		}
		out = append(out, s)
		at = s.end
	}
	return out
}

// splice replaces the node with its pieces, chaining InsertAfter from the
// first one. Every piece keeps the original format.
func splice(t Tree, id doc.NodeID, node doc.Node, spans []span) int {
	pieces := make([]doc.Node, 0, 2*len(spans)+1)
	plain := func(text string) doc.Node {
		return doc.Node{Kind: doc.KindText, Text: text, Format: node.Format}
	}
	at := 0
	for _, s := range spans {
		if s.start > at {
			pieces = append(pieces, plain(node.Text[at:s.start]))
		}
		pieces = append(pieces, doc.Node{
			Kind:     doc.KindHighlight,
			Text:     node.Text[s.start:s.end],
			Format:   node.Format,
			Category: string(s.category),
		})
		at = s.end
	}
	if at < len(node.Text) {
		pieces = append(pieces, plain(node.Text[at:]))
	}

	prev := t.Replace(id, pieces[0])
	for _, p := range pieces[1:] {
		prev = t.InsertAfter(prev, p)
	}
	return len(spans)
}
