package highlight

import (
	"errors"
	"strings"
	"testing"

	"prose_lens/internal/analysis"
	"prose_lens/internal/doc"
	"prose_lens/internal/mapping"
)

func newDoc(t *testing.T, runs ...doc.Run) *doc.Document {
	t.Helper()
	d := doc.FromBlocks([]doc.Block{{Kind: doc.KindParagraph, Runs: runs}})
	d.Register(doc.KindHighlight)
	return d
}

func newReconciler(t *testing.T, d *doc.Document, categories ...analysis.IssueType) *Reconciler {
	t.Helper()
	r, err := New(d, categories...)
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}
	return r
}

func reconcileOnce(d *doc.Document, r *Reconciler, issues []analysis.Issue) (Stats, doc.Batch) {
	var stats Stats
	batch := d.Update(Origin, func(tx *doc.Tx) {
		pm := mapping.Build(tx.Flatten(), tx.TextNodes())
		stats = r.Reconcile(tx, issues, pm)
	})
	return stats, batch
}

type piece struct {
	kind     doc.Kind
	text     string
	format   doc.Format
	category string
}

func pieces(d *doc.Document) []piece {
	var out []piece
	d.View(func(tx *doc.Tx) {
		for _, tn := range tx.TextNodes() {
			n, _ := tx.Node(tn.ID)
			out = append(out, piece{kind: n.Kind, text: n.Text, format: n.Format, category: n.Category})
		}
	})
	return out
}

func TestNewRequiresRegisteredKind(t *testing.T) {
	d := doc.FromText("Hello.")
	if _, err := New(d); !errors.Is(err, ErrKindNotRegistered) {
		t.Fatalf("expected ErrKindNotRegistered, got %v", err)
	}
	d.Register(doc.KindHighlight)
	if _, err := New(d); err != nil {
		t.Fatalf("expected registered kind to succeed, got %v", err)
	}
}

func TestReconcileSplitsNodeIntoThree(t *testing.T) {
	d := newDoc(t, doc.Run{Text: "He was very tired", Format: doc.Italic})
	r := newReconciler(t, d)

	at := strings.Index(d.Flatten(), "very")
	stats, _ := reconcileOnce(d, r, []analysis.Issue{{Type: analysis.Qualifier, Index: at, Length: 4, Text: "very"}})
	if stats.Tagged != 1 {
		t.Fatalf("expected one tagged range, got %+v", stats)
	}

	got := pieces(d)
	want := []piece{
		{kind: doc.KindText, text: "He was ", format: doc.Italic},
		{kind: doc.KindHighlight, text: "very", format: doc.Italic, category: "qualifier"},
		{kind: doc.KindText, text: " tired", format: doc.Italic},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d pieces, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("piece %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	d := newDoc(t, doc.Run{Text: "He was very tired and really quite sleepy"})
	r := newReconciler(t, d)
	issues := []analysis.Issue{
		{Type: analysis.Qualifier, Index: 7, Length: 4},
		{Type: analysis.Qualifier, Index: 22, Length: 6},
	}

	reconcileOnce(d, r, issues)
	first := pieces(d)
	firstTagged := d.TaggedNodes()

	stats, batch := reconcileOnce(d, r, issues)
	if batch.Ops != 0 {
		t.Fatalf("expected no mutations on the second pass, got %d ops (%+v)", batch.Ops, stats)
	}
	if stats.Kept != 2 {
		t.Fatalf("expected both tags kept, got %+v", stats)
	}
	second := pieces(d)
	if len(first) != len(second) {
		t.Fatalf("expected same pieces, got %+v then %+v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("piece %d changed: %+v -> %+v", i, first[i], second[i])
		}
	}
	secondTagged := d.TaggedNodes()
	for i := range firstTagged {
		if firstTagged[i] != secondTagged[i] {
			t.Fatalf("tagged node %d changed: %+v -> %+v", i, firstTagged[i], secondTagged[i])
		}
	}
}

func TestReconcileRemovesStaleTags(t *testing.T) {
	d := newDoc(t, doc.Run{Text: "She ran quickly home", Format: doc.Bold})
	r := newReconciler(t, d)
	before := d.Flatten()

	reconcileOnce(d, r, []analysis.Issue{{Type: analysis.Adverb, Index: 10, Length: 7}})
	if len(d.TaggedNodes()) != 1 {
		t.Fatalf("expected one tag, got %+v", d.TaggedNodes())
	}

	stats, _ := reconcileOnce(d, r, nil)
	if stats.Cleared != 1 {
		t.Fatalf("expected one cleared tag, got %+v", stats)
	}
	if len(d.TaggedNodes()) != 0 {
		t.Fatalf("expected no tags, got %+v", d.TaggedNodes())
	}
	var text strings.Builder
	for _, p := range pieces(d) {
		if p.format != doc.Bold {
			t.Fatalf("expected format preserved, got %+v", p)
		}
		text.WriteString(p.text)
	}
	if text.String() != "She ran quickly home" {
		t.Fatalf("expected text preserved, got %q", text.String())
	}
	if d.Flatten() != before {
		t.Fatalf("expected flatten %q, got %q", before, d.Flatten())
	}
}

func TestReconcileMovesTag(t *testing.T) {
	d := newDoc(t, doc.Run{Text: "slowly and softly"})
	r := newReconciler(t, d)

	reconcileOnce(d, r, []analysis.Issue{{Type: analysis.Adverb, Index: 0, Length: 6}})
	stats, _ := reconcileOnce(d, r, []analysis.Issue{{Type: analysis.Adverb, Index: 11, Length: 6}})
	if stats.Cleared != 1 || stats.Tagged != 1 {
		t.Fatalf("expected one cleared and one tagged, got %+v", stats)
	}
	tagged := d.TaggedNodes()
	if len(tagged) != 1 {
		t.Fatalf("expected one tag, got %+v", tagged)
	}
	var got string
	d.View(func(tx *doc.Tx) { got = tx.Text(tagged[0].ID) })
	if got != "softly" {
		t.Fatalf("expected softly tagged, got %q", got)
	}
}

func TestReconcileAcrossNodeBoundary(t *testing.T) {
	d := newDoc(t, doc.Run{Text: "He was "}, doc.Run{Text: "very tired", Format: doc.Bold})
	r := newReconciler(t, d)
	flat := d.Flatten() // He was **very tired**

	start := strings.Index(flat, "was")
	end := strings.Index(flat, "very") + len("very")
	stats, applied := r.Apply(d, flat, []analysis.Issue{{Type: analysis.Passive, Index: start, Length: end - start}})
	if !applied {
		t.Fatal("expected apply to run")
	}
	if stats.Tagged != 2 {
		t.Fatalf("expected the issue to tag two nodes, got %+v", stats)
	}

	got := pieces(d)
	want := []piece{
		{kind: doc.KindText, text: "He "},
		{kind: doc.KindHighlight, text: "was ", category: "passive"},
		{kind: doc.KindHighlight, text: "very", format: doc.Bold, category: "passive"},
		{kind: doc.KindText, text: " tired", format: doc.Bold},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d pieces, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("piece %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
	if d.Flatten() != flat {
		t.Fatalf("expected flatten unchanged, got %q", d.Flatten())
	}
}

func TestReconcileSeveralIssuesInOneNode(t *testing.T) {
	d := newDoc(t, doc.Run{Text: "one two three"})
	r := newReconciler(t, d)
	issues := []analysis.Issue{
		{Type: analysis.HardWord, Index: 8, Length: 5},
		{Type: analysis.Adverb, Index: 0, Length: 3},
		{Type: analysis.Qualifier, Index: 1, Length: 4}, // overlaps "one", clipped to " t"
	}
	reconcileOnce(d, r, issues)

	got := pieces(d)
	want := []piece{
		{kind: doc.KindHighlight, text: "one", category: "adverb"},
		{kind: doc.KindHighlight, text: " t", category: "qualifier"},
		{kind: doc.KindText, text: "wo "},
		{kind: doc.KindHighlight, text: "three", category: "hardWord"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d pieces, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("piece %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestReconcileSkipsVanishedNodes(t *testing.T) {
	d := doc.FromText("First paragraph.\n\nSecond paragraph.")
	d.Register(doc.KindHighlight)
	r := newReconciler(t, d)

	flat := d.Flatten()
	pm := mapping.Build(flat, d.TextNodes())
	nodes := d.TextNodes()
	d.Update("user", func(tx *doc.Tx) { tx.Remove(nodes[0].ID) })

	issues := []analysis.Issue{
		{Type: analysis.HardWord, Index: 6, Length: 9},
		{Type: analysis.HardWord, Index: strings.Index(flat, "Second"), Length: 6},
	}
	var stats Stats
	d.Update(Origin, func(tx *doc.Tx) { stats = r.Reconcile(tx, issues, pm) })
	if stats.Skipped != 1 || stats.Tagged != 1 {
		t.Fatalf("expected one skipped and one tagged, got %+v", stats)
	}
}

func TestReconcileOnlyTouchesOwnedCategories(t *testing.T) {
	d := newDoc(t, doc.Run{Text: "it was done quickly"})
	passive := newReconciler(t, d, analysis.Passive)
	adverbs := newReconciler(t, d, analysis.Adverb)
	issues := []analysis.Issue{
		{Type: analysis.Passive, Index: 3, Length: 8},
		{Type: analysis.Adverb, Index: 12, Length: 7},
	}

	reconcileOnce(d, passive, issues)
	reconcileOnce(d, adverbs, issues)
	if n := len(d.TaggedNodes()); n != 2 {
		t.Fatalf("expected two tags, got %d", n)
	}

	stats, _ := reconcileOnce(d, adverbs, nil)
	if stats.Cleared != 1 {
		t.Fatalf("expected only the adverb tag cleared, got %+v", stats)
	}
	tagged := d.TaggedNodes()
	if len(tagged) != 1 || tagged[0].Category != "passive" {
		t.Fatalf("expected passive tag to survive, got %+v", tagged)
	}
}

func TestApplyRejectsStaleSnapshot(t *testing.T) {
	d := newDoc(t, doc.Run{Text: "He was very tired"})
	r := newReconciler(t, d)
	flat := d.Flatten()
	id := d.TextNodes()[0].ID
	d.Update("user", func(tx *doc.Tx) { tx.InsertText(id, 0, "Oh. ") })

	_, applied := r.Apply(d, flat, []analysis.Issue{{Type: analysis.Qualifier, Index: 7, Length: 4}})
	if applied {
		t.Fatal("expected stale snapshot to be rejected")
	}
	if len(d.TaggedNodes()) != 0 {
		t.Fatal("expected no tags after a rejected pass")
	}
}

func TestApplyAnalysisIssues(t *testing.T) {
	d := doc.FromText("# Notes\n\nShe quickly left. The cake was eaten by someone.\n\nI think the deliberation was really good.")
	d.Register(doc.KindHighlight)
	r := newReconciler(t, d)

	flat := d.Flatten()
	res := analysis.Analyze(flat)
	stats, applied := r.Apply(d, flat, res.Issues)
	if !applied || stats.Tagged == 0 {
		t.Fatalf("expected tags applied, got %+v applied=%v", stats, applied)
	}
	if d.Flatten() != flat {
		t.Fatal("highlighting must not change the flattened text")
	}
	if analysis.SameIssues(analysis.Analyze(d.Flatten()).Issues, res.Issues) == false {
		t.Fatal("expected re-analysis after highlighting to find the same issues")
	}

	categories := map[string]bool{}
	d.View(func(tx *doc.Tx) {
		for _, tn := range tx.TaggedNodes() {
			categories[tn.Category] = true
			if !strings.Contains(flat, tx.Text(tn.ID)) {
				t.Fatalf("tagged text %q not in flattened string", tx.Text(tn.ID))
			}
		}
	})
	for _, c := range []string{"adverb", "passive", "qualifier", "hardWord"} {
		if !categories[c] {
			t.Fatalf("expected a %s tag, got %v", c, categories)
		}
	}
}
