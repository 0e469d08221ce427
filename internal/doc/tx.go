package doc

import (
	"slices"
	"strings"
)

// Tx is the view of the tree handed to Update and View callbacks. It is only
// valid for the duration of the callback.
type Tx struct {
	doc      *Document
	readOnly bool
	ops      int

	captured    bool
	before      string
	textChanged bool
}

func (tx *Tx) Registered(kind Kind) bool {
	_, ok := tx.doc.kinds[kind]
	return ok
}

func (tx *Tx) Root() NodeID {
	return tx.doc.root
}

func (tx *Tx) Contains(id NodeID) bool {
	_, ok := tx.doc.nodes[id]
	return ok
}

func (tx *Tx) Node(id NodeID) (Node, bool) {
	e, ok := tx.doc.nodes[id]
	if !ok {
		return Node{}, false
	}
	return e.Node, true
}

func (tx *Tx) Text(id NodeID) string {
	if e, ok := tx.doc.nodes[id]; ok {
		return e.Text
	}
	return ""
}

func (tx *Tx) Children(id NodeID) []NodeID {
	if e, ok := tx.doc.nodes[id]; ok {
		return slices.Clone(e.children)
	}
	return nil
}

// TextNodes returns every text-bearing node in document order.
func (tx *Tx) TextNodes() []TextNode {
	var out []TextNode
	tx.walk(func(e *entry) {
		if e.Kind.IsText() {
			out = append(out, TextNode{ID: e.id, Text: e.Text})
		}
	})
	return out
}

func (tx *Tx) TaggedNodes() []TaggedNode {
	var out []TaggedNode
	tx.walk(func(e *entry) {
		if e.Kind == KindHighlight {
			out = append(out, TaggedNode{ID: e.id, Category: e.Category})
		}
	})
	return out
}

func (tx *Tx) AppendBlock(kind Kind, level int, runs ...Run) NodeID {
	tx.mutate()
	root := tx.doc.nodes[tx.doc.root]
	block := tx.doc.newEntry(Node{Kind: kind, Level: level}, root.id)
	root.children = append(root.children, block.id)
	for _, r := range runs {
		child := tx.doc.newEntry(Node{Kind: KindText, Text: r.Text, Format: r.Format}, block.id)
		block.children = append(block.children, child.id)
	}
	return block.id
}

func (tx *Tx) AppendText(block NodeID, n Node) NodeID {
	parent, ok := tx.doc.nodes[block]
	if !ok {
		return 0
	}
	tx.mutate()
	child := tx.doc.newEntry(n, parent.id)
	parent.children = append(parent.children, child.id)
	return child.id
}

// Replace swaps the node for a new one at the same position. It returns 0 when
// id is no longer in the tree.
func (tx *Tx) Replace(id NodeID, n Node) NodeID {
	old, ok := tx.doc.nodes[id]
	if !ok || id == tx.doc.root {
		return 0
	}
	tx.mutate()
	parent := tx.doc.nodes[old.parent]
	repl := tx.doc.newEntry(n, parent.id)
	repl.children = old.children
	for _, c := range repl.children {
		tx.doc.nodes[c].parent = repl.id
	}
	parent.children[slices.Index(parent.children, id)] = repl.id
	delete(tx.doc.nodes, id)
	return repl.id
}

func (tx *Tx) InsertAfter(id NodeID, n Node) NodeID {
	prev, ok := tx.doc.nodes[id]
	if !ok || id == tx.doc.root {
		return 0
	}
	tx.mutate()
	parent := tx.doc.nodes[prev.parent]
	next := tx.doc.newEntry(n, parent.id)
	at := slices.Index(parent.children, id) + 1
	parent.children = slices.Insert(parent.children, at, next.id)
	return next.id
}

func (tx *Tx) Remove(id NodeID) {
	e, ok := tx.doc.nodes[id]
	if !ok || id == tx.doc.root {
		return
	}
	tx.mutate()
	parent := tx.doc.nodes[e.parent]
	parent.children = slices.DeleteFunc(parent.children, func(c NodeID) bool { return c == id })
	tx.drop(e)
}

// Clear removes every block from the document.
func (tx *Tx) Clear() {
	root := tx.doc.nodes[tx.doc.root]
	if len(root.children) == 0 {
		return
	}
	tx.mutate()
	for _, c := range root.children {
		tx.drop(tx.doc.nodes[c])
	}
	root.children = nil
}

func (tx *Tx) SetText(id NodeID, text string) {
	e, ok := tx.doc.nodes[id]
	if !ok || !e.Kind.IsText() {
		return
	}
	tx.mutate()
	e.Text = text
}

// InsertText inserts s at a byte offset inside a text node, clamping the
// offset to the node's bounds.
func (tx *Tx) InsertText(id NodeID, offset int, s string) {
	e, ok := tx.doc.nodes[id]
	if !ok || !e.Kind.IsText() {
		return
	}
	offset = min(max(offset, 0), len(e.Text))
	tx.mutate()
	e.Text = e.Text[:offset] + s + e.Text[offset:]
}

func (tx *Tx) DeleteText(id NodeID, start, end int) {
	e, ok := tx.doc.nodes[id]
	if !ok || !e.Kind.IsText() {
		return
	}
	start = min(max(start, 0), len(e.Text))
	end = min(max(end, start), len(e.Text))
	if start == end {
		return
	}
	tx.mutate()
	e.Text = e.Text[:start] + e.Text[end:]
}

// SetFormat changes formatting only and does not count as a text change.
func (tx *Tx) SetFormat(id NodeID, f Format) {
	e, ok := tx.doc.nodes[id]
	if !ok || !e.Kind.IsText() || e.Format == f {
		return
	}
	tx.write()
	e.Format = f
}

func (tx *Tx) write() {
	if tx.readOnly {
		panic("doc: mutation inside a read-only view")
	}
	tx.ops++
}

// mutate records an operation that may change text content. The plain text is
// captured once so the batch can report whether it really changed.
func (tx *Tx) mutate() {
	tx.write()
	if !tx.captured {
		tx.before = tx.plainText()
		tx.captured = true
	}
}

func (tx *Tx) finish() {
	tx.textChanged = tx.captured && tx.plainText() != tx.before
}

func (tx *Tx) plainText() string {
	var b strings.Builder
	root := tx.doc.nodes[tx.doc.root]
	for i, c := range root.children {
		if i > 0 {
			b.WriteString("\n\n")
		}
		tx.walkFrom(tx.doc.nodes[c], func(e *entry) {
			if e.Kind.IsText() {
				b.WriteString(e.Text)
			}
		})
	}
	return b.String()
}

func (tx *Tx) drop(e *entry) {
	for _, c := range e.children {
		tx.drop(tx.doc.nodes[c])
	}
	delete(tx.doc.nodes, e.id)
}

func (tx *Tx) walk(fn func(e *entry)) {
	tx.walkFrom(tx.doc.nodes[tx.doc.root], fn)
}

func (tx *Tx) walkFrom(e *entry, fn func(e *entry)) {
	fn(e)
	for _, c := range e.children {
		tx.walkFrom(tx.doc.nodes[c], fn)
	}
}
