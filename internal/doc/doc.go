package doc

import (
	"errors"
	"fmt"
	"sync"
)

var ErrUnknownKind = errors.New("node kind not registered")

type NodeID uint64

type Kind string

const (
	KindRoot      Kind = "root"
	KindParagraph Kind = "paragraph"
	KindHeading   Kind = "heading"
	KindText      Kind = "text"
	// KindHighlight is a text node tagged with an issue category. It is not
	// registered by default; the highlighter registers it before first use.
	KindHighlight Kind = "highlight"
)

func (k Kind) IsText() bool {
	return k == KindText || k == KindHighlight
}

type Format uint8

const (
	Bold Format = 1 << iota
	Italic
	Code
)

func (f Format) Has(flag Format) bool {
	return f&flag != 0
}

// Node is the value form of a node, used to create or replace one.
type Node struct {
	Kind     Kind
	Text     string
	Format   Format
	Category string
	Level    int
}

type TextNode struct {
	ID   NodeID
	Text string
}

type TaggedNode struct {
	ID       NodeID
	Category string
}

// Batch describes one committed Update.
type Batch struct {
	Seq         uint64
	Origin      string
	TextChanged bool
	Ops         int
}

type entry struct {
	Node
	id       NodeID
	parent   NodeID
	children []NodeID
}

// Document is an in-memory editing surface. All mutations go through Update,
// which serializes writers and notifies listeners once per batch.
type Document struct {
	mu     sync.Mutex
	nextID NodeID
	seq    uint64
	root   NodeID
	nodes  map[NodeID]*entry
	kinds  map[Kind]struct{}

	listenMu   sync.Mutex
	listeners  map[int]func(Batch)
	nextListen int
}

func New() *Document {
	d := &Document{
		nodes:     map[NodeID]*entry{},
		kinds:     map[Kind]struct{}{},
		listeners: map[int]func(Batch){},
	}
	d.Register(KindRoot, KindParagraph, KindHeading, KindText)
	d.root = d.newEntry(Node{Kind: KindRoot}, 0).id
	return d
}

// Register makes node kinds available to Update callers.
func (d *Document) Register(kinds ...Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range kinds {
		d.kinds[k] = struct{}{}
	}
}

func (d *Document) Registered(kind Kind) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.kinds[kind]
	return ok
}

// OnUpdate registers fn to run after every committed batch that performed at
// least one operation. The returned func removes the listener.
func (d *Document) OnUpdate(fn func(Batch)) func() {
	d.listenMu.Lock()
	defer d.listenMu.Unlock()
	id := d.nextListen
	d.nextListen++
	d.listeners[id] = fn
	return func() {
		d.listenMu.Lock()
		defer d.listenMu.Unlock()
		delete(d.listeners, id)
	}
}

// Update runs fn as a single batch. Listeners run after the lock is released,
// on the caller's goroutine.
func (d *Document) Update(origin string, fn func(tx *Tx)) Batch {
	d.mu.Lock()
	tx := &Tx{doc: d}
	fn(tx)
	tx.finish()
	batch := Batch{Origin: origin, TextChanged: tx.textChanged, Ops: tx.ops}
	if tx.ops > 0 {
		d.seq++
	}
	batch.Seq = d.seq
	d.mu.Unlock()

	if batch.Ops > 0 {
		d.notify(batch)
	}
	return batch
}

// View runs fn against a consistent read-only view of the tree.
func (d *Document) View(fn func(tx *Tx)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&Tx{doc: d, readOnly: true})
}

func (d *Document) Seq() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

func (d *Document) Flatten() string {
	var out string
	d.View(func(tx *Tx) { out = tx.Flatten() })
	return out
}

func (d *Document) TextNodes() []TextNode {
	var out []TextNode
	d.View(func(tx *Tx) { out = tx.TextNodes() })
	return out
}

func (d *Document) TaggedNodes() []TaggedNode {
	var out []TaggedNode
	d.View(func(tx *Tx) { out = tx.TaggedNodes() })
	return out
}

func (d *Document) Blocks() []Block {
	var out []Block
	d.View(func(tx *Tx) { out = tx.Blocks() })
	return out
}

func (d *Document) notify(b Batch) {
	d.listenMu.Lock()
	fns := make([]func(Batch), 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.listenMu.Unlock()
	for _, fn := range fns {
		fn(b)
	}
}

func (d *Document) newEntry(n Node, parent NodeID) *entry {
	if _, ok := d.kinds[n.Kind]; !ok {
		panic(fmt.Errorf("%w: %s", ErrUnknownKind, n.Kind))
	}
	d.nextID++
	e := &entry{Node: n, id: d.nextID, parent: parent}
	d.nodes[e.id] = e
	return e
}
