package doc

import (
	"strings"

	"prose_lens/internal/chunk"
)

var markdownEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, "`", "\\`")

type Run struct {
	Text   string `msgpack:"text"`
	Format Format `msgpack:"format,omitempty"`
}

type Block struct {
	Kind  Kind  `msgpack:"kind"`
	Level int   `msgpack:"level,omitempty"`
	Runs  []Run `msgpack:"runs"`
}

// Flatten serializes the tree to the markdown-like string analysis runs on.
// Adjacent text nodes with the same format share one pair of marks, so
// splitting a node never changes the output.
func (tx *Tx) Flatten() string {
	blocks := tx.Blocks()
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		var line strings.Builder
		if b.Kind == KindHeading {
			line.WriteString(strings.Repeat("#", max(1, b.Level)))
			line.WriteString(" ")
		}
		for _, r := range b.Runs {
			line.WriteString(markRun(r))
		}
		parts = append(parts, line.String())
	}
	return strings.Join(parts, "\n\n")
}

// Blocks exports the tree as blocks of runs. Highlight tags are dropped and
// adjacent runs with equal format are merged.
func (tx *Tx) Blocks() []Block {
	root := tx.doc.nodes[tx.doc.root]
	out := make([]Block, 0, len(root.children))
	for _, id := range root.children {
		e := tx.doc.nodes[id]
		b := Block{Kind: e.Kind, Level: e.Level}
		for _, c := range e.children {
			child := tx.doc.nodes[c]
			if !child.Kind.IsText() || child.Text == "" {
				continue
			}
			if n := len(b.Runs); n > 0 && b.Runs[n-1].Format == child.Format {
				b.Runs[n-1].Text += child.Text
				continue
			}
			b.Runs = append(b.Runs, Run{Text: child.Text, Format: child.Format})
		}
		out = append(out, b)
	}
	return out
}

func markRun(r Run) string {
	if r.Format.Has(Code) {
		return "`" + r.Text + "`"
	}
	text := markdownEscaper.Replace(r.Text)
	if r.Format.Has(Italic) {
		text = "*" + text + "*"
	}
	if r.Format.Has(Bold) {
		text = "**" + text + "**"
	}
	return text
}

// FromBlocks builds a document from exported blocks.
func FromBlocks(blocks []Block) *Document {
	d := New()
	d.Update("load", func(tx *Tx) { tx.SetBlocks(blocks) })
	return d
}

// SetBlocks replaces the whole content of the document with blocks.
func (tx *Tx) SetBlocks(blocks []Block) {
	tx.Clear()
	for _, b := range blocks {
		kind := b.Kind
		if kind != KindHeading {
			kind = KindParagraph
		}
		tx.AppendBlock(kind, b.Level, b.Runs...)
	}
}

// FromText builds a document with one block per blank-line separated
// paragraph. Paragraphs opening with '#' become headings.
func FromText(text string) *Document {
	return FromBlocks(BlocksFromText(text))
}

func BlocksFromText(text string) []Block {
	segments := chunk.Paragraphs(text)
	out := make([]Block, 0, len(segments))
	for _, seg := range segments {
		out = append(out, blockFromParagraph(seg.Text))
	}
	return out
}

func blockFromParagraph(p string) Block {
	if strings.HasPrefix(p, "#") && !strings.Contains(p, "\n") {
		level := len(p) - len(strings.TrimLeft(p, "#"))
		title := strings.TrimSpace(p[level:])
		if level <= 6 && title != "" {
			return Block{Kind: KindHeading, Level: level, Runs: []Run{{Text: title}}}
		}
	}
	return Block{Kind: KindParagraph, Runs: []Run{{Text: p}}}
}
