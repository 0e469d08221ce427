package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"prose_lens/internal/analysis"
	"prose_lens/internal/doc"
)

// TreeOptions controls WriteTree. Plain marks visible tags as {category:text}
// instead of styling them.
type TreeOptions struct {
	Visible map[doc.NodeID]bool
	Plain   bool
}

// WriteTree prints the document block by block with visible highlight tags
// marked.
func WriteTree(w io.Writer, d *doc.Document, opts TreeOptions) error {
	var b strings.Builder
	d.View(func(tx *doc.Tx) {
		for i, block := range tx.Children(tx.Root()) {
			if i > 0 {
				b.WriteString("\n\n")
			}
			n, _ := tx.Node(block)
			if n.Kind == doc.KindHeading {
				b.WriteString(strings.Repeat("#", max(1, n.Level)) + " ")
			}
			for _, id := range tx.Children(block) {
				child, ok := tx.Node(id)
				if !ok {
					continue
				}
				b.WriteString(renderNode(id, child, opts))
			}
		}
	})
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func renderNode(id doc.NodeID, n doc.Node, opts TreeOptions) string {
	if n.Kind != doc.KindHighlight || !opts.Visible[id] {
		return n.Text
	}
	if opts.Plain {
		return fmt.Sprintf("{%s:%s}", n.Category, n.Text)
	}
	color := lipgloss.Color(analysis.Categories[analysis.IssueType(n.Category)].Color)
	return lipgloss.NewStyle().Underline(true).Foreground(color).Render(n.Text)
}
