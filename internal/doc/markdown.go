package doc

import (
	"strings"

	"prose_lens/internal/chunk"
)

// BlocksFromMarkdown reads the subset of markdown Flatten writes: '#'
// headings, ** bold, * italic, `code` and backslash escapes. Flattening the
// result gives back the input for text Flatten produced.
func BlocksFromMarkdown(text string) []Block {
	segments := chunk.Paragraphs(text)
	out := make([]Block, 0, len(segments))
	for _, seg := range segments {
		b := blockFromParagraph(seg.Text)
		var src strings.Builder
		for _, r := range b.Runs {
			src.WriteString(r.Text)
		}
		b.Runs = parseInline(src.String())
		out = append(out, b)
	}
	return out
}

func FromMarkdown(text string) *Document {
	return FromBlocks(BlocksFromMarkdown(text))
}

func parseInline(s string) []Run {
	var runs []Run
	var cur strings.Builder
	var format Format
	emit := func() {
		if cur.Len() == 0 {
			return
		}
		text := cur.String()
		cur.Reset()
		if n := len(runs); n > 0 && runs[n-1].Format == format {
			runs[n-1].Text += text
			return
		}
		runs = append(runs, Run{Text: text, Format: format})
	}

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s) && strings.IndexByte("\\*`", s[i+1]) >= 0:
			i++
			cur.WriteByte(s[i])
		case c == '`':
			end := strings.IndexByte(s[i+1:], '`')
			if end < 0 {
				cur.WriteByte(c)
				continue
			}
			emit()
			saved := format
			format = Code
			cur.WriteString(s[i+1 : i+1+end])
			emit()
			format = saved
			i += end + 1
		case c == '*':
			emit()
			k := len(s[i:]) - len(strings.TrimLeft(s[i:], "*"))
			format = starMarks(format, k)
			i += k - 1
		default:
			cur.WriteByte(c)
		}
	}
	emit()
	return runs
}

// starMarks applies a cluster of k stars. Flatten wraps every run on its own,
// so a cluster first closes the marks of the current run and then opens the
// marks of the next one.
func starMarks(format Format, k int) Format {
	if format.Has(Bold) {
		k -= 2
	}
	if format.Has(Italic) {
		k--
	}
	format &^= Bold | Italic
	switch {
	case k == 1:
		format |= Italic
	case k == 2:
		format |= Bold
	case k >= 3:
		format |= Bold | Italic
	}
	return format
}
