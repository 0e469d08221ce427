package chunk

import (
	"regexp"
	"strings"
)

var blankLines = regexp.MustCompile(`\n[ \t\r]*\n`)

type Segment struct {
	Index int
	Start int
	End   int
	Text  string
}

// Paragraphs splits text on blank lines. Start and End are byte offsets of
// the trimmed paragraph inside text; empty paragraphs are dropped.
func Paragraphs(text string) []Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	bounds := blankLines.FindAllStringIndex(text, -1)
	segments := make([]Segment, 0, len(bounds)+1)
	from := 0
	emit := func(start, end int) {
		raw := text[start:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return
		}
		lead := strings.Index(raw, trimmed)
		segments = append(segments, Segment{
			Index: len(segments),
			Start: start + lead,
			End:   start + lead + len(trimmed),
			Text:  trimmed,
		})
	}
	for _, b := range bounds {
		emit(from, b[0])
		from = b[1]
	}
	emit(from, len(text))

	return segments
}
