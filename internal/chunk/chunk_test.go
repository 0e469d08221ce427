package chunk

import (
	"strings"
	"testing"
)

func TestParagraphs(t *testing.T) {
	text := "  First para.\nstill first.\n\n\n Second.  \n \t\nThird"
	segments := Paragraphs(text)
	if len(segments) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %+v", len(segments), segments)
	}
	for i, s := range segments {
		if s.Index != i {
			t.Fatalf("expected index %d, got %d", i, s.Index)
		}
		if text[s.Start:s.End] != s.Text {
			t.Fatalf("segment offsets do not match text: %+v", s)
		}
	}
	if segments[0].Text != "First para.\nstill first." {
		t.Fatalf("unexpected first paragraph %q", segments[0].Text)
	}
	if segments[2].Text != "Third" {
		t.Fatalf("unexpected last paragraph %q", segments[2].Text)
	}
}

func TestParagraphsCoversAllWords(t *testing.T) {
	words := make([]string, 500)
	for i := range words {
		words[i] = "word"
		if i%50 == 49 {
			words[i] += "\n\n"
		}
	}
	text := strings.Join(words, " ")
	total := 0
	for _, s := range Paragraphs(text) {
		total += len(strings.Fields(s.Text))
	}
	if total != 500 {
		t.Fatalf("data loss: expected 500 words, got %d", total)
	}
}

func TestParagraphsBlank(t *testing.T) {
	if got := Paragraphs(" \n\n \t"); got != nil {
		t.Fatalf("expected nil for blank input, got %+v", got)
	}
}
