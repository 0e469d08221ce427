package offline

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"prose_lens/internal/analysis"
	"prose_lens/internal/db"
	"prose_lens/internal/doc"
	"prose_lens/internal/highlight"
	"prose_lens/internal/pipeline"
)

type failTransport struct{}

func (f failTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("network disabled for offline test")
}

func TestOfflineMode(t *testing.T) {
	original := http.DefaultTransport
	http.DefaultTransport = failTransport{}
	t.Cleanup(func() { http.DefaultTransport = original })

	text := strings.Repeat("This is really a sentence that was written quickly. ", 200)
	d := doc.FromText(text)
	d.Register(doc.KindHighlight)

	flat := d.Flatten()
	res := analysis.Analyze(flat)
	if res.WordCount == 0 || len(res.Issues) == 0 {
		t.Fatal("expected analysis to work offline")
	}

	r, err := highlight.New(d)
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}
	if stats, ok := r.Apply(d, flat, res.Issues); !ok || stats.Tagged == 0 {
		t.Fatalf("expected highlighting to work offline, got %+v", stats)
	}

	out, err := pipeline.AnalyzeAll(context.Background(), []pipeline.Input{{Name: "a", Text: text}}, 1)
	if err != nil || len(out) != 1 {
		t.Fatalf("expected batch analysis to work offline: %v", err)
	}

	dbPath := filepath.Join(t.TempDir(), "drafts.db")
	if _, err := db.SaveDraft(dbPath, db.Draft{Title: "offline", Blocks: d.Blocks()}); err != nil {
		t.Fatalf("expected draft storage to work offline: %v", err)
	}
}
