package pipeline

import (
	"log/slog"
	"sync"
	"time"

	"prose_lens/internal/analysis"
	"prose_lens/internal/doc"
	"prose_lens/internal/highlight"
	"prose_lens/internal/schedule"
)

const (
	DefaultAnalysisDelay  = 750 * time.Millisecond
	DefaultHighlightDelay = 150 * time.Millisecond
)

type Options struct {
	AnalysisDelay  time.Duration
	HighlightDelay time.Duration
	// Categories limits which issue types get highlighted. Empty means all.
	Categories []analysis.IssueType
	// OnResult is called after every analysis pass, from the goroutine that
	// ran it.
	OnResult func(analysis.Result)
}

// Session keeps one document's highlights in step with its text: text edits
// schedule an analysis pass, and a pass whose issues differ from the last
// applied set schedules a reconciliation.
type Session struct {
	doc      *doc.Document
	rec      *highlight.Reconciler
	onResult func(analysis.Result)

	analyzeLater   *schedule.Debouncer
	highlightLater *schedule.Debouncer
	stop           func()

	passMu  sync.Mutex
	mu      sync.Mutex
	result  analysis.Result
	applied []analysis.Issue
	hasPass bool
	closed  bool
}

// NewSession fails when d has not registered doc.KindHighlight.
func NewSession(d *doc.Document, opts Options) (*Session, error) {
	rec, err := highlight.New(d, opts.Categories...)
	if err != nil {
		return nil, err
	}
	if opts.AnalysisDelay <= 0 {
		opts.AnalysisDelay = DefaultAnalysisDelay
	}
	if opts.HighlightDelay <= 0 {
		opts.HighlightDelay = DefaultHighlightDelay
	}
	s := &Session{
		doc:            d,
		rec:            rec,
		onResult:       opts.OnResult,
		analyzeLater:   schedule.New(opts.AnalysisDelay),
		highlightLater: schedule.New(opts.HighlightDelay),
	}
	s.stop = d.OnUpdate(s.onUpdate)
	return s, nil
}

func (s *Session) onUpdate(b doc.Batch) {
	if b.Origin == highlight.Origin || !b.TextChanged {
		return
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	s.highlightLater.Cancel()
	s.analyzeLater.Schedule(s.analyze)
}

// AnalyzeNow runs any pending analysis immediately, applies its highlights
// and returns the result.
func (s *Session) AnalyzeNow() analysis.Result {
	s.analyzeLater.Cancel()
	s.analyze()
	s.highlightLater.Flush()
	return s.Result()
}

func (s *Session) Result() analysis.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Close detaches the session from the document and drops pending work.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.stop()
	s.analyzeLater.Cancel()
	s.highlightLater.Cancel()
}

func (s *Session) analyze() {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	started := time.Now()
	flat := s.doc.Flatten()
	res := analysis.Analyze(flat)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.result = res
	unchanged := s.hasPass && analysis.SameIssues(s.applied, res.Issues)
	s.mu.Unlock()

	slog.Debug("pipeline.analyze", "words", res.WordCount, "issues", len(res.Issues), "score", res.Score,
		"unchanged", unchanged, "elapsed", time.Since(started))
	if s.onResult != nil {
		s.onResult(res)
	}
	if unchanged {
		return
	}
	s.highlightLater.Schedule(func() { s.reconcile(flat, res.Issues) })
}

func (s *Session) reconcile(flat string, issues []analysis.Issue) {
	stats, ok := s.rec.Apply(s.doc, flat, issues)
	if !ok {
		slog.Debug("pipeline.reconcile", "stage", "stale")
		return
	}
	s.mu.Lock()
	s.applied = issues
	s.hasPass = true
	s.mu.Unlock()
	slog.Debug("pipeline.reconcile", "cleared", stats.Cleared, "kept", stats.Kept,
		"tagged", stats.Tagged, "skipped", stats.Skipped)
}
