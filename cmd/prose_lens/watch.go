package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"prose_lens/internal/analysis"
	"prose_lens/internal/doc"
	"prose_lens/internal/ingest"
	"prose_lens/internal/pipeline"
	"prose_lens/internal/render"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-analyse a file whenever it changes on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, settings, err := opts.open()
			if err != nil {
				return err
			}
			path := args[0]
			parsed, err := ingest.ParseFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			d := parsed.Document()
			d.Register(doc.KindHighlight)
			var mu sync.Mutex
			w := cmd.OutOrStdout()
			session, err := pipeline.NewSession(d, pipeline.Options{
				AnalysisDelay:  settings.AnalysisDelay(),
				HighlightDelay: settings.HighlightDelay(),
				Categories:     settings.IssueTypes(),
				OnResult: func(res analysis.Result) {
					mu.Lock()
					defer mu.Unlock()
					if settings.Output.Format == "json" {
						_ = render.WriteJSON(w, pipeline.Output{Name: parsed.Title, Result: res})
						return
					}
					_ = render.WriteResult(w, parsed.Title, res, 0)
				},
			})
			if err != nil {
				return err
			}
			defer session.Close()
			session.AnalyzeNow()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchFile(ctx, path, interval, func(blocks []doc.Block) {
				d.Update("user", func(tx *doc.Tx) { tx.SetBlocks(blocks) })
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "how often to check the file for changes")
	return cmd
}

// watchFile polls path until ctx is done and hands freshly parsed blocks to
// reload whenever the modification time or size changes. Parse failures are
// logged and retried on the next change.
func watchFile(ctx context.Context, path string, interval time.Duration, reload func([]doc.Block)) error {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	lastMod, lastSize := info.ModTime(), info.Size()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		info, err := os.Stat(path)
		if err != nil {
			slog.Warn("watch.stat", "file", path, "error", err)
			continue
		}
		if info.ModTime().Equal(lastMod) && info.Size() == lastSize {
			continue
		}
		lastMod, lastSize = info.ModTime(), info.Size()
		parsed, err := ingest.ParseFile(path)
		if err != nil {
			slog.Warn("watch.parse", "file", path, "error", err)
			continue
		}
		slog.Debug("watch.reload", "file", path, "blocks", len(parsed.Blocks))
		reload(parsed.Blocks)
	}
}
