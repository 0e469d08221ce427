package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"prose_lens/internal/doc"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	if err := root.Execute(); err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, errOut.String())
	}
	return out.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestInitCreatesWorkspace(t *testing.T) {
	ws := filepath.Join(t.TempDir(), "ws")
	out := run(t, "--workspace", ws, "init")
	if !strings.Contains(out, ws) {
		t.Fatalf("expected workspace path in output, got %q", out)
	}
	if _, err := os.Stat(filepath.Join(ws, "configs", "settings.toml")); err != nil {
		t.Fatalf("expected settings file: %v", err)
	}
}

func TestAnalyzeJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "draft.txt", "She ran quickly. The cake was eaten.")
	out := run(t, "--workspace", filepath.Join(dir, "ws"), "--format", "json", "analyze", path)

	var got []struct {
		Name   string `json:"name"`
		Result struct {
			WordCount int `json:"wordCount"`
			Issues    []struct {
				Type string `json:"type"`
			} `json:"issues"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(got) != 1 || got[0].Name != "draft" || got[0].Result.WordCount != 7 || len(got[0].Result.Issues) != 2 {
		t.Fatalf("unexpected output %+v", got)
	}
}

func TestHighlightPlain(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "draft.md", "He was **very** tired. She ran quickly.")
	out := run(t, "--workspace", filepath.Join(dir, "ws"), "highlight", "--plain", "--hover", "adverb", path)
	if !strings.Contains(out, "He was very tired. She ran {adverb:quickly}.") {
		t.Fatalf("expected marked tree in output, got:\n%s", out)
	}
}

func TestImportAndAnalyzeDraft(t *testing.T) {
	dir := t.TempDir()
	ws := filepath.Join(dir, "ws")
	path := writeFile(t, dir, "chapter.txt", "It was finished quickly.")

	out := run(t, "--workspace", ws, "import", path)
	if !strings.Contains(out, "draft:1") {
		t.Fatalf("expected draft id, got %q", out)
	}
	if out := run(t, "--workspace", ws, "drafts"); !strings.Contains(out, "chapter") {
		t.Fatalf("expected draft listed, got %q", out)
	}
	if out := run(t, "--workspace", ws, "analyze", "draft:1"); !strings.Contains(out, "passive") {
		t.Fatalf("expected analysis of the stored draft, got %q", out)
	}
	run(t, "--workspace", ws, "drafts", "delete", "1")
	if out := run(t, "--workspace", ws, "drafts"); !strings.Contains(out, "No drafts.") {
		t.Fatalf("expected empty list, got %q", out)
	}
}

func TestReportWritesFile(t *testing.T) {
	dir := t.TempDir()
	ws := filepath.Join(dir, "ws")
	a := writeFile(t, dir, "a.txt", "One short line.")
	b := writeFile(t, dir, "b.md", "Another **bold** line.")
	out := run(t, "--workspace", ws, "report", "--title", "book", a, b)
	if !strings.Contains(out, "Report written to:") {
		t.Fatalf("expected report path, got %q", out)
	}
	matches, err := filepath.Glob(filepath.Join(ws, "reports", "*", "report.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one report file, got %v (%v)", matches, err)
	}
}

func TestInvalidFormat(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--workspace", t.TempDir(), "--format", "xml", "drafts"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestWatchFileReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "live.txt", "First version.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded := make(chan []doc.Block, 1)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 10*time.Millisecond, func(blocks []doc.Block) {
			select {
			case reloaded <- blocks:
			default:
			}
		})
	}()

	time.Sleep(30 * time.Millisecond)
	writeFile(t, dir, "live.txt", "Second, longer version.")

	select {
	case blocks := <-reloaded:
		if got := doc.FromBlocks(blocks).Flatten(); got != "Second, longer version." {
			t.Fatalf("unexpected reloaded text %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch never reloaded the file")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch returned %v", err)
	}
}
