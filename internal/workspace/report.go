package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Report struct {
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Documents   any       `json:"documents"`
}

type ReportInfo struct {
	ID   string
	Root string
	Path string
}

// WriteReport stores report under reports/<id>/report.json, where id is
// derived from the title so reruns overwrite the previous report.
func WriteReport(workspaceRoot string, report Report) (*ReportInfo, error) {
	id := titleHash(report.Title)
	root := filepath.Join(workspaceRoot, "reports", id)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}
	report.Title = strings.TrimSpace(report.Title)

	path := filepath.Join(root, "report.json")
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return &ReportInfo{ID: id, Root: root, Path: path}, nil
}

func titleHash(title string) string {
	trimmed := strings.TrimSpace(strings.ToLower(title))
	sum := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(sum[:])[:12]
}
