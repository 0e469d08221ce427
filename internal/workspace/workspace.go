package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"prose_lens/internal/analysis"
)

const BaseDirName = "ProseLens"

var ErrInvalidSettings = errors.New("invalid settings")

type Settings struct {
	Analysis  AnalysisSettings  `toml:"analysis"`
	Highlight HighlightSettings `toml:"highlight"`
	Output    OutputSettings    `toml:"output"`
}

type AnalysisSettings struct {
	DelayMS int `toml:"delay_ms"`
	Workers int `toml:"workers"`
}

type HighlightSettings struct {
	DelayMS    int      `toml:"delay_ms"`
	Categories []string `toml:"categories"`
	AllOn      bool     `toml:"all_on"`
}

type OutputSettings struct {
	Format string `toml:"format"`
}

func DefaultSettings() Settings {
	categories := make([]string, 0, len(analysis.Types))
	for _, t := range analysis.Types {
		categories = append(categories, string(t))
	}
	return Settings{
		Analysis:  AnalysisSettings{DelayMS: 750},
		Highlight: HighlightSettings{DelayMS: 150, Categories: categories, AllOn: true},
		Output:    OutputSettings{Format: "console"},
	}
}

func (s Settings) AnalysisDelay() time.Duration {
	return time.Duration(s.Analysis.DelayMS) * time.Millisecond
}

func (s Settings) HighlightDelay() time.Duration {
	return time.Duration(s.Highlight.DelayMS) * time.Millisecond
}

func (s Settings) IssueTypes() []analysis.IssueType {
	out := make([]analysis.IssueType, 0, len(s.Highlight.Categories))
	for _, c := range s.Highlight.Categories {
		out = append(out, analysis.IssueType(c))
	}
	return out
}

func (s Settings) validate() error {
	for _, c := range s.Highlight.Categories {
		if !analysis.IssueType(c).Valid() {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidSettings, c)
		}
	}
	switch s.Output.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidSettings, s.Output.Format)
	}
	if s.Analysis.DelayMS < 0 || s.Highlight.DelayMS < 0 || s.Analysis.Workers < 0 {
		return fmt.Errorf("%w: negative delay or worker count", ErrInvalidSettings)
	}
	return nil
}

func SettingsPath(base string) string {
	return filepath.Join(base, "configs", "settings.toml")
}

func DraftsPath(base string) string {
	return filepath.Join(base, "data", "drafts.db")
}

func EnsureDefault() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return EnsureAt(filepath.Join(home, BaseDirName))
}

func EnsureAt(base string) (string, error) {
	paths := []string{
		filepath.Join(base, "configs"),
		filepath.Join(base, "data"),
		filepath.Join(base, "reports"),
	}

	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", p, err)
		}
	}

	if _, err := os.Stat(SettingsPath(base)); os.IsNotExist(err) {
		if err := SaveSettings(base, DefaultSettings()); err != nil {
			return "", err
		}
	}

	return base, nil
}

// LoadSettings reads the workspace settings. Keys missing from the file keep
// their defaults; a missing file yields the defaults.
func LoadSettings(base string) (Settings, error) {
	s := DefaultSettings()
	path := SettingsPath(base)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	}
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Settings{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	s.Output.Format = strings.ToLower(strings.TrimSpace(s.Output.Format))
	if err := s.validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func SaveSettings(base string, s Settings) error {
	if err := s.validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(SettingsPath(base), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
