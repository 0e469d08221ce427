package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"prose_lens/internal/analysis"
)

const DefaultExcerptWidth = 48

var (
	titleColor = color.New(color.Bold)
	goodColor  = color.New(color.FgGreen, color.Bold)
	fairColor  = color.New(color.FgYellow, color.Bold)
	poorColor  = color.New(color.FgRed, color.Bold)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func badge(t analysis.IssueType) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(analysis.Categories[t].Color)).Bold(true)
}

func scoreColor(score int) *color.Color {
	switch {
	case score >= 80:
		return goodColor
	case score >= 60:
		return fairColor
	default:
		return poorColor
	}
}

// WriteResult prints a human readable summary of res. width bounds issue
// excerpts; zero uses DefaultExcerptWidth.
func WriteResult(w io.Writer, name string, res analysis.Result, width int) error {
	if width <= 0 {
		width = DefaultExcerptWidth
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s  score %s  grade %d  flesch %.1f\n",
		titleColor.Sprint(name), scoreColor(res.Score).Sprint(res.Score), res.GradeLevel, res.FleschScore)
	fmt.Fprintf(&b, "  words %d  sentences %d  paragraphs %d  chars %d  reading %.1f min\n",
		res.WordCount, res.SentenceCount, res.ParagraphCount, res.CharCount, res.ReadingTime)
	rhythm := fmt.Sprintf("  rhythm mean %.1f  sd %.1f", res.Rhythm.MeanSentenceLength, res.Rhythm.SentenceLengthSD)
	if res.Rhythm.Monotone {
		rhythm += "  monotone"
	}
	b.WriteString(dimStyle.Render(rhythm))
	b.WriteString("\n")

	counts := map[analysis.IssueType]int{}
	for _, is := range res.Issues {
		counts[is.Type]++
	}
	var parts []string
	for _, t := range analysis.Types {
		if counts[t] > 0 {
			parts = append(parts, badge(t).Render(string(t))+fmt.Sprintf(" %d", counts[t]))
		}
	}
	if len(parts) == 0 {
		b.WriteString("  no issues\n")
	} else {
		b.WriteString("  " + strings.Join(parts, "  ") + "\n")
	}

	for _, is := range res.Issues {
		label := runewidth.FillRight(string(is.Type), 12)
		fmt.Fprintf(&b, "    %s %q  %s %s\n",
			badge(is.Type).Render(label), truncate(excerpt(is.Text), width), is.Type.Label(),
			dimStyle.Render(fmt.Sprintf("@%d", is.Index)))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func excerpt(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
