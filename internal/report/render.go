package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/contextcraft/internal/model"
)

// RenderJSON writes the report as indented JSON. "-" writes to stdout.
func RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	return writeOutput(path, data)
}

// RenderMarkdown writes a human-readable Markdown report
func RenderMarkdown(report *model.Report, path string) error {
	return writeOutput(path, []byte(Markdown(report)))
}

// RenderTransformed writes only the transformed document text
func RenderTransformed(report *model.Report, path string) error {
	return writeOutput(path, []byte(report.TransformedMarkdown+"\n"))
}

// Markdown formats the report as Markdown
func Markdown(report *model.Report) string {
	var b strings.Builder

	b.WriteString("# ContextCraft Report\n\n")

	status := "PASS"
	if report.Validation.FidelityScore != 1 {
		status = "FAIL"
	}
	modified := countModified(report)
	fmt.Fprintf(&b, "- **Fidelity:** %d (%s)\n", report.Validation.FidelityScore, status)
	fmt.Fprintf(&b, "- **Chunks:** %d (%d modified)\n", len(report.Changes), modified)
	if report.Debug != nil {
		fmt.Fprintf(&b, "- **Profile:** %s\n", report.Debug.Profile)
		fmt.Fprintf(&b, "- **Strength:** %s\n", report.Debug.Strength)
	}
	b.WriteString("\n")

	if len(report.Validation.Warnings) > 0 {
		b.WriteString("## Validation Warnings\n\n")
		for _, w := range report.Validation.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Changes\n\n")
	b.WriteString("| # | Type | Change | Rule | +/- | Reason |\n")
	b.WriteString("|---|------|--------|------|-----|--------|\n")
	for i, c := range report.Changes {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | +%d/-%d | %s |\n",
			i+1, c.NodeType, c.ChangeType, c.RuleID, c.CharsAdded, c.CharsRemoved, escapeCell(c.Reason))
	}
	b.WriteString("\n")

	var notes []string
	for i, c := range report.Changes {
		for _, w := range c.Warnings {
			notes = append(notes, fmt.Sprintf("- #%d: `%s`", i+1, w))
		}
	}
	if len(notes) > 0 {
		b.WriteString("## Rewrite Warnings\n\n")
		b.WriteString(strings.Join(notes, "\n"))
		b.WriteString("\n\n")
	}

	if report.Diff != "" {
		b.WriteString("## Diff\n\n```diff\n")
		b.WriteString(report.Diff)
		b.WriteString("\n```\n\n")
	}

	b.WriteString("## Transformed\n\n")
	b.WriteString(report.TransformedMarkdown)
	b.WriteString("\n")

	return b.String()
}

// RenderSummary prints a short summary for the terminal
func RenderSummary(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "Chunks:   %d (%d modified)\n", len(report.Changes), countModified(report))
	fmt.Fprintf(w, "Fidelity: %d\n", report.Validation.FidelityScore)

	fallbacks := 0
	for _, c := range report.Changes {
		for _, warn := range c.Warnings {
			if strings.HasPrefix(warn, "fallback_to_original") {
				fallbacks++
			}
		}
	}
	if fallbacks > 0 {
		fmt.Fprintf(w, "Fallbacks: %d chunk(s) kept original text\n", fallbacks)
	}
	for _, warn := range report.Validation.Warnings {
		fmt.Fprintf(w, "  ! %s\n", warn)
	}
}

func countModified(report *model.Report) int {
	n := 0
	for _, c := range report.Changes {
		if c.ChangeType == model.ChangeModify {
			n++
		}
	}
	return n
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
