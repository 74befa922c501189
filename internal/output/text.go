package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/mythra/internal/analysis"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *analysis.Report) error {
	ew := &errWriter{w: w}
	meta := report.Metadata

	ew.printf("Mythra Gas Analysis (model: %s)\n", meta.ModelUsed)
	if meta.TargetPath != "" {
		ew.printf("Target: %s\n", meta.TargetPath)
	}
	ew.println(strings.Repeat("─", 60))
	ew.printf("Files: %d processed, %d with results, %d with errors\n",
		meta.Total, meta.Succeeded, meta.Failed+meta.Skipped)
	ew.printf("Suggestions: %d total\n", report.SuggestionCount())
	ew.println(strings.Repeat("─", 60))

	paths := report.Paths()
	var failed []string
	for _, path := range paths {
		o := report.Outcomes[path]
		if o.Status != analysis.StatusSucceeded {
			failed = append(failed, path)
			continue
		}
		ew.printf("\n%s\n", path)
		if len(o.Suggestions) == 0 {
			ew.println("  No gas optimizations found.")
			continue
		}
		ew.printf("  Found %d potential optimization%s\n", len(o.Suggestions), plural(len(o.Suggestions)))
		for i, s := range o.Suggestions {
			writeSuggestion(ew, i+1, s)
		}
	}

	if len(failed) > 0 {
		ew.printf("\nErrors (%d)\n", len(failed))
		ew.println(strings.Repeat("─", 40))
		for _, path := range failed {
			ew.printf("  %s: %s\n", path, report.Outcomes[path].Reason)
		}
	}

	return ew.err
}

func writeSuggestion(ew *errWriter, n int, s analysis.Suggestion) {
	ew.printf("\n  #%d  Lines %s  %s\n", n, LineRange(s), s.Description)
	if s.EstimatedGasSaved != nil && *s.EstimatedGasSaved != "" {
		ew.printf("      Gas saved: %s\n", *s.EstimatedGasSaved)
	}
	if s.SafetyRationale != "" {
		ew.println("      Safety:")
		for _, line := range wrapText(s.SafetyRationale, 66) {
			ew.printf("        %s\n", line)
		}
	}
	if change := strings.TrimSpace(s.SuggestedChange); change != "" {
		ew.println("      Suggested change:")
		for _, line := range strings.Split(change, "\n") {
			ew.printf("        %s\n", strings.TrimRight(line, " \t\r"))
		}
	}
}

// LineRange formats the suggestion's line span: "N/A", "12" or "12-15".
func LineRange(s analysis.Suggestion) string {
	if s.StartLine == nil {
		return "N/A"
	}
	r := strconv.Itoa(*s.StartLine)
	if s.EndLine != nil && *s.EndLine != *s.StartLine {
		r += "-" + strconv.Itoa(*s.EndLine)
	}
	return r
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
