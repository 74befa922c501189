package output

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/dshills/mythra/internal/analysis"
)

// MarkdownWriter outputs a report suitable for a PR comment or a README.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *analysis.Report) error {
	ew := &errWriter{w: w}
	meta := report.Metadata
	total := report.SuggestionCount()

	ew.printf("## Mythra Gas Analysis\n\n")
	ew.printf("Model: `%s`", meta.ModelUsed)
	if meta.TargetPath != "" {
		ew.printf(" | Target: `%s`", meta.TargetPath)
	}
	ew.printf("\n\n")

	ew.printf("| Files | Count |\n")
	ew.printf("|-------|-------|\n")
	ew.printf("| Processed | %d |\n", meta.Total)
	ew.printf("| With results | %d |\n", meta.Succeeded)
	ew.printf("| With errors | %d |\n", meta.Failed+meta.Skipped)
	ew.printf("| **Suggestions** | **%d** |\n\n", total)

	if total == 0 {
		ew.println("No gas optimizations found. :white_check_mark:")
		ew.println("")
	}

	var failed []string
	for _, path := range report.Paths() {
		o := report.Outcomes[path]
		if o.Status != analysis.StatusSucceeded {
			failed = append(failed, path)
			continue
		}
		if len(o.Suggestions) == 0 {
			continue
		}

		ew.printf("<details>\n<summary><code>%s</code> (%d)</summary>\n\n", path, len(o.Suggestions))
		for _, s := range o.Suggestions {
			ew.printf("### %s\n\n", s.Description)
			ew.printf("**Lines `%s`**", LineRange(s))
			if s.EstimatedGasSaved != nil && *s.EstimatedGasSaved != "" {
				ew.printf(" | Gas saved: %s", *s.EstimatedGasSaved)
			}
			ew.printf("\n\n")
			if s.SafetyRationale != "" {
				ew.printf("%s\n\n", s.SafetyRationale)
			}
			if change := strings.TrimSpace(s.SuggestedChange); change != "" {
				ew.printf("**Suggested change:**\n\n")
				if looksLikeCode(change) {
					ew.printf("```%s\n%s\n```\n\n", inferLang(path), change)
				} else {
					ew.printf("> %s\n\n", strings.ReplaceAll(change, "\n", "\n> "))
				}
			}
			ew.printf("---\n\n")
		}
		ew.printf("</details>\n\n")
	}

	if len(failed) > 0 {
		ew.printf("### Errors (%d)\n\n", len(failed))
		ew.printf("| File | Reason |\n")
		ew.printf("|------|--------|\n")
		for _, path := range failed {
			ew.printf("| `%s` | %s |\n", path, mdCell(report.Outcomes[path].Reason))
		}
		ew.println("")
	}

	return ew.err
}

// mdCell keeps a value on one table row.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func looksLikeCode(s string) bool {
	codeIndicators := []string{
		"function ", "for (", "if (", "return ", "uint", "int256", "bytes",
		"mapping(", "memory", "calldata", "storage", "unchecked",
		"{", "}", ";", "=>", "==", "++",
	}
	for _, indicator := range codeIndicators {
		if strings.Contains(s, indicator) {
			return true
		}
	}
	return false
}

func inferLang(path string) string {
	switch filepath.Ext(path) {
	case ".sol":
		return "solidity"
	case ".vy":
		return "python"
	case ".yul":
		return "yul"
	default:
		return ""
	}
}
