package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/mythra/internal/analysis"
)

func intp(n int) *int       { return &n }
func strp(s string) *string { return &s }

func sampleReport() *analysis.Report {
	return &analysis.Report{
		Outcomes: map[string]analysis.Outcome{
			"src/Vault.sol": {Status: analysis.StatusSucceeded, Suggestions: []analysis.Suggestion{
				{
					Description:       "Cache array length outside the loop",
					SuggestedChange:   "uint256 len = arr.length;\nfor (uint256 i; i < len; ++i) {}",
					EstimatedGasSaved: strp("~100 gas per iteration"),
					SafetyRationale:   "The array is not modified inside the loop.",
					StartLine:         intp(12),
					EndLine:           intp(15),
				},
				{Description: "Use custom errors", SafetyRationale: "Same revert semantics."},
			}},
			"src/Empty.sol": {Status: analysis.StatusSkipped, Reason: analysis.ReasonEmptyFile},
			"src/Bad.sol":   {Status: analysis.StatusFailed, Reason: "Analysis failed (transient after 3 attempt(s)): boom"},
			"src/Clean.sol": {Status: analysis.StatusSucceeded, Suggestions: []analysis.Suggestion{}},
		},
		Metadata: analysis.Metadata{
			TargetPath: "src",
			ModelUsed:  "gpt-4o",
			Total:      4,
			Succeeded:  2,
			Failed:     1,
			Skipped:    1,
		},
	}
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"model: gpt-4o",
		"Files: 4 processed, 2 with results, 2 with errors",
		"Suggestions: 2 total",
		"No gas optimizations found.",
		"Found 2 potential optimizations",
		"#1  Lines 12-15  Cache array length outside the loop",
		"Gas saved: ~100 gas per iteration",
		"        for (uint256 i; i < len; ++i) {}",
		"#2  Lines N/A  Use custom errors",
		"src/Empty.sol: Empty file",
		"src/Bad.sol: Analysis failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	if strings.Index(out, "src/Clean.sol") > strings.Index(out, "src/Vault.sol") {
		t.Error("files should be listed in lexicographic order")
	}
	if strings.Index(out, "src/Bad.sol") > strings.Index(out, "src/Empty.sol") {
		t.Error("errors should be listed in lexicographic order")
	}
}

func TestLineRange(t *testing.T) {
	tests := []struct {
		s    analysis.Suggestion
		want string
	}{
		{analysis.Suggestion{}, "N/A"},
		{analysis.Suggestion{StartLine: intp(3)}, "3"},
		{analysis.Suggestion{StartLine: intp(3), EndLine: intp(3)}, "3"},
		{analysis.Suggestion{StartLine: intp(3), EndLine: intp(9)}, "3-9"},
	}
	for _, tt := range tests {
		if got := LineRange(tt.s); got != tt.want {
			t.Errorf("LineRange(%+v) = %q, want %q", tt.s, got, tt.want)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestTextWriter_PropagatesWriteError(t *testing.T) {
	err := (&TextWriter{}).Write(failingWriter{}, sampleReport())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("err = %v, want disk full", err)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if len(lines) < 2 {
		t.Errorf("expected wrapping, got %v", lines)
	}
}
