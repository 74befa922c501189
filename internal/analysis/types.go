package analysis

import (
	"cmp"
	"slices"
)

// Artifact is one source file submitted for analysis. Err is set when the
// collector failed to read or decode the file; Content is then empty.
type Artifact struct {
	Path    string
	Content string
	Err     error
}

// Suggestion is one gas optimization recommendation extracted from a
// model response.
type Suggestion struct {
	Description       string  `json:"description"`
	SuggestedChange   string  `json:"suggested_change"`
	EstimatedGasSaved *string `json:"estimated_gas_saved"`
	SafetyRationale   string  `json:"safety_rationale"`
	StartLine         *int    `json:"start_line"`
	EndLine           *int    `json:"end_line"`
}

// Status is the terminal state of an artifact.
type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Outcome is the settled result for one artifact. Reason is set for
// skipped and failed outcomes, Suggestions for succeeded ones.
type Outcome struct {
	Status      Status
	Reason      string
	Suggestions []Suggestion
}

// Metadata describes a run.
type Metadata struct {
	Command    string
	TargetPath string
	ModelUsed  string
	// Total counts distinct artifact paths. Repeated paths are dropped
	// before counting so Total always equals Succeeded+Failed+Skipped.
	Total      int
	Succeeded  int
	Failed     int
	Skipped    int
}

// Report aggregates the outcomes of one run, keyed by artifact path.
type Report struct {
	Outcomes map[string]Outcome
	Metadata Metadata
}

// Paths returns the artifact paths in lexicographic order.
func (r *Report) Paths() []string {
	paths := make([]string, 0, len(r.Outcomes))
	for p := range r.Outcomes {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// SuggestionCount returns the total number of suggestions across all
// succeeded outcomes.
func (r *Report) SuggestionCount() int {
	n := 0
	for _, o := range r.Outcomes {
		n += len(o.Suggestions)
	}
	return n
}

// finalize computes the metadata counts. It must run after every outcome
// has been recorded.
func (r *Report) finalize() {
	r.Metadata.Total = len(r.Outcomes)
	r.Metadata.Succeeded, r.Metadata.Failed, r.Metadata.Skipped = 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusSucceeded:
			r.Metadata.Succeeded++
		case StatusFailed:
			r.Metadata.Failed++
		case StatusSkipped:
			r.Metadata.Skipped++
		}
	}
}

// SortSuggestions orders suggestions by ascending start line. Entries
// without a start line go last; ties keep their original order.
func SortSuggestions(s []Suggestion) {
	slices.SortStableFunc(s, func(a, b Suggestion) int {
		switch {
		case a.StartLine == nil && b.StartLine == nil:
			return 0
		case a.StartLine == nil:
			return 1
		case b.StartLine == nil:
			return -1
		default:
			return cmp.Compare(*a.StartLine, *b.StartLine)
		}
	})
}
