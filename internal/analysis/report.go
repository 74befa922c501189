package analysis

import (
	"bytes"
	"encoding/json"
)

type reportJSON struct {
	Metadata metadataJSON              `json:"analysis_metadata"`
	Results  map[string]fileResultJSON `json:"results_by_file"`
	Errors   map[string]string         `json:"errors_by_file"`
}

type metadataJSON struct {
	Command       string `json:"command"`
	TargetPath    string `json:"target_path"`
	FilesAnalyzed int    `json:"files_analyzed_count"`
	WithResults   int    `json:"files_with_results_count"`
	WithErrors    int    `json:"files_with_errors_count"`
	ModelUsed     string `json:"model_used"`
}

type fileResultJSON struct {
	Optimizations []Suggestion `json:"optimizations"`
}

// MarshalJSON renders the report in its export shape. Succeeded outcomes
// go to results_by_file, skipped and failed ones to errors_by_file. Map
// keys are emitted in lexicographic order. Source code in suggestions is
// not HTML-escaped.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		Metadata: metadataJSON{
			Command:       r.Metadata.Command,
			TargetPath:    r.Metadata.TargetPath,
			FilesAnalyzed: r.Metadata.Total,
			WithResults:   r.Metadata.Succeeded,
			WithErrors:    r.Metadata.Failed + r.Metadata.Skipped,
			ModelUsed:     r.Metadata.ModelUsed,
		},
		Results: make(map[string]fileResultJSON),
		Errors:  make(map[string]string),
	}
	for path, o := range r.Outcomes {
		if o.Status == StatusSucceeded {
			opts := o.Suggestions
			if opts == nil {
				opts = []Suggestion{}
			}
			out.Results[path] = fileResultJSON{Optimizations: opts}
			continue
		}
		out.Errors[path] = o.Reason
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
