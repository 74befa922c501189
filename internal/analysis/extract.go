package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// fencedList matches a fenced block, optionally tagged json, whose body is
// a bracketed list.
var fencedList = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")

// Extract returns the valid suggestions found in a model response. It never
// fails; unparseable text yields an empty slice.
func Extract(raw string) []Suggestion {
	s, _ := ExtractDiagnostics(raw)
	return s
}

// ExtractDiagnostics is Extract plus the warnings produced while parsing
// and validating. Suggestions keep the order in which they appear in the
// response.
func ExtractDiagnostics(raw string) ([]Suggestion, []string) {
	var warnings []string
	pool, ok := parseWhole(raw)
	if !ok {
		if _, err := decodeJSON(raw); err == nil {
			warnings = append(warnings, "parsed JSON but root is not a list or an optimizations object; scanning for embedded lists")
		} else {
			warnings = append(warnings, "response is not valid JSON; scanning for embedded lists")
		}
		lists := scanLists(raw)
		if len(lists) == 0 {
			warnings = append(warnings, "no JSON list found in response")
		}
		for _, l := range lists {
			pool = append(pool, l...)
		}
	}

	out := make([]Suggestion, 0, len(pool))
	for i, item := range pool {
		s, err := validate(item)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping invalid suggestion %d: %v", i, err))
			continue
		}
		out = append(out, s)
	}
	return out, warnings
}

// parseWhole accepts the entire text as either a JSON list or an object
// carrying an "optimizations" list.
func parseWhole(raw string) ([]any, bool) {
	v, err := decodeJSON(raw)
	if err != nil {
		return nil, false
	}
	switch root := v.(type) {
	case []any:
		return root, true
	case map[string]any:
		if list, ok := root["optimizations"].([]any); ok {
			return list, true
		}
	}
	return nil, false
}

// decodeJSON decodes exactly one JSON value, keeping numbers as
// json.Number so their literal text survives.
func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

type span struct {
	start, end int
}

type foundList struct {
	pos, end int
	items    []any
}

// scanLists finds every JSON list embedded in text: first fenced blocks,
// then balanced bare lists in the text outside successfully parsed fences.
// A fence that opens inside a bare list (for example in one of its string
// values) belongs to that list and is not treated as a block.
// Results are returned in text order.
func scanLists(text string) [][]any {
	var found []foundList
	var consumed []span

	outer := scanBare(text, 0, len(text))
	for _, m := range fencedList.FindAllStringSubmatchIndex(text, -1) {
		if within(m[0], outer) {
			continue
		}
		body := text[m[2]:m[3]]
		if v, err := decodeJSON(body); err == nil {
			if list, ok := v.([]any); ok {
				found = append(found, foundList{pos: m[2], end: m[3], items: list})
				consumed = append(consumed, span{m[0], m[1]})
			}
		}
	}

	prev := 0
	for _, c := range append(consumed, span{len(text), len(text)}) {
		found = append(found, scanBare(text, prev, c.start)...)
		prev = c.end
	}

	slices.SortStableFunc(found, func(a, b foundList) int { return a.pos - b.pos })
	lists := make([][]any, len(found))
	for i, f := range found {
		lists[i] = f.items
	}
	return lists
}

func within(pos int, lists []foundList) bool {
	for _, l := range lists {
		if pos > l.pos && pos < l.end {
			return true
		}
	}
	return false
}

// scanBare finds balanced bracketed lists in text[from:to] that decode as
// JSON lists. Brackets inside JSON string literals are ignored.
func scanBare(text string, from, to int) []foundList {
	var found []foundList
	for i := from; i < to; i++ {
		if text[i] != '[' {
			continue
		}
		end, ok := matchBracket(text, i, to)
		if !ok {
			continue
		}
		if v, err := decodeJSON(text[i : end+1]); err == nil {
			if list, ok := v.([]any); ok {
				found = append(found, foundList{pos: i, end: end, items: list})
				i = end
			}
		}
	}
	return found
}

// matchBracket returns the index of the ']' closing the '[' at start.
func matchBracket(text string, start, limit int) (int, bool) {
	depth := 0
	inString := false
	for i := start; i < limit; i++ {
		c := text[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func validate(item any) (Suggestion, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return Suggestion{}, fmt.Errorf("not an object")
	}

	var s Suggestion
	var err error
	if s.Description, err = requiredString(obj, "description"); err != nil {
		return Suggestion{}, err
	}
	if s.SuggestedChange, err = requiredString(obj, "suggested_change"); err != nil {
		return Suggestion{}, err
	}
	if s.SafetyRationale, err = requiredString(obj, "safety_rationale"); err != nil {
		return Suggestion{}, err
	}

	s.EstimatedGasSaved = gasEstimate(obj["estimated_gas_saved"])
	s.StartLine = lineNumber(obj["start_line"])
	s.EndLine = lineNumber(obj["end_line"])
	if s.StartLine != nil && s.EndLine != nil && *s.StartLine > *s.EndLine {
		s.StartLine, s.EndLine = s.EndLine, s.StartLine
	}
	return s, nil
}

func requiredString(obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("missing %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%q is not a string", key)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%q is empty", key)
	}
	return s, nil
}

func gasEstimate(v any) *string {
	switch g := v.(type) {
	case string:
		return &g
	case json.Number:
		s := g.String()
		return &s
	default:
		return nil
	}
}

// lineNumber coerces an int, a float (truncated) or a digit-only string to
// a positive line number. Anything else is nil.
func lineNumber(v any) *int {
	var n int64
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			n = i
		} else if f, err := x.Float64(); err == nil && !math.IsInf(f, 0) && f < math.MaxInt32 {
			n = int64(f)
		} else {
			return nil
		}
	case string:
		if x == "" || strings.TrimLeft(x, "0123456789") != "" {
			return nil
		}
		i, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return nil
		}
		n = i
	default:
		return nil
	}
	if n <= 0 || n > math.MaxInt32 {
		return nil
	}
	line := int(n)
	return &line
}
