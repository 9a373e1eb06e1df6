package scholarmail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Candidate is one citation-shaped record returned by an Extractor, prior
// to mapping into a SearchResult. Absent fields are empty strings.
type Candidate struct {
	Title             string `json:"title"`
	OriginalURL       string `json:"original_url"`
	Authors           string `json:"authors"`
	YearOfPublication string `json:"year_of_publication"`
	JournalName       string `json:"journal_name"`
	Snippet           string `json:"snippet"`
}

// CandidateFromFields builds a Candidate from a loosely typed mapping as
// produced by decoding model output. Nulls become empty strings and
// numbers are formatted without exponent.
func CandidateFromFields(fields map[string]any) Candidate {
	return Candidate{
		Title:             fieldString(fields["title"]),
		OriginalURL:       fieldString(fields["original_url"]),
		Authors:           fieldString(fields["authors"]),
		YearOfPublication: fieldString(fields["year_of_publication"]),
		JournalName:       fieldString(fields["journal_name"]),
		Snippet:           fieldString(fields["snippet"]),
	}
}

func fieldString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := fieldString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// ParseCandidates decodes a model response into candidates. It accepts a
// JSON array of objects, an object wrapping such an array under any key, or
// a single object. Markdown code fences around the JSON are ignored.
// An empty or null response yields no candidates.
func ParseCandidates(text string) ([]Candidate, error) {
	text = trimCodeFence(text)
	if text == "" || text == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, Errorf(EEXTRACT, "malformed extractor response: %v", err)
	}

	items, ok := candidateItems(v)
	if !ok {
		return nil, Errorf(EEXTRACT, "unexpected extractor response shape %T", v)
	}

	candidates := make([]Candidate, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		candidates = append(candidates, CandidateFromFields(fields))
	}
	return candidates, nil
}

// wrapperKeys are checked first when a response wraps its array in an object.
var wrapperKeys = []string{"results", "search_results", "content", "data", "items"}

func candidateItems(v any) ([]any, bool) {
	switch v := v.(type) {
	case []any:
		return v, true
	case map[string]any:
		if len(v) == 0 {
			return nil, true
		}
		for _, key := range wrapperKeys {
			if arr, ok := v[key].([]any); ok {
				return arr, true
			}
		}
		for _, inner := range v {
			if arr, ok := inner.([]any); ok {
				return arr, true
			}
		}
		if _, ok := v["title"]; ok {
			return []any{v}, true
		}
		return nil, true
	}
	return nil, false
}

func trimCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
