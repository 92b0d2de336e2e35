package swarm

import (
	"encoding/json"
	"strings"

	"github.com/rdszhao/cadkg/internal/util"
)

// extractSampleLen bounds the diagnostic sample carried by ExtractionError.
const extractSampleLen = 240

// ExtractionError reports that no extraction strategy recovered a structured
// value from a model response. Sample holds the leading characters of the
// original text for diagnosis.
type ExtractionError struct {
	Sample string
}

func (e *ExtractionError) Error() string {
	return "could not extract structured data from response: " + e.Sample
}

// candidateFunc locates one candidate substring that may hold a structured
// value. Returning ok=false means the strategy does not apply to this text.
type candidateFunc func(text string) (string, bool)

// extractStrategies is the ordered fallback chain. The ordering is a
// contract: later strategies are more permissive and therefore riskier, so a
// parse success from an earlier strategy always wins.
var extractStrategies = []candidateFunc{
	taggedFence,
	anyFence,
	delimiterSpan,
	wholeText,
}

// Extract recovers a JSON object or array from an arbitrary text blob.
// Each strategy's candidate is attempted with a syntactic parse; a parse
// error falls through to the next strategy instead of aborting. When every
// strategy fails the returned error is an *ExtractionError so callers can
// continue (log, fall back) rather than crash.
func Extract(text string) (any, error) {
	for _, strategy := range extractStrategies {
		candidate, ok := strategy(text)
		if !ok {
			continue
		}
		if v, err := parseStructured(candidate); err == nil {
			return v, nil
		}
	}
	return nil, &ExtractionError{Sample: util.Truncate(text, extractSampleLen)}
}

// ExtractObject is Extract narrowed to JSON objects. Arrays and scalars
// produce an ExtractionError.
func ExtractObject(text string) (map[string]any, error) {
	v, err := Extract(text)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &ExtractionError{Sample: util.Truncate(text, extractSampleLen)}
	}
	return obj, nil
}

// parseStructured accepts only objects and arrays; bare scalars are not
// useful synthesis results and would make the permissive strategies match
// almost any text.
func parseStructured(candidate string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, err
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, nil
	default:
		return nil, &ExtractionError{Sample: util.Truncate(candidate, extractSampleLen)}
	}
}

// taggedFence finds a fenced block explicitly tagged as structured data
// (```json) and returns its interior.
func taggedFence(text string) (string, bool) {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, "```json")
	if idx < 0 {
		return "", false
	}
	rest := text[idx+len("```json"):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// anyFence finds the first fenced block regardless of tag, stripping a
// leading type-tag token (a bare identifier on the opening line) if present.
func anyFence(text string) (string, bool) {
	idx := strings.Index(text, "```")
	if idx < 0 {
		return "", false
	}
	rest := text[idx+3:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	inner := strings.TrimSpace(rest[:end])
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		first := strings.TrimSpace(inner[:nl])
		if first != "" && isIdentifier(first) {
			inner = strings.TrimSpace(inner[nl+1:])
		}
	}
	return inner, true
}

// delimiterSpan scans for the outermost object or array delimiters in the
// whole text and returns the substring between them. Objects are preferred;
// a leading array wins only when it opens before any object does.
func delimiterSpan(text string) (string, bool) {
	objStart := strings.IndexByte(text, '{')
	arrStart := strings.IndexByte(text, '[')

	start, closer := objStart, byte('}')
	if objStart < 0 || (arrStart >= 0 && arrStart < objStart) {
		start, closer = arrStart, ']'
	}
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(text, closer)
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// wholeText trims the entire response and offers it as the candidate.
func wholeText(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	return trimmed, trimmed != ""
}

func isIdentifier(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
