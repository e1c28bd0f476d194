// Package structout turns noisy model responses into validated reports.
// The extractor is permissive about wrapper noise; the validator is
// strict about the payload shape. Nothing partial ever leaves here.
package structout

import (
	"encoding/json"
	"strings"

	"portfolio-analyzer/internal/faults"
	"portfolio-analyzer/internal/model"
	"portfolio-analyzer/internal/prompt"
)

// ExtractJSON isolates the JSON body from a raw model response. Tiers,
// in priority order: sentinel markers, code fences, outermost braces.
// The model sometimes ignores formatting instructions, so each tier is
// a fallback for the one before it.
func ExtractJSON(raw string) string {
	candidate := raw

	if start := strings.Index(candidate, prompt.JSONStartMarker); start >= 0 {
		rest := candidate[start+len(prompt.JSONStartMarker):]
		if end := strings.Index(rest, prompt.JSONEndMarker); end >= 0 {
			candidate = rest[:end]
		} else {
			candidate = rest
		}
	}

	candidate = stripCodeFence(strings.TrimSpace(candidate))

	first := strings.Index(candidate, "{")
	last := strings.LastIndex(candidate, "}")
	if first >= 0 && last > first {
		candidate = candidate[first : last+1]
	}

	return strings.TrimSpace(candidate)
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line (``` or ```json).
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseReport extracts and validates a full portfolio report from a raw
// model response. All-or-nothing: any shape, tag or bound violation
// fails the whole report.
func ParseReport(raw string) (*model.PortfolioReport, error) {
	body := ExtractJSON(raw)
	if body == "" {
		return nil, faults.New(faults.KindSchemaMismatch, "model response contained no JSON body")
	}

	var report model.PortfolioReport
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, faults.Wrap(faults.KindSchemaMismatch, "model response is not valid report JSON", err)
	}

	if err := report.Validate(); err != nil {
		return nil, faults.Wrap(faults.KindSchemaMismatch, "model response does not satisfy the report schema", err)
	}

	return &report, nil
}
