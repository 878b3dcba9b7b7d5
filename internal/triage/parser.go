package triage

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/amite/personal-triage-agent/internal/tools"
	"github.com/amite/personal-triage-agent/pkg/models"
)

// ErrNoTasks is returned when a response parses but yields no usable tasks.
var ErrNoTasks = errors.New("response contained no valid tasks")

// keyedObjectPattern finds a JSON-ish object that mentions the expected
// "tasks" key, for responses where brace scanning latched onto an
// unrelated object in surrounding prose.
var keyedObjectPattern = regexp.MustCompile(`(?s)\{[^{}]*"tasks"\s*:.*\}`)

// rawParse is the wire shape the LLM is instructed to emit.
type rawParse struct {
	Tasks     []models.TaskSpec `json:"tasks"`
	Reasoning string            `json:"reasoning"`
}

// ResponseParser turns an untrusted LLM response string into a validated
// ParseResult. It is total over string inputs: it returns a result or an
// error, never panics, and never makes network calls.
type ResponseParser struct {
	registry *tools.Registry
}

// NewResponseParser creates a parser that validates tool ids against the
// given registry.
func NewResponseParser(registry *tools.Registry) *ResponseParser {
	return &ResponseParser{registry: registry}
}

// Parse extracts and validates a task list from raw LLM output. Candidate
// substrings are tried in order: the first balanced-brace object, a
// "tasks"-keyed object, then the whole response. Each candidate gets one
// plain parse attempt and one repaired retry before the next candidate is
// tried.
func (p *ResponseParser) Parse(response string) (*models.ParseResult, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, errors.New("empty response")
	}

	var lastErr error
	for _, candidate := range candidates(response) {
		raw, err := parseCandidate(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		result := p.validate(raw)
		if len(result.Tasks) == 0 {
			lastErr = ErrNoTasks
			continue
		}
		return result, nil
	}
	return nil, fmt.Errorf("no parseable task list: %w", lastErr)
}

// candidates returns the ordered extraction attempts for a response.
// Duplicates are dropped so a response that is pure JSON is not parsed
// three times.
func candidates(response string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	add(extractBalanced(response))
	add(keyedObjectPattern.FindString(response))
	add(response)
	return out
}

// parseCandidate attempts a plain JSON parse, then exactly one repaired
// retry on syntax failure.
func parseCandidate(candidate string) (*rawParse, error) {
	var raw rawParse
	if err := json.Unmarshal([]byte(candidate), &raw); err == nil {
		return &raw, nil
	} else if repaired := repair(candidate); repaired != candidate {
		if rerr := json.Unmarshal([]byte(repaired), &raw); rerr == nil {
			return &raw, nil
		}
		return nil, fmt.Errorf("parse failed after repair: %w", err)
	} else {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
}

// extractBalanced returns the first balanced-brace object in s, tracking
// depth while skipping string literals and escapes. Returns "" when no
// balanced object exists. This survives stray braces in surrounding prose
// where a greedy regex does not.
func extractBalanced(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// string contents never affect depth
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// validate filters the raw task list down to tasks that name a registered
// tool and carry non-empty content. Invalid entries become warnings, never
// parse failures.
func (p *ResponseParser) validate(raw *rawParse) *models.ParseResult {
	result := &models.ParseResult{Reasoning: raw.Reasoning}
	if result.Reasoning == "" {
		result.Reasoning = "No reasoning provided"
	}

	for i, task := range raw.Tasks {
		task.Tool = strings.TrimSpace(task.Tool)
		task.Content = strings.TrimSpace(task.Content)
		switch {
		case !task.Valid():
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("task %d dropped: missing tool or content", i))
		case !p.registry.Has(task.Tool):
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("task %d dropped: unknown tool %q", i, task.Tool))
		default:
			result.Tasks = append(result.Tasks, task)
		}
	}
	return result
}
