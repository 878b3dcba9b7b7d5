package triage

import (
	"regexp"
	"strings"

	"github.com/amite/personal-triage-agent/internal/tools"
	"github.com/amite/personal-triage-agent/pkg/models"
)

const fallbackReasoning = "Using rule-based fallback parsing"

// DefaultFallbackTokenLimit bounds the generic-task content when no
// detector fires.
const DefaultFallbackTokenLimit = 10

// detector binds one keyword gate and one capture pattern to a tool.
// Detectors run in a fixed order and each contributes at most one task.
type detector struct {
	tool     string
	keywords []string
	capture  *regexp.Regexp
}

var detectors = []detector{
	{
		tool:     tools.DraftingToolName,
		keywords: []string{"email", "draft"},
		capture:  regexp.MustCompile(`(?i)(?:draft|write|email).*?(?:about|regarding)\s+([^.,]+)`),
	},
	{
		tool:     tools.ReminderToolName,
		keywords: []string{"remind"},
		capture:  regexp.MustCompile(`(?i)remind.*?to\s+([^.,]+)`),
	},
	{
		tool:     tools.SearchToolName,
		keywords: []string{"search", "stock", "check", "look up"},
		capture:  regexp.MustCompile(`(?i)(?:search|check|look up|stock price).*?(?:for|of)\s+([^.,]+)`),
	},
}

// FallbackParser is the deterministic decomposer used when the LLM path
// fails. Parse is total and always yields at least one task.
type FallbackParser struct {
	tokenLimit int
}

// NewFallbackParser creates a fallback parser. A non-positive tokenLimit
// falls back to DefaultFallbackTokenLimit.
func NewFallbackParser(tokenLimit int) *FallbackParser {
	if tokenLimit <= 0 {
		tokenLimit = DefaultFallbackTokenLimit
	}
	return &FallbackParser{tokenLimit: tokenLimit}
}

// Parse decomposes a request by keyword detection. When no detector
// fires, it synthesizes one generic search task from the leading tokens
// of the request.
func (p *FallbackParser) Parse(request string) *models.ParseResult {
	result := &models.ParseResult{Reasoning: fallbackReasoning}
	lower := strings.ToLower(request)

	seen := make(map[models.TaskSpec]bool)
	for _, d := range detectors {
		if !containsAny(lower, d.keywords) {
			continue
		}
		match := d.capture.FindStringSubmatch(request)
		if match == nil {
			continue
		}
		task := models.TaskSpec{Tool: d.tool, Content: strings.TrimSpace(match[1])}
		if !task.Valid() || seen[task] {
			continue
		}
		seen[task] = true
		result.Tasks = append(result.Tasks, task)
	}

	if len(result.Tasks) == 0 {
		result.Tasks = append(result.Tasks, models.TaskSpec{
			Tool:    tools.SearchToolName,
			Content: truncateTokens(request, p.tokenLimit),
		})
	}
	return result
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// truncateTokens keeps the first limit whitespace-separated tokens.
// An empty or all-whitespace request still produces non-empty content so
// the generic task stays actionable.
func truncateTokens(s string, limit int) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "general assistance"
	}
	if len(fields) > limit {
		fields = fields[:limit]
	}
	return strings.Join(fields, " ")
}
