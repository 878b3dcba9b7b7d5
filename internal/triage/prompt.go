// Package triage decomposes a free-text user request into an ordered list
// of tool-bound tasks. The primary path asks an LLM and survives arbitrary
// response malformation through staged extraction and bounded repair; a
// deterministic rule-based fallback guarantees at least one task even when
// the LLM is unreachable.
package triage

import (
	"fmt"
	"strings"

	"github.com/amite/personal-triage-agent/internal/tools"
)

const promptTemplate = `You are a task analysis expert. Analyze the following user request and break it down into discrete, actionable tasks.

User Request: %q

Available Tools:
%s

For each task you identify, specify:
1. Which tool should handle it (%s)
2. The specific content/action for that task

Respond in this EXACT JSON format (valid JSON only, no extra text):
{
  "tasks": [
    {"tool": "tool_name", "content": "task description"},
    {"tool": "tool_name", "content": "task description"}
  ],
  "reasoning": "Your reasoning for why you identified these tasks and chose these tools"
}

JSON Response:`

// PromptBuilder composes triage prompts. The tool catalog block is built
// once from the registry and cached, so Build is a pure function of the
// request string.
type PromptBuilder struct {
	catalog  string
	toolList string
}

// NewPromptBuilder caches the catalog for the given registry.
func NewPromptBuilder(registry *tools.Registry) *PromptBuilder {
	var catalog strings.Builder
	for i, tool := range registry.Tools() {
		if i > 0 {
			catalog.WriteString("\n")
		}
		fmt.Fprintf(&catalog, "- %s: %s", tool.Name(), tool.Description())
	}
	return &PromptBuilder{
		catalog:  catalog.String(),
		toolList: strings.Join(registry.Names(), ", "),
	}
}

// Build returns the full triage prompt for a request.
func (b *PromptBuilder) Build(request string) string {
	return fmt.Sprintf(promptTemplate, request, b.catalog, b.toolList)
}
