// Package models defines the shared domain types for the triage engine.
package models

import "strings"

// TaskSpec is a single actionable task produced by triage: a registered tool
// identifier plus the free-text content to hand that tool.
type TaskSpec struct {
	// Tool is the identifier of the capability that should handle the task.
	Tool string `json:"tool"`
	// Content is the free-text instruction for the tool.
	Content string `json:"content"`
}

// Valid returns true if the task carries both a tool id and non-empty content.
func (t TaskSpec) Valid() bool {
	return strings.TrimSpace(t.Tool) != "" && strings.TrimSpace(t.Content) != ""
}

// ParseResult is the outcome of decomposing a user request: an ordered task
// list plus the reasoning behind it. Reasoning is explanatory only and
// carries no semantic contract.
type ParseResult struct {
	// Tasks is the ordered list of tasks to execute.
	Tasks []TaskSpec `json:"tasks"`
	// Reasoning explains why these tasks and tools were chosen.
	Reasoning string `json:"reasoning"`
	// Warnings records entries that were dropped during validation.
	Warnings []string `json:"-"`
}
