// Package tools defines the capability interface for triage tools, the
// registry that maps tool identifiers to capabilities, and the dispatcher
// that executes tasks and normalizes their results.
package tools

import "context"

// Registered tool identifiers. These ids appear in LLM prompts, parsed
// task specs, and result keys.
const (
	ReminderToolName = "reminder_tool"
	DraftingToolName = "drafting_tool"
	SearchToolName   = "search_tool"
)

// ExecContext carries session identity into a tool execution so tools can
// tag their own side effects for later correlation.
type ExecContext struct {
	// ThreadID is the session the execution belongs to.
	ThreadID string
	// CheckpointID is the checkpoint preceding the execution, if known.
	CheckpointID string
}

// Tool is a named capability invoked with free-text content.
// Execute may return either a plain string (legacy shape) or a
// models.ToolResult; the dispatcher normalizes both.
type Tool interface {
	// Name returns the stable identifier used for dispatch and in the
	// LLM-facing catalog.
	Name() string
	// Description returns the static description consumed by the prompt
	// builder.
	Description() string
	// Execute runs the tool against the given content.
	Execute(ctx context.Context, content string, meta ExecContext) (any, error)
}

// Registry maps tool identifiers to capabilities, preserving registration
// order for catalog display. It is read-mostly and safe for concurrent
// readers once built.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry builds a registry from the given tools. Later registrations
// with a duplicate name replace earlier ones but keep the original position.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		if _, exists := r.tools[t.Name()]; !exists {
			r.order = append(r.order, t.Name())
		}
		r.tools[t.Name()] = t
	}
	return r
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Has reports whether a tool is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Names returns registered tool identifiers in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Tools returns registered tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}
