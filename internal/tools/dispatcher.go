package tools

import (
	"context"
	"fmt"

	"github.com/amite/personal-triage-agent/pkg/models"
)

// Dispatcher resolves tool identifiers against a registry, executes the
// capability, and normalizes heterogeneous results into models.ToolResult.
// Failures never escape: unknown ids, tool errors, and panics all become
// failure results.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Registry returns the underlying tool registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch executes one task and returns its normalized result.
func (d *Dispatcher) Dispatch(ctx context.Context, task models.TaskSpec, meta ExecContext) (result models.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			result = models.ErrorResult(task.Tool, fmt.Sprintf("tool panicked: %v", r))
		}
	}()

	tool, ok := d.registry.Get(task.Tool)
	if !ok {
		return models.ErrorResult(task.Tool, fmt.Sprintf("unknown tool: %s", task.Tool))
	}

	raw, err := tool.Execute(ctx, task.Content, meta)
	if err != nil {
		return models.ErrorResult(task.Tool, fmt.Sprintf("%s failed: %v", task.Tool, err))
	}

	return normalize(task.Tool, raw)
}

// normalize folds the two supported tool return shapes into one ToolResult.
func normalize(tool string, raw any) models.ToolResult {
	switch v := raw.(type) {
	case models.ToolResult:
		if v.Tool == "" {
			v.Tool = tool
		}
		return v
	case *models.ToolResult:
		if v == nil {
			return models.ErrorResult(tool, "tool returned nil result")
		}
		out := *v
		if out.Tool == "" {
			out.Tool = tool
		}
		return out
	case string:
		return models.StringResult(tool, v)
	case nil:
		return models.ErrorResult(tool, "tool returned no result")
	default:
		return models.StringResult(tool, fmt.Sprintf("%v", v))
	}
}
