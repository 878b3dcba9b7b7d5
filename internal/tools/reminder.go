package tools

import (
	"context"
	"fmt"

	"github.com/amite/personal-triage-agent/internal/artifacts"
	"github.com/amite/personal-triage-agent/pkg/models"
)

// ReminderTool records reminders in the artifacts database.
type ReminderTool struct {
	db *artifacts.DB
}

// NewReminderTool creates a reminder tool backed by the given database.
func NewReminderTool(db *artifacts.DB) *ReminderTool {
	return &ReminderTool{db: db}
}

func (t *ReminderTool) Name() string {
	return ReminderToolName
}

func (t *ReminderTool) Description() string {
	return "Sets a reminder for a specific task or event. Use this when the user wants to remember something or be reminded about an action."
}

// Execute stores the reminder and returns a structured result carrying the
// record id.
func (t *ReminderTool) Execute(ctx context.Context, content string, meta ExecContext) (any, error) {
	if t.db == nil {
		return nil, fmt.Errorf("artifacts database not configured")
	}

	threadID := meta.ThreadID
	if threadID == "" {
		threadID = "unknown"
	}

	id, err := t.db.CreateReminder(threadID, meta.CheckpointID, content)
	if err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}

	return models.ToolResult{
		Tool:       ReminderToolName,
		Success:    true,
		ArtifactID: id,
		Message:    fmt.Sprintf("reminder created (id %d): %q", id, content),
	}, nil
}
