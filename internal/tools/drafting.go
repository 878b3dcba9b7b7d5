package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/amite/personal-triage-agent/internal/artifacts"
	"github.com/amite/personal-triage-agent/internal/llm"
	"github.com/amite/personal-triage-agent/pkg/models"
)

// draftBodyPrompt asks the LLM for just the email body text.
const draftBodyPrompt = `Write a professional email about: %s

Generate ONLY the email body (no subject line, no greeting, no signature). Keep it concise and professional, maximum 3-4 sentences.

Email body:`

// draftTemperature is higher than the triage temperature; drafting benefits
// from some variety.
const draftTemperature = 0.7

// DraftingTool generates email drafts and stores them in the artifacts
// database. When an LLM client is available it generates the body text;
// otherwise a canned body is used so drafting still succeeds offline.
type DraftingTool struct {
	db  *artifacts.DB
	llm llm.Client
}

// NewDraftingTool creates a drafting tool. The llm client may be nil.
func NewDraftingTool(db *artifacts.DB, client llm.Client) *DraftingTool {
	return &DraftingTool{db: db, llm: client}
}

func (t *DraftingTool) Name() string {
	return DraftingToolName
}

func (t *DraftingTool) Description() string {
	return "Drafts an email based on the given topic or content. Use this when the user needs to write, compose, or draft an email or message."
}

// Execute drafts an email about the content and returns a structured result
// carrying the draft id and subject.
func (t *DraftingTool) Execute(ctx context.Context, content string, meta ExecContext) (any, error) {
	if t.db == nil {
		return nil, fmt.Errorf("artifacts database not configured")
	}

	subject := "Re: " + content
	body := t.composeBody(ctx, content)

	threadID := meta.ThreadID
	if threadID == "" {
		threadID = "unknown"
	}

	id, err := t.db.CreateDraft(threadID, meta.CheckpointID, subject, body)
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}

	return models.ToolResult{
		Tool:       DraftingToolName,
		Success:    true,
		ArtifactID: id,
		Subject:    subject,
		Message:    fmt.Sprintf("email draft created (id %d): %q", id, subject),
	}, nil
}

// composeBody produces the letter text. LLM failures fall back to a canned
// body rather than failing the draft.
func (t *DraftingTool) composeBody(ctx context.Context, content string) string {
	paragraph := fmt.Sprintf("I wanted to reach out regarding %s. Please let me know your thoughts at your earliest convenience.", content)

	if t.llm != nil {
		generated, err := t.llm.Generate(ctx, fmt.Sprintf(draftBodyPrompt, content), draftTemperature)
		if err == nil && strings.TrimSpace(generated) != "" {
			paragraph = strings.TrimSpace(generated)
		}
	}

	return fmt.Sprintf("Dear Recipient,\n\n%s\n\nBest regards,\n[Your Name]\n", paragraph)
}
