// Package orchestrator drives one triage session through a small state
// machine: decompose once, execute tasks sequentially, persist a
// checkpoint after every transition, and stop in a terminal phase.
package orchestrator

import (
	"encoding/json"
	"fmt"

	"github.com/amite/personal-triage-agent/pkg/models"
)

// Phase is a state-machine node.
type Phase string

const (
	// PhaseTriage decomposes the request on first entry and otherwise
	// just routes.
	PhaseTriage Phase = "TRIAGE"
	// PhaseToolExecution pops and executes one task.
	PhaseToolExecution Phase = "TOOL_EXECUTION"
	// PhaseFinish is terminal.
	PhaseFinish Phase = "FINISH"
)

// State is the full mutable session state. It is serialized as-is into
// checkpoints, so every field that matters for resume carries a json tag.
type State struct {
	// ThreadID identifies the session. Immutable once assigned.
	ThreadID string `json:"thread_id"`
	// Phase is the current state-machine node.
	Phase Phase `json:"phase"`
	// UserRequest is the original free-text request.
	UserRequest string `json:"user_request"`
	// TaskQueue holds tasks not yet executed. Populated exactly once at
	// triage; only shrinks afterwards.
	TaskQueue []models.TaskSpec `json:"task_queue"`
	// Results maps "<tool>_<iteration>" keys to normalized results.
	Results map[string]models.ToolResult `json:"results"`
	// Iteration counts transitions that did work: 0 before triage, 1
	// after, then +1 per executed task.
	Iteration int `json:"iteration"`
	// AgentThoughts is the append-only execution narration.
	AgentThoughts []string `json:"agent_thoughts"`
	// ReasoningLog records decomposition reasoning, append-only.
	ReasoningLog []string `json:"llm_reasoning"`
}

// NewState creates the initial state for a fresh session.
func NewState(threadID, userRequest string) *State {
	return &State{
		ThreadID:    threadID,
		Phase:       PhaseTriage,
		UserRequest: userRequest,
		Results:     make(map[string]models.ToolResult),
	}
}

// Snapshot serializes the state for checkpointing.
func (s *State) Snapshot() (json.RawMessage, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot state: %w", err)
	}
	return raw, nil
}

// RestoreState deserializes a checkpoint payload back into session state.
func RestoreState(raw json.RawMessage) (*State, error) {
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("restore state: %w", err)
	}
	if s.Results == nil {
		s.Results = make(map[string]models.ToolResult)
	}
	return &s, nil
}

// Done reports whether the session reached its terminal phase.
func (s *State) Done() bool {
	return s.Phase == PhaseFinish
}
