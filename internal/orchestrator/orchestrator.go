package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/amite/personal-triage-agent/internal/checkpoint"
	"github.com/amite/personal-triage-agent/internal/debuglog"
	"github.com/amite/personal-triage-agent/internal/tools"
	"github.com/amite/personal-triage-agent/pkg/models"
)

// RequestParser decomposes a request into tasks. Implementations must be
// total: they always return a result with at least one task.
type RequestParser interface {
	ParseRequest(ctx context.Context, request string) *models.ParseResult
}

// Orchestrator sequences one session at a time through the TRIAGE →
// TOOL_EXECUTION → FINISH state machine. Sessions for distinct thread ids
// may run concurrently on separate Orchestrator values; within a session
// transitions are strictly sequential.
type Orchestrator struct {
	parser     RequestParser
	dispatcher *tools.Dispatcher
	store      *checkpoint.Store
	logger     *debuglog.Logger

	// lastCheckpointID chains checkpoints within the running session.
	lastCheckpointID string
}

// New creates an orchestrator. store and logger may be nil; a nil store
// disables persistence, which keeps sessions runnable in tests and
// ephemeral mode.
func New(parser RequestParser, dispatcher *tools.Dispatcher, store *checkpoint.Store, logger *debuglog.Logger) *Orchestrator {
	return &Orchestrator{
		parser:     parser,
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
	}
}

// Run executes a fresh session for the given request and returns the
// terminal state. A generated thread id is used when threadID is empty.
func (o *Orchestrator) Run(ctx context.Context, threadID, request string) (*State, error) {
	if threadID == "" {
		threadID = uuid.NewString()
	}
	o.lastCheckpointID = ""
	state := NewState(threadID, request)
	o.logger.Log("session %s started: %q", threadID, request)
	return o.run(ctx, state)
}

// Resume loads a checkpoint and continues the session from it without
// re-executing completed tasks. An empty checkpointID resumes from the
// latest checkpoint of the thread.
func (o *Orchestrator) Resume(ctx context.Context, threadID, checkpointID string) (*State, error) {
	if o.store == nil {
		return nil, fmt.Errorf("resume %s: no checkpoint store configured", threadID)
	}

	cp, err := o.store.Load(threadID, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("resume %s: %w", threadID, err)
	}
	if cp == nil {
		return nil, fmt.Errorf("resume %s: no checkpoint found", threadID)
	}

	state, err := RestoreState(cp.State)
	if err != nil {
		return nil, fmt.Errorf("resume %s: %w", threadID, err)
	}

	o.lastCheckpointID = cp.CheckpointID
	o.logger.Log("session %s resumed from checkpoint %s at iteration %d",
		threadID, cp.CheckpointID, state.Iteration)
	return o.run(ctx, state)
}

// run advances the state machine until FINISH, checkpointing after every
// transition. Checkpoint failures are logged, never fatal.
func (o *Orchestrator) run(ctx context.Context, state *State) (*State, error) {
	for !state.Done() {
		if err := ctx.Err(); err != nil {
			return state, fmt.Errorf("session %s interrupted: %w", state.ThreadID, err)
		}

		switch state.Phase {
		case PhaseTriage:
			o.triage(ctx, state)
		case PhaseToolExecution:
			o.executeNext(ctx, state)
		default:
			return state, fmt.Errorf("session %s: unknown phase %q", state.ThreadID, state.Phase)
		}

		o.saveCheckpoint(state)
	}

	o.logger.Log("session %s finished after %d iterations", state.ThreadID, state.Iteration)
	return state, nil
}

// triage populates the task queue on first entry and routes afterwards.
// Decomposition happens exactly once per session.
func (o *Orchestrator) triage(ctx context.Context, state *State) {
	if state.Iteration == 0 {
		result := o.parser.ParseRequest(ctx, state.UserRequest)
		state.TaskQueue = append(state.TaskQueue, result.Tasks...)
		state.Iteration = 1
		state.ReasoningLog = append(state.ReasoningLog, result.Reasoning)
		state.AgentThoughts = append(state.AgentThoughts,
			fmt.Sprintf("Identified %d task(s) from request", len(result.Tasks)))
		o.logger.Log("session %s triaged into %d task(s)", state.ThreadID, len(result.Tasks))
	}

	if len(state.TaskQueue) > 0 {
		state.Phase = PhaseToolExecution
	} else {
		state.Phase = PhaseFinish
	}
}

// executeNext pops the front task, dispatches it, and records the result
// under its "<tool>_<iteration>" key. Unknown tools and tool failures
// become error results; the session always advances.
func (o *Orchestrator) executeNext(ctx context.Context, state *State) {
	task := state.TaskQueue[0]
	state.TaskQueue = state.TaskQueue[1:]

	meta := tools.ExecContext{ThreadID: state.ThreadID, CheckpointID: o.lastCheckpointID}
	result := o.dispatcher.Dispatch(ctx, task, meta)

	key := fmt.Sprintf("%s_%d", task.Tool, state.Iteration)
	state.Results[key] = result
	state.AgentThoughts = append(state.AgentThoughts,
		fmt.Sprintf("Executed %s (iteration %d): %s", task.Tool, state.Iteration, result.Message))
	o.logger.Log("session %s executed %s: success=%t", state.ThreadID, key, result.Success)

	state.Iteration++
	if len(state.TaskQueue) > 0 {
		state.Phase = PhaseTriage
	} else {
		state.Phase = PhaseFinish
	}
}

// saveCheckpoint persists the current state and extends the parent chain.
// With no store configured this is a no-op.
func (o *Orchestrator) saveCheckpoint(state *State) {
	if o.store == nil {
		return
	}

	raw, err := state.Snapshot()
	if err != nil {
		o.logger.Log("session %s: checkpoint snapshot failed: %v", state.ThreadID, err)
		return
	}

	cp := &checkpoint.Checkpoint{
		ThreadID:           state.ThreadID,
		CheckpointID:       uuid.NewString(),
		ParentCheckpointID: o.lastCheckpointID,
		State:              raw,
	}
	if err := o.store.Save(cp); err != nil {
		o.logger.Log("session %s: checkpoint save failed: %v", state.ThreadID, err)
		return
	}
	o.lastCheckpointID = cp.CheckpointID
}
