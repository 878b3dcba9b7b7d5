package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/amite/personal-triage-agent/internal/checkpoint"
	"github.com/amite/personal-triage-agent/internal/tools"
	"github.com/amite/personal-triage-agent/pkg/models"
)

// fixedParser returns a canned decomposition.
type fixedParser struct {
	result *models.ParseResult
}

func (f *fixedParser) ParseRequest(ctx context.Context, request string) *models.ParseResult {
	return f.result
}

// countingTool records executions.
type countingTool struct {
	name string
	mu   sync.Mutex
	runs []string
}

func (c *countingTool) Name() string        { return c.name }
func (c *countingTool) Description() string { return "counting tool" }

func (c *countingTool) Execute(ctx context.Context, content string, meta tools.ExecContext) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, content)
	return fmt.Sprintf("did %s", content), nil
}

func (c *countingTool) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.runs)
}

func testParser(tasks ...models.TaskSpec) *fixedParser {
	return &fixedParser{result: &models.ParseResult{Tasks: tasks, Reasoning: "test plan"}}
}

func openTestStore(t *testing.T) *checkpoint.Store {
	t.Helper()
	store, err := checkpoint.Open(filepath.Join(t.TempDir(), "checkpoints.db"))
	if err != nil {
		t.Fatalf("failed to open checkpoint store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRun_ThreeTasks(t *testing.T) {
	tool := &countingTool{name: "search_tool"}
	dispatcher := tools.NewDispatcher(tools.NewRegistry(tool))
	parser := testParser(
		models.TaskSpec{Tool: "search_tool", Content: "a"},
		models.TaskSpec{Tool: "search_tool", Content: "b"},
		models.TaskSpec{Tool: "search_tool", Content: "c"},
	)
	o := New(parser, dispatcher, nil, nil)

	state, err := o.Run(context.Background(), "t1", "do three things")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !state.Done() {
		t.Errorf("Phase = %q, want FINISH", state.Phase)
	}
	if tool.count() != 3 {
		t.Errorf("tool ran %d times, want 3", tool.count())
	}
	if state.Iteration != 4 {
		t.Errorf("Iteration = %d, want tasks+1 = 4", state.Iteration)
	}
	if len(state.TaskQueue) != 0 {
		t.Errorf("TaskQueue not drained: %+v", state.TaskQueue)
	}
	for _, key := range []string{"search_tool_1", "search_tool_2", "search_tool_3"} {
		if _, ok := state.Results[key]; !ok {
			t.Errorf("missing result key %q (have %v)", key, resultKeys(state))
		}
	}
	if len(state.ReasoningLog) != 1 || state.ReasoningLog[0] != "test plan" {
		t.Errorf("ReasoningLog = %v", state.ReasoningLog)
	}
}

func TestRun_UnknownToolStillFinishes(t *testing.T) {
	dispatcher := tools.NewDispatcher(tools.NewRegistry())
	parser := testParser(models.TaskSpec{Tool: "bogus_tool", Content: "x"})
	o := New(parser, dispatcher, nil, nil)

	state, err := o.Run(context.Background(), "t1", "use a tool that does not exist")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !state.Done() {
		t.Errorf("Phase = %q, want FINISH", state.Phase)
	}
	result, ok := state.Results["bogus_tool_1"]
	if !ok {
		t.Fatalf("missing error result, have %v", resultKeys(state))
	}
	if result.Success {
		t.Error("unknown tool must record a failure result")
	}
}

func TestRun_EmptyQueueGoesStraightToFinish(t *testing.T) {
	// A total parser always yields at least one task, but the machine must
	// not hang if handed none.
	dispatcher := tools.NewDispatcher(tools.NewRegistry())
	o := New(&fixedParser{result: &models.ParseResult{Reasoning: "nothing to do"}}, dispatcher, nil, nil)

	state, err := o.Run(context.Background(), "t1", "noop")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !state.Done() || state.Iteration != 1 {
		t.Errorf("Phase = %q, Iteration = %d; want FINISH at iteration 1", state.Phase, state.Iteration)
	}
}

func TestRun_CheckpointsEveryTransition(t *testing.T) {
	store := openTestStore(t)
	tool := &countingTool{name: "search_tool"}
	dispatcher := tools.NewDispatcher(tools.NewRegistry(tool))
	parser := testParser(
		models.TaskSpec{Tool: "search_tool", Content: "a"},
		models.TaskSpec{Tool: "search_tool", Content: "b"},
	)
	o := New(parser, dispatcher, store, nil)

	if _, err := o.Run(context.Background(), "t1", "two tasks"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	history, err := store.History("t1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	// triage, exec a, triage no-op, exec b = 4 transitions.
	if len(history) != 4 {
		t.Fatalf("got %d checkpoints, want 4", len(history))
	}

	// Parent pointers chain in order.
	if history[0].ParentCheckpointID != "" {
		t.Errorf("first checkpoint has parent %q, want none", history[0].ParentCheckpointID)
	}
	for i := 1; i < len(history); i++ {
		if history[i].ParentCheckpointID != history[i-1].CheckpointID {
			t.Errorf("checkpoint %d parent = %q, want %q",
				i, history[i].ParentCheckpointID, history[i-1].CheckpointID)
		}
	}

	// The final snapshot is the terminal state.
	final, err := RestoreState(history[len(history)-1].State)
	if err != nil {
		t.Fatalf("RestoreState failed: %v", err)
	}
	if !final.Done() || final.Iteration != 3 {
		t.Errorf("final snapshot Phase = %q, Iteration = %d", final.Phase, final.Iteration)
	}
}

func TestResume_SkipsCompletedTasks(t *testing.T) {
	store := openTestStore(t)
	tool := &countingTool{name: "search_tool"}
	dispatcher := tools.NewDispatcher(tools.NewRegistry(tool))
	parser := testParser(
		models.TaskSpec{Tool: "search_tool", Content: "a"},
		models.TaskSpec{Tool: "search_tool", Content: "b"},
		models.TaskSpec{Tool: "search_tool", Content: "c"},
	)

	// Run a full session to build a checkpoint chain.
	first := New(parser, dispatcher, store, nil)
	if _, err := first.Run(context.Background(), "t1", "three tasks"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if tool.count() != 3 {
		t.Fatalf("initial run executed %d tasks, want 3", tool.count())
	}

	// Find the checkpoint taken after the second execution (iteration 3,
	// one task left in the queue).
	history, err := store.History("t1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	var resumeFrom string
	for _, cp := range history {
		s, err := RestoreState(cp.State)
		if err != nil {
			t.Fatalf("RestoreState failed: %v", err)
		}
		if s.Iteration == 3 && len(s.TaskQueue) == 1 {
			resumeFrom = cp.CheckpointID
			break
		}
	}
	if resumeFrom == "" {
		t.Fatal("no mid-session checkpoint found")
	}

	// Resuming from there must execute only the one remaining task.
	resumed := New(parser, dispatcher, store, nil)
	state, err := resumed.Resume(context.Background(), "t1", resumeFrom)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}

	if !state.Done() {
		t.Errorf("Phase = %q, want FINISH", state.Phase)
	}
	if state.Iteration != 4 {
		t.Errorf("Iteration = %d, want 4", state.Iteration)
	}
	if tool.count() != 4 {
		t.Errorf("tool ran %d times total, want 4 (3 original + 1 resumed)", tool.count())
	}
	if tool.runs[3] != "c" {
		t.Errorf("resumed run executed %q, want the remaining task %q", tool.runs[3], "c")
	}
}

func TestResume_LatestWhenCheckpointOmitted(t *testing.T) {
	store := openTestStore(t)
	tool := &countingTool{name: "search_tool"}
	dispatcher := tools.NewDispatcher(tools.NewRegistry(tool))
	parser := testParser(models.TaskSpec{Tool: "search_tool", Content: "a"})

	first := New(parser, dispatcher, store, nil)
	if _, err := first.Run(context.Background(), "t1", "one task"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Latest checkpoint is terminal: resuming executes nothing further.
	resumed := New(parser, dispatcher, store, nil)
	state, err := resumed.Resume(context.Background(), "t1", "")
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if !state.Done() {
		t.Errorf("Phase = %q, want FINISH", state.Phase)
	}
	if tool.count() != 1 {
		t.Errorf("tool ran %d times, want 1 (no re-execution on resume)", tool.count())
	}
}

func TestResume_MissingThread(t *testing.T) {
	store := openTestStore(t)
	o := New(testParser(), tools.NewDispatcher(tools.NewRegistry()), store, nil)

	if _, err := o.Resume(context.Background(), "ghost", ""); err == nil {
		t.Error("expected error resuming unknown thread")
	}
}

func TestRun_GeneratesThreadID(t *testing.T) {
	dispatcher := tools.NewDispatcher(tools.NewRegistry())
	o := New(&fixedParser{result: &models.ParseResult{}}, dispatcher, nil, nil)

	state, err := o.Run(context.Background(), "", "anything")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if state.ThreadID == "" {
		t.Error("expected a generated thread id")
	}
}

func resultKeys(s *State) []string {
	keys := make([]string, 0, len(s.Results))
	for k := range s.Results {
		keys = append(keys, k)
	}
	return keys
}
