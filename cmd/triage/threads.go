package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/amite/personal-triage-agent/internal/checkpoint"
	"github.com/amite/personal-triage-agent/internal/config"
	"github.com/amite/personal-triage-agent/internal/orchestrator"
)

var threadsShowState bool

var threadsCmd = &cobra.Command{
	Use:   "threads [thread-id]",
	Short: "Inspect checkpointed sessions",
	Long: `Without arguments, lists all threads in the checkpoint store.
With a thread id, prints that thread's checkpoint chain.

Examples:
  triage threads
  triage threads 4f7c2a1e-...
  triage threads 4f7c2a1e-... --state`,
	Args: cobra.MaximumNArgs(1),
	RunE: runThreads,
}

func init() {
	threadsCmd.Flags().BoolVar(&threadsShowState, "state", false, "Print the full state snapshot of each checkpoint")
}

func runThreads(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := checkpoint.Open(cfg.Paths.CheckpointDB)
	if err != nil {
		return fmt.Errorf("opening checkpoint store: %w", err)
	}
	defer store.Close()

	if len(args) == 0 {
		return listThreads(store)
	}
	return showThread(store, args[0])
}

func listThreads(store *checkpoint.Store) error {
	threads, err := store.Threads()
	if err != nil {
		return fmt.Errorf("listing threads: %w", err)
	}
	if len(threads) == 0 {
		fmt.Println("No threads recorded.")
		return nil
	}

	for _, t := range threads {
		fmt.Printf("%s  (%d checkpoints)\n", t.ThreadID, t.Checkpoints)
	}
	return nil
}

func showThread(store *checkpoint.Store, threadID string) error {
	history, err := store.History(threadID)
	if err != nil {
		return fmt.Errorf("loading history for %s: %w", threadID, err)
	}
	if len(history) == 0 {
		fmt.Fprintf(os.Stderr, "No checkpoints for thread %s\n", threadID)
		return nil
	}

	bold := color.New(color.Bold)
	bold.Printf("Thread %s\n\n", threadID)

	for i, cp := range history {
		state, err := orchestrator.RestoreState(cp.State)
		if err != nil {
			color.Red("%d. %s  (unreadable state: %v)", i+1, cp.CheckpointID, err)
			continue
		}

		fmt.Printf("%d. %s  phase=%s iteration=%d queued=%d  %s\n",
			i+1, cp.CheckpointID, state.Phase, state.Iteration,
			len(state.TaskQueue), cp.CreatedAt.Local().Format("2006-01-02 15:04:05"))

		if threadsShowState {
			pretty, err := json.MarshalIndent(state, "   ", "  ")
			if err == nil {
				fmt.Printf("   %s\n", pretty)
			}
		}
	}
	return nil
}
