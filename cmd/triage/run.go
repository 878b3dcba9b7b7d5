package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/amite/personal-triage-agent/internal/artifacts"
	"github.com/amite/personal-triage-agent/internal/checkpoint"
	"github.com/amite/personal-triage-agent/internal/config"
	"github.com/amite/personal-triage-agent/internal/debuglog"
	"github.com/amite/personal-triage-agent/internal/llm"
	"github.com/amite/personal-triage-agent/internal/orchestrator"
	"github.com/amite/personal-triage-agent/internal/tools"
	"github.com/amite/personal-triage-agent/internal/triage"
)

// exampleRequest is used when run is invoked without arguments, so the
// full pipeline can be exercised out of the box.
const exampleRequest = "I need to prepare for the meeting tomorrow, remind me to check the attached files, and draft an email to the client about the new deadline. Also, search for the current stock price of Google."

var (
	runThreadID   string
	runResume     bool
	runCheckpoint string
	runProvider   string
	runModel      string
	runNoPersist  bool
	runDebugLog   string
)

var runCmd = &cobra.Command{
	Use:   "run [request]",
	Short: "Run a request through the triage pipeline",
	Long: `Run decomposes a request into tasks and executes them sequentially,
checkpointing after every state transition.

Without a request argument, a built-in example request is used.

Resuming:
  triage run --resume --thread <id>                  # from latest checkpoint
  triage run --resume --thread <id> --checkpoint <c> # from a specific one

Examples:
  triage run "remind me to call John tomorrow"
  triage run --provider anthropic "draft an email about the offsite"
  triage run --no-persist "check the stock price of google"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTriage,
}

func init() {
	runCmd.Flags().StringVar(&runThreadID, "thread", "", "Thread id for the session (generated if empty)")
	runCmd.Flags().BoolVar(&runResume, "resume", false, "Resume an existing thread instead of starting fresh")
	runCmd.Flags().StringVar(&runCheckpoint, "checkpoint", "", "Checkpoint id to resume from (default: latest)")
	runCmd.Flags().StringVar(&runProvider, "provider", "", "Override LLM provider: ollama, anthropic, or openai")
	runCmd.Flags().StringVar(&runModel, "model", "", "Override LLM model")
	runCmd.Flags().BoolVar(&runNoPersist, "no-persist", false, "Skip checkpoint persistence (ephemeral session)")
	runCmd.Flags().StringVar(&runDebugLog, "debug-log", "", "Write pipeline debug output to this file")
}

func runTriage(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if runProvider != "" {
		cfg.LLM.Provider = runProvider
	}
	if runModel != "" {
		cfg.LLM.Model = runModel
	}

	request := exampleRequest
	if len(args) > 0 {
		request = args[0]
	}
	if runResume && runThreadID == "" {
		return fmt.Errorf("--resume requires --thread")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := debuglog.New(runDebugLog)
	if err != nil {
		return fmt.Errorf("opening debug log: %w", err)
	}
	defer logger.Close()

	// LLM client is optional: if the provider cannot be constructed, the
	// fallback parser still produces tasks.
	client, err := llm.New(cfg)
	if err != nil {
		color.Yellow("LLM unavailable (%v), using rule-based fallback", err)
		client = nil
	}

	db, err := artifacts.Open(cfg.Paths.ArtifactsDB)
	if err != nil {
		return fmt.Errorf("opening artifacts db: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrating artifacts db: %w", err)
	}

	var store *checkpoint.Store
	if !runNoPersist {
		store, err = checkpoint.Open(cfg.Paths.CheckpointDB)
		if err != nil {
			return fmt.Errorf("opening checkpoint store: %w", err)
		}
		defer store.Close()
	}

	registry := tools.NewRegistry(
		tools.NewReminderTool(db),
		tools.NewDraftingTool(db, client),
		tools.NewSearchTool(),
	)
	dispatcher := tools.NewDispatcher(registry)

	parser := triage.New(client, registry, triage.Options{
		Timeout:            cfg.LLM.Timeout,
		FallbackTokenLimit: cfg.Triage.FallbackTokenLimit,
		Logger:             logger,
	})
	orch := orchestrator.New(parser, dispatcher, store, logger)

	var state *orchestrator.State
	if runResume {
		color.Cyan("Resuming thread %s", runThreadID)
		state, err = orch.Resume(ctx, runThreadID, runCheckpoint)
	} else {
		color.Cyan("Triaging: %s", request)
		state, err = orch.Run(ctx, runThreadID, request)
	}
	if err != nil {
		return err
	}

	printSummary(state)
	return nil
}

func printSummary(state *orchestrator.State) {
	bold := color.New(color.Bold)

	fmt.Println()
	bold.Printf("Session %s finished (%d iterations)\n", state.ThreadID, state.Iteration)

	if len(state.ReasoningLog) > 0 {
		fmt.Printf("Reasoning: %s\n", strings.Join(state.ReasoningLog, "; "))
	}

	keys := make([]string, 0, len(state.Results))
	for k := range state.Results {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return iterationOf(keys[i]) < iterationOf(keys[j])
	})

	fmt.Println()
	bold.Println("Results:")
	for _, key := range keys {
		result := state.Results[key]
		if result.Success {
			color.Green("  ✓ %s: %s", key, result.Message)
		} else {
			color.Red("  ✗ %s: %s", key, result.Message)
		}
	}
}

// iterationOf extracts the trailing iteration number from a result key
// like "reminder_tool_2". Malformed keys sort first.
func iterationOf(key string) int {
	idx := strings.LastIndex(key, "_")
	if idx < 0 {
		return 0
	}
	n := 0
	for _, r := range key[idx+1:] {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
