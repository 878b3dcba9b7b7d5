package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Personal task triage agent",
	Long: `Triage decomposes a free-text request into discrete tasks, binds each
task to a tool (reminders, email drafting, search), and executes them
through a resumable state machine.

Every state transition is checkpointed to SQLite, so an interrupted
session can be resumed without re-executing completed tasks, and past
sessions can be audited after the fact.

Decomposition uses an LLM (Ollama by default, Anthropic or OpenAI via
configuration); when the LLM is unreachable or returns garbage, a
rule-based fallback parser guarantees the request still yields at least
one actionable task.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(threadsCmd)
	rootCmd.AddCommand(artifactsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
