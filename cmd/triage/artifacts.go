package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/amite/personal-triage-agent/internal/artifacts"
	"github.com/amite/personal-triage-agent/internal/config"
)

var artifactsThread string

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "Inspect reminders and drafts produced by tools",
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "List stored reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArtifactsDB(func(db *artifacts.DB) error {
			reminders, err := db.ListReminders(artifactsThread)
			if err != nil {
				return fmt.Errorf("listing reminders: %w", err)
			}
			if len(reminders) == 0 {
				fmt.Println("No reminders stored.")
				return nil
			}
			for _, r := range reminders {
				fmt.Printf("#%d [%s] %s  (thread %s, %s)\n",
					r.ID, r.Status, r.Content, r.ThreadID,
					r.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List stored email drafts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArtifactsDB(func(db *artifacts.DB) error {
			drafts, err := db.ListDrafts(artifactsThread)
			if err != nil {
				return fmt.Errorf("listing drafts: %w", err)
			}
			if len(drafts) == 0 {
				fmt.Println("No drafts stored.")
				return nil
			}
			bold := color.New(color.Bold)
			for _, d := range drafts {
				bold.Printf("#%d %s  (thread %s, %s)\n",
					d.ID, d.Subject, d.ThreadID,
					d.CreatedAt.Local().Format("2006-01-02 15:04"))
				fmt.Printf("%s\n\n", d.Body)
			}
			return nil
		})
	},
}

func init() {
	artifactsCmd.PersistentFlags().StringVar(&artifactsThread, "thread", "", "Filter by thread id")
	artifactsCmd.AddCommand(remindersCmd)
	artifactsCmd.AddCommand(draftsCmd)
}

func withArtifactsDB(fn func(*artifacts.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := artifacts.Open(cfg.Paths.ArtifactsDB)
	if err != nil {
		return fmt.Errorf("opening artifacts db: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrating artifacts db: %w", err)
	}
	return fn(db)
}
