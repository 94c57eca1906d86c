// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradevault/internal/models"
)

// addJournalCommands adds journal commands.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal management",
		Long:  "Record and review free-text journal entries, one or more per day.",
	}

	cmd.AddCommand(newJournalListCmd(app))
	cmd.AddCommand(newJournalAddCmd(app))
	cmd.AddCommand(newJournalRmCmd(app))

	rootCmd.AddCommand(cmd)
}

func newJournalListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			entries, err := app.Client.ListJournal(ctx)
			if err != nil {
				output.Error("Failed to fetch journal: %v", err)
				return err
			}

			if day, _ := cmd.Flags().GetString("date"); day != "" {
				filtered := entries[:0]
				for _, e := range entries {
					if e.EntryDate == day {
						filtered = append(filtered, e)
					}
				}
				entries = filtered
			}

			if output.IsJSON() {
				return output.JSON(entries)
			}
			if len(entries) == 0 {
				output.Info("No journal entries.")
				return nil
			}

			sort.SliceStable(entries, func(i, j int) bool {
				return entries[i].EntryDate > entries[j].EntryDate
			})

			for _, e := range entries {
				label := e.EntryDate
				if d := e.Day(); !d.IsZero() {
					label = d.Format("Monday, January 2, 2006")
				}
				output.Bold("%s", label)
				output.Dim("  id %s", e.ID)
				for _, line := range strings.Split(e.Content, "\n") {
					output.Printf("  %s\n", line)
				}
				output.Println()
			}
			return nil
		},
	}

	cmd.Flags().String("date", "", "only entries for this day (YYYY-MM-DD)")
	return cmd
}

func newJournalAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a journal entry",
		Long: `Add a free-text journal entry for a day.

Multiple entries per day are allowed; entries are never edited in place,
only added and deleted.`,
		Example: `  tradevault journal add "Choppy open, stayed flat until the London close."
  tradevault journal add --date 2026-08-28 "Forced a revenge trade after the stop-out."`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			day, _ := cmd.Flags().GetString("date")
			if day == "" {
				day = time.Now().Format("2006-01-02")
			}
			content := strings.Join(args, " ")

			if err := models.ValidateJournalInput(day, content); err != nil {
				output.Error("Invalid entry: %v", err)
				return err
			}

			entry, err := app.Client.CreateJournal(ctx, day, content)
			if err != nil {
				output.Error("Failed to save entry: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(entry)
			}
			output.Success("✓ Journal entry %s saved for %s", entry.ID, entry.EntryDate)
			return nil
		},
	}

	cmd.Flags().String("date", "", "entry day (YYYY-MM-DD, default today)")
	return cmd
}

func newJournalRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <entry-id>",
		Short: "Delete a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			id := models.NormalizeID(args[0])
			if err := app.Client.DeleteJournal(ctx, id); err != nil {
				output.Error("Failed to delete entry: %v", err)
				return err
			}
			output.Success("✓ Journal entry %s deleted", id)
			return nil
		},
	}
}
