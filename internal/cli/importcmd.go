// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tradevault/internal/csvimport"
	"tradevault/internal/models"
)

// addImportCommands adds CSV import commands.
func addImportCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "CSV trade import",
		Long: `Import completed trades from a broker CSV export.

Importing is two-phase: 'preview' uploads the file and shows the
server-validated rows without saving anything; 'confirm' uploads again and
saves every valid row. Rows the server rejects are listed with the reason
and skipped on confirm.`,
	}

	cmd.AddCommand(newImportPreviewCmd(app))
	cmd.AddCommand(newImportConfirmCmd(app))
	cmd.AddCommand(newImportSampleCmd())

	rootCmd.AddCommand(cmd)
}

func newImportPreviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file.csv>",
		Short: "Validate a CSV file without saving anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			preview, err := loadPreview(ctx, app, output, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(preview)
			}
			renderPreview(output, preview)
			return nil
		},
	}
}

func newImportConfirmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <file.csv>",
		Short: "Validate a CSV file and save the valid rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			preview, err := loadPreview(ctx, app, output, args[0])
			if err != nil {
				return err
			}
			renderPreview(output, preview)

			reconciler := csvimport.NewReconciler(app.Client)
			imported, err := reconciler.Confirm(ctx, preview)
			if err != nil {
				output.Error("Import failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]int{"imported": imported})
			}
			output.Println()
			output.Success("✓ Imported %d trade(s)", imported)
			return nil
		},
	}
}

func loadPreview(ctx context.Context, app *App, output *Output, path string) (*models.CsvPreview, error) {
	if err := csvimport.CheckFile(path); err != nil {
		output.Error("%v", err)
		return nil, err
	}
	reconciler := csvimport.NewReconciler(app.Client)
	preview, err := reconciler.LoadPreview(ctx, path)
	if err != nil {
		output.Error("Preview failed: %v", err)
		return nil, err
	}
	return preview, nil
}

func renderPreview(output *Output, preview *models.CsvPreview) {
	valid, rejected := 0, 0
	for _, row := range preview.Rows {
		if row.Importable() {
			valid++
		} else {
			rejected++
		}
	}
	output.Bold("%s: %d row(s) — %d valid, %d rejected", preview.FileName, len(preview.Rows), valid, rejected)
	output.Println()

	table := NewTable(output, "#", "Symbol", "Asset", "Side", "Qty", "P&L", "Status")
	for i, row := range preview.Rows {
		status := output.Green("ok")
		if !row.Importable() {
			status = output.Red(row.Error)
		}
		pnl := "—"
		if row.PnL != nil {
			pnl = output.FormatPnL(*row.PnL)
		}
		table.AddRow(
			fmt.Sprintf("%d", i+1),
			orDash(row.Symbol),
			orDash(string(row.AssetType)),
			orDash(string(row.Direction)),
			fmt.Sprintf("%g", row.Quantity),
			pnl,
			status,
		)
	}
	table.Render()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func newImportSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample [file.csv]",
		Short: "Write a sample CSV in the expected format",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if len(args) == 0 {
				return csvimport.WriteSample(cmd.OutOrStdout())
			}
			f, err := os.Create(args[0])
			if err != nil {
				output.Error("Failed to create file: %v", err)
				return err
			}
			defer f.Close()
			if err := csvimport.WriteSample(f); err != nil {
				output.Error("Failed to write sample: %v", err)
				return err
			}
			output.Success("✓ Sample written to %s", args[0])
			return nil
		},
	}
}
