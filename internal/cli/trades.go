// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradevault/internal/api"
	"tradevault/internal/csvimport"
	"tradevault/internal/models"
	"tradevault/internal/ui"
)

// addTradeCommands adds trade management commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Trade management",
		Long:  "List, add, delete, and export trades.",
	}

	cmd.AddCommand(newTradesListCmd(app))
	cmd.AddCommand(newTradesAddCmd(app))
	cmd.AddCommand(newTradesRmCmd(app))
	cmd.AddCommand(newTradesExportCmd(app))

	rootCmd.AddCommand(cmd)
}

func newTradesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades",
		Long:  "List trades, optionally filtered by symbol, asset type, or direction.",
		Example: `  tradevault trades list
  tradevault trades list --asset crypto --direction long
  tradevault trades list --symbol AAPL --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			filter := api.TradeFilter{}
			filter.Symbol, _ = cmd.Flags().GetString("symbol")
			filter.AssetType, _ = cmd.Flags().GetString("asset")
			filter.Direction, _ = cmd.Flags().GetString("direction")
			filter.From, _ = cmd.Flags().GetString("from")
			filter.To, _ = cmd.Flags().GetString("to")
			filter.Limit, _ = cmd.Flags().GetInt("limit")
			filter.Symbol = strings.ToUpper(filter.Symbol)

			trades, err := app.Client.ListTrades(ctx, filter)
			if err != nil {
				output.Error("Failed to fetch trades: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades found.")
				return nil
			}

			table := NewTable(output, "ID", "Date", "Symbol", "Asset", "Side", "Qty", "Entry", "Exit", "P&L")
			var total float64
			for _, t := range trades {
				total += t.PnL
				date := "—"
				if t.ExitDate != nil {
					date = t.ExitDate.Format(app.Config.UI.DateFormat)
				}
				table.AddRow(
					string(t.ID),
					date,
					t.Symbol,
					string(t.AssetType),
					string(t.Direction),
					fmt.Sprintf("%g", t.Quantity),
					ui.FormatPrice(app.Config.UI.Currency, t.EntryPrice),
					ui.FormatPrice(app.Config.UI.Currency, t.ExitPrice),
					output.FormatPnL(t.PnL),
				)
			}
			table.Render()
			output.Println()
			output.Printf("  %d trade(s), total %s\n", len(trades), output.FormatPnL(total))
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "filter by symbol")
	cmd.Flags().String("asset", "", "filter by asset type (stock, forex, crypto, futures, options)")
	cmd.Flags().String("direction", "", "filter by direction (long, short)")
	cmd.Flags().String("from", "", "earliest exit date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "latest exit date (YYYY-MM-DD)")
	cmd.Flags().Int("limit", 0, "maximum number of trades")
	return cmd
}

func newTradesAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <symbol>",
		Short: "Record a completed trade",
		Long: `Record a completed trade.

P&L is computed server-side from prices, quantity, direction, and commission.`,
		Example: `  tradevault trades add AAPL --entry 184.20 --exit 189.75 --qty 50
  tradevault trades add EURUSD --asset forex --direction short --entry 1.0855 --exit 1.0820 --qty 10000
  tradevault trades add BTCUSD --asset crypto --entry 61250 --exit 64800 --qty 0.5 --strategy "breakout"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			in := models.TradeInput{Symbol: strings.ToUpper(args[0])}

			asset, _ := cmd.Flags().GetString("asset")
			direction, _ := cmd.Flags().GetString("direction")
			in.AssetType = models.AssetType(asset)
			in.Direction = models.Direction(direction)
			in.EntryPrice, _ = cmd.Flags().GetFloat64("entry")
			in.ExitPrice, _ = cmd.Flags().GetFloat64("exit")
			in.Quantity, _ = cmd.Flags().GetFloat64("qty")
			in.Commission, _ = cmd.Flags().GetFloat64("commission")
			in.Strategy, _ = cmd.Flags().GetString("strategy")
			in.MarketConditions, _ = cmd.Flags().GetString("conditions")
			in.Notes, _ = cmd.Flags().GetString("notes")

			if sl, _ := cmd.Flags().GetFloat64("sl"); sl > 0 {
				in.StopLoss = &sl
			}
			if tp, _ := cmd.Flags().GetFloat64("tp"); tp > 0 {
				in.TakeProfit = &tp
			}

			var parseErr error
			if in.EntryDate, parseErr = parseDateFlag(cmd, "entry-date"); parseErr != nil {
				output.Error("%v", parseErr)
				return parseErr
			}
			if in.ExitDate, parseErr = parseDateFlag(cmd, "exit-date"); parseErr != nil {
				output.Error("%v", parseErr)
				return parseErr
			}

			if err := models.ValidateTradeInput(in); err != nil {
				output.Error("Invalid trade: %v", err)
				return err
			}

			trade, err := app.Client.CreateTrade(ctx, in)
			if err != nil {
				output.Error("Failed to save trade: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade %s saved (%s %s), P&L %s",
				trade.ID, trade.Direction, trade.Symbol, output.FormatPnL(trade.PnL))
			return nil
		},
	}

	cmd.Flags().String("asset", string(models.AssetStock), "asset type")
	cmd.Flags().String("direction", string(models.DirectionLong), "long or short")
	cmd.Flags().Float64("entry", 0, "entry price")
	cmd.Flags().Float64("exit", 0, "exit price")
	cmd.Flags().Float64("qty", 0, "quantity")
	cmd.Flags().Float64("commission", 0, "commission paid")
	cmd.Flags().Float64("sl", 0, "stop loss price")
	cmd.Flags().Float64("tp", 0, "take profit price")
	cmd.Flags().String("entry-date", "", "entry timestamp (YYYY-MM-DD or RFC3339)")
	cmd.Flags().String("exit-date", "", "exit timestamp (YYYY-MM-DD or RFC3339)")
	cmd.Flags().String("strategy", "", "strategy name")
	cmd.Flags().String("conditions", "", "market conditions")
	cmd.Flags().String("notes", "", "free-form notes")
	return cmd
}

// parseDateFlag accepts a day or a full timestamp. Session statistics need
// the time-of-day when it is known.
func parseDateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD or RFC3339", name, raw)
}

func newTradesRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <trade-id>",
		Short: "Delete a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			id := models.NormalizeID(args[0])
			if err := app.Client.DeleteTrade(ctx, id); err != nil {
				output.Error("Failed to delete trade: %v", err)
				return err
			}
			output.Success("✓ Trade %s deleted", id)
			return nil
		},
	}
}

func newTradesExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Export all trades to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			trades, err := app.Client.ListTrades(ctx, api.TradeFilter{})
			if err != nil {
				output.Error("Failed to fetch trades: %v", err)
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				output.Error("Failed to create file: %v", err)
				return err
			}
			defer f.Close()

			if err := csvimport.ExportTrades(f, trades); err != nil {
				output.Error("Failed to write CSV: %v", err)
				return err
			}
			output.Success("✓ Exported %d trade(s) to %s", len(trades), args[0])
			return nil
		},
	}
}
