// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tradevault/internal/api"
	"tradevault/internal/stats"
	"tradevault/internal/ui"
)

// addReportCommands adds statistics and reporting commands.
func addReportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newDashboardCmd(app))
	rootCmd.AddCommand(newReportCmd(app))
	rootCmd.AddCommand(newCalendarCmd(app))
}

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the performance dashboard",
		Long:  "Fetch all trades and show headline performance statistics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			trades, err := app.Client.ListTrades(ctx, api.TradeFilter{})
			if err != nil {
				output.Error("Failed to fetch trades: %v", err)
				return err
			}

			sum := stats.Calc(trades)
			if output.IsJSON() {
				return output.JSON(sum)
			}

			output.Bold("Performance Dashboard")
			output.Println()
			output.Printf("  Total P&L:      %s\n", output.FormatPnL(sum.TotalPnL))
			output.Printf("  Total Trades:   %d (%d wins / %d losses)\n",
				sum.TotalTrades, sum.WinningTrades, sum.LosingTrades)
			output.Printf("  Win Rate:       %.1f%%\n", sum.WinRate)
			output.Printf("  Avg Win:        %s%.2f\n", app.Config.UI.Currency, sum.AvgWin)
			output.Printf("  Avg Loss:       %s%.2f\n", app.Config.UI.Currency, sum.AvgLoss)
			output.Printf("  Largest Win:    %s\n", output.FormatPnL(sum.LargestWin))
			output.Printf("  Largest Loss:   %s\n", output.FormatPnL(sum.LargestLoss))
			output.Printf("  Expectancy:     %s%.2f per trade\n", app.Config.UI.Currency, sum.Expectancy)
			output.Printf("  Profit Factor:  %s\n", ui.FormatRatio(sum.ProfitFactor))
			output.Printf("  R-Multiple:     %s\n", ui.FormatRatio(sum.RMultiple))
			return nil
		},
	}
}

func newReportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show the full analytics report",
		Long:  "Performance broken down by strategy, asset type, and trading session, plus the equity curve.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			trades, err := app.Client.ListTrades(ctx, api.TradeFilter{})
			if err != nil {
				output.Error("Failed to fetch trades: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"summary":  stats.Calc(trades),
					"strategy": stats.ByStrategy(trades),
					"asset":    stats.ByAssetType(trades),
					"session":  stats.BySession(trades),
				})
			}

			output.Bold("By Strategy")
			table := NewTable(output, "Strategy", "Trades", "Win Rate", "P&L")
			for _, g := range stats.ByStrategy(trades) {
				table.AddRow(g.Key, fmt.Sprintf("%d", g.Trades),
					fmt.Sprintf("%.1f%%", g.WinRate()), output.FormatPnL(g.PnL))
			}
			table.Render()

			output.Println()
			output.Bold("By Asset Type")
			table = NewTable(output, "Asset", "Trades", "Win Rate", "P&L")
			for _, g := range stats.ByAssetType(trades) {
				table.AddRow(g.Key, fmt.Sprintf("%d", g.Trades),
					fmt.Sprintf("%.1f%%", g.WinRate()), output.FormatPnL(g.PnL))
			}
			table.Render()

			output.Println()
			output.Bold("By Session")
			table = NewTable(output, "Session", "Trades", "Wins", "P&L")
			for _, b := range stats.BySession(trades) {
				table.AddRow(string(b.Session), fmt.Sprintf("%d", b.Trades),
					fmt.Sprintf("%d", b.Wins), output.FormatPnL(b.PnL))
			}
			table.Render()

			if curve := stats.EquityCurve(trades); len(curve) > 0 {
				output.Println()
				output.Bold("Equity Curve")
				step := len(curve)/10 + 1
				for i := 0; i < len(curve); i += step {
					p := curve[i]
					date := "—"
					if p.Trade.ExitDate != nil {
						date = p.Trade.ExitDate.Format(app.Config.UI.DateFormat)
					}
					output.Printf("  %s  %s\n", date, output.FormatPnL(p.Cumulative))
				}
				last := curve[len(curve)-1]
				output.Printf("  Final: %s after %d closed trade(s)\n",
					output.FormatPnL(last.Cumulative), len(curve))
			}
			return nil
		},
	}
}

func newCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the monthly P&L calendar",
		Example: `  tradevault calendar
  tradevault calendar --month 2026-07`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			now := time.Now()
			year, monthNum := now.Year(), now.Month()
			if raw, _ := cmd.Flags().GetString("month"); raw != "" {
				t, err := time.Parse("2006-01", raw)
				if err != nil {
					output.Error("Invalid --month %q: want YYYY-MM", raw)
					return err
				}
				year, monthNum = t.Year(), t.Month()
			}

			trades, err := app.Client.ListTrades(ctx, api.TradeFilter{})
			if err != nil {
				output.Error("Failed to fetch trades: %v", err)
				return err
			}
			entries, err := app.Client.ListJournal(ctx)
			if err != nil {
				output.Warning("Journal unavailable: %v", err)
			}

			month := stats.Month(trades, entries, year, monthNum)
			if output.IsJSON() {
				return output.JSON(month)
			}

			title := time.Date(year, monthNum, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
			output.Bold("Calendar — %s", title)
			output.Println()
			output.Printf("  Monthly P&L:   %s\n", output.FormatPnL(month.TotalPnL))
			output.Printf("  Trading days:  %d (%d green / %d red, %.1f%% day win rate)\n",
				month.TradingDays, month.WinningDays, month.LosingDays, month.DayWinRate)
			output.Printf("  Avg daily:     %s%.2f\n", app.Config.UI.Currency, month.AvgDaily)
			output.Println()

			for day := 1; day <= stats.DaysIn(year, monthNum); day++ {
				ds, traded := month.Days[day]
				journaled := month.JournalDays[day]
				if !traded && !journaled {
					continue
				}
				line := fmt.Sprintf("  %2d", day)
				if traded {
					line += fmt.Sprintf("  %s (%d trade(s))", output.FormatPnL(ds.PnL), ds.Trades)
				}
				if journaled {
					line += "  " + output.DimText("journaled")
				}
				output.Println(line)
			}

			if len(month.Weeks) > 0 {
				output.Println()
				output.Bold("Weekly")
				for _, w := range month.Weeks {
					output.Printf("  Week of %s  %s  (%d trade(s))\n",
						w.Start.Format(app.Config.UI.DateFormat), output.FormatPnL(w.PnL), w.Trades)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("month", "", "month to show (YYYY-MM, default current)")
	return cmd
}
