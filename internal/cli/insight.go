// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tradevault/internal/api"
	"tradevault/internal/app"
	apperrors "tradevault/internal/errors"
	"tradevault/internal/stats"
	"tradevault/internal/ui"
)

// addInsightCommands adds AI insight commands.
func addInsightCommands(rootCmd *cobra.Command, cliApp *App) {
	cmd := &cobra.Command{
		Use:   "insight",
		Short: "AI analysis of your trading (premium)",
		Long: `Stream an AI analysis of your trading history.

The analysis is generated server-side and streamed token by token. This is
a premium feature; free accounts get an upgrade notice instead.`,
	}

	cmd.AddCommand(newInsightPerformanceCmd(cliApp))
	cmd.AddCommand(newInsightTradeCmd(cliApp))

	rootCmd.AddCommand(cmd)
}

func newInsightPerformanceCmd(cliApp *App) *cobra.Command {
	return &cobra.Command{
		Use:   "performance",
		Short: "Analyze overall performance",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), cliApp.Config.Server.PingTimeout)
			defer cancel()

			trades, err := cliApp.Client.ListTrades(ctx, api.TradeFilter{})
			if err != nil {
				output.Error("Failed to fetch trades: %v", err)
				return err
			}
			if len(trades) == 0 {
				output.Info("No trades to analyze yet.")
				return nil
			}

			payload := map[string]interface{}{
				"summary": stats.Calc(trades),
				"session": stats.BySession(trades),
			}
			return runStream(ctx, cliApp, output, "performance", "/ai/performance", payload)
		},
	}
}

func newInsightTradeCmd(cliApp *App) *cobra.Command {
	return &cobra.Command{
		Use:   "trade <trade-id>",
		Short: "Analyze a single trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), cliApp.Config.Server.PingTimeout)
			defer cancel()

			payload := map[string]string{"trade_id": args[0]}
			key := "trade:" + args[0]
			return runStream(ctx, cliApp, output, key, "/ai/trade", payload)
		},
	}
}

// runStream drives a streaming call through the app layer so the dual-write
// contract (live patch plus state mirror) holds here exactly as it does in
// the interactive view.
func runStream(ctx context.Context, cliApp *App, output *Output, key, endpoint string, payload interface{}) error {
	a := app.New(cliApp.Client, cliApp.Logger)
	patch := ui.StreamPatch(output.writer)

	a.StreamInsight(ctx, key, endpoint, payload, patch)
	fmt.Fprintln(output.writer)

	if a.State.UpgradePrompt {
		output.Warning("★ AI insights are a premium feature. Upgrade to unlock them.")
		return apperrors.ErrUpgradeRequired
	}
	for _, toast := range a.State.Toasts {
		if toast.Level == app.ToastError {
			return fmt.Errorf("%s", toast.Message)
		}
	}
	return nil
}
