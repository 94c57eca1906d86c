// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tradevault/internal/models"
)

// addBrokerCommands adds broker connection commands.
func addBrokerCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "brokers",
		Short: "Broker connection management",
		Long: `Connect broker accounts and sync their completed trades.

API credentials are write-only: they are sent to the server once when the
connection is created and are never stored or displayed by this client.`,
	}

	cmd.AddCommand(newBrokersListCmd(app))
	cmd.AddCommand(newBrokersAddCmd(app))
	cmd.AddCommand(newBrokersSyncCmd(app))
	cmd.AddCommand(newBrokersRmCmd(app))

	rootCmd.AddCommand(cmd)
}

func newBrokersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connected brokers",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			brokers, err := app.Client.ListBrokers(ctx)
			if err != nil {
				output.Error("Failed to fetch brokers: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(brokers)
			}
			if len(brokers) == 0 {
				output.Info("No brokers connected.")
				output.Dim("Connect one with 'tradevault brokers add'.")
				return nil
			}

			table := NewTable(output, "ID", "Broker", "Account", "Last Sync")
			for _, b := range brokers {
				sync := "never"
				if b.LastSync != nil {
					sync = b.LastSync.Format(time.RFC822)
				}
				table.AddRow(string(b.ID), string(b.BrokerName), orDash(b.AccountID), sync)
			}
			table.Render()
			return nil
		},
	}
}

func newBrokersAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <broker>",
		Short: "Connect a broker account",
		Long: `Connect a broker account so completed trades can be synced.

Supported brokers: alpaca, binance, metatrader.`,
		Example: `  tradevault brokers add alpaca --key $ALPACA_KEY --secret $ALPACA_SECRET --paper
  tradevault brokers add binance --key $BINANCE_KEY --secret $BINANCE_SECRET
  tradevault brokers add metatrader --key $MT_TOKEN --account 12345 --server-url https://mt.example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			creds := models.BrokerCredentials{BrokerName: models.BrokerName(args[0])}
			creds.APIKey, _ = cmd.Flags().GetString("key")
			creds.APISecret, _ = cmd.Flags().GetString("secret")
			creds.AccountID, _ = cmd.Flags().GetString("account")
			creds.ServerURL, _ = cmd.Flags().GetString("server-url")
			creds.Paper, _ = cmd.Flags().GetBool("paper")

			if err := models.ValidateBrokerCredentials(creds); err != nil {
				output.Error("Invalid credentials: %v", err)
				return err
			}

			conn, err := app.Client.AddBroker(ctx, creds)
			if err != nil {
				output.Error("Failed to connect broker: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(conn)
			}
			output.Success("✓ %s connected (id %s)", conn.BrokerName, conn.ID)
			output.Dim("Run 'tradevault brokers sync %s' to fetch completed trades.", conn.ID)
			return nil
		},
	}

	cmd.Flags().String("key", "", "API key")
	cmd.Flags().String("secret", "", "API secret")
	cmd.Flags().String("account", "", "account id (metatrader)")
	cmd.Flags().String("server-url", "", "server URL (metatrader)")
	cmd.Flags().Bool("paper", false, "paper trading account (alpaca)")
	return cmd
}

func newBrokersSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <broker-id>",
		Short: "Sync completed trades from a broker",
		Long: `Fetch completed trades from the broker's API and save them.

The server skips trades it has already imported, so syncing repeatedly is
safe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.PingTimeout)
			defer cancel()

			id := models.NormalizeID(args[0])
			output.Info("Syncing…")
			imported, err := app.Client.SyncBroker(ctx, id)
			if err != nil {
				output.Error("Sync failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]int{"imported": imported})
			}
			if imported == 0 {
				output.Info("Already up to date.")
			} else {
				output.Success("✓ Imported %d new trade(s)", imported)
			}
			return nil
		},
	}
}

func newBrokersRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <broker-id>",
		Short: "Disconnect a broker",
		Long:  "Disconnect a broker account. Trades already imported from it are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.RequestTimeout)
			defer cancel()

			id := models.NormalizeID(args[0])
			if err := app.Client.DeleteBroker(ctx, id); err != nil {
				output.Error("Failed to disconnect broker: %v", err)
				return err
			}
			output.Success("✓ Broker %s disconnected", id)
			return nil
		},
	}
}
