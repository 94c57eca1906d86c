// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradevault/pkg/utils"
)

// addSessionCommands adds server session commands.
func addSessionCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newLoginCmd(app))
	rootCmd.AddCommand(newLogoutCmd(app))
	rootCmd.AddCommand(newStatusCmd(app))
}

func newLoginCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the TradeVault server",
		Long: `Log in to the TradeVault server with your account email and password.

The session token is stored under the config directory and reused by every
other command until it expires or you log out.`,
		Example: `  tradevault login
  tradevault login --email you@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.PingTimeout)
			defer cancel()

			email, _ := cmd.Flags().GetString("email")
			reader := bufio.NewReader(os.Stdin)
			if email == "" {
				output.Print("Email: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				email = strings.TrimSpace(line)
			}
			if email == "" {
				output.Error("Email is required")
				return fmt.Errorf("email required")
			}

			output.Print("Password: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			password := strings.TrimSpace(line)
			if password == "" {
				output.Error("Password is required")
				return fmt.Errorf("password required")
			}

			if err := app.Client.Login(ctx, email, password); err != nil {
				output.Error("Login failed: %v", err)
				return err
			}

			output.Success("✓ Logged in as %s", email)
			return nil
		},
	}

	cmd.Flags().String("email", "", "account email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and discard the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Tokens.Clear(); err != nil {
				output.Error("Failed to clear session: %v", err)
				return err
			}
			output.Success("✓ Logged out")
			return nil
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check server reachability and session state",
		Long: `Ping the TradeVault server and report the stored session state.

The server sleeps when idle on the free tier; the ping retries with backoff
to give it time to wake up.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.PingTimeout)
			defer cancel()

			start := time.Now()
			err := utils.Retry(ctx, utils.PingRetryConfig(), func() error {
				return app.Client.Ping(ctx)
			})
			elapsed := time.Since(start).Round(time.Millisecond)

			hasToken := app.Tokens.Token() != ""
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"server":     app.Config.Server.BaseURL,
					"reachable":  err == nil,
					"latency_ms": elapsed.Milliseconds(),
					"logged_in":  hasToken,
				})
			}

			output.Printf("Server: %s\n", app.Config.Server.BaseURL)
			if err != nil {
				output.Error("✗ Unreachable: %v", err)
				return err
			}
			output.Success("✓ Reachable (%s)", elapsed)
			if hasToken {
				output.Info("Session token present; run a command to verify it is still valid.")
			} else {
				output.Dim("Not logged in. Run 'tradevault login'.")
			}
			return nil
		},
	}
}
