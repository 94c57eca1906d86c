// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradevault/internal/api"
	"tradevault/internal/config"
	"tradevault/internal/logging"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-01-01"
)

// App holds the application dependencies shared by all commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Client *api.Client
	Tokens *api.TokenStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	app.Tokens = api.NewTokenStore(config.DefaultConfigDir())
	app.Client = api.NewClient(cfg.Server.BaseURL, app.Tokens,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Server.RequestTimeout),
		api.WithSessionExpiredHandler(func() {
			logger.Warn().Msg("Session expired, credentials cleared")
		}),
	)

	rootCmd := &cobra.Command{
		Use:   "tradevault",
		Short: "TradeVault - trading journal CLI",
		Long: `TradeVault is a trading journal for stocks, options, futures, forex, and crypto.

Trades live on the TradeVault server; this client fetches them, computes
performance statistics locally, and renders dashboards, calendars, and
reports in the terminal. Completed trades can be imported from CSV exports
or synced from connected brokers.

Use 'tradevault help <command>' for more information about a command.
Use 'tradevault ui' for the interactive full-screen view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/tradevault)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addSessionCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addReportCommands(rootCmd, app)
	addJournalCommands(rootCmd, app)
	addImportCommands(rootCmd, app)
	addBrokerCommands(rootCmd, app)
	addInsightCommands(rootCmd, app)
	addUICommand(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("TradeVault v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			output.Bold("Server")
			output.Printf("  Base URL:        %s\n", app.Config.Server.BaseURL)
			output.Printf("  Request timeout: %s\n", app.Config.Server.RequestTimeout)
			output.Printf("  Ping timeout:    %s\n", app.Config.Server.PingTimeout)
			output.Println()
			output.Bold("UI")
			output.Printf("  Color:           %t\n", app.Config.UI.ColorEnabled)
			output.Printf("  Currency:        %s\n", app.Config.UI.Currency)
			output.Printf("  Date format:     %s\n", app.Config.UI.DateFormat)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}
