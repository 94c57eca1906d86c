// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradevault/internal/app"
	"tradevault/internal/models"
	"tradevault/internal/ui"
	"tradevault/pkg/utils"
)

// addUICommand adds the interactive full-screen view.
func addUICommand(rootCmd *cobra.Command, cliApp *App) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "ui",
		Short: "Interactive journal view",
		Long: `Open the interactive journal view.

All data is fetched up front; every action re-renders the whole screen from
state. Type 'help' inside the view for the available actions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, cliApp)
		},
	})
}

func runUI(cmd *cobra.Command, cliApp *App) error {
	out := cmd.OutOrStdout()
	ctx := context.Background()

	pal := ui.NewPalette(cliApp.Config.UI.ColorEnabled && isTerminal())
	renderer := ui.NewRenderer(pal, cliApp.Config.UI.Currency, cliApp.Config.UI.DateFormat)

	a := app.New(cliApp.Client, cliApp.Logger)
	a.OnRender(func() {
		fmt.Fprint(out, "\033[2J\033[H")
		fmt.Fprint(out, renderer.Render(a.State))
	})

	// Wake the server before the first fetch; free-tier hosts sleep.
	pingCtx, cancel := context.WithTimeout(ctx, cliApp.Config.Server.PingTimeout)
	err := utils.Retry(pingCtx, utils.PingRetryConfig(), func() error {
		return cliApp.Client.Ping(pingCtx)
	})
	cancel()
	if err != nil {
		fmt.Fprintf(out, "Server unreachable: %v\n", err)
		return err
	}

	a.Init(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(out, "\n> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" || line == "q" {
			break
		}
		if line != "" {
			dispatch(ctx, cliApp, a, out, line)
		}
		fmt.Fprint(out, "\n> ")
	}
	return scanner.Err()
}

func dispatch(ctx context.Context, cliApp *App, a *app.App, out io.Writer, line string) {
	fields := strings.Fields(line)
	verb, rest := fields[0], fields[1:]

	switch verb {
	case "help":
		printUIHelp(out)

	case "dashboard", "trades", "analytics", "calendar", "journal", "import", "brokers":
		a.ChangeView(app.View(verb))

	case "filter":
		if len(rest) == 2 {
			name := rest[0]
			// The view says "asset"; the state filter key is "asset_type".
			if name == "asset" {
				name = "asset_type"
			}
			a.SetFilter(name, rest[1])
		} else {
			fmt.Fprintln(out, "usage: filter <asset|direction> <value|all>")
		}

	case "next":
		a.ChangeCalendarMonth(1)
	case "prev":
		a.ChangeCalendarMonth(-1)

	case "open":
		if len(rest) == 1 {
			a.OpenTrade(models.NormalizeID(rest[0]))
		} else {
			fmt.Fprintln(out, "usage: open <trade-id>")
		}
	case "close":
		a.CloseModal()
	case "rm":
		if len(rest) == 1 {
			a.DeleteTrade(ctx, models.NormalizeID(rest[0]))
		} else {
			fmt.Fprintln(out, "usage: rm <trade-id>")
		}

	case "note":
		if len(rest) > 0 {
			day := time.Now().Format("2006-01-02")
			a.SaveJournal(ctx, day, strings.Join(rest, " "))
		} else {
			fmt.Fprintln(out, "usage: note <text>")
		}

	case "load":
		if len(rest) == 1 {
			a.LoadCSV(ctx, rest[0])
		} else {
			fmt.Fprintln(out, "usage: load <file.csv>")
		}
	case "confirm":
		a.ConfirmImport(ctx)
	case "discard":
		a.ClearCSV()

	case "sync":
		if len(rest) == 1 {
			a.SyncBroker(ctx, models.NormalizeID(rest[0]))
		} else {
			fmt.Fprintln(out, "usage: sync <broker-id>")
		}

	case "insight":
		a.ChangeView(app.ViewAnalytics)
		a.StreamInsight(ctx, "analytics", "/ai/performance", nil, ui.StreamPatch(out))

	case "refresh":
		a.Init(ctx)

	default:
		fmt.Fprintf(out, "unknown command %q; type 'help'\n", verb)
	}
}

func printUIHelp(out io.Writer) {
	fmt.Fprint(out, `Views:    dashboard trades analytics calendar journal import brokers
Trades:   open <id> | close | rm <id> | filter <asset|direction> <value|all>
Calendar: next | prev
Journal:  note <text>
Import:   load <file.csv> | confirm | discard
Brokers:  sync <broker-id>
Other:    insight | refresh | quit
`)
}
