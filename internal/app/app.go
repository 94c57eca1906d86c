package app

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tradevault/internal/api"
	"tradevault/internal/csvimport"
	"tradevault/internal/models"
)

// Backend is the remote collaborator contract the handlers depend on.
// *api.Client satisfies it; tests substitute a fake.
type Backend interface {
	ListTrades(ctx context.Context, filter api.TradeFilter) ([]models.Trade, error)
	CreateTrade(ctx context.Context, in models.TradeInput) (*models.Trade, error)
	UpdateTrade(ctx context.Context, id models.ID, in models.TradeInput) (*models.Trade, error)
	DeleteTrade(ctx context.Context, id models.ID) error

	ListJournal(ctx context.Context) ([]models.JournalEntry, error)
	CreateJournal(ctx context.Context, entryDate, content string) (*models.JournalEntry, error)
	DeleteJournal(ctx context.Context, id models.ID) error

	ListBrokers(ctx context.Context) ([]models.BrokerConnection, error)
	AddBroker(ctx context.Context, creds models.BrokerCredentials) (*models.BrokerConnection, error)
	DeleteBroker(ctx context.Context, id models.ID) error
	SyncBroker(ctx context.Context, id models.ID) (int, error)

	PreviewCSV(ctx context.Context, fileName string, content io.Reader) (*models.CsvPreview, error)
	ConfirmImport(ctx context.Context, rows []models.CsvRow) (int, error)

	Stream(ctx context.Context, endpoint string, payload interface{}, onChunk func(string)) error
}

// App wires the state store to the backend and the render loop.
type App struct {
	State  *State
	Logger zerolog.Logger

	backend    Backend
	reconciler *csvimport.Reconciler

	// render is the single re-render entry point, invoked after every
	// mutation. It must tolerate being called at any time.
	render func()
}

// New creates an App around a fresh state.
func New(backend Backend, logger zerolog.Logger) *App {
	return &App{
		State:      NewState(time.Now()),
		Logger:     logger,
		backend:    backend,
		reconciler: csvimport.NewReconciler(backend),
	}
}

// OnRender registers the render callback. Until set, renders are no-ops,
// which keeps the handlers usable from non-interactive commands.
func (a *App) OnRender(fn func()) { a.render = fn }

func (a *App) Render() {
	if a.render != nil {
		a.render()
	}
}

// Notify appends a toast. Handlers use this for every user-visible failure;
// no error escapes a handler.
func (a *App) Notify(level ToastLevel, message string) {
	a.State.Toasts = append(a.State.Toasts, Toast{Level: level, Message: message, At: time.Now()})
	const keep = 5
	if n := len(a.State.Toasts); n > keep {
		a.State.Toasts = a.State.Toasts[n-keep:]
	}
}

// Init populates the three collections with one parallel fetch each. Each
// completion mutates only its own collection, so arrival order is harmless.
func (a *App) Init(ctx context.Context) {
	a.State.Loading = true
	a.Render()

	var (
		wg               sync.WaitGroup
		trades           []models.Trade
		entries          []models.JournalEntry
		brokers          []models.BrokerConnection
		tErr, jErr, bErr error
	)
	wg.Add(3)
	go func() { defer wg.Done(); trades, tErr = a.backend.ListTrades(ctx, api.TradeFilter{}) }()
	go func() { defer wg.Done(); entries, jErr = a.backend.ListJournal(ctx) }()
	go func() { defer wg.Done(); brokers, bErr = a.backend.ListBrokers(ctx) }()
	wg.Wait()

	if tErr == nil {
		a.State.Trades = trades
	}
	if jErr == nil {
		a.State.JournalEntries = entries
	}
	if bErr == nil {
		a.State.Brokers = brokers
	}
	if err := firstError(tErr, jErr, bErr); err != nil {
		a.Logger.Error().Err(err).Msg("Initial load failed")
		a.Notify(ToastError, "Could not reach server: "+err.Error())
	}

	a.State.Loading = false
	a.Render()
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// refreshTrades replaces the trade list with the server's authoritative
// copy. Used after CSV import and broker sync, where server-side dedupe and
// id assignment make incremental patching unsafe.
func (a *App) refreshTrades(ctx context.Context) error {
	trades, err := a.backend.ListTrades(ctx, api.TradeFilter{})
	if err != nil {
		return err
	}
	a.State.Trades = trades
	return nil
}
