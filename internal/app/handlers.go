package app

import (
	"context"
	"fmt"
	"time"

	"tradevault/internal/csvimport"
	apperrors "tradevault/internal/errors"
	"tradevault/internal/models"
)

// ── Navigation ──────────────────────────────────────────────────────────

// ChangeView switches the main content view.
func (a *App) ChangeView(v View) {
	a.State.CurrentView = v
	a.Render()
}

// SetFilter updates a trade-list filter ("asset_type" or "direction").
func (a *App) SetFilter(name, value string) {
	switch name {
	case "asset_type":
		a.State.FilterAssetType = value
	case "direction":
		a.State.FilterDirection = value
	}
	a.Render()
}

// ChangeCalendarMonth moves the calendar view by delta months.
func (a *App) ChangeCalendarMonth(delta int) {
	d := time.Date(a.State.CalendarYear, a.State.CalendarMonth, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	a.State.CalendarYear, a.State.CalendarMonth = d.Year(), d.Month()
	a.Render()
}

// ── Trade modal state machine ───────────────────────────────────────────

// OpenAddTrade moves the modal Closed -> Creating.
func (a *App) OpenAddTrade() {
	a.State.Modal = TradeModal{Mode: ModalCreating}
	a.Render()
}

// OpenTrade moves the modal Closed -> Viewing for the given trade. Unknown
// ids leave the modal untouched.
func (a *App) OpenTrade(id models.ID) {
	if a.State.FindTrade(id) == nil {
		a.Notify(ToastWarn, "Trade not found")
		a.Render()
		return
	}
	a.State.Modal = TradeModal{Mode: ModalViewing, TradeID: id}
	a.Render()
}

// EditTrade moves the modal Viewing -> Editing; the form pre-fills from the
// viewed trade and save routes to an update instead of a create.
func (a *App) EditTrade() {
	if a.State.Modal.Mode != ModalViewing || a.State.ModalTrade() == nil {
		return
	}
	a.State.Modal.Mode = ModalEditing
	a.Render()
}

// CloseModal moves the modal to Closed from any state.
func (a *App) CloseModal() {
	a.State.Modal = TradeModal{}
	a.Render()
}

// ── Trades ──────────────────────────────────────────────────────────────

// SaveTrade validates the form input and routes it to a create or an update
// depending on the modal state. On failure the collections are untouched.
func (a *App) SaveTrade(ctx context.Context, in models.TradeInput) {
	if err := models.ValidateTradeInput(in); err != nil {
		a.Notify(ToastError, err.Error())
		a.Render()
		return
	}

	editing := a.State.Modal.Mode == ModalEditing
	targetID := a.State.Modal.TradeID

	a.State.Syncing = true
	a.Render()

	if editing {
		updated, err := a.backend.UpdateTrade(ctx, targetID, in)
		a.State.Syncing = false
		if err != nil {
			a.fail("Failed to save trade", err)
			return
		}
		// The record may have been deleted by another completed handler
		// while this one was in flight; re-validate before mutating.
		if !a.State.replaceTrade(*updated) {
			a.Notify(ToastWarn, "Trade was removed while saving; changes discarded")
			a.State.Modal = TradeModal{}
			a.Render()
			return
		}
		a.State.Modal = TradeModal{}
		a.Notify(ToastSuccess, fmt.Sprintf("Updated %s", updated.Symbol))
	} else {
		created, err := a.backend.CreateTrade(ctx, in)
		a.State.Syncing = false
		if err != nil {
			a.fail("Failed to save trade", err)
			return
		}
		a.State.Trades = append([]models.Trade{*created}, a.State.Trades...)
		a.State.Modal = TradeModal{}
		a.Notify(ToastSuccess, fmt.Sprintf("Saved %s (%+.2f)", created.Symbol, created.PnL))
	}
	a.Render()
}

// DeleteTrade removes a trade. When the deleted trade is the one open in
// the detail modal, the modal closes in the same state update, so no render
// can ever show a detail view of a missing record.
func (a *App) DeleteTrade(ctx context.Context, id models.ID) {
	a.State.Syncing = true
	a.Render()

	err := a.backend.DeleteTrade(ctx, id)
	a.State.Syncing = false
	if err != nil {
		a.fail("Failed to delete trade", err)
		return
	}

	a.State.removeTrade(id)
	if (a.State.Modal.Mode == ModalViewing || a.State.Modal.Mode == ModalEditing) && a.State.Modal.TradeID == id {
		a.State.Modal = TradeModal{}
	}
	a.Notify(ToastInfo, "Trade deleted")
	a.Render()
}

// ── Journal ─────────────────────────────────────────────────────────────

// SaveJournal creates a journal entry. Multiple entries may share a date.
func (a *App) SaveJournal(ctx context.Context, entryDate, content string) {
	if err := models.ValidateJournalInput(entryDate, content); err != nil {
		a.Notify(ToastError, err.Error())
		a.Render()
		return
	}

	a.State.Syncing = true
	a.Render()

	entry, err := a.backend.CreateJournal(ctx, entryDate, content)
	a.State.Syncing = false
	if err != nil {
		a.fail("Failed to save entry", err)
		return
	}
	a.State.JournalEntries = append([]models.JournalEntry{*entry}, a.State.JournalEntries...)
	a.Notify(ToastSuccess, "Journal entry saved")
	a.Render()
}

// DeleteJournal removes a journal entry.
func (a *App) DeleteJournal(ctx context.Context, id models.ID) {
	if err := a.backend.DeleteJournal(ctx, id); err != nil {
		a.fail("Failed to delete entry", err)
		return
	}
	a.State.removeJournalEntry(id)
	a.Notify(ToastInfo, "Entry deleted")
	a.Render()
}

// ── Brokers ─────────────────────────────────────────────────────────────

// AddBroker creates a broker connection. The credentials are sent once and
// never stored locally.
func (a *App) AddBroker(ctx context.Context, creds models.BrokerCredentials) {
	if err := models.ValidateBrokerCredentials(creds); err != nil {
		a.Notify(ToastError, err.Error())
		a.Render()
		return
	}

	broker, err := a.backend.AddBroker(ctx, creds)
	if err != nil {
		a.fail("Failed to connect broker", err)
		return
	}
	a.State.Brokers = append(a.State.Brokers, *broker)
	a.Notify(ToastSuccess, fmt.Sprintf("%s connected", creds.BrokerName))
	a.Render()
}

// SyncBroker triggers a server-side sync. A positive imported count means
// new trades exist server-side, so the whole trade list is re-fetched.
func (a *App) SyncBroker(ctx context.Context, id models.ID) {
	broker := a.State.FindBroker(id)
	if broker == nil {
		a.Notify(ToastWarn, "Broker not found")
		a.Render()
		return
	}
	name := broker.BrokerName

	a.State.Syncing = true
	a.Render()

	imported, err := a.backend.SyncBroker(ctx, id)
	if err != nil {
		a.State.Syncing = false
		a.fail("Sync failed", err)
		return
	}

	if imported > 0 {
		if err := a.refreshTrades(ctx); err != nil {
			a.State.Syncing = false
			a.fail("Sync succeeded but refresh failed", err)
			return
		}
	}

	// The connection may have been deleted while the sync was in flight.
	if b := a.State.FindBroker(id); b != nil {
		now := time.Now()
		b.LastSync = &now
	}
	a.State.Syncing = false
	a.Notify(ToastSuccess, fmt.Sprintf("Synced %d trade(s) from %s", imported, name))
	a.Render()
}

// DeleteBroker removes a broker connection.
func (a *App) DeleteBroker(ctx context.Context, id models.ID) {
	if err := a.backend.DeleteBroker(ctx, id); err != nil {
		a.fail("Failed to remove broker", err)
		return
	}
	a.State.removeBroker(id)
	a.Notify(ToastInfo, "Broker removed")
	a.Render()
}

// ── CSV import ──────────────────────────────────────────────────────────

// LoadCSV uploads a file for preview. On failure any previous preview is
// left untouched.
func (a *App) LoadCSV(ctx context.Context, path string) {
	a.Notify(ToastInfo, "Parsing CSV…")
	a.Render()

	preview, err := a.reconciler.LoadPreview(ctx, path)
	if err != nil {
		a.fail("Parse error", err)
		return
	}
	a.State.CsvPreview = preview
	a.State.CurrentView = ViewImport
	a.Render()
}

// ConfirmImport commits the importable preview rows, then replaces the
// trade list with the server's authoritative copy.
func (a *App) ConfirmImport(ctx context.Context) {
	if a.State.CsvPreview == nil {
		return
	}

	a.State.CsvImporting = true
	a.State.CsvProgress = 10
	a.Render()

	a.State.CsvProgress = 50
	a.Render()

	imported, err := a.reconciler.Confirm(ctx, a.State.CsvPreview)
	if err != nil {
		a.State.CsvImporting = false
		a.State.CsvProgress = 0
		a.fail("Import failed", err)
		return
	}

	a.State.CsvProgress = 100
	if err := a.refreshTrades(ctx); err != nil {
		a.State.CsvImporting = false
		a.State.CsvProgress = 0
		a.fail("Import succeeded but refresh failed", err)
		return
	}

	a.State.CsvPreview = nil
	a.State.CsvImporting = false
	a.State.CsvProgress = 0
	a.Notify(ToastSuccess, fmt.Sprintf("Imported %d trade(s)", imported))
	a.Render()
}

// ClearCSV drops the current preview without importing.
func (a *App) ClearCSV() {
	a.State.CsvPreview = nil
	a.State.CsvImporting = false
	a.State.CsvProgress = 0
	a.Render()
}

// ImportableRowCount reports how many preview rows would be imported.
func (a *App) ImportableRowCount() int {
	return len(csvimport.ImportableRows(a.State.CsvPreview))
}

// ── Errors ──────────────────────────────────────────────────────────────

// fail converts a handler error into the matching user-visible path: the
// upgrade prompt for premium-gated calls, a toast otherwise. Prior state is
// always left intact.
func (a *App) fail(prefix string, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrUpgradeRequired):
		a.State.UpgradePrompt = true
	case apperrors.Is(err, apperrors.ErrSessionExpired):
		a.Notify(ToastError, err.Error())
	default:
		a.Notify(ToastError, prefix+": "+err.Error())
	}
	a.Logger.Error().Err(err).Msg(prefix)
	a.Render()
}
