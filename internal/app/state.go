// Package app owns the in-memory application state and the handlers that
// mutate it. The state has exactly one writer: handler methods on App. The
// renderer and the statistics engine only ever read it. Every handler ends
// by triggering a render pass; the single exception, streaming AI text, is
// documented in the ui package.
package app

import (
	"time"

	"tradevault/internal/models"
)

// View identifies a main-content view.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewTrades    View = "trades"
	ViewAnalytics View = "analytics"
	ViewCalendar  View = "calendar"
	ViewJournal   View = "journal"
	ViewImport    View = "import"
	ViewBrokers   View = "brokers"
)

// Views lists all views in navigation order.
var Views = []View{ViewDashboard, ViewTrades, ViewAnalytics, ViewCalendar, ViewJournal, ViewImport, ViewBrokers}

// FilterAll is the default value of the list filters.
const FilterAll = "all"

// ModalMode is the trade-detail modal state machine.
//
//	Closed -> Creating   on "add trade"
//	Closed -> Viewing    on "open trade"
//	Viewing -> Editing   on "edit"
//	Editing/Creating -> Closed on cancel or successful save
//	Viewing -> Closed    on close or delete success
type ModalMode int

const (
	ModalClosed ModalMode = iota
	ModalViewing
	ModalEditing
	ModalCreating
)

// TradeModal holds the modal state and, for Viewing/Editing, the subject
// trade's id. The trade itself is looked up in the collection at render
// time so the modal can never outlive its record.
type TradeModal struct {
	Mode    ModalMode
	TradeID models.ID
}

// ToastLevel classifies a notification.
type ToastLevel string

const (
	ToastInfo    ToastLevel = "info"
	ToastSuccess ToastLevel = "success"
	ToastWarn    ToastLevel = "warn"
	ToastError   ToastLevel = "error"
)

// Toast is a transient user-visible notification.
type Toast struct {
	Level   ToastLevel
	Message string
	At      time.Time
}

// State is the single mutable application state record. One instance exists
// per process; all reads and writes happen on the handler goroutine.
type State struct {
	CurrentView View

	Trades         []models.Trade
	JournalEntries []models.JournalEntry
	Brokers        []models.BrokerConnection

	Loading bool
	Syncing bool

	FilterAssetType string // FilterAll or an AssetType value
	FilterDirection string // FilterAll or a Direction value

	CalendarYear  int
	CalendarMonth time.Month

	Modal TradeModal

	CsvPreview   *models.CsvPreview
	CsvImporting bool
	CsvProgress  int // percent

	// StreamBuffers mirrors streamed AI text keyed by context (e.g. the
	// view or trade the insight belongs to), so a full render after
	// streaming reproduces the exact visible text.
	StreamBuffers map[string]string

	// UpgradePrompt is set when a premium-gated call was refused; the
	// renderer shows the upsell affordance instead of an error toast.
	UpgradePrompt bool

	Toasts []Toast
}

// NewState returns the initial state for a session starting at now.
func NewState(now time.Time) *State {
	return &State{
		CurrentView:     ViewDashboard,
		Loading:         true,
		FilterAssetType: FilterAll,
		FilterDirection: FilterAll,
		CalendarYear:    now.Year(),
		CalendarMonth:   now.Month(),
		StreamBuffers:   make(map[string]string),
	}
}

// FindTrade returns the trade with the given id, or nil. Ids are already
// normalized to strings at the decode boundary, so this is a plain value
// comparison.
func (s *State) FindTrade(id models.ID) *models.Trade {
	for i := range s.Trades {
		if s.Trades[i].ID == id {
			return &s.Trades[i]
		}
	}
	return nil
}

// removeTrade deletes the trade with the given id from the collection,
// reporting whether it was present.
func (s *State) removeTrade(id models.ID) bool {
	for i := range s.Trades {
		if s.Trades[i].ID == id {
			s.Trades = append(s.Trades[:i], s.Trades[i+1:]...)
			return true
		}
	}
	return false
}

// replaceTrade swaps the stored trade with the same id, reporting whether
// it was present.
func (s *State) replaceTrade(updated models.Trade) bool {
	for i := range s.Trades {
		if s.Trades[i].ID == updated.ID {
			s.Trades[i] = updated
			return true
		}
	}
	return false
}

func (s *State) removeJournalEntry(id models.ID) bool {
	for i := range s.JournalEntries {
		if s.JournalEntries[i].ID == id {
			s.JournalEntries = append(s.JournalEntries[:i], s.JournalEntries[i+1:]...)
			return true
		}
	}
	return false
}

// FindBroker returns the broker connection with the given id, or nil.
func (s *State) FindBroker(id models.ID) *models.BrokerConnection {
	for i := range s.Brokers {
		if s.Brokers[i].ID == id {
			return &s.Brokers[i]
		}
	}
	return nil
}

func (s *State) removeBroker(id models.ID) bool {
	for i := range s.Brokers {
		if s.Brokers[i].ID == id {
			s.Brokers = append(s.Brokers[:i], s.Brokers[i+1:]...)
			return true
		}
	}
	return false
}

// FilteredTrades applies the list filters.
func (s *State) FilteredTrades() []models.Trade {
	if s.FilterAssetType == FilterAll && s.FilterDirection == FilterAll {
		return s.Trades
	}
	out := make([]models.Trade, 0, len(s.Trades))
	for _, t := range s.Trades {
		if s.FilterAssetType != FilterAll && string(t.AssetType) != s.FilterAssetType {
			continue
		}
		if s.FilterDirection != FilterAll && string(t.Direction) != s.FilterDirection {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ModalTrade resolves the modal's subject trade, or nil when the modal is
// closed, creating, or the record is gone.
func (s *State) ModalTrade() *models.Trade {
	if s.Modal.Mode != ModalViewing && s.Modal.Mode != ModalEditing {
		return nil
	}
	return s.FindTrade(s.Modal.TradeID)
}
