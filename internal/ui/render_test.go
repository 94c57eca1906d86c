package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradevault/internal/app"
	"tradevault/internal/models"
	"tradevault/internal/stats"
)

func testRenderer() *Renderer {
	// Plain palette keeps output byte-stable.
	return NewRenderer(NewPalette(false), "$", "2006-01-02")
}

func loadedState() *app.State {
	s := app.NewState(time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC))
	s.Loading = false
	exit := time.Date(2026, time.August, 10, 16, 0, 0, 0, time.UTC)
	s.Trades = []models.Trade{
		{ID: "t1", Symbol: "AAPL", AssetType: models.AssetStock, Direction: models.DirectionLong,
			EntryPrice: 100, ExitPrice: 110, Quantity: 10, PnL: 100, ExitDate: &exit},
		{ID: "t2", Symbol: "EURUSD", AssetType: models.AssetForex, Direction: models.DirectionShort,
			EntryPrice: 1.0850, ExitPrice: 1.0900, Quantity: 10000, PnL: -50, ExitDate: &exit},
	}
	return s
}

func TestRenderIsIdempotent(t *testing.T) {
	r := testRenderer()
	s := loadedState()

	for _, v := range app.Views {
		s.CurrentView = v
		first := r.Render(s)
		second := r.Render(s)
		assert.Equal(t, first, second, "view %s", v)
		assert.NotEmpty(t, first)
	}
}

func TestRenderIsTotal(t *testing.T) {
	r := testRenderer()

	assert.Equal(t, "", r.Render(nil))

	// A zero-value state (not even NewState-initialized) must not panic.
	assert.NotPanics(t, func() { r.Render(&app.State{}) })

	s := app.NewState(time.Now())
	s.Loading = false
	s.CurrentView = app.View("bogus")
	out := r.Render(s)
	assert.Contains(t, out, "Nothing here")
}

func TestRenderLoadingSkeleton(t *testing.T) {
	s := app.NewState(time.Now())
	out := testRenderer().Render(s)
	assert.Contains(t, out, "Loading…")
}

func TestRenderEmptyStates(t *testing.T) {
	r := testRenderer()
	s := app.NewState(time.Now())
	s.Loading = false

	s.CurrentView = app.ViewDashboard
	assert.Contains(t, r.Render(s), "No trades yet")

	s.CurrentView = app.ViewImport
	assert.Contains(t, r.Render(s), "No CSV loaded")

	s.CurrentView = app.ViewBrokers
	assert.Contains(t, r.Render(s), "No brokers connected")

	s.CurrentView = app.ViewJournal
	assert.Contains(t, r.Render(s), "No entries yet")
}

func TestRenderDashboardShowsUndefinedRatioGlyph(t *testing.T) {
	r := testRenderer()
	s := app.NewState(time.Now())
	s.Loading = false
	s.Trades = []models.Trade{{Symbol: "AAPL", PnL: 100}} // no losses

	out := r.Render(s)
	assert.Contains(t, out, "—", "undefined profit factor renders as the dash glyph")
}

func TestFormatRatio(t *testing.T) {
	assert.Equal(t, "—", FormatRatio(stats.UndefinedRatio()))
	assert.Equal(t, "2.50", FormatRatio(stats.DefinedRatio(2.5)))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$1.0850", FormatPrice("$", 1.085), "sub-10 prices get four decimals")
	assert.Equal(t, "$184.20", FormatPrice("$", 184.2))
	assert.Equal(t, "$0.00", FormatPrice("$", 0))
	assert.Equal(t, "$-100.00", FormatPrice("$", -100), "negatives never take the sub-10 branch")
	assert.Equal(t, "$-0.50", FormatPrice("$", -0.5))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "long…", Truncate("longer text", 5))
	assert.Equal(t, "l", Truncate("longer text", 1))
	assert.Equal(t, "", Truncate("longer text", 0))
	assert.Equal(t, "", Truncate("longer text", -3))
}

func TestRenderModalOverlay(t *testing.T) {
	r := testRenderer()
	s := loadedState()
	s.Modal = app.TradeModal{Mode: app.ModalViewing, TradeID: "t1"}

	out := r.Render(s)
	assert.Contains(t, out, "Trade Details — AAPL")

	s.Modal.Mode = app.ModalEditing
	assert.Contains(t, r.Render(s), "Edit Trade — AAPL")

	s.Modal = app.TradeModal{Mode: app.ModalCreating}
	assert.Contains(t, r.Render(s), "New Trade")

	// Modal pointing at a vanished record degrades instead of panicking.
	s.Modal = app.TradeModal{Mode: app.ModalViewing, TradeID: "gone"}
	assert.NotPanics(t, func() { r.Render(s) })
}

func TestRenderStreamedTextFromMirror(t *testing.T) {
	r := testRenderer()
	s := loadedState()
	s.CurrentView = app.ViewAnalytics
	s.StreamBuffers["analytics"] = "Focus on the London session."

	out := r.Render(s)
	assert.Contains(t, out, "AI Insight")
	assert.Contains(t, out, "Focus on the London session.")
}

func TestRenderUpgradePromptAndToasts(t *testing.T) {
	r := testRenderer()
	s := loadedState()
	s.UpgradePrompt = true
	s.Toasts = []app.Toast{
		{Level: app.ToastSuccess, Message: "Saved AAPL"},
		{Level: app.ToastError, Message: "Sync failed"},
	}

	out := r.Render(s)
	assert.Contains(t, out, "premium feature")
	assert.Contains(t, out, "✓ Saved AAPL")
	assert.Contains(t, out, "✗ Sync failed")
}

func TestStreamPatchWritesThrough(t *testing.T) {
	var sb strings.Builder
	patch := StreamPatch(&sb)
	patch("hello ")
	patch("world")
	assert.Equal(t, "hello world", sb.String())
}

func TestRenderImportPreviewTable(t *testing.T) {
	r := testRenderer()
	s := loadedState()
	s.CurrentView = app.ViewImport
	pnl := 12.5
	s.CsvPreview = &models.CsvPreview{
		FileName: "export.csv",
		Rows: []models.CsvRow{
			{Symbol: "AAPL", AssetType: models.AssetStock, Direction: models.DirectionLong, Quantity: 10, PnL: &pnl},
			{Symbol: "", Error: "missing symbol"},
		},
	}

	out := r.Render(s)
	assert.Contains(t, out, "export.csv")
	assert.Contains(t, out, "1 valid")
	assert.Contains(t, out, "1 errors")
	assert.Contains(t, out, "missing symbol")
}

func TestRenderImportProgress(t *testing.T) {
	r := testRenderer()
	s := loadedState()
	s.CurrentView = app.ViewImport
	s.CsvPreview = &models.CsvPreview{FileName: "x.csv", Rows: []models.CsvRow{{Symbol: "A"}}}
	s.CsvImporting = true
	s.CsvProgress = 50

	require.Contains(t, r.Render(s), "Importing… 50%")
}
