package ui

import (
	"fmt"
	"strings"
	"time"

	"tradevault/internal/app"
	"tradevault/internal/models"
	"tradevault/internal/stats"
)

// Renderer maps application state to a screen. It holds no mutable state of
// its own, so rendering twice against unchanged state yields identical
// output.
type Renderer struct {
	pal        Palette
	currency   string
	dateFormat string
}

// NewRenderer creates a renderer.
func NewRenderer(pal Palette, currency, dateFormat string) *Renderer {
	if currency == "" {
		currency = "$"
	}
	if dateFormat == "" {
		dateFormat = "2006-01-02"
	}
	return &Renderer{pal: pal, currency: currency, dateFormat: dateFormat}
}

// Render is the single re-render entry point. It never fails: unknown views
// and missing data degrade to placeholders.
func (r *Renderer) Render(s *app.State) string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	r.renderNav(&b, s)

	switch {
	case s.Loading:
		r.renderSkeleton(&b)
	default:
		switch s.CurrentView {
		case app.ViewDashboard:
			r.renderDashboard(&b, s)
		case app.ViewTrades:
			r.renderTrades(&b, s)
		case app.ViewAnalytics:
			r.renderAnalytics(&b, s)
		case app.ViewCalendar:
			r.renderCalendar(&b, s)
		case app.ViewJournal:
			r.renderJournal(&b, s)
		case app.ViewImport:
			r.renderImport(&b, s)
		case app.ViewBrokers:
			r.renderBrokers(&b, s)
		default:
			r.renderEmpty(&b, "Nothing here", "Pick a view from the navigation bar")
		}
	}

	if s.Modal.Mode != app.ModalClosed {
		r.renderModal(&b, s)
	}
	if s.UpgradePrompt {
		r.renderUpgrade(&b)
	}
	r.renderToasts(&b, s)

	return b.String()
}

func (r *Renderer) renderNav(b *strings.Builder, s *app.State) {
	items := make([]string, 0, len(app.Views))
	for _, v := range app.Views {
		label := titleCase(string(v))
		if v == s.CurrentView {
			label = r.pal.Bold("[%s]", label)
		}
		items = append(items, label)
	}
	status := "Live"
	if s.Syncing {
		status = r.pal.Yellow("Syncing…")
	}
	fmt.Fprintf(b, "%s  %s  %s\n\n", r.pal.Cyan("TradeVault"), strings.Join(items, "  "), status)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (r *Renderer) renderSkeleton(b *strings.Builder) {
	b.WriteString(r.pal.Bold("Loading…") + "\n")
	b.WriteString(r.pal.Dim("Fetching trades, journal, and broker connections") + "\n")
}

func (r *Renderer) renderEmpty(b *strings.Builder, title, sub string) {
	fmt.Fprintf(b, "  %s\n  %s\n", r.pal.Bold(title), r.pal.Dim(sub))
}

// ── Dashboard ───────────────────────────────────────────────────────────

func (r *Renderer) renderDashboard(b *strings.Builder, s *app.State) {
	sum := stats.Calc(s.Trades)

	b.WriteString(r.pal.Bold("Dashboard") + "\n\n")
	r.statCard(b, "Total P&L", r.pal.FormatPnL(r.currency, sum.TotalPnL),
		fmt.Sprintf("%dW / %dL", sum.WinningTrades, sum.LosingTrades))
	r.statCard(b, "Win Rate", fmt.Sprintf("%.1f%%", sum.WinRate),
		fmt.Sprintf("%d trades", sum.TotalTrades))
	r.statCard(b, "Avg Win", fmt.Sprintf("%s%.2f", r.currency, sum.AvgWin), "Per winning trade")
	r.statCard(b, "Avg Loss", fmt.Sprintf("%s%.2f", r.currency, sum.AvgLoss), "Per losing trade")
	r.statCard(b, "Profit Factor", FormatRatio(sum.ProfitFactor), "Wins / losses ratio")
	r.statCard(b, "R-Multiple", FormatRatio(sum.RMultiple), "Avg win / avg loss")
	b.WriteString("\n" + r.pal.Bold("Recent Trades") + "\n")

	if len(s.Trades) == 0 {
		r.renderEmpty(b, "No trades yet", `Use "add" to log your first trade`)
		return
	}
	recent := s.Trades
	if len(recent) > 5 {
		recent = recent[:5]
	}
	for _, t := range recent {
		r.tradeLine(b, t)
	}
}

func (r *Renderer) statCard(b *strings.Builder, label, value, sub string) {
	fmt.Fprintf(b, "  %-14s %-14s %s\n", label, value, r.pal.Dim(sub))
}

func (r *Renderer) tradeLine(b *strings.Builder, t models.Trade) {
	date := "—"
	if t.ExitDate != nil {
		date = t.ExitDate.Format(r.dateFormat)
	}
	broker := ""
	if t.Broker != "" && t.Broker != models.BrokerManual {
		broker = " " + r.pal.Cyan("[%s]", t.Broker)
	}
	fmt.Fprintf(b, "  %-10s %-5s %-8s %s  %s → %s  qty %g%s  %s\n",
		t.Symbol,
		t.Direction,
		t.AssetType,
		r.pal.FormatPnL(r.currency, t.PnL),
		FormatPrice(r.currency, t.EntryPrice),
		FormatPrice(r.currency, t.ExitPrice),
		t.Quantity,
		broker,
		r.pal.Dim(date),
	)
}

// ── Trades ──────────────────────────────────────────────────────────────

func (r *Renderer) renderTrades(b *strings.Builder, s *app.State) {
	filtered := s.FilteredTrades()

	b.WriteString(r.pal.Bold("Trade History") + "\n")
	fmt.Fprintf(b, "  Filters: asset=%s direction=%s  %s\n\n",
		s.FilterAssetType, s.FilterDirection,
		r.pal.Dim("%d trade(s)", len(filtered)))

	if len(filtered) == 0 {
		r.renderEmpty(b, "No trades found", "Try adjusting your filters")
		return
	}
	for _, t := range filtered {
		r.tradeLine(b, t)
		if t.Notes != "" {
			fmt.Fprintf(b, "    %s\n", r.pal.Dim("%q", Truncate(t.Notes, 70)))
		}
	}
}

// ── Analytics ───────────────────────────────────────────────────────────

func (r *Renderer) renderAnalytics(b *strings.Builder, s *app.State) {
	sum := stats.Calc(s.Trades)

	b.WriteString(r.pal.Bold("Analytics") + "\n\n")
	r.statCard(b, "Total Trades", fmt.Sprintf("%d", sum.TotalTrades), "")
	r.statCard(b, "Win Rate", fmt.Sprintf("%.1f%%", sum.WinRate), "")
	r.statCard(b, "Profit Factor", FormatRatio(sum.ProfitFactor), "")
	r.statCard(b, "Total P&L", r.pal.FormatPnL(r.currency, sum.TotalPnL), "")

	b.WriteString("\n" + r.pal.Bold("By Strategy") + "\n")
	strategies := stats.ByStrategy(s.Trades)
	if len(strategies) == 0 {
		r.renderEmpty(b, "No data", "Add trades with strategies")
	}
	for _, g := range strategies {
		fmt.Fprintf(b, "  %-16s %3d trades  %s  %.1f%% win\n",
			Truncate(g.Key, 16), g.Trades, r.pal.FormatPnL(r.currency, g.PnL), g.WinRate())
	}

	b.WriteString("\n" + r.pal.Bold("By Asset Type") + "\n")
	for _, g := range stats.ByAssetType(s.Trades) {
		pct := 0.0
		if len(s.Trades) > 0 {
			pct = float64(g.Trades) / float64(len(s.Trades)) * 100
		}
		fmt.Fprintf(b, "  %-10s %3d trades (%.1f%%)  %s\n",
			g.Key, g.Trades, pct, r.pal.FormatPnL(r.currency, g.PnL))
	}

	b.WriteString("\n" + r.pal.Bold("By Session") + "\n")
	for _, bucket := range stats.BySession(s.Trades) {
		fmt.Fprintf(b, "  %-10s %3d trades  %3d wins  %s\n",
			bucket.Session, bucket.Trades, bucket.Wins, r.pal.FormatPnL(r.currency, bucket.PnL))
	}

	if curve := stats.EquityCurve(s.Trades); len(curve) > 0 {
		b.WriteString("\n" + r.pal.Bold("Equity Curve") + "\n")
		fmt.Fprintf(b, "  %d closed trades, ending at %s\n",
			len(curve), r.pal.FormatPnL(r.currency, curve[len(curve)-1].Cumulative))
	}

	if text := s.StreamBuffers["analytics"]; text != "" {
		b.WriteString("\n" + r.pal.Bold("AI Insight") + "\n")
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			fmt.Fprintf(b, "  %s\n", line)
		}
	}
}

// ── Calendar ────────────────────────────────────────────────────────────

func (r *Renderer) renderCalendar(b *strings.Builder, s *app.State) {
	month := stats.Month(s.Trades, s.JournalEntries, s.CalendarYear, s.CalendarMonth)
	title := time.Date(s.CalendarYear, s.CalendarMonth, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")

	b.WriteString(r.pal.Bold("Calendar — %s", title) + "\n\n")
	r.statCard(b, "Monthly P&L", r.pal.FormatPnL(r.currency, month.TotalPnL), "")
	r.statCard(b, "Trading Days", fmt.Sprintf("%d", month.TradingDays), "")
	r.statCard(b, "Winning Days", r.pal.Green("%d", month.WinningDays), "")
	r.statCard(b, "Losing Days", r.pal.Red("%d", month.LosingDays), "")
	r.statCard(b, "Avg Daily", fmt.Sprintf("%s%.2f", r.currency, month.AvgDaily), "")
	r.statCard(b, "Day Win Rate", fmt.Sprintf("%.1f%%", month.DayWinRate), "")
	b.WriteString("\n")

	b.WriteString("  Sun    Mon    Tue    Wed    Thu    Fri    Sat\n")
	cells := make([]string, 0, 42)
	for i := 0; i < stats.FirstWeekday(s.CalendarYear, s.CalendarMonth); i++ {
		cells = append(cells, "      ")
	}
	for day := 1; day <= stats.DaysIn(s.CalendarYear, s.CalendarMonth); day++ {
		cell := fmt.Sprintf("%3d   ", day)
		if ds, ok := month.Days[day]; ok {
			marker := r.pal.Green("●")
			if ds.PnL < 0 {
				marker = r.pal.Red("●")
			} else if ds.PnL == 0 {
				marker = r.pal.Yellow("●")
			}
			cell = fmt.Sprintf("%3d %s ", day, marker)
		} else if month.JournalDays[day] {
			cell = fmt.Sprintf("%3d ◦ ", day)
		}
		cells = append(cells, cell)
	}
	for i, cell := range cells {
		b.WriteString(" " + cell)
		if (i+1)%7 == 0 {
			b.WriteString("\n")
		}
	}
	if len(cells)%7 != 0 {
		b.WriteString("\n")
	}

	if len(month.Weeks) > 0 {
		b.WriteString("\n" + r.pal.Bold("Weekly P&L") + "\n")
		for _, w := range month.Weeks {
			fmt.Fprintf(b, "  Week of %s  %s  (%d trades)\n",
				w.Start.Format(r.dateFormat), r.pal.FormatPnL(r.currency, w.PnL), w.Trades)
		}
	}
}

// ── Journal ─────────────────────────────────────────────────────────────

func (r *Renderer) renderJournal(b *strings.Builder, s *app.State) {
	b.WriteString(r.pal.Bold("Journal") + "\n\n")
	fmt.Fprintf(b, "%s %s\n", r.pal.Bold("Past Entries"), r.pal.Dim("(%d)", len(s.JournalEntries)))

	if len(s.JournalEntries) == 0 {
		r.renderEmpty(b, "No entries yet", "Start documenting your trading journey")
	}
	for _, e := range s.JournalEntries {
		date := e.EntryDate
		if d := e.Day(); !d.IsZero() {
			date = d.Format("Monday, January 2, 2006")
		}
		fmt.Fprintf(b, "  %s\n", r.pal.Cyan("%s", date))
		for _, line := range strings.Split(e.Content, "\n") {
			fmt.Fprintf(b, "    %s\n", line)
		}
	}

	withNotes := 0
	for _, t := range s.Trades {
		if t.Notes != "" {
			withNotes++
		}
	}
	if withNotes > 0 {
		b.WriteString("\n" + r.pal.Bold("Trade Notes") + "\n")
		for _, t := range s.Trades {
			if t.Notes == "" {
				continue
			}
			date := "—"
			if t.ExitDate != nil {
				date = t.ExitDate.Format(r.dateFormat)
			}
			fmt.Fprintf(b, "  %s • %s %s\n    %s\n",
				t.Symbol, date, r.pal.FormatPnL(r.currency, t.PnL), t.Notes)
		}
	}
}

// ── Import ──────────────────────────────────────────────────────────────

func (r *Renderer) renderImport(b *strings.Builder, s *app.State) {
	b.WriteString(r.pal.Bold("Import Trades") + "\n\n")

	p := s.CsvPreview
	if p == nil {
		r.renderEmpty(b, "No CSV loaded",
			"Load a .csv export (max 5 MB); a preview is shown before anything is saved")
		return
	}

	valid, errs := 0, 0
	for _, row := range p.Rows {
		if row.Importable() {
			valid++
		} else {
			errs++
		}
	}
	fmt.Fprintf(b, "  %s: %d rows — %s", p.FileName, len(p.Rows), r.pal.Green("%d valid", valid))
	if errs > 0 {
		fmt.Fprintf(b, " • %s", r.pal.Red("%d errors", errs))
	}
	b.WriteString("\n\n")

	shown := p.Rows
	const maxShown = 20
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}
	for i, row := range shown {
		status := r.pal.Green("✓")
		if !row.Importable() {
			status = r.pal.Red("%s", row.Error)
		}
		pnl := "—"
		if row.PnL != nil {
			pnl = r.pal.FormatPnL(r.currency, *row.PnL)
		}
		fmt.Fprintf(b, "  %2d  %-10s %-7s %-5s qty %-8g %-12s %s\n",
			i+1, orDash(row.Symbol), orDash(string(row.AssetType)), orDash(string(row.Direction)),
			row.Quantity, pnl, status)
	}
	if len(p.Rows) > maxShown {
		fmt.Fprintf(b, "  %s\n", r.pal.Dim("Showing first %d of %d", maxShown, len(p.Rows)))
	}

	if s.CsvImporting {
		fmt.Fprintf(b, "\n  Importing… %d%%\n", s.CsvProgress)
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// ── Brokers ─────────────────────────────────────────────────────────────

func (r *Renderer) renderBrokers(b *strings.Builder, s *app.State) {
	b.WriteString(r.pal.Bold("Broker Connections") + "\n\n")

	if len(s.Brokers) == 0 {
		r.renderEmpty(b, "No brokers connected",
			"Connect alpaca, binance, or metatrader to sync completed trades")
	}
	for _, broker := range s.Brokers {
		sync := r.pal.Dim("never synced")
		if broker.LastSync != nil {
			sync = r.pal.Dim("synced %s", broker.LastSync.Format(time.RFC822))
		}
		account := ""
		if broker.AccountID != "" {
			account = "  " + r.pal.Dim(broker.AccountID)
		}
		fmt.Fprintf(b, "  %-12s%s  %s\n", broker.BrokerName, account, sync)
	}

	b.WriteString("\n" + r.pal.Dim("Connect a broker and sync to fetch completed trades via its API.") + "\n")
	b.WriteString(r.pal.Dim("Duplicates are skipped server-side; API keys are never stored locally.") + "\n")
}

// ── Overlays ────────────────────────────────────────────────────────────

func (r *Renderer) renderModal(b *strings.Builder, s *app.State) {
	b.WriteString("\n" + strings.Repeat("─", 56) + "\n")
	switch s.Modal.Mode {
	case app.ModalCreating:
		b.WriteString(r.pal.Bold("New Trade") + "\n")
		b.WriteString(r.pal.Dim("Symbol, prices, and quantity are required.") + "\n")
	default:
		t := s.ModalTrade()
		if t == nil {
			// The record disappeared; the handler contract should have
			// closed the modal, but never crash over it.
			r.renderEmpty(b, "Trade no longer exists", "")
			break
		}
		title := "Trade Details"
		if s.Modal.Mode == app.ModalEditing {
			title = "Edit Trade"
		}
		b.WriteString(r.pal.Bold("%s — %s", title, t.Symbol) + "\n")
		r.tradeLine(b, *t)
		if t.Strategy != "" {
			fmt.Fprintf(b, "  Strategy: %s\n", t.Strategy)
		}
		if t.MarketConditions != "" {
			fmt.Fprintf(b, "  Conditions: %s\n", t.MarketConditions)
		}
		if t.StopLoss != nil {
			fmt.Fprintf(b, "  Stop loss: %s\n", FormatPrice(r.currency, *t.StopLoss))
		}
		if t.TakeProfit != nil {
			fmt.Fprintf(b, "  Take profit: %s\n", FormatPrice(r.currency, *t.TakeProfit))
		}
		if t.Notes != "" {
			fmt.Fprintf(b, "  Notes: %s\n", t.Notes)
		}
		fmt.Fprintf(b, "  Final P&L: %s\n", r.pal.FormatPnL(r.currency, t.PnL))
	}
	b.WriteString(strings.Repeat("─", 56) + "\n")
}

func (r *Renderer) renderUpgrade(b *strings.Builder) {
	b.WriteString("\n" + r.pal.Yellow("★ AI insights are a premium feature. Upgrade to unlock them.") + "\n")
}

func (r *Renderer) renderToasts(b *strings.Builder, s *app.State) {
	for _, toast := range s.Toasts {
		var line string
		switch toast.Level {
		case app.ToastSuccess:
			line = r.pal.Green("✓ %s", toast.Message)
		case app.ToastError:
			line = r.pal.Red("✗ %s", toast.Message)
		case app.ToastWarn:
			line = r.pal.Yellow("! %s", toast.Message)
		default:
			line = r.pal.Cyan("ℹ %s", toast.Message)
		}
		b.WriteString(line + "\n")
	}
}
