package csvimport

import (
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"tradevault/internal/models"
)

// csvTrade is the flat row shape of the import format, also used for local
// export. Dates are plain strings so blank cells round-trip cleanly.
type csvTrade struct {
	Symbol     string  `csv:"symbol"`
	AssetType  string  `csv:"asset_type"`
	Direction  string  `csv:"direction"`
	EntryPrice float64 `csv:"entry_price"`
	ExitPrice  float64 `csv:"exit_price"`
	Quantity   float64 `csv:"quantity"`
	EntryDate  string  `csv:"entry_date"`
	ExitDate   string  `csv:"exit_date"`
	Strategy   string  `csv:"strategy"`
	Commission float64 `csv:"commission"`
}

// WriteSample writes a one-row sample CSV in the expected import format.
func WriteSample(w io.Writer) error {
	rows := []csvTrade{{
		Symbol:     "AAPL",
		AssetType:  string(models.AssetStock),
		Direction:  string(models.DirectionLong),
		EntryPrice: 178.50,
		ExitPrice:  182.30,
		Quantity:   100,
		EntryDate:  "2025-01-10",
		ExitDate:   "2025-01-10",
		Strategy:   "Breakout",
		Commission: 2.00,
	}}
	return gocsv.Marshal(rows, w)
}

// ExportTrades writes the trade list in the import format, so an export can
// be re-imported elsewhere.
func ExportTrades(w io.Writer, trades []models.Trade) error {
	rows := make([]csvTrade, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, csvTrade{
			Symbol:     t.Symbol,
			AssetType:  string(t.AssetType),
			Direction:  string(t.Direction),
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			Quantity:   t.Quantity,
			EntryDate:  formatDate(t.EntryDate),
			ExitDate:   formatDate(t.ExitDate),
			Strategy:   t.Strategy,
			Commission: t.Commission,
		})
	}
	return gocsv.Marshal(rows, w)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
