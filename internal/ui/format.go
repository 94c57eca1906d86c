// Package ui turns application state into a rendered screen. The renderer
// only reads state; the single Render entry point is total and idempotent.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"tradevault/internal/stats"
)

// Palette holds the color functions used across the views. With color
// disabled every function degrades to plain Sprintf, which also keeps
// rendered output byte-stable for tests.
type Palette struct {
	Green  func(format string, a ...interface{}) string
	Red    func(format string, a ...interface{}) string
	Yellow func(format string, a ...interface{}) string
	Cyan   func(format string, a ...interface{}) string
	Bold   func(format string, a ...interface{}) string
	Dim    func(format string, a ...interface{}) string
}

// NewPalette builds a palette, colored or plain.
func NewPalette(enabled bool) Palette {
	if !enabled {
		plain := fmt.Sprintf
		return Palette{Green: plain, Red: plain, Yellow: plain, Cyan: plain, Bold: plain, Dim: plain}
	}
	return Palette{
		Green:  color.New(color.FgGreen).SprintfFunc(),
		Red:    color.New(color.FgRed).SprintfFunc(),
		Yellow: color.New(color.FgYellow).SprintfFunc(),
		Cyan:   color.New(color.FgCyan).SprintfFunc(),
		Bold:   color.New(color.Bold).SprintfFunc(),
		Dim:    color.New(color.Faint).SprintfFunc(),
	}
}

// FormatPnL renders a signed currency amount, green for gains and red for
// losses.
func (p Palette) FormatPnL(currency string, v float64) string {
	if v >= 0 {
		return p.Green("+%s%.2f", currency, v)
	}
	return p.Red("-%s%.2f", currency, -v)
}

// FormatRatio renders a statistics ratio, using an em-dash for the
// undefined (no-losses-yet) state. The undefined sentinel is structural in
// the stats package; the glyph is purely a display choice made here.
func FormatRatio(r stats.Ratio) string {
	if !r.Defined {
		return "—"
	}
	return fmt.Sprintf("%.2f", r.Value)
}

// FormatPrice renders a price with more precision for sub-10 instruments
// (forex pairs and small-cap crypto need the extra decimals).
func FormatPrice(currency string, v float64) string {
	if v > 0 && v < 10 {
		return fmt.Sprintf("%s%.4f", currency, v)
	}
	return fmt.Sprintf("%s%.2f", currency, v)
}

// Truncate shortens s to max runes with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return string(runes[:1])
	}
	return string(runes[:max-1]) + "…"
}

// StreamPatch returns the chunk callback for streaming AI text: it appends
// each chunk directly to the live writer, bypassing the full render cycle.
// The state mirror happens in the app layer; together they form the one
// sanctioned direct-patch path.
func StreamPatch(w io.Writer) func(chunk string) {
	return func(chunk string) {
		fmt.Fprint(w, chunk)
	}
}
