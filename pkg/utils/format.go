// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"
)

// FormatCurrency formats an amount with thousands separators and two
// decimals, e.g. 1234567.5 -> "$1,234,567.50".
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart, decPart := parts[0], parts[1]

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s$%s.%s", sign, grouped.String(), decPart)
}

// FormatPnL formats a P&L amount with an explicit sign.
func FormatPnL(pnl float64) string {
	if pnl > 0 {
		return "+" + FormatCurrency(pnl)
	}
	return FormatCurrency(pnl)
}

// FormatPercent formats a ratio already expressed in percent.
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// FormatCompact abbreviates large amounts (12.3K, 4.5M) for tight columns.
func FormatCompact(amount float64) string {
	abs := amount
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", amount/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", amount/1e3)
	default:
		return fmt.Sprintf("%.2f", amount)
	}
}
