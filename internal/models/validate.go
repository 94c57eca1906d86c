package models

import (
	"math"
	"strings"

	apperrors "tradevault/internal/errors"
)

// ValidateTradeInput performs the client-side checks run before a create or
// update call: symbol presence plus positive, finite prices and quantity.
// Everything else (date ordering, enum values the server may extend) is left
// to the server, whose validation message is surfaced verbatim.
func ValidateTradeInput(in TradeInput) error {
	if strings.TrimSpace(in.Symbol) == "" {
		return apperrors.NewValidationError("symbol", in.Symbol, "symbol is required")
	}
	if !positiveFinite(in.EntryPrice) {
		return apperrors.NewValidationError("entry_price", in.EntryPrice, "entry price must be a positive number")
	}
	if !positiveFinite(in.ExitPrice) {
		return apperrors.NewValidationError("exit_price", in.ExitPrice, "exit price must be a positive number")
	}
	if !positiveFinite(in.Quantity) {
		return apperrors.NewValidationError("quantity", in.Quantity, "quantity must be a positive number")
	}
	if in.Commission < 0 || math.IsNaN(in.Commission) || math.IsInf(in.Commission, 0) {
		return apperrors.NewValidationError("commission", in.Commission, "commission cannot be negative")
	}
	return nil
}

// ValidateJournalInput checks the two required journal fields.
func ValidateJournalInput(entryDate, content string) error {
	if strings.TrimSpace(entryDate) == "" {
		return apperrors.NewValidationError("entry_date", entryDate, "date is required")
	}
	if strings.TrimSpace(content) == "" {
		return apperrors.NewValidationError("content", content, "content is required")
	}
	return nil
}

// ValidateBrokerCredentials checks the one field every broker form requires.
func ValidateBrokerCredentials(creds BrokerCredentials) error {
	if strings.TrimSpace(creds.APIKey) == "" {
		return apperrors.NewValidationError("api_key", "", "API key is required")
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
