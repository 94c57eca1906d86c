// Package models provides domain models for the trading journal.
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// AssetType represents the asset class of a trade.
type AssetType string

const (
	AssetStock   AssetType = "stock"
	AssetForex   AssetType = "forex"
	AssetCrypto  AssetType = "crypto"
	AssetFutures AssetType = "futures"
	AssetOptions AssetType = "options"
)

// AssetTypes lists all known asset types in display order.
var AssetTypes = []AssetType{AssetStock, AssetForex, AssetCrypto, AssetFutures, AssetOptions}

// Direction represents the side of a trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// BrokerName identifies a supported broker integration.
type BrokerName string

const (
	BrokerAlpaca     BrokerName = "alpaca"
	BrokerBinance    BrokerName = "binance"
	BrokerMetaTrader BrokerName = "metatrader"
	BrokerIBKR       BrokerName = "ibkr"
)

// BrokerManual tags trades entered by hand rather than synced from a broker.
const BrokerManual = "manual"

// ID is an entity identifier normalized to its string form.
//
// The server hands out numeric ids on some endpoints and string ids on others
// (manual create vs. broker sync vs. CSV import). Normalizing at the decode
// boundary means every later membership or removal check is a plain string
// comparison.
type ID string

// UnmarshalJSON accepts a JSON string or number and stores the string form.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// NormalizeID converts any raw identifier to its canonical string form.
func NormalizeID(v interface{}) ID {
	switch x := v.(type) {
	case ID:
		return x
	case string:
		return ID(x)
	case int:
		return ID(strconv.Itoa(x))
	case int64:
		return ID(strconv.FormatInt(x, 10))
	case float64:
		return ID(strconv.FormatFloat(x, 'f', -1, 64))
	case json.Number:
		return ID(x.String())
	default:
		return ""
	}
}

// Trade represents a closed position.
//
// PnL is computed server-side and treated as authoritative: the client only
// aggregates it and never rederives it from entry/exit/quantity (rounding and
// commission handling live on the server).
type Trade struct {
	ID               ID         `json:"id"`
	Symbol           string     `json:"symbol"`
	AssetType        AssetType  `json:"asset_type"`
	Direction        Direction  `json:"direction"`
	EntryPrice       float64    `json:"entry_price"`
	ExitPrice        float64    `json:"exit_price"`
	Quantity         float64    `json:"quantity"`
	StopLoss         *float64   `json:"stop_loss,omitempty"`
	TakeProfit       *float64   `json:"take_profit,omitempty"`
	Commission       float64    `json:"commission"`
	EntryDate        *time.Time `json:"entry_date,omitempty"`
	ExitDate         *time.Time `json:"exit_date,omitempty"`
	Strategy         string     `json:"strategy,omitempty"`
	MarketConditions string     `json:"market_conditions,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	Broker           string     `json:"broker,omitempty"`
	PnL              float64    `json:"pnl"`
}

// TradeInput is the payload for creating or updating a trade. PnL is absent;
// the server computes it.
type TradeInput struct {
	Symbol           string     `json:"symbol"`
	AssetType        AssetType  `json:"asset_type"`
	Direction        Direction  `json:"direction"`
	EntryPrice       float64    `json:"entry_price"`
	ExitPrice        float64    `json:"exit_price"`
	Quantity         float64    `json:"quantity"`
	StopLoss         *float64   `json:"stop_loss,omitempty"`
	TakeProfit       *float64   `json:"take_profit,omitempty"`
	Commission       float64    `json:"commission"`
	EntryDate        *time.Time `json:"entry_date,omitempty"`
	ExitDate         *time.Time `json:"exit_date,omitempty"`
	Strategy         string     `json:"strategy,omitempty"`
	MarketConditions string     `json:"market_conditions,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

// JournalEntry represents a free-text journal note for a calendar day.
// Multiple entries per day are allowed; entries are never edited in place,
// only created and deleted.
type JournalEntry struct {
	ID        ID     `json:"id"`
	EntryDate string `json:"entry_date"` // YYYY-MM-DD, no time component
	Content   string `json:"content"`
}

// Day parses the entry date. The zero time is returned for malformed dates.
func (e JournalEntry) Day() time.Time {
	t, err := time.Parse("2006-01-02", e.EntryDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// BrokerConnection represents a linked broker account. API credentials are
// write-only: sent once on creation and never read back.
type BrokerConnection struct {
	ID         ID         `json:"id"`
	BrokerName BrokerName `json:"broker_name"`
	AccountID  string     `json:"account_id,omitempty"`
	LastSync   *time.Time `json:"last_sync,omitempty"`
}

// BrokerCredentials is the creation payload for a broker connection.
type BrokerCredentials struct {
	BrokerName BrokerName `json:"broker_name"`
	APIKey     string     `json:"api_key"`
	APISecret  string     `json:"api_secret,omitempty"`
	AccountID  string     `json:"account_id,omitempty"`
	ServerURL  string     `json:"server_url,omitempty"`
	Paper      bool       `json:"paper,omitempty"`
}

// CsvRow is one server-parsed candidate trade from an uploaded CSV.
// A non-empty Error marks the row non-importable.
type CsvRow struct {
	Symbol     string     `json:"symbol"`
	AssetType  AssetType  `json:"asset_type"`
	Direction  Direction  `json:"direction"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  float64    `json:"exit_price"`
	Quantity   float64    `json:"quantity"`
	Commission float64    `json:"commission"`
	EntryDate  *time.Time `json:"entry_date,omitempty"`
	ExitDate   *time.Time `json:"exit_date,omitempty"`
	Strategy   string     `json:"strategy,omitempty"`
	PnL        *float64   `json:"pnl,omitempty"`
	Error      string     `json:"_error,omitempty"`
}

// Importable reports whether the row passed server-side validation.
func (r CsvRow) Importable() bool { return r.Error == "" }

// CsvPreview is a server-validated, not-yet-persisted view of an uploaded CSV.
type CsvPreview struct {
	FileName string   `json:"file_name,omitempty"`
	Rows     []CsvRow `json:"rows"`
}
