package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshalNormalizesAtBoundary(t *testing.T) {
	cases := []struct {
		raw  string
		want ID
	}{
		{`"abc123"`, "abc123"},
		{`42`, "42"},
		{`"42"`, "42"},
		{`9007199254740993`, "9007199254740993"}, // beyond float64 integer precision
		{`null`, ""},
	}
	for _, c := range cases {
		var id ID
		require.NoError(t, json.Unmarshal([]byte(c.raw), &id), "raw %s", c.raw)
		assert.Equal(t, c.want, id, "raw %s", c.raw)
	}
}

func TestIDComparisonAfterMixedDecoding(t *testing.T) {
	var fromNumber, fromString ID
	require.NoError(t, json.Unmarshal([]byte(`7`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`"7"`), &fromString))
	assert.Equal(t, fromNumber, fromString, "same record id regardless of wire type")
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, ID("7"), NormalizeID(7))
	assert.Equal(t, ID("7"), NormalizeID("7"))
	assert.Equal(t, ID("7"), NormalizeID(int64(7)))
	assert.Equal(t, ID("7"), NormalizeID(7.0))
	assert.Equal(t, ID(""), NormalizeID(nil))
}

func TestTradeUnmarshalNumericID(t *testing.T) {
	raw := `{"id": 1001, "symbol": "AAPL", "pnl": 55.5}`
	var trade Trade
	require.NoError(t, json.Unmarshal([]byte(raw), &trade))
	assert.Equal(t, ID("1001"), trade.ID)
	assert.Equal(t, "AAPL", trade.Symbol)
}

func validTradeInput() TradeInput {
	return TradeInput{
		Symbol:     "AAPL",
		AssetType:  AssetStock,
		Direction:  DirectionLong,
		EntryPrice: 100,
		ExitPrice:  105,
		Quantity:   10,
	}
}

func TestValidateTradeInput(t *testing.T) {
	assert.NoError(t, ValidateTradeInput(validTradeInput()))

	in := validTradeInput()
	in.Symbol = "  "
	assert.Error(t, ValidateTradeInput(in))

	in = validTradeInput()
	in.EntryPrice = 0
	assert.Error(t, ValidateTradeInput(in))

	in = validTradeInput()
	in.ExitPrice = math.NaN()
	assert.Error(t, ValidateTradeInput(in))

	in = validTradeInput()
	in.Quantity = -1
	assert.Error(t, ValidateTradeInput(in))

	in = validTradeInput()
	in.Commission = -0.5
	assert.Error(t, ValidateTradeInput(in))

	in = validTradeInput()
	in.Commission = 0
	assert.NoError(t, ValidateTradeInput(in), "zero commission is allowed")
}

func TestValidateJournalInput(t *testing.T) {
	assert.NoError(t, ValidateJournalInput("2026-08-28", "solid day"))
	assert.Error(t, ValidateJournalInput("", "solid day"))
	assert.Error(t, ValidateJournalInput("2026-08-28", "  "))
}

func TestJournalEntryDay(t *testing.T) {
	e := JournalEntry{EntryDate: "2026-08-28"}
	assert.Equal(t, 28, e.Day().Day())

	bad := JournalEntry{EntryDate: "28/08/2026"}
	assert.True(t, bad.Day().IsZero())
}

func TestCsvRowImportable(t *testing.T) {
	assert.True(t, CsvRow{Symbol: "AAPL"}.Importable())
	assert.False(t, CsvRow{Symbol: "AAPL", Error: "dup"}.Importable())
}
