package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradevault/internal/models"
)

func exitOn(year int, month time.Month, d int, pnl float64) models.Trade {
	t := time.Date(year, month, d, 16, 0, 0, 0, time.UTC)
	return models.Trade{PnL: pnl, ExitDate: &t}
}

func TestMonthBucketsByExitDay(t *testing.T) {
	trades := []models.Trade{
		exitOn(2026, time.August, 3, 100),
		exitOn(2026, time.August, 3, -30),
		exitOn(2026, time.August, 10, -50),
		exitOn(2026, time.July, 28, 999), // outside the month
		{PnL: 999},                       // open trade
	}

	m := Month(trades, nil, 2026, time.August)

	require.Len(t, m.Days, 2)
	assert.InDelta(t, 70.0, m.Days[3].PnL, 1e-9)
	assert.Equal(t, 2, m.Days[3].Trades)
	assert.InDelta(t, -50.0, m.Days[10].PnL, 1e-9)

	assert.Equal(t, 2, m.TradingDays)
	assert.Equal(t, 1, m.WinningDays)
	assert.Equal(t, 1, m.LosingDays)
	assert.InDelta(t, 20.0, m.TotalPnL, 1e-9)
	assert.InDelta(t, 10.0, m.AvgDaily, 1e-9)
	assert.InDelta(t, 50.0, m.DayWinRate, 1e-9)
}

func TestMonthZeroDayPresentButNotWinOrLoss(t *testing.T) {
	trades := []models.Trade{
		exitOn(2026, time.August, 5, 25),
		exitOn(2026, time.August, 5, -25),
	}

	m := Month(trades, nil, 2026, time.August)

	ds, ok := m.Days[5]
	require.True(t, ok, "a flat day is still an active day")
	assert.Zero(t, ds.PnL)
	assert.Equal(t, 1, m.TradingDays)
	assert.Zero(t, m.WinningDays)
	assert.Zero(t, m.LosingDays)

	_, absent := m.Days[6]
	assert.False(t, absent, "inactive days are absent, not zero-valued")
}

func TestMonthJournalDays(t *testing.T) {
	entries := []models.JournalEntry{
		{EntryDate: "2026-08-14", Content: "patience paid off"},
		{EntryDate: "2026-07-01", Content: "other month"},
		{EntryDate: "not-a-date", Content: "ignored"},
	}

	m := Month(nil, entries, 2026, time.August)
	assert.True(t, m.JournalDays[14])
	assert.False(t, m.JournalDays[1])
	assert.Len(t, m.JournalDays, 1)
}

func TestWeekRollupSundayStart(t *testing.T) {
	// August 2026: the 1st is a Saturday, the 2nd a Sunday.
	trades := []models.Trade{
		exitOn(2026, time.August, 1, 10),  // week starting Sun Jul 26
		exitOn(2026, time.August, 3, 20),  // week starting Sun Aug 2
		exitOn(2026, time.August, 7, -5),  // same week
		exitOn(2026, time.August, 12, 40), // week starting Sun Aug 9
	}

	m := Month(trades, nil, 2026, time.August)
	require.Len(t, m.Weeks, 3)

	assert.Equal(t, time.Date(2026, time.July, 26, 0, 0, 0, 0, time.UTC), m.Weeks[0].Start)
	assert.Equal(t, time.Date(2026, time.August, 2, 0, 0, 0, 0, time.UTC), m.Weeks[1].Start)
	assert.Equal(t, time.Date(2026, time.August, 9, 0, 0, 0, 0, time.UTC), m.Weeks[2].Start)

	assert.InDelta(t, 15.0, m.Weeks[1].PnL, 1e-9)
	assert.Equal(t, 2, m.Weeks[1].Trades)
}

func TestCalendarGridHelpers(t *testing.T) {
	assert.Equal(t, 6, FirstWeekday(2026, time.August)) // Saturday
	assert.Equal(t, 31, DaysIn(2026, time.August))
	assert.Equal(t, 28, DaysIn(2026, time.February))
	assert.Equal(t, 29, DaysIn(2028, time.February))
}
