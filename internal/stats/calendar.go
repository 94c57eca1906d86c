package stats

import (
	"sort"
	"time"

	"tradevault/internal/models"
)

// DayStats holds one calendar day's activity within a month view.
type DayStats struct {
	PnL    float64
	Trades int
}

// WeekStats is a Sunday-start week rollup within a month view.
type WeekStats struct {
	Start  time.Time // Sunday opening the week (may fall in the prior month)
	PnL    float64
	Trades int
}

// MonthStats aggregates a single year+month of trading and journaling.
//
// Days holds an entry only for days that had at least one closed trade, so a
// day with trades netting exactly zero is still distinguishable from a day
// with no activity (presence in the map, not the value, is the signal).
type MonthStats struct {
	Year  int
	Month time.Month

	Days        map[int]DayStats // keyed by day of month, 1-based
	JournalDays map[int]bool

	TotalPnL    float64
	TradingDays int
	WinningDays int
	LosingDays  int
	AvgDaily    float64 // 0 when there are no trading days
	DayWinRate  float64 // percent of trading days, 0 when there are none

	Weeks []WeekStats
}

// Month buckets trades by calendar day of exit date within the given
// year+month, and marks which days carry journal entries. Trades without an
// exit date or outside the month are ignored.
func Month(trades []models.Trade, entries []models.JournalEntry, year int, month time.Month) MonthStats {
	ms := MonthStats{
		Year:        year,
		Month:       month,
		Days:        make(map[int]DayStats),
		JournalDays: make(map[int]bool),
	}

	for _, t := range trades {
		if t.ExitDate == nil {
			continue
		}
		y, m, d := t.ExitDate.Date()
		if y != year || m != month {
			continue
		}
		ds := ms.Days[d]
		ds.PnL += t.PnL
		ds.Trades++
		ms.Days[d] = ds
	}

	for _, e := range entries {
		day := e.Day()
		if day.IsZero() {
			continue
		}
		y, m, d := day.Date()
		if y == year && m == month {
			ms.JournalDays[d] = true
		}
	}

	for _, ds := range ms.Days {
		ms.TotalPnL += ds.PnL
		ms.TradingDays++
		if ds.PnL > 0 {
			ms.WinningDays++
		} else if ds.PnL < 0 {
			ms.LosingDays++
		}
	}
	if ms.TradingDays > 0 {
		ms.AvgDaily = ms.TotalPnL / float64(ms.TradingDays)
		ms.DayWinRate = float64(ms.WinningDays) / float64(ms.TradingDays) * 100
	}

	ms.Weeks = weekRollup(ms.Days, year, month)

	return ms
}

// weekRollup groups the month's active days into Sunday-start weeks.
// Weeks with no activity are omitted.
func weekRollup(days map[int]DayStats, year int, month time.Month) []WeekStats {
	if len(days) == 0 {
		return nil
	}

	byStart := make(map[time.Time]*WeekStats)
	var order []time.Time
	for d, ds := range days {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		start := date.AddDate(0, 0, -int(date.Weekday()))
		ws, ok := byStart[start]
		if !ok {
			ws = &WeekStats{Start: start}
			byStart[start] = ws
			order = append(order, start)
		}
		ws.PnL += ds.PnL
		ws.Trades += ds.Trades
	}

	// Map iteration order is random; emit weeks chronologically.
	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	weeks := make([]WeekStats, 0, len(order))
	for _, start := range order {
		weeks = append(weeks, *byStart[start])
	}
	return weeks
}

// FirstWeekday returns the weekday of the first day of the month
// (0 = Sunday), matching a Sunday-start calendar grid.
func FirstWeekday(year int, month time.Month) int {
	return int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
