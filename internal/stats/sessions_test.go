package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tradevault/internal/models"
)

func TestClassifySession(t *testing.T) {
	cases := []struct {
		hour int
		want Session
	}{
		{0, SessionAsia},
		{7, SessionAsia},
		{8, SessionLondon}, // London opens at 8 and wins the overlap with Asia's <9
		{10, SessionLondon},
		{13, SessionLondon}, // overlap hour goes to the first match
		{16, SessionLondon},
		{17, SessionNewYork},
		{21, SessionNewYork},
		{22, SessionOutside},
		{23, SessionAsia},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifySession(c.hour), "hour %d", c.hour)
	}
}

func TestBySessionCountsSumToTotal(t *testing.T) {
	at := func(hour int) *time.Time {
		d := time.Date(2026, time.July, 6, hour, 30, 0, 0, time.UTC)
		return &d
	}
	trades := []models.Trade{
		{PnL: 10, EntryDate: at(10)},
		{PnL: -5, EntryDate: at(14)},
		{PnL: 20, EntryDate: at(23)},
		{PnL: 7, EntryDate: at(22)},
		{PnL: 3, EntryDate: nil}, // no entry date goes to Outside
	}

	buckets := BySession(trades)
	assert.Len(t, buckets, 4)

	total := 0
	byName := map[Session]SessionBucket{}
	for _, b := range buckets {
		total += b.Trades
		byName[b.Session] = b
	}
	assert.Equal(t, len(trades), total)

	assert.Equal(t, 2, byName[SessionLondon].Trades)
	assert.Equal(t, 0, byName[SessionNewYork].Trades)
	assert.Equal(t, 1, byName[SessionAsia].Trades)
	assert.Equal(t, 2, byName[SessionOutside].Trades)
	assert.InDelta(t, 5.0, byName[SessionLondon].PnL, 1e-9)
}

func TestBySessionEmptyStillHasAllBuckets(t *testing.T) {
	buckets := BySession(nil)
	assert.Len(t, buckets, 4)
	for _, b := range buckets {
		assert.Zero(t, b.Trades)
		assert.Zero(t, b.WinRate())
	}
}
