package stats

import "tradevault/internal/models"

// Session is a named trading-hours window used to bucket trades by the hour
// of their entry timestamp.
type Session string

const (
	SessionLondon  Session = "London"
	SessionNewYork Session = "New York"
	SessionAsia    Session = "Asia"
	SessionOutside Session = "Outside"
)

// Sessions lists the buckets in classification priority order.
var Sessions = []Session{SessionLondon, SessionNewYork, SessionAsia, SessionOutside}

// ClassifySession maps an entry hour to a session. The ranges overlap on
// purpose (London and New York share 13:00-17:00, a simplified timezone
// model) and a trade lands in the first range it matches: London, then
// New York, then Asia, else Outside.
func ClassifySession(hour int) Session {
	switch {
	case hour >= 8 && hour < 17:
		return SessionLondon
	case hour >= 13 && hour < 22:
		return SessionNewYork
	case hour < 9 || hour >= 23:
		return SessionAsia
	default:
		return SessionOutside
	}
}

// SessionBucket accumulates per-session trade statistics.
type SessionBucket struct {
	Session Session
	Trades  int
	Wins    int
	PnL     float64
}

// WinRate returns the bucket's win rate in percent, 0 for an empty bucket.
func (b SessionBucket) WinRate() float64 {
	if b.Trades == 0 {
		return 0
	}
	return float64(b.Wins) / float64(b.Trades) * 100
}

// BySession classifies every trade into exactly one of the four session
// buckets by entry hour. Trades with no entry date fall into Outside, so the
// bucket counts always sum to the total trade count.
func BySession(trades []models.Trade) []SessionBucket {
	buckets := make([]SessionBucket, len(Sessions))
	index := make(map[Session]int, len(Sessions))
	for i, s := range Sessions {
		buckets[i] = SessionBucket{Session: s}
		index[s] = i
	}

	for _, t := range trades {
		s := SessionOutside
		if t.EntryDate != nil {
			s = ClassifySession(t.EntryDate.Hour())
		}
		i := index[s]
		buckets[i].Trades++
		buckets[i].PnL += t.PnL
		if t.PnL > 0 {
			buckets[i].Wins++
		}
	}
	return buckets
}
