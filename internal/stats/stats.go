// Package stats computes aggregate trading metrics from closed trades.
//
// Every function is pure and total: empty or degenerate input yields zero
// values or explicitly undefined ratios, never NaN, Inf, or a panic. Trade
// P&L is taken as the atomic unit; nothing here rederives it from prices.
package stats

import (
	"sort"

	"tradevault/internal/models"
)

// Ratio is a quotient that may be undefined when its denominator is zero.
// A zero-loss account legitimately has no profit factor; that state is
// represented structurally and formatted by the view layer, not encoded as
// Inf or a display glyph here.
type Ratio struct {
	Value   float64
	Defined bool
}

// DefinedRatio returns a defined ratio.
func DefinedRatio(v float64) Ratio { return Ratio{Value: v, Defined: true} }

// UndefinedRatio returns the undefined sentinel.
func UndefinedRatio() Ratio { return Ratio{} }

// Summary is the fixed-shape statistics record over a trade list.
type Summary struct {
	TotalTrades   int
	TotalPnL      float64
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // percent, 0 when there are no trades
	AvgWin        float64 // 0 when there are no winning trades
	AvgLoss       float64 // positive magnitude, 0 when there are no losing trades
	GrossProfit   float64
	GrossLoss     float64 // positive magnitude
	LargestWin    float64
	LargestLoss   float64 // positive magnitude
	Expectancy    float64 // net P&L per trade
	ProfitFactor  Ratio   // gross profit / gross loss
	RMultiple     Ratio   // avg win / avg loss
}

// Calc computes the summary statistics for a list of trades.
// Trades with zero P&L count toward TotalTrades only.
func Calc(trades []models.Trade) Summary {
	s := Summary{TotalTrades: len(trades)}

	for _, t := range trades {
		s.TotalPnL += t.PnL
		switch {
		case t.PnL > 0:
			s.WinningTrades++
			s.GrossProfit += t.PnL
			if t.PnL > s.LargestWin {
				s.LargestWin = t.PnL
			}
		case t.PnL < 0:
			s.LosingTrades++
			s.GrossLoss += -t.PnL
			if -t.PnL > s.LargestLoss {
				s.LargestLoss = -t.PnL
			}
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
		s.Expectancy = s.TotalPnL / float64(s.TotalTrades)
	}
	if s.WinningTrades > 0 {
		s.AvgWin = s.GrossProfit / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = s.GrossLoss / float64(s.LosingTrades)
	}
	if s.GrossLoss > 0 {
		s.ProfitFactor = DefinedRatio(s.GrossProfit / s.GrossLoss)
	}
	if s.AvgLoss > 0 {
		s.RMultiple = DefinedRatio(s.AvgWin / s.AvgLoss)
	}

	return s
}

// EquityPoint is one step of the cumulative P&L series.
type EquityPoint struct {
	Trade      models.Trade
	Cumulative float64
}

// EquityCurve returns the running cumulative P&L of all trades that have an
// exit date, ordered by exit date ascending. Trades without an exit date are
// excluded entirely. The sort is stable so same-timestamp trades keep their
// original relative order.
func EquityCurve(trades []models.Trade) []EquityPoint {
	closed := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.ExitDate != nil {
			closed = append(closed, t)
		}
	}
	sort.SliceStable(closed, func(i, j int) bool {
		return closed[i].ExitDate.Before(*closed[j].ExitDate)
	})

	points := make([]EquityPoint, len(closed))
	var sum float64
	for i, t := range closed {
		sum += t.PnL
		points[i] = EquityPoint{Trade: t, Cumulative: sum}
	}
	return points
}

// Group accumulates count, wins, and summed P&L for one aggregation key.
type Group struct {
	Key    string
	Trades int
	Wins   int
	PnL    float64
}

// WinRate returns the group's win rate in percent, 0 for an empty group.
func (g Group) WinRate() float64 {
	if g.Trades == 0 {
		return 0
	}
	return float64(g.Wins) / float64(g.Trades) * 100
}

// ByStrategy groups trades by strategy, using "Unknown" for trades without
// one, sorted by descending P&L.
func ByStrategy(trades []models.Trade) []Group {
	return groupBy(trades, func(t models.Trade) string {
		if t.Strategy == "" {
			return "Unknown"
		}
		return t.Strategy
	}, true)
}

// ByAssetType groups trades by asset type in the fixed display order of
// models.AssetTypes; unknown types follow in encounter order.
func ByAssetType(trades []models.Trade) []Group {
	groups := groupBy(trades, func(t models.Trade) string {
		return string(t.AssetType)
	}, false)

	rank := make(map[string]int, len(models.AssetTypes))
	for i, at := range models.AssetTypes {
		rank[string(at)] = i
	}
	sort.SliceStable(groups, func(i, j int) bool {
		ri, iok := rank[groups[i].Key]
		rj, jok := rank[groups[j].Key]
		if iok != jok {
			return iok
		}
		return ri < rj
	})
	return groups
}

func groupBy(trades []models.Trade, key func(models.Trade) string, byPnL bool) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, t := range trades {
		k := key(t)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Trades++
		groups[i].PnL += t.PnL
		if t.PnL > 0 {
			groups[i].Wins++
		}
	}
	if byPnL {
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].PnL > groups[j].PnL
		})
	}
	return groups
}
