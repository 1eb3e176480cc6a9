package backtest

import (
	"math"

	"github.com/meanrev/screener/models"
)

// Holding-day histogram bins. Lower bound inclusive, upper exclusive.
type bucket struct {
	label  string
	lo, hi int
}

var holdingBuckets = []bucket{
	{"0-7", 0, 7},
	{"7-14", 7, 14},
	{"14-30", 14, 30},
	{"30-90", 30, 90},
	{"90-180", 90, 180},
	{"180-365", 180, 365},
	{"365+", 365, math.MaxInt},
}

// HoldingDistribution buckets closed trades by holding days. Only buckets
// that received at least one trade appear in the map.
func HoldingDistribution(trades []models.Trade) map[string]int {
	dist := make(map[string]int)
	for _, t := range trades {
		for _, b := range holdingBuckets {
			if t.HoldingDays >= b.lo && t.HoldingDays < b.hi {
				dist[b.label]++
				break
			}
		}
	}
	return dist
}

// Summarize aggregates the final book into the run result. All ratio
// metrics cover closed trades only; open positions are carried as-is with
// no mark-to-market.
func Summarize(trades []models.Trade, open []models.Position, warnings []string) *models.BacktestResult {
	r := &models.BacktestResult{
		Trades:        trades,
		OpenPositions: open,
		TotalTrades:   len(trades) + len(open),
		ClosedTrades:  len(trades),
		StillOpen:     len(open),
		HoldingDays:   HoldingDistribution(trades),
		Warnings:      warnings,
	}

	holdingSum := 0
	for _, t := range trades {
		r.TotalPnL += t.PnL
		r.TotalInvested += t.EntryPrice * t.Shares
		holdingSum += t.HoldingDays
		switch {
		case t.PnL > 0:
			r.WinningTrades++
		case t.PnL < 0:
			r.LosingTrades++
		}
	}
	if r.ClosedTrades > 0 {
		r.WinRate = float64(r.WinningTrades) / float64(r.ClosedTrades) * 100
		r.AvgHoldingDays = float64(holdingSum) / float64(r.ClosedTrades)
	}
	if r.TotalInvested > 0 {
		r.ReturnPct = r.TotalPnL / r.TotalInvested * 100
	}
	return r
}
