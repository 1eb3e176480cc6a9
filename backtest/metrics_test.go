package backtest

import (
	"testing"

	"github.com/meanrev/screener/models"
)

func TestHoldingDistributionBuckets(t *testing.T) {
	mk := func(days int) models.Trade { return models.Trade{HoldingDays: days} }

	tests := []struct {
		days int
		want string
	}{
		{0, "0-7"},
		{6, "0-7"},
		{7, "7-14"}, // lower bound inclusive, upper exclusive
		{13, "7-14"},
		{14, "14-30"},
		{29, "14-30"},
		{30, "30-90"},
		{89, "30-90"},
		{90, "90-180"},
		{180, "180-365"},
		{364, "180-365"},
		{365, "365+"},
		{1200, "365+"},
	}
	for _, tt := range tests {
		dist := HoldingDistribution([]models.Trade{mk(tt.days)})
		if len(dist) != 1 || dist[tt.want] != 1 {
			t.Errorf("HoldingDistribution(%d days) = %v, want {%s: 1}", tt.days, dist, tt.want)
		}
	}

	dist := HoldingDistribution([]models.Trade{mk(3), mk(5), mk(14), mk(400)})
	if dist["0-7"] != 2 || dist["14-30"] != 1 || dist["365+"] != 1 {
		t.Errorf("combined distribution = %v", dist)
	}
	if _, ok := dist["7-14"]; ok {
		t.Error("empty buckets must not appear in the map")
	}
}

func TestSummarize(t *testing.T) {
	trades := []models.Trade{
		{Ticker: "AAA", EntryPrice: 100, Shares: 100, PnL: 1000, HoldingDays: 10},  // +1000 on 10000
		{Ticker: "BBB", EntryPrice: 50, Shares: 100, PnL: 250, HoldingDays: 20},    // +250 on 5000
		{Ticker: "CCC", EntryPrice: 200, Shares: 25, PnL: -500, HoldingDays: 40},   // -500 on 5000
		{Ticker: "DDD", EntryPrice: 100, Shares: 100, PnL: 0, HoldingDays: 2},      // breakeven
	}
	open := []models.Position{
		{Ticker: "EEE", EntryPrice: 10, Shares: 1000},
	}

	r := Summarize(trades, open, []string{"w1"})

	if r.TotalTrades != 5 || r.ClosedTrades != 4 || r.StillOpen != 1 {
		t.Errorf("counts = %d/%d/%d", r.TotalTrades, r.ClosedTrades, r.StillOpen)
	}
	// Breakeven counts as neither a win nor a loss.
	if r.WinningTrades != 2 || r.LosingTrades != 1 {
		t.Errorf("winners/losers = %d/%d, want 2/1", r.WinningTrades, r.LosingTrades)
	}
	if !almostEqual(r.WinRate, 50) {
		t.Errorf("WinRate = %v, want 50", r.WinRate)
	}
	if !almostEqual(r.TotalPnL, 750) {
		t.Errorf("TotalPnL = %v, want 750", r.TotalPnL)
	}
	// Invested counts closed trades only: 10000 + 5000 + 5000 + 10000.
	if !almostEqual(r.TotalInvested, 30000) {
		t.Errorf("TotalInvested = %v, want 30000", r.TotalInvested)
	}
	if !almostEqual(r.ReturnPct, 2.5) {
		t.Errorf("ReturnPct = %v, want 2.5", r.ReturnPct)
	}
	if !almostEqual(r.AvgHoldingDays, 18) {
		t.Errorf("AvgHoldingDays = %v, want 18", r.AvgHoldingDays)
	}
	if r.HoldingDays["7-14"] != 1 || r.HoldingDays["14-30"] != 1 || r.HoldingDays["30-90"] != 1 || r.HoldingDays["0-7"] != 1 {
		t.Errorf("HoldingDays = %v", r.HoldingDays)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	r := Summarize(nil, nil, nil)
	if r.TotalTrades != 0 || r.WinRate != 0 || r.ReturnPct != 0 || r.AvgHoldingDays != 0 {
		t.Errorf("empty summary has non-zero metrics: %+v", r)
	}
}
