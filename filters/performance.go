// Package filters narrows the candidate universe: company filters on
// metadata, and the windowed performance scan that drives both screening
// and backtest selection.
package filters

import (
	"fmt"
	"sort"

	"github.com/meanrev/screener/models"
)

// WorstWindow scans every pair of points windowLen index steps apart and
// returns the one with the minimum percentage return. A windowLen of 5 on
// daily data is roughly one trading week. Ties keep the earliest window.
// Series shorter than windowLen+1 points yield ErrInsufficientData.
func WorstWindow(s models.PriceSeries, windowLen int) (models.WindowResult, error) {
	if windowLen < 1 {
		return models.WindowResult{}, fmt.Errorf("window length %d: %w", windowLen, models.ErrInvalidConfig)
	}
	if s.Len() < windowLen+1 {
		return models.WindowResult{}, fmt.Errorf("%s: %d points, need %d: %w",
			s.Ticker, s.Len(), windowLen+1, models.ErrInsufficientData)
	}

	var worst models.WindowResult
	found := false
	for i := 0; i+windowLen < len(s.Points); i++ {
		start, end := s.Points[i], s.Points[i+windowLen]
		if start.Close <= 0 || end.Close <= 0 {
			continue
		}
		ret := (end.Close - start.Close) / start.Close * 100
		if !found || ret < worst.ReturnPct {
			found = true
			worst = models.WindowResult{
				ReturnPct:  ret,
				StartDate:  start.Date,
				EndDate:    end.Date,
				StartPrice: start.Close,
				EndPrice:   end.Close,
			}
		}
	}
	if !found {
		return models.WindowResult{}, fmt.Errorf("%s: no usable window: %w", s.Ticker, models.ErrInsufficientData)
	}
	return worst, nil
}

// WorstWindows evaluates every series and returns the worst window per
// ticker. Tickers without enough data are returned separately so callers
// can report how many dropped out.
func WorstWindows(series map[string]models.PriceSeries, windowLen int) (map[string]models.WindowResult, []string) {
	results := make(map[string]models.WindowResult, len(series))
	var skipped []string
	for ticker, s := range series {
		w, err := WorstWindow(s, windowLen)
		if err != nil {
			skipped = append(skipped, ticker)
			continue
		}
		results[ticker] = w
	}
	sort.Strings(skipped)
	return results, skipped
}

// RankedWindow pairs a ticker with its worst window.
type RankedWindow struct {
	Ticker string
	Result models.WindowResult
}

// RankWorst orders results from worst to best return. Equal returns fall
// back to ticker order so ranking is stable across runs.
func RankWorst(results map[string]models.WindowResult) []RankedWindow {
	ranked := make([]RankedWindow, 0, len(results))
	for ticker, r := range results {
		ranked = append(ranked, RankedWindow{Ticker: ticker, Result: r})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Result.ReturnPct != ranked[j].Result.ReturnPct {
			return ranked[i].Result.ReturnPct < ranked[j].Result.ReturnPct
		}
		return ranked[i].Ticker < ranked[j].Ticker
	})
	return ranked
}
