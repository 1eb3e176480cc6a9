package backtest

import (
	"time"

	"github.com/meanrev/screener/filters"
	"github.com/meanrev/screener/models"
)

// Selection is the candidate a screening cycle picked for entry.
type Selection struct {
	Company models.Company
	Window  models.WindowResult
}

// SelectWorst ranks candidates by their worst window over the recent
// lookback span and returns the biggest decliner. Candidates with no or too
// little price data in the span do not qualify, and neither does a best
// window of zero or better: this strategy only buys actual drops. Returns
// nil when nothing qualifies, which is a normal quiet-market outcome.
//
// Equal declines resolve by ticker order, so the pick does not depend on
// the order candidates are handed in.
func SelectWorst(candidates []models.Company, prices map[string]models.PriceSeries, asOf time.Time, lookbackDays, windowLen int) *Selection {
	var best *Selection
	for _, c := range candidates {
		series, ok := prices[c.Ticker]
		if !ok {
			continue
		}
		w, err := filters.WorstWindow(series.Window(asOf, lookbackDays), windowLen)
		if err != nil {
			continue
		}
		if w.ReturnPct >= 0 {
			continue
		}
		if best == nil || w.ReturnPct < best.Window.ReturnPct ||
			(w.ReturnPct == best.Window.ReturnPct && c.Ticker < best.Company.Ticker) {
			best = &Selection{Company: c, Window: w}
		}
	}
	return best
}
