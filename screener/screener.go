package screener

import (
	"time"

	"github.com/google/uuid"

	"github.com/meanrev/screener/filters"
	"github.com/meanrev/screener/models"
)

type ScreenOptions struct {
	Indices      []string
	MinAge       int
	Countries    []string
	LookbackDays int
	WindowLen    int
	AsOf         time.Time // zero means today
}

// Screen runs the full screening workflow: build the universe, compute the
// worst window per candidate over the lookback, and rank worst first. The
// ranking lists every screened candidate; positive movers land at the
// bottom rather than being hidden.
func (p *Pipeline) Screen(opts ScreenOptions) (*models.ScreeningOutput, error) {
	if opts.AsOf.IsZero() {
		opts.AsOf = time.Now().UTC()
	}
	asOf := models.Day(opts.AsOf)

	u, err := p.Universe(UniverseOptions{
		Indices:   opts.Indices,
		MinAge:    opts.MinAge,
		Countries: opts.Countries,
		From:      asOf.AddDate(0, 0, -opts.LookbackDays),
		To:        asOf,
		Year:      asOf.Year(),
	})
	if err != nil {
		return nil, err
	}

	results, skipped := filters.WorstWindows(u.Prices, opts.WindowLen)
	u.Stats.Screened = len(results)

	byTicker := make(map[string]models.Company, len(u.Candidates))
	for _, c := range u.Candidates {
		byTicker[c.Ticker] = c
	}

	out := &models.ScreeningOutput{
		RunID: uuid.NewString(),
		Date:  asOf,
		Filters: models.ScreeningFilters{
			Indices:      opts.Indices,
			Countries:    opts.Countries,
			MinAgeYears:  opts.MinAge,
			LookbackDays: opts.LookbackDays,
			WindowLen:    opts.WindowLen,
		},
		Universe: u.Stats,
		Warnings: u.Warnings,
	}
	for _, ticker := range skipped {
		out.Warnings = append(out.Warnings, ticker+": not enough history for a window")
	}

	for _, ranked := range filters.RankWorst(results) {
		c, ok := byTicker[ranked.Ticker]
		if !ok {
			continue
		}
		out.Results = append(out.Results, models.ScreeningResult{
			Ticker:       c.Ticker,
			CompanyName:  c.CompanyName,
			Country:      c.Country,
			Index:        c.Index,
			FoundingYear: c.FoundingYear,
			AgeYears:     c.Age(asOf.Year()),
			Worst:        ranked.Result,
		})
	}
	return out, nil
}
