// Package screener assembles the candidate universe and runs the one-shot
// screening workflow over it.
package screener

import (
	"fmt"
	"log"
	"time"

	"github.com/meanrev/screener/filters"
	"github.com/meanrev/screener/metadata"
	"github.com/meanrev/screener/models"
)

// IndexSource provides constituent tickers per index.
type IndexSource interface {
	Constituents(index string) ([]string, error)
}

// MarketData fetches daily close history in bulk. Implementations return
// per-ticker warnings instead of failing the whole batch.
type MarketData interface {
	HistoryAll(tickers []string, from, to time.Time) (map[string]models.PriceSeries, []string)
}

// Pipeline narrows index constituents down to a screenable universe:
// metadata join, age filter, country filter, then price history.
type Pipeline struct {
	Source IndexSource
	Market MarketData
	Meta   *metadata.Store
}

type UniverseOptions struct {
	Indices   []string
	MinAge    int
	Countries []string
	From, To  time.Time
	Year      int // age reference year; zero means the current year
}

// Universe is the assembled input set for screening or backtesting.
type Universe struct {
	Candidates []models.Company
	Prices     map[string]models.PriceSeries
	Stats      models.UniverseStats
	Warnings   []string
}

// Universe runs the narrowing steps in order. A single index page failing
// to scrape is a warning; all of them failing is an error because there is
// nothing left to screen.
func (p *Pipeline) Universe(opts UniverseOptions) (*Universe, error) {
	if len(opts.Indices) == 0 {
		return nil, fmt.Errorf("no indices selected: %w", models.ErrInvalidConfig)
	}
	if opts.Year == 0 {
		opts.Year = time.Now().UTC().Year()
	}

	u := &Universe{}
	var tickers []string
	seen := make(map[string]bool)
	failed := 0
	for _, index := range opts.Indices {
		got, err := p.Source.Constituents(index)
		if err != nil {
			log.Printf("Index %s failed: %v", index, err)
			u.Warnings = append(u.Warnings, fmt.Sprintf("%s: %v", index, err))
			failed++
			continue
		}
		for _, t := range got {
			if !seen[t] {
				seen[t] = true
				tickers = append(tickers, t)
			}
		}
	}
	if failed == len(opts.Indices) {
		return nil, fmt.Errorf("all index fetches failed")
	}
	u.Stats.Constituents = len(tickers)

	candidates := p.Meta.ByTickers(tickers)
	u.Stats.WithMetadata = len(candidates)
	log.Printf("Matched %d of %d constituents to metadata", len(candidates), len(tickers))

	candidates = filters.ByAge(candidates, opts.MinAge, opts.Year)
	candidates = filters.ByCountry(candidates, opts.Countries)
	u.Stats.PassedFilters = len(candidates)
	log.Printf("%d candidates after age >= %d and country filters", len(candidates), opts.MinAge)
	u.Candidates = candidates

	wanted := make([]string, 0, len(candidates))
	for _, c := range candidates {
		wanted = append(wanted, c.Ticker)
	}
	prices, warnings := p.Market.HistoryAll(wanted, opts.From, opts.To)
	u.Warnings = append(u.Warnings, warnings...)

	// Guard against market-data implementations that skip validation.
	u.Prices = make(map[string]models.PriceSeries, len(prices))
	for ticker, s := range prices {
		if err := s.Validate(); err != nil {
			u.Warnings = append(u.Warnings, err.Error())
			continue
		}
		u.Prices[ticker] = s
	}
	u.Stats.WithHistory = len(u.Prices)
	log.Printf("Price history for %d of %d candidates", len(u.Prices), len(candidates))
	return u, nil
}
