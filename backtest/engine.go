// Package backtest simulates the buy-the-dip strategy day by day over
// historical prices: screen on a fixed cadence, enter the worst recent
// decliner, exit when the close recovers to the pre-drop level.
package backtest

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/meanrev/screener/models"
)

// Config holds the simulation parameters.
type Config struct {
	Start         time.Time
	End           time.Time
	WindowLen     int     // performance window in index steps
	FrequencyDays int     // minimum calendar days between screenings
	LookbackDays  int     // calendar span handed to the selector each screening
	Investment    float64 // capital per entry
	Debug         bool
}

func (c Config) Validate() error {
	switch {
	case c.Start.IsZero() || c.End.IsZero():
		return fmt.Errorf("start and end dates are required: %w", models.ErrInvalidConfig)
	case c.End.Before(c.Start):
		return fmt.Errorf("end %s before start %s: %w",
			c.End.Format("2006-01-02"), c.Start.Format("2006-01-02"), models.ErrInvalidConfig)
	case c.WindowLen < 1:
		return fmt.Errorf("window length %d: %w", c.WindowLen, models.ErrInvalidConfig)
	case c.FrequencyDays < 1:
		return fmt.Errorf("screening frequency %d days: %w", c.FrequencyDays, models.ErrInvalidConfig)
	case c.LookbackDays < 1:
		return fmt.Errorf("lookback %d days: %w", c.LookbackDays, models.ErrInvalidConfig)
	case c.Investment <= 0:
		return fmt.Errorf("investment %.2f per position: %w", c.Investment, models.ErrInvalidConfig)
	}
	return nil
}

// Engine drives the day-by-day simulation over a fixed candidate universe
// and pre-fetched price data. It performs no I/O of its own, which keeps
// runs reproducible: same inputs, same trades.
type Engine struct {
	cfg        Config
	candidates []models.Company
	prices     map[string]models.PriceSeries
	book       *Book
	warnings   []string
}

// New validates the configuration and the price data. Malformed series are
// excluded here with a warning so the day loop can trust every series it
// touches.
func New(cfg Config, candidates []models.Company, prices map[string]models.PriceSeries) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Start = models.Day(cfg.Start)
	cfg.End = models.Day(cfg.End)

	e := &Engine{
		cfg:        cfg,
		candidates: candidates,
		prices:     make(map[string]models.PriceSeries, len(prices)),
		book:       NewBook(),
	}
	for _, ticker := range sortedTickers(prices) {
		s := prices[ticker]
		if err := s.Validate(); err != nil {
			log.Printf("Excluding %s: %v", ticker, err)
			e.warnings = append(e.warnings, err.Error())
			continue
		}
		e.prices[ticker] = s
	}
	return e, nil
}

// Run walks the trading calendar from start to end. Exits are processed
// before any entry on the same day, and a screening happens whenever at
// least FrequencyDays have passed since the previous one. Positions still
// open when the horizon ends stay open; there is no forced liquidation.
func (e *Engine) Run() (*models.BacktestResult, error) {
	calendar := e.tradingCalendar()
	log.Printf("Backtest %s..%s: %d trading days, %d candidates",
		e.cfg.Start.Format("2006-01-02"), e.cfg.End.Format("2006-01-02"),
		len(calendar), len(e.candidates))
	if len(calendar) == 0 {
		e.warnings = append(e.warnings, "no trading data in the simulation range")
	}

	var lastScreening time.Time
	screenings := 0
	for _, day := range calendar {
		for _, trade := range e.book.AdvanceDay(day, e.prices) {
			log.Printf("%s: closed %s at %.2f (%+.2f%%, held %d days)",
				day.Format("2006-01-02"), trade.Ticker, trade.ExitPrice, trade.PnLPct, trade.HoldingDays)
		}

		if screenings > 0 && day.Before(lastScreening.AddDate(0, 0, e.cfg.FrequencyDays)) {
			continue
		}
		// The screening date advances even if no position opens below.
		screenings++
		lastScreening = day
		e.screen(day, screenings)
	}

	result := Summarize(e.book.ClosedTrades(), e.book.OpenPositions(), e.warnings)
	result.ScreeningRuns = screenings
	log.Printf("Backtest complete: %d trades closed, %d still open, total pnl %.2f",
		result.ClosedTrades, result.StillOpen, result.TotalPnL)
	return result, nil
}

// screen runs one screening cycle: pick the worst recent decliner and try
// to enter it at the most recent close.
func (e *Engine) screen(day time.Time, n int) {
	sel := SelectWorst(e.candidates, e.prices, day, e.cfg.LookbackDays, e.cfg.WindowLen)
	if sel == nil {
		e.debugf("Screening #%d on %s: no candidate qualified", n, day.Format("2006-01-02"))
		return
	}
	ticker := sel.Company.Ticker

	entry, _, ok := e.prices[ticker].PriceOnOrBefore(day)
	if !ok {
		return
	}
	target := sel.Window.StartPrice
	if target <= entry {
		// The dip already recovered between window start and today; an
		// entry here would exit immediately for a zero or negative move.
		e.debugf("Screening #%d: %s already recovered, entry %.2f vs target %.2f", n, ticker, entry, target)
		return
	}

	err := e.book.Open(ticker, sel.Company.CompanyName, day, entry, e.cfg.Investment, target)
	switch {
	case errors.Is(err, models.ErrPositionOpen):
		e.debugf("Screening #%d: %s still open, skipping", n, ticker)
	case err != nil:
		e.warnings = append(e.warnings, err.Error())
	default:
		log.Printf("%s: opened %s at %.2f targeting %.2f (worst window %+.2f%%)",
			day.Format("2006-01-02"), ticker, entry, target, sel.Window.ReturnPct)
	}
}

// tradingCalendar is the sorted union of all candidate series dates clipped
// to the simulation range. Weekends and market holidays never appear in any
// series, so they never advance the clock.
func (e *Engine) tradingCalendar() []time.Time {
	seen := make(map[time.Time]struct{})
	for _, s := range e.prices {
		for _, p := range s.Points {
			if p.Date.Before(e.cfg.Start) || p.Date.After(e.cfg.End) {
				continue
			}
			seen[p.Date] = struct{}{}
		}
	}
	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func (e *Engine) debugf(format string, args ...any) {
	if e.cfg.Debug {
		log.Printf(format, args...)
	}
}

func sortedTickers(prices map[string]models.PriceSeries) []string {
	tickers := make([]string, 0, len(prices))
	for t := range prices {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}
