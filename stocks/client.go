// Package stocks fetches daily price history from Yahoo Finance.
package stocks

import (
	"errors"
	"fmt"
	"log"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"github.com/meanrev/screener/models"
)

// Options tune request pacing. Zero values fall back to defaults that are
// polite enough for a few hundred tickers per run.
type Options struct {
	Delay    time.Duration // pause between tickers in batch fetches
	Attempts int           // tries per ticker before giving up
	MinWait  time.Duration // first retry backoff
	MaxWait  time.Duration // backoff ceiling
}

// Client fetches price series with retry and rate limiting. A zero Options
// gives 3 attempts, 2s..10s backoff and a 500ms inter-ticker delay.
type Client struct {
	delay    time.Duration
	attempts int
	minWait  time.Duration
	maxWait  time.Duration
}

func NewClient(opts Options) *Client {
	if opts.Delay <= 0 {
		opts.Delay = 500 * time.Millisecond
	}
	if opts.Attempts < 1 {
		opts.Attempts = 3
	}
	if opts.MinWait <= 0 {
		opts.MinWait = 2 * time.Second
	}
	if opts.MaxWait < opts.MinWait {
		opts.MaxWait = 10 * time.Second
	}
	return &Client{
		delay:    opts.Delay,
		attempts: opts.Attempts,
		minWait:  opts.MinWait,
		maxWait:  opts.MaxWait,
	}
}

// History fetches daily closes for ticker covering [from, to]. Transient
// fetch errors are retried with exponential backoff; a series that comes
// back malformed is not retried because it will not heal.
func (c *Client) History(ticker string, from, to time.Time) (models.PriceSeries, error) {
	var lastErr error
	wait := c.minWait
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(wait)
			wait *= 2
			if wait > c.maxWait {
				wait = c.maxWait
			}
		}
		series, err := c.fetch(ticker, from, to)
		if err == nil {
			return series, nil
		}
		lastErr = err
		var malformed *models.MalformedSeriesError
		if errors.As(err, &malformed) {
			break
		}
	}
	return models.PriceSeries{}, lastErr
}

func (c *Client) fetch(ticker string, from, to time.Time) (models.PriceSeries, error) {
	// Yahoo treats the end bound as exclusive, so pad one day to include it.
	end := to.AddDate(0, 0, 1)
	iter := chart.Get(&chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&from),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	series := models.PriceSeries{Ticker: ticker}
	for iter.Next() {
		series.Points = append(series.Points, toPoint(iter.Bar()))
	}
	if err := iter.Err(); err != nil {
		return models.PriceSeries{}, fmt.Errorf("chart %s: %w", ticker, err)
	}
	if series.Len() == 0 {
		return models.PriceSeries{}, fmt.Errorf("no price data for %s", ticker)
	}
	if err := series.Validate(); err != nil {
		return models.PriceSeries{}, err
	}
	return series, nil
}

// HistoryAll fetches every ticker in turn, pausing between requests.
// Tickers that fail after all retries are dropped with a warning instead of
// failing the batch, so one delisted symbol cannot sink a run.
func (c *Client) HistoryAll(tickers []string, from, to time.Time) (map[string]models.PriceSeries, []string) {
	series := make(map[string]models.PriceSeries, len(tickers))
	var warnings []string
	for i, ticker := range tickers {
		if i > 0 {
			time.Sleep(c.delay)
		}
		s, err := c.History(ticker, from, to)
		if err != nil {
			log.Printf("Skipping %s: %v", ticker, err)
			warnings = append(warnings, fmt.Sprintf("%s: %v", ticker, err))
			continue
		}
		series[ticker] = s
		if (i+1)%25 == 0 {
			log.Printf("Fetched price history for %d/%d tickers", i+1, len(tickers))
		}
	}
	return series, warnings
}

// toPoint converts a chart bar, preferring the adjusted close so splits and
// dividends do not show up as fake drops.
func toPoint(b *finance.ChartBar) models.PricePoint {
	close := b.AdjClose
	if close.IsZero() {
		close = b.Close
	}
	return models.PricePoint{
		Date:  models.Day(time.Unix(int64(b.Timestamp), 0).UTC()),
		Close: close.InexactFloat64(),
	}
}
