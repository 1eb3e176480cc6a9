package models

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Day truncates t to midnight UTC. Every date that enters the system (series
// points, simulation days, CLI arguments) is normalized through here so that
// date comparison is plain equality.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PricePoint is one trading day's close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is the daily close history for one ticker, oldest point first.
type PriceSeries struct {
	Ticker string
	Points []PricePoint
}

func (s PriceSeries) Len() int { return len(s.Points) }

// Validate checks that dates are strictly increasing and closes are positive
// finite numbers. Series come from an external feed, so this runs once at the
// ingestion boundary and everything downstream can assume a clean series.
func (s PriceSeries) Validate() error {
	for i, p := range s.Points {
		if p.Close <= 0 || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			return &MalformedSeriesError{
				Ticker: s.Ticker,
				Reason: fmt.Sprintf("non-positive close %v on %s", p.Close, p.Date.Format("2006-01-02")),
			}
		}
		if i > 0 && !p.Date.After(s.Points[i-1].Date) {
			return &MalformedSeriesError{
				Ticker: s.Ticker,
				Reason: fmt.Sprintf("dates not strictly increasing at %s", p.Date.Format("2006-01-02")),
			}
		}
	}
	return nil
}

// Window returns the points in the half-open span (asOf-lookbackDays, asOf],
// measured in calendar days. The returned series shares backing storage.
func (s PriceSeries) Window(asOf time.Time, lookbackDays int) PriceSeries {
	from := asOf.AddDate(0, 0, -lookbackDays)
	lo := sort.Search(len(s.Points), func(i int) bool { return s.Points[i].Date.After(from) })
	hi := sort.Search(len(s.Points), func(i int) bool { return s.Points[i].Date.After(asOf) })
	return PriceSeries{Ticker: s.Ticker, Points: s.Points[lo:hi]}
}

// PriceOn returns the close for exactly the given date.
func (s PriceSeries) PriceOn(date time.Time) (float64, bool) {
	i := sort.Search(len(s.Points), func(i int) bool { return !s.Points[i].Date.Before(date) })
	if i < len(s.Points) && s.Points[i].Date.Equal(date) {
		return s.Points[i].Close, true
	}
	return 0, false
}

// PriceOnOrBefore returns the most recent close at or before the given date.
// Entry prices use this so that a screening date falling on a holiday still
// resolves to the last traded close.
func (s PriceSeries) PriceOnOrBefore(date time.Time) (float64, time.Time, bool) {
	i := sort.Search(len(s.Points), func(i int) bool { return s.Points[i].Date.After(date) })
	if i == 0 {
		return 0, time.Time{}, false
	}
	return s.Points[i-1].Close, s.Points[i-1].Date, true
}

// WindowResult describes the worst windowed move found in a series.
type WindowResult struct {
	ReturnPct  float64
	StartDate  time.Time
	EndDate    time.Time
	StartPrice float64
	EndPrice   float64
}
