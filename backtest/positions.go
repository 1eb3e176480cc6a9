package backtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/meanrev/screener/models"
)

// Book tracks simulated positions. A ticker can hold at most one open
// position; closed positions accumulate as trades in close order.
type Book struct {
	open   map[string]*models.Position
	closed []models.Trade
}

func NewBook() *Book {
	return &Book{open: make(map[string]*models.Position)}
}

// Open enters investment/price shares at the given price, targeting the
// pre-drop level. Opening a ticker that already has an open position fails
// with ErrPositionOpen and changes nothing.
func (b *Book) Open(ticker, companyName string, date time.Time, price, investment, target float64) error {
	if _, exists := b.open[ticker]; exists {
		return fmt.Errorf("%s: %w", ticker, models.ErrPositionOpen)
	}
	if price <= 0 {
		return &models.MalformedSeriesError{
			Ticker: ticker,
			Reason: fmt.Sprintf("non-positive entry price %v", price),
		}
	}
	b.open[ticker] = &models.Position{
		Ticker:      ticker,
		CompanyName: companyName,
		EntryDate:   date,
		EntryPrice:  price,
		Shares:      investment / price,
		TargetPrice: target,
		Status:      models.PositionStatusOpen,
	}
	return nil
}

// AdvanceDay checks every open position against the day's close and exits
// those at or above target. A ticker with no close on this exact date is
// left alone; the position simply waits. Tickers are visited in sorted
// order so identical inputs close trades in the same sequence every run.
func (b *Book) AdvanceDay(date time.Time, prices map[string]models.PriceSeries) []models.Trade {
	tickers := make([]string, 0, len(b.open))
	for t := range b.open {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	var closedToday []models.Trade
	for _, ticker := range tickers {
		series, ok := prices[ticker]
		if !ok {
			continue
		}
		price, ok := series.PriceOn(date)
		if !ok {
			continue
		}
		pos := b.open[ticker]
		if price < pos.TargetPrice {
			continue
		}
		pos.Status = models.PositionStatusClosed
		pos.ExitDate = date
		pos.ExitPrice = price
		trade := models.NewTrade(*pos)
		b.closed = append(b.closed, trade)
		closedToday = append(closedToday, trade)
		delete(b.open, ticker)
	}
	return closedToday
}

// HasOpen reports whether a ticker currently holds an open position.
func (b *Book) HasOpen(ticker string) bool {
	_, ok := b.open[ticker]
	return ok
}

func (b *Book) OpenCount() int { return len(b.open) }

// OpenPositions returns the open positions in ticker order.
func (b *Book) OpenPositions() []models.Position {
	positions := make([]models.Position, 0, len(b.open))
	for _, p := range b.open {
		positions = append(positions, *p)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Ticker < positions[j].Ticker })
	return positions
}

// ClosedTrades returns every closed trade in close order.
func (b *Book) ClosedTrades() []models.Trade {
	return b.closed
}
