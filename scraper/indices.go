// Package scraper pulls index constituent lists from Wikipedia.
package scraper

import (
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/meanrev/screener/models"
)

const defaultBaseURL = "https://en.wikipedia.org"

// Wikipedia serves an error page to generic client user agents, so requests
// identify as a browser.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var indexPages = map[string]string{
	models.IndexSP500:   "/wiki/List_of_S%26P_500_companies",
	models.IndexDAX:     "/wiki/DAX",
	models.IndexFTSE100: "/wiki/FTSE_100_Index",
}

// Yahoo needs exchange suffixes for non-US listings.
var indexSuffix = map[string]string{
	models.IndexDAX:     ".DE",
	models.IndexFTSE100: ".L",
}

// Scraper fetches constituent tickers. BaseURL is swappable so tests can
// point it at a local fixture server.
type Scraper struct {
	BaseURL string
}

func New() *Scraper {
	return &Scraper{BaseURL: defaultBaseURL}
}

// Constituents returns the tickers of one index in page order, carrying the
// exchange suffix Yahoo expects for non-US listings.
func (s *Scraper) Constituents(index string) ([]string, error) {
	page, ok := indexPages[index]
	if !ok {
		return nil, fmt.Errorf("unknown index %q: %w", index, models.ErrInvalidConfig)
	}

	var tickers []string
	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.OnHTML("table.wikitable", func(e *colly.HTMLElement) {
		if tickers != nil {
			return
		}
		// The pages carry several wikitables; the constituents table is the
		// first one whose header row has a ticker column.
		if t, ok := tickersFromTable(e.DOM); ok {
			tickers = t
		}
	})

	if err := c.Visit(s.BaseURL + page); err != nil {
		return nil, fmt.Errorf("fetch %s constituents: %v", index, err)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no constituents table found on %s page", index)
	}

	if suffix := indexSuffix[index]; suffix != "" {
		for i, t := range tickers {
			if !strings.HasSuffix(t, suffix) {
				tickers[i] = t + suffix
			}
		}
	}
	log.Printf("Scraped %d %s constituents", len(tickers), index)
	return tickers, nil
}

// tickersFromTable pulls the ticker column out of a constituents table.
// Wikipedia labels the column differently per index (Symbol, Ticker, EPIC),
// so the header row is sniffed for a match.
func tickersFromTable(table *goquery.Selection) ([]string, bool) {
	col := findColumn(table, func(name string) bool {
		return name == "symbol" || name == "ticker" || name == "epic"
	})
	if col < 0 {
		return nil, false
	}

	var tickers []string
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() <= col {
			return
		}
		if t := strings.TrimSpace(cells.Eq(col).Text()); t != "" {
			tickers = append(tickers, t)
		}
	})
	return tickers, len(tickers) > 0
}

// findColumn returns the index of the first header cell matching the
// predicate, or -1. Only the first row counts as the header.
func findColumn(table *goquery.Selection, match func(string) bool) int {
	col := -1
	table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(th.Text()))
		if col < 0 && match(name) {
			col = i
		}
	})
	return col
}
