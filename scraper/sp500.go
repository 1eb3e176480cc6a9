package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/meanrev/screener/models"
)

// SP500Row is one row of the S&P 500 constituents table, carrying the
// columns the metadata update script mines for founding year and country.
type SP500Row struct {
	Ticker       string
	CompanyName  string
	Headquarters string
	Founded      string
}

// SP500Rows scrapes the full constituents table rather than just tickers.
func (s *Scraper) SP500Rows() ([]SP500Row, error) {
	var rows []SP500Row
	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.OnHTML("table.wikitable", func(e *colly.HTMLElement) {
		if rows != nil {
			return
		}
		if r, ok := sp500RowsFromTable(e.DOM); ok {
			rows = r
		}
	})

	if err := c.Visit(s.BaseURL + indexPages[models.IndexSP500]); err != nil {
		return nil, fmt.Errorf("fetch S&P 500 table: %v", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no S&P 500 constituents table found")
	}
	return rows, nil
}

func sp500RowsFromTable(table *goquery.Selection) ([]SP500Row, bool) {
	symbol := findColumn(table, func(n string) bool { return n == "symbol" })
	security := findColumn(table, func(n string) bool { return n == "security" })
	hq := findColumn(table, func(n string) bool { return strings.HasPrefix(n, "headquarters") })
	founded := findColumn(table, func(n string) bool { return n == "founded" })
	if symbol < 0 || security < 0 {
		return nil, false
	}

	var rows []SP500Row
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		cell := func(col int) string {
			if col < 0 || cells.Length() <= col {
				return ""
			}
			return strings.TrimSpace(cells.Eq(col).Text())
		}
		r := SP500Row{
			Ticker:       cell(symbol),
			CompanyName:  cell(security),
			Headquarters: cell(hq),
			Founded:      cell(founded),
		}
		if r.Ticker != "" {
			rows = append(rows, r)
		}
	})
	return rows, len(rows) > 0
}
