package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/meanrev/screener/scraper"
)

type entry struct {
	ticker       string
	companyName  string
	foundingYear string
	country      string
	index        string
	notes        string
}

var header = []string{"ticker", "company_name", "founding_year", "country", "index", "notes"}

func main() {
	metadataPath := flag.String("metadata", "data/company_metadata.csv", "metadata CSV to update in place")
	flag.Parse()

	existing, err := readMetadata(*metadataPath)
	if err != nil {
		log.Fatalf("Read metadata: %v", err)
	}
	fmt.Printf("Found %d existing entries in %s\n", len(existing), *metadataPath)

	rows, err := scraper.New().SP500Rows()
	if err != nil {
		log.Fatalf("Scrape S&P 500: %v", err)
	}
	fmt.Printf("Scraped %d S&P 500 rows\n", len(rows))

	var added, updated, skipped int
	for _, row := range rows {
		year, ok := parseFoundingYear(row.Founded)
		if !ok {
			fmt.Printf("  Skipping %s (%s): no valid founding year\n", row.Ticker, row.CompanyName)
			skipped++
			continue
		}

		if e, present := existing[row.Ticker]; present {
			if old, err := strconv.Atoi(e.foundingYear); err != nil || old != year {
				fmt.Printf("  Updating %s: %s -> %d\n", row.Ticker, e.foundingYear, year)
				e.foundingYear = strconv.Itoa(year)
				existing[row.Ticker] = e
				updated++
			}
			continue
		}

		country := extractCountry(row.Headquarters)
		existing[row.Ticker] = entry{
			ticker:       row.Ticker,
			companyName:  row.CompanyName,
			foundingYear: strconv.Itoa(year),
			country:      country,
			index:        "SP500",
		}
		fmt.Printf("  Adding %s (%s, founded %d, %s)\n", row.Ticker, row.CompanyName, year, country)
		added++
	}

	fmt.Println("\nSummary:")
	fmt.Printf("  New entries added: %d\n", added)
	fmt.Printf("  Existing entries updated: %d\n", updated)
	fmt.Printf("  Skipped (no founding year): %d\n", skipped)
	fmt.Printf("  Total entries: %d\n", len(existing))

	if err := writeMetadata(*metadataPath, existing); err != nil {
		log.Fatalf("Write metadata: %v", err)
	}
	fmt.Printf("\nUpdated metadata written to: %s\n", *metadataPath)
}

var yearPattern = regexp.MustCompile(`\d{4}`)

// parseFoundingYear picks the earliest four-digit year in a Founded cell.
// Wikipedia writes re-incorporations as "2013 (1888)"; the older year is
// the company's real age.
func parseFoundingYear(s string) (int, bool) {
	matches := yearPattern.FindAllString(s, -1)
	earliest := 0
	for _, m := range matches {
		year, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if earliest == 0 || year < earliest {
			earliest = year
		}
	}
	return earliest, earliest > 0
}

var usStates = map[string]bool{
	"Alabama": true, "Alaska": true, "Arizona": true, "Arkansas": true,
	"California": true, "Colorado": true, "Connecticut": true, "Delaware": true,
	"Florida": true, "Georgia": true, "Hawaii": true, "Idaho": true,
	"Illinois": true, "Indiana": true, "Iowa": true, "Kansas": true,
	"Kentucky": true, "Louisiana": true, "Maine": true, "Maryland": true,
	"Massachusetts": true, "Michigan": true, "Minnesota": true, "Mississippi": true,
	"Missouri": true, "Montana": true, "Nebraska": true, "Nevada": true,
	"New Hampshire": true, "New Jersey": true, "New Mexico": true, "New York": true,
	"North Carolina": true, "North Dakota": true, "Ohio": true, "Oklahoma": true,
	"Oregon": true, "Pennsylvania": true, "Rhode Island": true, "South Carolina": true,
	"South Dakota": true, "Tennessee": true, "Texas": true, "Utah": true,
	"Vermont": true, "Virginia": true, "Washington": true, "West Virginia": true,
	"Wisconsin": true, "Wyoming": true,
}

// extractCountry reads the country out of a headquarters location. US rows
// end in a state name, so "Saint Paul, Minnesota" maps to USA while
// "Dublin, Ireland" keeps its last segment.
func extractCountry(location string) string {
	parts := strings.Split(location, ",")
	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" {
		return "Unknown"
	}
	if usStates[last] {
		return "USA"
	}
	return last
}

// readMetadata loads the current CSV keyed by ticker. A missing file is
// fine; the script then builds the metadata from scratch.
func readMetadata(path string) (map[string]entry, error) {
	entries := make(map[string]entry)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return entries, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, record := range records[1:] {
		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		e := entry{
			ticker:       field("ticker"),
			companyName:  field("company_name"),
			foundingYear: field("founding_year"),
			country:      field("country"),
			index:        field("index"),
			notes:        field("notes"),
		}
		if e.ticker != "" {
			entries[e.ticker] = e
		}
	}
	return entries, nil
}

// writeMetadata rewrites the CSV sorted by ticker so diffs stay readable.
func writeMetadata(path string, entries map[string]entry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}

	tickers := make([]string, 0, len(entries))
	for t := range entries {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, t := range tickers {
		e := entries[t]
		record := []string{e.ticker, e.companyName, e.foundingYear, e.country, e.index, e.notes}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
