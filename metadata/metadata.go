// Package metadata loads the curated company metadata file that screening
// candidates are joined against.
package metadata

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/meanrev/screener/models"
)

var requiredColumns = []string{"ticker", "company_name", "founding_year", "country", "index"}

// Store holds the parsed metadata keyed by ticker. Rows that fail
// validation are skipped and recorded as warnings; a missing file or a
// missing required column is fatal because every run depends on this file.
type Store struct {
	companies []models.Company
	byTicker  map[string]models.Company
	warnings  []string
}

// Load reads a metadata CSV. The header is matched by name so column order
// does not matter; a notes column is optional.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata file %s: %v: %w", path, err, models.ErrInvalidConfig)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read metadata header: %v: %w", err, models.ErrInvalidConfig)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("metadata file missing column %q: %w", name, models.ErrInvalidConfig)
		}
	}

	s := &Store{byTicker: make(map[string]models.Company)}
	currentYear := time.Now().UTC().Year()
	missingYear := 0
	line := 1
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		line++

		field := func(name string) string {
			i := col[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		yearRaw := field("founding_year")
		if yearRaw == "" {
			missingYear++
			continue
		}
		year, err := strconv.Atoi(yearRaw)
		if err != nil {
			s.warnings = append(s.warnings, fmt.Sprintf("line %d: bad founding year %q", line, yearRaw))
			continue
		}

		c := models.Company{
			Ticker:       field("ticker"),
			CompanyName:  field("company_name"),
			FoundingYear: year,
			Country:      field("country"),
			Index:        field("index"),
		}
		if i, ok := col["notes"]; ok && i < len(record) {
			c.Notes = strings.TrimSpace(record[i])
		}
		if err := c.Validate(currentYear); err != nil {
			s.warnings = append(s.warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if _, dup := s.byTicker[c.Ticker]; dup {
			s.warnings = append(s.warnings, fmt.Sprintf("line %d: duplicate ticker %s", line, c.Ticker))
			continue
		}
		s.companies = append(s.companies, c)
		s.byTicker[c.Ticker] = c
	}
	if missingYear > 0 {
		s.warnings = append(s.warnings, fmt.Sprintf("%d companies skipped: no founding year", missingYear))
	}
	return s, nil
}

func (s *Store) Len() int { return len(s.companies) }

// Companies returns every valid row in file order.
func (s *Store) Companies() []models.Company { return s.companies }

// Warnings lists the rows that were skipped and why.
func (s *Store) Warnings() []string { return s.warnings }

// Get looks up a single ticker.
func (s *Store) Get(ticker string) (models.Company, bool) {
	c, ok := s.byTicker[ticker]
	return c, ok
}

// ByTickers joins a ticker list against the store, keeping the caller's
// order and dropping tickers without metadata.
func (s *Store) ByTickers(tickers []string) []models.Company {
	matched := make([]models.Company, 0, len(tickers))
	for _, t := range tickers {
		if c, ok := s.byTicker[t]; ok {
			matched = append(matched, c)
		}
	}
	return matched
}
