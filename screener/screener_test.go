package screener

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/meanrev/screener/metadata"
	"github.com/meanrev/screener/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mkSeries(ticker string, start time.Time, closes []float64) models.PriceSeries {
	s := models.PriceSeries{Ticker: ticker}
	for i, c := range closes {
		s.Points = append(s.Points, models.PricePoint{Date: start.AddDate(0, 0, i), Close: c})
	}
	return s
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

type fakeSource struct {
	byIndex map[string][]string
	errs    map[string]error
}

func (f *fakeSource) Constituents(index string) ([]string, error) {
	if err := f.errs[index]; err != nil {
		return nil, err
	}
	return f.byIndex[index], nil
}

type fakeMarket struct {
	series map[string]models.PriceSeries
}

func (f *fakeMarket) HistoryAll(tickers []string, from, to time.Time) (map[string]models.PriceSeries, []string) {
	out := make(map[string]models.PriceSeries)
	var warnings []string
	for _, t := range tickers {
		s, ok := f.series[t]
		if !ok {
			warnings = append(warnings, t+": no data")
			continue
		}
		out[t] = s
	}
	return out, warnings
}

func writeMetadata(t *testing.T) *metadata.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "companies.csv")
	csv := strings.Join([]string{
		"ticker,company_name,founding_year,country,index,notes",
		"AAA,Alpha Industries,1900,USA,SP500,",
		"BBB,Beta Corp,1950,USA,SP500,",
		"CCC,Gamma AG,1880,Germany,DAX,",
		"NEW,Newcomer Inc,2010,USA,SP500,",
		"DDD,Delta plc,1850,United Kingdom,FTSE100,",
	}, "\n")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := metadata.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return store
}

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	start := day(2024, 6, 24)
	return &Pipeline{
		Source: &fakeSource{byIndex: map[string][]string{
			models.IndexSP500: {"AAA", "BBB", "NEW", "NOMETA"},
			models.IndexDAX:   {"CCC"},
		}},
		Market: &fakeMarket{series: map[string]models.PriceSeries{
			// AAA's worst 2-step window is 100 -> 80 = -20%.
			"AAA": mkSeries("AAA", start, []float64{100, 95, 80, 85, 88}),
			// CCC's worst 2-step window is 50 -> 47 = -6%.
			"CCC": mkSeries("CCC", start, []float64{50, 49, 47, 48, 50}),
		}},
		Meta: writeMetadata(t),
	}
}

func TestScreenRanksWorstFirst(t *testing.T) {
	p := testPipeline(t)
	out, err := p.Screen(ScreenOptions{
		Indices:      []string{models.IndexSP500, models.IndexDAX},
		MinAge:       50,
		LookbackDays: 30,
		WindowLen:    2,
		AsOf:         day(2024, 6, 28),
	})
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}

	if out.RunID == "" {
		t.Error("expected a run id")
	}
	if !out.Date.Equal(day(2024, 6, 28)) {
		t.Errorf("screening date = %v", out.Date)
	}

	// 5 scraped, NOMETA has no metadata row, NEW fails the age filter,
	// BBB has no price history.
	want := models.UniverseStats{Constituents: 5, WithMetadata: 4, PassedFilters: 3, WithHistory: 2, Screened: 2}
	if out.Universe != want {
		t.Errorf("universe stats = %+v, want %+v", out.Universe, want)
	}

	if len(out.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(out.Results))
	}
	first := out.Results[0]
	if first.Ticker != "AAA" || out.Results[1].Ticker != "CCC" {
		t.Fatalf("ranking = [%s %s], want [AAA CCC]", first.Ticker, out.Results[1].Ticker)
	}
	if !almostEqual(first.Worst.ReturnPct, -20) {
		t.Errorf("AAA worst return = %v, want -20", first.Worst.ReturnPct)
	}
	if !first.Worst.StartDate.Equal(day(2024, 6, 24)) || !first.Worst.EndDate.Equal(day(2024, 6, 26)) {
		t.Errorf("AAA worst window = %v to %v", first.Worst.StartDate, first.Worst.EndDate)
	}
	if first.CompanyName != "Alpha Industries" || first.Country != "USA" || first.Index != models.IndexSP500 {
		t.Errorf("company join wrong: %+v", first)
	}
	if first.AgeYears != 124 {
		t.Errorf("AAA age = %d, want 124", first.AgeYears)
	}

	joined := strings.Join(out.Warnings, "\n")
	if !strings.Contains(joined, "BBB: no data") {
		t.Errorf("missing BBB warning in %q", joined)
	}
}

func TestScreenCountryFilter(t *testing.T) {
	p := testPipeline(t)
	out, err := p.Screen(ScreenOptions{
		Indices:      []string{models.IndexSP500, models.IndexDAX},
		MinAge:       50,
		Countries:    []string{"Germany"},
		LookbackDays: 30,
		WindowLen:    2,
		AsOf:         day(2024, 6, 28),
	})
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}
	if len(out.Results) != 1 || out.Results[0].Ticker != "CCC" {
		t.Fatalf("results = %+v, want only CCC", out.Results)
	}
	if out.Universe.PassedFilters != 1 {
		t.Errorf("passed filters = %d, want 1", out.Universe.PassedFilters)
	}
}

func TestScreenNoIndices(t *testing.T) {
	p := testPipeline(t)
	_, err := p.Screen(ScreenOptions{LookbackDays: 30, WindowLen: 2, AsOf: day(2024, 6, 28)})
	if !errors.Is(err, models.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestScreenAllIndexFetchesFail(t *testing.T) {
	p := testPipeline(t)
	p.Source = &fakeSource{errs: map[string]error{
		models.IndexSP500: fmt.Errorf("boom"),
	}}
	_, err := p.Screen(ScreenOptions{
		Indices:      []string{models.IndexSP500},
		LookbackDays: 30,
		WindowLen:    2,
		AsOf:         day(2024, 6, 28),
	})
	if err == nil {
		t.Fatal("expected an error when every index fetch fails")
	}
}

func TestScreenOneIndexFailingIsAWarning(t *testing.T) {
	p := testPipeline(t)
	p.Source = &fakeSource{
		byIndex: map[string][]string{models.IndexDAX: {"CCC"}},
		errs:    map[string]error{models.IndexSP500: fmt.Errorf("boom")},
	}
	out, err := p.Screen(ScreenOptions{
		Indices:      []string{models.IndexSP500, models.IndexDAX},
		MinAge:       50,
		LookbackDays: 30,
		WindowLen:    2,
		AsOf:         day(2024, 6, 28),
	})
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}
	if len(out.Results) != 1 || out.Results[0].Ticker != "CCC" {
		t.Fatalf("results = %+v, want only CCC", out.Results)
	}
	if joined := strings.Join(out.Warnings, "\n"); !strings.Contains(joined, "SP500") {
		t.Errorf("missing index warning in %q", joined)
	}
}

func TestScreeningReportFields(t *testing.T) {
	p := testPipeline(t)
	out, err := p.Screen(ScreenOptions{
		Indices:      []string{models.IndexSP500, models.IndexDAX},
		MinAge:       50,
		LookbackDays: 30,
		WindowLen:    2,
		AsOf:         day(2024, 6, 28),
	})
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}

	report := NewReport(out)
	if report.Metadata.ScreeningDate != "2024-06-28" {
		t.Errorf("screening date = %q", report.Metadata.ScreeningDate)
	}
	if report.Metadata.Screened != 2 {
		t.Errorf("screened = %d", report.Metadata.Screened)
	}

	data, err := json.Marshal(report.Results[0])
	if err != nil {
		t.Fatal(err)
	}
	var row map[string]any
	if err := json.Unmarshal(data, &row); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"rank", "ticker", "company_name", "country", "index", "founding_year", "company_age_years", "worst_window"} {
		if _, ok := row[key]; !ok {
			t.Errorf("result row missing key %q", key)
		}
	}
	window, ok := row["worst_window"].(map[string]any)
	if !ok {
		t.Fatal("worst_window is not an object")
	}
	for _, key := range []string{"return_pct", "start_date", "end_date", "start_price", "end_price"} {
		if _, ok := window[key]; !ok {
			t.Errorf("worst_window missing key %q", key)
		}
	}
	if window["start_date"] != "2024-06-24" || window["end_date"] != "2024-06-26" {
		t.Errorf("window dates = %v to %v", window["start_date"], window["end_date"])
	}
	if window["return_pct"] != -20.0 {
		t.Errorf("return_pct = %v", window["return_pct"])
	}

	path := filepath.Join(t.TempDir(), "screening.json")
	if err := report.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(saved), `"run_id"`) {
		t.Error("saved report missing run_id")
	}
}

func TestPrintTable(t *testing.T) {
	p := testPipeline(t)
	out, err := p.Screen(ScreenOptions{
		Indices:      []string{models.IndexSP500, models.IndexDAX},
		MinAge:       50,
		LookbackDays: 30,
		WindowLen:    2,
		AsOf:         day(2024, 6, 28),
	})
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}

	var buf bytes.Buffer
	PrintTable(&buf, out, 1)
	got := buf.String()
	for _, want := range []string{
		"SCREENING 2024-06-28",
		"5 constituents, 4 with metadata, 3 passed filters, 2 screened",
		"Alpha Industries",
		"-20.00%",
		"... and 1 more",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Gamma") {
		t.Error("limit 1 should cut the second row")
	}
}
