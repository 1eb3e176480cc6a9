package screener

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meanrev/screener/models"
)

func round2(v float64) float64 { return decimal.NewFromFloat(v).Round(2).InexactFloat64() }

// WindowRecord is the wire form of a worst-window result.
type WindowRecord struct {
	ReturnPct  float64 `json:"return_pct"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	StartPrice float64 `json:"start_price"`
	EndPrice   float64 `json:"end_price"`
}

// ResultRecord is one ranked screening row on the wire.
type ResultRecord struct {
	Rank         int          `json:"rank"`
	Ticker       string       `json:"ticker"`
	CompanyName  string       `json:"company_name"`
	Country      string       `json:"country"`
	Index        string       `json:"index"`
	FoundingYear int          `json:"founding_year"`
	AgeYears     int          `json:"company_age_years"`
	WorstWindow  WindowRecord `json:"worst_window"`
}

type ReportMetadata struct {
	RunID         string   `json:"run_id"`
	ScreeningDate string   `json:"screening_date"`
	Indices       []string `json:"indices"`
	Countries     []string `json:"countries,omitempty"`
	MinAgeYears   int      `json:"min_age_years"`
	LookbackDays  int      `json:"lookback_days"`
	WindowLen     int      `json:"window_len"`
	Constituents  int      `json:"constituents"`
	WithMetadata  int      `json:"with_metadata"`
	PassedFilters int      `json:"passed_filters"`
	WithHistory   int      `json:"with_history"`
	Screened      int      `json:"screened"`
}

// Report is the serializable outcome of a screening run.
type Report struct {
	Metadata ReportMetadata `json:"metadata"`
	Results  []ResultRecord `json:"results"`
	Warnings []string       `json:"warnings,omitempty"`
}

func NewReport(out *models.ScreeningOutput) Report {
	results := make([]ResultRecord, 0, len(out.Results))
	for i, r := range out.Results {
		results = append(results, ResultRecord{
			Rank:         i + 1,
			Ticker:       r.Ticker,
			CompanyName:  r.CompanyName,
			Country:      r.Country,
			Index:        r.Index,
			FoundingYear: r.FoundingYear,
			AgeYears:     r.AgeYears,
			WorstWindow: WindowRecord{
				ReturnPct:  round2(r.Worst.ReturnPct),
				StartDate:  r.Worst.StartDate.Format("2006-01-02"),
				EndDate:    r.Worst.EndDate.Format("2006-01-02"),
				StartPrice: round2(r.Worst.StartPrice),
				EndPrice:   round2(r.Worst.EndPrice),
			},
		})
	}
	return Report{
		Metadata: ReportMetadata{
			RunID:         out.RunID,
			ScreeningDate: out.Date.Format("2006-01-02"),
			Indices:       out.Filters.Indices,
			Countries:     out.Filters.Countries,
			MinAgeYears:   out.Filters.MinAgeYears,
			LookbackDays:  out.Filters.LookbackDays,
			WindowLen:     out.Filters.WindowLen,
			Constituents:  out.Universe.Constituents,
			WithMetadata:  out.Universe.WithMetadata,
			PassedFilters: out.Universe.PassedFilters,
			WithHistory:   out.Universe.WithHistory,
			Screened:      out.Universe.Screened,
		},
		Results:  results,
		Warnings: out.Warnings,
	}
}

// Save writes the report as indented JSON.
func (r Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// PrintTable writes the top of the ranking in console form. A limit of 0
// prints everything.
func PrintTable(w io.Writer, out *models.ScreeningOutput, limit int) {
	line := strings.Repeat("=", 78)
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "SCREENING %s  (worst %d-step window over %d days, min age %d)\n",
		out.Date.Format("2006-01-02"), out.Filters.WindowLen, out.Filters.LookbackDays, out.Filters.MinAgeYears)
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "%d constituents, %d with metadata, %d passed filters, %d screened\n\n",
		out.Universe.Constituents, out.Universe.WithMetadata, out.Universe.PassedFilters, out.Universe.Screened)

	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No candidates screened.")
		return
	}

	fmt.Fprintf(w, "%-5s %-10s %-30s %5s  %s\n", "RANK", "TICKER", "COMPANY", "AGE", "WORST WINDOW")
	rows := out.Results
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for i, r := range rows {
		name := r.CompanyName
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		fmt.Fprintf(w, "%-5d %-10s %-30s %5d  %+.2f%% (%s to %s)\n",
			i+1, r.Ticker, name, r.AgeYears, r.Worst.ReturnPct,
			r.Worst.StartDate.Format("2006-01-02"), r.Worst.EndDate.Format("2006-01-02"))
	}
	if limit > 0 && len(out.Results) > limit {
		fmt.Fprintf(w, "... and %d more\n", len(out.Results)-limit)
	}
}
