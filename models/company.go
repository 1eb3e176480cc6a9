package models

import "fmt"

const (
	IndexSP500   = "SP500"
	IndexDAX     = "DAX"
	IndexFTSE100 = "FTSE100"
)

// ValidIndices is the set of index names accepted in company metadata.
var ValidIndices = map[string]bool{
	IndexSP500:   true,
	IndexDAX:     true,
	IndexFTSE100: true,
}

// Company is one row of the company metadata file.
type Company struct {
	Ticker       string `json:"ticker"`
	CompanyName  string `json:"company_name"`
	FoundingYear int    `json:"founding_year"`
	Country      string `json:"country"`
	Index        string `json:"index"`
	Notes        string `json:"notes,omitempty"`
}

// Age returns the company age in the given calendar year.
func (c Company) Age(year int) int {
	return year - c.FoundingYear
}

// Validate checks a metadata row. Rows that fail are skipped with a warning,
// they never abort a run.
func (c Company) Validate(currentYear int) error {
	if c.Ticker == "" {
		return fmt.Errorf("empty ticker")
	}
	if c.CompanyName == "" {
		return fmt.Errorf("%s: empty company name", c.Ticker)
	}
	if c.FoundingYear < 1600 || c.FoundingYear > currentYear {
		return fmt.Errorf("%s: founding year %d out of range", c.Ticker, c.FoundingYear)
	}
	if !ValidIndices[c.Index] {
		return fmt.Errorf("%s: unknown index %q", c.Ticker, c.Index)
	}
	return nil
}
