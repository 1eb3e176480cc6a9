package filters

import (
	"testing"

	"github.com/meanrev/screener/models"
)

func TestByAge(t *testing.T) {
	companies := []models.Company{
		{Ticker: "OLD", FoundingYear: 1900},
		{Ticker: "EXACT", FoundingYear: 1975},
		{Ticker: "YOUNG", FoundingYear: 2010},
	}

	got := ByAge(companies, 50, 2025)
	if len(got) != 2 {
		t.Fatalf("kept %d companies, want 2", len(got))
	}
	if got[0].Ticker != "OLD" || got[1].Ticker != "EXACT" {
		t.Errorf("kept %v, want OLD then EXACT (age >= 50 is inclusive)", got)
	}
}

func TestByCountry(t *testing.T) {
	companies := []models.Company{
		{Ticker: "US1", Country: "USA"},
		{Ticker: "DE1", Country: "Germany"},
		{Ticker: "UK1", Country: "United Kingdom"},
	}

	tests := []struct {
		name      string
		countries []string
		want      []string
	}{
		{"empty filter keeps all", nil, []string{"US1", "DE1", "UK1"}},
		{"single match", []string{"Germany"}, []string{"DE1"}},
		{"case insensitive", []string{"usa", "germany"}, []string{"US1", "DE1"}},
		{"no match", []string{"France"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ByCountry(companies, tt.countries)
			if len(got) != len(tt.want) {
				t.Fatalf("kept %d companies, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				if got[i].Ticker != w {
					t.Errorf("kept[%d] = %s, want %s", i, got[i].Ticker, w)
				}
			}
		})
	}
}
