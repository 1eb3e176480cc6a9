package filters

import (
	"strings"

	"github.com/meanrev/screener/models"
)

// ByCountry keeps companies whose country matches any entry in countries,
// case-insensitively. An empty filter keeps everything.
func ByCountry(companies []models.Company, countries []string) []models.Company {
	if len(countries) == 0 {
		return companies
	}
	kept := make([]models.Company, 0, len(companies))
	for _, c := range companies {
		for _, want := range countries {
			if strings.EqualFold(c.Country, want) {
				kept = append(kept, c)
				break
			}
		}
	}
	return kept
}
