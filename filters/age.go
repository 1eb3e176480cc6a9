package filters

import "github.com/meanrev/screener/models"

// ByAge keeps companies that are at least minAge years old in the given
// calendar year. Age counts whole calendar years since founding.
func ByAge(companies []models.Company, minAge, year int) []models.Company {
	kept := make([]models.Company, 0, len(companies))
	for _, c := range companies {
		if c.Age(year) >= minAge {
			kept = append(kept, c)
		}
	}
	return kept
}
