package cli

import (
	"strconv"

	"autosearch/internal/domain"
)

var countries = []string{
	"Argentina", "Armenia", "Australia", "Austria", "Belgium", "Bolivia",
	"Brazil", "Bulgaria", "Canada", "Chile", "China", "Colombia", "Croatia",
	"Cuba", "Cyprus", "Czechia", "Denmark", "Ecuador", "Egypt", "Estonia",
	"Finland", "France", "Germany", "Ghana", "Greece", "Hungary", "Iceland",
	"India", "Indonesia", "Ireland", "Israel", "Italy", "Japan", "Kenya",
	"Latvia", "Lithuania", "Luxembourg", "Malaysia", "Malta", "Mexico",
	"Morocco", "Netherlands", "New Zealand", "Nigeria", "Norway", "Peru",
	"Poland", "Portugal", "Romania", "Senegal", "Slovakia", "Slovenia",
	"South Africa", "South Korea", "Spain", "Sweden", "Switzerland",
	"Thailand", "Tunisia", "Turkey", "Ukraine", "United Kingdom",
	"United States", "Uruguay", "Vietnam",
}

// sampleSuggestions is the dataset used when no source is configured
func sampleSuggestions() []domain.Suggestion {
	items := make([]domain.Suggestion, len(countries))
	for i, name := range countries {
		items[i] = domain.Suggestion{ID: strconv.Itoa(i + 1), Text: name}
	}
	return items
}
