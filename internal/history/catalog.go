package history

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind selects a family of records by case-insensitive substring match on the record name.
type Kind struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Match string `json:"match"`
}

// Matches reports whether a record name belongs to the kind.
func (k Kind) Matches(name string) bool {
	match := strings.ToLower(strings.TrimSpace(k.Match))
	if match == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), match)
}

// ChartDefinition pairs one symptom kind with the medications charted against it.
type ChartDefinition struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Symptom     Kind   `json:"symptom"`
	Medications []Kind `json:"medications"`
}

// Catalog is the ordered set of history charts.
type Catalog struct {
	charts []ChartDefinition
}

var (
	defaultSymptomKinds = []Kind{
		{Key: "sleep", Label: "Sleep", Match: "sleep"},
		{Key: "fatigue", Label: "Fatigue", Match: "fatigue"},
		{Key: "executive", Label: "Executive function", Match: "executive"},
		{Key: "depression", Label: "Depression", Match: "depression"},
	}
	defaultMedicationKinds = []Kind{
		{Key: "seroquel", Label: "Seroquel", Match: "seroquel"},
		{Key: "lyrica", Label: "Lyrica", Match: "lyrica"},
	}
)

// DefaultCatalog charts every default symptom kind against every default medication kind.
func DefaultCatalog() Catalog {
	return newCatalog(defaultSymptomKinds, defaultMedicationKinds)
}

// NewCatalog builds a catalog from key to match-substring maps. An empty map falls back to
// the default kinds for that side.
func NewCatalog(symptomMatches, medicationMatches map[string]string) Catalog {
	symptomKinds := kindsFromMatches(symptomMatches)
	if len(symptomKinds) == 0 {
		symptomKinds = defaultSymptomKinds
	}
	medicationKinds := kindsFromMatches(medicationMatches)
	if len(medicationKinds) == 0 {
		medicationKinds = defaultMedicationKinds
	}
	return newCatalog(symptomKinds, medicationKinds)
}

func newCatalog(symptomKinds, medicationKinds []Kind) Catalog {
	charts := make([]ChartDefinition, 0, len(symptomKinds))
	for _, symptomKind := range symptomKinds {
		medications := make([]Kind, len(medicationKinds))
		copy(medications, medicationKinds)
		charts = append(charts, ChartDefinition{
			Name:        symptomKind.Key,
			Title:       symptomKind.Label + " severity vs. medication",
			Symptom:     symptomKind,
			Medications: medications,
		})
	}
	return Catalog{charts: charts}
}

// Charts returns the chart definitions in display order.
func (c Catalog) Charts() []ChartDefinition {
	charts := make([]ChartDefinition, len(c.charts))
	copy(charts, c.charts)
	return charts
}

// Chart looks a definition up by name.
func (c Catalog) Chart(name string) (ChartDefinition, bool) {
	wanted := strings.ToLower(strings.TrimSpace(name))
	for _, chart := range c.charts {
		if chart.Name == wanted {
			return chart, true
		}
	}
	return ChartDefinition{}, false
}

func kindsFromMatches(matches map[string]string) []Kind {
	keys := make([]string, 0, len(matches))
	for key := range matches {
		if strings.TrimSpace(key) == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	kinds := make([]Kind, 0, len(keys))
	for _, key := range keys {
		normalizedKey := strings.ToLower(strings.TrimSpace(key))
		match := strings.TrimSpace(matches[key])
		if match == "" {
			match = normalizedKey
		}
		kinds = append(kinds, Kind{Key: normalizedKey, Label: titleCase(normalizedKey), Match: match})
	}
	return kinds
}

func titleCase(value string) string {
	first, size := utf8.DecodeRuneInString(value)
	if first == utf8.RuneError {
		return value
	}
	return string(unicode.ToUpper(first)) + value[size:]
}
