package history

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/records"
)

const severityAxisMax = 10.0

// Point is one value on the shared 0-10 axis. Invalid points carry no data and are skipped
// when drawing; they encode as JSON null.
type Point struct {
	Value float64
	Valid bool
}

// MarshalJSON encodes invalid points as null.
func (p Point) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// String renders the point for tables; invalid points render as "-".
func (p Point) String() string {
	if !p.Valid {
		return "-"
	}
	return strconv.FormatFloat(p.Value, 'f', -1, 64)
}

// FilterSymptoms returns the symptoms belonging to kind, preserving input order.
func FilterSymptoms(symptoms []records.Symptom, kind Kind) []records.Symptom {
	filtered := make([]records.Symptom, 0)
	for _, symptom := range symptoms {
		if kind.Matches(symptom.Name) {
			filtered = append(filtered, symptom)
		}
	}
	return filtered
}

// FilterMedications returns the medications belonging to kind, preserving input order.
func FilterMedications(medications []records.Medication, kind Kind) []records.Medication {
	filtered := make([]records.Medication, 0)
	for _, medication := range medications {
		if kind.Matches(medication.Name) {
			filtered = append(filtered, medication)
		}
	}
	return filtered
}

// Timeline returns every distinct date of the given records in ascending order. Dates are
// zero-padded YYYY-MM-DD so string order is calendar order.
func Timeline(symptoms []records.Symptom, medications []records.Medication) []string {
	seen := make(map[string]struct{}, len(symptoms)+len(medications))
	dates := make([]string, 0, len(symptoms)+len(medications))
	add := func(date string) {
		if _, ok := seen[date]; ok {
			return
		}
		seen[date] = struct{}{}
		dates = append(dates, date)
	}
	for _, symptom := range symptoms {
		add(symptom.Date)
	}
	for _, medication := range medications {
		add(medication.Date)
	}
	sort.Strings(dates)
	return dates
}

// SeverityValues looks up the severity logged on each date, 0 where nothing was logged.
// Symptoms are never carried forward. When a day holds several records the newest wins.
func SeverityValues(dates []string, symptoms []records.Symptom) []int {
	byDate := make(map[string]records.Symptom, len(symptoms))
	for _, symptom := range symptoms {
		current, ok := byDate[symptom.Date]
		if !ok || symptom.CreatedAt > current.CreatedAt {
			byDate[symptom.Date] = symptom
		}
	}

	values := make([]int, len(dates))
	for index, date := range dates {
		if symptom, ok := byDate[date]; ok {
			values[index] = symptom.Severity
		}
	}
	return values
}

// DosageValues forward-fills parsed dosages: the value on a date is the dosage of the latest
// record dated on or before it, or 0 before the first record.
func DosageValues(dates []string, medications []records.Medication) []int {
	ordered := make([]records.Medication, len(medications))
	copy(ordered, medications)
	sort.SliceStable(ordered, func(i, j int) bool {
		return newerThan(ordered[j], ordered[i])
	})

	values := make([]int, len(dates))
	for index, date := range dates {
		after := sort.Search(len(ordered), func(position int) bool {
			return ordered[position].Date > date
		})
		if after == 0 {
			continue
		}
		values[index] = ParseDosage(ordered[after-1].Dosage)
	}
	return values
}

// MaxDosage returns the largest parsed dosage, or 0 when there is none.
func MaxDosage(medications []records.Medication) int {
	maxDosage := 0
	for _, medication := range medications {
		if dosage := ParseDosage(medication.Dosage); dosage > maxDosage {
			maxDosage = dosage
		}
	}
	return maxDosage
}

// Rescale maps dosages onto the severity axis as dosage/maxDosage*10. A non-positive
// maxDosage yields only invalid points.
func Rescale(dosages []int, maxDosage int) []Point {
	points := make([]Point, len(dosages))
	if maxDosage <= 0 {
		return points
	}
	for index, dosage := range dosages {
		points[index] = Point{
			Value: float64(dosage) / float64(maxDosage) * severityAxisMax,
			Valid: true,
		}
	}
	return points
}
