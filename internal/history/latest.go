package history

import (
	"sort"

	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/records"
)

// Dated is implemented by records that carry a calendar day and a creation stamp.
type Dated interface {
	RecordDate() string
	RecordCreatedAt() string
}

// Latest keeps the most recent record per key. Records are ranked by date, then createdAt,
// both descending; the result is in that order with one entry per distinct key. The input
// slice is not modified.
func Latest[T Dated](items []T, key func(T) string) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return newerThan(sorted[i], sorted[j])
	})

	seen := make(map[string]struct{}, len(sorted))
	latest := make([]T, 0, len(sorted))
	for _, item := range sorted {
		itemKey := key(item)
		if _, ok := seen[itemKey]; ok {
			continue
		}
		seen[itemKey] = struct{}{}
		latest = append(latest, item)
	}
	return latest
}

// LatestSymptoms keeps the newest symptom per name.
func LatestSymptoms(symptoms []records.Symptom) []records.Symptom {
	return Latest(symptoms, func(symptom records.Symptom) string { return symptom.Name })
}

// LatestMedications keeps the newest medication per name.
func LatestMedications(medications []records.Medication) []records.Medication {
	return Latest(medications, func(medication records.Medication) string { return medication.Name })
}

// LatestNotes keeps the newest note per title.
func LatestNotes(notes []records.Note) []records.Note {
	return Latest(notes, func(note records.Note) string { return note.Title })
}

func newerThan(a, b Dated) bool {
	if a.RecordDate() != b.RecordDate() {
		return a.RecordDate() > b.RecordDate()
	}
	return a.RecordCreatedAt() > b.RecordCreatedAt()
}
