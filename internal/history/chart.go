package history

import "github.com/MarcoPoloResearchLab/healthlog/backend/internal/records"

// SymptomSeries is the severity line of a chart.
type SymptomSeries struct {
	Kind       Kind  `json:"kind"`
	Severities []int `json:"severities"`
}

// MedicationSeries is one forward-filled dosage line and its rescaled form.
type MedicationSeries struct {
	Kind      Kind    `json:"kind"`
	Dosages   []int   `json:"dosages"`
	MaxDosage int     `json:"max_dosage"`
	Scaled    []Point `json:"scaled"`
}

// Row is the per-date tuple handed to point-series charting.
type Row struct {
	Date     string  `json:"date"`
	Severity int     `json:"severity"`
	Scaled   []Point `json:"scaled"`
}

// Chart aligns a symptom and its medications on a shared timeline.
type Chart struct {
	Name        string             `json:"name"`
	Title       string             `json:"title"`
	Dates       []string           `json:"dates"`
	Symptom     SymptomSeries      `json:"symptom"`
	Medications []MedicationSeries `json:"medications"`
	Rows        []Row              `json:"rows"`
}

// Build reconciles the snapshot for one chart definition. It only reads the snapshot.
func Build(snapshot Snapshot, definition ChartDefinition) Chart {
	symptoms := FilterSymptoms(snapshot.Symptoms, definition.Symptom)

	medicationsByKind := make([][]records.Medication, len(definition.Medications))
	relevantMedications := make([]records.Medication, 0)
	for index, kind := range definition.Medications {
		medicationsByKind[index] = FilterMedications(snapshot.Medications, kind)
		relevantMedications = append(relevantMedications, medicationsByKind[index]...)
	}

	dates := Timeline(symptoms, relevantMedications)
	chart := Chart{
		Name:  definition.Name,
		Title: definition.Title,
		Dates: dates,
		Symptom: SymptomSeries{
			Kind:       definition.Symptom,
			Severities: SeverityValues(dates, symptoms),
		},
		Medications: make([]MedicationSeries, 0, len(definition.Medications)),
	}

	for index, kind := range definition.Medications {
		dosages := DosageValues(dates, medicationsByKind[index])
		maxDosage := MaxDosage(medicationsByKind[index])
		chart.Medications = append(chart.Medications, MedicationSeries{
			Kind:      kind,
			Dosages:   dosages,
			MaxDosage: maxDosage,
			Scaled:    Rescale(dosages, maxDosage),
		})
	}

	chart.Rows = make([]Row, 0, len(dates))
	for dateIndex, date := range dates {
		scaled := make([]Point, 0, len(chart.Medications))
		for _, series := range chart.Medications {
			scaled = append(scaled, series.Scaled[dateIndex])
		}
		chart.Rows = append(chart.Rows, Row{
			Date:     date,
			Severity: chart.Symptom.Severities[dateIndex],
			Scaled:   scaled,
		})
	}
	return chart
}

// BuildAll reconciles every chart of the catalog.
func BuildAll(snapshot Snapshot, catalog Catalog) []Chart {
	definitions := catalog.Charts()
	charts := make([]Chart, 0, len(definitions))
	for _, definition := range definitions {
		charts = append(charts, Build(snapshot, definition))
	}
	return charts
}
