package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/history"
	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderChartsPrintsRowsAndEmptySeries(t *testing.T) {
	snapshot := history.Snapshot{
		Symptoms: []records.Symptom{
			{ID: "s1", Name: "Sleep", Severity: 7, Date: "2024-01-01", CreatedAt: "2024-01-01T08:00:00.000Z"},
			{ID: "s2", Name: "Sleep", Severity: 4, Date: "2024-01-03", CreatedAt: "2024-01-03T08:00:00.000Z"},
		},
		Medications: []records.Medication{
			{ID: "m1", Name: "Seroquel", Dosage: "50mg", Date: "2024-01-02", CreatedAt: "2024-01-02T08:00:00.000Z"},
			{ID: "m2", Name: "Seroquel", Dosage: "100mg", Date: "2024-01-03", CreatedAt: "2024-01-03T08:00:00.000Z"},
		},
	}
	catalog := history.DefaultCatalog()
	definition, ok := catalog.Chart("sleep")
	require.True(t, ok)

	var output bytes.Buffer
	require.NoError(t, renderCharts(&output, []history.Chart{history.Build(snapshot, definition)}))

	rendered := output.String()
	assert.Contains(t, rendered, definition.Title)
	assert.Contains(t, rendered, "Seroquel dose")
	assert.Contains(t, rendered, "2024-01-02")
	assert.Contains(t, rendered, "10")

	var lyricaCells int
	for _, line := range strings.Split(rendered, "\n") {
		if strings.Contains(line, "2024-01-0") {
			lyricaCells += strings.Count(line, " - ")
		}
	}
	assert.Equal(t, 3, lyricaCells)
}

func TestRenderChartsReportsEmptyCharts(t *testing.T) {
	definition, ok := history.DefaultCatalog().Chart("fatigue")
	require.True(t, ok)

	var output bytes.Buffer
	require.NoError(t, renderCharts(&output, []history.Chart{history.Build(history.Snapshot{}, definition)}))
	assert.Contains(t, output.String(), "no records")
}

func TestChartNamesListsDefaultCatalog(t *testing.T) {
	assert.Equal(t, "sleep, fatigue, executive, depression", chartNames(history.DefaultCatalog()))
}
