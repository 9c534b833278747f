package history

import (
	"encoding/json"
	"testing"

	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleSnapshot() Snapshot {
	return Snapshot{
		Symptoms: []records.Symptom{
			{ID: "s1", Name: "Sleep issues", Severity: 7, Date: "2024-01-01", CreatedAt: "2024-01-01T08:00:00.000Z"},
			{ID: "s2", Name: "Sleep issues", Severity: 4, Date: "2024-01-05", CreatedAt: "2024-01-05T08:00:00.000Z"},
		},
		Medications: []records.Medication{
			{ID: "m1", Name: "Lyrica", Dosage: "50mg", Date: "2024-01-01", CreatedAt: "2024-01-01T08:00:00.000Z"},
			{ID: "m2", Name: "Lyrica", Dosage: "100mg", Date: "2024-01-03", CreatedAt: "2024-01-03T08:00:00.000Z"},
		},
	}
}

func TestBuildReconcilesSleepChart(t *testing.T) {
	definition, ok := DefaultCatalog().Chart("sleep")
	require.True(t, ok)

	chart := Build(exampleSnapshot(), definition)

	assert.Equal(t, []string{"2024-01-01", "2024-01-03", "2024-01-05"}, chart.Dates)
	assert.Equal(t, []int{7, 0, 4}, chart.Symptom.Severities)

	require.Len(t, chart.Medications, 2)
	seroquel := chart.Medications[0]
	assert.Equal(t, "seroquel", seroquel.Kind.Key)
	assert.Equal(t, 0, seroquel.MaxDosage)
	for _, point := range seroquel.Scaled {
		assert.False(t, point.Valid, "seroquel has no data and must not plot")
	}

	lyrica := chart.Medications[1]
	assert.Equal(t, []int{50, 100, 100}, lyrica.Dosages)
	assert.Equal(t, 100, lyrica.MaxDosage)
	assert.Equal(t, []Point{{Value: 5, Valid: true}, {Value: 10, Valid: true}, {Value: 10, Valid: true}}, lyrica.Scaled)

	require.Len(t, chart.Rows, 3)
	assert.Equal(t, Row{Date: "2024-01-03", Severity: 0, Scaled: []Point{{}, {Value: 10, Valid: true}}}, chart.Rows[1])
}

func TestBuildDoesNotMutateSnapshot(t *testing.T) {
	snapshot := exampleSnapshot()
	snapshot.Medications[0], snapshot.Medications[1] = snapshot.Medications[1], snapshot.Medications[0]
	before := exampleSnapshot()
	before.Medications[0], before.Medications[1] = before.Medications[1], before.Medications[0]

	definition, _ := DefaultCatalog().Chart("sleep")
	Build(snapshot, definition)

	assert.Equal(t, before, snapshot)
}

func TestTimelineUnionIsSortedAndDistinct(t *testing.T) {
	symptoms := []records.Symptom{{Date: "2024-03-02"}, {Date: "2024-01-10"}, {Date: "2024-03-02"}}
	medications := []records.Medication{{Date: "2024-01-10"}, {Date: "2023-12-31"}}

	assert.Equal(t, []string{"2023-12-31", "2024-01-10", "2024-03-02"}, Timeline(symptoms, medications))
	assert.Empty(t, Timeline(nil, nil))
}

func TestDosageValuesForwardFills(t *testing.T) {
	medications := []records.Medication{
		{Dosage: "300mg", Date: "2024-01-20", CreatedAt: "c"},
		{Dosage: "100mg", Date: "2024-01-01", CreatedAt: "a"},
		{Dosage: "200mg", Date: "2024-01-10", CreatedAt: "b"},
	}
	dates := []string{"2023-12-31", "2024-01-01", "2024-01-09", "2024-01-10", "2024-01-15", "2024-01-19", "2024-01-20", "2024-02-01"}

	assert.Equal(t, []int{0, 100, 100, 200, 200, 200, 300, 300}, DosageValues(dates, medications))
}

func TestDosageValuesPrefersNewestRecordOnSameDay(t *testing.T) {
	medications := []records.Medication{
		{Dosage: "75mg", Date: "2024-01-01", CreatedAt: "2024-01-01T12:00:00.000Z"},
		{Dosage: "25mg", Date: "2024-01-01", CreatedAt: "2024-01-01T08:00:00.000Z"},
	}

	assert.Equal(t, []int{75, 75}, DosageValues([]string{"2024-01-01", "2024-01-02"}, medications))
}

func TestSeverityValuesDoNotCarryForward(t *testing.T) {
	symptoms := []records.Symptom{
		{Severity: 6, Date: "2024-01-02", CreatedAt: "a"},
		{Severity: 9, Date: "2024-01-02", CreatedAt: "b"},
	}

	assert.Equal(t, []int{0, 9, 0}, SeverityValues([]string{"2024-01-01", "2024-01-02", "2024-01-03"}, symptoms))
}

func TestParseDosage(t *testing.T) {
	testCases := map[string]int{
		"500mg":   500,
		" 25 mg":  25,
		"100":     100,
		"abc":     0,
		"":        0,
		"mg 50":   0,
		"-5mg":    -5,
		"+10":     10,
		"1,000mg": 1,
	}
	for input, want := range testCases {
		assert.Equal(t, want, ParseDosage(input), "ParseDosage(%q)", input)
	}
	assert.Equal(t, 0, ParseDosage("99999999999999999999999mg"), "overflowing dosage must parse to 0")
}

func TestUnparseableDosageDoesNotRaiseMax(t *testing.T) {
	medications := []records.Medication{
		{Dosage: "abc", Date: "2024-01-01"},
		{Dosage: "20mg", Date: "2024-01-02"},
	}

	assert.Equal(t, 20, MaxDosage(medications))
	assert.Equal(t, 0, MaxDosage([]records.Medication{{Dosage: "abc"}}))
	assert.Equal(t, 0, MaxDosage(nil))
}

func TestRescaleSignalsNoDataWhenMaxIsZero(t *testing.T) {
	points := Rescale([]int{0, 0, 0}, 0)

	require.Len(t, points, 3)
	for _, point := range points {
		assert.False(t, point.Valid)
	}

	encoded, err := json.Marshal(points)
	require.NoError(t, err)
	assert.JSONEq(t, `[null,null,null]`, string(encoded))
}

func TestRescaleKeepsZeroBeforeFirstDoseAsReading(t *testing.T) {
	points := Rescale([]int{0, 40, 80}, 80)

	assert.Equal(t, []Point{{Value: 0, Valid: true}, {Value: 5, Valid: true}, {Value: 10, Valid: true}}, points)
	assert.Equal(t, "5", points[1].String())
	assert.Equal(t, "-", Point{}.String())
}

func TestKindMatchesCaseInsensitiveSubstring(t *testing.T) {
	kind := Kind{Key: "sleep", Match: "sleep"}

	assert.True(t, kind.Matches("Poor SLEEP quality"))
	assert.False(t, kind.Matches("Fatigue"))
	assert.False(t, Kind{Key: "empty"}.Matches("anything"))
}

func TestNewCatalogFromConfiguredKinds(t *testing.T) {
	catalog := NewCatalog(map[string]string{"pain": "", "anxiety": "anxious"}, nil)

	charts := catalog.Charts()
	require.Len(t, charts, 2)
	assert.Equal(t, "anxiety", charts[0].Name)
	assert.Equal(t, "anxious", charts[0].Symptom.Match)
	assert.Equal(t, "Pain", charts[1].Symptom.Label)
	assert.Equal(t, "pain", charts[1].Symptom.Match)
	require.Len(t, charts[1].Medications, 2)
	assert.Equal(t, "lyrica", charts[1].Medications[1].Key)

	_, ok := catalog.Chart("sleep")
	assert.False(t, ok)
}
