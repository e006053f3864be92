package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biotrack/biotrack-cli/internal/model"
)

func TestNormalize_ResolvesCanonicalIDs(t *testing.T) {
	readings := []model.ExtractedReading{
		{MetricName: "Vitamin D", Value: 45.2, TestDate: "2024-01-10"},
		{MetricName: "HbA1c", Value: 5.7},
		{MetricName: "Serum Iron", Value: 80},
	}

	out := Normalize(readings)
	require.Len(t, out, 3)
	assert.Equal(t, "vitamin-d", out[0].MetricID)
	assert.Equal(t, "hba1c", out[1].MetricID)
	assert.Equal(t, "iron", out[2].MetricID)
	require.NotNil(t, out[0].Value)
	assert.Equal(t, 45.2, *out[0].Value)
	assert.Equal(t, "2024-01-10", out[0].TestDate)
}

func TestNormalize_DedupFirstWins(t *testing.T) {
	readings := []model.ExtractedReading{
		{MetricName: "Vitamin D", Value: "45.2", TestDate: "2024-01-10"},
		{MetricName: "vitamin d", Value: 60, TestDate: "2024-06-01"},
		{MetricName: "25-OH Vitamin D", Value: 70},
	}

	out := Normalize(readings)
	require.Len(t, out, 1)
	assert.Equal(t, "vitamin-d", out[0].MetricID)
	require.NotNil(t, out[0].Value)
	assert.Equal(t, 45.2, *out[0].Value)
	assert.Equal(t, "2024-01-10", out[0].TestDate)
}

func TestNormalize_DropsUnresolvedNames(t *testing.T) {
	readings := []model.ExtractedReading{
		{MetricName: "Blood Type", Value: nil},
		{MetricName: "Glucose", Value: 92},
		{MetricName: "Astral Projection Index", Value: 7},
	}

	out := Normalize(readings)
	require.Len(t, out, 1)
	assert.Equal(t, "glucose", out[0].MetricID)
}

func TestNormalize_StringValuesParsed(t *testing.T) {
	readings := []model.ExtractedReading{
		{MetricName: "glucose", Value: "92.5"},
		{MetricName: "hemoglobin", Value: "  13.1 "},
	}

	out := Normalize(readings)
	require.Len(t, out, 2)
	require.NotNil(t, out[0].Value)
	assert.Equal(t, 92.5, *out[0].Value)
	require.NotNil(t, out[1].Value)
	assert.Equal(t, 13.1, *out[1].Value)
}

func TestNormalize_UnparseableValueKeptAsNil(t *testing.T) {
	readings := []model.ExtractedReading{
		{MetricName: "glucose", Value: "positive"},
		{MetricName: "hemoglobin", Value: map[string]any{"oops": true}},
		{MetricName: "ferritin", Value: math.NaN()},
		{MetricName: "calcium", Value: math.Inf(1)},
	}

	out := Normalize(readings)
	require.Len(t, out, 4)
	for _, r := range out {
		assert.Nil(t, r.Value, "metric %s", r.MetricID)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	readings := []model.ExtractedReading{
		{MetricName: "Vitamin D", Value: 45.2, TestDate: "2024-01-10"},
		{MetricName: "TSH", Value: "2.1"},
		{MetricName: "Unknown Thing", Value: 1},
	}

	first := Normalize(readings)
	second := Normalize(readings)
	assert.Equal(t, first, second)
}

func TestNormalize_EmptyBatch(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]model.ExtractedReading{}))
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected *float64
	}{
		{"float64", 42.5, ptr(42.5)},
		{"int", 42, ptr(42.0)},
		{"numeric string", "42.5", ptr(42.5)},
		{"integer string", "60", ptr(60.0)},
		{"garbage string", "Positive", nil},
		{"nil", nil, nil},
		{"bool", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := coerceValue(tt.input)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func ptr(f float64) *float64 { return &f }
