package model

// MetricStatus classifies a result value against its metric's normal range.
type MetricStatus string

const (
	StatusNormal MetricStatus = "normal"
	StatusLow    MetricStatus = "low"
	StatusHigh   MetricStatus = "high"
)

// Abnormal reports whether the status is outside the normal range on
// either side.
func (s MetricStatus) Abnormal() bool {
	return s == StatusLow || s == StatusHigh
}

// Range is a metric's normal reference range.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Midpoint returns the center of the range.
func (r Range) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

// ExtractedReading is one raw row from the extraction collaborator. The
// metric name is free text and the value may arrive as a number, a numeric
// string, or garbage; the Normalizer sorts that out.
type ExtractedReading struct {
	MetricName string `json:"metricName"`
	Value      any    `json:"value"`
	Unit       string `json:"unit,omitempty"`
	TestDate   string `json:"testDate,omitempty"`
}

// NormalizedReading is an ExtractedReading resolved against the canonical
// catalog. Value is nil when the raw value could not be parsed as a finite
// number; the row is kept for audit visibility and the caller decides
// whether to persist it.
type NormalizedReading struct {
	MetricID string   `json:"metric_id"`
	Value    *float64 `json:"value"`
	TestDate string   `json:"test_date,omitempty"`
}
