package model

import "time"

// TestResult is a persisted lab result. Rows are append-only: a new reading
// for the same metric creates a new row, preserving history.
type TestResult struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	MetricID  string       `json:"metric_id"`
	Value     *float64     `json:"value"`
	Status    MetricStatus `json:"status"`
	TestDate  time.Time    `json:"test_date"`
	CreatedAt time.Time    `json:"created_at"`
}

// TrendChange is the bounded classification of the change between two
// chronological results for one metric.
type TrendChange string

const (
	ChangeImproved TrendChange = "improved"
	ChangeWorsened TrendChange = "worsened"
	ChangeSame     TrendChange = "same"
	ChangeUnknown  TrendChange = "unknown"
)

// ComparisonResult is derived on read from the two latest results sharing a
// metric id. It is never persisted; history changes simply produce a fresh
// comparison.
type ComparisonResult struct {
	MetricID      string      `json:"metric_id"`
	Older         TestResult  `json:"older"`
	Newer         TestResult  `json:"newer"`
	Change        TrendChange `json:"change"`
	ChangePercent *float64    `json:"change_percent"`
}
