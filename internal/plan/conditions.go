package plan

import "github.com/biotrack/biotrack-cli/internal/model"

// conditionRule ties a detectable condition to the canonical metrics and
// statuses that trigger it.
type conditionRule struct {
	condition string
	metricIDs []string
	onLow     bool
	onHigh    bool
}

// conditionRules is evaluated in order; output order follows the first
// triggering result per condition.
var conditionRules = []conditionRule{
	{condition: "diabetes_risk", metricIDs: []string{"glucose", "hba1c"}, onHigh: true},
	{condition: "high_cholesterol", metricIDs: []string{"total-cholesterol", "ldl"}, onHigh: true},
	{condition: "anemia_risk", metricIDs: []string{"iron", "ferritin", "hemoglobin"}, onLow: true},
	{condition: "vitamin_d_deficiency", metricIDs: []string{"vitamin-d"}, onLow: true},
	{condition: "high_uric_acid", metricIDs: []string{"uric-acid"}, onHigh: true},
	{condition: "kidney_concern", metricIDs: []string{"creatinine"}, onHigh: true},
	{condition: "liver_concern", metricIDs: []string{"alt", "ast"}, onHigh: true},
	{condition: "thyroid_issue", metricIDs: []string{"tsh"}, onLow: true, onHigh: true},
	{condition: "b12_deficiency", metricIDs: []string{"vitamin-b12"}, onLow: true},
	{condition: "high_triglycerides", metricIDs: []string{"triglycerides"}, onHigh: true},
}

// DetectConditions scans lab results for patterns worth calling out in the
// plan prompt. Each condition appears at most once, in the order results
// trigger it. Rows without a value never trigger.
func DetectConditions(results []model.TestResult) []string {
	var conditions []string
	seen := make(map[string]struct{})

	for _, r := range results {
		if r.Value == nil {
			continue
		}
		for _, rule := range conditionRules {
			if _, done := seen[rule.condition]; done {
				continue
			}
			if !rule.matches(r) {
				continue
			}
			seen[rule.condition] = struct{}{}
			conditions = append(conditions, rule.condition)
		}
	}
	return conditions
}

func (c conditionRule) matches(r model.TestResult) bool {
	switch r.Status {
	case model.StatusLow:
		if !c.onLow {
			return false
		}
	case model.StatusHigh:
		if !c.onHigh {
			return false
		}
	default:
		return false
	}
	for _, id := range c.metricIDs {
		if r.MetricID == id {
			return true
		}
	}
	return false
}
