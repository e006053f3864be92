// Package trend classifies a patient's trajectory between chronological
// results for one canonical metric.
package trend

import (
	"math"
	"sort"

	"github.com/biotrack/biotrack-cli/internal/model"
)

// noiseThresholdPercent is the absolute percent change below which a move
// is treated as noise rather than a trend. The comparison is strict: a
// change of exactly 1% counts as a real move.
const noiseThresholdPercent = 1.0

// Status classifies a value against the metric's normal range. Values with
// no range, or rows with no value, are reported normal rather than flagged.
func Status(value *float64, rng *model.Range) model.MetricStatus {
	if value == nil || rng == nil {
		return model.StatusNormal
	}
	switch {
	case *value < rng.Min:
		return model.StatusLow
	case *value > rng.Max:
		return model.StatusHigh
	default:
		return model.StatusNormal
	}
}

// Classify compares the two chronologically adjacent results for one metric
// and emits a bounded trend decision. It is a pure function of its inputs
// and is recomputed on every read; nothing caches its output.
//
// The tie-break order is load-bearing:
//  1. missing values or a zero older value degrade to unknown
//  2. sub-1% moves are noise and classify as same
//  3. abnormal→normal is improved, normal→abnormal is worsened
//  4. abnormal→abnormal on the same side is decided by distance to the
//     range midpoint (closer is improved); with no range, or at exactly
//     equal distance, the call is same
//  5. a side flip (low→high or high→low) is always worsened, regardless of
//     midpoint distance
//  6. normal→normal is same
func Classify(older, newer model.TestResult, rng *model.Range) model.ComparisonResult {
	result := model.ComparisonResult{
		MetricID: newer.MetricID,
		Older:    older,
		Newer:    newer,
		Change:   model.ChangeUnknown,
	}

	if older.Value == nil || newer.Value == nil || *older.Value == 0 {
		return result
	}

	pct := (*newer.Value - *older.Value) / *older.Value * 100
	result.ChangePercent = &pct

	if math.Abs(pct) < noiseThresholdPercent {
		result.Change = model.ChangeSame
		return result
	}

	oldAbnormal := older.Status.Abnormal()
	newAbnormal := newer.Status.Abnormal()

	switch {
	case oldAbnormal && !newAbnormal:
		result.Change = model.ChangeImproved
	case !oldAbnormal && newAbnormal:
		result.Change = model.ChangeWorsened
	case oldAbnormal && newAbnormal:
		if older.Status != newer.Status {
			// A directional flip is never an improvement.
			result.Change = model.ChangeWorsened
			break
		}
		// Same side of the range: whichever value sits closer to the
		// midpoint is better. With no range the midpoint is undefined and
		// the call falls back to same (matching the shipped behavior;
		// arguably unknown would be more honest).
		if rng == nil {
			result.Change = model.ChangeSame
			break
		}
		oldDist := math.Abs(*older.Value - rng.Midpoint())
		newDist := math.Abs(*newer.Value - rng.Midpoint())
		switch {
		case newDist < oldDist:
			result.Change = model.ChangeImproved
		case newDist > oldDist:
			result.Change = model.ChangeWorsened
		default:
			result.Change = model.ChangeSame
		}
	default:
		result.Change = model.ChangeSame
	}
	return result
}

// Compare derives the comparison for one metric's full history: the two
// most recent results by test date are classified against each other.
// Returns nil when fewer than two results exist. The input slice is not
// modified.
func Compare(history []model.TestResult, rng *model.Range) *model.ComparisonResult {
	if len(history) < 2 {
		return nil
	}

	sorted := make([]model.TestResult, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TestDate.Before(sorted[j].TestDate)
	})

	result := Classify(sorted[len(sorted)-2], sorted[len(sorted)-1], rng)
	return &result
}
