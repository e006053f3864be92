// Package normalize turns raw extraction rows into canonical, deduplicated
// metric readings.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/biotrack/biotrack-cli/internal/catalog"
	"github.com/biotrack/biotrack-cli/internal/model"
)

// Normalize resolves each reading's free-text name against the canonical
// catalog and coerces its value to a finite float. Rows whose name resolves
// to no catalog entry are dropped silently. Within one batch, the first row
// to resolve to a metric id wins; later rows for the same id are discarded.
// Pure function of the catalog and its input; safe to call repeatedly.
func Normalize(readings []model.ExtractedReading) []model.NormalizedReading {
	out := make([]model.NormalizedReading, 0, len(readings))
	seen := make(map[string]struct{}, len(readings))

	for _, r := range readings {
		metric, ok := catalog.Lookup(r.MetricName)
		if !ok {
			zap.L().Debug("normalize: unresolved metric name dropped",
				zap.String("name", r.MetricName))
			continue
		}
		if _, dup := seen[metric.ID]; dup {
			continue
		}
		seen[metric.ID] = struct{}{}

		out = append(out, model.NormalizedReading{
			MetricID: metric.ID,
			Value:    coerceValue(r.Value),
			TestDate: strings.TrimSpace(r.TestDate),
		})
	}
	return out
}

// coerceValue converts the extraction collaborator's loosely-typed value
// into a finite float64, or nil when it cannot be parsed. Null-valued rows
// stay in the batch so the caller can see them; persistence is the
// caller's call.
func coerceValue(v any) *float64 {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
