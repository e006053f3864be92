package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/biotrack/biotrack-cli/internal/catalog"
	"github.com/biotrack/biotrack-cli/internal/model"
	"github.com/biotrack/biotrack-cli/internal/store"
	"github.com/biotrack/biotrack-cli/internal/trend"
)

var compareCmd = &cobra.Command{
	Use:   "compare [metric-id]",
	Short: "Compare the two most recent results per metric",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("local"); err != nil {
			return err
		}

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		var comparisons []model.ComparisonResult
		if len(args) == 1 {
			c, err := compareMetric(ctx, st, cfg.User.ID, args[0])
			if err != nil {
				return err
			}
			if c != nil {
				comparisons = append(comparisons, *c)
			}
		} else {
			comparisons, err = compareAll(ctx, st, cfg.User.ID)
			if err != nil {
				return err
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(comparisons)
	},
}

func compareMetric(ctx context.Context, st store.Store, userID, metricID string) (*model.ComparisonResult, error) {
	history, err := st.ListTestResultsByMetric(ctx, userID, metricID)
	if err != nil {
		return nil, err
	}
	var rng *model.Range
	if m, ok := catalog.Get(metricID); ok {
		rng = m.NormalRange
	}
	return trend.Compare(history, rng), nil
}

// compareAll derives a comparison for every metric with at least two
// results, in catalog order.
func compareAll(ctx context.Context, st store.Store, userID string) ([]model.ComparisonResult, error) {
	all, err := st.ListTestResults(ctx, userID)
	if err != nil {
		return nil, err
	}

	byMetric := make(map[string][]model.TestResult)
	for _, r := range all {
		byMetric[r.MetricID] = append(byMetric[r.MetricID], r)
	}

	var comparisons []model.ComparisonResult
	for _, m := range catalog.All() {
		history, ok := byMetric[m.ID]
		if !ok {
			continue
		}
		if c := trend.Compare(history, m.NormalRange); c != nil {
			comparisons = append(comparisons, *c)
		}
	}
	return comparisons, nil
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
