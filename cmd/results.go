package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/biotrack/biotrack-cli/internal/catalog"
	"github.com/biotrack/biotrack-cli/internal/model"
)

var (
	resultsMetric string
	resultsJSON   bool
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List stored test results",
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

		var results []model.TestResult
		if resultsMetric != "" {
			results, err = st.ListTestResultsByMetric(ctx, cfg.User.ID, resultsMetric)
		} else {
			results, err = st.ListTestResults(ctx, cfg.User.ID)
		}
		if err != nil {
			return err
		}

		if resultsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		for _, r := range results {
			printResult(r)
		}
		fmt.Printf("%d result(s)\n", len(results))
		return nil
	},
}

func printResult(r model.TestResult) {
	name := r.MetricID
	unit := ""
	if m, ok := catalog.Get(r.MetricID); ok {
		name = m.NameEN
		unit = m.Unit
	}
	value := "-"
	if r.Value != nil {
		value = fmt.Sprintf("%g", *r.Value)
	}
	fmt.Printf("%s  %-24s %8s %-8s [%s]\n",
		r.TestDate.Format(time.DateOnly), name, value, unit, r.Status)
}

func init() {
	resultsCmd.Flags().StringVar(&resultsMetric, "metric", "", "filter by canonical metric id")
	resultsCmd.Flags().BoolVar(&resultsJSON, "json", false, "output JSON")
	rootCmd.AddCommand(resultsCmd)
}
