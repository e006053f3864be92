package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/biotrack/biotrack-cli/internal/catalog"
	"github.com/biotrack/biotrack-cli/internal/extract"
	"github.com/biotrack/biotrack-cli/internal/model"
	"github.com/biotrack/biotrack-cli/internal/normalize"
	"github.com/biotrack/biotrack-cli/internal/store"
	"github.com/biotrack/biotrack-cli/internal/trend"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Extract and store lab results from report documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		docs := make([]extract.Document, 0, len(args))
		for _, path := range args {
			doc, err := loadDocument(path)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}

		readings, err := newAnalyzer().AnalyzeAll(ctx, docs)
		if err != nil {
			return eris.Wrap(err, "analyze documents")
		}

		stored, err := storeReadings(ctx, st, cfg.User.ID, readings)
		if err != nil {
			return err
		}

		zap.L().Info("analysis complete",
			zap.Int("documents", len(docs)),
			zap.Int("readings", len(readings)),
			zap.Int("stored", len(stored)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stored)
	},
}

// mediaTypes maps file extensions to the MIME types the extraction API
// accepts.
var mediaTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

func mediaTypeFor(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mt, ok := mediaTypes[ext]
	if !ok {
		return "", eris.Errorf("unsupported file type %q (want pdf, png, jpg, webp, or gif)", ext)
	}
	return mt, nil
}

func loadDocument(path string) (extract.Document, error) {
	mt, err := mediaTypeFor(path)
	if err != nil {
		return extract.Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.Document{}, eris.Wrapf(err, "read %s", path)
	}
	return extract.Document{
		Name:      filepath.Base(path),
		MediaType: mt,
		Data:      data,
	}, nil
}

// parseTestDate accepts the date formats the extraction model emits and
// falls back to now for anything unparseable.
func parseTestDate(s string) time.Time {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

// storeReadings normalizes raw readings, classifies each against its
// metric's normal range, and persists the ones carrying a numeric value.
// Rows that resolved to a metric but had no parseable value are logged
// and skipped.
func storeReadings(ctx context.Context, st store.Store, userID string, readings []model.ExtractedReading) ([]model.TestResult, error) {
	normalized := normalize.Normalize(readings)

	stored := make([]model.TestResult, 0, len(normalized))
	for _, n := range normalized {
		if n.Value == nil {
			zap.L().Warn("skipping reading with unparseable value",
				zap.String("metric_id", n.MetricID))
			continue
		}

		var rng *model.Range
		var recheckMonths int
		if m, ok := catalog.Get(n.MetricID); ok {
			rng = m.NormalRange
			recheckMonths = m.RecheckMonths
		}

		result := model.TestResult{
			UserID:   userID,
			MetricID: n.MetricID,
			Value:    n.Value,
			Status:   trend.Status(n.Value, rng),
			TestDate: parseTestDate(n.TestDate),
		}
		if err := st.CreateTestResult(ctx, &result); err != nil {
			return nil, eris.Wrapf(err, "store result for %s", n.MetricID)
		}
		stored = append(stored, result)

		if recheckMonths > 0 {
			reminder := model.Reminder{
				UserID:   userID,
				MetricID: n.MetricID,
				DueDate:  result.TestDate.AddDate(0, recheckMonths, 0),
			}
			// Best effort: a reminder failure must not lose the result.
			if err := st.UpsertReminder(ctx, &reminder); err != nil {
				zap.L().Warn("schedule recheck reminder",
					zap.String("metric_id", n.MetricID),
					zap.Error(err))
			}
		}
	}
	return stored, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
