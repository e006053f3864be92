package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/biotrack/biotrack-cli/internal/catalog"
	"github.com/biotrack/biotrack-cli/internal/model"
	"github.com/biotrack/biotrack-cli/internal/trend"
)

// ReadResults parses a result-history workbook back into test results for
// one user. Rows whose metric name resolves to no catalog entry are logged
// and skipped; the status column is recomputed from the value so imported
// rows stay consistent with the catalog's ranges.
func ReadResults(path, userID string) ([]model.TestResult, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "export: open workbook")
	}

	sheet, ok := f.Sheet[resultsSheetName]
	if !ok {
		return nil, eris.Errorf("export: sheet %q not found", resultsSheetName)
	}

	var results []model.TestResult
	for i, row := range sheet.Rows {
		if i == 0 {
			continue // header
		}
		r, ok := parseRow(row, userID)
		if !ok {
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

func parseRow(row *xlsx.Row, userID string) (model.TestResult, bool) {
	cells := make([]string, 6)
	for j := 0; j < len(cells) && j < len(row.Cells); j++ {
		cells[j] = strings.TrimSpace(row.Cells[j].String())
	}

	name := cells[0]
	if name == "" {
		return model.TestResult{}, false
	}

	metric, ok := catalog.Lookup(name)
	if !ok {
		zap.L().Warn("import: unknown metric name skipped", zap.String("name", name))
		return model.TestResult{}, false
	}

	var value *float64
	if cells[1] != "" {
		if v, err := strconv.ParseFloat(cells[1], 64); err == nil {
			value = &v
		}
	}

	testDate := time.Now().UTC()
	if t, err := time.Parse(time.DateOnly, cells[5]); err == nil {
		testDate = t.UTC()
	}

	return model.TestResult{
		UserID:   userID,
		MetricID: metric.ID,
		Value:    value,
		Status:   trend.Status(value, metric.NormalRange),
		TestDate: testDate,
	}, true
}
