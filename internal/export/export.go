// Package export writes result history to XLSX workbooks.
package export

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/biotrack/biotrack-cli/internal/catalog"
	"github.com/biotrack/biotrack-cli/internal/model"
)

const resultsSheetName = "Results"

// Options configures the workbook writer.
type Options struct {
	Language     string // "en" or "ar" metric names, default "en"
	AbnormalOnly bool   // skip rows with normal status
}

// WriteResults writes a result-history workbook to path. Rows keep the
// order of the input slice.
func WriteResults(path string, results []model.TestResult, opts Options) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(resultsSheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	writeHeader(sheet)

	written := 0
	for _, r := range results {
		if opts.AbnormalOnly && !r.Status.Abnormal() {
			continue
		}
		writeResult(sheet, r, opts.Language)
		written++
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}

	zap.L().Info("wrote result workbook",
		zap.String("path", path),
		zap.Int("rows", written),
	)
	return nil
}

func writeHeader(sheet *xlsx.Sheet) {
	row := sheet.AddRow()
	for _, h := range []string{"Metric", "Value", "Unit", "Status", "Normal Range", "Test Date"} {
		row.AddCell().SetString(h)
	}
}

func writeResult(sheet *xlsx.Sheet, r model.TestResult, lang string) {
	name := r.MetricID
	unit := ""
	normalRange := ""
	if m, ok := catalog.Get(r.MetricID); ok {
		name = m.Name(lang)
		unit = m.Unit
		if m.NormalRange != nil {
			normalRange = fmt.Sprintf("%g-%g", m.NormalRange.Min, m.NormalRange.Max)
		}
	}

	row := sheet.AddRow()
	row.AddCell().SetString(name)

	valueCell := row.AddCell()
	if r.Value != nil {
		valueCell.SetFloat(*r.Value)
	} else {
		valueCell.SetString("")
	}

	row.AddCell().SetString(unit)
	row.AddCell().SetString(string(r.Status))
	row.AddCell().SetString(normalRange)
	row.AddCell().SetString(r.TestDate.Format(time.DateOnly))
}
