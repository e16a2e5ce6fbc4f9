package excel

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"haplocheck/domain/dataset"
	"haplocheck/domain/haplotype"
	"haplocheck/internal/errors"
)

// XLSXReportWriter writes all report tables into one workbook, one sheet per table
type XLSXReportWriter struct {
	Dir  string
	Base string
}

// NewXLSXReportWriter creates a workbook writer rooted at dir
func NewXLSXReportWriter(dir, base string) *XLSXReportWriter {
	return &XLSXReportWriter{Dir: dir, Base: base}
}

// Path is the workbook written by WriteReport
func (w *XLSXReportWriter) Path() string {
	return filepath.Join(w.Dir, w.Base+".xlsx")
}

// ScanPath is the workbook written by WriteScan
func (w *XLSXReportWriter) ScanPath() string {
	return filepath.Join(w.Dir, w.Base+" Scan.xlsx")
}

// WriteReport writes the Intersections, Significance and Summary sheets
func (w *XLSXReportWriter) WriteReport(ctx context.Context, report *haplotype.Report) error {
	return w.write(ctx, w.Path(), []sheet{intersectionSheet(report), significanceSheet(report), summarySheet(report)})
}

// WriteScan writes the Report and Table sheets of a scan
func (w *XLSXReportWriter) WriteScan(ctx context.Context, report *haplotype.ScanReport) error {
	return w.write(ctx, w.ScanPath(), []sheet{scanRecordSheet(report), scanSummarySheet(report)})
}

func (w *XLSXReportWriter) write(ctx context.Context, path string, sheets []sheet) error {
	if w.Dir != "" {
		if err := os.MkdirAll(w.Dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create output directory %s", w.Dir)
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	for i, s := range sheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return errors.Wrapf(err, "failed to name sheet %s", s.name)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return errors.Wrapf(err, "failed to add sheet %s", s.name)
		}
		if err := writeSheet(f, s); err != nil {
			return errors.Wrapf(err, "failed to fill sheet %s", s.name)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save %s", path)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet) error {
	header := make([]interface{}, len(s.headers))
	for i, h := range s.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return err
	}
	for r, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// WriteTable writes a raw table to path as xlsx or csv, chosen by extension.
// The header row lands in row 1 of sheetName (default Sheet1).
func WriteTable(path, sheetName string, t dataset.Table) error {
	s := sheet{name: sheetName, headers: t.Headers}
	for _, r := range t.Rows {
		s.rows = append(s.rows, toInterfaces(r))
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return writeCSV(path, s)
	}

	if s.name == "" {
		s.name = "Sheet1"
	}
	f := excelize.NewFile()
	defer f.Close()
	if s.name != "Sheet1" {
		if err := f.SetSheetName("Sheet1", s.name); err != nil {
			return err
		}
	}
	if err := writeSheet(f, s); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func toInterfaces(r []string) []interface{} {
	out := make([]interface{}, len(r))
	for i, v := range r {
		out[i] = v
	}
	return out
}
