package excel

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"haplocheck/domain/haplotype"
	"haplocheck/internal/errors"
)

// CSVReportWriter writes each report table to its own CSV file:
// "<base>.csv", "<base> HType Report.csv" and "<base> HType Table.csv";
// scans go to "<base> Report.csv" and "<base> Table.csv".
type CSVReportWriter struct {
	Dir  string
	Base string
}

// NewCSVReportWriter creates a CSV writer rooted at dir
func NewCSVReportWriter(dir, base string) *CSVReportWriter {
	return &CSVReportWriter{Dir: dir, Base: base}
}

// Paths returns the files written by WriteReport, in table order
func (w *CSVReportWriter) Paths() []string {
	return []string{
		filepath.Join(w.Dir, w.Base+".csv"),
		filepath.Join(w.Dir, w.Base+" HType Report.csv"),
		filepath.Join(w.Dir, w.Base+" HType Table.csv"),
	}
}

// ScanPaths returns the files written by WriteScan
func (w *CSVReportWriter) ScanPaths() []string {
	return []string{
		filepath.Join(w.Dir, w.Base+" Report.csv"),
		filepath.Join(w.Dir, w.Base+" Table.csv"),
	}
}

// WriteReport writes the intersection, significance and summary tables
func (w *CSVReportWriter) WriteReport(ctx context.Context, report *haplotype.Report) error {
	paths := w.Paths()
	sheets := []sheet{intersectionSheet(report), significanceSheet(report), summarySheet(report)}
	return w.writeAll(ctx, paths, sheets)
}

// WriteScan writes the scan rows and per-marker summary
func (w *CSVReportWriter) WriteScan(ctx context.Context, report *haplotype.ScanReport) error {
	return w.writeAll(ctx, w.ScanPaths(), []sheet{scanRecordSheet(report), scanSummarySheet(report)})
}

func (w *CSVReportWriter) writeAll(ctx context.Context, paths []string, sheets []sheet) error {
	if w.Dir != "" {
		if err := os.MkdirAll(w.Dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create output directory %s", w.Dir)
		}
	}
	for i, s := range sheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeCSV(paths[i], s); err != nil {
			return errors.Wrapf(err, "failed to write %s", paths[i])
		}
	}
	return nil
}

func writeCSV(path string, s sheet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(s.headers); err != nil {
		return err
	}
	record := make([]string, len(s.headers))
	for _, row := range s.rows {
		for i, v := range row {
			record[i] = formatCell(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
