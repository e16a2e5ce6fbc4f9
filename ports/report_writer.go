package ports

import (
	"context"

	"haplocheck/domain/haplotype"
)

// ReportWriter persists the output tables of a run
type ReportWriter interface {
	WriteReport(ctx context.Context, report *haplotype.Report) error
	WriteScan(ctx context.Context, report *haplotype.ScanReport) error
}
