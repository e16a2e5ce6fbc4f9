package ports

import (
	"context"

	"haplocheck/domain/core"
	"haplocheck/domain/haplotype"
)

// ReportRepository stores run reports for later querying
type ReportRepository interface {
	SaveReport(ctx context.Context, report *haplotype.Report) error
	ListRuns(ctx context.Context, limit, offset int) ([]RunSummary, error)
	GetSummary(ctx context.Context, runID core.RunID) ([]haplotype.PairSummary, error)
	GetSignificance(ctx context.Context, runID core.RunID) ([]haplotype.SignificanceRecord, error)
}

// RunSummary is the listing view of a stored run
type RunSummary struct {
	ID          core.RunID     `json:"id" db:"id"`
	Fingerprint core.Hash      `json:"fingerprint" db:"fingerprint"`
	Markers     int            `json:"markers" db:"marker_count"`
	Parameters  int            `json:"parameters" db:"parameter_count"`
	Pairings    int            `json:"pairings" db:"pairing_count"`
	StartedAt   core.Timestamp `json:"started_at" db:"started_at"`
	FinishedAt  core.Timestamp `json:"finished_at" db:"finished_at"`
}
