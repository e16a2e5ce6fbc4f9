package haplotype

import (
	"sort"

	"haplocheck/domain/core"
)

// ScanRecord is one marker/parameter comparison of AA against BB carriers
type ScanRecord struct {
	Marker    string  `json:"snp" db:"marker"`
	Parameter string  `json:"mediator" db:"parameter"`
	PValue    float64 `json:"p_value" db:"p_value"`
	U         float64 `json:"u_statistic" db:"u_statistic"`
	Ratio     string  `json:"ratio" db:"ratio"`
}

// MarkerSummary counts the significant parameters of one scanned marker
type MarkerSummary struct {
	Marker      string `json:"snp" db:"marker"`
	Significant int    `json:"significant" db:"significant"`
}

// ScanReport is the output of a single-marker scan
type ScanReport struct {
	RunID      core.RunID      `json:"run_id"`
	StartedAt  core.Timestamp  `json:"started_at"`
	FinishedAt core.Timestamp  `json:"finished_at"`
	Scanned    int             `json:"scanned"`
	Candidates []string        `json:"candidates"`
	Parameters []string        `json:"parameters"`
	Excluded   []string        `json:"excluded_patients,omitempty"`
	Records    []ScanRecord    `json:"records"`
	Summary    []MarkerSummary `json:"summary"`
}

// SortScanRecords orders rows by p-value, largest first
func SortScanRecords(rows []ScanRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PValue > rows[j].PValue
	})
}

// SortMarkerSummary orders rows by significant count, smallest first
func SortMarkerSummary(rows []MarkerSummary) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Significant < rows[j].Significant
	})
}
