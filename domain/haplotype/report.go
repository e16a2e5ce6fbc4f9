package haplotype

import (
	"sort"

	"haplocheck/domain/core"
)

// Report bundles the three output artifacts of one run, each already in its
// published order.
type Report struct {
	RunID        core.RunID           `json:"run_id"`
	Fingerprint  core.Hash            `json:"fingerprint"`
	StartedAt    core.Timestamp       `json:"started_at"`
	FinishedAt   core.Timestamp       `json:"finished_at"`
	Markers      []string             `json:"markers"`
	Parameters   []string             `json:"parameters"`
	Missing      []string             `json:"missing_parameters,omitempty"`
	Excluded     []string             `json:"excluded_patients,omitempty"`
	Intersection []IntersectionRecord `json:"intersections"`
	Significance []SignificanceRecord `json:"significance"`
	Summary      []PairSummary        `json:"summary"`
}

// SortIntersections orders records by intersection size, largest first
func SortIntersections(records []IntersectionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Size > records[j].Size
	})
}

// SortSignificance orders rows by p-value, largest first
func SortSignificance(rows []SignificanceRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PValue > rows[j].PValue
	})
}

// SortSummary orders rows by significant-parameter count, smallest first
func SortSummary(rows []PairSummary) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Significant < rows[j].Significant
	})
}
