// Package scanner screens single markers for balanced AA/BB carrier counts and
// compares the mediator trajectories of the two homozygous cohorts.
package scanner

import (
	"context"
	"fmt"

	"haplocheck/domain/core"
	"haplocheck/domain/dataset"
	"haplocheck/domain/genotype"
	"haplocheck/domain/haplotype"
	"haplocheck/internal/cohort"
	"haplocheck/internal/significance"
	"haplocheck/internal/timeseries"
)

const (
	DefaultMinCohort = 20
	DefaultTolerance = 0.1
)

// Criteria decides which markers are worth comparing
type Criteria struct {
	// both homozygous cohorts must be strictly larger than MinCohort
	MinCohort int     `json:"min_cohort" mapstructure:"min_cohort"`
	Tolerance float64 `json:"tolerance" mapstructure:"tolerance"`
}

// DefaultCriteria keeps markers with more than 20 carriers of each homozygous
// state and BB within 10% of AA
func DefaultCriteria() Criteria {
	return Criteria{MinCohort: DefaultMinCohort, Tolerance: DefaultTolerance}
}

// Balanced reports whether counts a (AA) and b (BB) pass the criteria
func (c Criteria) Balanced(a, b int) bool {
	if a <= c.MinCohort || b <= c.MinCohort {
		return false
	}
	fa, fb := float64(a), float64(b)
	return fa*(1-c.Tolerance) <= fb && fb <= fa*(1+c.Tolerance)
}

// Candidate is a marker that passed screening
type Candidate struct {
	Marker string
	AA     []string
	BB     []string
}

// Ratio renders the carrier counts as "nAA : nBB"
func (c Candidate) Ratio() string {
	return fmt.Sprintf("%dAA : %dBB", len(c.AA), len(c.BB))
}

// Screen indexes each marker and keeps the balanced ones, in marker order.
// An empty marker list scans every marker row of the dataset.
func Screen(ds *dataset.Dataset, markers []string, criteria Criteria) ([]Candidate, error) {
	if len(markers) == 0 {
		markers = ds.MarkerNames()
	}
	var out []Candidate
	for _, m := range markers {
		row, ok := ds.Marker(m)
		if !ok {
			return nil, core.NewMarkerNotFoundError(m)
		}
		c := cohort.Index(m, row.Cells, ds.Patients)
		aa := c.Patients(genotype.HomozygousMajor)
		bb := c.Patients(genotype.HomozygousMinor)
		if criteria.Balanced(len(aa), len(bb)) {
			out = append(out, Candidate{Marker: m, AA: aa, BB: bb})
		}
	}
	return out, nil
}

// Compare runs the AA against BB comparison of every candidate. Rows are sorted
// by p-value descending and the summary by significant count ascending.
func Compare(ctx context.Context, tester *significance.Tester, candidates []Candidate, parameters []string, series map[string]timeseries.Series) ([]haplotype.ScanRecord, []haplotype.MarkerSummary, error) {
	var records []haplotype.ScanRecord
	summary := make([]haplotype.MarkerSummary, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		results, err := tester.Compare(ctx, c.AA, c.BB, parameters, series)
		if err != nil {
			return nil, nil, fmt.Errorf("marker %s: %w", c.Marker, err)
		}
		ratio := c.Ratio()
		for _, r := range results {
			records = append(records, haplotype.ScanRecord{
				Marker:    c.Marker,
				Parameter: r.Parameter,
				PValue:    r.PValue,
				U:         r.U,
				Ratio:     ratio,
			})
		}
		summary = append(summary, haplotype.MarkerSummary{
			Marker:      c.Marker,
			Significant: significance.CountSignificant(results, tester.Alpha),
		})
	}
	haplotype.SortScanRecords(records)
	haplotype.SortMarkerSummary(summary)
	return records, summary, nil
}
