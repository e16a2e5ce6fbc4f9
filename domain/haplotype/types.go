// Package haplotype holds the records produced by the haplotype comparison pipeline.
package haplotype

import (
	"fmt"

	"haplocheck/domain/genotype"
)

// MarkerPair is one candidate combination of two distinct markers. Order is the
// storage order used in every downstream record.
type MarkerPair struct {
	First  string
	Second string
}

// Key identifies a haplotype group by both markers and their genotypes
type Key struct {
	Marker1   string            `json:"snp1"`
	Genotype1 genotype.Genotype `json:"genotype1"`
	Marker2   string            `json:"snp2"`
	Genotype2 genotype.Genotype `json:"genotype2"`
}

// Label renders the compound group name, e.g. "rs1 AA & rs2 BB"
func (k Key) Label() string {
	return fmt.Sprintf("%s %s & %s %s", k.Marker1, k.Genotype1, k.Marker2, k.Genotype2)
}

// IsHomozygous reports whether both genotypes are homozygous
func (k Key) IsHomozygous() bool {
	return k.Genotype1.IsHomozygous() && k.Genotype2.IsHomozygous()
}

// IntersectionRecord is one row of the unfiltered haplotype intersection table.
// Size never exceeds min(N1, N2); Pct1 and Pct2 lie in [0,1].
type IntersectionRecord struct {
	Key
	N1      int      `json:"n1"`
	N2      int      `json:"n2"`
	Size    int      `json:"intersection_size"`
	Pct1    float64  `json:"pct1"`
	Pct2    float64  `json:"pct2"`
	Members []string `json:"members"`
}

// Pairing joins a retained group with its genotype-flipped counterpart
type Pairing struct {
	Primary     IntersectionRecord
	Counterpart IntersectionRecord
}

// SignificanceRecord is one row of the per-pair, per-parameter report
type SignificanceRecord struct {
	Group1    string  `json:"group1" db:"group1"`
	Group2    string  `json:"group2" db:"group2"`
	Parameter string  `json:"parameter" db:"parameter"`
	PValue    float64 `json:"p_value" db:"p_value"`
	U         float64 `json:"u_statistic" db:"u_statistic"`
	Count1    int     `json:"count1" db:"count1"`
	Count2    int     `json:"count2" db:"count2"`
	// Series sizes and medians after time-label collapsing
	SeriesN1 int     `json:"series_n1" db:"series_n1"`
	SeriesN2 int     `json:"series_n2" db:"series_n2"`
	Median1  float64 `json:"median1" db:"median1"`
	Median2  float64 `json:"median2" db:"median2"`
}

// PairSummary is one row of the summary table
type PairSummary struct {
	Group1      string `json:"group1" db:"group1"`
	Count1      int    `json:"count1" db:"count1"`
	Group2      string `json:"group2" db:"group2"`
	Count2      int    `json:"count2" db:"count2"`
	Significant int    `json:"significant" db:"significant"`
}
