// Package haplotype builds haplotype groups from genotype cohorts and pairs each
// group with its genotype-flipped counterpart.
package haplotype

import (
	"haplocheck/domain/genotype"
	"haplocheck/domain/haplotype"
)

// DefaultMinIntersection is the smallest group size retained for comparison
const DefaultMinIntersection = 20

// Intersect emits one record for every marker pair and every genotype combination
// whose parent cohorts are both non-empty. Records follow pair order, then
// genotype order; callers sort them.
func Intersect(pairs []haplotype.MarkerPair, cohorts map[string]genotype.Cohorts) []haplotype.IntersectionRecord {
	var out []haplotype.IntersectionRecord
	for _, pair := range pairs {
		c1, ok1 := cohorts[pair.First]
		c2, ok2 := cohorts[pair.Second]
		if !ok1 || !ok2 {
			continue
		}
		for _, g1 := range genotype.All {
			p1 := c1.Patients(g1)
			if len(p1) == 0 {
				continue
			}
			for _, g2 := range genotype.All {
				p2 := c2.Patients(g2)
				if len(p2) == 0 {
					continue
				}
				members := intersectSorted(p1, p2)
				out = append(out, haplotype.IntersectionRecord{
					Key: haplotype.Key{
						Marker1:   pair.First,
						Genotype1: g1,
						Marker2:   pair.Second,
						Genotype2: g2,
					},
					N1:      len(p1),
					N2:      len(p2),
					Size:    len(members),
					Pct1:    float64(len(members)) / float64(len(p1)),
					Pct2:    float64(len(members)) / float64(len(p2)),
					Members: members,
				})
			}
		}
	}
	return out
}

// intersectSorted merges two ascending id lists
func intersectSorted(a, b []string) []string {
	out := make([]string, 0)
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// Retain keeps the records with at least min members, largest first.
// The input slice is left untouched.
func Retain(records []haplotype.IntersectionRecord, min int) []haplotype.IntersectionRecord {
	var kept []haplotype.IntersectionRecord
	for _, r := range records {
		if r.Size >= min {
			kept = append(kept, r)
		}
	}
	haplotype.SortIntersections(kept)
	return kept
}
