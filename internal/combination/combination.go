// Package combination generates the candidate marker groups compared by the pipeline.
package combination

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat/combin"

	"haplocheck/domain/core"
	"haplocheck/domain/haplotype"
)

// ParseMarkers splits free text on whitespace, drops empty entries and removes
// duplicates, keeping first occurrence order.
func ParseMarkers(text string) []string {
	return Dedupe(strings.Fields(text))
}

// Dedupe removes empty and repeated identifiers, keeping first occurrence order
func Dedupe(markers []string) []string {
	seen := make(map[string]bool, len(markers))
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// Validate fails with ErrInsufficientMarkers unless at least two distinct markers remain
func Validate(markers []string) error {
	if n := len(Dedupe(markers)); n < 2 {
		return fmt.Errorf("%w: got %d distinct, need at least 2", core.ErrInsufficientMarkers, n)
	}
	return nil
}

// Pairs returns every unordered marker pair. The last remaining marker is paired with
// each earlier marker in turn, then removed: [a b c] gives (a,c) (b,c) (a,b).
// Within a pair the earlier marker is stored first.
func Pairs(markers []string) []haplotype.MarkerPair {
	n := len(markers)
	if n < 2 {
		return nil
	}
	pairs := make([]haplotype.MarkerPair, 0, n*(n-1)/2)
	for last := n - 1; last > 0; last-- {
		for i := 0; i < last; i++ {
			pairs = append(pairs, haplotype.MarkerPair{First: markers[i], Second: markers[last]})
		}
	}
	return pairs
}

// Groups returns all k-combinations of markers in lexicographic index order.
// The pipeline only consumes k=2; larger groups are exposed for callers that
// build their own intersection logic.
func Groups(markers []string, k int) ([][]string, error) {
	if k < 2 || k > len(markers) {
		return nil, fmt.Errorf("%w: group size %d for %d markers", core.ErrInvalidConfig, k, len(markers))
	}
	idx := combin.Combinations(len(markers), k)
	groups := make([][]string, len(idx))
	for i, c := range idx {
		g := make([]string, k)
		for j, m := range c {
			g[j] = markers[m]
		}
		groups[i] = g
	}
	return groups, nil
}
