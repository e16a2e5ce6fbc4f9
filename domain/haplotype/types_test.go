package haplotype

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"haplocheck/domain/genotype"
)

func TestKeyLabel(t *testing.T) {
	k := Key{Marker1: "rs1", Genotype1: genotype.HomozygousMajor, Marker2: "rs2", Genotype2: genotype.HomozygousMinor}
	assert.Equal(t, "rs1 AA & rs2 BB", k.Label())
	assert.True(t, k.IsHomozygous())

	k.Genotype2 = genotype.Heterozygous
	assert.False(t, k.IsHomozygous())
}

func TestSortOrders(t *testing.T) {
	recs := []IntersectionRecord{{Size: 3}, {Size: 30}, {Size: 20}, {Size: 30, Key: Key{Marker1: "second"}}}
	SortIntersections(recs)
	assert.Equal(t, []int{30, 30, 20, 3}, []int{recs[0].Size, recs[1].Size, recs[2].Size, recs[3].Size})
	assert.Equal(t, "second", recs[1].Marker1, "stable for ties")

	sig := []SignificanceRecord{{PValue: 0.01}, {PValue: 0.9}, {PValue: 0.5}}
	SortSignificance(sig)
	assert.Equal(t, 0.9, sig[0].PValue)
	assert.Equal(t, 0.01, sig[2].PValue)

	sum := []PairSummary{{Significant: 4}, {Significant: 0}, {Significant: 2}}
	SortSummary(sum)
	assert.Equal(t, []int{0, 2, 4}, []int{sum[0].Significant, sum[1].Significant, sum[2].Significant})
}
