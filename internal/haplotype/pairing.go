package haplotype

import (
	"haplocheck/domain/genotype"
	"haplocheck/domain/haplotype"
)

// counterpartKeys returns the two storage orientations of the genotype-flipped
// opposite of k. ok is false for keys involving a heterozygous call.
func counterpartKeys(k haplotype.Key) (a, b haplotype.Key, ok bool) {
	f1, err := k.Genotype1.Flip()
	if err != nil {
		return a, b, false
	}
	f2, err := k.Genotype2.Flip()
	if err != nil {
		return a, b, false
	}

	var g1, g2 genotype.Genotype
	if k.Genotype1 == k.Genotype2 {
		// AA/AA pairs with AA/BB, BB/BB with BB/AA
		g1, g2 = k.Genotype1, f2
	} else {
		// AA/BB pairs with BB/AA
		g1, g2 = k.Genotype2, k.Genotype1
	}
	a = haplotype.Key{Marker1: k.Marker1, Genotype1: g1, Marker2: k.Marker2, Genotype2: g2}
	b = haplotype.Key{Marker1: k.Marker2, Genotype1: g2, Marker2: k.Marker1, Genotype2: g1}
	if k.Genotype1 == k.Genotype2 {
		b = haplotype.Key{Marker1: k.Marker2, Genotype1: f2, Marker2: k.Marker1, Genotype2: f1}
	}
	return a, b, true
}

// pool tracks which retained groups are still available for pairing
type pool struct {
	groups   []haplotype.IntersectionRecord
	consumed []bool
}

// find returns the first available group other than skip matching either key
func (p *pool) find(skip int, a, b haplotype.Key) (int, bool) {
	for i, g := range p.groups {
		if i == skip || p.consumed[i] {
			continue
		}
		if g.Key == a || g.Key == b {
			return i, true
		}
	}
	return -1, false
}

// PairCounterparts matches every homozygous retained group with its flipped
// counterpart. Heterozygous groups are removed before pairing. Groups are visited
// in the given order; a group without an available counterpart is skipped but
// stays available as the counterpart of a later group. Each group appears in at
// most one pairing.
func PairCounterparts(retained []haplotype.IntersectionRecord) []haplotype.Pairing {
	p := &pool{}
	for _, r := range retained {
		if r.IsHomozygous() {
			p.groups = append(p.groups, r)
		}
	}
	p.consumed = make([]bool, len(p.groups))

	var pairings []haplotype.Pairing
	for i, primary := range p.groups {
		if p.consumed[i] {
			continue
		}
		a, b, ok := counterpartKeys(primary.Key)
		if !ok {
			continue
		}
		j, found := p.find(i, a, b)
		if !found {
			continue
		}
		p.consumed[i] = true
		p.consumed[j] = true
		pairings = append(pairings, haplotype.Pairing{Primary: primary, Counterpart: p.groups[j]})
	}
	return pairings
}
