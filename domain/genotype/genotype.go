// Package genotype defines the three zygosity states a marker call can take and the
// patient cohorts derived from them.
package genotype

import "fmt"

// Genotype is a biallelic genotype call
type Genotype string

const (
	HomozygousMajor Genotype = "AA"
	Heterozygous    Genotype = "AB"
	HomozygousMinor Genotype = "BB"
)

// All lists the genotype categories in indexing order
var All = [3]Genotype{HomozygousMajor, Heterozygous, HomozygousMinor}

// Parse maps a cell code to a genotype
func Parse(code string) (Genotype, bool) {
	switch Genotype(code) {
	case HomozygousMajor, Heterozygous, HomozygousMinor:
		return Genotype(code), true
	}
	return "", false
}

// IsHomozygous reports whether g is AA or BB
func (g Genotype) IsHomozygous() bool {
	return g == HomozygousMajor || g == HomozygousMinor
}

// Flip returns the opposite homozygous state. Heterozygous calls have no opposite.
func (g Genotype) Flip() (Genotype, error) {
	switch g {
	case HomozygousMajor:
		return HomozygousMinor, nil
	case HomozygousMinor:
		return HomozygousMajor, nil
	}
	return "", fmt.Errorf("genotype %q has no homozygous opposite", string(g))
}

// Index returns the position of g in All, or -1
func (g Genotype) Index() int {
	for i, c := range All {
		if c == g {
			return i
		}
	}
	return -1
}

func (g Genotype) String() string { return string(g) }
