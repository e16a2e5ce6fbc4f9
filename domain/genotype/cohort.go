package genotype

// Cohorts holds, for one marker, the sorted patient identifiers carrying each genotype.
// Built once per marker and never mutated afterwards.
type Cohorts struct {
	Marker string
	sets   [3][]string
}

// NewCohorts builds the cohort triple from already sorted, disjoint patient lists
func NewCohorts(marker string, aa, ab, bb []string) Cohorts {
	return Cohorts{Marker: marker, sets: [3][]string{aa, ab, bb}}
}

// Patients returns the cohort for g. The slice must not be modified.
func (c Cohorts) Patients(g Genotype) []string {
	i := g.Index()
	if i < 0 {
		return nil
	}
	return c.sets[i]
}

// Size returns the cohort size for g
func (c Cohorts) Size(g Genotype) int {
	return len(c.Patients(g))
}

// Total is the number of patients with any recognised call
func (c Cohorts) Total() int {
	return len(c.sets[0]) + len(c.sets[1]) + len(c.sets[2])
}
