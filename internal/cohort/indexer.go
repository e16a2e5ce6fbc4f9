// Package cohort partitions patients into genotype cohorts per marker.
package cohort

import (
	"sort"
	"strings"

	"haplocheck/domain/core"
	"haplocheck/domain/dataset"
	"haplocheck/domain/genotype"
)

// Index splits the patients of one marker row into AA, AB and BB cohorts.
// cells must be aligned with patients. Blank and unrecognised calls belong to
// no cohort; a category with no carriers yields an empty set.
func Index(marker string, cells, patients []string) genotype.Cohorts {
	var sets [3][]string
	for i, raw := range cells {
		if i >= len(patients) {
			break
		}
		g, ok := genotype.Parse(strings.TrimSpace(raw))
		if !ok {
			continue
		}
		sets[g.Index()] = append(sets[g.Index()], patients[i])
	}
	for i := range sets {
		if sets[i] == nil {
			sets[i] = []string{}
		}
		sort.Strings(sets[i])
	}
	return genotype.NewCohorts(marker, sets[0], sets[1], sets[2])
}

// IndexAll builds the cohorts of every requested marker.
// A marker without a marker row is a data-shape violation.
func IndexAll(ds *dataset.Dataset, markers []string) (map[string]genotype.Cohorts, error) {
	out := make(map[string]genotype.Cohorts, len(markers))
	for _, m := range markers {
		row, ok := ds.Marker(m)
		if !ok {
			return nil, core.NewMarkerNotFoundError(m)
		}
		out[m] = Index(m, row.Cells, ds.Patients)
	}
	return out, nil
}
