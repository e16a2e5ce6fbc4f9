package app

import (
	"sort"
	"strings"

	"haplocheck/domain/core"
	"haplocheck/domain/dataset"
)

// ParameterMatch records how requested parameter names matched mediator rows
type ParameterMatch struct {
	Requested []string `json:"requested"`
	Found     []string `json:"found"`
	Missing   []string `json:"missing,omitempty"`
	// Mediators are the matching mediator identifiers, sorted
	Mediators []string `json:"mediators"`
}

// ResolveParameters matches each requested name against the dataset's mediator
// identifiers by case-insensitive substring. Zero matches is a configuration
// error. A partial match returns the match together with ErrPartialParameters
// unless allowPartial is set.
func ResolveParameters(ds *dataset.Dataset, requested []string, allowPartial bool) (ParameterMatch, error) {
	m := ParameterMatch{Requested: requested}
	mediators := ds.Mediators()
	selected := make(map[string]bool)

	for _, param := range requested {
		needle := strings.ToLower(strings.TrimSpace(param))
		if needle == "" {
			continue
		}
		hit := false
		for _, med := range mediators {
			if strings.Contains(strings.ToLower(med), needle) {
				selected[med] = true
				hit = true
			}
		}
		if hit {
			m.Found = append(m.Found, param)
		} else {
			m.Missing = append(m.Missing, param)
		}
	}

	if len(m.Found) == 0 {
		return m, core.ErrNoParameters
	}
	for med := range selected {
		m.Mediators = append(m.Mediators, med)
	}
	sort.Strings(m.Mediators)

	if len(m.Missing) > 0 && !allowPartial {
		return m, core.NewPartialParametersError(m.Missing)
	}
	return m, nil
}

// MediatorsWithPrefix selects mediators by identifier prefix, sorted
func MediatorsWithPrefix(ds *dataset.Dataset, prefix string) []string {
	var out []string
	for _, med := range ds.Mediators() {
		if strings.HasPrefix(med, prefix) {
			out = append(out, med)
		}
	}
	sort.Strings(out)
	return out
}
