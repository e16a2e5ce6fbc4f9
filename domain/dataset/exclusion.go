package dataset

import "haplocheck/domain/core"

// ExclusionRule removes patients whose header-row cell equals Value,
// e.g. {Row: "discharge_discharged_to", Value: "Death"} keeps survivors only.
type ExclusionRule struct {
	Row   string `json:"row" mapstructure:"row"`
	Value string `json:"value" mapstructure:"value"`
}

// IsZero reports whether the rule is unset
func (r ExclusionRule) IsZero() bool {
	return r.Row == ""
}

// Apply returns the dataset without the matching patients and the excluded ids.
func (r ExclusionRule) Apply(ds *Dataset) (*Dataset, []string, error) {
	if r.IsZero() {
		return ds, nil, nil
	}
	row, ok := ds.HeaderRow(r.Row)
	if !ok {
		return nil, nil, core.NewMalformedError("exclusion row %q not found in header block", r.Row)
	}

	excluded := make(map[string]bool)
	var ids []string
	for i, cell := range row.Cells {
		if cell == r.Value {
			excluded[ds.Patients[i]] = true
			ids = append(ids, ds.Patients[i])
		}
	}
	if len(ids) == 0 {
		return ds, nil, nil
	}
	return ds.WithoutPatients(excluded), ids, nil
}
