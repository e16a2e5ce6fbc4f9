package testkit

import (
	"fmt"

	"haplocheck/domain/dataset"
)

// Patient describes one patient column of a synthetic clinical table
type Patient struct {
	ID        string
	Header    map[string]string   // header-row label -> cell
	Times     []string            // raw time label per sample
	Values    map[string][]string // mediator -> raw value per sample
	Genotypes map[string]string   // marker -> call
}

// Layout fixes the row structure shared by every patient in a table
type Layout struct {
	Schema     dataset.Schema
	HeaderRows []string
	Samples    int
	Mediators  []string
	Markers    []string
}

// BuildTable lays patients out the way the clinical exports do: header rows, then
// for each sample a time row followed by one row per mediator, then one row per marker.
func BuildTable(layout Layout, patients []Patient) dataset.Table {
	s := layout.Schema
	headers := make([]string, s.MetadataColumns, s.MetadataColumns+len(patients))
	headers[0] = s.IdentifierColumn
	headers[1] = s.ChromosomeColumn
	headers[2] = s.NameColumn
	for i := 3; i < s.MetadataColumns; i++ {
		headers[i] = fmt.Sprintf("meta_%d", i)
	}
	for _, p := range patients {
		headers = append(headers, p.ID)
	}

	newRow := func(label, chr, name string) []string {
		row := make([]string, len(headers))
		row[0], row[1], row[2] = label, chr, name
		return row
	}

	var rows [][]string
	for _, label := range layout.HeaderRows {
		row := newRow(label, "", "")
		for j, p := range patients {
			row[s.MetadataColumns+j] = p.Header[label]
		}
		rows = append(rows, row)
	}

	for k := 0; k < layout.Samples; k++ {
		row := newRow(s.TimeSentinel, "", "")
		for j, p := range patients {
			if k < len(p.Times) {
				row[s.MetadataColumns+j] = p.Times[k]
			}
		}
		rows = append(rows, row)

		for _, m := range layout.Mediators {
			row := newRow(m, "", "")
			for j, p := range patients {
				if vals := p.Values[m]; k < len(vals) {
					row[s.MetadataColumns+j] = vals[k]
				}
			}
			rows = append(rows, row)
		}
	}

	for i, marker := range layout.Markers {
		row := newRow("", fmt.Sprintf("%d", i%22+1), marker)
		for j, p := range patients {
			row[s.MetadataColumns+j] = p.Genotypes[marker]
		}
		rows = append(rows, row)
	}

	return dataset.Table{Headers: headers, Rows: rows}
}

// MustDataset builds the table and parses it, panicking on a malformed layout.
func MustDataset(layout Layout, patients []Patient) *dataset.Dataset {
	ds, err := dataset.FromTable(BuildTable(layout, patients), layout.Schema)
	if err != nil {
		panic(err)
	}
	return ds
}
