package dataset

import (
	"strings"

	"haplocheck/domain/core"
)

// Dataset is the typed, immutable view of a loaded genotype/mediator table.
// Rows keep source order; indexes are built once in FromTable.
type Dataset struct {
	Schema   Schema
	Patients []string
	Rows     []Row

	patientIndex  map[string]int
	markerIndex   map[string]int
	mediatorIndex map[string][]int
	mediatorOrder []string
	headerIndex   map[string]int
	timeRows      []int
}

type phase int

const (
	phaseHeader phase = iota
	phaseMediator
	phaseMarker
	phaseTrailer
)

// FromTable classifies every table row into its role and indexes the result.
func FromTable(t Table, s Schema) (*Dataset, error) {
	idCol, chrCol, nameCol := -1, -1, -1
	for i, h := range t.Headers {
		switch strings.TrimSpace(h) {
		case s.IdentifierColumn:
			if idCol < 0 {
				idCol = i
			}
		case s.ChromosomeColumn:
			if chrCol < 0 {
				chrCol = i
			}
		case s.NameColumn:
			if nameCol < 0 {
				nameCol = i
			}
		}
	}
	for name, col := range map[string]int{
		s.IdentifierColumn: idCol,
		s.ChromosomeColumn: chrCol,
		s.NameColumn:       nameCol,
	} {
		if col < 0 {
			return nil, core.NewMalformedError("required column %q not found", name)
		}
		if col >= s.MetadataColumns {
			return nil, core.NewMalformedError("column %q at index %d lies inside the patient block (metadata columns: %d)", name, col, s.MetadataColumns)
		}
	}
	if s.MetadataColumns >= len(t.Headers) {
		return nil, core.NewMalformedError("no patient columns after %d metadata columns", s.MetadataColumns)
	}

	ds := &Dataset{
		Schema:        s,
		patientIndex:  make(map[string]int),
		markerIndex:   make(map[string]int),
		mediatorIndex: make(map[string][]int),
		headerIndex:   make(map[string]int),
	}
	for i, h := range t.Headers[s.MetadataColumns:] {
		id := strings.TrimSpace(h)
		if id == "" {
			return nil, core.NewMalformedError("empty patient identifier in column %d", s.MetadataColumns+i)
		}
		if _, dup := ds.patientIndex[id]; dup {
			return nil, core.NewMalformedError("duplicate patient identifier %q", id)
		}
		ds.patientIndex[id] = i
		ds.Patients = append(ds.Patients, id)
	}

	state := phaseHeader
	for r, raw := range t.Rows {
		label := cellAt(raw, idCol)
		chr := cellAt(raw, chrCol)
		isTime := label == s.TimeSentinel
		row := Row{
			Source:     r,
			Label:      label,
			Chromosome: chr,
			Name:       cellAt(raw, nameCol),
			Cells:      patientCells(raw, s.MetadataColumns, len(ds.Patients)),
		}

		switch state {
		case phaseHeader, phaseMediator:
			switch {
			case chr != "":
				state = phaseMarker
				row.Role = RoleMarker
			case isTime:
				state = phaseMediator
				row.Role = RoleTime
			case state == phaseHeader:
				if label == "" {
					continue
				}
				row.Role = RoleHeader
			case label != "":
				row.Role = RoleMediator
			default:
				continue
			}
		case phaseMarker:
			switch {
			case isTime:
				return nil, core.NewMalformedError("time row %d inside the marker block", r)
			case chr != "":
				row.Role = RoleMarker
			default:
				state = phaseTrailer
				row.Role = RoleTrailer
			}
		case phaseTrailer:
			if chr != "" {
				return nil, core.NewMalformedError("marker row %d is not contiguous with the marker block", r)
			}
			if isTime {
				return nil, core.NewMalformedError("time row %d after the marker block", r)
			}
			row.Role = RoleTrailer
		}

		if row.Role == RoleMarker && row.Name == "" {
			return nil, core.NewMalformedError("marker row %d has no %s", r, s.NameColumn)
		}
		ds.add(row)
	}

	return ds, nil
}

func (ds *Dataset) add(row Row) {
	idx := len(ds.Rows)
	ds.Rows = append(ds.Rows, row)
	switch row.Role {
	case RoleHeader:
		if _, ok := ds.headerIndex[row.Label]; !ok {
			ds.headerIndex[row.Label] = idx
		}
	case RoleTime:
		ds.timeRows = append(ds.timeRows, idx)
	case RoleMediator:
		if _, ok := ds.mediatorIndex[row.Label]; !ok {
			ds.mediatorOrder = append(ds.mediatorOrder, row.Label)
		}
		ds.mediatorIndex[row.Label] = append(ds.mediatorIndex[row.Label], idx)
	case RoleMarker:
		if _, ok := ds.markerIndex[row.Name]; !ok {
			ds.markerIndex[row.Name] = idx
		}
	}
}

func cellAt(raw []string, col int) string {
	if col < 0 || col >= len(raw) {
		return ""
	}
	return strings.TrimSpace(raw[col])
}

func patientCells(raw []string, offset, n int) []string {
	cells := make([]string, n)
	for i := 0; i < n; i++ {
		cells[i] = cellAt(raw, offset+i)
	}
	return cells
}

// Marker returns the first marker row named name
func (ds *Dataset) Marker(name string) (Row, bool) {
	idx, ok := ds.markerIndex[name]
	if !ok {
		return Row{}, false
	}
	return ds.Rows[idx], true
}

// MarkerNames lists distinct marker names in file order
func (ds *Dataset) MarkerNames() []string {
	names := make([]string, 0, len(ds.markerIndex))
	seen := make(map[string]bool, len(ds.markerIndex))
	for _, row := range ds.Rows {
		if row.Role == RoleMarker && !seen[row.Name] {
			seen[row.Name] = true
			names = append(names, row.Name)
		}
	}
	return names
}

// Mediators lists distinct mediator identifiers in first-appearance order
func (ds *Dataset) Mediators() []string {
	return append([]string(nil), ds.mediatorOrder...)
}

// MediatorRows returns the rows recorded for a mediator, one per sample, in file order
func (ds *Dataset) MediatorRows(name string) []Row {
	idx := ds.mediatorIndex[name]
	rows := make([]Row, len(idx))
	for i, j := range idx {
		rows[i] = ds.Rows[j]
	}
	return rows
}

// TimeRows returns the time-sentinel rows in file order
func (ds *Dataset) TimeRows() []Row {
	rows := make([]Row, len(ds.timeRows))
	for i, j := range ds.timeRows {
		rows[i] = ds.Rows[j]
	}
	return rows
}

// HeaderRow returns the first header row with the given label
func (ds *Dataset) HeaderRow(label string) (Row, bool) {
	idx, ok := ds.headerIndex[label]
	if !ok {
		return Row{}, false
	}
	return ds.Rows[idx], true
}

// PatientColumn returns the column position of a patient, or -1
func (ds *Dataset) PatientColumn(patient string) int {
	if i, ok := ds.patientIndex[patient]; ok {
		return i
	}
	return -1
}

// CheckMediatorShape verifies each named mediator has one row per time row.
func (ds *Dataset) CheckMediatorShape(names []string) error {
	if len(ds.timeRows) == 0 {
		return core.NewMalformedError("no %q rows in the mediator block", ds.Schema.TimeSentinel)
	}
	for _, name := range names {
		rows, ok := ds.mediatorIndex[name]
		if !ok {
			return core.NewMalformedError("mediator %q has no rows", name)
		}
		if len(rows) != len(ds.timeRows) {
			return core.NewMalformedError("mediator %q has %d rows, expected %d (one per time row)", name, len(rows), len(ds.timeRows))
		}
	}
	return nil
}

// WithoutPatients returns a copy of the dataset with the given patient columns removed.
func (ds *Dataset) WithoutPatients(excluded map[string]bool) *Dataset {
	keep := make([]int, 0, len(ds.Patients))
	for i, p := range ds.Patients {
		if !excluded[p] {
			keep = append(keep, i)
		}
	}

	out := &Dataset{
		Schema:        ds.Schema,
		Patients:      make([]string, len(keep)),
		Rows:          make([]Row, len(ds.Rows)),
		patientIndex:  make(map[string]int, len(keep)),
		markerIndex:   ds.markerIndex,
		mediatorIndex: ds.mediatorIndex,
		mediatorOrder: ds.mediatorOrder,
		headerIndex:   ds.headerIndex,
		timeRows:      ds.timeRows,
	}
	for j, i := range keep {
		out.Patients[j] = ds.Patients[i]
		out.patientIndex[ds.Patients[i]] = j
	}
	for r, row := range ds.Rows {
		cells := make([]string, len(keep))
		for j, i := range keep {
			cells[j] = row.Cells[i]
		}
		row.Cells = cells
		out.Rows[r] = row
	}
	return out
}
