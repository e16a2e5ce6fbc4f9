// Package timeseries extracts the cleaned parameter-by-time table of each patient.
package timeseries

import (
	"strings"

	"haplocheck/domain/dataset"
)

// Point is one sample of a patient: the normalized time label and the cleaned
// value of every mediator recorded with it.
type Point struct {
	Time        string
	TimePresent bool
	Values      map[string]dataset.Cell
}

// Key is the label used to join samples across patients. An absent time keys as "".
func (p Point) Key() string {
	if !p.TimePresent {
		return ""
	}
	return p.Time
}

// Series is the ordered list of samples for one patient
type Series []Point

// NormalizeTime canonicalises hour labels: "h12" and "hr12r" become "12h", "h6"
// becomes "06h". Labels without an "h" are returned unchanged.
func NormalizeTime(label string) string {
	if !strings.Contains(label, "h") {
		return label
	}
	if strings.HasPrefix(label, "h") {
		label = label[1:] + "h"
	}
	label = strings.ReplaceAll(label, "r", "")
	for len(label) < 3 {
		label = "0" + label
	}
	return label
}

var censoring = strings.NewReplacer(">", "", "<", "", "%", "")

// CleanValue strips censoring marks and parses the numeric remainder
func CleanValue(raw string) dataset.Cell {
	return dataset.ParseCell(censoring.Replace(raw))
}

// Normalize builds the series of one patient over the given mediators. Mediator
// rows are matched to time rows by position; call Dataset.CheckMediatorShape first.
// A sample is dropped when its time and every mediator value are absent.
func Normalize(patient string, ds *dataset.Dataset, mediators []string) Series {
	col := ds.PatientColumn(patient)
	if col < 0 {
		return nil
	}

	rowsByMediator := make(map[string][]dataset.Row, len(mediators))
	for _, m := range mediators {
		rowsByMediator[m] = ds.MediatorRows(m)
	}

	times := ds.TimeRows()
	series := make(Series, 0, len(times))
	for k, tr := range times {
		p := Point{Values: make(map[string]dataset.Cell, len(mediators))}
		raw := tr.Cells[col]
		if !dataset.IsMissing(raw) {
			p.Time = NormalizeTime(strings.TrimSpace(raw))
			p.TimePresent = true
		}

		empty := !p.TimePresent
		for _, m := range mediators {
			rows := rowsByMediator[m]
			if k >= len(rows) {
				p.Values[m] = dataset.Absent
				continue
			}
			c := CleanValue(rows[k].Cells[col])
			p.Values[m] = c
			if !c.IsAbsent() {
				empty = false
			}
		}
		if empty {
			continue
		}
		series = append(series, p)
	}
	return series
}

// NormalizeAll normalizes every patient once. The returned map is read-only.
func NormalizeAll(ds *dataset.Dataset, mediators []string) (map[string]Series, error) {
	if err := ds.CheckMediatorShape(mediators); err != nil {
		return nil, err
	}
	out := make(map[string]Series, len(ds.Patients))
	for _, p := range ds.Patients {
		out[p] = Normalize(p, ds, mediators)
	}
	return out, nil
}
