package dataset

import (
	"math"
	"strconv"
	"strings"
)

// CellKind tags the outcome of parsing a raw cell
type CellKind int

const (
	CellAbsent CellKind = iota
	CellNumeric
	CellMalformed
)

func (k CellKind) String() string {
	switch k {
	case CellNumeric:
		return "numeric"
	case CellMalformed:
		return "malformed"
	}
	return "absent"
}

// Cell is a parsed value: a number, an explicit absence, or text that is not a number.
type Cell struct {
	Kind  CellKind
	Value float64
	Raw   string
}

// Absent is the explicit missing-value cell
var Absent = Cell{Kind: CellAbsent}

var missingTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"none": true,
}

// IsMissing reports whether raw denotes a missing value
func IsMissing(raw string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(raw))]
}

// ParseCell classifies a raw cell. Missing values are never coerced to zero.
func ParseCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if IsMissing(trimmed) {
		return Cell{Kind: CellAbsent, Raw: trimmed}
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return Cell{Kind: CellMalformed, Raw: trimmed}
	}
	return Cell{Kind: CellNumeric, Value: v, Raw: trimmed}
}

// IsNumeric reports whether the cell holds a usable number
func (c Cell) IsNumeric() bool { return c.Kind == CellNumeric }

// IsAbsent reports whether the cell is missing
func (c Cell) IsAbsent() bool { return c.Kind == CellAbsent }
