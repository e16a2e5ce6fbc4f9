package excel

import (
	"strconv"
	"strings"

	"haplocheck/domain/haplotype"
)

// sheet is one output table: a name, its header row and typed cell values
type sheet struct {
	name    string
	headers []string
	rows    [][]interface{}
}

var (
	IntersectionHeaders = []string{"SNP 1", "gtype 1", "n 1", "SNP 2", "gtype 2", "n 2",
		"n Intersection", "% 1 Represented", "% 2 Represented", "Intersection"}
	SignificanceHeaders = []string{"HType 1", "HType 2", "Mediator", "p Value", "Mann-Whitney U Score",
		"Count 1", "Count 2", "Series n 1", "Series n 2", "Median 1", "Median 2"}
	SummaryHeaders     = []string{"Group 1", "n 1", "Group 2", "n 2", "# Significant Mediators"}
	ScanRecordHeaders  = []string{"SNP", "Mediator", "p Value", "Mann-Whitney U Score", "ratio"}
	ScanSummaryHeaders = []string{"SNP Name", "Number Significant Mediators"}
)

// MemberSeparator joins intersection members into one cell
const MemberSeparator = ";"

func intersectionSheet(r *haplotype.Report) sheet {
	s := sheet{name: "Intersections", headers: IntersectionHeaders}
	for _, rec := range r.Intersection {
		s.rows = append(s.rows, []interface{}{
			rec.Marker1, rec.Genotype1.String(), rec.N1,
			rec.Marker2, rec.Genotype2.String(), rec.N2,
			rec.Size, rec.Pct1, rec.Pct2,
			strings.Join(rec.Members, MemberSeparator),
		})
	}
	return s
}

func significanceSheet(r *haplotype.Report) sheet {
	s := sheet{name: "Significance", headers: SignificanceHeaders}
	for _, rec := range r.Significance {
		s.rows = append(s.rows, []interface{}{
			rec.Group1, rec.Group2, rec.Parameter, rec.PValue, rec.U,
			rec.Count1, rec.Count2, rec.SeriesN1, rec.SeriesN2, rec.Median1, rec.Median2,
		})
	}
	return s
}

func summarySheet(r *haplotype.Report) sheet {
	s := sheet{name: "Summary", headers: SummaryHeaders}
	for _, rec := range r.Summary {
		s.rows = append(s.rows, []interface{}{rec.Group1, rec.Count1, rec.Group2, rec.Count2, rec.Significant})
	}
	return s
}

func scanRecordSheet(r *haplotype.ScanReport) sheet {
	s := sheet{name: "Report", headers: ScanRecordHeaders}
	for _, rec := range r.Records {
		s.rows = append(s.rows, []interface{}{rec.Marker, rec.Parameter, rec.PValue, rec.U, rec.Ratio})
	}
	return s
}

func scanSummarySheet(r *haplotype.ScanReport) sheet {
	s := sheet{name: "Table", headers: ScanSummaryHeaders}
	for _, rec := range r.Summary {
		s.rows = append(s.rows, []interface{}{rec.Marker, rec.Significant})
	}
	return s
}

// formatCell renders a typed value for text output
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return ""
}
