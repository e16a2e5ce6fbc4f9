package dataset

// Schema names the metadata columns of the input table
type Schema struct {
	IdentifierColumn string `json:"identifier_column" mapstructure:"identifier_column"`
	ChromosomeColumn string `json:"chromosome_column" mapstructure:"chromosome_column"`
	NameColumn       string `json:"name_column" mapstructure:"name_column"`
	TimeSentinel     string `json:"time_sentinel" mapstructure:"time_sentinel"`
	// MetadataColumns is the number of leading non-patient columns
	MetadataColumns int `json:"metadata_columns" mapstructure:"metadata_columns"`
}

// DefaultSchema returns the layout used by the clinical genotype exports
func DefaultSchema() Schema {
	return Schema{
		IdentifierColumn: "patient_id",
		ChromosomeColumn: "Chr",
		NameColumn:       "Name",
		TimeSentinel:     "time",
		MetadataColumns:  12,
	}
}

// Role classifies a dataset row
type Role int

const (
	RoleHeader Role = iota
	RoleTime
	RoleMediator
	RoleMarker
	RoleTrailer
)

func (r Role) String() string {
	switch r {
	case RoleHeader:
		return "header"
	case RoleTime:
		return "time"
	case RoleMediator:
		return "mediator"
	case RoleMarker:
		return "marker"
	case RoleTrailer:
		return "trailer"
	}
	return "unknown"
}

// Row is one typed dataset row. Cells are aligned with Dataset.Patients.
type Row struct {
	Source     int // zero-based data row position in the source table
	Role       Role
	Label      string
	Chromosome string
	Name       string
	Cells      []string
}

// Table is the generic tabular structure produced by file loaders
type Table struct {
	Headers []string
	Rows    [][]string
}
