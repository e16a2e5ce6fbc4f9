package ports

import (
	"context"

	"haplocheck/domain/dataset"
)

// DatasetLoader reads a spreadsheet or CSV source into a raw table
type DatasetLoader interface {
	// Load reads the named sheet; sheet is ignored for CSV sources
	Load(ctx context.Context, path, sheet string) (dataset.Table, error)
}
