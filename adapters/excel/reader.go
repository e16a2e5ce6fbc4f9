package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"haplocheck/domain/dataset"
	"haplocheck/internal"
	"haplocheck/internal/errors"
	"haplocheck/ports"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadTable reads the sheet (xlsx) or the whole file (csv) into a raw table.
// Cells are trimmed and short rows padded to the header width.
func (r *DataReader) ReadTable(sheet string) (dataset.Table, error) {
	internal.DefaultLogger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return dataset.Table{}, errors.InvalidInput(fmt.Sprintf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath))
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows(sheet)
	}
	if err != nil {
		return dataset.Table{}, err
	}
	if len(rows) < 2 {
		return dataset.Table{}, errors.InvalidInput(fmt.Sprintf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType)))
	}
	return processRows(rows), nil
}

func (r *DataReader) readExcelRows(sheet string) ([][]string, error) {
	if sheet == "" {
		sheet = "Sheet1"
	}
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open Excel file %s", r.filePath)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, errors.InvalidInput(fmt.Sprintf("sheet %q not found in %s (sheets: %s)", sheet, r.filePath, strings.Join(f.GetSheetList(), ", ")))
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", sheet)
	}
	internal.DefaultLogger.Debug("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open CSV file %s", r.filePath)
	}
	defer file.Close()
	return readCSV(file)
}

func readCSV(in io.Reader) ([][]string, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV file")
	}
	internal.DefaultLogger.Debug("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// processRows trims every cell and aligns data rows with the header row
func processRows(rows [][]string) dataset.Table {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(headers))
		for j := 0; j < len(row) && j < len(headers); j++ {
			cells[j] = strings.TrimSpace(row[j])
		}
		data = append(data, cells)
	}
	return dataset.Table{Headers: headers, Rows: data}
}

// Loader implements ports.DatasetLoader for xlsx and csv files
type Loader struct{}

// NewLoader creates a file loader
func NewLoader() *Loader { return &Loader{} }

// Load reads path into a raw table
func (l *Loader) Load(ctx context.Context, path, sheet string) (dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Table{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".csv":
	default:
		return dataset.Table{}, errors.InvalidInput(fmt.Sprintf("unsupported file type %q: use .xlsx or .csv", filepath.Ext(path)))
	}
	return NewDataReader(path).ReadTable(sheet)
}

// LoadDataset reads path and builds the typed dataset
func LoadDataset(ctx context.Context, loader ports.DatasetLoader, path, sheet string, schema dataset.Schema) (*dataset.Dataset, error) {
	table, err := loader.Load(ctx, path, sheet)
	if err != nil {
		return nil, err
	}
	return dataset.FromTable(table, schema)
}
