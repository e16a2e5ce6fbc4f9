package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haplocheck/domain/dataset"
	"haplocheck/internal/errors"
	"haplocheck/internal/testkit"
)

func generatedTable() dataset.Table {
	cfg := testkit.DefaultCohortConfig()
	cfg.PatientCount = 12
	return testkit.NewCohortGenerator(cfg).GenerateTable()
}

func TestLoader_RoundTrip(t *testing.T) {
	table := generatedTable()

	for _, name := range []string{"cohort.csv", "cohort.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteTable(path, "Sheet1", table))

			ds, err := LoadDataset(context.Background(), NewLoader(), path, "", dataset.DefaultSchema())
			require.NoError(t, err)

			assert.Len(t, ds.Patients, 12)
			assert.Equal(t, testkit.DefaultCohortConfig().Markers, ds.MarkerNames())
			assert.Equal(t, testkit.DefaultCohortConfig().Mediators, ds.Mediators())
			assert.NoError(t, ds.CheckMediatorShape(ds.Mediators()))
		})
	}
}

func TestLoader_NamedSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohort.xlsx")
	require.NoError(t, WriteTable(path, "Data", generatedTable()))

	_, err := NewLoader().Load(context.Background(), path, "Data")
	require.NoError(t, err)

	_, err = NewLoader().Load(context.Background(), path, "Missing")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestLoader_Rejects(t *testing.T) {
	dir := t.TempDir()

	_, err := NewLoader().Load(context.Background(), filepath.Join(dir, "cohort.json"), "")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = NewLoader().Load(context.Background(), filepath.Join(dir, "absent.csv"), "")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	headerOnly := filepath.Join(dir, "header.csv")
	require.NoError(t, os.WriteFile(headerOnly, []byte("patient_id,Chr,Name\n"), 0o644))
	_, err = NewLoader().Load(context.Background(), headerOnly, "")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestReadTable_TrimsAndPads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	require.NoError(t, os.WriteFile(path, []byte(" a , b ,c\n 1 ,2\n3,4,5,6\n"), 0o644))

	table, err := NewDataReader(path).ReadTable("")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, table.Headers)
	assert.Equal(t, [][]string{{"1", "2", ""}, {"3", "4", "5"}}, table.Rows)
}
