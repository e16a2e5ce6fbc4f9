package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haplocheck/internal/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateThenRun(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, err := execute(t, "generate", "-o", "cohort.csv", "--patients", "300", "--effect-marker", "rs1800795", "--effect", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 300 patients")

	out, err = execute(t, "run", "-f", "cohort.csv", "-m", "rs1800795 rs1800629", "-p", "IL6", "-p", "TNF",
		"--min-intersection", "5", "--dir", "reports", "-o", "cohort")
	require.NoError(t, err)
	assert.Contains(t, out, "markers: 2  mediators: 2")

	for _, name := range []string{"cohort.csv", "cohort HType Report.csv", "cohort HType Table.csv"} {
		_, statErr := os.Stat(filepath.Join(dir, "reports", name))
		assert.NoError(t, statErr, name)
	}
}

func TestScanWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := execute(t, "generate", "-o", "cohort.xlsx", "--patients", "200")
	require.NoError(t, err)

	out, err := execute(t, "scan", "-f", "cohort.xlsx", "--format", "xlsx", "-o", "scan")
	require.NoError(t, err)
	assert.Contains(t, out, "markers scanned: 4")

	_, err = os.Stat(filepath.Join(dir, "scan Scan.xlsx"))
	assert.NoError(t, err)
}

func TestRunExitCodes(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := execute(t, "generate", "-o", "cohort.csv", "--patients", "50")
	require.NoError(t, err)

	_, err = execute(t, "run", "-f", "cohort.csv", "-m", "rs1800795", "-p", "IL6")
	require.Error(t, err)
	assert.Equal(t, 2, errors.ExitCode(err))

	_, err = execute(t, "run", "-f", "cohort.csv", "-m", "rs1800795 rs404", "-p", "IL6")
	require.Error(t, err)
	assert.Equal(t, 3, errors.ExitCode(err))

	_, err = execute(t, "run", "-f", "cohort.csv", "-m", "rs1800795 rs16944", "-p", "IL6", "--format", "pdf")
	require.Error(t, err)
	assert.Equal(t, 2, errors.ExitCode(err))
}

func TestMigrateRequiresDatabase(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HAPLO_DATABASE_URL", "")

	_, err := execute(t, "migrate")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
