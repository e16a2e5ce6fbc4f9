package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haplocheck/domain/core"
	"haplocheck/domain/genotype"
	"haplocheck/domain/haplotype"
	apperrors "haplocheck/internal/errors"
)

func setupTestDB(t *testing.T) (*ReportRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &ReportRepository{db: sqlx.NewDb(db, "postgres")}, mock
}

func sampleReport() *haplotype.Report {
	key := haplotype.Key{Marker1: "rs1", Genotype1: genotype.HomozygousMajor, Marker2: "rs2", Genotype2: genotype.HomozygousMinor}
	return &haplotype.Report{
		RunID:       core.NewRunID(),
		Fingerprint: core.NewHash([]byte("run")),
		StartedAt:   core.NewTimestamp(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)),
		FinishedAt:  core.NewTimestamp(time.Date(2024, 3, 1, 10, 0, 5, 0, time.UTC)),
		Markers:     []string{"rs1", "rs2"},
		Parameters:  []string{"plasma_2_IL6"},
		Intersection: []haplotype.IntersectionRecord{
			{Key: key, N1: 40, N2: 35, Size: 25, Pct1: 0.625, Pct2: 25.0 / 35, Members: []string{"HR-1", "HR-2"}},
		},
		Significance: []haplotype.SignificanceRecord{
			{Group1: "rs1 AA & rs2 BB", Group2: "rs1 BB & rs2 AA", Parameter: "plasma_2_IL6", PValue: 0.4, U: 12, Count1: 25, Count2: 22},
		},
		Summary: []haplotype.PairSummary{
			{Group1: "rs1 AA & rs2 BB", Count1: 25, Group2: "rs1 BB & rs2 AA", Count2: 22, Significant: 0},
		},
	}
}

func TestSaveReport_SingleTransaction(t *testing.T) {
	repo, mock := setupTestDB(t)
	report := sampleReport()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO haplo_runs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO haplo_intersections").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO haplo_significance").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO haplo_summary").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveReport(context.Background(), report))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReport_RollsBackOnFailure(t *testing.T) {
	repo, mock := setupTestDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO haplo_runs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO haplo_intersections").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.SaveReport(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReport_EmptyTablesSkipInserts(t *testing.T) {
	repo, mock := setupTestDB(t)
	report := sampleReport()
	report.Intersection, report.Significance, report.Summary = nil, nil, nil

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO haplo_runs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveReport(context.Background(), report))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSummary(t *testing.T) {
	repo, mock := setupTestDB(t)
	runID := core.NewRunID()

	mock.ExpectQuery("SELECT id FROM haplo_runs").
		WithArgs(runID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(runID.String()))
	mock.ExpectQuery("SELECT group1, count1, group2, count2, significant").
		WithArgs(runID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"group1", "count1", "group2", "count2", "significant"}).
			AddRow("rs1 AA & rs2 AA", 30, "rs1 AA & rs2 BB", 30, 0).
			AddRow("rs1 BB & rs2 BB", 21, "rs1 BB & rs2 AA", 24, 3))

	rows, err := repo.GetSummary(context.Background(), runID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "rs1 BB & rs2 BB", rows[1].Group1)
	assert.Equal(t, 3, rows[1].Significant)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSummary_UnknownRun(t *testing.T) {
	repo, mock := setupTestDB(t)
	runID := core.NewRunID()

	mock.ExpectQuery("SELECT id FROM haplo_runs").
		WithArgs(runID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetSummary(context.Background(), runID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRuns(t *testing.T) {
	repo, mock := setupTestDB(t)
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM haplo_runs r").
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fingerprint", "marker_count", "parameter_count", "pairing_count", "started_at", "finished_at"}).
			AddRow("0190f1e2-0000-7000-8000-000000000001", "abc", 4, 6, 2, started, started.Add(time.Minute)))

	runs, err := repo.ListRuns(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 4, runs[0].Markers)
	assert.Equal(t, 2, runs[0].Pairings)
	assert.Equal(t, time.Minute, runs[0].FinishedAt.Sub(runs[0].StartedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}
