package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"haplocheck/domain/core"
	"haplocheck/domain/haplotype"
	"haplocheck/internal/errors"
	"haplocheck/ports"
)

// batchSize bounds rows per INSERT so bind parameters stay under the protocol limit
const batchSize = 500

// ReportRepository stores run reports in PostgreSQL
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &ReportRepository{db: db}
}

type runRow struct {
	ID          string         `db:"id"`
	Fingerprint string         `db:"fingerprint"`
	Markers     pq.StringArray `db:"markers"`
	Parameters  pq.StringArray `db:"parameters"`
	Missing     pq.StringArray `db:"missing_parameters"`
	Excluded    pq.StringArray `db:"excluded_patients"`
	StartedAt   time.Time      `db:"started_at"`
	FinishedAt  time.Time      `db:"finished_at"`
}

type intersectionRow struct {
	RunID     string         `db:"run_id"`
	Position  int            `db:"position"`
	SNP1      string         `db:"snp1"`
	Genotype1 string         `db:"genotype1"`
	N1        int            `db:"n1"`
	SNP2      string         `db:"snp2"`
	Genotype2 string         `db:"genotype2"`
	N2        int            `db:"n2"`
	Size      int            `db:"intersection_size"`
	Pct1      float64        `db:"pct1"`
	Pct2      float64        `db:"pct2"`
	Members   pq.StringArray `db:"members"`
}

type significanceRow struct {
	RunID    string `db:"run_id"`
	Position int    `db:"position"`
	haplotype.SignificanceRecord
}

type summaryRow struct {
	RunID    string `db:"run_id"`
	Position int    `db:"position"`
	haplotype.PairSummary
}

const (
	insertRun = `
		INSERT INTO haplo_runs (id, fingerprint, markers, parameters, missing_parameters, excluded_patients, started_at, finished_at)
		VALUES (:id, :fingerprint, :markers, :parameters, :missing_parameters, :excluded_patients, :started_at, :finished_at)`
	insertIntersections = `
		INSERT INTO haplo_intersections (run_id, position, snp1, genotype1, n1, snp2, genotype2, n2, intersection_size, pct1, pct2, members)
		VALUES (:run_id, :position, :snp1, :genotype1, :n1, :snp2, :genotype2, :n2, :intersection_size, :pct1, :pct2, :members)`
	insertSignificance = `
		INSERT INTO haplo_significance (run_id, position, group1, group2, parameter, p_value, u_statistic, count1, count2, series_n1, series_n2, median1, median2)
		VALUES (:run_id, :position, :group1, :group2, :parameter, :p_value, :u_statistic, :count1, :count2, :series_n1, :series_n2, :median1, :median2)`
	insertSummary = `
		INSERT INTO haplo_summary (run_id, position, group1, count1, group2, count2, significant)
		VALUES (:run_id, :position, :group1, :count1, :group2, :count2, :significant)`
)

// SaveReport writes the run and its three tables in one transaction
func (r *ReportRepository) SaveReport(ctx context.Context, report *haplotype.Report) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	id := report.RunID.String()
	run := runRow{
		ID:          id,
		Fingerprint: report.Fingerprint.String(),
		Markers:     report.Markers,
		Parameters:  report.Parameters,
		Missing:     nonNil(report.Missing),
		Excluded:    nonNil(report.Excluded),
		StartedAt:   report.StartedAt.Time(),
		FinishedAt:  report.FinishedAt.Time(),
	}
	if _, err = tx.NamedExecContext(ctx, insertRun, run); err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to insert run %s", id), translate(err))
	}

	intersections := make([]intersectionRow, len(report.Intersection))
	for i, rec := range report.Intersection {
		intersections[i] = intersectionRow{
			RunID:     id,
			Position:  i,
			SNP1:      rec.Marker1,
			Genotype1: rec.Genotype1.String(),
			N1:        rec.N1,
			SNP2:      rec.Marker2,
			Genotype2: rec.Genotype2.String(),
			N2:        rec.N2,
			Size:      rec.Size,
			Pct1:      rec.Pct1,
			Pct2:      rec.Pct2,
			Members:   nonNil(rec.Members),
		}
	}
	if err = insertBatches(ctx, tx, insertIntersections, intersections); err != nil {
		return errors.DatabaseError("failed to insert intersections", err)
	}

	significance := make([]significanceRow, len(report.Significance))
	for i, rec := range report.Significance {
		significance[i] = significanceRow{RunID: id, Position: i, SignificanceRecord: rec}
	}
	if err = insertBatches(ctx, tx, insertSignificance, significance); err != nil {
		return errors.DatabaseError("failed to insert significance rows", err)
	}

	summary := make([]summaryRow, len(report.Summary))
	for i, rec := range report.Summary {
		summary[i] = summaryRow{RunID: id, Position: i, PairSummary: rec}
	}
	if err = insertBatches(ctx, tx, insertSummary, summary); err != nil {
		return errors.DatabaseError("failed to insert summary rows", err)
	}

	if err = tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit report", err)
	}
	return nil
}

// insertBatches runs a bulk named insert per chunk of rows
func insertBatches[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T) error {
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := tx.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			return translate(err)
		}
	}
	return nil
}

// ListRuns returns stored runs, newest first
func (r *ReportRepository) ListRuns(ctx context.Context, limit, offset int) ([]ports.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []struct {
		ID          string    `db:"id"`
		Fingerprint string    `db:"fingerprint"`
		Markers     int       `db:"marker_count"`
		Parameters  int       `db:"parameter_count"`
		Pairings    int       `db:"pairing_count"`
		StartedAt   time.Time `db:"started_at"`
		FinishedAt  time.Time `db:"finished_at"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT r.id, r.fingerprint,
			cardinality(r.markers) AS marker_count,
			cardinality(r.parameters) AS parameter_count,
			(SELECT COUNT(*) FROM haplo_summary s WHERE s.run_id = r.id) AS pairing_count,
			r.started_at, r.finished_at
		FROM haplo_runs r
		ORDER BY r.started_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}

	out := make([]ports.RunSummary, len(rows))
	for i, row := range rows {
		out[i] = ports.RunSummary{
			ID:          core.RunID(row.ID),
			Fingerprint: core.Hash(row.Fingerprint),
			Markers:     row.Markers,
			Parameters:  row.Parameters,
			Pairings:    row.Pairings,
			StartedAt:   core.NewTimestamp(row.StartedAt),
			FinishedAt:  core.NewTimestamp(row.FinishedAt),
		}
	}
	return out, nil
}

// GetSummary returns the stored summary table of a run in its published order
func (r *ReportRepository) GetSummary(ctx context.Context, runID core.RunID) ([]haplotype.PairSummary, error) {
	if err := r.ensureRun(ctx, runID); err != nil {
		return nil, err
	}
	var rows []haplotype.PairSummary
	err := r.db.SelectContext(ctx, &rows, `
		SELECT group1, count1, group2, count2, significant
		FROM haplo_summary
		WHERE run_id = $1
		ORDER BY position
	`, runID.String())
	if err != nil {
		return nil, errors.DatabaseError("failed to load summary", err)
	}
	return rows, nil
}

// GetSignificance returns the stored per-parameter rows of a run in published order
func (r *ReportRepository) GetSignificance(ctx context.Context, runID core.RunID) ([]haplotype.SignificanceRecord, error) {
	if err := r.ensureRun(ctx, runID); err != nil {
		return nil, err
	}
	var rows []haplotype.SignificanceRecord
	err := r.db.SelectContext(ctx, &rows, `
		SELECT group1, group2, parameter, p_value, u_statistic, count1, count2, series_n1, series_n2, median1, median2
		FROM haplo_significance
		WHERE run_id = $1
		ORDER BY position
	`, runID.String())
	if err != nil {
		return nil, errors.DatabaseError("failed to load significance rows", err)
	}
	return rows, nil
}

func (r *ReportRepository) ensureRun(ctx context.Context, runID core.RunID) error {
	var id string
	err := r.db.GetContext(ctx, &id, `SELECT id FROM haplo_runs WHERE id = $1`, runID.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(fmt.Sprintf("run %s", runID))
	}
	if err != nil {
		return errors.DatabaseError("failed to look up run", err)
	}
	return nil
}

// translate adds the constraint name to PostgreSQL errors
func translate(err error) error {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("duplicate key violates %s: %w", pqErr.Constraint, err)
		case "23503":
			return fmt.Errorf("foreign key %s violated: %w", pqErr.Constraint, err)
		}
	}
	return err
}

func nonNil(s []string) pq.StringArray {
	if s == nil {
		return pq.StringArray{}
	}
	return s
}
