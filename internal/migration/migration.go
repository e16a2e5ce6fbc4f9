package migration

import (
	"context"

	"haplocheck/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the report repository schema
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	steps := []struct {
		name string
		sql  string
	}{
		{"haplo_runs table", createRunsTable},
		{"haplo_intersections table", createIntersectionsTable},
		{"haplo_significance table", createSignificanceTable},
		{"haplo_summary table", createSummaryTable},
		{"indexes", createIndexes},
	}
	for _, step := range steps {
		if _, err := db.ExecContext(ctx, step.sql); err != nil {
			return errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "failed to create %s", step.name))
		}
	}
	return nil
}

const createRunsTable = `
	CREATE TABLE IF NOT EXISTS haplo_runs (
		id UUID PRIMARY KEY,
		fingerprint VARCHAR(64) NOT NULL,
		markers TEXT[] NOT NULL,
		parameters TEXT[] NOT NULL,
		missing_parameters TEXT[] NOT NULL DEFAULT '{}',
		excluded_patients TEXT[] NOT NULL DEFAULT '{}',
		started_at TIMESTAMP WITH TIME ZONE NOT NULL,
		finished_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

const createIntersectionsTable = `
	CREATE TABLE IF NOT EXISTS haplo_intersections (
		run_id UUID NOT NULL REFERENCES haplo_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		snp1 VARCHAR(255) NOT NULL,
		genotype1 CHAR(2) NOT NULL,
		n1 INTEGER NOT NULL,
		snp2 VARCHAR(255) NOT NULL,
		genotype2 CHAR(2) NOT NULL,
		n2 INTEGER NOT NULL,
		intersection_size INTEGER NOT NULL,
		pct1 DOUBLE PRECISION NOT NULL,
		pct2 DOUBLE PRECISION NOT NULL,
		members TEXT[] NOT NULL,
		PRIMARY KEY (run_id, position)
	)
`

const createSignificanceTable = `
	CREATE TABLE IF NOT EXISTS haplo_significance (
		run_id UUID NOT NULL REFERENCES haplo_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		group1 VARCHAR(512) NOT NULL,
		group2 VARCHAR(512) NOT NULL,
		parameter VARCHAR(255) NOT NULL,
		p_value DOUBLE PRECISION NOT NULL,
		u_statistic DOUBLE PRECISION NOT NULL,
		count1 INTEGER NOT NULL,
		count2 INTEGER NOT NULL,
		series_n1 INTEGER NOT NULL,
		series_n2 INTEGER NOT NULL,
		median1 DOUBLE PRECISION NOT NULL,
		median2 DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, position)
	)
`

const createSummaryTable = `
	CREATE TABLE IF NOT EXISTS haplo_summary (
		run_id UUID NOT NULL REFERENCES haplo_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		group1 VARCHAR(512) NOT NULL,
		count1 INTEGER NOT NULL,
		group2 VARCHAR(512) NOT NULL,
		count2 INTEGER NOT NULL,
		significant INTEGER NOT NULL,
		PRIMARY KEY (run_id, position)
	)
`

const createIndexes = `
	CREATE INDEX IF NOT EXISTS idx_haplo_runs_started_at ON haplo_runs(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_haplo_runs_fingerprint ON haplo_runs(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_haplo_significance_parameter ON haplo_significance(run_id, parameter)
`
