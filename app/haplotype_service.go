package app

import (
	"context"
	"fmt"
	"time"

	"haplocheck/domain/core"
	"haplocheck/domain/dataset"
	domain "haplocheck/domain/haplotype"
	"haplocheck/internal"
	"haplocheck/internal/cohort"
	"haplocheck/internal/combination"
	"haplocheck/internal/haplotype"
	"haplocheck/internal/significance"
	"haplocheck/internal/timeseries"
)

// HaplotypeService runs the haplotype discovery and comparison pipeline
type HaplotypeService struct {
	logger *internal.Logger
}

// NewHaplotypeService creates the pipeline service
func NewHaplotypeService(logger *internal.Logger) *HaplotypeService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &HaplotypeService{logger: logger}
}

// stageTimer logs the duration of each pipeline stage
type stageTimer struct {
	logger *internal.Logger
	runID  core.RunID
	last   time.Time
}

func (t *stageTimer) done(stage string, fields internal.Fields) {
	now := time.Now()
	if fields == nil {
		fields = internal.Fields{}
	}
	fields["run_id"] = t.runID.String()
	fields["stage"] = stage
	fields["duration_ms"] = now.Sub(t.last).Milliseconds()
	t.logger.WithFields(fields).Info("stage complete")
	t.last = now
}

// Run validates cfg against ds and produces the three report tables.
// Configuration and data-shape problems are returned before any computation.
func (s *HaplotypeService) Run(ctx context.Context, ds *dataset.Dataset, cfg RunConfig) (*domain.Report, error) {
	started := core.Now()
	runID := core.NewRunID()
	timer := &stageTimer{logger: s.logger, runID: runID, last: started.Time()}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	markers := combination.Dedupe(cfg.Markers)
	if err := combination.Validate(markers); err != nil {
		return nil, err
	}
	for _, m := range markers {
		if _, ok := ds.Marker(m); !ok {
			return nil, core.NewMarkerNotFoundError(m)
		}
	}
	match, err := ResolveParameters(ds, cfg.Parameters, cfg.AllowPartialParameters)
	if err != nil {
		return nil, err
	}
	if len(match.Missing) > 0 {
		s.logger.Warn("parameters not found, continuing with %v: %v", match.Found, match.Missing)
	}
	if err := ds.CheckMediatorShape(match.Mediators); err != nil {
		return nil, err
	}

	ds, excluded, err := cfg.Exclusion.Apply(ds)
	if err != nil {
		return nil, err
	}
	timer.done("reduction", internal.Fields{
		"patients":  len(ds.Patients),
		"excluded":  len(excluded),
		"markers":   len(markers),
		"mediators": len(match.Mediators),
	})

	cohorts, err := cohort.IndexAll(ds, markers)
	if err != nil {
		return nil, err
	}
	series, err := timeseries.NormalizeAll(ds, match.Mediators)
	if err != nil {
		return nil, err
	}
	timer.done("normalization", internal.Fields{"patients": len(series)})

	pairs := combination.Pairs(markers)
	timer.done("combination", internal.Fields{"pairs": len(pairs)})

	records := haplotype.Intersect(pairs, cohorts)
	retained := haplotype.Retain(records, cfg.MinIntersection)
	domain.SortIntersections(records)
	pairings := haplotype.PairCounterparts(retained)
	timer.done("intersection", internal.Fields{
		"groups":   len(records),
		"retained": len(retained),
		"pairings": len(pairings),
	})

	tester := &significance.Tester{Workers: cfg.Workers, Alpha: cfg.Alpha, Logger: s.logger}
	var rows []domain.SignificanceRecord
	summary := make([]domain.PairSummary, 0, len(pairings))
	for i, p := range pairings {
		results, err := tester.Compare(ctx, p.Primary.Members, p.Counterpart.Members, match.Mediators, series)
		if err != nil {
			return nil, fmt.Errorf("comparing %s with %s: %w", p.Primary.Label(), p.Counterpart.Label(), err)
		}
		g1, g2 := p.Primary.Label(), p.Counterpart.Label()
		for _, r := range results {
			rows = append(rows, domain.SignificanceRecord{
				Group1:    g1,
				Group2:    g2,
				Parameter: r.Parameter,
				PValue:    r.PValue,
				U:         r.U,
				Count1:    p.Primary.Size,
				Count2:    p.Counterpart.Size,
				SeriesN1:  r.N1,
				SeriesN2:  r.N2,
				Median1:   r.Median1,
				Median2:   r.Median2,
			})
		}
		summary = append(summary, domain.PairSummary{
			Group1:      g1,
			Count1:      p.Primary.Size,
			Group2:      g2,
			Count2:      p.Counterpart.Size,
			Significant: significance.CountSignificant(results, cfg.Alpha),
		})
		s.logger.Debug("pairing %d/%d %s vs %s: %d parameters tested", i+1, len(pairings), g1, g2, len(results))
	}
	domain.SortSignificance(rows)
	domain.SortSummary(summary)
	timer.done("comparison", internal.Fields{"rows": len(rows), "pairings": len(summary)})

	return &domain.Report{
		RunID: runID,
		Fingerprint: core.ComputeRunFingerprint(markers, match.Found, len(ds.Patients), map[string]interface{}{
			"min_intersection": cfg.MinIntersection,
			"alpha":            cfg.Alpha,
			"exclusion":        cfg.Exclusion,
		}),
		StartedAt:    started,
		FinishedAt:   core.Now(),
		Markers:      markers,
		Parameters:   match.Mediators,
		Missing:      match.Missing,
		Excluded:     excluded,
		Intersection: records,
		Significance: rows,
		Summary:      summary,
	}, nil
}
