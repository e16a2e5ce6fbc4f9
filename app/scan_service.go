package app

import (
	"context"
	"fmt"

	"haplocheck/domain/core"
	"haplocheck/domain/dataset"
	domain "haplocheck/domain/haplotype"
	"haplocheck/internal"
	"haplocheck/internal/combination"
	"haplocheck/internal/scanner"
	"haplocheck/internal/significance"
	"haplocheck/internal/timeseries"
)

// ScanService compares AA against BB carriers of every balanced marker
type ScanService struct {
	logger *internal.Logger
}

// NewScanService creates the single-marker scan service
func NewScanService(logger *internal.Logger) *ScanService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ScanService{logger: logger}
}

// Run screens the markers of ds and tests the balanced ones
func (s *ScanService) Run(ctx context.Context, ds *dataset.Dataset, cfg ScanConfig) (*domain.ScanReport, error) {
	started := core.Now()
	runID := core.NewRunID()
	timer := &stageTimer{logger: s.logger, runID: runID, last: started.Time()}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var mediators []string
	if len(cfg.Parameters) > 0 {
		match, err := ResolveParameters(ds, cfg.Parameters, cfg.AllowPartialParameters)
		if err != nil {
			return nil, err
		}
		mediators = match.Mediators
	} else {
		mediators = MediatorsWithPrefix(ds, cfg.MediatorPrefix)
		if len(mediators) == 0 {
			return nil, fmt.Errorf("%w: no mediator starts with %q", core.ErrNoParameters, cfg.MediatorPrefix)
		}
	}
	if err := ds.CheckMediatorShape(mediators); err != nil {
		return nil, err
	}

	ds, excluded, err := cfg.Exclusion.Apply(ds)
	if err != nil {
		return nil, err
	}

	markers := combination.Dedupe(cfg.Markers)
	candidates, err := scanner.Screen(ds, markers, cfg.Criteria)
	if err != nil {
		return nil, err
	}
	scanned := len(markers)
	if scanned == 0 {
		scanned = len(ds.MarkerNames())
	}
	timer.done("screening", internal.Fields{
		"scanned":    scanned,
		"candidates": len(candidates),
		"excluded":   len(excluded),
	})

	series, err := timeseries.NormalizeAll(ds, mediators)
	if err != nil {
		return nil, err
	}
	timer.done("normalization", internal.Fields{"patients": len(series)})

	tester := &significance.Tester{Workers: cfg.Workers, Alpha: cfg.Alpha, Logger: s.logger}
	records, summary, err := scanner.Compare(ctx, tester, candidates, mediators, series)
	if err != nil {
		return nil, err
	}
	timer.done("comparison", internal.Fields{"rows": len(records)})

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Marker
	}
	return &domain.ScanReport{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: core.Now(),
		Scanned:    scanned,
		Candidates: names,
		Parameters: mediators,
		Excluded:   excluded,
		Records:    records,
		Summary:    summary,
	}, nil
}
