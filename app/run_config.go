package app

import (
	"fmt"

	"haplocheck/domain/core"
	"haplocheck/domain/dataset"
	"haplocheck/internal/haplotype"
	"haplocheck/internal/scanner"
	"haplocheck/internal/significance"
)

// RunConfig is the immutable configuration of one haplotype comparison run
type RunConfig struct {
	Markers                []string              `json:"markers"`
	Parameters             []string              `json:"parameters"`
	MinIntersection        int                   `json:"min_intersection"`
	Alpha                  float64               `json:"alpha"`
	Workers                int                   `json:"workers"`
	GroupSize              int                   `json:"group_size"`
	AllowPartialParameters bool                  `json:"allow_partial_parameters"`
	Exclusion              dataset.ExclusionRule `json:"exclusion"`
}

// DefaultRunConfig returns the thresholds used by the clinical analyses
func DefaultRunConfig() RunConfig {
	return RunConfig{
		MinIntersection: haplotype.DefaultMinIntersection,
		Alpha:           significance.DefaultAlpha,
		Workers:         significance.DefaultWorkers,
		GroupSize:       2,
	}
}

// Validate checks the numeric settings. Marker and parameter lists are checked
// against the dataset by the service.
func (c RunConfig) Validate() error {
	if c.GroupSize != 2 {
		return fmt.Errorf("%w: group size %d is not supported, only 2", core.ErrInvalidConfig, c.GroupSize)
	}
	if c.MinIntersection < 1 {
		return fmt.Errorf("%w: minimum intersection must be at least 1, got %d", core.ErrInvalidConfig, c.MinIntersection)
	}
	return validateCommon(c.Workers, c.Alpha)
}

func validateCommon(workers int, alpha float64) error {
	if workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", core.ErrInvalidConfig, workers)
	}
	if alpha <= 0 || alpha >= 1 {
		return fmt.Errorf("%w: alpha must lie in (0,1), got %g", core.ErrInvalidConfig, alpha)
	}
	return nil
}

// ScanConfig configures a single-marker scan
type ScanConfig struct {
	// Markers limits the scan; empty scans every marker row
	Markers    []string `json:"markers"`
	Parameters []string `json:"parameters"`
	// MediatorPrefix selects mediators when no parameters are given
	MediatorPrefix         string                `json:"mediator_prefix"`
	Criteria               scanner.Criteria      `json:"criteria"`
	Alpha                  float64               `json:"alpha"`
	Workers                int                   `json:"workers"`
	AllowPartialParameters bool                  `json:"allow_partial_parameters"`
	Exclusion              dataset.ExclusionRule `json:"exclusion"`
}

// DefaultScanConfig scans plasma mediators of survivors
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		MediatorPrefix: "plasma_2_",
		Criteria:       scanner.DefaultCriteria(),
		Alpha:          significance.DefaultAlpha,
		Workers:        significance.DefaultWorkers,
		Exclusion:      dataset.ExclusionRule{Row: "discharge_discharged_to", Value: "Death"},
	}
}

// Validate checks the numeric settings
func (c ScanConfig) Validate() error {
	if c.Criteria.MinCohort < 0 || c.Criteria.Tolerance < 0 {
		return fmt.Errorf("%w: scan criteria must not be negative", core.ErrInvalidConfig)
	}
	if len(c.Parameters) == 0 && c.MediatorPrefix == "" {
		return fmt.Errorf("%w: neither parameters nor a mediator prefix given", core.ErrNoParameters)
	}
	return validateCommon(c.Workers, c.Alpha)
}
