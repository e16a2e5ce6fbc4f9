// Package significance compares the mediator trajectories of two patient cohorts.
package significance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"haplocheck/internal"
	"haplocheck/internal/timeseries"
)

const (
	DefaultWorkers = 4
	DefaultAlpha   = 0.05
)

// Result is the comparison of one parameter between two cohorts
type Result struct {
	Parameter string  `json:"parameter"`
	PValue    float64 `json:"p_value"`
	U         float64 `json:"u_statistic"`
	Method    Method  `json:"method"`
	N1        int     `json:"n1"`
	N2        int     `json:"n2"`
	Median1   float64 `json:"median1"`
	Median2   float64 `json:"median2"`
}

// Tester runs one Mann-Whitney test per parameter on a bounded worker pool
type Tester struct {
	Workers int
	Alpha   float64
	Logger  *internal.Logger
}

// NewTester creates a tester with the given pool size and threshold
func NewTester(workers int, alpha float64) *Tester {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	return &Tester{Workers: workers, Alpha: alpha, Logger: internal.DefaultLogger}
}

// Collect builds the value series of one parameter for a cohort. Samples are
// keyed by time label, so a later patient overwrites an earlier one at the same
// label. Only numeric values are kept. Values are returned in label order.
func Collect(cohort []string, parameter string, series map[string]timeseries.Series) []float64 {
	byTime := make(map[string]float64)
	for _, patient := range cohort {
		for _, point := range series[patient] {
			c, ok := point.Values[parameter]
			if !ok || !c.IsNumeric() {
				continue
			}
			byTime[point.Key()] = c.Value
		}
	}

	labels := make([]string, 0, len(byTime))
	for l := range byTime {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	values := make([]float64, len(labels))
	for i, l := range labels {
		values[i] = byTime[l]
	}
	return values
}

// CompareOne tests a single parameter. ok is false when either series is empty.
func CompareOne(a, b []string, parameter string, series map[string]timeseries.Series) (Result, bool, error) {
	x := Collect(a, parameter, series)
	y := Collect(b, parameter, series)
	if len(x) == 0 || len(y) == 0 {
		return Result{}, false, nil
	}

	mw, err := MannWhitneyU(x, y)
	if err != nil {
		return Result{}, false, fmt.Errorf("parameter %s: %w", parameter, err)
	}
	m1, err := stats.Median(x)
	if err != nil {
		return Result{}, false, fmt.Errorf("parameter %s: median: %w", parameter, err)
	}
	m2, err := stats.Median(y)
	if err != nil {
		return Result{}, false, fmt.Errorf("parameter %s: median: %w", parameter, err)
	}

	return Result{
		Parameter: parameter,
		PValue:    mw.P,
		U:         mw.U,
		Method:    mw.Method,
		N1:        len(x),
		N2:        len(y),
		Median1:   m1,
		Median2:   m2,
	}, true, nil
}

// Compare tests every parameter between cohorts a and b. Each task reads the
// shared series map and writes only its own slot; the returned results keep
// parameter order and omit parameters with an empty series on either side.
func (t *Tester) Compare(ctx context.Context, a, b []string, parameters []string, series map[string]timeseries.Series) ([]Result, error) {
	start := time.Now()
	slots := make([]*Result, len(parameters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers())
	for i, param := range parameters {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, ok, err := CompareOne(a, b, param, series)
			if err != nil {
				return err
			}
			if ok {
				slots[i] = &res
			} else {
				t.logger().Debug("parameter %s: empty series, skipped", param)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	t.logger().Debug("compared %d parameters (%d with data) in %v", len(parameters), len(results), time.Since(start))
	return results, nil
}

func (t *Tester) workers() int {
	if t.Workers < 1 {
		return DefaultWorkers
	}
	return t.Workers
}

func (t *Tester) logger() *internal.Logger {
	if t.Logger == nil {
		return internal.DefaultLogger
	}
	return t.Logger
}

// CountSignificant counts results with a p-value below alpha
func CountSignificant(results []Result, alpha float64) int {
	n := 0
	for _, r := range results {
		if r.PValue < alpha {
			n++
		}
	}
	return n
}

// SortByPValue orders results by p-value, largest first, keeping ties stable
func SortByPValue(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PValue > results[j].PValue
	})
}
