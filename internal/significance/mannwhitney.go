package significance

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Method names the way a p-value was obtained
type Method string

const (
	MethodExact      Method = "exact"
	MethodAsymptotic Method = "asymptotic"
)

// exactLimit is the largest smaller-sample size for which the exact null
// distribution is used when the samples contain no ties
const exactLimit = 8

// ErrEmptySample is returned when either sample has no observations
var ErrEmptySample = errors.New("mann-whitney: empty sample")

// MannWhitney is the outcome of a two-sided Mann-Whitney U test
type MannWhitney struct {
	// U is the statistic of the first sample: R1 - n1(n1+1)/2
	U      float64
	P      float64
	Method Method
}

// MannWhitneyU runs a two-sided rank-sum test of x against y. The exact
// distribution is used when the smaller sample has at most 8 observations and
// there are no ties; otherwise the normal approximation with tie and continuity
// correction is used.
func MannWhitneyU(x, y []float64) (MannWhitney, error) {
	n1, n2 := len(x), len(y)
	if n1 == 0 || n2 == 0 {
		return MannWhitney{}, ErrEmptySample
	}

	ranks, tieTerm := rank(x, y)
	r1 := 0.0
	for _, r := range ranks[:n1] {
		r1 += r
	}
	fn1, fn2 := float64(n1), float64(n2)
	u1 := r1 - fn1*(fn1+1)/2
	u2 := fn1*fn2 - u1
	u := math.Max(u1, u2)

	res := MannWhitney{U: u1}
	if (n1 <= exactLimit || n2 <= exactLimit) && tieTerm == 0 {
		res.Method = MethodExact
		res.P = 2 * exactSurvival(n1, n2, u)
	} else {
		res.Method = MethodAsymptotic
		res.P = asymptoticP(n1, n2, u, tieTerm)
	}
	res.P = clip(res.P)
	return res, nil
}

// rank assigns average ranks to the pooled sample, x first, and returns
// sum(t^3 - t) over tie groups.
func rank(x, y []float64) ([]float64, float64) {
	n := len(x) + len(y)
	pooled := make([]float64, 0, n)
	pooled = append(pooled, x...)
	pooled = append(pooled, y...)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return pooled[order[a]] < pooled[order[b]]
	})

	ranks := make([]float64, n)
	tieTerm := 0.0
	for i := 0; i < n; {
		j := i + 1
		for j < n && pooled[order[j]] == pooled[order[i]] {
			j++
		}
		// positions i..j-1 share the average of ranks i+1..j
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		if t := float64(j - i); t > 1 {
			tieTerm += t*t*t - t
		}
		i = j
	}
	return ranks, tieTerm
}

func asymptoticP(n1, n2 int, u, tieTerm float64) float64 {
	fn1, fn2 := float64(n1), float64(n2)
	n := fn1 + fn2
	mu := fn1 * fn2 / 2
	variance := fn1 * fn2 / 12 * ((n + 1) - tieTerm/(n*(n-1)))
	if variance <= 0 {
		return 1
	}
	z := (u - mu - 0.5) / math.Sqrt(variance)
	return 2 * distuv.UnitNormal.Survival(z)
}

// exactSurvival returns P(U >= u) under the null hypothesis. The counts of each
// U value are the coefficients of the Gaussian binomial [n1+n2 choose m]_q,
// built one factor at a time so every intermediate polynomial stays non-negative.
func exactSurvival(n1, n2 int, u float64) float64 {
	m, n := n1, n2
	if m > n {
		m, n = n, m
	}
	maxU := m * n
	coef := make([]float64, maxU+1)
	coef[0] = 1
	for i := 1; i <= m; i++ {
		// multiply by (1 - q^(n+i))
		for k := maxU; k >= n+i; k-- {
			coef[k] -= coef[k-n-i]
		}
		// divide by (1 - q^i)
		for k := i; k <= maxU; k++ {
			coef[k] += coef[k-i]
		}
	}

	total, tail := 0.0, 0.0
	threshold := int(math.Ceil(u))
	for k, c := range coef {
		total += c
		if k >= threshold {
			tail += c
		}
	}
	return tail / total
}

func clip(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 1
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
