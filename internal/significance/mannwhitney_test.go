package significance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMannWhitneyU_KnownValues(t *testing.T) {
	tests := []struct {
		name   string
		x, y   []float64
		u, p   float64
		method Method
	}{
		{
			name:   "exact separated",
			x:      []float64{1, 2, 3},
			y:      []float64{4, 5, 6},
			u:      0,
			p:      0.1,
			method: MethodExact,
		},
		{
			name:   "exact interleaved",
			x:      []float64{1.5, 3.2, 4.8, 7.1},
			y:      []float64{2.2, 5.9, 6.3, 8.4, 9.9},
			u:      5,
			p:      0.2857142857142857,
			method: MethodExact,
		},
		{
			name:   "asymptotic separated",
			x:      []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			y:      []float64{11, 12, 13, 14, 15, 16, 17, 18, 19, 20},
			u:      0,
			p:      0.0001826717911095504,
			method: MethodAsymptotic,
		},
		{
			name:   "ties force asymptotic",
			x:      []float64{1, 2, 2, 3, 4},
			y:      []float64{2, 3, 5, 6, 7, 8},
			u:      4.5,
			p:      0.06476896969888765,
			method: MethodAsymptotic,
		},
		{
			name:   "asymptotic interleaved",
			x:      []float64{1, 3, 5, 7, 9, 11, 13, 15, 17, 19},
			y:      []float64{2, 4, 6, 8, 10, 12, 14, 16, 18, 20},
			u:      45,
			p:      0.7337299956962473,
			method: MethodAsymptotic,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := MannWhitneyU(tt.x, tt.y)
			require.NoError(t, err)
			assert.InDelta(t, tt.u, res.U, 1e-9)
			assert.InDelta(t, tt.p, res.P, 1e-9)
			assert.Equal(t, tt.method, res.Method)
		})
	}
}

func TestMannWhitneyU_Symmetric(t *testing.T) {
	x := []float64{3.1, 4.7, 2.2, 9.0, 5.5, 6.1, 7.3, 1.9, 8.8, 4.1}
	y := []float64{5.0, 6.6, 7.7, 8.1, 9.4, 10.2, 3.3, 11.9, 12.5}
	a, err := MannWhitneyU(x, y)
	require.NoError(t, err)
	b, err := MannWhitneyU(y, x)
	require.NoError(t, err)

	assert.InDelta(t, a.P, b.P, 1e-12)
	assert.InDelta(t, float64(len(x)*len(y)), a.U+b.U, 1e-9)
}

func TestMannWhitneyU_Degenerate(t *testing.T) {
	_, err := MannWhitneyU(nil, []float64{1})
	assert.ErrorIs(t, err, ErrEmptySample)

	// every value tied: zero variance
	res, err := MannWhitneyU([]float64{5, 5, 5}, []float64{5, 5, 5})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.P)

	// identical samples never exceed 1
	res, err = MannWhitneyU([]float64{1, 4}, []float64{2, 3})
	require.NoError(t, err)
	assert.Equal(t, MethodExact, res.Method)
	assert.Equal(t, 1.0, res.P)
}

func TestExactSurvival_Boundaries(t *testing.T) {
	assert.InDelta(t, 1.0, exactSurvival(3, 4, 0), 1e-12)
	// only one arrangement reaches the maximum
	assert.InDelta(t, 1.0/35, exactSurvival(3, 4, 12), 1e-12)
	assert.InDelta(t, exactSurvival(4, 3, 10), exactSurvival(3, 4, 10), 1e-12)
}
