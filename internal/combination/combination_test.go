package combination

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haplocheck/domain/core"
	"haplocheck/domain/haplotype"
)

func TestParseMarkers(t *testing.T) {
	assert.Equal(t, []string{"rs1", "rs2"}, ParseMarkers("rs1  rs2\nrs1\t"))
	assert.Empty(t, ParseMarkers(" \n\t "))
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate([]string{"rs1", "rs1"}), core.ErrInsufficientMarkers)
	assert.ErrorIs(t, Validate(nil), core.ErrInvalidConfig)
	assert.NoError(t, Validate([]string{"rs1", "rs2"}))
}

func TestPairs_Order(t *testing.T) {
	got := Pairs([]string{"a", "b", "c"})
	want := []haplotype.MarkerPair{{First: "a", Second: "c"}, {First: "b", Second: "c"}, {First: "a", Second: "b"}}
	assert.Equal(t, want, got)
	assert.Nil(t, Pairs([]string{"a"}))
}

func TestPairs_CountAndUniqueness(t *testing.T) {
	for n := 2; n <= 12; n++ {
		markers := make([]string, n)
		for i := range markers {
			markers[i] = fmt.Sprintf("rs%d", i)
		}
		pairs := Pairs(markers)
		require.Len(t, pairs, n*(n-1)/2)

		seen := make(map[[2]string]bool)
		for _, p := range pairs {
			assert.NotEqual(t, p.First, p.Second, "self pair")
			key := [2]string{p.First, p.Second}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			assert.False(t, seen[key], "duplicate pair %v", key)
			seen[key] = true
		}
	}
}

func TestGroups_MatchesPairs(t *testing.T) {
	markers := []string{"rs1", "rs2", "rs3", "rs4"}
	groups, err := Groups(markers, 2)
	require.NoError(t, err)

	fromGroups := make(map[[2]string]bool)
	for _, g := range groups {
		a, b := g[0], g[1]
		if a > b {
			a, b = b, a
		}
		fromGroups[[2]string{a, b}] = true
	}
	for _, p := range Pairs(markers) {
		a, b := p.First, p.Second
		if a > b {
			a, b = b, a
		}
		assert.True(t, fromGroups[[2]string{a, b}])
	}
	assert.Len(t, fromGroups, len(Pairs(markers)))

	triples, err := Groups(markers, 3)
	require.NoError(t, err)
	assert.Len(t, triples, 4)

	_, err = Groups(markers, 5)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}
