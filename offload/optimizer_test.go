package offload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOptimizer_PrefersAllLocalWhenRemoteIsSlow reproduces the textbook
// case: cheap device layers against an expensive edge make the full-local
// split the cheapest candidate.
func TestOptimizer_PrefersAllLocalWhenRemoteIsSlow(t *testing.T) {
	o, err := NewOptimizer(5)
	require.NoError(t, err)

	local := []float64{10, 10, 10, 10, 10}
	remote := []float64{0, 50, 50, 50, 50}
	sizes := []float64{100, 100, 100, 100, 100}
	rate := 1000.0 // transfer = 0.1 per boundary

	costs, err := o.CandidateCosts(local, remote, sizes, rate)
	require.NoError(t, err)
	assert.InDelta(t, 210.1, costs[0].Total, 1e-9) // 10 + 0.1 + 200
	assert.InDelta(t, 50.0, costs[4].Total, 1e-9)  // 50 + 0 + 0
	assert.Equal(t, 0.0, costs[4].Transfer, "last layer ships nothing")

	split, err := o.Compute(local, remote, sizes, rate)
	require.NoError(t, err)
	assert.Equal(t, 4, split)
}

func TestOptimizer_PrefersOffloadWhenDeviceIsSlow(t *testing.T) {
	o, err := NewOptimizer(4)
	require.NoError(t, err)

	local := []float64{10, 10, 10, 10}
	remote := []float64{1, 1, 1, 1}
	sizes := []float64{1, 1, 1, 1}
	split, err := o.Compute(local, remote, sizes, 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, split, "everything after layer 0 belongs on the edge")
}

// TestOptimizer_ScaleInvariance: scaling sizes and rate by the same factor
// must not move the split point (only their ratio enters the cost).
func TestOptimizer_ScaleInvariance(t *testing.T) {
	o, err := NewOptimizer(5)
	require.NoError(t, err)

	local := []float64{0.5, 1, 2, 1, 0.5}
	remote := []float64{0.2, 0.4, 0.8, 0.4, 0.2}
	sizes := []float64{500, 400, 300, 200, 100}

	base, err := o.Compute(local, remote, sizes, 1000)
	require.NoError(t, err)

	scaled := make([]float64, len(sizes))
	for i, s := range sizes {
		scaled[i] = s * 1e3
	}
	same, err := o.Compute(local, remote, scaled, 1000*1e3)
	require.NoError(t, err)
	assert.Equal(t, base, same)
}

func TestOptimizer_TiePrefersSmallerIndex(t *testing.T) {
	o, err := NewOptimizer(2)
	require.NoError(t, err)

	// total(0) = 1 + 0 + 1 = 2, total(1) = 1 + 1 = 2: exact tie.
	split, err := o.Compute([]float64{1, 1}, []float64{0, 1}, []float64{0, 0}, 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, split, "ties go to the smaller split (more offloaded)")
}

func TestOptimizer_MismatchedLengths(t *testing.T) {
	o, err := NewOptimizer(3)
	require.NoError(t, err)

	_, err = o.Compute([]float64{1, 1}, []float64{1, 1, 1}, []float64{1, 1, 1}, 1000)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))

	_, err = o.Compute([]float64{1, 1, 1}, []float64{1, 1, 1}, []float64{1}, 1000)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestOptimizer_InvalidRate(t *testing.T) {
	o, err := NewOptimizer(2)
	require.NoError(t, err)

	_, err = o.Compute([]float64{1, 1}, []float64{1, 1}, []float64{1, 1}, 0)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestOptimizer_InvalidLayerCount(t *testing.T) {
	_, err := NewOptimizer(0)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestOptimizer_SingleLayer(t *testing.T) {
	o, err := NewOptimizer(1)
	require.NoError(t, err)

	split, err := o.Compute([]float64{1}, []float64{1}, []float64{100}, 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, split, "a single layer can only split at 0")
}
