package offload

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshGate_DisabledNeverFires(t *testing.T) {
	// Probability is irrelevant while disabled.
	g, err := NewRefreshGate(false, 1.0, nil)
	require.NoError(t, err)
	for i := 0; i < 10000; i++ {
		if g.ShouldForceRefresh() {
			t.Fatalf("disabled gate fired on call %d", i)
		}
	}
}

func TestRefreshGate_ProbabilityOneAlwaysFires(t *testing.T) {
	g, err := NewRefreshGate(true, 1.0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		if !g.ShouldForceRefresh() {
			t.Fatalf("probability-1 gate failed to fire on call %d", i)
		}
	}
}

func TestRefreshGate_ProbabilityZeroNeverFires(t *testing.T) {
	g, err := NewRefreshGate(true, 0.0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		if g.ShouldForceRefresh() {
			t.Fatalf("probability-0 gate fired on call %d", i)
		}
	}
}

func TestRefreshGate_DeterministicUnderSeed(t *testing.T) {
	g1, err := NewRefreshGate(true, 0.5, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	g2, err := NewRefreshGate(true, 0.5, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		assert.Equal(t, g1.ShouldForceRefresh(), g2.ShouldForceRefresh(), "call %d diverged", i)
	}
}

func TestRefreshGate_ApproximateRate(t *testing.T) {
	g, err := NewRefreshGate(true, 0.3, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	fired := 0
	for i := 0; i < 10000; i++ {
		if g.ShouldForceRefresh() {
			fired++
		}
	}
	assert.InDelta(t, 3000, fired, 300, "30 percent gate should fire roughly 3000 of 10000 times")
}

func TestRefreshGate_InvalidConstruction(t *testing.T) {
	_, err := NewRefreshGate(true, -0.1, rand.New(rand.NewSource(1)))
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))

	_, err = NewRefreshGate(true, 1.1, rand.New(rand.NewSource(1)))
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))

	_, err = NewRefreshGate(true, 0.5, nil)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration), "enabled gate needs a random source")
}
