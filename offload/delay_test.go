package offload

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func delayRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestDelayModel_NoneAndEmpty(t *testing.T) {
	for _, typ := range []string{"", "none"} {
		m, err := NewDelayModel(DelayConfig{Type: typ}, delayRNG())
		require.NoError(t, err)
		assert.Equal(t, 0.0, m.Sample())
	}
}

func TestDelayModel_Static(t *testing.T) {
	m, err := NewDelayModel(DelayConfig{Type: "static", Value: 0.005}, delayRNG())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		assert.Equal(t, 0.005, m.Sample())
	}
}

func TestDelayModel_UniformWithinBounds(t *testing.T) {
	m, err := NewDelayModel(DelayConfig{Type: "uniform", Min: 0.001, Max: 0.002}, delayRNG())
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		s := m.Sample()
		assert.GreaterOrEqual(t, s, 0.001)
		assert.LessOrEqual(t, s, 0.002)
	}
}

func TestDelayModel_GaussianClampsAtZero(t *testing.T) {
	// Mean 0 with nonzero sigma draws negative half the time; the model
	// must clamp those to zero.
	m, err := NewDelayModel(DelayConfig{Type: "gaussian", Mean: 0, StdDev: 0.001}, delayRNG())
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		assert.GreaterOrEqual(t, m.Sample(), 0.0)
	}
}

func TestDelayModel_ExponentialPositive(t *testing.T) {
	m, err := NewDelayModel(DelayConfig{Type: "exponential", Mean: 0.002}, delayRNG())
	require.NoError(t, err)
	sum := 0.0
	for i := 0; i < 5000; i++ {
		s := m.Sample()
		require.GreaterOrEqual(t, s, 0.0)
		sum += s
	}
	assert.InDelta(t, 0.002, sum/5000, 0.0005, "sample mean should approach configured mean")
}

func TestDelayModel_InvalidConfigs(t *testing.T) {
	tests := []struct {
		name string
		cfg  DelayConfig
	}{
		{"unknown type", DelayConfig{Type: "bursty"}},
		{"negative static", DelayConfig{Type: "static", Value: -1}},
		{"negative sigma", DelayConfig{Type: "gaussian", StdDev: -1}},
		{"inverted uniform bounds", DelayConfig{Type: "uniform", Min: 2, Max: 1}},
		{"non-positive exponential mean", DelayConfig{Type: "exponential", Mean: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDelayModel(tt.cfg, delayRNG())
			assert.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
		})
	}
}
