package offload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveRound(t *testing.T) {
	m := NewMetrics(5)
	m.ObserveRound(0, 0.010)
	m.ObserveRound(0, 0.012)
	m.ObserveRound(4, 0.050) // organic all-local
	m.ObserveRound(SplitLocalOnly, 0.055)

	assert.Equal(t, 4, m.Rounds)
	assert.Equal(t, 1, m.SentinelRounds)
	assert.Equal(t, 1, m.OrganicLocalRounds)
	assert.Equal(t, 2, m.DecisionCounts[0])
	assert.InDelta(t, 0.127, m.TotalLatency, 1e-9)
}

func TestMetrics_MostCommonSplit(t *testing.T) {
	m := NewMetrics(5)
	m.ObserveRound(2, 0.01)
	m.ObserveRound(2, 0.01)
	m.ObserveRound(3, 0.01)

	split, count := m.MostCommonSplit()
	assert.Equal(t, 2, split)
	assert.Equal(t, 2, count)
}

func TestMetrics_MostCommonSplitTiePrefersSmaller(t *testing.T) {
	m := NewMetrics(5)
	m.ObserveRound(3, 0.01)
	m.ObserveRound(1, 0.01)

	split, count := m.MostCommonSplit()
	assert.Equal(t, 1, split)
	assert.Equal(t, 1, count)
}
