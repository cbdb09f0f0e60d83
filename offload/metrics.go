package offload

import (
	"fmt"
	"sort"
)

// Metrics aggregates decision statistics over a controller run for final
// reporting. Useful for evaluating how the controller settled and how often
// the refresh gate interrupted it.
type Metrics struct {
	layers int

	Rounds             int
	SentinelRounds     int         // refresh gate fired
	OrganicLocalRounds int         // optimizer itself chose the last layer
	DecisionCounts     map[int]int // split point -> times chosen
	TotalLatency       float64     // sum of simulated end-to-end latencies (seconds)
}

// NewMetrics creates an empty metrics aggregate for a model with `layers`
// layers.
func NewMetrics(layers int) *Metrics {
	return &Metrics{
		layers:         layers,
		DecisionCounts: make(map[int]int),
	}
}

// ObserveRound records one round's decision and simulated latency.
func (m *Metrics) ObserveRound(decision int, latencySeconds float64) {
	m.Rounds++
	m.TotalLatency += latencySeconds
	m.DecisionCounts[decision]++
	switch decision {
	case SplitLocalOnly:
		m.SentinelRounds++
	case m.layers - 1:
		m.OrganicLocalRounds++
	}
}

// MostCommonSplit returns the most frequently chosen decision and its
// count. Ties prefer the smaller decision; sentinel rounds count as -1.
func (m *Metrics) MostCommonSplit() (int, int) {
	decisions := make([]int, 0, len(m.DecisionCounts))
	for d := range m.DecisionCounts {
		decisions = append(decisions, d)
	}
	sort.Ints(decisions)
	best, bestCount := 0, 0
	for _, d := range decisions {
		if m.DecisionCounts[d] > bestCount {
			best, bestCount = d, m.DecisionCounts[d]
		}
	}
	return best, bestCount
}

// Print displays aggregated metrics at the end of a run.
func (m *Metrics) Print() {
	fmt.Println("=== Controller Run Metrics ===")
	fmt.Printf("Rounds               : %d\n", m.Rounds)
	fmt.Printf("Sentinel rounds      : %d\n", m.SentinelRounds)
	fmt.Printf("Organic local rounds : %d\n", m.OrganicLocalRounds)
	if m.Rounds > 0 {
		fmt.Printf("Average latency      : %.2f ms\n", m.TotalLatency/float64(m.Rounds)*1000)
		split, count := m.MostCommonSplit()
		fmt.Printf("Most common split    : %d (%d rounds)\n", split, count)
	}
}
