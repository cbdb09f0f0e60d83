package offload

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Simulator drives one Coordinator with synthetic rounds: each round
// executes layers up to the previous decision "on the device" and the rest
// "on the edge", reports the simulated timings, and takes the next
// decision. All randomness comes from a PartitionedRNG, so a run is fully
// reproducible from its seed.
type Simulator struct {
	scenario  Scenario
	coord     *Coordinator
	delay     DelayModel
	workload  *rand.Rand
	edgeCosts []float64
	sizes     []float64

	Metrics *Metrics
}

// NewSimulator wires a coordinator, delay model, and noise sources for the
// given scenario, controller config, and seed.
func NewSimulator(scenario Scenario, cfg Config, seed int64) (*Simulator, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	prng := NewPartitionedRNG(NewRunKey(seed))
	coord, err := NewCoordinator(scenario.Model, scenario.Layers, cfg, prng.ForSubsystem(SubsystemRefresh))
	if err != nil {
		return nil, err
	}
	delay, err := NewDelayModel(scenario.Delay, prng.ForSubsystem(SubsystemDelay))
	if err != nil {
		return nil, err
	}
	return &Simulator{
		scenario:  scenario,
		coord:     coord,
		delay:     delay,
		workload:  prng.ForSubsystem(SubsystemWorkload),
		edgeCosts: scenario.edgeBaseCosts(),
		sizes:     scenario.layerSizes(),
		Metrics:   NewMetrics(scenario.Layers),
	}, nil
}

// noise draws the multiplicative factor N(1, sigma) applied to every
// simulated layer time.
func (s *Simulator) noise() float64 {
	return s.workload.NormFloat64()*s.scenario.NoiseSigma + 1
}

// Coordinator exposes the driven coordinator for post-run inspection.
func (s *Simulator) Coordinator() *Coordinator {
	return s.coord
}

// Run executes all configured rounds. The first round runs fully local, the
// way a cold device behaves before any decision has been delivered to it.
func (s *Simulator) Run() error {
	split := s.scenario.Layers - 1
	for round := 1; round <= s.scenario.Rounds; round++ {
		report, latency := s.executeRound(round, split)
		next, err := s.coord.Decide(report)
		if err != nil {
			return err
		}
		s.Metrics.ObserveRound(next, latency)
		logrus.Debugf("round %d: split=%d latency=%.2fms", round, next, latency*1000)
		split = next
	}
	return nil
}

// executeRound simulates one inference round at the given split point and
// returns the timing report plus the simulated end-to-end latency.
func (s *Simulator) executeRound(round, split int) (Report, float64) {
	cut := split
	if cut == SplitLocalOnly {
		// Sentinel: every layer runs locally, nothing crosses the boundary.
		cut = s.scenario.Layers - 1
	}

	shift := 1.0
	if s.scenario.ShiftRound > 0 && round >= s.scenario.ShiftRound {
		shift = s.scenario.ShiftFactor
	}

	report := Report{
		LayerSizes:  s.sizes,
		NetworkRate: s.networkRate(),
	}

	latency := 0.0
	for i := 0; i <= cut; i++ {
		t := s.edgeCosts[i]*s.scenario.DeviceSlowdown*shift*s.noise() + s.delay.Sample()
		if t < 0 {
			t = 0
		}
		report.LocalTimes = append(report.LocalTimes, LayerTime{Layer: i, Seconds: t})
		latency += t
	}
	if cut < s.scenario.Layers-1 {
		latency += s.sizes[cut] / report.NetworkRate
		for i := cut + 1; i < s.scenario.Layers; i++ {
			t := s.edgeCosts[i] * s.noise()
			if t < 0 {
				t = 0
			}
			report.RemoteTimes = append(report.RemoteTimes, LayerTime{Layer: i, Seconds: t})
			latency += t
		}
	}
	return report, latency
}

// networkRate applies the per-round uniform jitter to the nominal rate.
func (s *Simulator) networkRate() float64 {
	if s.scenario.RateJitter == 0 {
		return s.scenario.NetworkRate
	}
	f := 1 + s.scenario.RateJitter*(2*s.workload.Float64()-1)
	return s.scenario.NetworkRate * f
}
