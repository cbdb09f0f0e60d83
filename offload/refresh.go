package offload

import (
	"fmt"
	"math"
	"math/rand"
)

// RefreshGate is a probabilistic override that forces a full-local round so
// fresh device-side measurements accumulate for every layer. Each call is an
// independent Bernoulli trial against the configured probability, with no
// quota and no memory between calls. The gate is deliberately decoupled from the
// variance flags: instability does not raise the probability here (external
// policy may choose to, via a second gate or a reconfigured one).
//
// The RNG is injected so decision sequences reproduce under a fixed seed.
type RefreshGate struct {
	enabled     bool
	probability float64
	rng         *rand.Rand
}

// NewRefreshGate creates a gate. probability must lie in [0, 1]; rng must be
// non-nil when the gate is enabled.
func NewRefreshGate(enabled bool, probability float64, rng *rand.Rand) (*RefreshGate, error) {
	if probability < 0 || probability > 1 || math.IsNaN(probability) {
		return nil, fmt.Errorf("%w: refresh probability must be in [0, 1], got %v", ErrInvalidConfiguration, probability)
	}
	if enabled && rng == nil {
		return nil, fmt.Errorf("%w: enabled refresh gate requires a random source", ErrInvalidConfiguration)
	}
	return &RefreshGate{enabled: enabled, probability: probability, rng: rng}, nil
}

// ShouldForceRefresh draws once and reports whether this round must run
// every layer locally. Always false when disabled, regardless of probability.
func (g *RefreshGate) ShouldForceRefresh() bool {
	if !g.enabled {
		return false
	}
	return g.rng.Float64() < g.probability
}
