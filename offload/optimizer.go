package offload

import "fmt"

// SplitCost is the per-candidate latency breakdown for one split point:
// run layers [0, Layer] on the device, ship Layer's output, run the rest
// on the edge.
type SplitCost struct {
	Layer    int
	Device   float64 // Σ smoothed local cost of layers 0..Layer
	Transfer float64 // output size of Layer / network rate; 0 for the last layer
	Remote   float64 // Σ smoothed remote cost of layers Layer+1..N-1
	Total    float64
}

// Optimizer computes the cost-minimizing split point from smoothed
// per-layer cost tables and a transfer estimate. It is stateless apart
// from the fixed layer count; every call re-evaluates all N candidates.
type Optimizer struct {
	layers int
}

// NewOptimizer creates an optimizer for a model with `layers` layers.
func NewOptimizer(layers int) (*Optimizer, error) {
	if layers <= 0 {
		return nil, fmt.Errorf("%w: layer count must be positive, got %d", ErrInvalidConfiguration, layers)
	}
	return &Optimizer{layers: layers}, nil
}

// CandidateCosts returns the latency breakdown for every candidate split
// point. local and remote are the smoothed per-layer cost tables (seconds),
// sizes the per-layer output sizes (bytes), rate the network rate (bytes/s).
func (o *Optimizer) CandidateCosts(local, remote, sizes []float64, rate float64) ([]SplitCost, error) {
	if len(local) != o.layers || len(remote) != o.layers || len(sizes) != o.layers {
		return nil, fmt.Errorf("%w: expected %d entries per layer table, got local=%d remote=%d sizes=%d",
			ErrInvalidConfiguration, o.layers, len(local), len(remote), len(sizes))
	}
	if rate <= 0 {
		return nil, fmt.Errorf("%w: network rate must be positive, got %v", ErrInvalidConfiguration, rate)
	}

	// Suffix sums of remote cost so each candidate is O(1).
	remoteAfter := make([]float64, o.layers+1)
	for i := o.layers - 1; i >= 0; i-- {
		remoteAfter[i] = remoteAfter[i+1] + remote[i]
	}

	costs := make([]SplitCost, o.layers)
	device := 0.0
	for l := 0; l < o.layers; l++ {
		device += local[l]
		transfer := 0.0
		if l < o.layers-1 {
			// The last layer's output stays on the device: nothing crosses.
			transfer = sizes[l] / rate
		}
		remoteCost := remoteAfter[l+1]
		costs[l] = SplitCost{
			Layer:    l,
			Device:   device,
			Transfer: transfer,
			Remote:   remoteCost,
			Total:    device + transfer + remoteCost,
		}
	}
	return costs, nil
}

// Compute returns the split point with minimal total latency. Ties prefer
// the smaller index (more layers offloaded), the conservative choice when
// device resources are the scarcer ones. The result is always a valid layer
// index in [0, N); the SplitLocalOnly sentinel is injected one level up by
// the Coordinator, never here.
func (o *Optimizer) Compute(local, remote, sizes []float64, rate float64) (int, error) {
	costs, err := o.CandidateCosts(local, remote, sizes, rate)
	if err != nil {
		return 0, err
	}
	best := 0
	for l := 1; l < len(costs); l++ {
		if costs[l].Total < costs[best].Total {
			best = l
		}
	}
	return best, nil
}
