package offload

import (
	"fmt"
	"math/rand"
)

// DelayModel produces synthetic computation delays (seconds) used by the
// simulation harness to perturb per-layer timings and study controller
// behavior under changing conditions.
type DelayModel interface {
	Sample() float64
}

// DelayConfig selects and parameterizes a delay model.
type DelayConfig struct {
	Type   string  `yaml:"type"`    // "none", "static", "gaussian", "uniform", "exponential"
	Value  float64 `yaml:"value"`   // static: fixed delay
	Mean   float64 `yaml:"mean"`    // gaussian, exponential
	StdDev float64 `yaml:"std_dev"` // gaussian
	Min    float64 `yaml:"min"`     // uniform
	Max    float64 `yaml:"max"`     // uniform
}

// ValidDelayTypes is the set of recognized delay model names.
var ValidDelayTypes = map[string]bool{"": true, "none": true, "static": true, "gaussian": true, "uniform": true, "exponential": true}

// NewDelayModel builds a delay model from config. rng drives the stochastic
// models; it is unused for "none" and "static".
func NewDelayModel(cfg DelayConfig, rng *rand.Rand) (DelayModel, error) {
	switch cfg.Type {
	case "", "none":
		return noDelay{}, nil
	case "static":
		if cfg.Value < 0 {
			return nil, fmt.Errorf("%w: static delay value must be non-negative, got %v", ErrInvalidConfiguration, cfg.Value)
		}
		return staticDelay{seconds: cfg.Value}, nil
	case "gaussian":
		if cfg.StdDev < 0 {
			return nil, fmt.Errorf("%w: gaussian delay std_dev must be non-negative, got %v", ErrInvalidConfiguration, cfg.StdDev)
		}
		return &gaussianDelay{mean: cfg.Mean, stdDev: cfg.StdDev, rng: rng}, nil
	case "uniform":
		if cfg.Min < 0 || cfg.Max < cfg.Min {
			return nil, fmt.Errorf("%w: uniform delay needs 0 <= min <= max, got [%v, %v]", ErrInvalidConfiguration, cfg.Min, cfg.Max)
		}
		return &uniformDelay{min: cfg.Min, max: cfg.Max, rng: rng}, nil
	case "exponential":
		if cfg.Mean <= 0 {
			return nil, fmt.Errorf("%w: exponential delay mean must be positive, got %v", ErrInvalidConfiguration, cfg.Mean)
		}
		return &exponentialDelay{mean: cfg.Mean, rng: rng}, nil
	default:
		return nil, fmt.Errorf("%w: unknown delay type %q", ErrInvalidConfiguration, cfg.Type)
	}
}

type noDelay struct{}

func (noDelay) Sample() float64 { return 0 }

type staticDelay struct{ seconds float64 }

func (d staticDelay) Sample() float64 { return d.seconds }

type gaussianDelay struct {
	mean, stdDev float64
	rng          *rand.Rand
}

// Sample clamps at zero: a delay cannot be negative however noisy the draw.
func (d *gaussianDelay) Sample() float64 {
	if v := d.rng.NormFloat64()*d.stdDev + d.mean; v > 0 {
		return v
	}
	return 0
}

type uniformDelay struct {
	min, max float64
	rng      *rand.Rand
}

func (d *uniformDelay) Sample() float64 {
	return d.min + d.rng.Float64()*(d.max-d.min)
}

type exponentialDelay struct {
	mean float64
	rng  *rand.Rand
}

func (d *exponentialDelay) Sample() float64 {
	return d.rng.ExpFloat64() * d.mean
}
