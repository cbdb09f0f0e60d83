package offload

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario describes a synthetic split-inference workload for the
// simulation harness: a layered model with a front-loaded cost profile,
// a device some factor slower than the edge, multiplicative timing noise,
// and an optional mid-run performance shift that the variance detector
// should catch.
type Scenario struct {
	Model  string `yaml:"model"`
	Layers int    `yaml:"layers"`
	Rounds int    `yaml:"rounds"`

	// BaseLayerSeconds is the edge-side cost of a typical layer. The first
	// two layers are weighted 12x and 4x, the front-loaded profile of
	// small vision models, where early convolutions dominate.
	BaseLayerSeconds float64 `yaml:"base_layer_seconds"`

	// DeviceSlowdown is how many times slower the device executes a layer
	// than the edge does.
	DeviceSlowdown float64 `yaml:"device_slowdown"`

	// NoiseSigma is the sigma of the multiplicative gaussian noise N(1, sigma)
	// applied to every simulated layer time.
	NoiseSigma float64 `yaml:"noise_sigma"`

	// ShiftRound, when positive, multiplies device-side layer times by
	// ShiftFactor from that round on: a sustained performance change that
	// should drive CVs over the threshold and flag layers for retest.
	ShiftRound  int     `yaml:"shift_round"`
	ShiftFactor float64 `yaml:"shift_factor"`

	// LayerOutputBytes is each layer's output size crossing the boundary.
	LayerOutputBytes float64 `yaml:"layer_output_bytes"`

	// NetworkRate is the device-to-edge transfer rate in bytes per second;
	// RateJitter applies a per-round uniform jitter of ±RateJitter fraction.
	NetworkRate float64 `yaml:"network_rate"`
	RateJitter  float64 `yaml:"rate_jitter"`

	// Delay adds an extra synthetic computation delay to every device-side
	// layer execution.
	Delay DelayConfig `yaml:"delay"`
}

// DefaultScenario returns a 58-layer model on a 10x-slower device over a
// 1 MB/s link, with 10% timing noise and no performance shift.
func DefaultScenario() Scenario {
	return Scenario{
		Model:            "demo-model",
		Layers:           58,
		Rounds:           200,
		BaseLayerSeconds: 0.001,
		DeviceSlowdown:   10,
		NoiseSigma:       0.1,
		ShiftRound:       0,
		ShiftFactor:      1,
		LayerOutputBytes: 64 * 1024,
		NetworkRate:      1_000_000,
		RateJitter:       0.1,
	}
}

// Validate returns an error if the scenario parameters are out of range.
func (s Scenario) Validate() error {
	if s.Layers <= 0 {
		return fmt.Errorf("%w: layers must be positive, got %d", ErrInvalidConfiguration, s.Layers)
	}
	if s.Rounds <= 0 {
		return fmt.Errorf("%w: rounds must be positive, got %d", ErrInvalidConfiguration, s.Rounds)
	}
	if s.BaseLayerSeconds <= 0 {
		return fmt.Errorf("%w: base_layer_seconds must be positive, got %v", ErrInvalidConfiguration, s.BaseLayerSeconds)
	}
	if s.DeviceSlowdown <= 0 {
		return fmt.Errorf("%w: device_slowdown must be positive, got %v", ErrInvalidConfiguration, s.DeviceSlowdown)
	}
	if s.NoiseSigma < 0 {
		return fmt.Errorf("%w: noise_sigma must be non-negative, got %v", ErrInvalidConfiguration, s.NoiseSigma)
	}
	if s.ShiftRound < 0 {
		return fmt.Errorf("%w: shift_round must be non-negative, got %d", ErrInvalidConfiguration, s.ShiftRound)
	}
	if s.ShiftRound > 0 && s.ShiftFactor <= 0 {
		return fmt.Errorf("%w: shift_factor must be positive when shift_round is set, got %v", ErrInvalidConfiguration, s.ShiftFactor)
	}
	if s.LayerOutputBytes < 0 {
		return fmt.Errorf("%w: layer_output_bytes must be non-negative, got %v", ErrInvalidConfiguration, s.LayerOutputBytes)
	}
	if s.NetworkRate <= 0 {
		return fmt.Errorf("%w: network_rate must be positive, got %v", ErrInvalidConfiguration, s.NetworkRate)
	}
	if s.RateJitter < 0 || s.RateJitter >= 1 {
		return fmt.Errorf("%w: rate_jitter must be in [0, 1), got %v", ErrInvalidConfiguration, s.RateJitter)
	}
	if !ValidDelayTypes[s.Delay.Type] {
		return fmt.Errorf("%w: unknown delay type %q", ErrInvalidConfiguration, s.Delay.Type)
	}
	return nil
}

// edgeBaseCosts returns each layer's deterministic edge-side cost.
func (s Scenario) edgeBaseCosts() []float64 {
	costs := make([]float64, s.Layers)
	for i := range costs {
		switch i {
		case 0:
			costs[i] = 12 * s.BaseLayerSeconds
		case 1:
			costs[i] = 4 * s.BaseLayerSeconds
		default:
			costs[i] = s.BaseLayerSeconds
		}
	}
	return costs
}

// layerSizes returns the per-layer output sizes fed to the optimizer.
func (s Scenario) layerSizes() []float64 {
	sizes := make([]float64, s.Layers)
	for i := range sizes {
		sizes[i] = s.LayerOutputBytes
	}
	return sizes
}

// LoadScenario reads a YAML scenario file. Fields absent from the file keep
// their DefaultScenario values.
func LoadScenario(path string) (Scenario, error) {
	sc := DefaultScenario()
	data, err := os.ReadFile(path)
	if err != nil {
		return sc, fmt.Errorf("reading scenario: %w", err)
	}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return sc, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return sc, err
	}
	return sc, nil
}
