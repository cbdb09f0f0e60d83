package offload

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the controller tuning knobs, loadable from a YAML file.
// Zero values are not meaningful defaults; start from DefaultConfig and
// override, or use LoadConfig which does that for you.
type Config struct {
	// WindowSize is the number of samples kept per layer per source.
	WindowSize int `yaml:"window_size"`
	// VarianceThreshold is the coefficient-of-variation bound above which a
	// layer is judged unstable. Range [0, 1].
	VarianceThreshold float64 `yaml:"variance_threshold"`
	// EMAAlpha is the exponential smoothing factor for the cost tables.
	// Range (0, 1].
	EMAAlpha float64 `yaml:"ema_alpha"`
	// Refresh configures the probabilistic full-local override.
	Refresh RefreshConfig `yaml:"refresh"`
}

// RefreshConfig configures the RefreshGate.
type RefreshConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Probability float64 `yaml:"probability"`
}

// DefaultConfig returns the standard tuning: a 10-sample window, 15% CV
// threshold, alpha 0.2, refresh disabled.
func DefaultConfig() Config {
	return Config{
		WindowSize:        10,
		VarianceThreshold: 0.15,
		EMAAlpha:          0.2,
		Refresh:           RefreshConfig{Enabled: false, Probability: 0},
	}
}

// Validate checks all parameter ranges. Invalid configuration is fatal at
// construction; nothing here falls back to a default silently.
func (c Config) Validate() error {
	if c.WindowSize < minVerdictSamples {
		return fmt.Errorf("%w: window_size must be at least %d, got %d", ErrInvalidConfiguration, minVerdictSamples, c.WindowSize)
	}
	if c.VarianceThreshold < 0 || c.VarianceThreshold > 1 || math.IsNaN(c.VarianceThreshold) {
		return fmt.Errorf("%w: variance_threshold must be in [0, 1], got %v", ErrInvalidConfiguration, c.VarianceThreshold)
	}
	if c.EMAAlpha <= 0 || c.EMAAlpha > 1 || math.IsNaN(c.EMAAlpha) {
		return fmt.Errorf("%w: ema_alpha must be in (0, 1], got %v", ErrInvalidConfiguration, c.EMAAlpha)
	}
	if c.Refresh.Probability < 0 || c.Refresh.Probability > 1 || math.IsNaN(c.Refresh.Probability) {
		return fmt.Errorf("%w: refresh.probability must be in [0, 1], got %v", ErrInvalidConfiguration, c.Refresh.Probability)
	}
	return nil
}

// LoadConfig reads a YAML controller configuration. Fields absent from the
// file keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading controller config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing controller config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
