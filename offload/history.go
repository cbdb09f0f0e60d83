package offload

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// minVerdictSamples is the minimum window occupancy before a stability
// verdict is defined. Below it, Record reports VerdictUnknown and the
// monitor neither flags nor clears anything.
const minVerdictSamples = 3

// Verdict classifies the recent timing behavior of one layer on one source.
type Verdict int

const (
	// VerdictUnknown means too few samples to judge (cold start).
	VerdictUnknown Verdict = iota
	// VerdictStable means the window's coefficient of variation is at or
	// below the configured threshold.
	VerdictStable
	// VerdictUnstable means the window's coefficient of variation exceeds
	// the threshold.
	VerdictUnstable
)

func (v Verdict) String() string {
	switch v {
	case VerdictStable:
		return "stable"
	case VerdictUnstable:
		return "unstable"
	default:
		return "unknown"
	}
}

// History tracks a bounded FIFO window of execution-time samples (seconds)
// for a single layer on a single execution source. Once the window holds
// at least minVerdictSamples entries, each Record returns a fresh stability
// verdict based on the coefficient of variation (stdev/mean), which is
// scale-invariant, so the same threshold works for microsecond-scale local
// layers and millisecond-scale remote ones.
//
// Not goroutine-safe; callers serialize access (the Coordinator's mutex).
type History struct {
	layer     int
	window    int
	threshold float64
	samples   []float64 // oldest first, len <= window
}

// NewHistory creates a history for the given layer with a window of
// `window` samples and a CV threshold of `threshold`.
func NewHistory(layer, window int, threshold float64) *History {
	return &History{
		layer:     layer,
		window:    window,
		threshold: threshold,
		samples:   make([]float64, 0, window),
	}
}

// Record pushes a sample into the window, evicting the oldest entry when
// full, and returns the freshly computed verdict. Negative or non-finite
// samples are rejected with ErrInvalidInput and leave the window unchanged;
// zero is a valid (sub-measurable) duration.
func (h *History) Record(sample float64) (Verdict, error) {
	if sample < 0 || math.IsNaN(sample) || math.IsInf(sample, 0) {
		return VerdictUnknown, fmt.Errorf("%w: sample %v for layer %d must be a finite non-negative duration",
			ErrInvalidInput, sample, h.layer)
	}
	if len(h.samples) >= h.window {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:len(h.samples)-1]
	}
	h.samples = append(h.samples, sample)
	return h.Verdict(), nil
}

// Verdict returns the current stability verdict without recording anything.
func (h *History) Verdict() Verdict {
	if len(h.samples) < minVerdictSamples {
		return VerdictUnknown
	}
	if h.cv() <= h.threshold {
		return VerdictStable
	}
	return VerdictUnstable
}

// Len returns the current window occupancy.
func (h *History) Len() int {
	return len(h.samples)
}

// cv computes the coefficient of variation of the window. A non-positive
// mean yields 0 (a window of zeros is trivially steady).
func (h *History) cv() float64 {
	mean := stat.Mean(h.samples, nil)
	if mean <= 0 {
		return 0
	}
	return stat.StdDev(h.samples, nil) / mean
}

// Snapshot summarizes one layer's window on one source for observability.
type Snapshot struct {
	Layer  int
	Count  int
	Mean   float64
	Stdev  float64
	CV     float64
	Min    float64
	Max    float64
	Stable bool
}

// Snapshot returns summary statistics over the current window. An empty
// window yields a zeroed snapshot with Stable=false.
func (h *History) Snapshot() Snapshot {
	s := Snapshot{Layer: h.layer, Count: len(h.samples)}
	if s.Count == 0 {
		return s
	}
	s.Mean = stat.Mean(h.samples, nil)
	if s.Count > 1 {
		s.Stdev = stat.StdDev(h.samples, nil)
	}
	if s.Mean > 0 {
		s.CV = s.Stdev / s.Mean
	}
	s.Min = floats.Min(h.samples)
	s.Max = floats.Max(h.samples)
	s.Stable = s.CV <= h.threshold
	return s
}
