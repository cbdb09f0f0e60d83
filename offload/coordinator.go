package offload

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/sirupsen/logrus"
)

// SplitLocalOnly is the reserved split decision meaning "run every layer
// locally this round, send nothing to the edge". It is distinct from all
// valid layer indices so an organic all-local optimizer result (N-1) stays
// distinguishable in logs and telemetry. For execution purposes consumers
// treat it as a split at the last layer.
const SplitLocalOnly = -1

// LayerTime is one reported per-layer execution time.
type LayerTime struct {
	Layer   int
	Seconds float64
}

// Report carries everything one completed inference round feeds back to
// the controller. RemoteTimes is empty when no edge leg ran this round:
// a forced-local round, or the unreachable-peer fallback where the caller
// treated the round as local-only.
type Report struct {
	LocalTimes  []LayerTime
	RemoteTimes []LayerTime
	LayerSizes  []float64 // bytes, one entry per layer
	NetworkRate float64   // bytes per second
}

// Coordinator orchestrates one model's split decisions: it feeds reported
// samples into the Monitor, lets the RefreshGate override with the
// sentinel, and otherwise returns the Optimizer's pick. One instance per
// model, explicitly constructed and injected into whatever serves that
// model's requests. Per-model state is never shared across models.
//
// The record+decide section runs under a single writer lock so concurrent
// rounds for the same model neither lose EMA updates nor read torn cost
// tables. Stats takes only the read lock and may lag in-flight decisions.
type Coordinator struct {
	modelID string
	layers  int

	mu        sync.RWMutex
	monitor   *Monitor
	gate      *RefreshGate
	optimizer *Optimizer
	rejected  int64
}

// NewCoordinator creates the controller for one model. rng seeds the
// refresh gate's Bernoulli draws; it may be nil when refresh is disabled.
func NewCoordinator(modelID string, layers int, cfg Config, rng *rand.Rand) (*Coordinator, error) {
	monitor, err := NewMonitor(modelID, layers, cfg)
	if err != nil {
		return nil, err
	}
	gate, err := NewRefreshGate(cfg.Refresh.Enabled, cfg.Refresh.Probability, rng)
	if err != nil {
		return nil, err
	}
	optimizer, err := NewOptimizer(layers)
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		modelID:   modelID,
		layers:    layers,
		monitor:   monitor,
		gate:      gate,
		optimizer: optimizer,
	}, nil
}

// ModelID returns the model this coordinator owns.
func (c *Coordinator) ModelID() string {
	return c.modelID
}

// Layers returns the model's layer count.
func (c *Coordinator) Layers() int {
	return c.layers
}

// Decide ingests one round's timing report and returns the split decision
// for the next round: a layer index in [0, N), or SplitLocalOnly when the
// refresh gate fires. Samples are always recorded before the decision is
// computed, so the decision reflects the report it arrived with.
//
// Individually invalid samples (negative duration, out-of-range layer) are
// rejected one by one (logged, counted, state untouched) without failing
// the round. Structural problems (sizes table of the wrong length, a
// non-positive rate) are ErrInvalidConfiguration.
func (c *Coordinator) Decide(report Report) (int, error) {
	if len(report.LayerSizes) != c.layers {
		return 0, fmt.Errorf("%w: expected %d layer sizes, got %d", ErrInvalidConfiguration, c.layers, len(report.LayerSizes))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, lt := range report.LocalTimes {
		c.recordOne(SourceLocal, lt)
	}
	for _, lt := range report.RemoteTimes {
		c.recordOne(SourceRemote, lt)
	}

	if c.monitor.NeedsRetest() {
		// Advisory only: the computation below is global anyway, so the
		// flagged layers are logged rather than acted on selectively.
		retest := c.monitor.LayersNeedingRetest()
		logrus.Infof("model %s: offloading retest needed, flagged local=%v remote=%v", c.modelID, retest.Local, retest.Remote)
	}

	if c.gate.ShouldForceRefresh() {
		logrus.Infof("model %s: refresh gate fired, forcing full-local round", c.modelID)
		return SplitLocalOnly, nil
	}

	split, err := c.optimizer.Compute(
		c.monitor.SmoothedLocal(),
		c.monitor.SmoothedRemote(),
		report.LayerSizes,
		report.NetworkRate,
	)
	if err != nil {
		return 0, err
	}
	logrus.Debugf("model %s: split point %d", c.modelID, split)
	return split, nil
}

func (c *Coordinator) recordOne(source Source, lt LayerTime) {
	var err error
	if source == SourceLocal {
		err = c.monitor.RecordLocal(lt.Layer, lt.Seconds)
	} else {
		err = c.monitor.RecordRemote(lt.Layer, lt.Seconds)
	}
	if errors.Is(err, ErrInvalidInput) {
		c.rejected++
		logrus.Warnf("model %s: rejected %s sample (layer=%d, seconds=%v): %v", c.modelID, source, lt.Layer, lt.Seconds, err)
	}
}

// RejectedSamples returns how many individual samples were rejected so far.
func (c *Coordinator) RejectedSamples() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rejected
}

// ControllerStats is the observability surface: the current flag sets and
// per-layer window statistics for both sources.
type ControllerStats struct {
	ModelID     string
	NeedsRetest bool
	Flagged     RetestSet
	Local       []Snapshot
	Remote      []Snapshot
}

// Stats snapshots the monitor state for diagnostics. It holds only the
// read lock; values may trail a concurrent Decide.
func (c *Coordinator) Stats() ControllerStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ControllerStats{
		ModelID:     c.modelID,
		NeedsRetest: c.monitor.NeedsRetest(),
		Flagged:     c.monitor.LayersNeedingRetest(),
		Local:       c.monitor.LayerStats(SourceLocal),
		Remote:      c.monitor.LayerStats(SourceRemote),
	}
}
