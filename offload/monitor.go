package offload

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Source identifies which side of the split produced a timing sample.
type Source int

const (
	// SourceLocal is the device side (layers before the split point).
	SourceLocal Source = iota
	// SourceRemote is the edge side (layers after the split point).
	SourceRemote
)

func (s Source) String() string {
	if s == SourceRemote {
		return "remote"
	}
	return "local"
}

// sourceState bundles the per-layer state for one execution source:
// the raw windows feeding stability verdicts, the EMA cost table feeding
// the optimizer, and the variance flag set.
type sourceState struct {
	source    Source
	histories []*History
	smoothed  []float64
	seeded    []bool // smoothed[i] holds a real value, not the zero default
	flagged   map[int]struct{}
}

func newSourceState(source Source, layers, window int, threshold float64) *sourceState {
	st := &sourceState{
		source:    source,
		histories: make([]*History, layers),
		smoothed:  make([]float64, layers),
		seeded:    make([]bool, layers),
		flagged:   make(map[int]struct{}),
	}
	for i := range st.histories {
		st.histories[i] = NewHistory(i, window, threshold)
	}
	return st
}

// Monitor owns all per-layer timing state for one model: a History per
// layer for each of the two sources, the smoothed cost tables, and the
// variance flag sets. The raw windows drive stability verdicts; the EMA
// tables drive the optimizer; both are updated from the same sample.
//
// When a layer is judged unstable, both it and its immediate successor are
// flagged: layer i's output is layer i+1's input, so a timing shift in i
// predicts a possible shift in i+1. A stable verdict clears only the judged
// layer; the cascaded successor stays flagged until its own next sample
// confirms it, even if its statistics still read stable from stale data.
//
// Not goroutine-safe; the owning Coordinator serializes access.
type Monitor struct {
	modelID string
	layers  int
	alpha   float64
	local   *sourceState
	remote  *sourceState
}

// NewMonitor creates a monitor for a model with `layers` layers.
func NewMonitor(modelID string, layers int, cfg Config) (*Monitor, error) {
	if layers <= 0 {
		return nil, fmt.Errorf("%w: layer count must be positive, got %d", ErrInvalidConfiguration, layers)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Monitor{
		modelID: modelID,
		layers:  layers,
		alpha:   cfg.EMAAlpha,
		local:   newSourceState(SourceLocal, layers, cfg.WindowSize, cfg.VarianceThreshold),
		remote:  newSourceState(SourceRemote, layers, cfg.WindowSize, cfg.VarianceThreshold),
	}, nil
}

// Layers returns the model's layer count.
func (m *Monitor) Layers() int {
	return m.layers
}

// RecordLocal records a device-side timing sample for one layer.
func (m *Monitor) RecordLocal(layer int, seconds float64) error {
	return m.record(m.local, layer, seconds)
}

// RecordRemote records an edge-side timing sample for one layer.
func (m *Monitor) RecordRemote(layer int, seconds float64) error {
	return m.record(m.remote, layer, seconds)
}

func (m *Monitor) record(st *sourceState, layer int, seconds float64) error {
	if layer < 0 || layer >= m.layers {
		return fmt.Errorf("%w: layer %d outside [0, %d) for model %s", ErrInvalidInput, layer, m.layers, m.modelID)
	}
	verdict, err := st.histories[layer].Record(seconds)
	if err != nil {
		return err
	}

	// EMA table: first sample seeds the entry directly so early decisions
	// aren't dragged toward zero.
	if st.seeded[layer] {
		st.smoothed[layer] = m.alpha*seconds + (1-m.alpha)*st.smoothed[layer]
	} else {
		st.smoothed[layer] = seconds
		st.seeded[layer] = true
	}

	switch verdict {
	case VerdictUnstable:
		st.flagged[layer] = struct{}{}
		snap := st.histories[layer].Snapshot()
		if layer+1 < m.layers {
			st.flagged[layer+1] = struct{}{}
			logrus.Warnf("model %s: %s layer %d variance detected: CV=%.2f%% (threshold=%.2f%%), layer %d flagged for retest too",
				m.modelID, st.source, layer, snap.CV*100, st.histories[layer].threshold*100, layer+1)
		} else {
			logrus.Warnf("model %s: %s layer %d variance detected: CV=%.2f%% (threshold=%.2f%%)",
				m.modelID, st.source, layer, snap.CV*100, st.histories[layer].threshold*100)
		}
	case VerdictStable:
		delete(st.flagged, layer)
	}
	return nil
}

// NeedsRetest reports whether any layer on either source is currently
// flagged for re-evaluation.
func (m *Monitor) NeedsRetest() bool {
	return len(m.local.flagged) > 0 || len(m.remote.flagged) > 0
}

// RetestSet lists the layers currently flagged per source, sorted.
type RetestSet struct {
	Local  []int
	Remote []int
}

// LayersNeedingRetest returns the sorted flag-set contents. The result is
// diagnostic only: split recomputation is always global, so nothing keys
// off the specific layers.
func (m *Monitor) LayersNeedingRetest() RetestSet {
	return RetestSet{
		Local:  sortedKeys(m.local.flagged),
		Remote: sortedKeys(m.remote.flagged),
	}
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// SmoothedLocal returns a copy of the device-side EMA cost table.
func (m *Monitor) SmoothedLocal() []float64 {
	return append([]float64(nil), m.local.smoothed...)
}

// SmoothedRemote returns a copy of the edge-side EMA cost table.
func (m *Monitor) SmoothedRemote() []float64 {
	return append([]float64(nil), m.remote.smoothed...)
}

// LayerStats returns per-layer window snapshots for one source.
func (m *Monitor) LayerStats(source Source) []Snapshot {
	st := m.local
	if source == SourceRemote {
		st = m.remote
	}
	out := make([]Snapshot, m.layers)
	for i, h := range st.histories {
		out[i] = h.Snapshot()
	}
	return out
}
