package offload

import (
	"hash/fnv"
	"math/rand"
)

// RunKey uniquely identifies a reproducible controller run. Two runs with
// the same RunKey and identical configuration MUST produce bit-for-bit
// identical decision sequences.
type RunKey int64

// NewRunKey creates a RunKey from a seed value.
func NewRunKey(seed int64) RunKey {
	return RunKey(seed)
}

const (
	// SubsystemRefresh is the RNG subsystem for the refresh gate's draws.
	SubsystemRefresh = "refresh"

	// SubsystemDelay is the RNG subsystem for synthetic delay models.
	SubsystemDelay = "delay"

	// SubsystemWorkload is the RNG subsystem for synthetic workload noise.
	SubsystemWorkload = "workload"
)

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem, derived as masterSeed XOR fnv1a64(subsystemName). Isolation
// means drawing from one subsystem never perturbs another's sequence, so
// e.g. enabling delay simulation cannot change which rounds the refresh
// gate fires on.
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type PartitionedRNG struct {
	key        RunKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a RunKey.
func NewPartitionedRNG(key RunKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named
// subsystem. The same name always returns the same *rand.Rand instance
// (cached). Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the RunKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() RunKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
