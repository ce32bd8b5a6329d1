package digi

import (
	"hash/fnv"

	"golang.org/x/exp/rand"
)

// SimulationKey uniquely identifies a reproducible run. Two runs with the
// same SimulationKey and identical configuration MUST produce bit-for-bit
// identical results.
type SimulationKey uint64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed uint64) SimulationKey {
	return SimulationKey(seed)
}

// RNG subsystem names used by the synthetic workload generator.
const (
	// SubsystemTracks seeds particle crossing geometry.
	SubsystemTracks = "tracks"
	// SubsystemCharge seeds charge sharing and fluctuation sampling.
	SubsystemCharge = "charge"
)

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem, so adding sampling to one subsystem never perturbs another.
// Derived seed: master key XOR fnv1a64(subsystem name).
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named
// subsystem. The same name always returns the same *rand.Rand instance.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(uint64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
