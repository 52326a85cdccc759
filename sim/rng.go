package sim

import (
	"hash/fnv"
	"math/rand/v2"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey and identical scenario configuration
// MUST produce bit-for-bit identical ledgers.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemCohort draws case attributes (age, diagnosis, flags).
	SubsystemCohort = "cohort"

	// SubsystemDelay draws stage durations.
	SubsystemDelay = "delay"

	// SubsystemTriage draws simulated-classifier outcomes.
	SubsystemTriage = "triage"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG streams per subsystem,
// so that (for example) adding a triage draw cannot shift the delay stream.
//
// Derivation: each subsystem gets a PCG seeded with
// (masterSeed, fnv1a64(subsystemName)).
//
// Thread-safety: NOT thread-safe. The simulation is single-threaded.
type PartitionedRNG struct {
	key     SimulationKey
	sources map[string]*rand.PCG
	rands   map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:     key,
		sources: make(map[string]*rand.PCG),
		rands:   make(map[string]*rand.Rand),
	}
}

// SourceFor returns the deterministically-seeded source for the named
// subsystem. The same name always returns the same instance (cached), so a
// subsystem's *rand.Rand and any samplers bound to its source share one
// stream. Never returns nil.
func (p *PartitionedRNG) SourceFor(name string) rand.Source {
	if src, ok := p.sources[name]; ok {
		return src
	}
	src := rand.NewPCG(uint64(p.key), fnv1a64(name))
	p.sources[name] = src
	return src
}

// ForSubsystem returns a *rand.Rand over the named subsystem's source.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.rands[name]; ok {
		return rng
	}
	rng := rand.New(p.SourceFor(name))
	p.rands[name] = rng
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
