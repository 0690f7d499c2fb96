// Package rngpool provides per-subsystem deterministic RNG streams, so that
// drawing from one subsystem's stream never perturbs another's.
package rngpool

import (
	"hash/fnv"
	"math/rand"
)

// Subsystem names used by the PopUpSim core. No randomness source in the
// core may bypass these kernel-owned streams. Workshop selection
// (LEAST_BUSY) and routing (shortest path) are both deterministic tie-break
// policies today, so track selection is the only subsystem that currently
// draws from the pool; add a subsystem name here only when a consumer
// actually calls Stream with it.
const (
	SubsystemTrackSelection = "track_selection"
)

// Pool hands out one *rand.Rand per subsystem name, lazily created and
// deterministically derived from a single master seed so that the order in
// which subsystems first draw does not affect any individual stream.
type Pool struct {
	masterSeed int64
	streams    map[string]*rand.Rand
}

// New creates a pool seeded from masterSeed.
func New(masterSeed int64) *Pool {
	return &Pool{masterSeed: masterSeed, streams: make(map[string]*rand.Rand)}
}

// Stream returns the RNG for the named subsystem, creating it on first use.
func (p *Pool) Stream(name string) *rand.Rand {
	if r, ok := p.streams[name]; ok {
		return r
	}
	r := rand.New(rand.NewSource(p.deriveSeed(name)))
	p.streams[name] = r
	return r
}

// deriveSeed computes masterSeed XOR fnv1a(name), an order-independent
// derivation: stream creation order never affects an individual stream's
// values.
func (p *Pool) deriveSeed(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return p.masterSeed ^ int64(h.Sum64())
}
