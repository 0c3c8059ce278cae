package pram

import (
	"math/rand/v2"
	"sync"
)

// Generator is the random-number collaborator used by the parallel
// quicksort (pivot selection) and the randomized harness (operation and
// key sampling). It is a narrow interface so callers can substitute a
// seeded, reproducible generator in tests.
type Generator interface {
	// IntN returns a pseudo-random integer in [0, n). It panics if n <= 0.
	IntN(n int) int
	// Float64 returns a pseudo-random float64 in [0, 1).
	Float64() float64
}

// defaultGenerator wraps math/rand/v2's package-level functions, which are
// safe for concurrent use by multiple goroutines.
type defaultGenerator struct{}

// NewGenerator returns the default Generator, backed by math/rand/v2.
func NewGenerator() Generator {
	return defaultGenerator{}
}

func (defaultGenerator) IntN(n int) int {
	return rand.IntN(n)
}

func (defaultGenerator) Float64() float64 {
	return rand.Float64()
}

// lockedGenerator wraps a *rand.Rand with a mutex so a single seeded
// sequence can be shared safely across goroutines, useful for
// reproducible tests.
type lockedGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededGenerator returns a Generator producing a reproducible sequence
// from seed, safe for concurrent use.
func NewSeededGenerator(seed uint64) Generator {
	return &lockedGenerator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *lockedGenerator) IntN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

func (g *lockedGenerator) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}
