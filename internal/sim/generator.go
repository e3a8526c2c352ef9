package sim

import "math/rand"

// GeneratorConfig controls the synthetic random walk.
type GeneratorConfig struct {
	// Start is the initial value, restored on Reset.
	Start float64
	// DriftSigma is the stddev of the per-tick gaussian drift.
	DriftSigma float64
	// ShockSigma is the stddev of the occasional gaussian shock.
	ShockSigma float64
	// ShockProb is the per-tick probability of a shock.
	ShockProb float64
	// Floor clamps the walk from below.
	Floor float64
	// Seed for the generator's rng; 0 means unseeded behavior is still
	// deterministic because a source is always created from this value.
	Seed int64
}

// DefaultGeneratorConfig matches the demo's walk: gentle drift, a large
// shock about one tick in twenty, never below 10.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Start:      100.0,
		DriftSigma: 0.2,
		ShockSigma: 10.0,
		ShockProb:  0.05,
		Floor:      10.0,
		Seed:       1,
	}
}

// Generator produces one observation per tick via a random walk with drift
// and occasional shocks.
type Generator struct {
	cfg   GeneratorConfig
	rng   *rand.Rand
	value float64
}

// NewGenerator creates a generator at its starting value.
func NewGenerator(cfg GeneratorConfig) *Generator {
	return &Generator{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		value: cfg.Start,
	}
}

// Next advances the walk one step and returns the new value.
func (g *Generator) Next() float64 {
	g.value += g.rng.NormFloat64() * g.cfg.DriftSigma
	if g.rng.Float64() < g.cfg.ShockProb {
		g.value += g.rng.NormFloat64() * g.cfg.ShockSigma
	}
	if g.value < g.cfg.Floor {
		g.value = g.cfg.Floor
	}
	return g.value
}

// Value returns the current value without advancing the walk.
func (g *Generator) Value() float64 {
	return g.value
}

// Reset restores the starting value. The rng is not reseeded: a reset starts
// a fresh walk, not a replay of the previous one.
func (g *Generator) Reset() {
	g.value = g.cfg.Start
}
