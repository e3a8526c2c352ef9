package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratorStartsAtConfiguredValue(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	g := NewGenerator(cfg)

	assert.Equal(t, cfg.Start, g.Value())
}

func TestGeneratorFloorClamp(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.Start = 10.5
	cfg.ShockProb = 1.0 // shock every tick to force the walk downward fast
	g := NewGenerator(cfg)

	for i := 0; i < 1000; i++ {
		v := g.Next()
		assert.GreaterOrEqual(t, v, cfg.Floor)
	}
}

func TestGeneratorDeterministicPerSeed(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.Seed = 99

	a := NewGenerator(cfg)
	b := NewGenerator(cfg)

	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestGeneratorReset(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	g := NewGenerator(cfg)

	for i := 0; i < 20; i++ {
		g.Next()
	}
	g.Reset()

	assert.Equal(t, cfg.Start, g.Value())
}

func TestGeneratorNoShocksWithZeroProbability(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.ShockProb = 0
	cfg.DriftSigma = 0.1
	g := NewGenerator(cfg)

	prev := g.Value()
	for i := 0; i < 200; i++ {
		v := g.Next()
		// Pure drift steps stay small.
		assert.InDelta(t, prev, v, 1.0)
		prev = v
	}
}
