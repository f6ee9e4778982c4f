// Package testkit generates deterministic synthetic observation streams for
// engine tests. All randomness flows through a seeded source so test runs
// are reproducible.
package testkit

import (
	"math/rand"
	"time"

	"causemap/domain/causal"
	"causemap/domain/core"
	"causemap/domain/priors"
)

// Generator produces synthetic observation series from a fixed seed.
type Generator struct {
	rng  *rand.Rand
	base time.Time
}

// NewGenerator creates a generator with the given seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:  rand.New(rand.NewSource(seed)),
		base: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

// CausalChain produces n daily observations following
//
//	stressor  ~ N(0, 1)
//	distress  = 0.8*stressor + N(0, noise)
//	worry     = 0.6*distress + N(0, noise)
//
// which the engine should recover as stressor→distress→worry.
func (g *Generator) CausalChain(n int, noise float64) []causal.CausalObservation {
	observations := make([]causal.CausalObservation, n)
	for i := 0; i < n; i++ {
		stressor := g.rng.NormFloat64()
		distress := 0.8*stressor + g.rng.NormFloat64()*noise
		worry := 0.6*distress + g.rng.NormFloat64()*noise
		observations[i] = causal.CausalObservation{
			Timestamp: core.NewTimestamp(g.base.AddDate(0, 0, i)),
			Values: map[core.VariableKey]float64{
				"stressor": stressor,
				"distress": distress,
				"worry":    worry,
			},
		}
	}
	return observations
}

// ChainCatalogue types the CausalChain variables without seeding any priors,
// so temporal-order filtering applies but structure is purely learned.
func ChainCatalogue() *priors.Catalogue {
	return &priors.Catalogue{
		Version: 1,
		Variables: []priors.VariableSpec{
			{Key: "stressor", Type: causal.NodeTrigger},
			{Key: "distress", Type: causal.NodeEmotion},
			{Key: "worry", Type: causal.NodeCognition},
		},
	}
}

// Independent produces n daily observations of mutually independent
// unit-normal variables.
func (g *Generator) Independent(keys []core.VariableKey, n int) []causal.CausalObservation {
	observations := make([]causal.CausalObservation, n)
	for i := 0; i < n; i++ {
		values := make(map[core.VariableKey]float64, len(keys))
		for _, key := range keys {
			values[key] = g.rng.NormFloat64()
		}
		observations[i] = causal.CausalObservation{
			Timestamp: core.NewTimestamp(g.base.AddDate(0, 0, i)),
			Values:    values,
		}
	}
	return observations
}

// Linked produces observations where target = coef*source + N(0, noise).
func (g *Generator) Linked(source, target core.VariableKey, coef, noise float64, n int) []causal.CausalObservation {
	observations := make([]causal.CausalObservation, n)
	for i := 0; i < n; i++ {
		s := g.rng.NormFloat64()
		observations[i] = causal.CausalObservation{
			Timestamp: core.NewTimestamp(g.base.AddDate(0, 0, i)),
			Values: map[core.VariableKey]float64{
				source: s,
				target: coef*s + g.rng.NormFloat64()*noise,
			},
		}
	}
	return observations
}
