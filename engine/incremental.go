package engine

import (
	"sort"

	"causemap/domain/causal"
	"causemap/domain/core"
)

// UpdateWithNewObservation folds one new observation into an existing graph:
// node baselines move by exponential smoothing, current values and timestamps
// are overwritten, and every edge's evidence counter increments. Structure is
// never altered here; re-running discovery is a separate, explicit operation.
func (e *Engine) UpdateWithNewObservation(g *causal.CausalGraph, observation causal.CausalObservation) {
	alpha := e.cfg.BaselineAlpha

	keys := make([]core.VariableKey, 0, len(observation.Values))
	for key := range observation.Values {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, key := range keys {
		node, ok := g.Node(key)
		if !ok {
			continue
		}
		value := observation.Values[key]
		node.Baseline = (1-alpha)*node.Baseline + alpha*value
		node.CurrentValue = value
		node.ObservedAt = observation.Timestamp
	}

	now := core.Now()
	for _, edge := range g.Edges {
		edge.EvidenceCount++
		edge.UpdatedAt = now
	}
	g.UpdatedAt = now
}
