package engine

import (
	"context"

	"causemap/domain/causal"
	"causemap/domain/core"
)

// maxConditioningSetSize caps the PC-style conditioning subsets. Size 3 bounds
// the worst case to O(nodes^3) tests per edge, acceptable below ~50 nodes.
const maxConditioningSetSize = 3

// pruneSkeleton removes every edge whose endpoints test conditionally
// independent given some small subset of the other nodes. Established edges
// are provenance-protected and never tested away. Testing short-circuits at
// the first independent subset.
func (e *Engine) pruneSkeleton(ctx context.Context, g *causal.CausalGraph, observations []causal.CausalObservation) (tested, removed int) {
	nodeKeys := g.NodeKeys()

	for _, edgeID := range g.EdgeIDs() {
		if ctx.Err() != nil {
			return tested, removed
		}
		edge, ok := g.Edge(edgeID)
		if !ok || edge.Protected() {
			continue
		}

		others := make([]core.VariableKey, 0, len(nodeKeys))
		for _, key := range nodeKeys {
			if key != edge.Source && key != edge.Target {
				others = append(others, key)
			}
		}
		maxK := maxConditioningSetSize
		if len(others) < maxK {
			maxK = len(others)
		}

		independent := false
		for k := 0; k <= maxK && !independent; k++ {
			for _, subset := range combinations(others, k) {
				tested++
				result := e.testEdgeIndependence(observations, edge, subset)
				if result.Independent {
					independent = true
					break
				}
			}
		}
		if independent {
			if err := g.RemoveEdge(edgeID); err == nil {
				removed++
			}
		}
	}
	return tested, removed
}

// testEdgeIndependence runs one conditional-independence test of an edge's
// endpoints given a conditioning subset.
func (e *Engine) testEdgeIndependence(observations []causal.CausalObservation, edge *causal.CausalEdge, conditioning []core.VariableKey) IndependenceResult {
	keys := append([]core.VariableKey{edge.Source, edge.Target}, conditioning...)
	columns := alignedSeries(observations, keys...)
	x, y := columns[0], columns[1]
	partialR := PartialCorrelation(x, y, columns[2:])
	return TestIndependenceCI(partialR, len(x), len(conditioning), e.cfg.Alpha)
}
