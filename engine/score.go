package engine

import (
	"context"

	"causemap/domain/causal"
	"causemap/domain/core"
)

// priorBlendWeight is how much of an established/probable edge's prior
// strength survives re-estimation. Expert knowledge dominates so a noisy
// sample cannot overwrite clinical evidence in one run.
const priorBlendWeight = 0.7

// searchStructure runs the GES-style greedy forward search: propose every
// admissible directed edge, keep it only when BIC improves past the
// configured threshold, stop on the first round with no accepted edge.
// Cancellation is honored between rounds.
func (e *Engine) searchStructure(ctx context.Context, g *causal.CausalGraph, observations []causal.CausalObservation) (iterations, added int, err error) {
	currentBIC := CalculateBIC(g, observations)
	nodeKeys := g.NodeKeys()

	for round := 0; round < e.cfg.MaxIterations; round++ {
		select {
		case <-ctx.Done():
			return round, added, ctx.Err()
		default:
		}

		accepted := 0
		for _, source := range nodeKeys {
			for _, target := range nodeKeys {
				if !e.admissible(g, source, target) {
					continue
				}
				columns := alignedSeries(observations, source, target)
				x, y := columns[0], columns[1]
				if len(x) < e.cfg.MinObservations {
					continue
				}
				r := PearsonCorrelation(x, y)
				if abs(r) < e.cfg.MinAbsCorrelation {
					continue
				}

				// Tentatively add, score, keep only on clear improvement.
				edge := causal.NewEdge(source, target, r, causal.ConfidenceLearned)
				edge.EvidenceCount = len(x)
				if err := g.AddEdge(edge); err != nil {
					continue
				}
				newBIC := CalculateBIC(g, observations)
				if currentBIC-newBIC > e.cfg.MinBICImprovement {
					currentBIC = newBIC
					accepted++
				} else {
					_ = g.RemoveEdge(edge.ID)
				}
			}
		}
		added += accepted
		iterations = round + 1
		e.log.Debug("score round %d: %d edges accepted, bic=%.2f", round+1, accepted, currentBIC)
		if accepted == 0 {
			break
		}
	}

	e.estimateStrengths(g, observations)
	return iterations, added, nil
}

// admissible filters candidate edges on existence, config-forbidden pairs,
// temporal-tier ordering, cycle creation and the target's parent budget.
func (e *Engine) admissible(g *causal.CausalGraph, source, target core.VariableKey) bool {
	if source == target || g.HasEdge(source, target) {
		return false
	}
	if e.forbidden(source, target) {
		return false
	}
	if e.cfg.RespectTemporalOrder {
		src, okS := g.Node(source)
		dst, okT := g.Node(target)
		if okS && okT && src.Type.TemporalTier() > dst.Type.TemporalTier() {
			return false
		}
	}
	if len(g.Parents(target)) >= e.cfg.MaxParents {
		return false
	}
	// Reachability from target back to source means the new edge closes a cycle.
	if g.HasPath(target, source) {
		return false
	}
	return true
}

// estimateStrengths recomputes every surviving edge's strength as the partial
// correlation of its endpoints controlling for the target's other parents.
// Expert-tier edges blend the computed value with the prior strength;
// learned/hypothesized edges take the computed value directly.
func (e *Engine) estimateStrengths(g *causal.CausalGraph, observations []causal.CausalObservation) {
	for _, edgeID := range g.EdgeIDs() {
		edge := g.Edges[edgeID]

		otherParents := make([]core.VariableKey, 0)
		for _, parent := range g.Parents(edge.Target) {
			if parent != edge.Source {
				otherParents = append(otherParents, parent)
			}
		}

		keys := append([]core.VariableKey{edge.Source, edge.Target}, otherParents...)
		columns := alignedSeries(observations, keys...)
		x, y := columns[0], columns[1]
		if len(x) < e.cfg.MinObservations {
			continue
		}
		computed := PartialCorrelation(x, y, columns[2:])

		switch edge.Confidence {
		case causal.ConfidenceEstablished, causal.ConfidenceProbable:
			edge.SetStrength(priorBlendWeight*edge.Strength + (1-priorBlendWeight)*computed)
		default:
			edge.SetStrength(computed)
		}
		edge.EvidenceCount = len(x)
		edge.UpdatedAt = core.Now()
	}
}

// forbidden checks the config's forbidden-edge list.
func (e *Engine) forbidden(source, target core.VariableKey) bool {
	for _, pair := range e.cfg.ForbiddenEdges {
		if pair.Source == source && pair.Target == target {
			return true
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
