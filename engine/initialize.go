package engine

import (
	"causemap/domain/causal"
	"causemap/domain/core"
)

// initializeGraph builds the node set from the observed variable identifiers,
// seeds per-node metadata from the data, and pre-populates prior edges from
// the catalogue when priors are enabled.
func (e *Engine) initializeGraph(observations []causal.CausalObservation) *causal.CausalGraph {
	g := causal.NewGraph()

	for _, key := range observedVariables(observations) {
		g.AddNode(e.buildNode(key, observations))
	}

	if !e.cfg.UsePriors || e.cfg.Catalogue == nil {
		return g
	}
	for _, prior := range e.cfg.Catalogue.Priors {
		if _, ok := g.Node(prior.Source); !ok {
			continue
		}
		if _, ok := g.Node(prior.Target); !ok {
			continue
		}
		if e.forbidden(prior.Source, prior.Target) {
			continue
		}
		if err := g.AddEdge(prior.Edge()); err != nil {
			e.log.Warn("skipping prior %s->%s: %v", prior.Source, prior.Target, err)
		}
	}
	return g
}

// buildNode seeds a node's baseline and volatility from its observed series
// and fills causal-role metadata from the catalogue when known.
func (e *Engine) buildNode(key core.VariableKey, observations []causal.CausalObservation) *causal.CausalNode {
	values := series(observations, key)
	node := &causal.CausalNode{
		ID:         key,
		Name:       key.String(),
		Type:       causal.NodeBehavior,
		Observable: true,
		Baseline:   mean(values),
		Volatility: stdDev(values),
	}
	if e.cfg.Catalogue != nil {
		if spec, ok := e.cfg.Catalogue.Spec(key); ok {
			if spec.Name != "" {
				node.Name = spec.Name
			}
			node.Type = spec.Type
			node.Manipulable = spec.Manipulable
			node.TypicalLagDays = spec.TypicalLagDays
			node.Persistence = spec.Persistence
		}
	}
	// Latest reading becomes the node's current state.
	for i := len(observations) - 1; i >= 0; i-- {
		if v, ok := observations[i].Value(key); ok {
			node.CurrentValue = v
			node.ObservedAt = observations[i].Timestamp
			break
		}
	}
	return node
}
