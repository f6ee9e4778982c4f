package causal

import (
	"math"

	"causemap/domain/core"
)

// ValidationReport summarizes structural problems found in a graph.
// Used both as a post-discovery sanity check and as a standalone diagnostic
// on externally supplied graphs.
type ValidationReport struct {
	IsAcyclic          bool                 `json:"is_acyclic"`
	Cycles             [][]core.VariableKey `json:"cycles,omitempty"`
	IsolatedNodes      []core.VariableKey   `json:"isolated_nodes,omitempty"`
	OutOfRangeEdges    []EdgeID             `json:"out_of_range_edges,omitempty"`
	TemporalViolations []EdgeID             `json:"temporal_violations,omitempty"`
}

// IsValid reports whether the graph passed every check.
func (r ValidationReport) IsValid() bool {
	return r.IsAcyclic &&
		len(r.IsolatedNodes) == 0 &&
		len(r.OutOfRangeEdges) == 0 &&
		len(r.TemporalViolations) == 0
}

// Validate checks cycle-freedom, isolated nodes, edge-strength bounds and
// temporal-tier ordering. It never mutates the graph; cycles are reported,
// not repaired (EnsureDAG does the repairing).
func (g *CausalGraph) Validate() ValidationReport {
	report := ValidationReport{}

	report.Cycles = g.FindCycles()
	report.IsAcyclic = len(report.Cycles) == 0

	for _, id := range g.NodeKeys() {
		if len(g.parents[id]) == 0 && len(g.children[id]) == 0 {
			report.IsolatedNodes = append(report.IsolatedNodes, id)
		}
	}

	for _, id := range g.EdgeIDs() {
		edge := g.Edges[id]
		if math.Abs(edge.Strength) > 1 || math.IsNaN(edge.Strength) {
			report.OutOfRangeEdges = append(report.OutOfRangeEdges, id)
		}
		source, okS := g.Nodes[edge.Source]
		target, okT := g.Nodes[edge.Target]
		if okS && okT && source.Type.TemporalTier() > target.Type.TemporalTier() {
			report.TemporalViolations = append(report.TemporalViolations, id)
		}
	}

	return report
}
