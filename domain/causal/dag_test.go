package causal

import (
	"testing"
)

func TestFindCycles(t *testing.T) {
	t.Run("acyclic graph has no cycles", func(t *testing.T) {
		g := newTestGraph(t, "a", "b", "c")
		mustAddEdge(t, g, "a", "b", 0.5)
		mustAddEdge(t, g, "b", "c", 0.5)
		if cycles := g.FindCycles(); len(cycles) != 0 {
			t.Errorf("expected no cycles, got %v", cycles)
		}
	})

	t.Run("three node cycle is reported", func(t *testing.T) {
		g := newTestGraph(t, "a", "b", "c")
		mustAddEdge(t, g, "a", "b", 0.5)
		mustAddEdge(t, g, "b", "c", 0.5)
		mustAddEdge(t, g, "c", "a", 0.5)
		cycles := g.FindCycles()
		if len(cycles) == 0 {
			t.Fatal("expected a cycle")
		}
		if len(cycles[0]) != 3 {
			t.Errorf("expected cycle of length 3, got %v", cycles[0])
		}
	})

	t.Run("self contained two node loop", func(t *testing.T) {
		g := newTestGraph(t, "a", "b")
		mustAddEdge(t, g, "a", "b", 0.5)
		mustAddEdge(t, g, "b", "a", 0.3)
		if cycles := g.FindCycles(); len(cycles) == 0 {
			t.Error("expected a two-node cycle")
		}
	})
}

func TestEnsureDAG(t *testing.T) {
	t.Run("removes the weakest edge of a cycle", func(t *testing.T) {
		g := newTestGraph(t, "a", "b", "c")
		mustAddEdge(t, g, "a", "b", 0.9)
		mustAddEdge(t, g, "b", "c", 0.8)
		mustAddEdge(t, g, "c", "a", 0.1) // weakest

		removed := g.EnsureDAG()
		if len(removed) != 1 || removed[0] != NewEdgeID("c", "a") {
			t.Errorf("expected to remove c->a, removed %v", removed)
		}
		if !g.Acyclic {
			t.Error("graph should be acyclic after repair")
		}
		if cycles := g.FindCycles(); len(cycles) != 0 {
			t.Errorf("no cycles should remain, got %v", cycles)
		}
		if !g.HasEdge("a", "b") || !g.HasEdge("b", "c") {
			t.Error("strong edges must survive repair")
		}
	})

	t.Run("weakest magnitude wins regardless of sign", func(t *testing.T) {
		g := newTestGraph(t, "a", "b", "c")
		mustAddEdge(t, g, "a", "b", -0.05)
		mustAddEdge(t, g, "b", "c", 0.8)
		mustAddEdge(t, g, "c", "a", -0.7)

		removed := g.EnsureDAG()
		if len(removed) != 1 || removed[0] != NewEdgeID("a", "b") {
			t.Errorf("expected to remove a->b (|r|=0.05), removed %v", removed)
		}
	})

	t.Run("repairs interlocking cycles until none remain", func(t *testing.T) {
		g := newTestGraph(t, "a", "b", "c", "d")
		mustAddEdge(t, g, "a", "b", 0.9)
		mustAddEdge(t, g, "b", "a", 0.1)
		mustAddEdge(t, g, "b", "c", 0.8)
		mustAddEdge(t, g, "c", "d", 0.7)
		mustAddEdge(t, g, "d", "b", 0.2)

		g.EnsureDAG()
		if cycles := g.FindCycles(); len(cycles) != 0 {
			t.Errorf("expected full repair, cycles remain: %v", cycles)
		}
		if !g.Acyclic {
			t.Error("acyclic flag should be set")
		}
	})

	t.Run("computes a valid topological order", func(t *testing.T) {
		g := newTestGraph(t, "a", "b", "c", "d")
		mustAddEdge(t, g, "a", "b", 0.5)
		mustAddEdge(t, g, "b", "c", 0.5)
		mustAddEdge(t, g, "a", "d", 0.5)

		g.EnsureDAG()
		position := map[string]int{}
		for i, id := range g.TopoOrder {
			position[id.String()] = i
		}
		if len(position) != 4 {
			t.Fatalf("topo order should cover all nodes, got %v", g.TopoOrder)
		}
		for _, edge := range g.Edges {
			if position[edge.Source.String()] >= position[edge.Target.String()] {
				t.Errorf("edge %s violates topological order %v", edge.ID, g.TopoOrder)
			}
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("cycle then repair", func(t *testing.T) {
		g := newTestGraph(t, "a", "b", "c")
		mustAddEdge(t, g, "a", "b", 0.5)
		mustAddEdge(t, g, "b", "c", 0.5)
		mustAddEdge(t, g, "c", "a", 0.2)

		report := g.Validate()
		if report.IsAcyclic {
			t.Error("validation should flag the cycle")
		}
		if len(report.Cycles) == 0 {
			t.Error("cycle list should be nonempty")
		}

		g.EnsureDAG()
		report = g.Validate()
		if !report.IsAcyclic {
			t.Error("validation should pass after repair")
		}
	})

	t.Run("reports isolated nodes", func(t *testing.T) {
		g := newTestGraph(t, "a", "b", "lonely")
		mustAddEdge(t, g, "a", "b", 0.5)
		report := g.Validate()
		if len(report.IsolatedNodes) != 1 || report.IsolatedNodes[0] != "lonely" {
			t.Errorf("expected [lonely], got %v", report.IsolatedNodes)
		}
	})

	t.Run("reports temporal ordering violations", func(t *testing.T) {
		g := NewGraph()
		g.AddNode(&CausalNode{ID: "thought", Type: NodeCognition})
		g.AddNode(&CausalNode{ID: "event", Type: NodeTrigger})
		mustAddEdge(t, g, "thought", "event", 0.5)

		report := g.Validate()
		if len(report.TemporalViolations) != 1 {
			t.Errorf("cognition->trigger should violate temporal order, got %v", report.TemporalViolations)
		}
	})

	t.Run("reports out of range strengths", func(t *testing.T) {
		g := newTestGraph(t, "a", "b")
		edge := NewEdge("a", "b", 0.5, ConfidenceLearned)
		if err := g.AddEdge(edge); err != nil {
			t.Fatal(err)
		}
		// Bypass SetStrength to simulate a corrupted snapshot.
		edge.Strength = 1.4
		report := g.Validate()
		if len(report.OutOfRangeEdges) != 1 {
			t.Errorf("expected one out-of-range edge, got %v", report.OutOfRangeEdges)
		}
	})
}

func TestTemporalTiers(t *testing.T) {
	cases := []struct {
		nodeType NodeType
		tier     int
	}{
		{NodeTrigger, 0},
		{NodeIntervention, 0},
		{NodeEmotion, 1},
		{NodeProtective, 1},
		{NodeCognition, 2},
		{NodeBehavior, 3},
		{NodePhysiological, 3},
	}
	for _, tc := range cases {
		if got := tc.nodeType.TemporalTier(); got != tc.tier {
			t.Errorf("tier of %s = %d, want %d", tc.nodeType, got, tc.tier)
		}
	}
}
