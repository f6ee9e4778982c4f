package causal

import (
	"encoding/json"
	"errors"
	"testing"

	"causemap/domain/core"
)

func newTestGraph(t *testing.T, nodes ...core.VariableKey) *CausalGraph {
	t.Helper()
	g := NewGraph()
	for _, id := range nodes {
		g.AddNode(&CausalNode{ID: id, Name: id.String(), Type: NodeEmotion, Observable: true})
	}
	return g
}

func mustAddEdge(t *testing.T, g *CausalGraph, source, target core.VariableKey, strength float64) {
	t.Helper()
	if err := g.AddEdge(NewEdge(source, target, strength, ConfidenceLearned)); err != nil {
		t.Fatalf("AddEdge(%s->%s): %v", source, target, err)
	}
}

func TestGraph_EdgeMutation(t *testing.T) {
	t.Run("add edge updates both adjacency directions", func(t *testing.T) {
		g := newTestGraph(t, "a", "b")
		mustAddEdge(t, g, "a", "b", 0.5)

		if !g.HasEdge("a", "b") {
			t.Error("edge a->b should exist")
		}
		if children := g.Children("a"); len(children) != 1 || children[0] != "b" {
			t.Errorf("children of a: got %v, want [b]", children)
		}
		if parents := g.Parents("b"); len(parents) != 1 || parents[0] != "a" {
			t.Errorf("parents of b: got %v, want [a]", parents)
		}
	})

	t.Run("remove edge clears adjacency", func(t *testing.T) {
		g := newTestGraph(t, "a", "b")
		mustAddEdge(t, g, "a", "b", 0.5)
		if err := g.RemoveEdge(NewEdgeID("a", "b")); err != nil {
			t.Fatalf("RemoveEdge: %v", err)
		}
		if g.HasEdge("a", "b") {
			t.Error("edge should be gone")
		}
		if len(g.Children("a")) != 0 || len(g.Parents("b")) != 0 {
			t.Error("adjacency entries should be gone")
		}
	})

	t.Run("rejects self loops and unknown endpoints", func(t *testing.T) {
		g := newTestGraph(t, "a", "b")
		if err := g.AddEdge(NewEdge("a", "a", 0.5, ConfidenceLearned)); !errors.Is(err, core.ErrSelfLoop) {
			t.Errorf("expected ErrSelfLoop, got %v", err)
		}
		if err := g.AddEdge(NewEdge("a", "missing", 0.5, ConfidenceLearned)); !errors.Is(err, core.ErrNodeNotFound) {
			t.Errorf("expected ErrNodeNotFound, got %v", err)
		}
	})

	t.Run("rejects duplicate edges", func(t *testing.T) {
		g := newTestGraph(t, "a", "b")
		mustAddEdge(t, g, "a", "b", 0.5)
		if err := g.AddEdge(NewEdge("a", "b", 0.2, ConfidenceLearned)); !errors.Is(err, core.ErrEdgeExists) {
			t.Errorf("expected ErrEdgeExists, got %v", err)
		}
	})
}

func TestGraph_HasPath(t *testing.T) {
	g := newTestGraph(t, "a", "b", "c", "d")
	mustAddEdge(t, g, "a", "b", 0.5)
	mustAddEdge(t, g, "b", "c", 0.5)

	if !g.HasPath("a", "c") {
		t.Error("a should reach c through b")
	}
	if g.HasPath("c", "a") {
		t.Error("edges are directed; c must not reach a")
	}
	if g.HasPath("a", "d") {
		t.Error("d is disconnected")
	}
	if !g.HasPath("a", "a") {
		t.Error("every node reaches itself")
	}
}

func TestEdge_StrengthClamping(t *testing.T) {
	edge := NewEdge("a", "b", 1.7, ConfidenceLearned)
	if edge.Strength != 1 {
		t.Errorf("strength should clamp to 1, got %v", edge.Strength)
	}
	edge.SetStrength(-2.3)
	if edge.Strength != -1 {
		t.Errorf("strength should clamp to -1, got %v", edge.Strength)
	}
	if edge.Probability != 1 {
		t.Errorf("probability should be |strength|, got %v", edge.Probability)
	}
}

func TestGraph_EffectiveStrength(t *testing.T) {
	g := newTestGraph(t, "a", "b")
	mustAddEdge(t, g, "a", "b", 0.5)
	id := NewEdgeID("a", "b")

	s, ok := g.EffectiveStrength(id)
	if !ok || s != 0.5 {
		t.Fatalf("expected base strength 0.5, got %v ok=%t", s, ok)
	}
	if err := g.SetStrengthOverride(id, 0.9); err != nil {
		t.Fatalf("SetStrengthOverride: %v", err)
	}
	s, _ = g.EffectiveStrength(id)
	if s != 0.9 {
		t.Errorf("override should win, got %v", s)
	}
	if g.Edges[id].Strength != 0.5 {
		t.Error("override must not mutate the learned strength")
	}
}

func TestGraph_JSONRoundTrip(t *testing.T) {
	g := newTestGraph(t, "a", "b", "c")
	mustAddEdge(t, g, "a", "b", 0.6)
	mustAddEdge(t, g, "b", "c", -0.4)
	g.TopoOrder, g.Acyclic = g.TopologicalOrder()

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var loaded CausalGraph
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(loaded.Nodes) != 3 || len(loaded.Edges) != 2 {
		t.Fatalf("round trip lost entities: %d nodes, %d edges", len(loaded.Nodes), len(loaded.Edges))
	}
	// Adjacency is derived state and must be rebuilt on load.
	if parents := loaded.Parents("c"); len(parents) != 1 || parents[0] != "b" {
		t.Errorf("rebuilt parents of c: got %v, want [b]", parents)
	}
	if !loaded.HasPath("a", "c") {
		t.Error("rebuilt graph should preserve reachability")
	}
}
