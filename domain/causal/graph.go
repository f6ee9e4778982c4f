package causal

import (
	"encoding/json"
	"fmt"
	"sort"

	"causemap/domain/core"
)

// CausalGraph holds the node set, edge set and both adjacency directions.
// The adjacency maps are derived state: they must always mirror the edge map,
// which is why all mutation goes through AddEdge/RemoveEdge. Desync between
// them is a programming error, not a runtime condition.
type CausalGraph struct {
	ID    core.GraphID                     `json:"id"`
	Nodes map[core.VariableKey]*CausalNode `json:"nodes"`
	Edges map[EdgeID]*CausalEdge           `json:"edges"`

	children map[core.VariableKey][]core.VariableKey
	parents  map[core.VariableKey][]core.VariableKey

	Acyclic   bool               `json:"acyclic"`
	TopoOrder []core.VariableKey `json:"topo_order,omitempty"`
	CreatedAt core.Timestamp     `json:"created_at"`
	UpdatedAt core.Timestamp     `json:"updated_at"`

	// StrengthOverrides carries optional per-user strength adjustments,
	// applied on read via EffectiveStrength without touching learned state.
	StrengthOverrides map[EdgeID]float64 `json:"strength_overrides,omitempty"`
}

// NewGraph creates an empty causal graph.
func NewGraph() *CausalGraph {
	now := core.Now()
	return &CausalGraph{
		ID:        core.GraphID(core.NewID()),
		Nodes:     make(map[core.VariableKey]*CausalNode),
		Edges:     make(map[EdgeID]*CausalEdge),
		children:  make(map[core.VariableKey][]core.VariableKey),
		parents:   make(map[core.VariableKey][]core.VariableKey),
		Acyclic:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddNode registers a node. Re-adding an existing id replaces its metadata
// but leaves edges untouched.
func (g *CausalGraph) AddNode(node *CausalNode) {
	g.Nodes[node.ID] = node
	g.UpdatedAt = core.Now()
}

// Node returns the node with the given id, if present.
func (g *CausalGraph) Node(id core.VariableKey) (*CausalNode, bool) {
	n, ok := g.Nodes[id]
	return n, ok
}

// AddEdge inserts an edge and updates both adjacency directions atomically.
func (g *CausalGraph) AddEdge(edge *CausalEdge) error {
	if edge.Source == edge.Target {
		return fmt.Errorf("%w: %s", core.ErrSelfLoop, edge.Source)
	}
	if _, ok := g.Nodes[edge.Source]; !ok {
		return fmt.Errorf("%w: %s", core.ErrNodeNotFound, edge.Source)
	}
	if _, ok := g.Nodes[edge.Target]; !ok {
		return fmt.Errorf("%w: %s", core.ErrNodeNotFound, edge.Target)
	}
	if _, ok := g.Edges[edge.ID]; ok {
		return fmt.Errorf("%w: %s", core.ErrEdgeExists, edge.ID)
	}
	g.Edges[edge.ID] = edge
	g.children[edge.Source] = append(g.children[edge.Source], edge.Target)
	g.parents[edge.Target] = append(g.parents[edge.Target], edge.Source)
	g.UpdatedAt = core.Now()
	return nil
}

// RemoveEdge deletes an edge and its adjacency entries atomically.
func (g *CausalGraph) RemoveEdge(id EdgeID) error {
	edge, ok := g.Edges[id]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrEdgeNotFound, id)
	}
	delete(g.Edges, id)
	g.children[edge.Source] = removeKey(g.children[edge.Source], edge.Target)
	g.parents[edge.Target] = removeKey(g.parents[edge.Target], edge.Source)
	g.UpdatedAt = core.Now()
	return nil
}

// Edge returns the edge with the given id, if present.
func (g *CausalGraph) Edge(id EdgeID) (*CausalEdge, bool) {
	e, ok := g.Edges[id]
	return e, ok
}

// EdgeBetween returns the edge source→target, if present.
func (g *CausalGraph) EdgeBetween(source, target core.VariableKey) (*CausalEdge, bool) {
	return g.Edge(NewEdgeID(source, target))
}

// HasEdge reports whether source→target exists.
func (g *CausalGraph) HasEdge(source, target core.VariableKey) bool {
	_, ok := g.Edges[NewEdgeID(source, target)]
	return ok
}

// Parents returns a sorted copy of the ids of a node's direct causes.
func (g *CausalGraph) Parents(id core.VariableKey) []core.VariableKey {
	return sortedCopy(g.parents[id])
}

// Children returns a sorted copy of the ids of a node's direct effects.
func (g *CausalGraph) Children(id core.VariableKey) []core.VariableKey {
	return sortedCopy(g.children[id])
}

// NodeKeys returns all node ids in sorted order for deterministic iteration.
func (g *CausalGraph) NodeKeys() []core.VariableKey {
	keys := make([]core.VariableKey, 0, len(g.Nodes))
	for k := range g.Nodes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// EdgeIDs returns all edge ids in sorted order for deterministic iteration.
func (g *CausalGraph) EdgeIDs() []EdgeID {
	ids := make([]EdgeID, 0, len(g.Edges))
	for id := range g.Edges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// HasPath reports whether target is reachable from source by directed edges.
// Iterative DFS so deep graphs cannot blow the call stack.
func (g *CausalGraph) HasPath(source, target core.VariableKey) bool {
	if source == target {
		return true
	}
	visited := make(map[core.VariableKey]bool, len(g.Nodes))
	stack := []core.VariableKey{source}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true
		for _, child := range g.children[current] {
			if child == target {
				return true
			}
			if !visited[child] {
				stack = append(stack, child)
			}
		}
	}
	return false
}

// EffectiveStrength returns the edge strength after applying any per-user override.
func (g *CausalGraph) EffectiveStrength(id EdgeID) (float64, bool) {
	edge, ok := g.Edges[id]
	if !ok {
		return 0, false
	}
	if override, ok := g.StrengthOverrides[id]; ok {
		return override, true
	}
	return edge.Strength, true
}

// SetStrengthOverride records a per-user strength adjustment for an edge.
func (g *CausalGraph) SetStrengthOverride(id EdgeID, strength float64) error {
	if _, ok := g.Edges[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrEdgeNotFound, id)
	}
	if g.StrengthOverrides == nil {
		g.StrengthOverrides = make(map[EdgeID]float64)
	}
	g.StrengthOverrides[id] = strength
	return nil
}

// graphJSON is the wire form; adjacency is derived state and rebuilt on load.
type graphJSON struct {
	ID                core.GraphID                     `json:"id"`
	Nodes             map[core.VariableKey]*CausalNode `json:"nodes"`
	Edges             map[EdgeID]*CausalEdge           `json:"edges"`
	Acyclic           bool                             `json:"acyclic"`
	TopoOrder         []core.VariableKey               `json:"topo_order,omitempty"`
	CreatedAt         core.Timestamp                   `json:"created_at"`
	UpdatedAt         core.Timestamp                   `json:"updated_at"`
	StrengthOverrides map[EdgeID]float64               `json:"strength_overrides,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (g *CausalGraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(graphJSON{
		ID:                g.ID,
		Nodes:             g.Nodes,
		Edges:             g.Edges,
		Acyclic:           g.Acyclic,
		TopoOrder:         g.TopoOrder,
		CreatedAt:         g.CreatedAt,
		UpdatedAt:         g.UpdatedAt,
		StrengthOverrides: g.StrengthOverrides,
	})
}

// UnmarshalJSON implements json.Unmarshaler, rebuilding adjacency from the edge map.
func (g *CausalGraph) UnmarshalJSON(data []byte) error {
	var wire graphJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	g.ID = wire.ID
	g.Nodes = wire.Nodes
	g.Edges = wire.Edges
	g.Acyclic = wire.Acyclic
	g.TopoOrder = wire.TopoOrder
	g.CreatedAt = wire.CreatedAt
	g.UpdatedAt = wire.UpdatedAt
	g.StrengthOverrides = wire.StrengthOverrides
	if g.Nodes == nil {
		g.Nodes = make(map[core.VariableKey]*CausalNode)
	}
	if g.Edges == nil {
		g.Edges = make(map[EdgeID]*CausalEdge)
	}
	g.children = make(map[core.VariableKey][]core.VariableKey)
	g.parents = make(map[core.VariableKey][]core.VariableKey)
	for _, edge := range g.Edges {
		g.children[edge.Source] = append(g.children[edge.Source], edge.Target)
		g.parents[edge.Target] = append(g.parents[edge.Target], edge.Source)
	}
	return nil
}

func removeKey(keys []core.VariableKey, key core.VariableKey) []core.VariableKey {
	for i, k := range keys {
		if k == key {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}

func sortedCopy(keys []core.VariableKey) []core.VariableKey {
	out := make([]core.VariableKey, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
