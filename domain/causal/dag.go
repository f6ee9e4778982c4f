package causal

import (
	"math"
	"sort"

	"causemap/domain/core"
)

// DFS colors for cycle detection.
const (
	colorWhite = iota // unvisited
	colorGray         // on the current path
	colorBlack        // fully explored
)

// FindCycles returns every directed cycle reachable in one DFS sweep.
// The DFS uses an explicit frame stack rather than recursion so graphs with
// long paths cannot exhaust the call stack.
func (g *CausalGraph) FindCycles() [][]core.VariableKey {
	color := make(map[core.VariableKey]int, len(g.Nodes))
	var cycles [][]core.VariableKey

	type frame struct {
		node     core.VariableKey
		children []core.VariableKey
		next     int
	}

	for _, start := range g.NodeKeys() {
		if color[start] != colorWhite {
			continue
		}
		stack := []frame{{node: start, children: g.Children(start)}}
		color[start] = colorGray
		path := []core.VariableKey{start}

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next < len(f.children) {
				child := f.children[f.next]
				f.next++
				switch color[child] {
				case colorWhite:
					color[child] = colorGray
					stack = append(stack, frame{node: child, children: g.Children(child)})
					path = append(path, child)
				case colorGray:
					// Back edge: the cycle is the path suffix starting at child.
					for i, n := range path {
						if n == child {
							cycle := make([]core.VariableKey, len(path)-i)
							copy(cycle, path[i:])
							cycles = append(cycles, cycle)
							break
						}
					}
				}
			} else {
				color[f.node] = colorBlack
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
			}
		}
	}
	return cycles
}

// EnsureDAG repairs cycles by deleting the weakest-magnitude edge of the
// first cycle found, repeating until acyclic. Terminates because every
// iteration strictly reduces the edge count. Returns the ids of removed edges.
func (g *CausalGraph) EnsureDAG() []EdgeID {
	var removed []EdgeID
	for {
		cycles := g.FindCycles()
		if len(cycles) == 0 {
			break
		}
		weakest := g.weakestCycleEdge(cycles[0])
		if weakest == "" {
			// Cycle without resolvable edges means adjacency desynced from
			// the edge map, which the single mutation path is meant to prevent.
			break
		}
		if err := g.RemoveEdge(weakest); err != nil {
			break
		}
		removed = append(removed, weakest)
	}
	g.TopoOrder, g.Acyclic = g.TopologicalOrder()
	return removed
}

// weakestCycleEdge returns the id of the lowest-|strength| edge along a cycle.
func (g *CausalGraph) weakestCycleEdge(cycle []core.VariableKey) EdgeID {
	var weakest EdgeID
	minMag := math.Inf(1)
	for i := range cycle {
		source := cycle[i]
		target := cycle[(i+1)%len(cycle)]
		edge, ok := g.EdgeBetween(source, target)
		if !ok {
			continue
		}
		mag := math.Abs(edge.Strength)
		if mag < minMag {
			minMag = mag
			weakest = edge.ID
		}
	}
	return weakest
}

// TopologicalOrder computes a Kahn ordering over the current edge set.
// The boolean is false when the graph still contains a cycle, in which case
// the returned prefix covers only the acyclic portion.
func (g *CausalGraph) TopologicalOrder() ([]core.VariableKey, bool) {
	inDegree := make(map[core.VariableKey]int, len(g.Nodes))
	for id := range g.Nodes {
		inDegree[id] = len(g.parents[id])
	}

	queue := make([]core.VariableKey, 0, len(g.Nodes))
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	order := make([]core.VariableKey, 0, len(g.Nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		appended := false
		for _, child := range g.Children(node) {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
				appended = true
			}
		}
		if appended {
			sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })
		}
	}
	return order, len(order) == len(g.Nodes)
}
