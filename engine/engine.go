// Package engine implements hybrid causal-structure discovery over
// time-stamped observations: PC-style constraint pruning of a prior-seeded
// skeleton, GES-style BIC-guided greedy search, DAG repair and validation.
// A single discovery run owns its graph exclusively; runs for different
// users are independent and safe to execute in parallel.
package engine

import (
	"context"
	"sort"
	"time"

	"causemap/domain/causal"
	"causemap/domain/core"
	"causemap/domain/priors"
	"causemap/internal"
)

// EdgePair names a directed candidate edge, used for forbidden-edge config.
type EdgePair struct {
	Source core.VariableKey `json:"source" yaml:"source"`
	Target core.VariableKey `json:"target" yaml:"target"`
}

// Config controls a discovery run.
type Config struct {
	Alpha                float64           // significance level for independence tests
	MinObservations      int               // minimum aligned samples per test
	MaxParents           int               // parent budget per node
	UsePriors            bool              // seed edges from the catalogue
	Catalogue            *priors.Catalogue // domain priors + variable typing
	ForbiddenEdges       []EdgePair
	RespectTemporalOrder bool
	MaxIterations        int     // score-search round cap
	MinAbsCorrelation    float64 // candidate-edge correlation floor
	MinBICImprovement    float64 // BIC delta an edge must clear to stay
	BaselineAlpha        float64 // EMA factor for incremental baseline updates
}

// DefaultConfig returns the standard discovery configuration with the
// built-in priors catalogue.
func DefaultConfig() Config {
	return Config{
		Alpha:                0.05,
		MinObservations:      10,
		MaxParents:           3,
		UsePriors:            true,
		Catalogue:            priors.Default(),
		RespectTemporalOrder: true,
		MaxIterations:        100,
		MinAbsCorrelation:    0.2,
		MinBICImprovement:    2.0,
		BaselineAlpha:        0.1,
	}
}

// Engine orchestrates the discovery pipeline.
type Engine struct {
	cfg Config
	log *internal.Logger
}

// New creates an engine. A nil logger falls back to the default leveled logger.
func New(cfg Config, logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 100
	}
	if cfg.MaxParents <= 0 {
		cfg.MaxParents = 3
	}
	if cfg.Alpha <= 0 {
		cfg.Alpha = 0.05
	}
	if cfg.MinObservations <= 0 {
		cfg.MinObservations = 10
	}
	if cfg.MinAbsCorrelation <= 0 {
		cfg.MinAbsCorrelation = 0.2
	}
	if cfg.MinBICImprovement <= 0 {
		cfg.MinBICImprovement = 2.0
	}
	if cfg.BaselineAlpha <= 0 {
		cfg.BaselineAlpha = 0.1
	}
	return &Engine{cfg: cfg, log: logger}
}

// lowEvidenceThreshold marks edges whose evidence count is too small to trust.
const lowEvidenceThreshold = 5

// DiscoveryResult is the facade's output: the authoritative graph snapshot
// plus fit metrics for the run.
type DiscoveryResult struct {
	RunID              core.RunID              `json:"run_id"`
	Graph              *causal.CausalGraph     `json:"graph"`
	FitScore           float64                 `json:"fit_score"`          // mean per-node R² over nodes with parents
	ComplexityPenalty  float64                 `json:"complexity_penalty"` // BIC of the final graph
	OverallConfidence  float64                 `json:"overall_confidence"`
	LowConfidenceEdges []causal.EdgeID         `json:"low_confidence_edges,omitempty"`
	Validation         causal.ValidationReport `json:"validation"`
	Iterations         int                     `json:"iterations"`
	EdgesTested        int                     `json:"edges_tested"`
	EdgesRemoved       int                     `json:"edges_removed"`
	EdgesAdded         int                     `json:"edges_added"`
	Elapsed            time.Duration           `json:"elapsed"`
}

// DiscoverStructure runs the full pipeline:
// observations → initializer → constraint phase → score phase → DAG repair →
// validation → metrics. The returned graph is a fresh snapshot owned by the
// caller. Degenerate inputs never error: an empty observation set yields an
// empty graph with FitScore 0 and ComplexityPenalty +Inf.
func (e *Engine) DiscoverStructure(ctx context.Context, observations []causal.CausalObservation) (*DiscoveryResult, error) {
	start := time.Now()

	g := e.initializeGraph(observations)
	e.log.Debug("initialized graph: %d nodes, %d prior edges", len(g.Nodes), len(g.Edges))

	tested, removed := e.pruneSkeleton(ctx, g, observations)
	e.log.Debug("constraint phase: %d tests, %d edges pruned", tested, removed)

	iterations, added, err := e.searchStructure(ctx, g, observations)
	if err != nil {
		return nil, err
	}
	e.log.Debug("score phase: %d rounds, %d edges added", iterations, added)

	if repaired := g.EnsureDAG(); len(repaired) > 0 {
		e.log.Info("cycle repair removed %d edges", len(repaired))
		removed += len(repaired)
	}

	result := &DiscoveryResult{
		RunID:             core.RunID(core.NewID()),
		Graph:             g,
		FitScore:          e.fitScore(g, observations),
		ComplexityPenalty: CalculateBIC(g, observations),
		OverallConfidence: overallConfidence(g),
		Validation:        g.Validate(),
		Iterations:        iterations,
		EdgesTested:       tested,
		EdgesRemoved:      removed,
		EdgesAdded:        added,
		Elapsed:           time.Since(start),
	}
	for _, edgeID := range g.EdgeIDs() {
		if g.Edges[edgeID].EvidenceCount < lowEvidenceThreshold {
			result.LowConfidenceEdges = append(result.LowConfidenceEdges, edgeID)
		}
	}
	return result, nil
}

// fitScore is the mean per-node R² across nodes with at least one parent.
func (e *Engine) fitScore(g *causal.CausalGraph, observations []causal.CausalObservation) float64 {
	if len(observations) == 0 {
		return 0
	}
	total := 0.0
	counted := 0
	for _, nodeID := range g.NodeKeys() {
		parents := g.Parents(nodeID)
		if len(parents) == 0 {
			continue
		}
		total += nodeRSquared(observations, nodeID, parents)
		counted++
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

// overallConfidence averages the fixed per-tier weights across all edges.
func overallConfidence(g *causal.CausalGraph) float64 {
	if len(g.Edges) == 0 {
		return 0
	}
	total := 0.0
	for _, edge := range g.Edges {
		total += edge.Confidence.Weight()
	}
	return total / float64(len(g.Edges))
}

// rankedParent pairs a candidate with its correlation magnitude.
type rankedParent struct {
	key core.VariableKey
	r   float64
}

// maxBestParents caps FindBestParents output.
const maxBestParents = 3

// FindBestParents ranks candidate parents of a node by absolute correlation
// and returns at most three whose |r| exceeds the configured floor.
func (e *Engine) FindBestParents(nodeID core.VariableKey, candidates []core.VariableKey, observations []causal.CausalObservation) []core.VariableKey {
	ranked := make([]rankedParent, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == nodeID {
			continue
		}
		columns := alignedSeries(observations, candidate, nodeID)
		r := PearsonCorrelation(columns[0], columns[1])
		if abs(r) <= e.cfg.MinAbsCorrelation {
			continue
		}
		ranked = append(ranked, rankedParent{key: candidate, r: abs(r)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].r != ranked[j].r {
			return ranked[i].r > ranked[j].r
		}
		return ranked[i].key < ranked[j].key
	})
	if len(ranked) > maxBestParents {
		ranked = ranked[:maxBestParents]
	}
	best := make([]core.VariableKey, len(ranked))
	for i, rp := range ranked {
		best[i] = rp.key
	}
	return best
}

// TestIndependence is the standalone conditional-independence utility.
func (e *Engine) TestIndependence(x, y core.VariableKey, conditioning []core.VariableKey, observations []causal.CausalObservation) IndependenceResult {
	keys := append([]core.VariableKey{x, y}, conditioning...)
	columns := alignedSeries(observations, keys...)
	partialR := PartialCorrelation(columns[0], columns[1], columns[2:])
	return TestIndependenceCI(partialR, len(columns[0]), len(conditioning), e.cfg.Alpha)
}

// ScoreDAG exposes the BIC scorer for an existing graph.
func (e *Engine) ScoreDAG(g *causal.CausalGraph, observations []causal.CausalObservation) float64 {
	return CalculateBIC(g, observations)
}
