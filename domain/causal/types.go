package causal

import (
	"fmt"

	"causemap/domain/core"
)

// NodeType classifies a variable's causal role in the mental-health model.
type NodeType string

const (
	NodeTrigger       NodeType = "trigger"
	NodeEmotion       NodeType = "emotion"
	NodeCognition     NodeType = "cognition"
	NodeBehavior      NodeType = "behavior"
	NodePhysiological NodeType = "physiological"
	NodeIntervention  NodeType = "intervention"
	NodeProtective    NodeType = "protective"
)

// TemporalTier returns the causal-ordering tier for a node type.
// A source may never point at a strictly earlier tier.
func (t NodeType) TemporalTier() int {
	switch t {
	case NodeTrigger, NodeIntervention:
		return 0
	case NodeEmotion, NodeProtective:
		return 1
	case NodeCognition:
		return 2
	case NodeBehavior, NodePhysiological:
		return 3
	default:
		return 3
	}
}

// EdgeType classifies how a causal influence operates.
type EdgeType string

const (
	EdgeDirect    EdgeType = "direct"
	EdgeMediated  EdgeType = "mediated"
	EdgeModerated EdgeType = "moderated"
	EdgeFeedback  EdgeType = "feedback"
)

// Confidence expresses the provenance tier of an edge.
type Confidence string

const (
	// ConfidenceEstablished edges come from clinical evidence and are
	// provenance-protected: statistical testing may reinforce but never remove them.
	ConfidenceEstablished  Confidence = "established"
	ConfidenceProbable     Confidence = "probable"
	ConfidenceHypothesized Confidence = "hypothesized"
	ConfidenceLearned      Confidence = "learned"
)

// Weight maps a confidence tier to its contribution in overall-confidence scoring.
func (c Confidence) Weight() float64 {
	switch c {
	case ConfidenceEstablished:
		return 1.0
	case ConfidenceProbable:
		return 0.75
	case ConfidenceLearned:
		return 0.6
	case ConfidenceHypothesized:
		return 0.5
	default:
		return 0.5
	}
}

// EdgeID is derived deterministically from the edge's endpoints.
type EdgeID string

// NewEdgeID builds the canonical edge identifier for source→target.
func NewEdgeID(source, target core.VariableKey) EdgeID {
	return EdgeID(fmt.Sprintf("%s->%s", source, target))
}

// String returns the string representation
func (id EdgeID) String() string { return string(id) }

// CausalNode is a variable in the causal graph. Owned exclusively by the
// graph that contains it.
type CausalNode struct {
	ID             core.VariableKey `json:"id"`
	Name           string           `json:"name"`
	ShortName      string           `json:"short_name,omitempty"`
	Type           NodeType         `json:"type"`
	CurrentValue   float64          `json:"current_value"`
	ObservedAt     core.Timestamp   `json:"observed_at"`
	Observable     bool             `json:"observable"`
	Manipulable    bool             `json:"manipulable"`
	Baseline       float64          `json:"baseline"`
	Volatility     float64          `json:"volatility"`
	TypicalLagDays float64          `json:"typical_lag_days"`
	Persistence    float64          `json:"persistence"`
}

// CausalEdge is a directed causal relationship between two nodes.
type CausalEdge struct {
	ID            EdgeID           `json:"id"`
	Source        core.VariableKey `json:"source"`
	Target        core.VariableKey `json:"target"`
	Type          EdgeType         `json:"type"`
	Strength      float64          `json:"strength"`   // [-1, 1]
	Confidence    Confidence       `json:"confidence"`
	Probability   float64          `json:"probability"` // |Strength|
	MinLagHours   float64          `json:"min_lag_hours"`
	MaxLagHours   float64          `json:"max_lag_hours"`
	PeakLagHours  float64          `json:"peak_lag_hours"`
	EvidenceCount int              `json:"evidence_count"`
	UpdatedAt     core.Timestamp   `json:"updated_at"`
}

// NewEdge constructs an edge with its deterministic id and derived probability.
func NewEdge(source, target core.VariableKey, strength float64, confidence Confidence) *CausalEdge {
	e := &CausalEdge{
		ID:         NewEdgeID(source, target),
		Source:     source,
		Target:     target,
		Type:       EdgeDirect,
		Confidence: confidence,
		UpdatedAt:  core.Now(),
	}
	e.SetStrength(strength)
	return e
}

// SetStrength updates the edge strength, clamping to [-1, 1] and keeping the
// conditional probability in sync.
func (e *CausalEdge) SetStrength(strength float64) {
	if strength > 1 {
		strength = 1
	}
	if strength < -1 {
		strength = -1
	}
	e.Strength = strength
	if strength < 0 {
		e.Probability = -strength
	} else {
		e.Probability = strength
	}
}

// Protected reports whether the edge may be removed by statistical testing.
func (e *CausalEdge) Protected() bool {
	return e.Confidence == ConfidenceEstablished
}

// CausalObservation is one time-stamped reading of variable values.
// Immutable once produced; the engine never mutates observation inputs.
type CausalObservation struct {
	Timestamp core.Timestamp               `json:"timestamp"`
	Values    map[core.VariableKey]float64 `json:"values"`
}

// Value looks up a variable reading in the observation.
func (o CausalObservation) Value(key core.VariableKey) (float64, bool) {
	v, ok := o.Values[key]
	return v, ok
}
