// Package priors carries the expert-knowledge catalogue of candidate causal
// edges. The catalogue is configuration data, not code: clinicians can edit
// the YAML file without touching the engine.
package priors

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"causemap/domain/causal"
	"causemap/domain/core"
)

// Prior is one expert-supplied candidate causal edge, seeded into the graph
// before statistical search.
type Prior struct {
	// Source is the variable the influence originates from.
	Source core.VariableKey `yaml:"source" json:"source"`

	// Target is the variable being influenced.
	Target core.VariableKey `yaml:"target" json:"target"`

	// Type classifies the influence (direct, mediated, moderated, feedback).
	// Defaults to direct when omitted.
	Type causal.EdgeType `yaml:"type,omitempty" json:"type,omitempty"`

	// Strength is the expected effect in [-1, 1].
	Strength float64 `yaml:"strength" json:"strength"`

	// Confidence is the provenance tier. Established priors are never
	// removed by statistical testing, only reinforced.
	Confidence causal.Confidence `yaml:"confidence" json:"confidence"`

	// Lag window in hours between cause and typical effect.
	MinLagHours  float64 `yaml:"min_lag_hours,omitempty" json:"min_lag_hours,omitempty"`
	MaxLagHours  float64 `yaml:"max_lag_hours,omitempty" json:"max_lag_hours,omitempty"`
	PeakLagHours float64 `yaml:"peak_lag_hours,omitempty" json:"peak_lag_hours,omitempty"`
}

// VariableSpec declares what kind of variable a key refers to. The engine
// falls back to NodeBehavior for keys the catalogue does not know.
type VariableSpec struct {
	Key core.VariableKey `yaml:"key" json:"key"`

	// Name is the human-readable display name.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Type is the causal role (trigger, emotion, cognition, behavior,
	// physiological, intervention, protective).
	Type causal.NodeType `yaml:"type" json:"type"`

	// Manipulable marks variables the user can act on directly.
	Manipulable bool `yaml:"manipulable,omitempty" json:"manipulable,omitempty"`

	// TypicalLagDays is the expected delay before effects show downstream.
	TypicalLagDays float64 `yaml:"typical_lag_days,omitempty" json:"typical_lag_days,omitempty"`

	// Persistence expresses how long the variable's state lingers (0-1).
	Persistence float64 `yaml:"persistence,omitempty" json:"persistence,omitempty"`
}

// Catalogue is a versioned set of priors plus variable typing.
type Catalogue struct {
	// Version guards against schema drift in externally edited files.
	Version int `yaml:"version" json:"version"`

	// Variables declares the causal role of known variable keys.
	Variables []VariableSpec `yaml:"variables,omitempty" json:"variables,omitempty"`

	// Priors lists the candidate edges.
	Priors []Prior `yaml:"priors" json:"priors"`
}

// Spec looks up the declaration for a variable key.
func (c *Catalogue) Spec(key core.VariableKey) (VariableSpec, bool) {
	for _, v := range c.Variables {
		if v.Key == key {
			return v, true
		}
	}
	return VariableSpec{}, false
}

// Edge converts the prior into a seedable causal edge.
func (p Prior) Edge() *causal.CausalEdge {
	edge := causal.NewEdge(p.Source, p.Target, p.Strength, p.Confidence)
	if p.Type != "" {
		edge.Type = p.Type
	}
	edge.MinLagHours = p.MinLagHours
	edge.MaxLagHours = p.MaxLagHours
	edge.PeakLagHours = p.PeakLagHours
	return edge
}

// Load reads a catalogue from a YAML file.
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read priors catalogue: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalogue from YAML bytes and validates it.
func Parse(data []byte) (*Catalogue, error) {
	var cat Catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse priors catalogue: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks every prior for usable endpoints, bounds and tiers.
func (c *Catalogue) Validate() error {
	for i, p := range c.Priors {
		if p.Source == "" || p.Target == "" {
			return fmt.Errorf("prior %d: source and target are required", i)
		}
		if p.Source == p.Target {
			return fmt.Errorf("prior %d: %w (%s)", i, core.ErrSelfLoop, p.Source)
		}
		if p.Strength < -1 || p.Strength > 1 {
			return fmt.Errorf("prior %d (%s->%s): strength %.2f outside [-1,1]", i, p.Source, p.Target, p.Strength)
		}
		switch p.Confidence {
		case causal.ConfidenceEstablished, causal.ConfidenceProbable,
			causal.ConfidenceHypothesized, causal.ConfidenceLearned:
		default:
			return fmt.Errorf("prior %d (%s->%s): unknown confidence %q", i, p.Source, p.Target, p.Confidence)
		}
	}
	return nil
}

// Default returns the built-in mental-health/sleep catalogue, used when no
// external file is supplied.
func Default() *Catalogue {
	return &Catalogue{
		Version: 1,
		Variables: []VariableSpec{
			{Key: "stress_event", Name: "Stressful event", Type: causal.NodeTrigger, TypicalLagDays: 0},
			{Key: "anxiety", Name: "Anxiety", Type: causal.NodeEmotion, TypicalLagDays: 0, Persistence: 0.5},
			{Key: "mood", Name: "Mood", Type: causal.NodeEmotion, TypicalLagDays: 0.5, Persistence: 0.6},
			{Key: "rumination", Name: "Rumination", Type: causal.NodeCognition, TypicalLagDays: 0.5, Persistence: 0.7},
			{Key: "avoidance", Name: "Avoidance behavior", Type: causal.NodeBehavior, TypicalLagDays: 1, Persistence: 0.6},
			{Key: "sleep_quality", Name: "Sleep quality", Type: causal.NodePhysiological, TypicalLagDays: 1, Persistence: 0.3},
			{Key: "heart_rate", Name: "Resting heart rate", Type: causal.NodePhysiological, TypicalLagDays: 0, Persistence: 0.2},
			{Key: "caffeine", Name: "Caffeine intake", Type: causal.NodeIntervention, Manipulable: true},
			{Key: "alcohol", Name: "Alcohol intake", Type: causal.NodeIntervention, Manipulable: true},
			{Key: "exercise", Name: "Exercise", Type: causal.NodeIntervention, Manipulable: true, TypicalLagDays: 0.5},
			{Key: "meditation", Name: "Meditation practice", Type: causal.NodeIntervention, Manipulable: true},
			{Key: "social_support", Name: "Social support", Type: causal.NodeProtective, Persistence: 0.8},
		},
		Priors: []Prior{
			{Source: "stress_event", Target: "anxiety", Strength: 0.7, Confidence: causal.ConfidenceEstablished, MinLagHours: 0, MaxLagHours: 6, PeakLagHours: 1},
			{Source: "anxiety", Target: "rumination", Strength: 0.6, Confidence: causal.ConfidenceEstablished, MinLagHours: 0, MaxLagHours: 12, PeakLagHours: 2},
			{Source: "rumination", Target: "sleep_quality", Strength: -0.6, Confidence: causal.ConfidenceEstablished, MinLagHours: 2, MaxLagHours: 24, PeakLagHours: 8},
			{Source: "anxiety", Target: "heart_rate", Strength: 0.5, Confidence: causal.ConfidenceProbable, MaxLagHours: 2, PeakLagHours: 0.5},
			{Source: "caffeine", Target: "sleep_quality", Strength: -0.4, Confidence: causal.ConfidenceEstablished, MinLagHours: 2, MaxLagHours: 12, PeakLagHours: 6},
			{Source: "exercise", Target: "mood", Strength: 0.4, Confidence: causal.ConfidenceProbable, MaxLagHours: 24, PeakLagHours: 4},
			{Source: "exercise", Target: "sleep_quality", Strength: 0.3, Confidence: causal.ConfidenceProbable, MinLagHours: 4, MaxLagHours: 24, PeakLagHours: 12},
			{Source: "sleep_quality", Target: "mood", Strength: 0.5, Confidence: causal.ConfidenceEstablished, MinLagHours: 6, MaxLagHours: 24, PeakLagHours: 10},
			{Source: "social_support", Target: "anxiety", Strength: -0.4, Confidence: causal.ConfidenceProbable, MaxLagHours: 24, PeakLagHours: 2},
			{Source: "meditation", Target: "rumination", Strength: -0.35, Confidence: causal.ConfidenceProbable, MaxLagHours: 12, PeakLagHours: 1},
			{Source: "alcohol", Target: "sleep_quality", Strength: -0.45, Confidence: causal.ConfidenceEstablished, MinLagHours: 1, MaxLagHours: 12, PeakLagHours: 5},
			{Source: "mood", Target: "avoidance", Strength: -0.3, Confidence: causal.ConfidenceHypothesized, MaxLagHours: 48, PeakLagHours: 12},
		},
	}
}
