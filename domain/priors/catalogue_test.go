package priors

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"causemap/domain/causal"
)

const sampleYAML = `
version: 1
variables:
  - key: caffeine
    name: Caffeine intake
    type: intervention
    manipulable: true
  - key: sleep_quality
    name: Sleep quality
    type: physiological
    persistence: 0.3
priors:
  - source: caffeine
    target: sleep_quality
    strength: -0.4
    confidence: established
    min_lag_hours: 2
    max_lag_hours: 12
    peak_lag_hours: 6
`

func TestParse(t *testing.T) {
	cat, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cat.Version != 1 {
		t.Errorf("version = %d, want 1", cat.Version)
	}
	if len(cat.Priors) != 1 {
		t.Fatalf("expected 1 prior, got %d", len(cat.Priors))
	}

	p := cat.Priors[0]
	if p.Source != "caffeine" || p.Target != "sleep_quality" {
		t.Errorf("unexpected endpoints %s->%s", p.Source, p.Target)
	}
	if p.Strength != -0.4 || p.Confidence != causal.ConfidenceEstablished {
		t.Errorf("strength/confidence mismatch: %v %s", p.Strength, p.Confidence)
	}

	spec, ok := cat.Spec("caffeine")
	if !ok {
		t.Fatal("Spec lookup failed")
	}
	if spec.Type != causal.NodeIntervention || !spec.Manipulable {
		t.Errorf("caffeine spec mismatch: %+v", spec)
	}
	if _, ok := cat.Spec("nope"); ok {
		t.Error("unknown keys must not resolve")
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing endpoints",
			yaml: "priors:\n  - source: a\n    strength: 0.5\n    confidence: probable\n",
			want: "source and target are required",
		},
		{
			name: "self loop",
			yaml: "priors:\n  - source: a\n    target: a\n    strength: 0.5\n    confidence: probable\n",
			want: "self-referential",
		},
		{
			name: "strength out of range",
			yaml: "priors:\n  - source: a\n    target: b\n    strength: 1.5\n    confidence: probable\n",
			want: "outside [-1,1]",
		},
		{
			name: "unknown confidence",
			yaml: "priors:\n  - source: a\n    target: b\n    strength: 0.5\n    confidence: certain\n",
			want: "unknown confidence",
		},
		{
			name: "malformed yaml",
			yaml: "priors: [",
			want: "parse priors catalogue",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should mention %q", err, tc.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "priors.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cat.Priors) != 1 {
		t.Errorf("expected 1 prior, got %d", len(cat.Priors))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should error")
	}
}

func TestDefault(t *testing.T) {
	cat := Default()
	if err := cat.Validate(); err != nil {
		t.Fatalf("built-in catalogue must validate: %v", err)
	}
	if len(cat.Priors) == 0 || len(cat.Variables) == 0 {
		t.Fatal("built-in catalogue should not be empty")
	}

	// Every prior endpoint should have a typed variable declaration.
	for _, p := range cat.Priors {
		if _, ok := cat.Spec(p.Source); !ok {
			t.Errorf("prior source %s has no variable spec", p.Source)
		}
		if _, ok := cat.Spec(p.Target); !ok {
			t.Errorf("prior target %s has no variable spec", p.Target)
		}
	}
}

func TestPriorEdge(t *testing.T) {
	p := Prior{
		Source:       "caffeine",
		Target:       "sleep_quality",
		Strength:     -0.4,
		Confidence:   causal.ConfidenceEstablished,
		MinLagHours:  2,
		MaxLagHours:  12,
		PeakLagHours: 6,
	}
	edge := p.Edge()
	if edge.ID != causal.NewEdgeID("caffeine", "sleep_quality") {
		t.Errorf("edge id = %s", edge.ID)
	}
	if edge.Type != causal.EdgeDirect {
		t.Errorf("omitted type should default to direct, got %s", edge.Type)
	}
	if edge.Strength != -0.4 || edge.Probability != 0.4 {
		t.Errorf("strength/probability = %v/%v", edge.Strength, edge.Probability)
	}
	if edge.MinLagHours != 2 || edge.MaxLagHours != 12 || edge.PeakLagHours != 6 {
		t.Error("lag window should carry over")
	}
}
