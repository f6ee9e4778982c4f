package engine

import (
	"math"
	"testing"

	"causemap/domain/core"
)

func toKeys(items []string) []core.VariableKey {
	keys := make([]core.VariableKey, len(items))
	for i, item := range items {
		keys[i] = core.VariableKey(item)
	}
	return keys
}

func TestPearsonCorrelation_Properties(t *testing.T) {
	t.Run("self correlation is exactly one", func(t *testing.T) {
		x := []float64{1.2, 3.4, 2.2, 5.1, 0.3, 4.4}
		r := PearsonCorrelation(x, x)
		if math.Abs(r-1.0) > 1e-12 {
			t.Errorf("expected r=1 for x vs x, got %v", r)
		}
	})

	t.Run("constant series yields zero", func(t *testing.T) {
		x := []float64{2, 2, 2, 2, 2}
		y := []float64{1, 2, 3, 4, 5}
		if r := PearsonCorrelation(x, y); r != 0 {
			t.Errorf("expected r=0 for constant x, got %v", r)
		}
		if r := PearsonCorrelation(x, x); r != 0 {
			t.Errorf("expected r=0 for constant vs itself, got %v", r)
		}
	})

	t.Run("perfect negative relationship", func(t *testing.T) {
		x := []float64{1, 2, 3, 4, 5}
		y := []float64{10, 8, 6, 4, 2}
		r := PearsonCorrelation(x, y)
		if math.Abs(r+1.0) > 1e-12 {
			t.Errorf("expected r=-1, got %v", r)
		}
	})

	t.Run("mismatched or empty input yields zero", func(t *testing.T) {
		if r := PearsonCorrelation([]float64{1, 2}, []float64{1}); r != 0 {
			t.Errorf("expected 0 for mismatched lengths, got %v", r)
		}
		if r := PearsonCorrelation(nil, nil); r != 0 {
			t.Errorf("expected 0 for empty input, got %v", r)
		}
	})
}

func TestPartialCorrelation_DegeneratesToPearson(t *testing.T) {
	x := []float64{0.4, 1.8, 2.1, 3.9, 4.2, 5.5, 6.1}
	y := []float64{1.1, 1.9, 3.2, 3.8, 5.3, 5.9, 7.2}

	plain := PearsonCorrelation(x, y)
	partial := PartialCorrelation(x, y, nil)
	if plain != partial {
		t.Errorf("partial with no controls must equal pearson exactly: %v vs %v", partial, plain)
	}
	partial = PartialCorrelation(x, y, [][]float64{})
	if plain != partial {
		t.Errorf("partial with empty controls must equal pearson exactly: %v vs %v", partial, plain)
	}
}

func TestPartialCorrelation_RemovesControlEffect(t *testing.T) {
	// x and y are both driven by z; controlling for z should collapse the
	// apparent correlation.
	n := 200
	z := make([]float64, n)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		z[i] = math.Sin(float64(i)*0.7) * 3
		x[i] = 0.9*z[i] + math.Cos(float64(i)*1.3)*0.2
		y[i] = 0.8*z[i] + math.Sin(float64(i)*2.9)*0.2
	}

	raw := PearsonCorrelation(x, y)
	controlled := PartialCorrelation(x, y, [][]float64{z})
	if math.Abs(raw) < 0.8 {
		t.Fatalf("test setup broken: expected strong raw correlation, got %v", raw)
	}
	if math.Abs(controlled) > math.Abs(raw)/2 {
		t.Errorf("conditioning on the common cause should shrink correlation: raw=%v controlled=%v", raw, controlled)
	}
}

func TestFisherZ_ClampsExtremes(t *testing.T) {
	for _, r := range []float64{1, -1, 1.5, -1.5} {
		z := FisherZ(r)
		if math.IsInf(z, 0) || math.IsNaN(z) {
			t.Errorf("FisherZ(%v) must stay finite, got %v", r, z)
		}
	}
	if z := FisherZ(0); z != 0 {
		t.Errorf("FisherZ(0) should be 0, got %v", z)
	}
	if FisherZ(0.5) <= 0 || FisherZ(-0.5) >= 0 {
		t.Error("FisherZ must preserve sign")
	}
}

func TestTestIndependenceCI(t *testing.T) {
	t.Run("underpowered sample treated as independent", func(t *testing.T) {
		result := TestIndependenceCI(0.99, 5, 2, 0.05)
		if !result.Independent {
			t.Error("n <= k+3 must be treated as independent (conservative default)")
		}
	})

	t.Run("strong correlation with large sample is dependent", func(t *testing.T) {
		result := TestIndependenceCI(0.8, 200, 0, 0.05)
		if result.Independent {
			t.Errorf("r=0.8 with n=200 should reject independence, z=%v", result.ZStatistic)
		}
		if result.PValue > 0.001 {
			t.Errorf("expected tiny p-value, got %v", result.PValue)
		}
	})

	t.Run("near zero correlation is independent", func(t *testing.T) {
		result := TestIndependenceCI(0.02, 200, 1, 0.05)
		if !result.Independent {
			t.Errorf("r=0.02 with n=200 should look independent, z=%v", result.ZStatistic)
		}
	})

	t.Run("critical values follow the alpha table", func(t *testing.T) {
		cases := []struct {
			alpha float64
			want  float64
		}{
			{0.01, 2.576},
			{0.005, 2.576},
			{0.05, 1.96},
			{0.1, 1.645},
		}
		for _, tc := range cases {
			if got := criticalValue(tc.alpha); got != tc.want {
				t.Errorf("criticalValue(%v) = %v, want %v", tc.alpha, got, tc.want)
			}
		}
	})
}

func TestCombinations(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	keys := toKeys(items)

	t.Run("choose zero yields the empty subset", func(t *testing.T) {
		subsets := combinations(keys, 0)
		if len(subsets) != 1 || len(subsets[0]) != 0 {
			t.Errorf("expected single empty subset, got %v", subsets)
		}
	})

	t.Run("choose two yields n-choose-k subsets in lexicographic order", func(t *testing.T) {
		subsets := combinations(keys, 2)
		if len(subsets) != 6 {
			t.Fatalf("expected 6 subsets of size 2 from 4 items, got %d", len(subsets))
		}
		if subsets[0][0] != "a" || subsets[0][1] != "b" {
			t.Errorf("first subset should be [a b], got %v", subsets[0])
		}
		if subsets[5][0] != "c" || subsets[5][1] != "d" {
			t.Errorf("last subset should be [c d], got %v", subsets[5])
		}
	})

	t.Run("k larger than n yields nothing", func(t *testing.T) {
		if subsets := combinations(keys, 5); subsets != nil {
			t.Errorf("expected nil, got %v", subsets)
		}
	})
}
