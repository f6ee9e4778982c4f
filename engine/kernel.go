package engine

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// stdNormal supplies the two-sided p-value reported alongside the
// critical-value decision in the independence test.
var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// mean returns the arithmetic mean, or 0 for an empty slice.
func mean(x []float64) float64 {
	m, err := stats.Mean(x)
	if err != nil {
		return 0
	}
	return m
}

// stdDev returns the population standard deviation, or 0 when undefined.
func stdDev(x []float64) float64 {
	sd, err := stats.StandardDeviationPopulation(x)
	if err != nil {
		return 0
	}
	return sd
}

// PearsonCorrelation computes the Pearson correlation coefficient.
// Zero variance in either series yields 0 rather than NaN.
func PearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}
	n := float64(len(x))
	sumX, sumY := 0.0, 0.0
	sumXY, sumX2, sumY2 := 0.0, 0.0, 0.0
	for i := 0; i < len(x); i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}
	numerator := n*sumXY - sumX*sumY
	denominator := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// Residualize removes the linear effect of each control from y one control at
// a time (beta = r * sdY/sdX per control). This is an approximation, not a
// joint multivariate regression; it is adequate for conditioning sets of at
// most three variables, which is all the constraint phase ever uses.
func Residualize(y []float64, controls [][]float64) []float64 {
	residuals := make([]float64, len(y))
	copy(residuals, y)
	if len(controls) == 0 {
		return residuals
	}
	sdY := stdDev(y)
	predicted := make([]float64, len(y))
	for _, control := range controls {
		if len(control) != len(y) {
			continue
		}
		sdX := stdDev(control)
		if sdX == 0 {
			continue
		}
		r := PearsonCorrelation(y, control)
		beta := r * sdY / sdX
		meanX := mean(control)
		for i := range control {
			predicted[i] += beta * (control[i] - meanX)
		}
	}
	for i := range residuals {
		residuals[i] -= predicted[i]
	}
	return residuals
}

// PartialCorrelation computes the correlation of x and y after removing the
// linear effects of the control variables. With no controls it degenerates to
// the plain Pearson correlation, exactly.
func PartialCorrelation(x, y []float64, controls [][]float64) float64 {
	if len(controls) == 0 {
		return PearsonCorrelation(x, y)
	}
	return PearsonCorrelation(Residualize(x, controls), Residualize(y, controls))
}

// FisherZ applies the Fisher z-transform, clamping r away from ±1 so the
// transform never produces an infinity.
func FisherZ(r float64) float64 {
	if r > 0.9999 {
		r = 0.9999
	}
	if r < -0.9999 {
		r = -0.9999
	}
	return 0.5 * math.Log((1+r)/(1-r))
}

// IndependenceResult carries the outcome of one conditional-independence test.
type IndependenceResult struct {
	Independent bool    `json:"independent"`
	PartialR    float64 `json:"partial_r"`
	ZStatistic  float64 `json:"z_statistic"`
	Critical    float64 `json:"critical"`
	PValue      float64 `json:"p_value"`
	SampleSize  int     `json:"sample_size"`
	Conditioned int     `json:"conditioned"`
}

// TestIndependenceCI tests conditional independence from a partial correlation
// using the Fisher z statistic with standard error 1/sqrt(n - k - 3).
// Samples too small to power the test (n <= k+3) are treated as independent,
// a deliberately conservative policy that over-prunes on tiny datasets.
func TestIndependenceCI(partialR float64, n, numConditioned int, alpha float64) IndependenceResult {
	result := IndependenceResult{
		PartialR:    partialR,
		SampleSize:  n,
		Conditioned: numConditioned,
		Critical:    criticalValue(alpha),
	}
	if n <= numConditioned+3 {
		result.Independent = true
		result.PValue = 1
		return result
	}
	se := 1.0 / math.Sqrt(float64(n-numConditioned-3))
	z := math.Abs(FisherZ(partialR)) / se
	result.ZStatistic = z
	result.PValue = 2 * (1 - stdNormal.CDF(z))
	result.Independent = z < result.Critical
	return result
}

// criticalValue maps a significance level to its two-sided normal quantile.
func criticalValue(alpha float64) float64 {
	switch {
	case alpha <= 0.01:
		return 2.576
	case alpha <= 0.05:
		return 1.96
	default:
		return 1.645
	}
}
