package engine

import (
	"math"

	"github.com/montanaflynn/stats"

	"causemap/domain/causal"
	"causemap/domain/core"
)

// minResidualVariance floors the residual variance so the log-likelihood of a
// perfectly fit node stays finite.
const minResidualVariance = 1e-8

// CalculateBIC scores the graph against the observations. For each node the
// residual variance after regressing on its current parents contributes a
// Gaussian log-likelihood; the penalty term counts one parameter per parent
// plus an intercept per node. Lower is better. Zero observations score +Inf.
func CalculateBIC(g *causal.CausalGraph, observations []causal.CausalObservation) float64 {
	if len(observations) == 0 {
		return math.Inf(1)
	}
	logLikelihood := 0.0
	parameters := 0
	for _, nodeID := range g.NodeKeys() {
		parents := g.Parents(nodeID)
		residuals, n := nodeResiduals(observations, nodeID, parents)
		if n == 0 {
			continue
		}
		variance, err := stats.PopulationVariance(residuals)
		if err != nil || variance < minResidualVariance {
			variance = minResidualVariance
		}
		nf := float64(n)
		logLikelihood += -0.5 * nf * (math.Log(2*math.Pi*variance) + 1)
		parameters += len(parents) + 1
	}
	return -2*logLikelihood + float64(parameters)*math.Log(float64(len(observations)))
}

// nodeResiduals returns the node's series with its parents' linear effects
// removed, over the rows where the node and all parents were observed.
func nodeResiduals(observations []causal.CausalObservation, nodeID core.VariableKey, parents []core.VariableKey) ([]float64, int) {
	keys := append([]core.VariableKey{nodeID}, parents...)
	columns := alignedSeries(observations, keys...)
	y := columns[0]
	if len(y) == 0 {
		return nil, 0
	}
	if len(parents) == 0 {
		centered := make([]float64, len(y))
		m := mean(y)
		for i, v := range y {
			centered[i] = v - m
		}
		return centered, len(y)
	}
	return Residualize(y, columns[1:]), len(y)
}

// nodeRSquared computes 1 - SSres/SStot for a node given its parents.
// Nodes with zero total variance report 0.
func nodeRSquared(observations []causal.CausalObservation, nodeID core.VariableKey, parents []core.VariableKey) float64 {
	keys := append([]core.VariableKey{nodeID}, parents...)
	columns := alignedSeries(observations, keys...)
	y := columns[0]
	if len(y) == 0 {
		return 0
	}
	m := mean(y)
	ssTot := 0.0
	for _, v := range y {
		d := v - m
		ssTot += d * d
	}
	if ssTot == 0 {
		return 0
	}
	residuals := Residualize(y, columns[1:])
	rm := mean(residuals)
	ssRes := 0.0
	for _, v := range residuals {
		d := v - rm
		ssRes += d * d
	}
	r2 := 1 - ssRes/ssTot
	if r2 < 0 {
		return 0
	}
	if r2 > 1 {
		return 1
	}
	return r2
}
