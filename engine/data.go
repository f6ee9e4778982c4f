package engine

import (
	"sort"

	"causemap/domain/causal"
	"causemap/domain/core"
)

// observedVariables returns every variable key that appears in the
// observation stream, sorted for deterministic iteration.
func observedVariables(observations []causal.CausalObservation) []core.VariableKey {
	seen := make(map[core.VariableKey]bool)
	for _, obs := range observations {
		for key := range obs.Values {
			seen[key] = true
		}
	}
	keys := make([]core.VariableKey, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// series extracts every reading of a single variable, in observation order.
func series(observations []causal.CausalObservation, key core.VariableKey) []float64 {
	values := make([]float64, 0, len(observations))
	for _, obs := range observations {
		if v, ok := obs.Value(key); ok {
			values = append(values, v)
		}
	}
	return values
}

// alignedSeries extracts one column per requested key, keeping only
// observations where every key is present (pair-wise deletion of missing
// rows). Column order matches the key order passed in.
func alignedSeries(observations []causal.CausalObservation, keys ...core.VariableKey) [][]float64 {
	columns := make([][]float64, len(keys))
	for i := range columns {
		columns[i] = make([]float64, 0, len(observations))
	}
	row := make([]float64, len(keys))
	for _, obs := range observations {
		complete := true
		for i, key := range keys {
			v, ok := obs.Value(key)
			if !ok {
				complete = false
				break
			}
			row[i] = v
		}
		if !complete {
			continue
		}
		for i := range keys {
			columns[i] = append(columns[i], row[i])
		}
	}
	return columns
}

// combinations enumerates all size-k subsets of items in lexicographic order.
// Deterministic subset order keeps independence-test short-circuiting stable
// across runs.
func combinations(items []core.VariableKey, k int) [][]core.VariableKey {
	if k == 0 {
		return [][]core.VariableKey{{}}
	}
	if k > len(items) {
		return nil
	}
	var result [][]core.VariableKey
	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}
	for {
		subset := make([]core.VariableKey, k)
		for i, idx := range indices {
			subset[i] = items[idx]
		}
		result = append(result, subset)

		// Advance to the next combination.
		i := k - 1
		for i >= 0 && indices[i] == len(items)-k+i {
			i--
		}
		if i < 0 {
			break
		}
		indices[i]++
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
	return result
}
