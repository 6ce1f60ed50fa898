package lexrank

import "math"

// Centrality is the outcome of PowerIterate.
type Centrality struct {
	Scores     []float64
	Iterations int
	Converged  bool
}

// PowerIterate estimates the stationary importance of each sentence.
//
// Scores start at 1/N. Each round computes next[i] = Σ_j m[j][i]·cur[j] and
// stops once the L1 delta is ≤ epsilon or maxIterations rounds have run.
// The vector is never renormalized, so its sum may fall below 1 when the
// graph has isolated sentences.
func PowerIterate(m Matrix, epsilon float64, maxIterations int) Centrality {
	n := len(m)
	if n == 0 {
		return Centrality{Scores: []float64{}, Converged: true}
	}

	current := make([]float64, n)
	for i := range current {
		current[i] = 1 / float64(n)
	}

	result := Centrality{}
	for result.Iterations < maxIterations {
		next := make([]float64, n)
		for j, row := range m {
			if current[j] == 0 {
				continue
			}
			for i, w := range row {
				next[i] += w * current[j]
			}
		}

		var lambda float64
		for i := range next {
			lambda += math.Abs(next[i] - current[i])
		}
		current = next
		result.Iterations++

		if lambda <= epsilon {
			result.Converged = true
			break
		}
	}

	result.Scores = current
	return result
}
