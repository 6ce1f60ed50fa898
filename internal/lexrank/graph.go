package lexrank

import (
	"maps"
	"math"
	"slices"
)

// Matrix is a square N×N matrix indexed [row][column].
type Matrix [][]float64

func newMatrix(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

// CosineSimilarity returns the cosine of the angle between two sparse
// vectors, or 0 when either has zero magnitude. Sums run over sorted terms
// so repeated calls agree bit for bit.
func CosineSimilarity(a, b TermVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for _, term := range sortedTerms(a) {
		if y, ok := b[term]; ok {
			dot += a[term] * y
		}
	}
	if dot == 0 {
		return 0
	}
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}

func norm(v TermVector) float64 {
	var sum float64
	for _, term := range sortedTerms(v) {
		sum += v[term] * v[term]
	}
	return math.Sqrt(sum)
}

func sortedTerms(v TermVector) []string {
	return slices.Sorted(maps.Keys(v))
}

// SimilarityMatrix returns pairwise cosine similarities. The diagonal is 0.
func SimilarityMatrix(vectors []TermVector) Matrix {
	n := len(vectors)
	m := newMatrix(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := CosineSimilarity(vectors[i], vectors[j])
			m[i][j] = sim
			m[j][i] = sim
		}
	}
	return m
}

// BuildGraph turns TF-IDF vectors into a row-normalized adjacency matrix.
// A pair is connected when its similarity is strictly greater than
// threshold; edges are binary. Each row is divided by its degree, with a
// zero degree treated as 1, so isolated rows stay all zero.
func BuildGraph(vectors []TermVector, threshold float64) Matrix {
	m := SimilarityMatrix(vectors)
	for i, row := range m {
		degree := 0
		for j, sim := range row {
			if i != j && sim > threshold {
				row[j] = 1
				degree++
			} else {
				row[j] = 0
			}
		}
		if degree == 0 {
			degree = 1
		}
		for j := range row {
			row[j] /= float64(degree)
		}
	}
	return m
}
