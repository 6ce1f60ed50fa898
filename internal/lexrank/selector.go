package lexrank

import (
	"sort"
	"strings"
)

// ScoredSentence is a selected sentence with its centrality score.
type ScoredSentence struct {
	Sentence
	Score float64 `json:"score"`
}

// Select keeps every sentence scoring at least the mean, in document order.
// When nothing qualifies it returns the top max(1, N/2) sentences in
// descending score order instead, and reports fallback.
func Select(sentences []Sentence, scores []float64) (selected []ScoredSentence, fallback bool) {
	n := len(sentences)
	if n == 0 || len(scores) != n {
		return nil, false
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(n)

	for i, s := range sentences {
		if scores[i] >= mean {
			selected = append(selected, ScoredSentence{Sentence: s, Score: scores[i]})
		}
	}
	if len(selected) > 0 {
		return selected, false
	}

	ranked := make([]ScoredSentence, n)
	for i, s := range sentences {
		ranked[i] = ScoredSentence{Sentence: s, Score: scores[i]}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})

	keep := n / 2
	if keep < 1 {
		keep = 1
	}
	return ranked[:keep], true
}

// Join concatenates the selected sentences with sep for prompt assembly.
func Join(sentences []string, sep string) string {
	return strings.Join(sentences, sep)
}
