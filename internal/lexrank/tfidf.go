package lexrank

import (
	"math"

	"github.com/fyrsmithlabs/contextrank/internal/language"
)

// Words tokenizes one sentence with the descriptor's rules, optionally
// stemming each term. Duplicates are kept.
func Words(sentence string, d language.Descriptor, stem bool) []string {
	words := d.TokenizeWords(sentence)
	if stem {
		for i, w := range words {
			words[i] = d.Stem(w)
		}
	}
	return words
}

// TermVector maps a term to its L1-normalized frequency in one sentence.
type TermVector map[string]float64

// TermFrequencies counts each term and divides by the number of words.
// An empty word list yields an empty vector.
func TermFrequencies(words []string) TermVector {
	tf := make(TermVector, len(words))
	if len(words) == 0 {
		return tf
	}
	for _, w := range words {
		tf[w]++
	}
	total := float64(len(words))
	for w := range tf {
		tf[w] /= total
	}
	return tf
}

// CorpusStatistics holds document frequencies and IDF over one sentence set.
type CorpusStatistics struct {
	DocumentFrequency        map[string]int
	InverseDocumentFrequency map[string]float64
	Sentences                int
}

// NewCorpusStatistics computes DF and IDF = ln(N/df) from the per-sentence
// word lists.
func NewCorpusStatistics(docs [][]string) *CorpusStatistics {
	stats := &CorpusStatistics{
		DocumentFrequency:        make(map[string]int),
		InverseDocumentFrequency: make(map[string]float64),
		Sentences:                len(docs),
	}
	for _, words := range docs {
		seen := make(map[string]struct{}, len(words))
		for _, w := range words {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			stats.DocumentFrequency[w]++
		}
	}
	n := float64(len(docs))
	for term, df := range stats.DocumentFrequency {
		stats.InverseDocumentFrequency[term] = math.Log(n / float64(df))
	}
	return stats
}

// IDF returns the inverse document frequency of term, 0 when absent.
func (s *CorpusStatistics) IDF(term string) float64 {
	return s.InverseDocumentFrequency[term]
}

// Weighted returns the TF×IDF vector for tf.
func (s *CorpusStatistics) Weighted(tf TermVector) TermVector {
	out := make(TermVector, len(tf))
	for term, f := range tf {
		out[term] = f * s.IDF(term)
	}
	return out
}
