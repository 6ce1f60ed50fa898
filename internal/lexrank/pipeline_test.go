package lexrank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/contextrank/internal/language"
)

func descriptor(t *testing.T, code string) language.Descriptor {
	t.Helper()
	d, _ := language.Default().Resolve(code)
	return d
}

func TestSplitSentences(t *testing.T) {
	en := descriptor(t, "en")

	tests := []struct {
		name string
		lang string
		text string
		want []string
	}{
		{
			name: "short buffers discarded not merged",
			lang: "en",
			text: "Hi. This is long enough. Ok",
			want: []string{"This is long enough."},
		},
		{
			name: "trailing buffer kept",
			lang: "en",
			text: "First full sentence! And a trailing clause",
			want: []string{"First full sentence!", "And a trailing clause"},
		},
		{
			name: "language delimiters",
			lang: "fr",
			text: "Il pleuvait fort… Elle attendait.",
			want: []string{"Il pleuvait fort…", "Elle attendait."},
		},
		{
			name: "ellipsis not a delimiter in english",
			lang: "en",
			text: "It rained hard… She waited.",
			want: []string{"It rained hard… She waited."},
		},
		{
			name: "consecutive delimiters",
			lang: "en",
			text: "What was that?! Nobody knew.",
			want: []string{"What was that?", "Nobody knew."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text, descriptor(t, tt.lang))
			assert.Equal(t, tt.want, Texts(got))
			for i, s := range got {
				assert.Equal(t, i+1, s.Index)
			}
		})
	}

	assert.Empty(t, SplitSentences("", en))
	assert.Empty(t, SplitSentences(" \n ", en))
}

func TestWords(t *testing.T) {
	en := descriptor(t, "en")
	assert.Equal(t, []string{"cats", "jumped", "cats"}, Words("The cats jumped over cats.", en, false))
	assert.Equal(t, []string{"cat", "jump", "cat"}, Words("The cats jumped over cats.", en, true))
}

func TestTermFrequencies(t *testing.T) {
	tf := TermFrequencies([]string{"cat", "sat", "cat", "mat"})
	assert.InDelta(t, 0.5, tf["cat"], 1e-12)
	assert.InDelta(t, 0.25, tf["sat"], 1e-12)

	var sum float64
	for _, v := range tf {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)

	assert.Empty(t, TermFrequencies(nil))
}

func TestCorpusStatistics(t *testing.T) {
	stats := NewCorpusStatistics([][]string{
		{"cat", "sat", "cat"},
		{"cat", "slept"},
		{"cat", "dog"},
	})

	assert.Equal(t, 3, stats.Sentences)
	assert.Equal(t, 3, stats.DocumentFrequency["cat"], "counted once per sentence")
	assert.Equal(t, 0.0, stats.IDF("cat"), "term in every sentence")
	assert.InDelta(t, math.Log(3), stats.IDF("dog"), 1e-12)
	assert.Equal(t, 0.0, stats.IDF("absent"))

	w := stats.Weighted(TermVector{"dog": 0.5, "cat": 0.5, "absent": 1})
	assert.Equal(t, 0.0, w["cat"])
	assert.Equal(t, 0.0, w["absent"])
	assert.InDelta(t, 0.5*math.Log(3), w["dog"], 1e-12)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity(TermVector{"a": 2}, TermVector{"a": 5}), 1e-12)
	assert.InDelta(t, 1/math.Sqrt2, CosineSimilarity(TermVector{"a": 1}, TermVector{"a": 1, "b": 1}), 1e-12)
	assert.Equal(t, 0.0, CosineSimilarity(TermVector{"a": 1}, TermVector{"b": 1}))
	assert.Equal(t, 0.0, CosineSimilarity(TermVector{}, TermVector{"b": 1}))
	assert.Equal(t, 0.0, CosineSimilarity(TermVector{"a": 0}, TermVector{"a": 0}))
}

func TestSimilarityMatrix_Symmetric(t *testing.T) {
	m := SimilarityMatrix([]TermVector{{"a": 1}, {"a": 1, "b": 1}, {"b": 2}})
	for i := range m {
		assert.Equal(t, 0.0, m[i][i])
		for j := range m {
			assert.Equal(t, m[i][j], m[j][i])
		}
	}
}

func TestBuildGraph(t *testing.T) {
	vectors := []TermVector{
		{"a": 1},
		{"a": 1},
		{"a": 1, "b": 1},
		{"z": 1},
	}

	t.Run("rows sum to one or zero", func(t *testing.T) {
		m := BuildGraph(vectors, 0.1)
		for i, row := range m {
			var sum float64
			for _, v := range row {
				sum += v
			}
			if i == 3 {
				assert.Equal(t, 0.0, sum, "isolated sentence")
			} else {
				assert.InDelta(t, 1.0, sum, 1e-12)
			}
		}
		assert.InDelta(t, 0.5, m[0][1], 1e-12)
		assert.InDelta(t, 0.5, m[0][2], 1e-12)
	})

	t.Run("threshold is strict", func(t *testing.T) {
		m := BuildGraph(vectors[:2], 1.0)
		assert.Equal(t, Matrix{{0, 0}, {0, 0}}, m)

		m = BuildGraph(vectors[:2], 0.999)
		assert.Equal(t, Matrix{{0, 1}, {1, 0}}, m)
	})

	t.Run("edges are binary", func(t *testing.T) {
		m := BuildGraph(vectors[:3], 0.5)
		// 1.0 and 0.707 similarities get the same weight
		assert.Equal(t, m[0][1], m[0][2])
		assert.InDelta(t, 0.5, m[0][1], 1e-12)
	})
}

func TestPowerIterate(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		c := PowerIterate(nil, 0.1, 100)
		assert.Empty(t, c.Scores)
		assert.Equal(t, 0, c.Iterations)
	})

	t.Run("epsilon stop", func(t *testing.T) {
		m := Matrix{{0, 1, 0}, {1, 0, 0}, {0, 0, 0}}
		c := PowerIterate(m, 0.1, 100)
		assert.True(t, c.Converged)
		assert.Equal(t, 2, c.Iterations)
		assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3, 0}, c.Scores, 1e-12)
	})

	t.Run("mass is not renormalized", func(t *testing.T) {
		m := Matrix{{0, 1, 0}, {1, 0, 0}, {0, 0, 0}}
		c := PowerIterate(m, 0.1, 100)
		var sum float64
		for _, s := range c.Scores {
			sum += s
		}
		assert.InDelta(t, 2.0/3, sum, 1e-12, "isolated sentence mass leaks out")
	})

	t.Run("iteration cap", func(t *testing.T) {
		// star graph oscillates between two states
		m := Matrix{{0, 0.5, 0.5}, {1, 0, 0}, {1, 0, 0}}
		c := PowerIterate(m, 0.1, 5)
		assert.False(t, c.Converged)
		assert.Equal(t, 5, c.Iterations)
	})

	t.Run("tighter epsilon runs longer", func(t *testing.T) {
		m := Matrix{
			{0, 0.5, 0.5, 0},
			{1.0 / 3, 0, 1.0 / 3, 1.0 / 3},
			{0.5, 0.5, 0, 0},
			{0, 1, 0, 0},
		}
		loose := PowerIterate(m, 0.1, 100)
		tight := PowerIterate(m, 1e-9, 100)
		assert.GreaterOrEqual(t, tight.Iterations, loose.Iterations)
	})
}

func TestSelect(t *testing.T) {
	sentences := []Sentence{
		{Text: "one", Index: 1},
		{Text: "two", Index: 2},
		{Text: "three", Index: 3},
		{Text: "four", Index: 4},
	}

	t.Run("at or above mean in document order", func(t *testing.T) {
		got, fallback := Select(sentences, []float64{0.4, 0.1, 0.25, 0.25})
		assert.False(t, fallback)
		require.Len(t, got, 3)
		assert.Equal(t, []int{1, 3, 4}, indexes(got))
	})

	t.Run("equal scores all kept", func(t *testing.T) {
		got, fallback := Select(sentences, []float64{0, 0, 0, 0})
		assert.False(t, fallback)
		assert.Len(t, got, 4)
	})

	t.Run("fallback in score order", func(t *testing.T) {
		// an undefined mean selects nothing
		got, fallback := Select(sentences, []float64{1, math.Inf(1), math.Inf(-1), 2})
		assert.True(t, fallback)
		assert.Equal(t, []int{2, 4}, indexes(got))
	})

	t.Run("fallback keeps at least one", func(t *testing.T) {
		got, fallback := Select(sentences[:1], []float64{math.NaN()})
		assert.True(t, fallback)
		assert.Len(t, got, 1)
	})

	t.Run("mismatched input", func(t *testing.T) {
		got, _ := Select(sentences, []float64{1})
		assert.Empty(t, got)
	})
}

func indexes(s []ScoredSentence) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[i] = v.Index
	}
	return out
}
