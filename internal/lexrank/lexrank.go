// Package lexrank ranks the sentences of a text by graph centrality.
//
// The text is split into sentences, each sentence becomes a TF-IDF vector,
// sentences whose cosine similarity exceeds a threshold are connected, and
// power iteration over the degree-normalized graph yields an importance
// score per sentence. Sentences scoring at least the mean are kept.
//
// Every function here is pure. Nothing returns an error; degenerate input
// produces an empty or fallback result.
package lexrank

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/contextrank/internal/language"
)

// Default parameter values.
const (
	DefaultThreshold     = 0.1
	DefaultEpsilon       = 0.1
	DefaultMaxIterations = 100
)

// Config holds the tunable parameters of a Ranker.
type Config struct {
	Threshold     float64 `koanf:"threshold" json:"threshold"`
	Epsilon       float64 `koanf:"epsilon" json:"epsilon"`
	MaxIterations int     `koanf:"max_iterations" json:"max_iterations"`
	Stem          bool    `koanf:"stem" json:"stem"`
}

// DefaultConfig returns the standard parameters.
func DefaultConfig() Config {
	return Config{
		Threshold:     DefaultThreshold,
		Epsilon:       DefaultEpsilon,
		MaxIterations: DefaultMaxIterations,
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Threshold < 0 || c.Threshold >= 1 {
		errs = append(errs, fmt.Errorf("threshold must be in [0, 1), got %v", c.Threshold))
	}
	if c.Epsilon <= 0 {
		errs = append(errs, fmt.Errorf("epsilon must be positive, got %v", c.Epsilon))
	}
	if c.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("max_iterations must be at least 1, got %d", c.MaxIterations))
	}
	return errors.Join(errs...)
}

// withDefaults fills zero values so a partially set Config still works.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Epsilon <= 0 {
		c.Epsilon = d.Epsilon
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Threshold < 0 {
		c.Threshold = d.Threshold
	}
	return c
}

// Result is the full outcome of one ranking pass.
type Result struct {
	// Sentences selected, in document order on the normal path and in
	// descending score order when Fallback is set.
	Sentences []ScoredSentence `json:"sentences"`
	// Language is the code the request resolved to.
	Language   string `json:"language"`
	Iterations int    `json:"iterations"`
	Converged  bool   `json:"converged"`
	Fallback   bool   `json:"fallback"`
	// Total is the number of sentences the text was split into.
	Total int `json:"total"`
}

// Texts returns the selected sentence texts.
func (r Result) Texts() []string {
	out := make([]string, len(r.Sentences))
	for i, s := range r.Sentences {
		out[i] = s.Text
	}
	return out
}

// Ranker runs the LexRank pipeline against an injected registry.
// It is safe for concurrent use.
type Ranker struct {
	cfg      Config
	registry *language.Registry
}

// New returns a ranker. A nil registry means language.Default().
func New(cfg Config, registry *language.Registry) *Ranker {
	if registry == nil {
		registry = language.Default()
	}
	return &Ranker{cfg: cfg.withDefaults(), registry: registry}
}

// Config returns the effective parameters.
func (r *Ranker) Config() Config { return r.cfg }

// WithParams returns a copy of r using threshold and epsilon.
func (r *Ranker) WithParams(threshold, epsilon float64) *Ranker {
	cfg := r.cfg
	cfg.Threshold = threshold
	cfg.Epsilon = epsilon
	return &Ranker{cfg: cfg.withDefaults(), registry: r.registry}
}

// Rank splits text into sentences and selects the most central ones.
func (r *Ranker) Rank(text, lang string) Result {
	d, code := r.registry.Resolve(lang)
	result := Result{Language: code, Sentences: []ScoredSentence{}}

	sentences := SplitSentences(text, d)
	result.Total = len(sentences)

	switch len(sentences) {
	case 0:
		result.Converged = true
		return result
	case 1:
		result.Converged = true
		result.Sentences = []ScoredSentence{{Sentence: sentences[0], Score: 1}}
		return result
	}

	docs := make([][]string, len(sentences))
	for i, s := range sentences {
		docs[i] = Words(s.Text, d, r.cfg.Stem)
	}
	stats := NewCorpusStatistics(docs)

	vectors := make([]TermVector, len(docs))
	for i, words := range docs {
		vectors[i] = stats.Weighted(TermFrequencies(words))
	}

	graph := BuildGraph(vectors, r.cfg.Threshold)
	centrality := PowerIterate(graph, r.cfg.Epsilon, r.cfg.MaxIterations)
	result.Iterations = centrality.Iterations
	result.Converged = centrality.Converged

	result.Sentences, result.Fallback = Select(sentences, centrality.Scores)
	return result
}

// RankSentences returns the selected sentence texts.
func (r *Ranker) RankSentences(text, lang string) []string {
	return r.Rank(text, lang).Texts()
}

// RankSentences ranks text with the default registry and the given
// threshold and epsilon.
func RankSentences(text string, threshold, epsilon float64, lang string) []string {
	cfg := DefaultConfig()
	cfg.Threshold = threshold
	cfg.Epsilon = epsilon
	return New(cfg, nil).RankSentences(text, lang)
}
