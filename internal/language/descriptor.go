// Package language holds the per-language rules used by the rankers:
// tokenization, stop words, sentence delimiters, stemming, and the weighted
// lexical descriptors consumed by the context ranker.
//
// Descriptors are loaded once from embedded TOML tables into an immutable
// Registry. Each language is a concrete Descriptor variant that embeds the
// generic base implementation and overrides only what differs (word
// character classes, custom scoring).
package language

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fyrsmithlabs/contextrank/internal/passage"
)

// Target selects which form of a context's text a Pattern is matched against.
type Target string

const (
	// TargetRaw matches the original text, case and punctuation intact.
	TargetRaw Target = "raw"
	// TargetNormalized matches the lowercased, ASCII-folded text.
	TargetNormalized Target = "normalized"
)

// WordGroup awards Weight for each token found in Words.
type WordGroup struct {
	Weight float64
	Words  map[string]struct{}
}

// Contains reports whether the normalized token belongs to the group.
func (g WordGroup) Contains(token string) bool {
	_, ok := g.Words[token]
	return ok
}

// Pattern awards Weight once when Expr matches the selected text form.
type Pattern struct {
	Weight float64
	Expr   *regexp.Regexp
	Target Target
}

// StemRule rewrites a term ending that matches Suffix.
type StemRule struct {
	Suffix      *regexp.Regexp
	Replacement string
}

// Descriptor is the capability set of one language.
type Descriptor interface {
	Code() string
	Name() string
	Aliases() []string

	IsStopWord(word string) bool
	IsSentenceDelimiter(r rune) bool
	MinSentenceLength() int
	MinWordLength() int

	// TokenizeWords splits a sentence into normalized, stop-word-filtered
	// terms. Duplicates are kept.
	TokenizeWords(sentence string) []string

	StemmingRules() []StemRule
	// Stem applies the first matching stemming rule.
	Stem(term string) string

	WordGroups() []WordGroup
	Patterns() []Pattern
	Features() passage.FeatureSet

	HasCustomScorer() bool
	// CustomScore is the language-specific feature. normalized is the folded
	// form of c.Text.
	CustomScore(c *passage.Context, normalized string, meta passage.Metadata) float64
}

// minStemLength keeps stemming from reducing short words to nothing.
const minStemLength = 3

// base implements Descriptor with the generic rules. Language variants embed
// it and override selected methods.
type base struct {
	code              string
	name              string
	aliases           []string
	stopWords         map[string]struct{}
	delimiters        map[rune]struct{}
	minSentenceLength int
	minWordLength     int
	stemming          []StemRule
	wordGroups        []WordGroup
	patterns          []Pattern
	features          passage.FeatureSet
}

func (b *base) Code() string      { return b.code }
func (b *base) Name() string      { return b.name }
func (b *base) Aliases() []string { return append([]string(nil), b.aliases...) }

func (b *base) IsStopWord(word string) bool {
	_, ok := b.stopWords[word]
	return ok
}

func (b *base) IsSentenceDelimiter(r rune) bool {
	_, ok := b.delimiters[r]
	return ok
}

func (b *base) MinSentenceLength() int { return b.minSentenceLength }
func (b *base) MinWordLength() int     { return b.minWordLength }

// TokenizeWords splits on letter/digit runs and lowercases.
func (b *base) TokenizeWords(sentence string) []string {
	return b.filter(splitRuns(strings.ToLower(sentence), isWordRune))
}

// filter drops short tokens and stop words.
func (b *base) filter(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if utf8.RuneCountInString(t) < b.minWordLength {
			continue
		}
		if b.IsStopWord(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (b *base) StemmingRules() []StemRule { return append([]StemRule(nil), b.stemming...) }

func (b *base) Stem(term string) string {
	for _, rule := range b.stemming {
		if !rule.Suffix.MatchString(term) {
			continue
		}
		stemmed := rule.Suffix.ReplaceAllString(term, rule.Replacement)
		if utf8.RuneCountInString(stemmed) < minStemLength {
			return term
		}
		return stemmed
	}
	return term
}

func (b *base) WordGroups() []WordGroup      { return append([]WordGroup(nil), b.wordGroups...) }
func (b *base) Patterns() []Pattern          { return append([]Pattern(nil), b.patterns...) }
func (b *base) Features() passage.FeatureSet { return b.features.Clone() }

func (b *base) HasCustomScorer() bool { return false }

func (b *base) CustomScore(*passage.Context, string, passage.Metadata) float64 { return 0 }

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// splitRuns returns the maximal runs of s made of runes accepted by keep.
func splitRuns(s string, keep func(rune) bool) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !keep(r) })
}

// NormalizedTokens splits folded text into word tokens for descriptor
// matching.
func NormalizedTokens(normalized string) []string {
	return splitRuns(normalized, isWordRune)
}
