// Package passage defines the value types exchanged between the host reader
// and the context ranker: candidate text windows and the reading metadata
// that accompanies them.
package passage

import "sort"

// Feature names a scoring feature of the context ranker.
type Feature string

const (
	FeatureTermFrequency      Feature = "term_frequency"
	FeaturePreferredLength    Feature = "preferred_length"
	FeaturePositionDiversity  Feature = "position_diversity"
	FeatureDescriptorWords    Feature = "descriptor_words"
	FeatureDescriptorPatterns Feature = "descriptor_patterns"
	FeatureDialogue           Feature = "dialogue"
	FeatureProximity          Feature = "proximity"
	FeatureCustom             Feature = "custom"
)

// AllFeatures lists every feature in evaluation order.
var AllFeatures = []Feature{
	FeatureTermFrequency,
	FeaturePreferredLength,
	FeaturePositionDiversity,
	FeatureDescriptorWords,
	FeatureDescriptorPatterns,
	FeatureDialogue,
	FeatureProximity,
	FeatureCustom,
}

// FeatureSet maps a feature to its enabled flag. Features missing from the
// map inherit whatever the set is merged over.
type FeatureSet map[Feature]bool

// DefaultFeatures returns a set with every feature enabled.
func DefaultFeatures() FeatureSet {
	fs := make(FeatureSet, len(AllFeatures))
	for _, f := range AllFeatures {
		fs[f] = true
	}
	return fs
}

// Clone returns a copy of the set.
func (fs FeatureSet) Clone() FeatureSet {
	out := make(FeatureSet, len(fs))
	for k, v := range fs {
		out[k] = v
	}
	return out
}

// Merge returns a copy of fs with every flag from override applied on top.
func (fs FeatureSet) Merge(override FeatureSet) FeatureSet {
	out := fs.Clone()
	for k, v := range override {
		out[k] = v
	}
	return out
}

// Enabled reports whether f is switched on.
func (fs FeatureSet) Enabled(f Feature) bool {
	return fs[f]
}

// Names returns the enabled feature names, sorted.
func (fs FeatureSet) Names() []string {
	names := make([]string, 0, len(fs))
	for f, on := range fs {
		if on {
			names = append(names, string(f))
		}
	}
	sort.Strings(names)
	return names
}

// Context is a candidate text window competing to be selected as supporting
// text for a query. The ranker fills in the Rank* and score fields.
type Context struct {
	Text     string `json:"text"`
	Position int    `json:"position"`

	// Precomputed metrics supplied by the caller.
	TermFrequency *float64 `json:"term_frequency,omitempty"`
	WordCount     *int     `json:"word_count,omitempty"`

	RankScore          float64             `json:"rank_score"`
	RankOrder          int                 `json:"rank_order"`
	RankWeight         float64             `json:"rank_weight"`
	DescriptorScore    float64             `json:"descriptor_score"`
	TermFrequencyScore float64             `json:"term_frequency_score"`
	FeatureScores      map[Feature]float64 `json:"feature_scores,omitempty"`
}

// Metadata describes where the reader is and how large the document is.
// Every field is optional.
type Metadata struct {
	TotalUnits            *int `json:"total_units,omitempty"`
	TotalParagraphs       *int `json:"total_paragraphs,omitempty"`
	TotalSentences        *int `json:"total_sentences,omitempty"`
	CurrentIndex          *int `json:"current_index,omitempty"`
	CurrentParagraphIndex *int `json:"current_paragraph_index,omitempty"`
}

// Total returns the first positive total among units, paragraphs and
// sentences.
func (m Metadata) Total() (int, bool) {
	for _, v := range []*int{m.TotalUnits, m.TotalParagraphs, m.TotalSentences} {
		if v != nil && *v > 0 {
			return *v, true
		}
	}
	return 0, false
}

// Current returns the reading position, preferring CurrentIndex.
func (m Metadata) Current() (int, bool) {
	if m.CurrentIndex != nil {
		return *m.CurrentIndex, true
	}
	if m.CurrentParagraphIndex != nil {
		return *m.CurrentParagraphIndex, true
	}
	return 0, false
}

// Int returns a pointer to v, for building optional fields.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for building optional fields.
func Float(v float64) *float64 { return &v }
