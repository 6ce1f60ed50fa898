// Package ranker scores and orders candidate context windows with a set of
// per-language features: term frequency, length, position, lexical
// descriptors, dialogue, proximity to the reading position and a
// language-specific hook.
package ranker

import (
	"sort"

	"github.com/fyrsmithlabs/contextrank/internal/language"
	"github.com/fyrsmithlabs/contextrank/internal/passage"
)

// Ranker scores contexts against an injected language registry.
// It holds no mutable state and is safe for concurrent use.
type Ranker struct {
	registry *language.Registry
	override passage.FeatureSet
}

// New returns a ranker. A nil registry means language.Default().
func New(registry *language.Registry) *Ranker {
	if registry == nil {
		registry = language.Default()
	}
	return &Ranker{registry: registry}
}

// WithFeatures returns a copy of r whose feature flags are layered over the
// descriptor's. An override cannot switch on a feature the descriptor has no
// data for, and proximity still switches off when no reading position is
// known.
func (r *Ranker) WithFeatures(fs passage.FeatureSet) *Ranker {
	return &Ranker{registry: r.registry, override: r.override.Merge(fs)}
}

// Features returns the flags a pass for lang with meta would use.
func (r *Ranker) Features(lang string, meta *passage.Metadata) passage.FeatureSet {
	d, _ := r.registry.Resolve(lang)
	return r.features(d, meta)
}

func (r *Ranker) features(d language.Descriptor, meta *passage.Metadata) passage.FeatureSet {
	fs := language.DisableUnbacked(d, d.Features().Merge(r.override))
	if meta == nil {
		fs[passage.FeatureProximity] = false
	} else if _, ok := meta.Current(); !ok {
		fs[passage.FeatureProximity] = false
	}
	return fs
}

// Rank scores every context, sorts the slice in place by descending score
// with ties broken by ascending position, and returns it.
//
// Rank takes exclusive ownership of contexts for the duration of the call:
// the score fields of each element are overwritten and the slice is
// reordered. Nil elements are moved to the end unscored.
func (r *Ranker) Rank(lang string, contexts []*passage.Context, meta *passage.Metadata) []*passage.Context {
	if len(contexts) == 0 {
		return contexts
	}

	d, _ := r.registry.Resolve(lang)
	fs := r.features(d, meta)

	env := &scoringEnv{desc: d}
	if meta != nil {
		env.meta = *meta
		env.total, env.hasTot = meta.Total()
		env.current, env.hasCur = meta.Current()
	}

	enabled := make([]featureFunc, 0, len(passage.AllFeatures))
	names := make([]passage.Feature, 0, len(passage.AllFeatures))
	for _, f := range passage.AllFeatures {
		if fs.Enabled(f) {
			enabled = append(enabled, scorers[f])
			names = append(names, f)
		}
	}

	scored := 0
	for _, ctx := range contexts {
		if ctx == nil {
			continue
		}
		scored++
		normalized := language.Fold(ctx.Text)
		c := &candidate{
			ctx:        ctx,
			normalized: normalized,
			tokens:     language.NormalizedTokens(normalized),
		}

		ctx.RankScore = 0
		ctx.DescriptorScore = 0
		ctx.TermFrequencyScore = 0
		ctx.FeatureScores = make(map[passage.Feature]float64, len(enabled))

		for i, score := range enabled {
			v := score(env, c)
			ctx.FeatureScores[names[i]] = v
			ctx.RankScore += v
			switch names[i] {
			case passage.FeatureDescriptorWords, passage.FeatureDescriptorPatterns:
				ctx.DescriptorScore += v
			case passage.FeatureTermFrequency:
				ctx.TermFrequencyScore += v
			}
		}
	}

	sort.SliceStable(contexts, func(i, j int) bool {
		a, b := contexts[i], contexts[j]
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		if a.RankScore != b.RankScore {
			return a.RankScore > b.RankScore
		}
		return a.Position < b.Position
	})

	for i, ctx := range contexts[:scored] {
		rank := i + 1
		ctx.RankOrder = rank
		ctx.RankWeight = float64(scored-rank+1) / float64(scored)
	}

	return contexts
}

// RankContexts ranks contexts with the default registry.
func RankContexts(lang string, contexts []*passage.Context, meta *passage.Metadata) []*passage.Context {
	return New(nil).Rank(lang, contexts, meta)
}
