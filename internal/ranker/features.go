package ranker

import (
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/contextrank/internal/language"
	"github.com/fyrsmithlabs/contextrank/internal/passage"
)

// candidate is one context prepared for scoring.
type candidate struct {
	ctx        *passage.Context
	normalized string
	tokens     []string
}

// scoringEnv is shared by every feature in one pass.
type scoringEnv struct {
	desc    language.Descriptor
	meta    passage.Metadata
	total   int
	hasTot  bool
	current int
	hasCur  bool
}

type featureFunc func(env *scoringEnv, c *candidate) float64

// scorers maps each feature to its function. Evaluation follows
// passage.AllFeatures.
var scorers = map[passage.Feature]featureFunc{
	passage.FeatureTermFrequency:      termFrequency,
	passage.FeaturePreferredLength:    preferredLength,
	passage.FeaturePositionDiversity:  positionDiversity,
	passage.FeatureDescriptorWords:    descriptorWords,
	passage.FeatureDescriptorPatterns: descriptorPatterns,
	passage.FeatureDialogue:           dialogue,
	passage.FeatureProximity:          proximity,
	passage.FeatureCustom:             custom,
}

const termFrequencyScale = 10

func termFrequency(_ *scoringEnv, c *candidate) float64 {
	if c.ctx.TermFrequency == nil {
		return 0
	}
	return *c.ctx.TermFrequency * termFrequencyScale
}

func preferredLength(_ *scoringEnv, c *candidate) float64 {
	words := 0
	if c.ctx.WordCount != nil {
		words = *c.ctx.WordCount
	} else {
		words = len(strings.Fields(c.ctx.Text))
	}
	switch {
	case words >= 30 && words <= 150:
		return 5
	case words >= 15 && words <= 200:
		return 3
	default:
		return 0
	}
}

// edgeFraction is the share of the document at each end that earns the
// position bonus.
const edgeFraction = 0.2

func positionDiversity(env *scoringEnv, c *candidate) float64 {
	if !env.hasTot {
		return 1
	}
	ratio := float64(c.ctx.Position) / float64(env.total)
	if ratio <= edgeFraction || ratio >= 1-edgeFraction {
		return 3
	}
	return 1
}

func descriptorWords(env *scoringEnv, c *candidate) float64 {
	var score float64
	for _, g := range env.desc.WordGroups() {
		for _, tok := range c.tokens {
			if g.Contains(tok) {
				score += g.Weight
			}
		}
	}
	return score
}

func descriptorPatterns(env *scoringEnv, c *candidate) float64 {
	var score float64
	for _, p := range env.desc.Patterns() {
		text := c.normalized
		if p.Target == language.TargetRaw {
			text = c.ctx.Text
		}
		if p.Expr.MatchString(text) {
			score += p.Weight
		}
	}
	return score
}

// quoted matches a span between paired quotation marks.
var quoted = regexp.MustCompile(`"[^"]+"|“[^”]+”|«[^»]+»|„[^“”]+[“”]|‹[^›]+›|「[^」]+」`)

func dialogue(_ *scoringEnv, c *candidate) float64 {
	if quoted.MatchString(c.ctx.Text) {
		return 2
	}
	return 0
}

func proximity(env *scoringEnv, c *candidate) float64 {
	if !env.hasCur {
		return 0
	}
	distance := c.ctx.Position - env.current
	if distance < 0 {
		distance = -distance
	}
	switch {
	case distance == 0:
		return 6
	case distance == 1:
		return 4
	case distance == 2:
		return 3
	case distance <= 4:
		return 2
	case distance <= 6:
		return 1
	default:
		return 0
	}
}

func custom(env *scoringEnv, c *candidate) float64 {
	if !env.desc.HasCustomScorer() {
		return 0
	}
	return env.desc.CustomScore(c.ctx, c.normalized, env.meta)
}
