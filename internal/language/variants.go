package language

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"

	"github.com/fyrsmithlabs/contextrank/internal/passage"
)

// variants maps a table code to the constructor of its Go variant. Codes
// without an entry use the generic base.
var variants = map[string]func(*base) Descriptor{
	"en": func(b *base) Descriptor { return &english{base: b} },
	"es": func(b *base) Descriptor { return &spanish{base: b} },
	"fr": func(b *base) Descriptor { return &french{base: b} },
	"de": func(b *base) Descriptor { return &german{base: b} },
	"tr": func(b *base) Descriptor { return &turkish{base: b} },
	"it": func(b *base) Descriptor { return &italian{base: b} },
	"pt": func(b *base) Descriptor { return &portuguese{base: b} },
	"ru": func(b *base) Descriptor { return &russian{base: b} },
}

func isApostrophe(r rune) bool { return r == '\'' || r == '’' }

// english keeps contractions together and drops the possessive 's.
type english struct{ *base }

func (d *english) TokenizeWords(sentence string) []string {
	raw := splitRuns(strings.ToLower(sentence), func(r rune) bool {
		return isWordRune(r) || isApostrophe(r)
	})
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimFunc(t, isApostrophe)
		t = strings.TrimSuffix(strings.TrimSuffix(t, "'s"), "’s")
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return d.filter(tokens)
}

func (d *english) HasCustomScorer() bool { return true }

// CustomScore rewards capitalized words inside the text, which in narrative
// prose are mostly character and place names.
func (d *english) CustomScore(c *passage.Context, _ string, _ passage.Metadata) float64 {
	return namedMentions(c.Text)
}

// namedMentions awards 0.5 per capitalized word not opening a sentence,
// capped at 2.
func namedMentions(text string) float64 {
	score := 0.0
	sentenceStart := true
	for _, word := range strings.Fields(text) {
		trimmed := strings.TrimLeftFunc(word, func(r rune) bool { return !unicode.IsLetter(r) })
		if trimmed != "" {
			first := []rune(trimmed)[0]
			if !sentenceStart && unicode.IsUpper(first) && trimmed != "I" {
				score += 0.5
			}
			sentenceStart = false
		}
		end := strings.TrimRight(word, "\"'”’»)")
		if strings.HasSuffix(end, ".") || strings.HasSuffix(end, "!") || strings.HasSuffix(end, "?") {
			sentenceStart = true
		}
	}
	if score > 2 {
		return 2
	}
	return score
}

// dashDialogue detects dialogue introduced by a dash at the start of a line,
// the convention in Spanish, French, Italian, Portuguese and Russian prose.
func dashDialogue(text string) float64 {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "—") || strings.HasPrefix(line, "–") || strings.HasPrefix(line, "― ") {
			return 2
		}
	}
	return 0
}

// elided strips an elided article or preposition (l', d', qu', dell') from
// the front of a token.
func elided(token string) string {
	if i := strings.LastIndexFunc(token, isApostrophe); i >= 0 {
		_, size := utf8.DecodeRuneInString(token[i:])
		return token[i+size:]
	}
	return token
}

func tokenizeElided(b *base, sentence string) []string {
	raw := splitRuns(strings.ToLower(sentence), func(r rune) bool {
		return isWordRune(r) || isApostrophe(r)
	})
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = elided(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return b.filter(tokens)
}

type spanish struct{ *base }

func (d *spanish) HasCustomScorer() bool { return true }

func (d *spanish) CustomScore(c *passage.Context, _ string, _ passage.Metadata) float64 {
	return dashDialogue(c.Text)
}

type french struct{ *base }

func (d *french) TokenizeWords(sentence string) []string { return tokenizeElided(d.base, sentence) }

func (d *french) HasCustomScorer() bool { return true }

func (d *french) CustomScore(c *passage.Context, _ string, _ passage.Metadata) float64 {
	return dashDialogue(c.Text)
}

type italian struct{ *base }

func (d *italian) TokenizeWords(sentence string) []string { return tokenizeElided(d.base, sentence) }

func (d *italian) HasCustomScorer() bool { return true }

func (d *italian) CustomScore(c *passage.Context, _ string, _ passage.Metadata) float64 {
	return dashDialogue(c.Text)
}

type portuguese struct{ *base }

func (d *portuguese) HasCustomScorer() bool { return true }

func (d *portuguese) CustomScore(c *passage.Context, _ string, _ passage.Metadata) float64 {
	return dashDialogue(c.Text)
}

// german relies on the descriptor patterns for „…“ speech; it has no custom
// scorer, so the custom feature is disabled at registration.
type german struct{ *base }

func (d *german) TokenizeWords(sentence string) []string {
	// hyphenated compounds count as one term
	raw := splitRuns(strings.ToLower(sentence), func(r rune) bool {
		return isWordRune(r) || r == '-'
	})
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.Trim(t, "-"); t != "" {
			tokens = append(tokens, t)
		}
	}
	return d.filter(tokens)
}

// turkish lowercases with Turkish casing rules (I → ı, İ → i).
type turkish struct{ *base }

func (d *turkish) TokenizeWords(sentence string) []string {
	// Caser is stateful, use a fresh copy per call
	lower := cases.Lower(xlanguage.Turkish)
	raw := splitRuns(lower.String(sentence), func(r rune) bool {
		return isWordRune(r) || isApostrophe(r)
	})
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		// proper-noun suffixes: İstanbul'da → istanbul
		if i := strings.IndexFunc(t, isApostrophe); i > 0 {
			t = t[:i]
		}
		if t = strings.TrimFunc(t, isApostrophe); t != "" {
			tokens = append(tokens, t)
		}
	}
	return d.filter(tokens)
}

// russian keeps Cyrillic and digit runs only and folds ё into е.
type russian struct{ *base }

func (d *russian) TokenizeWords(sentence string) []string {
	lowered := strings.ReplaceAll(strings.ToLower(sentence), "ё", "е")
	raw := splitRuns(lowered, func(r rune) bool {
		return unicode.Is(unicode.Cyrillic, r) || unicode.IsDigit(r)
	})
	return d.filter(raw)
}

func (d *russian) HasCustomScorer() bool { return true }

func (d *russian) CustomScore(c *passage.Context, _ string, _ passage.Metadata) float64 {
	return dashDialogue(c.Text)
}
