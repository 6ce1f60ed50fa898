package lexrank

import (
	"strings"
	"unicode/utf8"

	"github.com/fyrsmithlabs/contextrank/internal/language"
)

// Sentence is one unit produced by SplitSentences. Index is 1-based.
type Sentence struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// SplitSentences cuts text at the descriptor's delimiters. A buffer whose
// trimmed length is below the descriptor's minimum is discarded, not merged
// into the next sentence. The same rule applies to the trailing buffer.
func SplitSentences(text string, d language.Descriptor) []Sentence {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var (
		sentences []Sentence
		current   strings.Builder
	)
	minLen := d.MinSentenceLength()

	emit := func() {
		sentence := strings.TrimSpace(current.String())
		current.Reset()
		if utf8.RuneCountInString(sentence) < minLen {
			return
		}
		sentences = append(sentences, Sentence{Text: sentence, Index: len(sentences) + 1})
	}

	for _, r := range text {
		current.WriteRune(r)
		if d.IsSentenceDelimiter(r) {
			emit()
		}
	}
	if current.Len() > 0 {
		emit()
	}

	return sentences
}

// Texts returns the text of each sentence in order.
func Texts(sentences []Sentence) []string {
	out := make([]string, len(sentences))
	for i, s := range sentences {
		out[i] = s.Text
	}
	return out
}
