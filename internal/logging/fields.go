package logging

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// excerptRunes bounds how much passage text reaches the logs.
const excerptRunes = 60

// Excerpt logs at most the first 60 runes of text with its total length.
func Excerpt(key, text string) zap.Field {
	n := utf8.RuneCountInString(text)
	if n <= excerptRunes {
		return zap.String(key, text)
	}
	var b strings.Builder
	i := 0
	for _, r := range text {
		if i == excerptRunes {
			break
		}
		b.WriteRune(r)
		i++
	}
	b.WriteString("…")
	return zap.Dict(key, zap.String("excerpt", b.String()), zap.Int("runes", n))
}
