package language

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that do not decompose into base + combining mark
var foldReplacer = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"ł", "l",
	"ı", "i",
	"đ", "d",
	"þ", "th",
)

// Fold lowercases s and strips diacritics, so "Ærø Straße" becomes
// "aero strasse". Non-Latin scripts keep their base letters.
func Fold(s string) string {
	// transform chains carry state, one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return foldReplacer.Replace(folded)
}
