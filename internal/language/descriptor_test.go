package language

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fyrsmithlabs/contextrank/internal/passage"
)

func resolve(t *testing.T, code string) Descriptor {
	t.Helper()
	d, got := Default().Resolve(code)
	if got != code {
		t.Fatalf("resolve %q: got %q", code, got)
	}
	return d
}

func TestTokenizeWords(t *testing.T) {
	tests := []struct {
		lang     string
		sentence string
		want     []string
	}{
		{"en", "The cat and the other cat.", []string{"cat", "cat"}},
		{"en", "Don't touch Mary's ring!", []string{"don't", "touch", "mary", "ring"}},
		{"fr", "L'homme regarda l'épée d'argent.", []string{"homme", "regarda", "épée", "argent"}},
		{"it", "Dell'anno scorso ricordo la spada.", []string{"anno", "scorso", "ricordo", "spada"}},
		{"de", "Der Schlüssel lag im Nord-Süd-Zimmer.", []string{"schlüssel", "lag", "nord-süd-zimmer"}},
		{"tr", "IŞIK İstanbul'da yandı.", []string{"ışık", "istanbul", "yandı"}},
		{"ru", "Он взял ключ и ёлку.", []string{"взял", "ключ", "елку"}},
		{"es", "¿Dónde está la llave?", []string{"dónde", "está", "llave"}},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.sentence, func(t *testing.T) {
			assert.Equal(t, tt.want, resolve(t, tt.lang).TokenizeWords(tt.sentence))
		})
	}
}

func TestTokenizeWords_MinLength(t *testing.T) {
	d := resolve(t, "en")
	assert.Empty(t, d.TokenizeWords("x y z"))
	assert.Equal(t, []string{"ox"}, d.TokenizeWords("an ox"))
}

func TestStem(t *testing.T) {
	d := resolve(t, "en")
	tests := map[string]string{
		"classes":  "class",
		"stories":  "story",
		"running":  "runn",
		"jumped":   "jump",
		"cats":     "cat",
		"glass":    "glass",
		"is":       "is",
		"sing":     "sing",
		"notation": "notation",
	}
	for in, want := range tests {
		assert.Equal(t, want, d.Stem(in), in)
	}
}

func TestFold(t *testing.T) {
	tests := map[string]string{
		"Ærø Straße":      "aero strasse",
		"Élan Çà":         "elan ca",
		"Łódź":            "lodz",
		"IŞIK":            "isik",
		"plain text":      "plain text",
		"Ёлка":            "елка",
		"naïve café":      "naive cafe",
		"“Quoted” — dash": "“quoted” — dash",
	}
	for in, want := range tests {
		assert.Equal(t, want, Fold(in), in)
	}
}

func TestCustomScore(t *testing.T) {
	en := resolve(t, "en")
	assert.True(t, en.HasCustomScorer())
	assert.Equal(t, 0.0, en.CustomScore(&passage.Context{Text: "It was a gleaming ring on her hand."}, "", passage.Metadata{}))
	assert.Equal(t, 1.0, en.CustomScore(&passage.Context{Text: "Then Frodo looked at Sam."}, "", passage.Metadata{}))
	assert.Equal(t, 2.0, en.CustomScore(&passage.Context{Text: "So Anna, Ben, Carl, Dora and Emil came."}, "", passage.Metadata{}))

	es := resolve(t, "es")
	assert.Equal(t, 2.0, es.CustomScore(&passage.Context{Text: "—¿Quién anda ahí? —preguntó."}, "", passage.Metadata{}))
	assert.Equal(t, 0.0, es.CustomScore(&passage.Context{Text: "Nadie respondió."}, "", passage.Metadata{}))
}

func TestWordGroupsAreFolded(t *testing.T) {
	fr := resolve(t, "fr")
	found := false
	for _, g := range fr.WordGroups() {
		if g.Contains("epee") {
			found = true
		}
	}
	assert.True(t, found, "épée should be stored in folded form")
}

func TestNormalizedTokens(t *testing.T) {
	assert.Equal(t, []string{"it", "was", "a", "ring"}, NormalizedTokens("it was a ring."))
}
