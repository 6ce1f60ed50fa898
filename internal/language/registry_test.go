package language

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/contextrank/internal/passage"
)

func TestDefault_LoadsEmbeddedTables(t *testing.T) {
	require.NoError(t, DefaultLoadError())

	reg := Default()
	assert.Equal(t, []string{"de", "en", "es", "fr", "it", "pt", "ru", "tr"}, reg.List())
	assert.Same(t, reg, Default(), "registry must be built once")
}

func TestRegistry_Resolve(t *testing.T) {
	reg := Default()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"exact", "en", "en"},
		{"uppercase", "DE", "de"},
		{"underscore locale", "en_US", "en"},
		{"dash locale", "en-us", "en"},
		{"bcp47 region", "pt-BR", "pt"},
		{"unlisted locale", "fr-SN", "fr"},
		{"language name", "German", "de"},
		{"native name", "español", "es"},
		{"name from mappings", "Anglais", "en"},
		{"whitespace", "  it  ", "it"},
		{"two letter prefix", "ruxx", "ru"},
		{"unknown", "xx-unknown", "en"},
		{"unknown short", "zz", "en"},
		{"empty", "", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, code := reg.Resolve(tt.in)
			require.NotNil(t, d)
			assert.Equal(t, tt.want, code)
			assert.Equal(t, tt.want, d.Code())
		})
	}
}

func TestRegistry_ResolveUnknownIsDefault(t *testing.T) {
	reg := Default()
	unknown, _ := reg.Resolve("xx-unknown")
	empty, _ := reg.Resolve("")
	assert.Equal(t, reg.Default().Code(), unknown.Code())
	assert.Equal(t, reg.Default().Code(), empty.Code())
}

func TestRegistry_Supports(t *testing.T) {
	reg := Default()
	for _, code := range []string{"en", "en_US", "German", "pt-BR"} {
		assert.True(t, reg.Supports(code), code)
	}
	for _, code := range []string{"", "zz", "xx-unknown"} {
		assert.False(t, reg.Supports(code), code)
	}
}

func TestBuilder_ForcesFeaturesOffWithoutData(t *testing.T) {
	d := &base{
		code:       "xx",
		name:       "Test",
		stopWords:  map[string]struct{}{},
		delimiters: map[rune]struct{}{'.': {}},
		features: passage.FeatureSet{
			passage.FeatureDescriptorWords:    true,
			passage.FeatureDescriptorPatterns: true,
			passage.FeatureCustom:             true,
			passage.FeatureDialogue:           true,
		},
	}

	reg := NewBuilder().Register("XX", d).Build()
	got, code := reg.Resolve("xx")
	require.Equal(t, "xx", code)

	fs := got.Features()
	assert.False(t, fs.Enabled(passage.FeatureDescriptorWords))
	assert.False(t, fs.Enabled(passage.FeatureDescriptorPatterns))
	assert.False(t, fs.Enabled(passage.FeatureCustom))
	assert.True(t, fs.Enabled(passage.FeatureDialogue))

	// the descriptor's own flags are untouched
	assert.True(t, d.features.Enabled(passage.FeatureCustom))
}

func TestBuilder_FallbackDefault(t *testing.T) {
	reg := NewBuilder().Build()
	assert.Equal(t, []string{"en"}, reg.List())

	d, code := reg.Resolve("fr")
	assert.Equal(t, "en", code)
	assert.Equal(t, []string{"hello", "world"}, d.TokenizeWords("Hello, world!"))
}

func TestBuilder_IgnoresEmptyInput(t *testing.T) {
	reg := NewBuilder().
		Register("", fallbackDescriptor()).
		Register("xx", nil).
		Alias("", "en").
		Alias("dangling", "nowhere").
		Build()

	assert.Equal(t, []string{"en"}, reg.List())
	assert.NotContains(t, reg.Aliases(), "dangling")
}

func TestRegisteredFeaturesAreEffective(t *testing.T) {
	// de.toml declares only dialogue and custom; the rest inherit defaults.
	d, _ := Default().Resolve("de")
	fs := d.Features()
	assert.False(t, fs.Enabled(passage.FeatureCustom), "no custom scorer")
	assert.True(t, fs.Enabled(passage.FeatureDescriptorPatterns))
	assert.True(t, fs.Enabled(passage.FeatureDescriptorWords))
	assert.True(t, fs.Enabled(passage.FeatureTermFrequency))
	assert.True(t, fs.Enabled(passage.FeatureProximity))
	assert.Len(t, fs, len(passage.AllFeatures))
}

func TestDisableUnbacked(t *testing.T) {
	de, _ := Default().Resolve("de")
	fs := DisableUnbacked(de, passage.FeatureSet{passage.FeatureCustom: true, passage.FeatureDialogue: true})
	assert.False(t, fs.Enabled(passage.FeatureCustom))
	assert.True(t, fs.Enabled(passage.FeatureDialogue))

	en, _ := Default().Resolve("en")
	fs = DisableUnbacked(en, passage.FeatureSet{passage.FeatureCustom: true})
	assert.True(t, fs.Enabled(passage.FeatureCustom))

	assert.NotNil(t, DisableUnbacked(fallbackDescriptor(), nil))
}

func TestRegistry_ResolveTwoLetterPrefix(t *testing.T) {
	// Names without an alias fall through to their first two letters, which
	// can name an unrelated language.
	tests := []struct {
		code string
		want string
	}{
		{"Esperanto", "es"},
		{"item", "it"},
		{"klingon", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, got := Default().Resolve(tt.code)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want != "en", Default().Supports(tt.code))
		})
	}
}

func TestLoadFS_ReportsBadTables(t *testing.T) {
	fsys := fstest.MapFS{
		"tables/xx.toml": {Data: []byte(`
code = "xx"
name = "Broken patterns"
stop_words = ["the"]
unknown_key = 1

[[patterns]]
weight = 1.0
pattern = "(unclosed"

[[patterns]]
weight = 2.0
pattern = "ok"
`)},
		"tables/bad.toml":      {Data: []byte(`code = [`)},
		"tables/nocode.toml":   {Data: []byte(`name = "Nothing"`)},
		"tables/mappings.toml": {Data: []byte("[aliases]\n\"testish\" = \"xx\"\n")},
	}

	reg, err := LoadFS(fsys, "tables")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.toml")
	assert.Contains(t, err.Error(), "nocode.toml")
	assert.Contains(t, err.Error(), "(unclosed")
	assert.Contains(t, err.Error(), "unknown keys")

	d, code := reg.Resolve("testish")
	assert.Equal(t, "xx", code)
	assert.Len(t, d.Patterns(), 1)
	assert.Equal(t, 8, d.MinSentenceLength(), "default applied")
	assert.True(t, d.IsSentenceDelimiter('?'), "default delimiters applied")
}
