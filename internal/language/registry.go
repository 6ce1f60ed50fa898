package language

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	xlanguage "golang.org/x/text/language"

	"github.com/fyrsmithlabs/contextrank/internal/passage"
)

// DefaultCode is the language every failed lookup falls back to.
const DefaultCode = "en"

// registered wraps a descriptor with its code and validated feature flags.
type registered struct {
	Descriptor
	code     string
	features passage.FeatureSet
}

func (r *registered) Code() string                 { return r.code }
func (r *registered) Features() passage.FeatureSet { return r.features.Clone() }

// Builder collects descriptors and aliases before the registry is frozen.
// A Builder is not safe for concurrent use.
type Builder struct {
	entries map[string]*registered
	aliases map[string]string
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		entries: make(map[string]*registered),
		aliases: make(map[string]string),
	}
}

// Register stores d under the normalized code. Feature flags whose data is
// missing from the descriptor are switched off here, not at score time.
// The descriptor's own aliases are added to the alias table. A later
// registration under the same code replaces the earlier one.
func (b *Builder) Register(code string, d Descriptor) *Builder {
	key := normalizeCode(code)
	if key == "" || d == nil {
		return b
	}
	b.entries[key] = &registered{
		Descriptor: d,
		code:       key,
		features:   validateFeatures(d),
	}
	for _, alias := range d.Aliases() {
		b.Alias(alias, key)
	}
	return b
}

// Alias maps an alternative spelling (locale variant, language name) to a
// registered code.
func (b *Builder) Alias(alias, code string) *Builder {
	a, c := normalizeCode(alias), normalizeCode(code)
	if a == "" || c == "" {
		return b
	}
	b.aliases[a] = c
	return b
}

// Build freezes the collected entries. If no descriptor was registered under
// DefaultCode, a generic English descriptor without stop words stands in.
func (b *Builder) Build() *Registry {
	r := &Registry{
		entries: make(map[string]*registered, len(b.entries)+1),
		aliases: make(map[string]string, len(b.aliases)),
	}
	for k, v := range b.entries {
		r.entries[k] = v
	}
	for a, c := range b.aliases {
		if _, ok := r.entries[c]; ok {
			r.aliases[a] = c
		}
	}
	if _, ok := r.entries[DefaultCode]; !ok {
		fallback := fallbackDescriptor()
		r.entries[DefaultCode] = &registered{
			Descriptor: fallback,
			code:       DefaultCode,
			features:   validateFeatures(fallback),
		}
	}
	r.codes = make([]string, 0, len(r.entries))
	for code := range r.entries {
		r.codes = append(r.codes, code)
	}
	sort.Strings(r.codes)
	return r
}

// Registry is an immutable lookup table of descriptors. It is safe for
// concurrent use.
type Registry struct {
	entries map[string]*registered
	aliases map[string]string
	codes   []string
}

// Resolve finds the descriptor for code and returns it with the normalized
// code it was found under. Accepted forms: exact codes, locale variants
// ("en_US", "pt-br"), language names from the alias table ("German"), BCP 47
// tags. Anything else resolves to the default language. Resolve never fails.
func (r *Registry) Resolve(code string) (Descriptor, string) {
	if e, ok := r.find(code); ok {
		return e, e.code
	}
	return r.Default(), DefaultCode
}

// Supports reports whether code resolves to a registered language without
// falling back to the default.
func (r *Registry) Supports(code string) bool {
	_, ok := r.find(code)
	return ok
}

func (r *Registry) find(code string) (*registered, bool) {
	key := normalizeCode(code)
	if key == "" {
		return nil, false
	}
	if e, ok := r.lookup(key); ok {
		return e, true
	}

	if tag, err := xlanguage.Parse(strings.ReplaceAll(key, "_", "-")); err == nil {
		if base, conf := tag.Base(); conf != xlanguage.No {
			if e, ok := r.lookup(base.String()); ok {
				return e, true
			}
		}
	}

	if i := strings.IndexAny(key, "_ "); i > 0 {
		if e, ok := r.lookup(key[:i]); ok {
			return e, true
		}
	}

	if prefix := []rune(key); len(prefix) >= 2 {
		if e, ok := r.lookup(string(prefix[:2])); ok {
			return e, true
		}
	}
	return nil, false
}

func (r *Registry) lookup(key string) (*registered, bool) {
	if e, ok := r.entries[key]; ok {
		return e, true
	}
	if code, ok := r.aliases[key]; ok {
		e, ok := r.entries[code]
		return e, ok
	}
	return nil, false
}

// Default returns the descriptor for DefaultCode.
func (r *Registry) Default() Descriptor {
	return r.entries[DefaultCode]
}

// List returns the registered codes in sorted order.
func (r *Registry) List() []string {
	return append([]string(nil), r.codes...)
}

// Aliases returns the alias table as a copy.
func (r *Registry) Aliases() map[string]string {
	out := make(map[string]string, len(r.aliases))
	for a, c := range r.aliases {
		out[a] = c
	}
	return out
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultLoadErr  error
)

// Default returns the process-wide registry built from the embedded tables.
// It is constructed on first use and never modified afterwards.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry, defaultLoadErr = LoadFS(embeddedTables, tableDir)
	})
	return defaultRegistry
}

// DefaultLoadError reports problems found while loading the embedded tables.
func DefaultLoadError() error {
	Default()
	return defaultLoadErr
}

// validateFeatures returns the effective flags of d: every feature on by
// default, the declared flags on top, minus features d has no data for.
func validateFeatures(d Descriptor) passage.FeatureSet {
	return DisableUnbacked(d, passage.DefaultFeatures().Merge(d.Features()))
}

// DisableUnbacked switches off, in fs, the features d cannot compute:
// descriptor words without word groups, descriptor patterns without
// patterns, custom without a scorer. It returns fs.
func DisableUnbacked(d Descriptor, fs passage.FeatureSet) passage.FeatureSet {
	if fs == nil {
		fs = passage.FeatureSet{}
	}
	if len(d.WordGroups()) == 0 {
		fs[passage.FeatureDescriptorWords] = false
	}
	if len(d.Patterns()) == 0 {
		fs[passage.FeatureDescriptorPatterns] = false
	}
	if !d.HasCustomScorer() {
		fs[passage.FeatureCustom] = false
	}
	return fs
}

// normalizeCode lowercases, trims and unifies "-" to "_".
func normalizeCode(code string) string {
	code = strings.TrimFunc(strings.ToLower(code), unicode.IsSpace)
	return strings.ReplaceAll(code, "-", "_")
}

// fallbackDescriptor is the generic English stand-in used when no table
// provides DefaultCode.
func fallbackDescriptor() *base {
	return &base{
		code:              DefaultCode,
		name:              "English",
		stopWords:         map[string]struct{}{},
		delimiters:        map[rune]struct{}{'.': {}, '!': {}, '?': {}},
		minSentenceLength: defaultMinSentenceLength,
		minWordLength:     defaultMinWordLength,
		features:          passage.FeatureSet{},
	}
}
