package language

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fyrsmithlabs/contextrank/internal/passage"
)

//go:embed descriptors/*.toml
var embeddedTables embed.FS

const (
	tableDir     = "descriptors"
	mappingsFile = "mappings.toml"
)

// table is the on-disk form of one language descriptor.
type table struct {
	Code               string          `toml:"code"`
	Name               string          `toml:"name"`
	Aliases            []string        `toml:"aliases"`
	MinSentenceLength  int             `toml:"min_sentence_length"`
	MinWordLength      int             `toml:"min_word_length"`
	SentenceDelimiters string          `toml:"sentence_delimiters"`
	StopWords          []string        `toml:"stop_words"`
	Features           map[string]bool `toml:"features"`
	Stemming           []struct {
		Suffix      string `toml:"suffix"`
		Replacement string `toml:"replacement"`
	} `toml:"stemming"`
	WordGroups []struct {
		Weight float64  `toml:"weight"`
		Words  []string `toml:"words"`
	} `toml:"word_groups"`
	Patterns []struct {
		Weight  float64 `toml:"weight"`
		Pattern string  `toml:"pattern"`
		Target  string  `toml:"target"`
	} `toml:"patterns"`
}

// mappings is the on-disk alias table.
type mappings struct {
	Aliases map[string]string `toml:"aliases"`
}

// defaults applied to tables that leave a field out
const (
	defaultMinSentenceLength = 8
	defaultMinWordLength     = 2
	defaultDelimiters        = ".!?"
)

// LoadFS builds a registry from every *.toml table in dir plus the alias
// table dir/mappings.toml. Tables that fail to parse are skipped; the
// returned error joins every problem found, and the registry is usable
// regardless.
func LoadFS(fsys fs.FS, dir string) (*Registry, error) {
	b := NewBuilder()
	var errs []error

	files, err := fs.Glob(fsys, path.Join(dir, "*.toml"))
	if err != nil {
		return b.Build(), fmt.Errorf("listing descriptor tables: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			errs = append(errs, fmt.Errorf("reading %s: %w", file, err))
			continue
		}
		if path.Base(file) == mappingsFile {
			var m mappings
			if _, err := toml.Decode(string(data), &m); err != nil {
				errs = append(errs, fmt.Errorf("parsing %s: %w", file, err))
				continue
			}
			for alias, code := range m.Aliases {
				b.Alias(alias, code)
			}
			continue
		}

		d, warnings, err := parseTable(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("parsing %s: %w", file, err))
			continue
		}
		for _, w := range warnings {
			errs = append(errs, fmt.Errorf("%s: %w", file, w))
		}
		b.Register(d.Code(), d)
	}

	return b.Build(), errors.Join(errs...)
}

// parseTable decodes one descriptor table. Bad patterns and stemming rules
// are dropped and reported as warnings.
func parseTable(data []byte) (Descriptor, []error, error) {
	var t table
	md, err := toml.Decode(string(data), &t)
	if err != nil {
		return nil, nil, err
	}
	var warnings []error
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		warnings = append(warnings, fmt.Errorf("unknown keys %v", undecoded))
	}

	code := normalizeCode(t.Code)
	if code == "" {
		return nil, nil, errors.New("missing code")
	}

	b := &base{
		code:              code,
		name:              t.Name,
		aliases:           t.Aliases,
		stopWords:         make(map[string]struct{}, len(t.StopWords)),
		delimiters:        make(map[rune]struct{}),
		minSentenceLength: t.MinSentenceLength,
		minWordLength:     t.MinWordLength,
		features:          make(passage.FeatureSet, len(t.Features)),
	}
	if b.name == "" {
		b.name = code
	}
	if b.minSentenceLength <= 0 {
		b.minSentenceLength = defaultMinSentenceLength
	}
	if b.minWordLength <= 0 {
		b.minWordLength = defaultMinWordLength
	}

	for _, w := range t.StopWords {
		b.stopWords[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}

	delims := t.SentenceDelimiters
	if delims == "" {
		delims = defaultDelimiters
	}
	for _, r := range delims {
		b.delimiters[r] = struct{}{}
	}

	for name, on := range t.Features {
		b.features[passage.Feature(name)] = on
	}

	for _, s := range t.Stemming {
		re, err := regexp.Compile(s.Suffix)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("stemming rule %q: %w", s.Suffix, err))
			continue
		}
		b.stemming = append(b.stemming, StemRule{Suffix: re, Replacement: s.Replacement})
	}

	for _, g := range t.WordGroups {
		if len(g.Words) == 0 {
			continue
		}
		group := WordGroup{Weight: g.Weight, Words: make(map[string]struct{}, len(g.Words))}
		for _, w := range g.Words {
			group.Words[Fold(strings.TrimSpace(w))] = struct{}{}
		}
		b.wordGroups = append(b.wordGroups, group)
	}

	for _, p := range t.Patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("pattern %q: %w", p.Pattern, err))
			continue
		}
		target := Target(strings.ToLower(p.Target))
		if target != TargetRaw {
			target = TargetNormalized
		}
		b.patterns = append(b.patterns, Pattern{Weight: p.Weight, Expr: re, Target: target})
	}

	if ctor, ok := variants[code]; ok {
		return ctor(b), warnings, nil
	}
	return b, warnings, nil
}
