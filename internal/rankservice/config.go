package rankservice

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fyrsmithlabs/contextrank/internal/config"
	"github.com/fyrsmithlabs/contextrank/internal/language"
	"github.com/fyrsmithlabs/contextrank/internal/lexrank"
	"github.com/fyrsmithlabs/contextrank/internal/passage"
)

// Config bounds and parameterizes the service.
type Config struct {
	LexRank         lexrank.Config
	DefaultLanguage string
	// Features are layered over each descriptor's feature flags.
	Features     passage.FeatureSet
	MaxTextBytes int
	MaxContexts  int
}

// DefaultConfig mirrors config.Default().
func DefaultConfig() Config {
	return Config{
		LexRank:         lexrank.DefaultConfig(),
		DefaultLanguage: language.DefaultCode,
		MaxTextBytes:    2 << 20,
		MaxContexts:     2000,
	}
}

// FromSettings converts the application configuration.
func FromSettings(c *config.Config) (Config, error) {
	fs, err := ParseFeatures(c.Ranker.Features)
	if err != nil {
		return Config{}, err
	}
	return Config{
		LexRank: lexrank.Config{
			Threshold:     c.LexRank.Threshold,
			Epsilon:       c.LexRank.Epsilon,
			MaxIterations: c.LexRank.MaxIterations,
			Stem:          c.LexRank.Stem,
		},
		DefaultLanguage: c.Ranker.DefaultLanguage,
		Features:        fs,
		MaxTextBytes:    c.Service.MaxTextBytes,
		MaxContexts:     c.Service.MaxContexts,
	}, nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	var errs []error
	if err := c.LexRank.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.MaxTextBytes <= 0 {
		errs = append(errs, fmt.Errorf("max text bytes must be positive, got %d", c.MaxTextBytes))
	}
	if c.MaxContexts <= 0 {
		errs = append(errs, fmt.Errorf("max contexts must be positive, got %d", c.MaxContexts))
	}
	return errors.Join(errs...)
}

// ParseFeatures converts a name-keyed flag map into a FeatureSet. Unknown
// names yield ErrInvalidParameter.
func ParseFeatures(m map[string]bool) (passage.FeatureSet, error) {
	if len(m) == 0 {
		return nil, nil
	}
	known := make(map[passage.Feature]struct{}, len(passage.AllFeatures))
	for _, f := range passage.AllFeatures {
		known[f] = struct{}{}
	}

	fs := make(passage.FeatureSet, len(m))
	var unknown []string
	for name, on := range m {
		f := passage.Feature(name)
		if _, ok := known[f]; !ok {
			unknown = append(unknown, name)
			continue
		}
		fs[f] = on
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: unknown features %v", ErrInvalidParameter, unknown)
	}
	return fs, nil
}
