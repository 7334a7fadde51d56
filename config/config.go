// Package config holds the settings of the boolex command, read from YAML.
package config

import (
	"bytes"
	"io"
	"os"
	"runtime"

	"github.com/cottand/boolex/rewrite"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Rules applied by the simplify command, in order
	Rules          []string `yaml:"rules"`
	MaxIterations  int      `yaml:"maxIterations"`
	ExpansionLimit int      `yaml:"expansionLimit"`
	SizeLimit      int      `yaml:"sizeLimit"`
	// CacheSize bounds the rewrite cache shared by a batch. 0 is unbounded,
	// a negative size disables caching.
	CacheSize int `yaml:"cacheSize"`
	// Concurrency is how many expressions of a batch are rewritten at once
	Concurrency int `yaml:"concurrency"`
}

func Default() Config {
	return Config{
		Rules: []string{
			rewrite.RuleComplement,
			rewrite.RuleIdempotence,
			rewrite.RuleAbsorption,
			rewrite.RuleComplementAbsorption,
		},
		MaxIterations: rewrite.DefaultMaxIterations,
		Concurrency:   runtime.GOMAXPROCS(0),
	}
}

// Load reads the file at path over the defaults
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading configuration")
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "in %s", path)
	}
	return c, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown keys are errors.
func Parse(data []byte) (Config, error) {
	c := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decoding configuration")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	for _, name := range c.Rules {
		if _, err := rewrite.Lookup[string](name); err != nil {
			return err
		}
	}
	switch {
	case c.MaxIterations < 0:
		return errors.Errorf("maxIterations must not be negative, got %d", c.MaxIterations)
	case c.ExpansionLimit < 0:
		return errors.Errorf("expansionLimit must not be negative, got %d", c.ExpansionLimit)
	case c.SizeLimit < 0:
		return errors.Errorf("sizeLimit must not be negative, got %d", c.SizeLimit)
	case c.Concurrency < 1:
		return errors.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// Encode writes c as YAML
func (c Config) Encode(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return err
	}
	return encoder.Close()
}

// RuleSet builds the rule set of the simplify command
func (c Config) RuleSet() (*rewrite.RuleSet[string], error) {
	return rewrite.LookupSet[string]("config", c.Rules...)
}

// RewriteOptions builds driver options, with a fresh cache meant to be shared by one batch
func (c Config) RewriteOptions() (rewrite.Options[string], error) {
	opts := rewrite.Options[string]{
		MaxIterations:  c.MaxIterations,
		ExpansionLimit: c.ExpansionLimit,
		SizeLimit:      c.SizeLimit,
	}
	switch {
	case c.CacheSize == 0:
		opts.Cache = rewrite.NewCache[string]()
	case c.CacheSize > 0:
		cache, err := rewrite.NewLRUCache[string](c.CacheSize)
		if err != nil {
			return rewrite.Options[string]{}, err
		}
		opts.Cache = cache
	}
	return opts, nil
}
