package config

import (
	"go/token"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/teranos/dynasty/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Generate.Directive == "" || strings.ContainsAny(c.Generate.Directive, " \t:/") {
		return errors.Newf("generate.directive must be a single word, got %q", c.Generate.Directive)
	}
	if !token.IsIdentifier(c.Generate.BaseField) {
		return errors.Newf("generate.base_field must be a Go identifier, got %q", c.Generate.BaseField)
	}
	if token.IsExported(c.Generate.BaseField) {
		return errors.WithHint(
			errors.Newf("generate.base_field %q is exported", c.Generate.BaseField),
			"the base field is only visible inside the defining package; use a lower-case name",
		)
	}
	if !strings.HasSuffix(c.Generate.Suffix, ".go") || strings.HasSuffix(c.Generate.Suffix, "_test.go") {
		return errors.Newf("generate.suffix must end in .go and not _test.go, got %q", c.Generate.Suffix)
	}
	if c.Generate.RuntimeImport == "" {
		return errors.New("generate.runtime_import cannot be empty")
	}
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	if c.Log.Verbosity < 0 {
		return errors.Newf("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}
	return nil
}

// ValidateFile strictly decodes a config file and returns the keys it
// contains that dynasty does not know, sorted. Viper ignores unknown keys,
// so typos like "base_feild" would otherwise go unnoticed.
func ValidateFile(path string) (unknown []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	cfg := Defaults()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid configuration in %s", path)
	}

	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	sort.Strings(unknown)
	return unknown, nil
}
