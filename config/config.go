// Package config loads dynasty settings from dynasty.toml, DYNASTY_*
// environment variables and built-in defaults, in that order of
// precedence (environment wins).
package config

// FileName is the project config file searched for from the working
// directory upwards.
const FileName = "dynasty.toml"

// Config represents the dynasty configuration
type Config struct {
	Generate GenerateConfig `mapstructure:"generate" toml:"generate" json:"generate" yaml:"generate"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch" json:"watch" yaml:"watch"`
	Log      LogConfig      `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// GenerateConfig configures the code generator
type GenerateConfig struct {
	// Directive is the comment prefix, e.g. "dynasty" for //dynasty:class
	Directive string `mapstructure:"directive" toml:"directive" json:"directive" yaml:"directive"`
	// BaseField is the name of the injected parent field
	BaseField string `mapstructure:"base_field" toml:"base_field" json:"base_field" yaml:"base_field"`
	// Suffix is appended to the source file stem for companion files
	Suffix string `mapstructure:"suffix" toml:"suffix" json:"suffix" yaml:"suffix"`
	// RuntimeImport is the import path of the class runtime package
	RuntimeImport string `mapstructure:"runtime_import" toml:"runtime_import" json:"runtime_import" yaml:"runtime_import"`
	// Clean removes companion files whose source no longer has directives
	Clean bool `mapstructure:"clean" toml:"clean" json:"clean" yaml:"clean"`
}

// WatchConfig configures `dynasty generate --watch`
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`
}

// LogConfig configures logging
type LogConfig struct {
	JSON      bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
	Verbosity int  `mapstructure:"verbosity" toml:"verbosity" json:"verbosity" yaml:"verbosity"`
}
