package config

import "github.com/spf13/viper"

// Default values, also used by the generator when no config is loaded.
const (
	DefaultDirective     = "dynasty"
	DefaultBaseField     = "base"
	DefaultSuffix        = "_dynasty.go"
	DefaultRuntimeImport = "github.com/teranos/dynasty/class"
	DefaultDebounceMS    = 300
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("generate.directive", DefaultDirective)
	v.SetDefault("generate.base_field", DefaultBaseField)
	v.SetDefault("generate.suffix", DefaultSuffix)
	v.SetDefault("generate.runtime_import", DefaultRuntimeImport)
	v.SetDefault("generate.clean", false)

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)

	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Generate: GenerateConfig{
			Directive:     DefaultDirective,
			BaseField:     DefaultBaseField,
			Suffix:        DefaultSuffix,
			RuntimeImport: DefaultRuntimeImport,
		},
		Watch: WatchConfig{DebounceMS: DefaultDebounceMS},
	}
}
