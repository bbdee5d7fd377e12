package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/dynasty/errors"
)

// Marshal renders cfg as TOML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	return data, nil
}

// Save writes cfg to path. An existing file is only replaced when
// overwrite is set.
func Save(path string, cfg *Config, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return errors.WithHint(
			errors.Newf("%s already exists", path),
			"pass --force to overwrite it",
		)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	header := []byte("# dynasty configuration\n# Environment variables (DYNASTY_GENERATE_SUFFIX, ...) override these values.\n\n")
	if err := os.WriteFile(path, append(header, data...), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
