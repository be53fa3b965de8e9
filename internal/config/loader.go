package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// LocalPath is the override file looked up relative to the working directory.
const LocalPath = "configs/gameloop.yaml"

//go:embed defaults.yaml
var defaultYAML []byte

// DefaultYAML returns the embedded default configuration document.
func DefaultYAML() []byte {
	return defaultYAML
}

// Load builds the configuration.
// Search order: customPath -> ./configs/gameloop.yaml -> embedded default.
// The file found is overlaid on the defaults, so it only needs the keys it changes.
// A missing customPath is an error; a missing local file is not.
func Load(customPath string) (Config, error) {
	cfg := defaults()

	path := customPath
	if path == "" {
		path = LocalPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if customPath == "" && errors.Is(err, fs.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// defaults decodes the embedded YAML, falling back to Default if it is unusable.
func defaults() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default()
	}
	return cfg
}
