package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

// Load reads, parses, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is supplied:
// aggregator defaults, Prometheus export on its standard port, and the
// ops server enabled.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{Enabled: true},
	}
	// Validate never fails on the zero-value sections.
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
