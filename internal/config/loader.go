package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.yaml.in/yaml/v3"
)

//go:embed schema.json
var schemaJSON string

// Load builds the effective configuration: compiled-in defaults, then
// the YAML file when present, then environment overrides. An absent
// file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults plus environment apply.
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := validate(data); err != nil {
				return nil, err
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// validate checks the raw YAML document against the embedded schema
// before it touches the typed struct.
func validate(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	schema, err := jsonschema.CompileString("schema.json", schemaJSON)
	if err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
