// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// EnvOverrider is implemented by configurations that take settings from
// dedicated environment variables after the file is parsed.
type EnvOverrider interface {
	ApplyEnv()
}

// Load loads configuration from a YAML file with environment variable expansion.
func Load[T any](filename string, target *T) error {
	if err := decodeFile(filename, target); err != nil {
		return err
	}
	return finish(target)
}

// LoadOptional is Load for a config file that may be absent; target then
// keeps its defaults and only environment overrides apply.
func LoadOptional[T any](filename string, target *T) error {
	err := decodeFile(filename, target)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return finish(target)
}

func decodeFile[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return nil
}

func finish[T any](target *T) error {
	if o, ok := any(target).(EnvOverrider); ok {
		o.ApplyEnv()
	}
	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}
