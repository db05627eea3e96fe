package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML configuration from fsys. Keys missing from the file keep
// their default values; unknown keys are rejected so typos do not pass
// silently.
func Load(fsys afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	// An empty file decodes to io.EOF and leaves the defaults
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	cfg.Normalize()

	return cfg, nil
}

// Save validates cfg and writes it to fsys as YAML, creating parent
// directories as needed
func Save(fsys afero.Fs, cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file on disk
func LoadFromFile(path string) (*Config, error) {
	return Load(afero.NewOsFs(), path)
}

// SaveToFile saves configuration to a YAML file on disk
func SaveToFile(cfg *Config, path string) error {
	return Save(afero.NewOsFs(), cfg, path)
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/copypix/config.yaml
func DefaultConfigPath() (string, error) {
	if xdg.ConfigHome == "" {
		return "", fmt.Errorf("failed to determine config directory")
	}
	return filepath.Join(xdg.ConfigHome, "copypix", "config.yaml"), nil
}

// LoadDefault loads the configuration from the default location.
// A missing file yields the built-in defaults.
func LoadDefault() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}

	fsys := afero.NewOsFs()
	if exists, err := afero.Exists(fsys, path); err != nil {
		return nil, fmt.Errorf("failed to access config file: %w", err)
	} else if !exists {
		return Default(), nil
	}

	return Load(fsys, path)
}

// Marshal renders the configuration as YAML with two-space indentation
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
