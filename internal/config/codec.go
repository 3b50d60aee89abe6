package config

import (
	"bytes"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML config and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := validateAndDefault(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseTOML decodes a TOML config and applies defaults.
func ParseTOML(data []byte) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
		return nil, err
	}
	if err := validateAndDefault(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path, as TOML when the path ends in .toml and YAML otherwise.
func Save(path string, cfg *Config) error {
	if err := validateAndDefault(cfg); err != nil {
		return err
	}
	var b []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		b = buf.Bytes()
	} else {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		b = out
	}
	return os.WriteFile(path, b, 0o644)
}
