// Package config defines the compmode configuration model, parsing,
// validation, defaults, and discovery.
//
// A missing config file is not an error; Default() describes the behavior
// without one.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileNames are the config file names looked up in each directory, in order.
var FileNames = []string{".compmode.yaml", ".compmode.yml", ".compmode.toml"}

// FindConfigFrom walks from start up to the filesystem root and returns the
// first config file found. ok is false when none exists.
func FindConfigFrom(start string) (cfgPath string, ok bool, err error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}

	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, statErr := os.Stat(candidate); statErr == nil {
				return candidate, true, nil
			} else if !errors.Is(statErr, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, statErr)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Resolve loads the config at explicit when given, otherwise the nearest
// config above cwd, otherwise Default(). path is empty when no file was used.
func Resolve(explicit string, cwd string) (cfg *Config, path string, err error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		if err != nil {
			return nil, "", err
		}
		return cfg, explicit, nil
	}

	found, ok, err := FindConfigFrom(cwd)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err = Load(found)
	if err != nil {
		return nil, "", err
	}
	return cfg, found, nil
}
