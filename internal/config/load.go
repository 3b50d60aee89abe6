package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"compmode/internal/patterns"
	"compmode/internal/report"
)

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg *Config
	if isTOML(path) {
		cfg, err = ParseTOML(b)
	} else {
		cfg, err = Parse(b)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func validateAndDefault(cfg *Config) error {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Version != 1 {
		return fmt.Errorf("config: unsupported version %d", cfg.Version)
	}

	d := &cfg.Defaults
	if strings.TrimSpace(d.Format) == "" {
		d.Format = string(report.FormatJSON)
	}
	f, err := report.ParseFormat(d.Format)
	if err != nil {
		return fmt.Errorf("config: defaults.format: %w", err)
	}
	d.Format = string(f)

	if d.Terminator < 0 || d.Terminator > 2 {
		return fmt.Errorf("config: defaults.terminator must be 0, 1 or 2, got %d", d.Terminator)
	}
	if d.Timeout < 0 {
		return errors.New("config: defaults.timeout must be >= 0")
	}
	if err := validateShell(d.Shell); err != nil {
		return fmt.Errorf("config: defaults.shell: %w", err)
	}

	seen := map[string]struct{}{}
	for i := range cfg.Groups {
		g := &cfg.Groups[i]
		g.Name = strings.TrimSpace(g.Name)
		if g.Name == "" {
			return fmt.Errorf("config: groups[%d] missing name", i)
		}
		key := strings.ToLower(g.Name)
		if key == patterns.AllGroups {
			return fmt.Errorf("config: groups[%d] name %q is reserved", i, g.Name)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("config: groups[%d] duplicate name %q", i, g.Name)
		}
		seen[key] = struct{}{}

		if len(g.Patterns) == 0 {
			return fmt.Errorf("config: groups[%d] (%s) has no patterns", i, g.Name)
		}
		if _, err := patterns.Compile(g.Patterns); err != nil {
			return fmt.Errorf("config: groups[%d] (%s): %w", i, g.Name, err)
		}
		for _, glob := range g.Executables {
			if !doublestar.ValidatePattern(glob) {
				return fmt.Errorf("config: groups[%d] (%s) invalid executable glob %q", i, g.Name, glob)
			}
		}
	}

	return nil
}

func validateShell(shell string) error {
	s := strings.TrimSpace(shell)
	if s == "" {
		return nil
	}
	if strings.ContainsAny(s, "\r\n\t") {
		return errors.New("must be a single executable name or path")
	}
	if strings.ContainsAny(s, " ") && !strings.ContainsAny(s, `/\`) {
		return errors.New("must not include arguments (use only the shell executable)")
	}
	return nil
}
