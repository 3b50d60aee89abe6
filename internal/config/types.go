package config

import (
	"time"

	"compmode/internal/patterns"
)

type Config struct {
	Version  int           `yaml:"version" toml:"version"`
	Defaults Defaults      `yaml:"defaults,omitempty" toml:"defaults"`
	Groups   []GroupConfig `yaml:"groups,omitempty" toml:"groups"`
}

// Defaults are the values `compmode run` uses when a flag is not given.
type Defaults struct {
	Format string     `yaml:"format,omitempty" toml:"format"`
	Groups StringList `yaml:"groups,omitempty" toml:"groups"`
	Shell  string     `yaml:"shell,omitempty" toml:"shell"`

	// MergeStderr feeds the command's stderr into the matcher too (default: true).
	MergeStderr *bool `yaml:"mergeStderr,omitempty" toml:"mergeStderr"`

	// Terminator is the line terminator length: 0 = platform, 1 = LF, 2 = CRLF.
	Terminator int `yaml:"terminator,omitempty" toml:"terminator"`

	Dedup   bool          `yaml:"dedup,omitempty" toml:"dedup"`
	Log     string        `yaml:"log,omitempty" toml:"log"`
	Timeout time.Duration `yaml:"timeout,omitempty" toml:"timeout"`
}

// GroupConfig is a user-defined pattern group.
type GroupConfig struct {
	Name        string     `yaml:"name" toml:"name"`
	Patterns    StringList `yaml:"patterns" toml:"patterns"`
	Executables StringList `yaml:"executables,omitempty" toml:"executables"`
}

// MergeStderrEnabled returns whether stderr is matched along with stdout.
func (d Defaults) MergeStderrEnabled() bool {
	if d.MergeStderr != nil {
		return *d.MergeStderr
	}
	return true
}

// PatternGroups converts the configured groups for patterns.NewRegistry.
func (c *Config) PatternGroups() []patterns.Group {
	if c == nil {
		return nil
	}
	out := make([]patterns.Group, 0, len(c.Groups))
	for _, g := range c.Groups {
		out = append(out, patterns.Group{
			Name:        g.Name,
			Patterns:    append([]string{}, g.Patterns...),
			Executables: append([]string{}, g.Executables...),
		})
	}
	return out
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	_ = validateAndDefault(cfg)
	return cfg
}
