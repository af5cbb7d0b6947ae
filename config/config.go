// Package config loads rcsgrep's YAML configuration file: the default
// output format, continuation-line handling, discovery excludes, and the
// worker pool size used when scanning many files at once.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rcowham/rcsgrep/rcs"
	yaml "gopkg.in/yaml.v2"
)

// DefaultPoolSize is used when pool_size is unset or given no value; an
// explicit zero is rejected by validation.
var DefaultPoolSize = runtime.NumCPU()

// Config holds rcsgrep's tunable defaults, loaded from YAML.
type Config struct {
	DefaultFormat        string   `yaml:"default_format"`
	WrapContinuations    bool     `yaml:"wrap_continuations"`
	ExcludeGlobs         []string `yaml:"exclude_globs"`
	PoolSize             int      `yaml:"pool_size"`
	CaseInsensitiveNames bool     `yaml:"case_insensitive_names"`
}

// Unmarshal parses config, filling in defaults for anything left unset.
func Unmarshal(config []byte) (*Config, error) {
	cfg := &Config{
		DefaultFormat: rcs.DefaultFormat,
		PoolSize:      DefaultPoolSize,
	}
	if err := yaml.Unmarshal(config, cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v. make sure to use 'single quotes' around strings with special characters (like match patterns)", err.Error())
	}
	// A "pool_size:" key with no value decodes as null, which zeroes the
	// field; treat it as unset rather than as an explicit 0.
	if cfg.PoolSize == 0 {
		var probe struct {
			PoolSize *int `yaml:"pool_size"`
		}
		if err := yaml.Unmarshal(config, &probe); err == nil && probe.PoolSize == nil {
			cfg.PoolSize = DefaultPoolSize
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile reads and parses filename.
func LoadConfigFile(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load %v: %v", filename, err.Error())
	}
	cfg, err := LoadConfigString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to load %v: %v", filename, err.Error())
	}
	return cfg, nil
}

// LoadConfigString parses content as YAML configuration.
func LoadConfigString(content []byte) (*Config, error) {
	return Unmarshal(content)
}

func (c *Config) validate() error {
	if err := rcs.ValidateFormat(c.DefaultFormat); err != nil {
		return fmt.Errorf("invalid default_format %q: %v", c.DefaultFormat, err)
	}
	for _, pat := range c.ExcludeGlobs {
		if _, err := filepath.Match(pat, "probe"); err != nil {
			return fmt.Errorf("failed to parse exclude glob %q: %v", pat, err)
		}
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be positive, got %d", c.PoolSize)
	}
	return nil
}
