// Package config loads and persists ggq configuration from YAML files and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/l3aro/go-guard-query/pkg/platform"
)

// Config holds all configuration for go-guard-query.
type Config struct {
	// PredicateFunctions lists the function names the recognizer treats
	// as platform checks.
	PredicateFunctions []string `yaml:"predicate_functions" env:"GGQ_PREDICATE_FUNCTIONS"`

	// CacheDir is where built graphs are persisted. Empty disables the
	// disk cache.
	CacheDir string `yaml:"cache_dir" env:"GGQ_CACHE_DIR"`

	// CacheMaxEntries caps the in-memory graph cache.
	CacheMaxEntries int `yaml:"cache_max_entries" env:"GGQ_CACHE_MAX_ENTRIES"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose" env:"GGQ_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PredicateFunctions: append([]string(nil), platform.DefaultPredicateFunctions...),
		CacheDir:           defaultCacheDir(),
		CacheMaxEntries:    256,
		Verbose:            false,
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ggq/cache"
	}
	return filepath.Join(home, ".ggq", "cache")
}

// globalConfigFilePath returns the global config file path (~/.ggq/config.yaml).
func globalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ggq/config.yaml"
	}
	return filepath.Join(home, ".ggq", "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path.
func ProjectConfigFilePath() string {
	return ".ggq/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.ggq/config.yaml)
// 3. Global config (~/.ggq/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	globalPath := globalConfigFilePath()
	if data, err := os.ReadFile(globalPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", globalPath, err)
		}
	}

	projectPath := ProjectConfigFilePath()
	if data, err := os.ReadFile(projectPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", projectPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given YAML file path, creating
// parent directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if len(c.PredicateFunctions) == 0 {
		return fmt.Errorf("predicate_functions must not be empty")
	}
	for _, name := range c.PredicateFunctions {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("predicate_functions must not contain blank names")
		}
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("cache_max_entries must not be negative")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GGQ_PREDICATE_FUNCTIONS"); v != "" {
		var names []string
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		cfg.PredicateFunctions = names
	}
	if v := os.Getenv("GGQ_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("GGQ_CACHE_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CacheMaxEntries = n
		}
	}
	if v := os.Getenv("GGQ_VERBOSE"); v != "" {
		cfg.Verbose = v == "1" || strings.EqualFold(v, "true")
	}
}
