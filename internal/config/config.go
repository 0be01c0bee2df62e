// Package config loads ideate-pm settings from .ideate-pm.yaml and the
// environment, and locates the project root.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the per-project config file.
const FileName = ".ideate-pm.yaml"

// Environment overrides.
const (
	EnvDir      = "IDEATE_PM_DIR"
	EnvLogLevel = "IDEATE_PM_LOG_LEVEL"
)

// Config holds all ideate-pm settings.
type Config struct {
	ProductDir string        `yaml:"product_dir"`
	Search     SearchConfig  `yaml:"search"`
	Logging    LoggingConfig `yaml:"logging"`
	Views      ViewsConfig   `yaml:"views"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	// Mode is the default --mode (auto, fts or like).
	Mode string `yaml:"mode"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ViewsConfig controls rendering widths.
type ViewsConfig struct {
	SummaryWidth int `yaml:"summary_width"`
	SnippetWidth int `yaml:"snippet_width"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		ProductDir: "product",
		Search:     SearchConfig{Mode: "auto"},
		Logging:    LoggingConfig{Level: "info"},
		Views:      ViewsConfig{SummaryWidth: 120, SnippetWidth: 200},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.fillZeroes()
	return cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if dir := strings.TrimSpace(os.Getenv(EnvDir)); dir != "" {
		c.ProductDir = dir
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		c.Logging.Level = level
	}
}

// fillZeroes restores defaults for keys a partial file left empty.
func (c *Config) fillZeroes() {
	def := DefaultConfig()
	if c.ProductDir == "" {
		c.ProductDir = def.ProductDir
	}
	if c.Search.Mode == "" {
		c.Search.Mode = def.Search.Mode
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Views.SummaryWidth <= 0 {
		c.Views.SummaryWidth = def.Views.SummaryWidth
	}
	if c.Views.SnippetWidth <= 0 {
		c.Views.SnippetWidth = def.Views.SnippetWidth
	}
}

// ProductPath resolves the product directory against root unless it is absolute.
func (c *Config) ProductPath(root string) string {
	if filepath.IsAbs(c.ProductDir) {
		return c.ProductDir
	}
	return filepath.Join(root, c.ProductDir)
}

// FindProjectRoot walks up from start looking for a directory that holds the
// config file or an initialized product database. If none is found, start is
// returned and the caller decides what to do.
func FindProjectRoot(start, productDir string) string {
	current := start
	for {
		if exists(filepath.Join(current, FileName)) {
			return current
		}
		if productDir != "" && !filepath.IsAbs(productDir) &&
			exists(filepath.Join(current, productDir, "memory.sqlite")) {
			return current
		}

		parent := filepath.Dir(current)
		if parent == current {
			return start
		}
		current = parent
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
