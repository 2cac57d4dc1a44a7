// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "GLASS_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Production is for an operator's everyday installation.
	Production Environment = "production"
)

// Config is the master configuration for glass.
type Config struct {
	Environment Environment `yaml:"environment"`

	Paths   PathsConfig   `yaml:"paths"`
	Prompt  PromptConfig  `yaml:"prompt"`
	Glass   GlassConfig   `yaml:"glass"`
	Logging LoggingConfig `yaml:"logging"`

	// Per-environment overrides, applied after the base config.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths   *PathsConfig   `yaml:"paths,omitempty"`
	Prompt  *PromptConfig  `yaml:"prompt,omitempty"`
	Glass   *GlassConfig   `yaml:"glass,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// Root is the base directory for glass data.
	Root string `yaml:"root"`

	// Keyring is the directory holding keyring.jsonc and secring.age.
	Keyring string `yaml:"keyring"`

	// Drafts is the SQLite database of encrypted drafts.
	Drafts string `yaml:"drafts"`
}

// PromptConfig configures the prompt session.
type PromptConfig struct {
	// AutosaveInterval is a Go duration. Default: 30s.
	AutosaveInterval string `yaml:"autosave_interval"`

	// QuotePrefix starts every quoted line in a reply. Default: "> ".
	QuotePrefix string `yaml:"quote_prefix"`
}

// GlassConfig configures secure surfaces.
type GlassConfig struct {
	// HandshakeTimeout is a Go duration. Default: 5s.
	HandshakeTimeout string `yaml:"handshake_timeout"`

	// MinComposeHeight is the smallest compose surface, in rows.
	MinComposeHeight int `yaml:"min_compose_height"`
}

// LoggingConfig configures the slog level.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
}

// Default returns the default configuration. It is the base the config
// file is merged into, and what the CLI uses when no file is named.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".local", "share", "glass")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root:    defaultRoot,
			Keyring: filepath.Join(defaultRoot, "keyring"),
			Drafts:  filepath.Join(defaultRoot, "drafts.db"),
		},
		Prompt: PromptConfig{
			AutosaveInterval: "30s",
			QuotePrefix:      "> ",
		},
		Glass: GlassConfig{
			HandshakeTimeout: "5s",
			MinComposeHeight: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the GLASS_CONFIG environment variable.
// It fails when the variable is unset; there is no file discovery.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your glass.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Only
// ${HOME}, ${GLASS_ROOT} and ${VAR:-default} in paths are expanded;
// environment variables never override values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		// Production keeps logs quiet unless asked otherwise.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Logging: &LoggingConfig{Level: "warn"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.Keyring != "" {
			c.Paths.Keyring = overrides.Paths.Keyring
		}
		if overrides.Paths.Drafts != "" {
			c.Paths.Drafts = overrides.Paths.Drafts
		}
	}

	if overrides.Prompt != nil {
		if overrides.Prompt.AutosaveInterval != "" {
			c.Prompt.AutosaveInterval = overrides.Prompt.AutosaveInterval
		}
		if overrides.Prompt.QuotePrefix != "" {
			c.Prompt.QuotePrefix = overrides.Prompt.QuotePrefix
		}
	}

	if overrides.Glass != nil {
		if overrides.Glass.HandshakeTimeout != "" {
			c.Glass.HandshakeTimeout = overrides.Glass.HandshakeTimeout
		}
		if overrides.Glass.MinComposeHeight != 0 {
			c.Glass.MinComposeHeight = overrides.Glass.MinComposeHeight
		}
	}

	if overrides.Logging != nil && overrides.Logging.Level != "" {
		c.Logging.Level = overrides.Logging.Level
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"GLASS_ROOT": c.Paths.Root,
		"HOME":       os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["GLASS_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.Keyring = expandVars(c.Paths.Keyring, vars)
	c.Paths.Drafts = expandVars(c.Paths.Drafts, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}
	if c.Paths.Keyring == "" {
		errs = append(errs, fmt.Errorf("paths.keyring is required"))
	}
	if c.Paths.Drafts == "" {
		errs = append(errs, fmt.Errorf("paths.drafts is required"))
	}

	if interval, err := time.ParseDuration(c.Prompt.AutosaveInterval); err != nil {
		errs = append(errs, fmt.Errorf("prompt.autosave_interval: %w", err))
	} else if interval <= 0 {
		errs = append(errs, fmt.Errorf("prompt.autosave_interval must be positive"))
	}
	if c.Prompt.QuotePrefix == "" {
		errs = append(errs, fmt.Errorf("prompt.quote_prefix is required"))
	}

	if timeout, err := time.ParseDuration(c.Glass.HandshakeTimeout); err != nil {
		errs = append(errs, fmt.Errorf("glass.handshake_timeout: %w", err))
	} else if timeout <= 0 {
		errs = append(errs, fmt.Errorf("glass.handshake_timeout must be positive"))
	}
	if c.Glass.MinComposeHeight < 1 {
		errs = append(errs, fmt.Errorf("glass.min_compose_height must be at least 1"))
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// AutosaveInterval returns the parsed auto-save interval. Call after
// Validate.
func (c *Config) AutosaveInterval() time.Duration {
	interval, _ := time.ParseDuration(c.Prompt.AutosaveInterval)
	return interval
}

// HandshakeTimeout returns the parsed handshake timeout. Call after
// Validate.
func (c *Config) HandshakeTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Glass.HandshakeTimeout)
	return timeout
}

// LogLevel parses logging.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

// EnsurePaths creates the data directories if they don't exist.
func (c *Config) EnsurePaths() error {
	paths := []string{
		c.Paths.Root,
		c.Paths.Keyring,
		filepath.Dir(c.Paths.Drafts),
	}

	for _, path := range paths {
		if path == "" || path == "." {
			continue
		}
		if err := os.MkdirAll(path, 0700); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}
