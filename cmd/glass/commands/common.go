// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/bureau-foundation/glass/cmd/glass/cli"
	"github.com/bureau-foundation/glass/lib/config"
	"github.com/bureau-foundation/glass/lib/keyring"
)

// configOptions is embedded by every command that reads configuration.
type configOptions struct {
	ConfigPath string `flag:"config" desc:"path to glass.yaml (default: $GLASS_CONFIG, else built-in defaults)"`
}

// load resolves and validates configuration: --config, then
// GLASS_CONFIG, then config.Default().
func (o *configOptions) load() (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case o.ConfigPath != "":
		cfg, err = config.LoadFile(o.ConfigPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, cli.NotFound("%v", err)
		}
		return nil, cli.Validation("loading configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration:\n%v", err)
	}
	return cfg, nil
}

// path returns the configuration file in effect, or "" for defaults.
func (o *configOptions) path() string {
	if o.ConfigPath != "" {
		return o.ConfigPath
	}
	return os.Getenv(config.EnvironmentVariable)
}

// commandLogger returns the CLI logger at the configured level.
func commandLogger(cfg *config.Config, command string) *slog.Logger {
	level, err := cfg.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	return cli.NewCommandLogger(level).With("command", command)
}

// openKeyring opens the configured keyring, mapping a missing one to
// a not-found error that says how to create it.
func openKeyring(cfg *config.Config, logger *slog.Logger) (*keyring.Keyring, error) {
	keys, err := keyring.Open(cfg.Paths.Keyring, logger)
	if errors.Is(err, keyring.ErrNotInitialized) {
		return nil, cli.NotFound("no keyring in %s", cfg.Paths.Keyring).
			WithHint("Run 'glass keyring init --uid <name <email>>' to create one.")
	}
	if err != nil {
		return nil, cli.Internal("opening keyring: %w", err)
	}
	return keys, nil
}

func noArguments(args []string) error {
	if len(args) > 0 {
		return cli.Validation("unexpected argument: %s", args[0])
	}
	return nil
}
