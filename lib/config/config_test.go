// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "glass.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.AutosaveInterval() != 30*time.Second {
		t.Errorf("expected autosave 30s, got %v", cfg.AutosaveInterval())
	}
	if cfg.HandshakeTimeout() != 5*time.Second {
		t.Errorf("expected handshake 5s, got %v", cfg.HandshakeTimeout())
	}
	if cfg.Prompt.QuotePrefix != "> " {
		t.Errorf("expected quote prefix \"> \", got %q", cfg.Prompt.QuotePrefix)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_RequiresGlassConfig(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when GLASS_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "GLASS_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_WithGlassConfig(t *testing.T) {
	configPath := writeConfig(t, `
environment: development
paths:
  root: /test/root
`)
	t.Setenv(EnvironmentVariable, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Paths.Root != "/test/root" {
		t.Errorf("expected root=/test/root, got %s", cfg.Paths.Root)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
environment: development

paths:
  root: /custom/root
  keyring: /custom/keys

prompt:
  autosave_interval: 10s
  quote_prefix: "| "

glass:
  min_compose_height: 8
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Paths.Keyring != "/custom/keys" {
		t.Errorf("expected keyring=/custom/keys, got %s", cfg.Paths.Keyring)
	}
	if cfg.AutosaveInterval() != 10*time.Second {
		t.Errorf("expected autosave 10s, got %v", cfg.AutosaveInterval())
	}
	if cfg.Prompt.QuotePrefix != "| " {
		t.Errorf("expected quote prefix \"| \", got %q", cfg.Prompt.QuotePrefix)
	}
	if cfg.Glass.MinComposeHeight != 8 {
		t.Errorf("expected min height 8, got %d", cfg.Glass.MinComposeHeight)
	}
	// Unset fields keep their defaults.
	if cfg.HandshakeTimeout() != 5*time.Second {
		t.Errorf("expected default handshake timeout, got %v", cfg.HandshakeTimeout())
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	configPath := writeConfig(t, "paths: [unclosed\n")
	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantLevel   string
		wantDrafts  string
		wantTimeout time.Duration
	}{
		{
			name: "development section applies",
			content: `
environment: development
development:
  logging:
    level: debug
  paths:
    drafts: /dev/drafts.db
`,
			wantLevel:   "debug",
			wantDrafts:  "/dev/drafts.db",
			wantTimeout: 5 * time.Second,
		},
		{
			name: "production defaults without a section",
			content: `
environment: production
paths:
  drafts: /base/drafts.db
`,
			wantLevel:   "warn",
			wantDrafts:  "/base/drafts.db",
			wantTimeout: 5 * time.Second,
		},
		{
			name: "production section replaces the defaults",
			content: `
environment: production
production:
  glass:
    handshake_timeout: 2s
paths:
  drafts: /base/drafts.db
`,
			wantLevel:   "info",
			wantDrafts:  "/base/drafts.db",
			wantTimeout: 2 * time.Second,
		},
		{
			name: "other environment's section is ignored",
			content: `
environment: development
paths:
  drafts: /base/drafts.db
production:
  paths:
    drafts: /prod/drafts.db
`,
			wantLevel:   "info",
			wantDrafts:  "/base/drafts.db",
			wantTimeout: 5 * time.Second,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := LoadFile(writeConfig(t, test.content))
			if err != nil {
				t.Fatalf("LoadFile failed: %v", err)
			}
			if cfg.Logging.Level != test.wantLevel {
				t.Errorf("level = %q, want %q", cfg.Logging.Level, test.wantLevel)
			}
			if cfg.Paths.Drafts != test.wantDrafts {
				t.Errorf("drafts = %q, want %q", cfg.Paths.Drafts, test.wantDrafts)
			}
			if cfg.HandshakeTimeout() != test.wantTimeout {
				t.Errorf("timeout = %v, want %v", cfg.HandshakeTimeout(), test.wantTimeout)
			}
		})
	}
}

func TestExpandVariables(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("GLASS_TEST_DIR", "")

	cfg, err := LoadFile(writeConfig(t, `
paths:
  root: ${HOME}/glass
  keyring: ${GLASS_ROOT}/keys
  drafts: ${GLASS_TEST_DIR:-/fallback}/drafts.db
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Paths.Root != "/home/tester/glass" {
		t.Errorf("root = %s", cfg.Paths.Root)
	}
	if cfg.Paths.Keyring != "/home/tester/glass/keys" {
		t.Errorf("keyring = %s", cfg.Paths.Keyring)
	}
	if cfg.Paths.Drafts != "/fallback/drafts.db" {
		t.Errorf("drafts = %s", cfg.Paths.Drafts)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad environment", func(c *Config) { c.Environment = "staging" }, "invalid environment"},
		{"missing root", func(c *Config) { c.Paths.Root = "" }, "paths.root"},
		{"missing keyring", func(c *Config) { c.Paths.Keyring = "" }, "paths.keyring"},
		{"bad interval", func(c *Config) { c.Prompt.AutosaveInterval = "often" }, "prompt.autosave_interval"},
		{"zero interval", func(c *Config) { c.Prompt.AutosaveInterval = "0s" }, "must be positive"},
		{"bad timeout", func(c *Config) { c.Glass.HandshakeTimeout = "-1s" }, "glass.handshake_timeout"},
		{"tiny compose", func(c *Config) { c.Glass.MinComposeHeight = 0 }, "min_compose_height"},
		{"bad level", func(c *Config) { c.Logging.Level = "chatty" }, "logging.level"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)
			err := cfg.Validate()
			if test.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("Validate = %v, want error containing %q", err, test.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Paths.Root = ""
	cfg.Logging.Level = "chatty"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"paths.root", "logging.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "debug"
	level, err := cfg.LogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Fatalf("LogLevel = %v, %v", level, err)
	}
}

func TestEnsurePaths(t *testing.T) {
	root := filepath.Join(t.TempDir(), "glass")
	cfg := Default()
	cfg.Paths.Root = root
	cfg.Paths.Keyring = filepath.Join(root, "keyring")
	cfg.Paths.Drafts = filepath.Join(root, "state", "drafts.db")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths: %v", err)
	}
	for _, dir := range []string{root, cfg.Paths.Keyring, filepath.Join(root, "state")} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", dir, err)
		}
	}
}
