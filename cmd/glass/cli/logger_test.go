// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger_Format(t *testing.T) {
	var text, structured bytes.Buffer

	newLogger(&text, true, slog.LevelInfo).Info("keyring created", "uid", "me@x")
	newLogger(&structured, false, slog.LevelInfo).Info("keyring created", "uid", "me@x")

	if !strings.Contains(text.String(), `msg="keyring created"`) {
		t.Errorf("terminal output = %q, want text format", text.String())
	}
	if !strings.HasPrefix(structured.String(), "{") || !strings.Contains(structured.String(), `"uid":"me@x"`) {
		t.Errorf("non-terminal output = %q, want JSON", structured.String())
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buffer bytes.Buffer
	logger := newLogger(&buffer, true, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buffer.String(), "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(buffer.String(), "shown") {
		t.Error("warn record missing")
	}
}
