// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestToolError_ErrorWithoutHint(t *testing.T) {
	err := Validation("missing --uid")
	if err.Error() != "missing --uid" {
		t.Errorf("Error() = %q, want %q", err.Error(), "missing --uid")
	}
}

func TestToolError_ErrorWithHint(t *testing.T) {
	err := NotFound("no keyring in %s", "/tmp/k").WithHint("Run 'glass keyring init'.")

	want := "no keyring in /tmp/k\n\nRun 'glass keyring init'."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Category != CategoryNotFound {
		t.Errorf("Category = %q, want %q", err.Category, CategoryNotFound)
	}
}

func TestToolError_SurvivesWrapping(t *testing.T) {
	inner := Forbidden("incorrect passphrase")
	wrapped := fmt.Errorf("unlock: %w", inner)

	var toolErr *ToolError
	if !errors.As(wrapped, &toolErr) {
		t.Fatal("errors.As should find the ToolError in a wrapped chain")
	}
	if CategoryOf(wrapped) != CategoryForbidden {
		t.Errorf("CategoryOf = %q, want forbidden", CategoryOf(wrapped))
	}
}

func TestToolError_UnwrapReachesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("writing index: %w", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestCategoryOf_PlainError(t *testing.T) {
	if got := CategoryOf(errors.New("plain")); got != CategoryInternal {
		t.Errorf("CategoryOf(plain) = %q, want internal", got)
	}
}

func TestToolError_ExitCode(t *testing.T) {
	tests := []struct {
		err  *ToolError
		want int
	}{
		{Validation("x"), 2},
		{NotFound("x"), 3},
		{Forbidden("x"), 4},
		{Conflict("x"), 5},
		{Internal("x"), 1},
	}
	for _, test := range tests {
		if got := test.err.ExitCode(); got != test.want {
			t.Errorf("%s ExitCode() = %d, want %d", test.err.Category, got, test.want)
		}
	}
}

func TestExitError(t *testing.T) {
	err := &ExitError{Code: 7}
	if err.ExitCode() != 7 {
		t.Errorf("ExitCode() = %d, want 7", err.ExitCode())
	}
	if err.Error() != "exit code 7" {
		t.Errorf("Error() = %q", err.Error())
	}
}
