// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "glass",
		Subcommands: []*Command{
			{
				Name: "prompt",
				Run: func(args []string) error {
					called = "prompt"
					return nil
				},
			},
			{
				Name: "keyring",
				Run: func(args []string) error {
					called = "keyring"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"keyring"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "keyring" {
		t.Errorf("dispatched to %q, want %q", called, "keyring")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var receivedArgs []string

	root := &Command{
		Name: "glass",
		Subcommands: []*Command{
			{
				Name: "keyring",
				Subcommands: []*Command{
					{
						Name: "import",
						Run: func(args []string) error {
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute([]string{"keyring", "import", "bob.key"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "bob.key" {
		t.Errorf("args = %v, want [bob.key]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var origin string
	var content string

	command := &Command{
		Name: "prompt",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("prompt", pflag.ContinueOnError)
			flagSet.StringVar(&origin, "origin", "", "origin")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				content = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"--origin", "thread-7", "hello"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if origin != "thread-7" {
		t.Errorf("origin = %q, want %q", origin, "thread-7")
	}
	if content != "hello" {
		t.Errorf("content = %q, want %q", content, "hello")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "prompt",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("prompt", pflag.ContinueOnError)
			flagSet.String("origin", "", "origin")
			flagSet.Bool("can-inject", false, "inject")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--orign", "x"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --origin?") {
		t.Errorf("error = %q, want a suggestion of --origin", err)
	}
	if CategoryOf(err) != CategoryValidation {
		t.Errorf("category = %q, want validation", CategoryOf(err))
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "glass",
		Subcommands: []*Command{
			{Name: "keyring", Run: func([]string) error { return nil }},
			{Name: "draft", Run: func([]string) error { return nil }},
		},
		Output: &bytes.Buffer{},
	}

	err := root.Execute([]string{"keyrnig"})
	if err == nil {
		t.Fatal("expected error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), `did you mean "keyring"?`) {
		t.Errorf("error = %q, want a suggestion of keyring", err)
	}
}

func TestCommand_Execute_UnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "glass",
		Subcommands: []*Command{
			{Name: "keyring", Run: func([]string) error { return nil }},
		},
		Output: &bytes.Buffer{},
	}

	err := root.Execute([]string{"completely-different"})
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, want no suggestion", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:        "glass",
		Subcommands: []*Command{{Name: "draft", Summary: "Manage drafts"}},
		Output:      &help,
	}

	err := root.Execute(nil)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Fatalf("Execute(nil) error = %v, want subcommand required", err)
	}
	if !strings.Contains(help.String(), "Manage drafts") {
		t.Errorf("help output missing subcommand summary:\n%s", help.String())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, flag := range []string{"-h", "--help", "help"} {
		t.Run(flag, func(t *testing.T) {
			var help bytes.Buffer
			called := false
			command := &Command{
				Name:        "list",
				Description: "List keyring entries.",
				Run: func([]string) error {
					called = true
					return nil
				},
				Output: &help,
			}
			if err := command.Execute([]string{flag}); err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if called {
				t.Error("Run called for a help request")
			}
			if !strings.Contains(help.String(), "List keyring entries.") {
				t.Errorf("help = %q, want description", help.String())
			}
		})
	}
}

func TestCommand_Execute_OutputInheritedFromParent(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:   "glass",
		Output: &help,
		Subcommands: []*Command{
			{
				Name:        "draft",
				Subcommands: []*Command{{Name: "list", Summary: "List drafts"}},
			},
		},
	}

	if err := root.Execute([]string{"draft", "--help"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(help.String(), "glass draft <command>") {
		t.Errorf("help = %q, want the full command path", help.String())
	}
}

func TestCommand_Execute_RunErrorPassesThrough(t *testing.T) {
	sentinel := errors.New("boom")
	command := &Command{Name: "x", Run: func([]string) error { return sentinel }}
	if err := command.Execute(nil); !errors.Is(err, sentinel) {
		t.Errorf("Execute() = %v, want %v", err, sentinel)
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:    "import",
		Summary: "Import a public key",
		Usage:   "glass keyring import <file>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("import", pflag.ContinueOnError)
			flagSet.String("uid", "", "user id for a bare key")
			return flagSet
		},
		Examples: []Example{
			{Description: "Import from a file", Command: "glass keyring import bob.key"},
		},
	}

	var help bytes.Buffer
	command.PrintHelp(&help)
	output := help.String()

	for _, want := range []string{
		"Import a public key",
		"Usage:\n  glass keyring import <file>",
		"--uid",
		"# Import from a file",
		"glass keyring import bob.key",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help missing %q:\n%s", want, output)
		}
	}
}
