// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/glass/cmd/glass/cli"
	"github.com/bureau-foundation/glass/lib/action"
	"github.com/bureau-foundation/glass/lib/clock"
	"github.com/bureau-foundation/glass/lib/prompt"
	"github.com/bureau-foundation/glass/lib/promptui"
)

// maxPromptInput bounds the message content read for a prompt.
const maxPromptInput = 16 << 20

type promptParams struct {
	configOptions
	Mode       string   `flag:"mode" desc:"initial mode: menu, encrypt-sign, decrypt-verify, import-key, get-passphrase, lock-keyring, configure or no-op (default: inferred from the content)"`
	Origin     string   `flag:"origin" desc:"identifier of the originating conversation; enables drafts"`
	Recipients []string `flag:"recipient" desc:"intended recipient, repeatable"`
	CanInject  bool     `flag:"can-inject" desc:"print the final ciphertext to stdout and exit instead of displaying it"`
	Subject    string   `flag:"subject" desc:"subject of the message being composed"`
	From       string   `flag:"from" desc:"sender address; selects the matching own identity"`
	Input      string   `flag:"input" desc:"read content from this file instead of stdin"`
	NoColor    bool     `flag:"no-color" desc:"disable colors"`
}

func promptCommand() *cli.Command {
	var params promptParams
	return &cli.Command{
		Name:    "prompt",
		Summary: "Run the secure prompt",
		Description: `Run the secure prompt on the terminal.

Content (a message to decrypt or reply to, a saved draft, or a public
key block) is read from --input or from stdin when stdin is not a
terminal. Without --mode the prompt picks a mode from the content.

With --can-inject, the ciphertext of a finished message (or a wrapped
draft) is written to stdout when the prompt closes. Nothing else is
ever written to stdout.`,
		Usage: "glass prompt [flags] [< content]",
		Examples: []cli.Example{
			{Description: "Reply to an encrypted message", Command: "glass prompt --mode encrypt-sign --origin thread-42 --recipient bob@example.com --can-inject < message.age > reply.age"},
			{Description: "Unlock the keyring ahead of time", Command: "glass prompt --mode get-passphrase"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("prompt", &params) },
		Run: func(args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			return runPrompt(params)
		},
	}
}

// buildRequest turns flags and content into the prompt's request. When
// readStdin is false stdin is left alone.
func buildRequest(params promptParams, stdin io.Reader, readStdin bool) (*prompt.Request, error) {
	request := &prompt.Request{
		Origin:     params.Origin,
		Recipients: params.Recipients,
		CanInject:  params.CanInject,
		Subject:    params.Subject,
		From:       params.From,
	}
	if params.Mode != "" {
		mode, err := prompt.ParseMode(params.Mode)
		if err != nil {
			return nil, cli.Validation("--mode: %v", err)
		}
		request.Mode = mode
	}

	var input io.Reader
	switch {
	case params.Input != "":
		file, err := os.Open(params.Input)
		if err != nil {
			return nil, cli.NotFound("%v", err)
		}
		defer file.Close()
		input = file
	case readStdin:
		input = stdin
	}
	if input != nil {
		content, err := cli.ReadAll(input, maxPromptInput)
		if err != nil {
			return nil, err
		}
		request.Content = content
	}
	return request, nil
}

func runPrompt(params promptParams) error {
	cfg, err := params.load()
	if err != nil {
		return err
	}
	if params.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	stdinIsTerminal := term.IsTerminal(int(os.Stdin.Fd()))
	request, err := buildRequest(params, os.Stdin, !stdinIsTerminal)
	if err != nil {
		return err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	logHandler := promptui.NewLogHandler(level)
	logger := slog.New(logHandler).With("command", "prompt")

	keys, err := openKeyring(cfg, logger)
	if err != nil {
		return err
	}
	drafts, err := openDrafts(cfg, "prompt")
	if err != nil {
		return err
	}
	defer drafts.Close()

	clk := clock.Real()
	model := promptui.New(promptui.Options{
		Request:          request,
		Clock:            clk,
		Logger:           logger,
		LogHandler:       logHandler,
		HandshakeTimeout: cfg.HandshakeTimeout(),
		MinComposeHeight: cfg.Glass.MinComposeHeight,
	})
	session, err := prompt.New(prompt.Config{
		Executor:         action.NewBackend(keys, logger),
		Keys:             keys,
		Catalog:          keys,
		Drafts:           drafts,
		Renderer:         model,
		Document:         model,
		Host:             model,
		Scheduler:        model.Scheduler(),
		Clock:            clk,
		Logger:           logger,
		AutoSaveInterval: cfg.AutosaveInterval(),
		QuotePrefix:      cfg.Prompt.QuotePrefix,
		Children:         []io.Closer{model.Surfaces()},
	})
	if err != nil {
		return cli.Internal("starting prompt: %w", err)
	}
	model.Attach(session)

	options := []tea.ProgramOption{tea.WithAltScreen(), tea.WithOutput(os.Stderr)}
	if !stdinIsTerminal {
		options = append(options, tea.WithInputTTY())
	}
	_, runErr := tea.NewProgram(model, options...).Run()
	// Teardown is idempotent; this covers a program that exited
	// without the session closing it.
	session.Close()
	if runErr != nil {
		return cli.Internal("terminal: %w", runErr)
	}

	if output := model.Output(); output != "" {
		fmt.Fprint(os.Stdout, output)
	}
	if model.ConfigurationRequested() {
		return editConfiguration(params.path())
	}
	return nil
}

// editConfiguration opens the configuration file in $VISUAL or $EDITOR.
func editConfiguration(path string) error {
	if path == "" {
		return cli.NotFound("no configuration file in use").
			WithHint("Create a glass.yaml and pass --config or set GLASS_CONFIG.")
	}
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		fmt.Fprintf(os.Stderr, "configuration: %s\n", path)
		return nil
	}
	command := exec.Command(editor, path)
	command.Stdin, command.Stdout, command.Stderr = os.Stdin, os.Stderr, os.Stderr
	if err := command.Run(); err != nil {
		return cli.Internal("running %s: %w", editor, err)
	}
	return nil
}
