// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the glass CLI command tree.
package commands

import (
	"fmt"

	"github.com/bureau-foundation/glass/cmd/glass/cli"
	"github.com/bureau-foundation/glass/lib/version"
)

// Root builds and returns the complete glass command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "glass",
		Description: `glass: a secure prompt for encrypting, decrypting and composing messages.

Plaintext and passphrases stay inside the prompt. The surrounding
program only ever receives ciphertext, or nothing at all.`,
		Subcommands: []*cli.Command{
			promptCommand(),
			keyringCommand(),
			draftCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					if err := noArguments(args); err != nil {
						return err
					}
					fmt.Println(version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Create a keyring with one identity",
				Command:     "glass keyring init --uid 'Alice <alice@example.com>'",
			},
			{
				Description: "Encrypt a reply to a message on stdin and print the ciphertext",
				Command:     "glass prompt --mode encrypt-sign --origin thread-42 --can-inject < message.txt",
			},
			{
				Description: "Decrypt a message",
				Command:     "glass prompt < message.age",
			},
		},
	}
}
