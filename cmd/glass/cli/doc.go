// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the glass CLI.
//
// The central type is [Command]: a named subcommand with optional
// nested [Command.Subcommands], a [pflag.FlagSet] factory, and a Run
// function. [Command.Execute] handles flag parsing, subcommand routing
// and help output. Unknown subcommands and flags get a did-you-mean
// suggestion (edit distance <= 3).
//
// Errors returned by commands are categorized with [ToolError];
// [ExitError] carries an exit code for commands that already printed
// their own output.
package cli
