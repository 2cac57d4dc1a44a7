// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Glass is the command-line entry point for the secure prompt: it runs
// the prompt on a terminal and manages the local keyring and saved
// drafts.
//
// Usage:
//
//	glass prompt [--mode <mode>] [--origin <id>] [--recipient <uid>]... [--can-inject] [< content]
//	glass keyring init|import|export|list
//	glass draft list|clear
//
// Configuration comes from --config, then $GLASS_CONFIG, then built-in
// defaults rooted at ~/.local/share/glass.
package main
