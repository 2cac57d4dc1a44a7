// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"

	"github.com/bureau-foundation/glass/lib/secret"
)

// ReadPassphrase reads a passphrase into a secret buffer. An empty path
// prompts on the terminal with echo off; "-" reads the first line of
// stdin; any other path is read as a file. The caller owns the buffer.
func ReadPassphrase(path, label string) (*secret.Buffer, error) {
	buffer, err := secret.ReadPassphrase(path, label)
	if err != nil {
		return nil, Validation("%s: %v", label, err)
	}
	return buffer, nil
}

// ConfirmPassphrase reads a new passphrase twice when prompting on the
// terminal, and once otherwise.
func ConfirmPassphrase(path, label string) (*secret.Buffer, error) {
	first, err := ReadPassphrase(path, label)
	if err != nil || path != "" {
		return first, err
	}
	second, err := ReadPassphrase("", "Repeat "+label)
	if err != nil {
		first.Close()
		return nil, err
	}
	defer second.Close()
	if !first.Equal(second.Bytes()) {
		first.Close()
		return nil, Validation("passphrases do not match")
	}
	return first, nil
}

// ReadAll reads r, failing once more than limit bytes arrive.
func ReadAll(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", Internal("reading input: %w", err)
	}
	if int64(len(data)) > limit {
		return "", Validation("input exceeds %d bytes", limit)
	}
	return string(data), nil
}
