// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ReadPassphrase reads one passphrase into a Buffer.
//
// With path "-" the first line of stdin is used. With any other
// non-empty path the file contents are used. With an empty path the
// passphrase is read from the controlling terminal without echo, after
// writing label to stderr. Surrounding whitespace is trimmed and every
// intermediate heap copy is zeroed.
func ReadPassphrase(path, label string) (*Buffer, error) {
	var raw []byte
	var err error

	switch path {
	case "":
		raw, err = readTerminal(label)
	case "-":
		raw, err = readFirstLine(os.Stdin)
	default:
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	defer Zero(raw)

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrEmpty
	}
	return NewFromBytes(trimmed)
}

func readTerminal(label string) ([]byte, error) {
	descriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(descriptor) {
		return nil, fmt.Errorf("stdin is not a terminal; pass a passphrase file or \"-\"")
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	raw, err := term.ReadPassword(descriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	return raw, nil
}

func readFirstLine(reader io.Reader) ([]byte, error) {
	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return nil, ErrEmpty
	}
	line := scanner.Bytes()
	result := make([]byte, len(line))
	copy(result, line)
	Zero(line)
	return result, nil
}
