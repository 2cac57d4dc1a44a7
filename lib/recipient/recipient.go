// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package recipient matches raw recipient identifiers from a request
// against the key identities in the keyring.
package recipient

import (
	"net/mail"
	"sort"
	"strings"
)

// Email extracts the normalized (lowercased) address from an identifier
// such as "Alice <alice@example.com>" or "alice@example.com". The
// second result is false when no address can be parsed.
func Email(identifier string) (string, bool) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", false
	}
	address, err := mail.ParseAddress(identifier)
	if err != nil {
		return "", false
	}
	return strings.ToLower(address.Address), true
}

// Selection is the outcome of resolving requested recipients.
type Selection struct {
	// ByEmail maps each normalized email present in the catalog to
	// every key id carrying it, ordered by identity string.
	ByEmail map[string][]string

	// Intended is the ordered key ids for the requested recipients.
	// A recipient whose email maps to several keys contributes all of
	// them. Requested identifiers that do not parse or match nothing
	// are absent.
	Intended []string
}

// Resolve matches requested against available, which maps identity
// strings to key ids.
func Resolve(available map[string]string, requested []string) Selection {
	identities := make([]string, 0, len(available))
	for identity := range available {
		identities = append(identities, identity)
	}
	sort.Strings(identities)

	byEmail := make(map[string][]string)
	for _, identity := range identities {
		email, ok := Email(identity)
		if !ok {
			continue
		}
		byEmail[email] = append(byEmail[email], available[identity])
	}

	var intended []string
	seen := make(map[string]bool)
	for _, raw := range requested {
		email, ok := Email(raw)
		if !ok {
			continue
		}
		for _, keyID := range byEmail[email] {
			if seen[keyID] {
				continue
			}
			seen[keyID] = true
			intended = append(intended, keyID)
		}
	}
	return Selection{ByEmail: byEmail, Intended: intended}
}
