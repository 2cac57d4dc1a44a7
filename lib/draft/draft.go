// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package draft persists encrypted in-progress messages, one per
// originating context.
//
// Drafts are always ciphertext: SaveDraft refuses content that is not
// an armored message. Origins are never stored in the clear; both
// stores key records by a keyed BLAKE3 digest of the origin string.
package draft

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/glass/lib/sealed"
)

var (
	// ErrNotFound is returned by GetDraft when the origin has no draft.
	ErrNotFound = errors.New("draft: not found")

	// ErrNotEncrypted is returned by SaveDraft for content that is not
	// an armored message.
	ErrNotEncrypted = errors.New("draft: content is not an encrypted message")
)

// Store is the draft persistence contract used by the prompt.
type Store interface {
	HasDraft(ctx context.Context, origin string) (bool, error)
	GetDraft(ctx context.Context, origin string) (string, error)
	SaveDraft(ctx context.Context, content, origin string) error
	ClearDraft(ctx context.Context, origin string) error
}

// Record describes a stored draft for listing.
type Record struct {
	// Digest is the hex origin digest. The origin itself is not
	// recoverable from it.
	Digest    string
	Size      int
	UpdatedAt time.Time
}

// originDomainKey separates origin digests from any other BLAKE3 use.
var originDomainKey = [32]byte{
	'g', 'l', 'a', 's', 's', '.', 'd', 'r', 'a', 'f', 't', '.',
	'o', 'r', 'i', 'g', 'i', 'n',
}

// Digest returns the storage key for origin.
func Digest(origin string) string {
	hasher, err := blake3.NewKeyed(originDomainKey[:])
	if err != nil {
		panic("draft: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write([]byte(origin))
	return hex.EncodeToString(hasher.Sum(nil))
}

func validateContent(content string) error {
	if sealed.Classify(content) != sealed.KindMessage {
		return ErrNotEncrypted
	}
	return nil
}
