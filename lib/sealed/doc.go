// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed is the age layer underneath the glass action backend.
//
// Messages are age ciphertext in ASCII armor so they survive being
// pasted into and copied out of arbitrary text. Three flavors exist:
//
//   - [Encrypt] -- to one or more X25519 recipients (age1...)
//   - [EncryptWithPassphrase] -- to a single scrypt passphrase
//   - [Seal] / [Unseal] -- binary scrypt envelopes for on-disk secrets
//
// [Decrypt] accepts any mix of identities and returns plaintext in a
// [secret.Buffer]. When no identity matches it returns
// [ErrNoMatchingKey], which the backend uses to fall back to asking
// for a message passphrase.
//
// The package also recognizes the text forms glass exchanges with a
// host page: armored messages, public key blocks and draft markers
// (see [Classify]).
package sealed
