// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package keyring is the local key store behind the prompt.
//
// A keyring directory holds two files:
//
//   - keyring.jsonc: the public index. JSON with comments, listing every
//     known public key by UID and marking which of them are the
//     operator's own identities. Readable while locked.
//   - secring.age: the operator's private identities, CBOR-encoded and
//     sealed under the keyring passphrase with an age scrypt envelope.
//
// The unlock state is process-wide: one [Keyring] is shared by every
// prompt session, and any of them may lock it. Private identities live
// in memory only between [Keyring.Unlock] and [Keyring.Lock].
package keyring
