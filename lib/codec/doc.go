// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the single CBOR configuration used by glass.
//
// The glass channel frames every request and response as one CBOR
// value on a stream, and the keyring seals its identity list as CBOR
// before age-encrypting it. Both go through this package so that the
// encoding options (core deterministic encoding, string-keyed maps for
// untyped targets) are set in exactly one place.
package codec
