// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds passphrases and decrypted plaintext in memory
// that the garbage collector never sees.
//
// [Buffer] is backed by an anonymous mmap region that is locked into
// RAM and excluded from core dumps. Close zeroes the region and
// releases it. The prompt creates one Buffer per passphrase attempt
// and closes it as soon as the unlock call returns, so an attempt
// never outlives the operation that consumed it.
//
// Constructors:
//
//   - [New] -- zero-filled buffer of a fixed size
//   - [NewFromBytes] -- copies a slice in and zeroes the source
//   - [NewFromString] -- convenience for API boundaries that hand over strings
//   - [ReadPassphrase] -- reads a line from a file, stdin, or a terminal
//
// [Zero] overwrites a heap slice in place for callers that must hold
// a transient copy.
package secret
