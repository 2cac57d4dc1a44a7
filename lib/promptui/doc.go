// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package promptui is the terminal front end of the secure prompt: a
// bubbletea model that renders [prompt.View] values and forwards
// operator input to a [prompt.Session].
//
// The model is the session's Renderer, Host, Document and (through
// [Scheduler]) its event loop: continuations posted by executor
// goroutines and timers arrive as tea messages and run inside Update,
// so the session never sees concurrent calls.
//
// Decrypted plaintext is never drawn by the model directly. It is
// handed to a glass read surface installed over the ciphertext block,
// and the model displays whatever that surface's frame renders.
//
// Log records reach the status bar through [LogHandler], so warnings
// stay visible without writing over the alternate screen.
package promptui
