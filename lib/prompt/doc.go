// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package prompt is the secure prompt's orchestrator: it picks a mode
// for an inbound request, gates every mode behind an unlocked keyring,
// delegates cryptographic work to an [action.Executor], coordinates
// local drafts, and tears everything down on close.
//
// A [Session] is single-threaded. Every exported event method must be
// called from the event loop behind [Scheduler]; blocking work (the
// executor, passphrase callbacks) runs on its own goroutine and posts
// its continuation back through Scheduler.Post. Once the session is
// closed, posted continuations are dropped.
//
// The flow for one request:
//
//	Start -> initial mode -> (locked? GET_PASSPHRASE, pending continuation)
//	      -> mode entry (recipients, signers, render, secondary decrypt,
//	         draft offer) -> Action -> executor -> result or Close
package prompt
