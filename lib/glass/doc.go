// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package glass installs isolated surfaces ("glass") over host page
// content and manages their lifecycle.
//
// A surface hides a target element, launches an isolated [Frame] on the
// far end of a connection, and inserts a frame element after the
// target. Host and frame talk over a [Port]: CBOR envelopes with a
// version handshake, request ids, and {ok, error, data} responses. No
// request crosses the channel before the handshake completes.
//
// Two variants share one lifecycle core. [NewReader] shows fixed content
// supplied at install. [NewComposer] holds mutable content, answers the
// frame's "exit" request, and forwards scroll positions of its
// enclosing scroll container to the frame.
//
// Every surface answers two built-in requests from the frame:
//
//	resize             {height}    -> {scroll_offset}
//	keyboard-shortcut  {shortcut}  -> {handled}
//
// A failed handshake leaves the surface installed with a visible notice
// after the frame; the caller disposes and reinstalls to retry. Dispose
// is idempotent, restores the target once, and every later Send fails
// with [ErrDisposed].
package glass
