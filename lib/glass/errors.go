// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package glass

import "errors"

var (
	// ErrDisposed is returned by operations on a disposed surface.
	ErrDisposed = errors.New("glass: surface disposed")

	// ErrHandshake wraps every handshake failure returned by Install.
	ErrHandshake = errors.New("glass: handshake failed")

	// ErrNotConnected is returned when the channel is not (or no longer)
	// usable: before the handshake, or after either side closed it.
	ErrNotConnected = errors.New("glass: channel not connected")

	// ErrNoTarget is returned by Install when the target element is
	// missing from the host.
	ErrNoTarget = errors.New("glass: target element not found")
)
