// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock lets timer-driven code run against either wall time or
// a test-controlled clock.
//
// The prompt's auto-save loop and the glass handshake deadline take a
// [Clock] instead of calling the time package. Production passes
// [Real]; tests pass a [FakeClock] and call Advance to fire timers in
// deadline order, synchronously, on the test goroutine:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	session := prompt.New(prompt.Config{Clock: fake, ...})
//	session.ComposeChanged("first keystroke")
//	fake.Advance(30 * time.Second) // auto-save tick runs here
package clock
