// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for glass packages.
//
// [RequireReceive], [RequireSend], and [RequireClosed] wrap the
// select-with-timeout pattern so tests waiting on goroutines never hang
// and never call time.After themselves. They are the only place tests
// touch the wall clock; everything else runs on clock.FakeClock.
//
// [UniqueID] generates distinct identifiers (origins, element ids) for
// tests that share state.
//
// All helpers call t.Fatalf on failure.
package testutil
