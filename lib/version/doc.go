// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build version information for the glass
// binary.
//
// Release builds inject values with -ldflags:
//
//	go build -ldflags "-X github.com/bureau-foundation/glass/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/glass
//
// Builds without ldflags fall back to the VCS settings the Go toolchain
// embeds in the binary.
package version
