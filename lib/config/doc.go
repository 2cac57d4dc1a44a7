// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for glass.
//
// Configuration is loaded from a single file named by either the
// GLASS_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file search; with neither
// set, the CLI runs on [Default].
//
// The file may carry development and production sections that override
// base values when [Config].Environment matches. Production defaults
// to warn-level logging.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${GLASS_ROOT}, and ${VAR:-default} patterns are expanded.
//
// This package depends on no other glass packages.
package config
