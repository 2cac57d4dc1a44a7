// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens the SQLite databases glass keeps on disk.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool and applies one set
// of pragmas to every connection:
//
//   - journal_mode=WAL and synchronous=NORMAL: a prompt process and a
//     CLI invocation may touch the same database at once.
//   - busy_timeout=5000: wait for the write lock instead of failing.
//   - secure_delete=ON: freed pages are overwritten, so a cleared draft
//     does not linger in the file.
//   - temp_store=MEMORY: no temporary files beside the database.
//
// Callers write SQL directly with sqlitex and manage transactions with
// [Pool.Write]. Connections are not safe for concurrent use; each
// goroutine takes its own.
package sqlitepool
