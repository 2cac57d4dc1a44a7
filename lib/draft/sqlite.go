// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package draft

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/glass/lib/clock"
	"github.com/bureau-foundation/glass/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS drafts (
	origin_digest TEXT PRIMARY KEY,
	ciphertext    TEXT NOT NULL,
	updated_at    INTEGER NOT NULL
);
`

// SQLiteStore keeps drafts in a SQLite database.
type SQLiteStore struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

// SQLiteConfig holds the parameters for OpenSQLite.
type SQLiteConfig struct {
	// Path is the database file; its directory must exist.
	Path string

	// Clock stamps updated_at. Required.
	Clock clock.Clock

	// Logger receives operational messages. Required.
	Logger *slog.Logger
}

// OpenSQLite opens (creating if needed) a draft database.
func OpenSQLite(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Clock == nil {
		return nil, fmt.Errorf("draft store: Clock is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("draft store: Logger is required")
	}
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   cfg.Path,
		Logger: cfg.Logger,
		Schema: schema,
	})
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{pool: pool, clock: cfg.Clock, logger: cfg.Logger}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.pool.Close()
}

func (s *SQLiteStore) HasDraft(ctx context.Context, origin string) (bool, error) {
	var found bool
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT 1 FROM drafts WHERE origin_digest = ?", &sqlitex.ExecOptions{
			Args: []any{Digest(origin)},
			ResultFunc: func(*sqlite.Stmt) error {
				found = true
				return nil
			},
		})
	})
	if err != nil {
		return false, fmt.Errorf("draft store: checking draft: %w", err)
	}
	return found, nil
}

func (s *SQLiteStore) GetDraft(ctx context.Context, origin string) (string, error) {
	var (
		content string
		found   bool
	)
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT ciphertext FROM drafts WHERE origin_digest = ?", &sqlitex.ExecOptions{
			Args: []any{Digest(origin)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				content = stmt.ColumnText(0)
				found = true
				return nil
			},
		})
	})
	if err != nil {
		return "", fmt.Errorf("draft store: reading draft: %w", err)
	}
	if !found {
		return "", ErrNotFound
	}
	return content, nil
}

func (s *SQLiteStore) SaveDraft(ctx context.Context, content, origin string) error {
	if err := validateContent(content); err != nil {
		return err
	}
	digest := Digest(origin)
	err := s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `
			INSERT INTO drafts (origin_digest, ciphertext, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(origin_digest) DO UPDATE SET ciphertext = excluded.ciphertext, updated_at = excluded.updated_at`,
			&sqlitex.ExecOptions{Args: []any{digest, content, s.clock.Now().UnixMilli()}})
	})
	if err != nil {
		return fmt.Errorf("draft store: saving draft: %w", err)
	}
	s.logger.Debug("draft saved", "digest", digest[:16], "size", len(content))
	return nil
}

func (s *SQLiteStore) ClearDraft(ctx context.Context, origin string) error {
	return s.clearDigest(ctx, Digest(origin))
}

// ClearDigest removes a draft by its listed digest.
func (s *SQLiteStore) ClearDigest(ctx context.Context, digest string) error {
	return s.clearDigest(ctx, digest)
}

func (s *SQLiteStore) clearDigest(ctx context.Context, digest string) error {
	err := s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "DELETE FROM drafts WHERE origin_digest = ?", &sqlitex.ExecOptions{
			Args: []any{digest},
		})
	})
	if err != nil {
		return fmt.Errorf("draft store: clearing draft: %w", err)
	}
	return nil
}

// ClearAll removes every draft and returns how many there were.
func (s *SQLiteStore) ClearAll(ctx context.Context) (int, error) {
	var removed int
	err := s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn, "DELETE FROM drafts", nil); err != nil {
			return err
		}
		removed = conn.Changes()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("draft store: clearing drafts: %w", err)
	}
	return removed, nil
}

// List returns every record, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	var records []Record
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT origin_digest, length(ciphertext), updated_at FROM drafts ORDER BY updated_at DESC", &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				records = append(records, Record{
					Digest:    stmt.ColumnText(0),
					Size:      stmt.ColumnInt(1),
					UpdatedAt: time.UnixMilli(stmt.ColumnInt64(2)).UTC(),
				})
				return nil
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("draft store: listing drafts: %w", err)
	}
	return records, nil
}
