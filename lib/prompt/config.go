// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bureau-foundation/glass/lib/action"
	"github.com/bureau-foundation/glass/lib/clock"
	"github.com/bureau-foundation/glass/lib/draft"
	"github.com/bureau-foundation/glass/lib/secret"
)

var (
	// ErrClosed is returned to a passphrase callback still waiting when
	// the session closes.
	ErrClosed = errors.New("prompt: session closed")

	// ErrPassphraseDeclined is returned to a passphrase callback the
	// operator declined.
	ErrPassphraseDeclined = errors.New("prompt: passphrase declined")
)

// Request is an inbound prompt request.
type Request struct {
	Mode Mode

	// Origin identifies the originating context; drafts are keyed by
	// it. Empty disables drafts.
	Origin string

	Recipients []string

	// CanInject says the result may be written back into the origin.
	CanInject bool

	Subject string
	From    string
	Content string
}

// KeyStore is the process-wide lock state.
type KeyStore interface {
	IsLocked() bool
	// Unlock borrows passphrase; the caller closes it.
	Unlock(passphrase *secret.Buffer) error
	Lock()
}

// KeyCatalog lists key identities as identity string -> key id.
type KeyCatalog interface {
	PublicKeys() map[string]string
	PrivateKeys() map[string]string
}

// Renderer shows a view. Called on the event loop.
type Renderer interface {
	Render(View)
}

// Document is the surrounding document whose editable fields are
// scrubbed on close.
type Document interface {
	EditableFields() []string
	SetValue(id, value string) error
}

// Host is the window the prompt runs in.
type Host interface {
	// Close relinquishes the window. Called last in teardown.
	Close()
	// Inject writes content back into the originating context.
	Inject(content string) error
	// OpenConfiguration opens the external settings surface.
	OpenConfiguration() error
}

// Scheduler runs functions on the event loop, in order.
type Scheduler interface {
	Post(fn func())
}

// Default settings.
const (
	DefaultAutoSaveInterval = 30 * time.Second
	DefaultQuotePrefix      = "> "
)

// Config wires a Session to its collaborators. Every interface field
// except Drafts and Document is required.
type Config struct {
	Executor  action.Executor
	Keys      KeyStore
	Catalog   KeyCatalog
	Drafts    draft.Store
	Renderer  Renderer
	Document  Document
	Host      Host
	Scheduler Scheduler
	Clock     clock.Clock
	Logger    *slog.Logger

	AutoSaveInterval time.Duration
	QuotePrefix      string

	// Children are closed during teardown, after pending passphrase
	// requests fail and before fields are scrubbed.
	Children []io.Closer
}

func (c *Config) validate() error {
	switch {
	case c.Executor == nil:
		return fmt.Errorf("prompt: Executor is required")
	case c.Keys == nil:
		return fmt.Errorf("prompt: Keys is required")
	case c.Catalog == nil:
		return fmt.Errorf("prompt: Catalog is required")
	case c.Renderer == nil:
		return fmt.Errorf("prompt: Renderer is required")
	case c.Host == nil:
		return fmt.Errorf("prompt: Host is required")
	case c.Scheduler == nil:
		return fmt.Errorf("prompt: Scheduler is required")
	case c.Clock == nil:
		return fmt.Errorf("prompt: Clock is required")
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.AutoSaveInterval <= 0 {
		c.AutoSaveInterval = DefaultAutoSaveInterval
	}
	if c.QuotePrefix == "" {
		c.QuotePrefix = DefaultQuotePrefix
	}
	return nil
}
