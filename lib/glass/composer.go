// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package glass

import (
	"context"
	"fmt"
	"sync"

	"github.com/bureau-foundation/glass/lib/codec"
)

// DefaultMinComposeHeight keeps an empty composer usable.
const DefaultMinComposeHeight = 5

// DraftDiscarder clears the draft associated with a composer.
// draft.Store satisfies it.
type DraftDiscarder interface {
	ClearDraft(ctx context.Context, origin string) error
}

// ComposerOptions configures the compose variant.
type ComposerOptions struct {
	Content string

	// MinHeight is the smallest height a resize can set. Zero means
	// DefaultMinComposeHeight.
	MinHeight int

	// DraftOrigin and Drafts identify the draft an "exit" with
	// discard_draft clears. Either may be empty.
	DraftOrigin string
	Drafts      DraftDiscarder

	// OnExit runs after the surface has been torn down by an "exit"
	// request.
	OnExit func(discarded bool)
}

// Composer is a surface whose content the frame edits.
type Composer struct {
	*core
	options ComposerOptions

	scrollMu        sync.Mutex
	unsubscribe     func()
	unsubscribeOnce sync.Once
}

var _ Surface = (*Composer)(nil)

// NewComposer returns an uninstalled compose surface.
func NewComposer(cfg Config, options ComposerOptions) *Composer {
	if options.MinHeight <= 0 {
		options.MinHeight = DefaultMinComposeHeight
	}
	composer := &Composer{options: options}
	composer.core = newCore(cfg, variant{
		name:   "composer",
		init:   FrameInit{Composing: true, Content: options.Content},
		resize: func(requested int) int { return max(requested, options.MinHeight) },
		handlers: func(*core) map[string]Handler {
			return map[string]Handler{"exit": composer.handleExit}
		},
		installed: func(*core) { composer.watchScroll() },
	})
	return composer
}

type exitParams struct {
	DiscardDraft bool `cbor:"discard_draft"`
}

// ExitReply answers "exit".
type ExitReply struct {
	Discarded bool `cbor:"discarded"`
}

func (c *Composer) handleExit(ctx context.Context, params codec.RawMessage) (any, error) {
	var request exitParams
	if err := DecodeParams(params, &request); err != nil {
		return nil, err
	}
	if _, ok := c.cfg.Host.Get(c.cfg.Target); !ok {
		return nil, fmt.Errorf("host element %q no longer exists", c.cfg.Target)
	}

	discarded := false
	if request.DiscardDraft && c.options.Drafts != nil && c.options.DraftOrigin != "" {
		if err := c.options.Drafts.ClearDraft(ctx, c.options.DraftOrigin); err != nil {
			return nil, fmt.Errorf("discarding draft: %w", err)
		}
		discarded = true
	}

	AfterReply(ctx, func() {
		c.Dispose()
		if c.options.OnExit != nil {
			c.options.OnExit(discarded)
		}
	})
	return ExitReply{Discarded: discarded}, nil
}

// SetContent replaces the frame's content.
func (c *Composer) SetContent(ctx context.Context, content string) error {
	return c.Send(ctx, "set-content", contentMessage{Content: content}, nil)
}

// Content fetches the frame's current content.
func (c *Composer) Content(ctx context.Context) (string, error) {
	var reply contentMessage
	if err := c.Send(ctx, "get-content", nil, &reply); err != nil {
		return "", err
	}
	return reply.Content, nil
}

type contentMessage struct {
	Content string `cbor:"content"`
}

type scrollOffsetParams struct {
	Offset int `cbor:"offset"`
}

// watchScroll subscribes to the nearest scroll container, if any. The
// subscription is not dropped by Dispose: the first report that fails
// after disposal removes it.
func (c *Composer) watchScroll() {
	container, ok := c.cfg.Host.ScrollParent(c.FrameID())
	if !ok {
		return
	}
	unsubscribe, err := c.cfg.Host.OnScroll(container, func(int) { c.reportScroll() })
	if err != nil {
		c.logger.Warn("scroll subscription failed", "container", container, "error", err)
		return
	}
	c.scrollMu.Lock()
	c.unsubscribe = unsubscribe
	c.scrollMu.Unlock()
}

func (c *Composer) reportScroll() {
	offset, _ := c.cfg.Host.ScrollOffset(c.FrameID())
	err := c.notify("scroll-offset", scrollOffsetParams{Offset: offset})
	if err == nil {
		return
	}
	if !c.Disposed() {
		c.logger.Debug("scroll report failed", "error", err)
		return
	}
	c.unsubscribeOnce.Do(func() {
		c.scrollMu.Lock()
		unsubscribe := c.unsubscribe
		c.scrollMu.Unlock()
		if unsubscribe != nil {
			unsubscribe()
		}
		c.logger.Debug("scroll subscription removed after dispose")
	})
}
