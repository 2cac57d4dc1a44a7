// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package glass

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/bureau-foundation/glass/lib/clock"
	"github.com/bureau-foundation/glass/lib/codec"
	"github.com/bureau-foundation/glass/lib/page"
)

// DefaultHandshakeTimeout bounds how long Install waits for the frame.
const DefaultHandshakeTimeout = 5 * time.Second

// Surface is the contract shared by both variants.
type Surface interface {
	// Install covers the target with a frame and connects to it. It is
	// a no-op once installed or disposed.
	Install(ctx context.Context) error

	// Dispose tears the surface down. Safe to call repeatedly.
	Dispose()

	// OnRequest registers a handler for a request from the frame.
	// Built-in request names cannot be overridden.
	OnRequest(name string, handler Handler)

	// Send calls the frame. After Dispose it returns ErrDisposed.
	Send(ctx context.Context, name string, params, result any) error

	Disposed() bool
}

// Host is the document a surface is installed into. *page.Document
// satisfies it.
type Host interface {
	Get(id string) (page.Element, bool)
	NewID(prefix string) string
	InsertAfter(sibling string, element page.Element) error
	Remove(id string) error
	SetHidden(id string, hidden bool) error
	SetHeight(id string, height int) error
	Focus(id string) error
	ScrollParent(id string) (string, bool)
	ScrollOffset(id string) (int, error)
	OnScroll(container string, listener func(top int)) (func(), error)
}

// Launcher starts an isolated frame serving the far end of conn. It
// returns once the frame is listening; the frame outlives the call.
type Launcher func(ctx context.Context, conn net.Conn, init FrameInit) error

// FrameInit is what a frame receives at launch.
type FrameInit struct {
	Composing bool
	Content   string
}

// Config holds what both variants need.
type Config struct {
	Host Host

	// Target is the id of the element the surface covers.
	Target string

	Launch Launcher

	// Clock drives the handshake timeout. Required.
	Clock clock.Clock

	Logger *slog.Logger

	// HandshakeTimeout defaults to DefaultHandshakeTimeout.
	HandshakeTimeout time.Duration

	// Shortcuts defaults to DefaultShortcuts.
	Shortcuts ShortcutMap

	// FocusContext reports the host's focus state when a shortcut
	// arrives. Nil means NoItemFocused.
	FocusContext func() FocusContext

	// Dispatch performs a resolved host action. Nil drops them.
	Dispatch func(HostAction)
}

// variant supplies what differs between reader and composer.
type variant struct {
	name      string
	init      FrameInit
	resize    func(requested int) int
	handlers  func(*core) map[string]Handler
	installed func(*core)
}

// core is the lifecycle shared by Reader and Composer.
type core struct {
	cfg     Config
	variant variant
	logger  *slog.Logger

	mu        sync.Mutex
	installed bool
	disposed  bool
	port      *Port
	frameID   string
	noticeID  string
	handlers  map[string]Handler
	builtins  map[string]bool
}

func newCore(cfg Config, v variant) *core {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.Shortcuts == nil {
		cfg.Shortcuts = DefaultShortcuts
	}
	c := &core{
		cfg:      cfg,
		variant:  v,
		logger:   cfg.Logger.With("surface", v.name, "target", cfg.Target),
		handlers: make(map[string]Handler),
		builtins: make(map[string]bool),
	}
	builtins := map[string]Handler{
		"resize":            c.handleResize,
		"keyboard-shortcut": c.handleShortcut,
	}
	if v.handlers != nil {
		for name, handler := range v.handlers(c) {
			builtins[name] = handler
		}
	}
	for name, handler := range builtins {
		c.handlers[name] = handler
		c.builtins[name] = true
	}
	return c
}

func (c *core) OnRequest(name string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.builtins[name] {
		panic(fmt.Sprintf("glass: %q is a built-in request", name))
	}
	c.handlers[name] = handler
	if c.port != nil {
		c.port.Handle(name, handler)
	}
}

func (c *core) Install(ctx context.Context) error {
	if c.cfg.Host == nil || c.cfg.Launch == nil || c.cfg.Clock == nil {
		return fmt.Errorf("glass: Host, Launch and Clock are required")
	}
	c.mu.Lock()
	if c.disposed || c.installed {
		c.mu.Unlock()
		return nil
	}
	if _, ok := c.cfg.Host.Get(c.cfg.Target); !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNoTarget, c.cfg.Target)
	}
	c.installed = true

	hostConn, frameConn := net.Pipe()
	port := NewPort(hostConn, c.logger)
	for name, handler := range c.handlers {
		port.Handle(name, handler)
	}
	c.port = port
	c.frameID = c.cfg.Host.NewID("glass-frame")
	frameID := c.frameID
	c.cfg.Host.SetHidden(c.cfg.Target, true)
	insertErr := c.cfg.Host.InsertAfter(c.cfg.Target, page.Element{ID: frameID, Kind: page.Frame})
	c.mu.Unlock()
	if insertErr != nil {
		return fmt.Errorf("glass: inserting frame: %w", insertErr)
	}
	port.Start()

	err := c.cfg.Launch(ctx, frameConn, c.variant.init)
	if err == nil {
		err = port.Handshake(ctx, c.cfg.Clock.After(c.cfg.HandshakeTimeout))
	}
	if err != nil {
		if c.Disposed() {
			return ErrDisposed
		}
		c.showNotice(frameID, err)
		c.logger.Warn("glass handshake failed", "error", err)
		return fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	c.logger.Debug("glass surface installed", "frame", frameID)
	if c.variant.installed != nil {
		c.variant.installed(c)
	}
	return nil
}

func (c *core) showNotice(frameID string, cause error) {
	noticeID := c.cfg.Host.NewID("glass-notice")
	notice := page.Element{
		ID:     noticeID,
		Kind:   page.Notice,
		Height: 1,
		Text:   fmt.Sprintf("Secure view could not connect: %v", cause),
	}
	if err := c.cfg.Host.InsertAfter(frameID, notice); err != nil {
		c.logger.Error("glass notice insert failed", "error", err)
		return
	}
	c.mu.Lock()
	c.noticeID = noticeID
	c.mu.Unlock()
}

func (c *core) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	installed := c.installed
	port, frameID, noticeID := c.port, c.frameID, c.noticeID
	c.mu.Unlock()

	if port != nil {
		port.Close()
	}
	if !installed {
		return
	}
	if noticeID != "" {
		c.cfg.Host.Remove(noticeID)
	}
	c.cfg.Host.Remove(frameID)
	c.cfg.Host.SetHidden(c.cfg.Target, false)
	c.logger.Debug("glass surface disposed")
}

func (c *core) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

func (c *core) Send(ctx context.Context, name string, params, result any) error {
	port, err := c.livePort()
	if err != nil {
		return err
	}
	return port.Call(ctx, name, params, result)
}

func (c *core) notify(name string, params any) error {
	port, err := c.livePort()
	if err != nil {
		return err
	}
	return port.Notify(name, params)
}

func (c *core) livePort() (*Port, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return nil, ErrDisposed
	}
	if c.port == nil {
		return nil, ErrNotConnected
	}
	return c.port, nil
}

// FrameID returns the id of the inserted frame element, or "" before
// Install.
func (c *core) FrameID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameID
}

type resizeParams struct {
	Height int `cbor:"height"`
}

// ResizeReply answers "resize".
type ResizeReply struct {
	ScrollOffset int `cbor:"scroll_offset"`
}

func (c *core) handleResize(_ context.Context, params codec.RawMessage) (any, error) {
	var request resizeParams
	if err := DecodeParams(params, &request); err != nil {
		return nil, err
	}
	frameID := c.FrameID()
	height := c.variant.resize(request.Height)
	if err := c.cfg.Host.SetHeight(frameID, height); err != nil {
		return nil, err
	}
	offset, err := c.cfg.Host.ScrollOffset(frameID)
	if err != nil {
		return nil, err
	}
	return ResizeReply{ScrollOffset: offset}, nil
}

type shortcutParams struct {
	Shortcut Shortcut `cbor:"shortcut"`
}

// ShortcutReply answers "keyboard-shortcut".
type ShortcutReply struct {
	Handled bool       `cbor:"handled"`
	Action  HostAction `cbor:"action,omitempty"`
}

func (c *core) handleShortcut(_ context.Context, params codec.RawMessage) (any, error) {
	var request shortcutParams
	if err := DecodeParams(params, &request); err != nil {
		return nil, err
	}
	if err := c.cfg.Host.Focus(c.FrameID()); err != nil {
		return nil, err
	}
	focus := NoItemFocused
	if c.cfg.FocusContext != nil {
		focus = c.cfg.FocusContext()
	}
	action, ok := c.cfg.Shortcuts.Resolve(focus, request.Shortcut)
	if !ok {
		return ShortcutReply{}, nil
	}
	if c.cfg.Dispatch != nil {
		c.cfg.Dispatch(action)
	}
	return ShortcutReply{Handled: true, Action: action}, nil
}
