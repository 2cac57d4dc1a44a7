// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package glass

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/glass/lib/codec"
)

// Frame is the isolated side of a surface. It owns the sensitive text
// and reaches the host only through its Port.
type Frame struct {
	port      *Port
	width     int
	composing bool

	mu            sync.Mutex
	content       string
	height        int
	scrollOffset  int
	scrollReports int
	scrolls       chan int
}

// NewFrameLauncher returns a Launcher that runs an in-process Frame
// wrapping text at width columns. launched, if non-nil, receives each
// frame as it starts.
func NewFrameLauncher(width int, logger *slog.Logger, launched func(*Frame)) Launcher {
	return func(_ context.Context, conn net.Conn, init FrameInit) error {
		frame := &Frame{
			width:     width,
			composing: init.Composing,
			content:   init.Content,
			scrolls:   make(chan int, 64),
		}
		frame.port = NewPort(conn, logger)
		frame.port.Handle("get-content", frame.handleGetContent)
		frame.port.Handle("scroll-offset", frame.handleScrollOffset)
		if init.Composing {
			frame.port.Handle("set-content", frame.handleSetContent)
		}
		frame.port.OnReady(func() { frame.Resize(frame.port.baseCtx) })
		frame.port.Start()
		if launched != nil {
			launched(frame)
		}
		return nil
	}
}

// Ready is closed once the host's handshake has been accepted.
func (f *Frame) Ready() <-chan struct{} { return f.port.Ready() }

// Done is closed when the channel to the host is gone.
func (f *Frame) Done() <-chan struct{} { return f.port.Done() }

// View renders the content wrapped to the frame width.
func (f *Frame) View() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

func (f *Frame) viewLocked() string {
	if f.width <= 0 {
		return f.content
	}
	return ansi.Wrap(f.content, f.width, " ,.;-")
}

// Content returns the current text.
func (f *Frame) Content() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content
}

// Height is the height last reported to the host.
func (f *Frame) Height() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.height
}

// ScrollOffset is the latest offset the host reported.
func (f *Frame) ScrollOffset() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scrollOffset
}

// ScrollReports counts "scroll-offset" notifications received.
func (f *Frame) ScrollReports() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scrollReports
}

// Scrolls delivers each reported scroll offset. Reports arriving while
// the buffer is full are counted but not delivered.
func (f *Frame) Scrolls() <-chan int { return f.scrolls }

// Resize reports the rendered height to the host.
func (f *Frame) Resize(ctx context.Context) error {
	f.mu.Lock()
	height := strings.Count(f.viewLocked(), "\n") + 1
	f.height = height
	f.mu.Unlock()

	var reply ResizeReply
	if err := f.port.Call(ctx, "resize", resizeParams{Height: height}, &reply); err != nil {
		return err
	}
	f.mu.Lock()
	f.scrollOffset = reply.ScrollOffset
	f.mu.Unlock()
	return nil
}

// Type appends text typed by the operator and resizes.
func (f *Frame) Type(ctx context.Context, text string) error {
	f.mu.Lock()
	f.content += text
	f.mu.Unlock()
	return f.Resize(ctx)
}

// Shortcut forwards a key binding to the host.
func (f *Frame) Shortcut(ctx context.Context, shortcut Shortcut) (ShortcutReply, error) {
	var reply ShortcutReply
	err := f.port.Call(ctx, "keyboard-shortcut", shortcutParams{Shortcut: shortcut}, &reply)
	return reply, err
}

// Exit asks the host to tear the composer down.
func (f *Frame) Exit(ctx context.Context, discardDraft bool) (ExitReply, error) {
	var reply ExitReply
	err := f.port.Call(ctx, "exit", exitParams{DiscardDraft: discardDraft}, &reply)
	return reply, err
}

// Close drops the frame's end of the channel.
func (f *Frame) Close() error { return f.port.Close() }

func (f *Frame) handleGetContent(context.Context, codec.RawMessage) (any, error) {
	return contentMessage{Content: f.Content()}, nil
}

func (f *Frame) handleSetContent(ctx context.Context, params codec.RawMessage) (any, error) {
	var message contentMessage
	if err := DecodeParams(params, &message); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.content = message.Content
	f.mu.Unlock()
	// Resize calls back into the host, which is waiting on this reply.
	AfterReply(ctx, func() { f.Resize(ctx) })
	return nil, nil
}

func (f *Frame) handleScrollOffset(_ context.Context, params codec.RawMessage) (any, error) {
	var message scrollOffsetParams
	if err := DecodeParams(params, &message); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.scrollOffset = message.Offset
	f.scrollReports++
	f.mu.Unlock()
	select {
	case f.scrolls <- message.Offset:
	default:
	}
	return nil, nil
}
