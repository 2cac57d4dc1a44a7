// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package promptui

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/glass/lib/clock"
	"github.com/bureau-foundation/glass/lib/glass"
	"github.com/bureau-foundation/glass/lib/page"
)

// Element ids in the model's page.
const (
	messageContainerID = "message"
	ciphertextID       = "ciphertext"
)

// surfaceSet owns every glass surface the model installs. The session
// closes it during teardown.
type surfaceSet struct {
	mu       sync.Mutex
	surfaces []glass.Surface
	closed   bool
}

// add registers surface. It reports false, after disposing surface,
// when the set is already closed.
func (s *surfaceSet) add(surface glass.Surface) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		surface.Dispose()
		return false
	}
	s.surfaces = append(s.surfaces, surface)
	return true
}

// Close disposes every surface, newest first.
func (s *surfaceSet) Close() error {
	s.mu.Lock()
	surfaces := s.surfaces
	s.surfaces = nil
	s.closed = true
	s.mu.Unlock()
	for i := len(surfaces) - 1; i >= 0; i-- {
		surfaces[i].Dispose()
	}
	return nil
}

// newMessagePage builds the page a read surface is installed into: a
// scroll container holding the ciphertext block.
func newMessagePage(ciphertext string) *page.Document {
	document := page.New()
	// Fresh ids on an empty document cannot collide.
	_ = document.Append("", page.Element{ID: messageContainerID, Kind: page.ScrollContainer})
	_ = document.Append(messageContainerID, page.Element{ID: ciphertextID, Kind: page.Block, Text: ciphertext})
	return document
}

// readerInstalledMsg reports a read surface that connected.
type readerInstalledMsg struct {
	frame *glass.Frame
}

// readerFailedMsg reports a read surface that did not connect.
type readerFailedMsg struct {
	err error
}

// readerOptions is what installReader needs from the model.
type readerOptions struct {
	document *page.Document
	surfaces *surfaceSet
	clock    clock.Clock
	logger   *slog.Logger
	timeout  time.Duration
	width    int
	content  string
}

// installReader covers the ciphertext block with a read surface
// showing content. The install runs off the event loop.
func installReader(options readerOptions) tea.Cmd {
	launched := make(chan *glass.Frame, 1)
	reader := glass.NewReader(glass.Config{
		Host:   options.document,
		Target: ciphertextID,
		Launch: glass.NewFrameLauncher(options.width, options.logger, func(frame *glass.Frame) {
			launched <- frame
		}),
		Clock:            options.clock,
		Logger:           options.logger,
		HandshakeTimeout: options.timeout,
	}, options.content)
	if !options.surfaces.add(reader) {
		return nil
	}

	return func() tea.Msg {
		if err := reader.Install(context.Background()); err != nil {
			return readerFailedMsg{err: err}
		}
		select {
		case frame := <-launched:
			return readerInstalledMsg{frame: frame}
		default:
			return readerFailedMsg{err: glass.ErrNotConnected}
		}
	}
}
