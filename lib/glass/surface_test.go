// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package glass

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/glass/lib/clock"
	"github.com/bureau-foundation/glass/lib/draft"
	"github.com/bureau-foundation/glass/lib/page"
	"github.com/bureau-foundation/glass/lib/testutil"
)

// countingHost records how often the target's visibility changes.
type countingHost struct {
	*page.Document
	mu      sync.Mutex
	reveals map[string]int
}

func (h *countingHost) SetHidden(id string, hidden bool) error {
	if !hidden {
		h.mu.Lock()
		h.reveals[id]++
		h.mu.Unlock()
	}
	return h.Document.SetHidden(id, hidden)
}

func (h *countingHost) revealCount(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reveals[id]
}

type fixture struct {
	host       *countingHost
	clock      *clock.FakeClock
	frames     chan *Frame
	dispatched chan HostAction
	focus      FocusContext
}

// newFixture lays out a scrolling message list:
//
//	list (scroll container, height 10)
//	  header  h=3
//	  message h=4   <- target
//	  footer  h=2
func newFixture(t *testing.T) *fixture {
	t.Helper()
	document := page.New()
	for _, step := range []struct {
		parent  string
		element page.Element
	}{
		{"", page.Element{ID: "list", Kind: page.ScrollContainer, Height: 10}},
		{"list", page.Element{ID: "header", Height: 3}},
		{"list", page.Element{ID: "message", Height: 4, Text: "ciphertext"}},
		{"list", page.Element{ID: "footer", Height: 2}},
	} {
		if err := document.Append(step.parent, step.element); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return &fixture{
		host:       &countingHost{Document: document, reveals: make(map[string]int)},
		clock:      clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		frames:     make(chan *Frame, 4),
		dispatched: make(chan HostAction, 4),
	}
}

func (f *fixture) config() Config {
	return Config{
		Host:         f.host,
		Target:       "message",
		Launch:       NewFrameLauncher(20, nil, func(frame *Frame) { f.frames <- frame }),
		Clock:        f.clock,
		FocusContext: func() FocusContext { return f.focus },
		Dispatch:     func(action HostAction) { f.dispatched <- action },
	}
}

func (f *fixture) install(t *testing.T, surface Surface) *Frame {
	t.Helper()
	if err := surface.Install(context.Background()); err != nil {
		t.Fatalf("Install: %v", err)
	}
	frame := testutil.RequireReceive(t, f.frames, wait, "frame launch")
	testutil.RequireClosed(t, frame.Ready(), wait, "frame handshake")
	t.Cleanup(surface.Dispose)
	return frame
}

func TestReaderInstall(t *testing.T) {
	f := newFixture(t)
	reader := NewReader(f.config(), "a decrypted line that is long enough to wrap twice")
	frame := f.install(t, reader)

	target, _ := f.host.Get("message")
	if !target.Hidden {
		t.Error("target not hidden after Install")
	}
	next, ok := f.host.NextSibling("message")
	if !ok || next != reader.FrameID() {
		t.Fatalf("element after target = %q, want frame %q", next, reader.FrameID())
	}

	if err := frame.Resize(context.Background()); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	element, _ := f.host.Get(reader.FrameID())
	if element.Height != frame.Height() || element.Height < 2 {
		t.Errorf("frame element height = %d, frame height = %d", element.Height, frame.Height())
	}
	// header (3) is above the frame; the hidden target takes no space.
	if frame.ScrollOffset() != 3 {
		t.Errorf("scroll offset = %d, want 3", frame.ScrollOffset())
	}
	if !strings.Contains(frame.View(), "decrypted") {
		t.Errorf("frame view = %q", frame.View())
	}
}

func TestInstallMissingTarget(t *testing.T) {
	f := newFixture(t)
	cfg := f.config()
	cfg.Target = "nowhere"
	if err := NewReader(cfg, "x").Install(context.Background()); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("Install = %v, want ErrNoTarget", err)
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	reader := NewReader(f.config(), "text")
	frame := f.install(t, reader)
	frameID := reader.FrameID()

	reader.Dispose()
	reader.Dispose()

	if !reader.Disposed() {
		t.Fatal("Disposed() = false after Dispose")
	}
	target, _ := f.host.Get("message")
	if target.Hidden {
		t.Error("target still hidden after Dispose")
	}
	if count := f.host.revealCount("message"); count != 1 {
		t.Errorf("target revealed %d times, want 1", count)
	}
	if _, ok := f.host.Get(frameID); ok {
		t.Error("frame element survived Dispose")
	}
	testutil.RequireClosed(t, frame.Done(), wait, "frame channel closed")

	if err := reader.Send(context.Background(), "get-content", nil, nil); !errors.Is(err, ErrDisposed) {
		t.Errorf("Send after Dispose = %v, want ErrDisposed", err)
	}
	if count := f.host.revealCount("message"); count != 1 {
		t.Errorf("Send after Dispose changed visibility: %d reveals", count)
	}

	if err := reader.Install(context.Background()); err != nil {
		t.Errorf("Install after Dispose = %v, want nil no-op", err)
	}
	if target, _ := f.host.Get("message"); target.Hidden {
		t.Error("Install after Dispose hid the target")
	}
}

func TestSendBeforeInstall(t *testing.T) {
	f := newFixture(t)
	reader := NewReader(f.config(), "text")
	if err := reader.Send(context.Background(), "get-content", nil, nil); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Send before Install = %v, want ErrNotConnected", err)
	}
	reader.Dispose()
	if count := f.host.revealCount("message"); count != 0 {
		t.Errorf("Dispose before Install touched the target %d times", count)
	}
}

func TestHandshakeFailureShowsNotice(t *testing.T) {
	f := newFixture(t)
	cfg := f.config()
	cfg.HandshakeTimeout = time.Second
	cfg.Launch = func(_ context.Context, conn net.Conn, _ FrameInit) error {
		go io.Copy(io.Discard, conn)
		return nil
	}
	reader := NewReader(cfg, "text")

	result := make(chan error, 1)
	go func() { result <- reader.Install(context.Background()) }()
	f.clock.WaitForTimers(1)
	f.clock.Advance(time.Second)

	err := testutil.RequireReceive(t, result, wait, "Install result")
	if !errors.Is(err, ErrHandshake) {
		t.Fatalf("Install = %v, want ErrHandshake", err)
	}

	frameID := reader.FrameID()
	noticeID, ok := f.host.NextSibling(frameID)
	if !ok {
		t.Fatal("no element after the frame")
	}
	notice, _ := f.host.Get(noticeID)
	if notice.Kind != page.Notice || !strings.Contains(notice.Text, "could not connect") {
		t.Errorf("element after frame = %+v, want a notice", notice)
	}
	if target, _ := f.host.Get("message"); !target.Hidden {
		t.Error("handshake failure rolled back the install")
	}

	reader.Dispose()
	if _, ok := f.host.Get(noticeID); ok {
		t.Error("notice survived Dispose")
	}
	if target, _ := f.host.Get("message"); target.Hidden {
		t.Error("target hidden after Dispose")
	}
}

func TestShortcutDispatch(t *testing.T) {
	f := newFixture(t)
	reader := NewReader(f.config(), "text")
	frame := f.install(t, reader)
	ctx := context.Background()

	f.focus = ItemFocused
	reply, err := frame.Shortcut(ctx, ShortcutReplyMessage)
	if err != nil || !reply.Handled || reply.Action != ActionReply {
		t.Fatalf("Shortcut(reply) = %+v, %v", reply, err)
	}
	if action := testutil.RequireReceive(t, f.dispatched, wait, "dispatch"); action != ActionReply {
		t.Errorf("dispatched %q, want %q", action, ActionReply)
	}
	if f.host.Focused() != reader.FrameID() {
		t.Errorf("focused = %q, want the frame", f.host.Focused())
	}

	f.focus = NoItemFocused
	reply, err = frame.Shortcut(ctx, ShortcutReplyMessage)
	if err != nil || reply.Handled {
		t.Fatalf("unmapped Shortcut(reply) = %+v, %v; want unhandled", reply, err)
	}
	testutil.RequireEmpty(t, f.dispatched, "unmapped shortcut dispatched")

	reply, _ = frame.Shortcut(ctx, ShortcutEscape)
	if reply.Action != ActionBackToList {
		t.Errorf("escape without focus = %q, want %q", reply.Action, ActionBackToList)
	}
	testutil.RequireReceive(t, f.dispatched, wait, "escape dispatch")
}

func TestBuiltinRequestsCannotBeOverridden(t *testing.T) {
	f := newFixture(t)
	reader := NewReader(f.config(), "text")
	defer func() {
		if recover() == nil {
			t.Error("OnRequest(resize) did not panic")
		}
	}()
	reader.OnRequest("resize", nil)
}

func TestComposerMinimumHeight(t *testing.T) {
	f := newFixture(t)
	composer := NewComposer(f.config(), ComposerOptions{MinHeight: 6})
	frame := f.install(t, composer)

	if err := frame.Resize(context.Background()); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	element, _ := f.host.Get(composer.FrameID())
	if frame.Height() != 1 || element.Height != 6 {
		t.Errorf("frame height %d, element height %d; want 1 and 6", frame.Height(), element.Height)
	}
}

func TestComposerContent(t *testing.T) {
	f := newFixture(t)
	composer := NewComposer(f.config(), ComposerOptions{Content: "> quoted"})
	frame := f.install(t, composer)
	ctx := context.Background()

	if got, err := composer.Content(ctx); err != nil || got != "> quoted" {
		t.Fatalf("Content = %q, %v", got, err)
	}
	if err := frame.Type(ctx, "\nreply"); err != nil {
		t.Fatalf("Type: %v", err)
	}
	if got, _ := composer.Content(ctx); got != "> quoted\nreply" {
		t.Errorf("Content after typing = %q", got)
	}
	if err := composer.SetContent(ctx, "replaced"); err != nil {
		t.Fatalf("SetContent: %v", err)
	}
	if frame.Content() != "replaced" {
		t.Errorf("frame content = %q", frame.Content())
	}
}

func TestComposerExitDiscardsDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := draft.NewMemoryStore(f.clock)
	armored := "-----BEGIN AGE ENCRYPTED FILE-----\nYWdl\n-----END AGE ENCRYPTED FILE-----\n"
	if err := store.SaveDraft(ctx, armored, "thread-1"); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	exited := make(chan bool, 1)
	composer := NewComposer(f.config(), ComposerOptions{
		DraftOrigin: "thread-1",
		Drafts:      store,
		OnExit:      func(discarded bool) { exited <- discarded },
	})
	frame := f.install(t, composer)

	reply, err := frame.Exit(ctx, true)
	if err != nil || !reply.Discarded {
		t.Fatalf("Exit = %+v, %v", reply, err)
	}
	if discarded := testutil.RequireReceive(t, exited, wait, "exit callback"); !discarded {
		t.Error("OnExit reported no discard")
	}
	if !composer.Disposed() {
		t.Error("composer not disposed after exit")
	}
	if has, _ := store.HasDraft(ctx, "thread-1"); has {
		t.Error("draft survived exit with discard_draft")
	}
	if target, _ := f.host.Get("message"); target.Hidden {
		t.Error("target hidden after exit")
	}
}

func TestComposerExitMissingTarget(t *testing.T) {
	f := newFixture(t)
	composer := NewComposer(f.config(), ComposerOptions{})
	frame := f.install(t, composer)

	if err := f.host.Remove("message"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	_, err := frame.Exit(context.Background(), false)
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Exit with missing target = %v, want RemoteError", err)
	}
	if composer.Disposed() {
		t.Error("composer disposed despite failed exit")
	}
}

func TestComposerScrollReporting(t *testing.T) {
	f := newFixture(t)
	composer := NewComposer(f.config(), ComposerOptions{})
	frame := f.install(t, composer)

	if n := f.host.ScrollListeners("list"); n != 1 {
		t.Fatalf("scroll listeners = %d, want 1", n)
	}
	if err := f.host.Scroll("list", 2); err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	// header (3) above the frame, container scrolled by 2.
	if offset := testutil.RequireReceive(t, frame.Scrolls(), wait, "scroll report"); offset != 1 {
		t.Errorf("reported offset = %d, want 1", offset)
	}

	composer.Dispose()
	if n := f.host.ScrollListeners("list"); n != 1 {
		t.Fatalf("listener removed by Dispose itself; want removal at first failed report")
	}
	f.host.Scroll("list", 3)
	if n := f.host.ScrollListeners("list"); n != 0 {
		t.Fatalf("scroll listeners after failed report = %d, want 0", n)
	}
	f.host.Scroll("list", 4)
	if reports := frame.ScrollReports(); reports != 1 {
		t.Errorf("frame received %d reports, want 1", reports)
	}
}

func TestReaderHasNoScrollSubscription(t *testing.T) {
	f := newFixture(t)
	f.install(t, NewReader(f.config(), "text"))
	if n := f.host.ScrollListeners("list"); n != 0 {
		t.Errorf("reader subscribed to scrolling: %d listeners", n)
	}
}
