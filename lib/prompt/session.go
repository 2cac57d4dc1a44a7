// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/bureau-foundation/glass/lib/action"
	"github.com/bureau-foundation/glass/lib/recipient"
	"github.com/bureau-foundation/glass/lib/secret"
)

// parkedKind says how a continuation resumes after unlock.
type parkedKind int

const (
	// parkedEntry re-enters mode with its entry effects.
	parkedEntry parkedKind = iota
	// parkedAction re-dispatches action in the mode it was issued from.
	parkedAction
	// parkedSaveDraft re-runs SaveAsDraft.
	parkedSaveDraft
)

// continuation is work parked behind the passphrase gate. compose is
// the compose text at the moment of parking, restored on resume.
type continuation struct {
	kind    parkedKind
	mode    Mode
	request Request
	compose string
	action  *ActionInput
}

// Session is one prompt lifetime, from Start to Close.
type Session struct {
	config Config
	logger *slog.Logger

	// ctx is cancelled on Close. Executor calls run detached from it so
	// a late completion still reaches post, which drops it.
	ctx    context.Context
	cancel context.CancelFunc

	disposed    atomic.Bool
	passphrases passphraseBroker

	mode    Mode
	request Request
	pending *continuation
	busy    bool

	failedAttempts  int
	passphraseError bool

	selection recipient.Selection
	signers   []string
	signer    string

	compose     string
	dialog      *Dialog
	dismissOnly bool
	result      *ResultView

	errorText string
	errorID   action.MessageID
	status    string

	autoSave autoSaver
}

// New validates config and returns an idle session. Call Start on the
// event loop to begin.
func New(config Config) (*Session, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		config: config,
		logger: config.Logger,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start routes request to its initial mode. A nil request opens the
// menu.
func (s *Session) Start(request *Request) {
	if request != nil {
		s.request = *request
	}
	mode := InitialMode(request)
	s.logger.Info("prompt started",
		"mode", mode,
		"origin_set", s.request.Origin != "",
		"recipients", len(s.request.Recipients),
		"can_inject", s.request.CanInject,
	)
	s.enter(mode)
}

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// Closed reports whether Close has run.
func (s *Session) Closed() bool { return s.disposed.Load() }

// SelectMode switches modes from the menu or a back navigation. It is
// ignored while an action is in flight.
func (s *Session) SelectMode(mode Mode) {
	if s.Closed() || s.busy {
		return
	}
	s.enter(mode)
}

// Back returns to the menu, keeping the original request so the same
// mode can be re-entered.
func (s *Session) Back() {
	if s.Closed() || s.busy {
		return
	}
	s.stopAutoSave()
	s.autoSave.started = false
	s.enter(ModeMenu)
}

// Cancel closes the prompt.
func (s *Session) Cancel() {
	s.Close()
}

// DismissDialog closes the current dialog.
func (s *Session) DismissDialog() {
	if s.Closed() || s.dialog == nil {
		return
	}
	if s.dialog.Kind == DialogDraftRestored {
		s.dismissOnly = false
	}
	s.dialog = nil
	s.render()
}

// DismissResult acknowledges a shown result and closes the prompt.
func (s *Session) DismissResult() {
	if s.Closed() || s.result == nil {
		return
	}
	s.Close()
}

// enter performs mode entry behind the gate. Every mode except
// GET_PASSPHRASE needs an unlocked keyring.
func (s *Session) enter(mode Mode) {
	if s.Closed() {
		return
	}
	if mode != ModeGetPassphrase && s.config.Keys.IsLocked() {
		s.park(&continuation{mode: mode, request: s.request})
		return
	}

	s.clearTransient()
	s.logger.Debug("entering mode", "mode", mode)

	switch mode {
	case ModeLockKeyring:
		s.config.Keys.Lock()
		s.logger.Info("keyring locked")
		s.Close()
	case ModeConfigure:
		if err := s.config.Host.OpenConfiguration(); err != nil {
			s.logger.Error("opening configuration failed", "error", err)
		}
		s.Close()
	case ModeNoOp:
		s.Close()
	case ModeEncryptSign:
		s.enterEncrypt()
	case ModeMenu, ModeDecryptVerify, ModeImportKey, ModeGetPassphrase:
		s.mode = mode
		s.render()
	default:
		s.logger.Warn("unknown mode, showing menu", "mode", mode)
		s.mode = ModeMenu
		s.render()
	}
}

// park records work behind the gate and shows the passphrase screen.
func (s *Session) park(pending *continuation) {
	s.pending = pending
	s.mode = ModeGetPassphrase
	s.logger.Debug("keyring locked, parking", "mode", pending.mode, "kind", pending.kind)
	s.render()
}

// SubmitPassphrase tries to unlock the keyring. value is zeroed.
// Success replays the parked continuation, or closes when the prompt
// was opened only to unlock.
func (s *Session) SubmitPassphrase(value []byte) {
	if s.Closed() || s.mode != ModeGetPassphrase {
		secret.Zero(value)
		return
	}
	buffer, err := secret.NewFromBytes(value)
	if err == nil {
		err = s.config.Keys.Unlock(buffer)
		buffer.Close()
	}
	if err != nil {
		s.failedAttempts++
		s.passphraseError = true
		s.logger.Warn("unlock failed", "attempt", s.failedAttempts)
		s.render()
		return
	}

	s.failedAttempts = 0
	s.passphraseError = false
	pending := s.pending
	s.pending = nil
	if pending == nil {
		s.Close()
		return
	}

	s.request = pending.request
	if pending.kind == parkedEntry {
		s.enter(pending.mode)
		return
	}
	s.resume(pending)
}

// resume returns to the mode work was dispatched from without running
// its entry again, so recipients, the compose text and any open draft
// state are kept, then dispatches the parked work.
func (s *Session) resume(pending *continuation) {
	s.mode = pending.mode
	s.compose = pending.compose
	s.logger.Debug("resuming parked work", "mode", pending.mode, "kind", pending.kind)
	switch pending.kind {
	case parkedAction:
		s.Action(*pending.action)
	case parkedSaveDraft:
		s.SaveAsDraft()
	}
}

// AnswerPassphrase answers the oldest executor passphrase request.
// value is zeroed.
func (s *Session) AnswerPassphrase(value []byte) {
	buffer, err := secret.NewFromBytes(value)
	if err != nil {
		s.passphrases.answer(passphraseReply{err: err})
		s.render()
		return
	}
	if !s.passphrases.answer(passphraseReply{passphrase: buffer}) {
		buffer.Close()
	}
	s.render()
}

// DeclinePassphrase rejects the oldest executor passphrase request.
func (s *Session) DeclinePassphrase() {
	s.passphrases.answer(passphraseReply{err: ErrPassphraseDeclined})
	s.render()
}

// passphraseCallback hands executor requests to the broker and
// refreshes the view on the event loop.
func (s *Session) passphraseCallback(ctx context.Context, request action.PassphraseRequest) (*secret.Buffer, error) {
	return s.passphrases.wait(ctx, request, func() { s.post(s.render) })
}

// post schedules fn on the event loop unless the session has closed by
// the time it runs.
func (s *Session) post(fn func()) {
	s.config.Scheduler.Post(func() {
		if s.Closed() {
			return
		}
		fn()
	})
}

// execute runs request on its own goroutine and posts done with the
// outcome. A completion that lands after Close releases its result.
func (s *Session) execute(request action.Request, done func(action.Result, error)) {
	request.PassphraseCallback = s.passphraseCallback
	ctx := context.WithoutCancel(s.ctx)
	go func() {
		result, err := s.config.Executor.Execute(ctx, request)
		s.config.Scheduler.Post(func() {
			if s.Closed() {
				result.Close()
				return
			}
			done(result, err)
		})
	}()
}

// fail shows err and re-enables controls.
func (s *Session) fail(err error) {
	s.busy = false
	s.errorText = err.Error()
	s.errorID = ""
	var actionErr *action.Error
	if errors.As(err, &actionErr) {
		s.errorText = actionErr.Message
		s.errorID = actionErr.MessageID
	}
	s.logger.Warn("prompt action failed", "mode", s.mode, "message_id", s.errorID, "error", err)
	s.render()
}

func (s *Session) clearTransient() {
	s.dialog = nil
	s.dismissOnly = false
	s.result = nil
	s.errorText = ""
	s.errorID = ""
	s.status = ""
	s.passphraseError = false
}

// resolveKeys fills the recipient selection and the signer list.
func (s *Session) resolveKeys() {
	s.selection = recipient.Resolve(s.config.Catalog.PublicKeys(), s.request.Recipients)

	own := s.config.Catalog.PrivateKeys()
	s.signers = make([]string, 0, len(own))
	for uid := range own {
		s.signers = append(s.signers, uid)
	}
	sort.Strings(s.signers)

	s.signer = ""
	if from, ok := recipient.Email(s.request.From); ok {
		for _, uid := range s.signers {
			if email, ok := recipient.Email(uid); ok && email == from {
				s.signer = uid
				break
			}
		}
	}
	if s.signer == "" && len(s.signers) > 0 {
		s.signer = s.signers[0]
	}
}

// SelectSigner picks which own identity signs and receives a copy.
func (s *Session) SelectSigner(uid string) {
	for _, candidate := range s.signers {
		if candidate == uid {
			s.signer = uid
			s.render()
			return
		}
	}
}

// View builds the current view.
func (s *Session) View() View {
	view := View{
		Mode:               s.mode,
		Request:            s.request,
		Busy:               s.busy,
		PassphraseError:    s.passphraseError,
		FailedAttempts:     s.failedAttempts,
		IntendedRecipients: s.selection.Intended,
		Signers:            s.signers,
		Signer:             s.signer,
		Compose:            s.compose,
		DismissOnly:        s.dismissOnly,
		Result:             s.result,
		Dialog:             s.dialog,
		Error:              s.errorText,
		ErrorID:            s.errorID,
		Status:             s.status,
	}
	if s.mode == ModeEncryptSign {
		view.AvailableKeys = s.config.Catalog.PublicKeys()
	}
	if prompt, ok := s.passphrases.head(); ok {
		view.Passphrase = prompt
	}
	return view
}

func (s *Session) render() {
	if s.Closed() {
		return
	}
	s.config.Renderer.Render(s.View())
}
