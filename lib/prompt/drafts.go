// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/glass/lib/action"
	"github.com/bureau-foundation/glass/lib/clock"
	"github.com/bureau-foundation/glass/lib/draft"
	"github.com/bureau-foundation/glass/lib/sealed"
)

// autoSaver is the draft timer state. generation advances on every
// stop so a tick or save completion from an earlier arm is discarded.
type autoSaver struct {
	started    bool
	stopped    bool
	timer      *clock.Timer
	generation uint64
	inFlight   bool
}

func (s *Session) draftsEnabled() bool {
	return s.config.Drafts != nil && s.request.Origin != ""
}

// offerDraft shows the restore/discard dialog when the origin has a
// stored draft.
func (s *Session) offerDraft() {
	if !s.draftsEnabled() || s.mode != ModeEncryptSign {
		return
	}
	exists, err := s.config.Drafts.HasDraft(s.ctx, s.request.Origin)
	if err != nil {
		s.logger.Warn("checking for a stored draft failed", "error", err)
		return
	}
	if !exists {
		return
	}
	s.dialog = &Dialog{Kind: DialogDraftOffer, Message: "A saved draft exists for this message."}
	s.render()
}

// RestoreDraft decrypts the offered draft into the compose area. On
// success only a dismiss control remains.
func (s *Session) RestoreDraft() {
	if s.Closed() || s.busy || s.dialog == nil || s.dialog.Kind != DialogDraftOffer {
		return
	}
	s.dialog = nil
	content, err := s.config.Drafts.GetDraft(s.ctx, s.request.Origin)
	if err != nil {
		s.fail(fmt.Errorf("loading draft: %w", err))
		return
	}
	armored, ok := sealed.ExtractMessage(content)
	if !ok {
		s.fail(draft.ErrNotEncrypted)
		return
	}

	s.busy = true
	s.render()
	s.execute(action.Request{Action: action.Decrypt, Content: armored}, func(result action.Result, err error) {
		defer result.Close()
		if err != nil {
			s.fail(err)
			return
		}
		s.busy = false
		s.compose = sealed.Text(result.Plaintext)
		s.dismissOnly = true
		s.dialog = &Dialog{Kind: DialogDraftRestored, Message: "Draft restored."}
		s.render()
	})
}

// DiscardDraft deletes the offered draft.
func (s *Session) DiscardDraft() {
	if s.Closed() || s.busy || s.dialog == nil || s.dialog.Kind != DialogDraftOffer {
		return
	}
	s.dialog = nil
	s.clearDraft()
	s.render()
}

// ComposeChanged records an edit to the compose area. The first edit
// starts auto-save.
func (s *Session) ComposeChanged(text string) {
	if s.Closed() || s.mode != ModeEncryptSign {
		return
	}
	s.compose = text
	if !s.autoSave.started && s.draftsEnabled() {
		s.autoSave.started = true
		s.armAutoSave()
	}
}

func (s *Session) armAutoSave() {
	if s.autoSave.stopped {
		return
	}
	generation := s.autoSave.generation
	s.autoSave.timer = s.config.Clock.AfterFunc(s.config.AutoSaveInterval, func() {
		s.post(func() { s.autoSaveTick(generation) })
	})
}

// autoSaveTick encrypts the compose text to the operator's own key and
// stores it. The timer re-arms after each attempt.
// autoSaveFailedStatus is shown for any auto-save failure other than a
// missing own key.
const autoSaveFailedStatus = "Draft could not be saved"

func (s *Session) autoSaveTick(generation uint64) {
	if generation != s.autoSave.generation || s.autoSave.stopped {
		return
	}
	s.autoSave.timer = nil
	if s.autoSave.inFlight || s.compose == "" || s.config.Keys.IsLocked() {
		s.armAutoSave()
		return
	}

	s.autoSave.inFlight = true
	request := action.Request{
		Action:      action.Encrypt,
		Content:     s.compose,
		CurrentUser: s.signer,
	}
	s.execute(request, func(result action.Result, err error) {
		s.autoSave.inFlight = false
		if generation != s.autoSave.generation {
			return
		}
		if err != nil {
			if action.HasMessageID(err, action.ErrNoEncryptionTarget) {
				// Auto-save stays off until the operator has a key.
				s.stopAutoSave()
				s.dialog = &Dialog{
					Kind:    DialogNoEncryptionTarget,
					Message: "Drafts cannot be saved: no key of yours is available to encrypt them to.",
				}
				s.render()
				return
			}
			s.logger.Warn("auto-save failed", "error", err)
			s.status = autoSaveFailedStatus
			s.render()
			s.armAutoSave()
			return
		}
		if err := s.config.Drafts.SaveDraft(s.ctx, result.Ciphertext, s.request.Origin); err != nil {
			s.logger.Warn("storing draft failed", "error", err)
			s.status = autoSaveFailedStatus
		} else {
			s.status = fmt.Sprintf("Draft saved at %s", s.config.Clock.Now().Format("15:04:05"))
		}
		s.render()
		s.armAutoSave()
	})
}

// stopAutoSave cancels the timer and invalidates ticks already posted.
func (s *Session) stopAutoSave() {
	if s.autoSave.timer != nil {
		s.autoSave.timer.Stop()
		s.autoSave.timer = nil
	}
	s.autoSave.generation++
}

// clearDraft stops auto-save for the rest of the session and deletes
// the stored draft, in one step on the event loop.
func (s *Session) clearDraft() {
	s.stopAutoSave()
	s.autoSave.stopped = true
	if !s.draftsEnabled() {
		return
	}
	if err := s.config.Drafts.ClearDraft(s.ctx, s.request.Origin); err != nil {
		s.logger.Warn("clearing draft failed", "error", err)
	}
}

// ClearDraft deletes the stored draft and stops auto-save.
func (s *Session) ClearDraft() {
	if s.Closed() {
		return
	}
	s.clearDraft()
	s.render()
}

// SaveAsDraft encrypts the compose text to the operator's own key and
// writes it, wrapped in the draft marker, back into the origin. The
// local draft is then superseded and the prompt closes. It is refused
// while a restored draft is showing.
func (s *Session) SaveAsDraft() {
	if s.Closed() || s.busy || s.mode != ModeEncryptSign {
		return
	}
	if s.dismissOnly {
		s.logger.Debug("save as draft refused after restore")
		return
	}
	if !s.request.CanInject {
		s.fail(errors.New("this request cannot receive a draft"))
		return
	}
	if s.config.Keys.IsLocked() {
		s.park(&continuation{
			kind:    parkedSaveDraft,
			mode:    s.mode,
			request: s.request,
			compose: s.compose,
		})
		return
	}
	s.busy = true
	s.render()
	request := action.Request{
		Action:      action.Encrypt,
		Content:     s.compose,
		CurrentUser: s.signer,
	}
	s.execute(request, func(result action.Result, err error) {
		if err != nil {
			s.fail(err)
			return
		}
		s.busy = false
		if err := s.config.Host.Inject(sealed.WrapDraft(result.Ciphertext)); err != nil {
			s.fail(fmt.Errorf("writing the draft back: %w", err))
			return
		}
		s.clearDraft()
		s.Close()
	})
}
