// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/glass/lib/action"
	"github.com/bureau-foundation/glass/lib/sealed"
	"github.com/bureau-foundation/glass/lib/secret"
)

// ActionInput is the operator's confirmation of the current mode.
type ActionInput struct {
	// Content overrides the compose text for ENCRYPT_SIGN.
	Content string

	// Recipients overrides the intended key ids when non-nil.
	Recipients []string

	// Passphrases encrypt to passphrases instead of keys. Each is
	// zeroed once the action is dispatched.
	Passphrases [][]byte

	Sign bool
}

// enterEncrypt runs ENCRYPT_SIGN entry: resolve recipients and
// signers, render, decrypt any quoted message or draft, then offer a
// stored draft.
func (s *Session) enterEncrypt() {
	s.mode = ModeEncryptSign
	s.compose = ""
	s.resolveKeys()
	s.render()

	kind := sealed.Classify(s.request.Content)
	if kind != sealed.KindDraft && kind != sealed.KindMessage {
		s.offerDraft()
		return
	}
	armored, ok := sealed.ExtractMessage(s.request.Content)
	if !ok {
		s.offerDraft()
		return
	}
	s.execute(action.Request{Action: action.Decrypt, Content: armored}, func(result action.Result, err error) {
		defer result.Close()
		if err != nil {
			s.logger.Warn("decrypting quoted content failed", "error", err)
			s.status = "Quoted message could not be decrypted"
		} else if s.mode != ModeEncryptSign || s.busy {
			// An action already took the compose text; leave it alone.
			s.logger.Debug("quoted content decrypted after dispatch, not applied")
		} else {
			plaintext := sealed.Text(result.Plaintext)
			if kind == sealed.KindDraft {
				s.compose = plaintext
			} else {
				s.compose = quote(plaintext, s.config.QuotePrefix)
			}
		}
		s.render()
		s.offerDraft()
	})
}

// quote prefixes every line of text for a reply.
func quote(text, prefix string) string {
	text = strings.TrimRight(text, "\r\n")
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + strings.TrimRight(line, "\r")
	}
	return strings.Join(lines, "\n") + "\n"
}

// Action dispatches the current mode's primary action. It is ignored
// while another action is in flight. A locked keyring parks the action
// and replays it after unlock.
func (s *Session) Action(input ActionInput) {
	if s.Closed() {
		zeroAll(input.Passphrases)
		return
	}
	if s.busy {
		s.logger.Debug("action ignored while busy", "mode", s.mode)
		zeroAll(input.Passphrases)
		return
	}
	if s.mode == ModeEncryptSign && input.Content == "" {
		input.Content = s.compose
	}
	if s.config.Keys.IsLocked() {
		s.park(&continuation{
			kind:    parkedAction,
			mode:    s.mode,
			request: s.request,
			compose: s.compose,
			action:  &input,
		})
		return
	}

	var request action.Request
	switch s.mode {
	case ModeEncryptSign:
		recipients := s.selection.Intended
		if input.Recipients != nil {
			recipients = input.Recipients
		}
		request = action.Request{
			Action:      action.Encrypt,
			Content:     input.Content,
			Recipients:  append([]string(nil), recipients...),
			CurrentUser: s.signer,
			SignMessage: input.Sign,
		}
	case ModeDecryptVerify:
		armored, ok := sealed.ExtractMessage(s.request.Content)
		if !ok {
			armored = s.request.Content
		}
		request = action.Request{Action: action.Decrypt, Content: armored}
	case ModeImportKey:
		request = action.Request{Action: action.Import, Content: s.request.Content}
	default:
		s.logger.Debug("mode has no action", "mode", s.mode)
		zeroAll(input.Passphrases)
		return
	}

	buffers, err := passphraseBuffers(input.Passphrases)
	if err != nil {
		s.fail(err)
		return
	}
	request.EncryptPassphrases = buffers

	s.busy = true
	s.errorText = ""
	s.errorID = ""
	s.render()

	mode := s.mode
	s.execute(request, func(result action.Result, err error) {
		for _, buffer := range buffers {
			buffer.Close()
		}
		if err != nil {
			result.Close()
			s.fail(err)
			return
		}
		s.complete(mode, result)
	})
}

// complete finishes a successful action.
func (s *Session) complete(mode Mode, result action.Result) {
	defer result.Close()
	s.busy = false
	switch mode {
	case ModeEncryptSign:
		s.clearDraft()
		if s.request.CanInject {
			if err := s.config.Host.Inject(result.Ciphertext); err != nil {
				s.fail(fmt.Errorf("writing the message back: %w", err))
				return
			}
			s.logger.Info("encrypted message injected")
			s.Close()
			return
		}
		s.result = &ResultView{Ciphertext: result.Ciphertext}
	case ModeDecryptVerify:
		s.result = &ResultView{Plaintext: sealed.Text(result.Plaintext)}
	case ModeImportKey:
		s.result = &ResultView{ImportedUIDs: result.ImportedUIDs}
		s.resolveKeys()
	}
	s.render()
}

func passphraseBuffers(values [][]byte) ([]*secret.Buffer, error) {
	var buffers []*secret.Buffer
	for i, value := range values {
		buffer, err := secret.NewFromBytes(value)
		if err != nil {
			for _, created := range buffers {
				created.Close()
			}
			zeroAll(values[i:])
			return nil, fmt.Errorf("passphrase %d: %w", i+1, err)
		}
		buffers = append(buffers, buffer)
	}
	return buffers, nil
}

func zeroAll(values [][]byte) {
	for _, value := range values {
		secret.Zero(value)
	}
}
