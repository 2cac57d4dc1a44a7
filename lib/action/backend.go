// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"filippo.io/age"

	"github.com/bureau-foundation/glass/lib/keyring"
	"github.com/bureau-foundation/glass/lib/sealed"
	"github.com/bureau-foundation/glass/lib/secret"
)

// MaxPassphraseAttempts bounds how often Decrypt re-asks through the
// passphrase callback for one message.
const MaxPassphraseAttempts = 3

// KeySource is the slice of the keyring the backend needs.
// *keyring.Keyring satisfies it.
type KeySource interface {
	Identities() ([]age.Identity, error)
	PrivateKeys() map[string]string
	List() []keyring.PublicKey
	Import(uid, key string) error
}

// Backend executes actions against a local keyring.
type Backend struct {
	keys   KeySource
	logger *slog.Logger
}

// NewBackend returns a Backend over keys.
func NewBackend(keys KeySource, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{keys: keys, logger: logger}
}

// Execute performs request. It never returns a non-*Error failure.
func (b *Backend) Execute(ctx context.Context, request Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, &Error{Message: "action cancelled", MessageID: ErrUnknownAction, Err: err}
	}

	var (
		result Result
		err    error
	)
	switch request.Action {
	case Encrypt:
		result, err = b.encrypt(request)
	case Decrypt:
		result, err = b.decrypt(ctx, request)
	case Import:
		result, err = b.importKeys(request)
	case ListKeys:
		result = Result{Keys: b.keys.List()}
	case Sign:
		err = &Error{Message: "signing is not supported", MessageID: ErrSignUnsupported}
	default:
		err = &Error{Message: fmt.Sprintf("unknown action %q", request.Action), MessageID: ErrUnknownAction}
	}

	if err != nil {
		var actionErr *Error
		if errors.As(err, &actionErr) {
			b.logger.Warn("action failed", "action", request.Action, "message_id", actionErr.MessageID)
		}
		return Result{}, err
	}
	b.logger.Debug("action completed", "action", request.Action)
	return result, nil
}

func (b *Backend) encrypt(request Request) (Result, error) {
	if request.SignMessage {
		return Result{}, &Error{Message: "signing is not supported", MessageID: ErrSignUnsupported}
	}

	if len(request.EncryptPassphrases) > 0 {
		if len(request.Recipients) > 0 || len(request.EncryptPassphrases) > 1 {
			return Result{}, &Error{
				Message:   "a passphrase-sealed message takes exactly one passphrase and no key recipients",
				MessageID: ErrEncryptFailed,
			}
		}
		ciphertext, err := sealed.EncryptWithPassphrase([]byte(request.Content), request.EncryptPassphrases[0])
		if err != nil {
			return Result{}, &Error{Message: "encryption failed", MessageID: ErrEncryptFailed, Err: err}
		}
		return Result{Ciphertext: ciphertext}, nil
	}

	recipients := append([]string(nil), request.Recipients...)
	if request.CurrentUser != "" {
		if own, ok := b.keys.PrivateKeys()[request.CurrentUser]; ok {
			recipients = appendUnique(recipients, own)
		}
	}
	if len(recipients) == 0 {
		return Result{}, &Error{Message: "no valid encryption target", MessageID: ErrNoEncryptionTarget}
	}

	ciphertext, err := sealed.Encrypt([]byte(request.Content), recipients)
	if err != nil {
		return Result{}, &Error{Message: "encryption failed", MessageID: ErrEncryptFailed, Err: err}
	}
	return Result{Ciphertext: ciphertext}, nil
}

func (b *Backend) decrypt(ctx context.Context, request Request) (Result, error) {
	if kind := sealed.Classify(request.Content); kind != sealed.KindMessage && kind != sealed.KindDraft {
		return Result{}, &Error{Message: "no encrypted message found", MessageID: ErrNoMessage}
	}

	identities, err := b.keys.Identities()
	if err != nil {
		if errors.Is(err, keyring.ErrLocked) {
			return Result{}, &Error{Message: "keyring is locked", MessageID: ErrKeyringLocked, Err: err}
		}
		return Result{}, &Error{Message: "loading identities", MessageID: ErrDecryptFailed, Err: err}
	}

	plaintext, err := sealed.Decrypt(request.Content, identities...)
	if err == nil {
		return Result{Plaintext: plaintext}, nil
	}
	if !errors.Is(err, sealed.ErrNoMatchingKey) || request.PassphraseCallback == nil {
		return Result{}, &Error{Message: "decryption failed", MessageID: ErrDecryptFailed, Err: err}
	}
	return b.decryptWithPassphrase(ctx, request)
}

// decryptWithPassphrase asks for a message passphrase until one opens
// the message, the callback gives up, or the attempts run out.
func (b *Backend) decryptWithPassphrase(ctx context.Context, request Request) (Result, error) {
	for attempt := 1; attempt <= MaxPassphraseAttempts; attempt++ {
		passphrase, err := request.PassphraseCallback(ctx, PassphraseRequest{Attempt: attempt})
		if err != nil {
			return Result{}, &Error{Message: "passphrase entry aborted", MessageID: ErrPassphraseAborted, Err: err}
		}
		plaintext, err := openWithPassphrase(request.Content, passphrase)
		if err == nil {
			return Result{Plaintext: plaintext}, nil
		}
		if !errors.Is(err, sealed.ErrNoMatchingKey) {
			return Result{}, &Error{Message: "decryption failed", MessageID: ErrDecryptFailed, Err: err}
		}
		b.logger.Info("message passphrase rejected", "attempt", attempt)
	}
	return Result{}, &Error{Message: "no matching key or passphrase", MessageID: ErrDecryptFailed, Err: sealed.ErrNoMatchingKey}
}

func openWithPassphrase(content string, passphrase *secret.Buffer) (*secret.Buffer, error) {
	if passphrase == nil {
		return nil, sealed.ErrNoMatchingKey
	}
	defer passphrase.Close()
	identity, err := sealed.PassphraseIdentity(passphrase)
	if err != nil {
		if errors.Is(err, secret.ErrEmpty) {
			return nil, sealed.ErrNoMatchingKey
		}
		return nil, err
	}
	return sealed.Decrypt(content, identity)
}

func (b *Backend) importKeys(request Request) (Result, error) {
	blocks, err := sealed.ParsePublicKeys(request.Content)
	if err != nil {
		return Result{}, &Error{Message: "no importable public key", MessageID: ErrImportFailed, Err: err}
	}
	uids := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if err := b.keys.Import(block.UID, block.Key); err != nil {
			return Result{ImportedUIDs: uids}, &Error{
				Message:   fmt.Sprintf("importing %s", block.UID),
				MessageID: ErrImportFailed,
				Err:       err,
			}
		}
		uids = append(uids, block.UID)
	}
	return Result{ImportedUIDs: uids}, nil
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
