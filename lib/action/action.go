// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"context"
	"errors"

	"github.com/bureau-foundation/glass/lib/keyring"
	"github.com/bureau-foundation/glass/lib/secret"
)

// Kind selects the operation an executor performs.
type Kind string

const (
	Encrypt  Kind = "encrypt"
	Decrypt  Kind = "decrypt"
	Import   Kind = "import"
	ListKeys Kind = "list-keys"
	Sign     Kind = "sign"
)

// PassphraseRequest describes a passphrase the executor needs in the
// middle of an operation.
type PassphraseRequest struct {
	// KeyID names the key or message being opened. Empty for a message
	// sealed directly to a passphrase.
	KeyID string
	// Attempt counts from 1; values above 1 mean the previous answer
	// was wrong.
	Attempt int
}

// PassphraseCallback asks the operator for a per-key passphrase. It
// blocks until answered. The returned buffer is owned by the executor,
// which closes it after use. A non-nil error aborts the operation.
type PassphraseCallback func(ctx context.Context, request PassphraseRequest) (*secret.Buffer, error)

// Request is one executor call.
type Request struct {
	Action  Kind
	Content string

	// Recipients are key ids (age recipients) to encrypt to.
	Recipients []string

	// EncryptPassphrases seal the message to passphrases instead of
	// keys. The buffers are borrowed.
	EncryptPassphrases []*secret.Buffer

	// CurrentUser is the sender UID. When it names one of the
	// operator's own identities the message is also encrypted to it.
	CurrentUser string

	// SignMessage requests a signature alongside encryption.
	SignMessage bool

	PassphraseCallback PassphraseCallback
}

// Result carries whichever output the action produced.
type Result struct {
	// Ciphertext is the armored message from Encrypt.
	Ciphertext string

	// Plaintext is the output of Decrypt. The caller owns and closes
	// it. Nil for an empty message.
	Plaintext *secret.Buffer

	// Keys is the output of ListKeys.
	Keys []keyring.PublicKey

	// ImportedUIDs lists the UIDs added or updated by Import.
	ImportedUIDs []string
}

// Close releases the plaintext buffer, if any.
func (r *Result) Close() {
	if r.Plaintext != nil {
		r.Plaintext.Close()
		r.Plaintext = nil
	}
}

// Executor performs cryptographic actions.
type Executor interface {
	Execute(ctx context.Context, request Request) (Result, error)
}

// MessageID identifies a failure class. Callers branch on it; the
// message text is for display.
type MessageID string

const (
	ErrNoEncryptionTarget MessageID = "NO_ENCRYPTION_TARGET"
	ErrSignUnsupported    MessageID = "SIGN_UNSUPPORTED"
	ErrKeyringLocked      MessageID = "KEYRING_LOCKED"
	ErrNoMessage          MessageID = "NO_MESSAGE"
	ErrDecryptFailed      MessageID = "DECRYPT_FAILED"
	ErrEncryptFailed      MessageID = "ENCRYPT_FAILED"
	ErrImportFailed       MessageID = "IMPORT_FAILED"
	ErrPassphraseAborted  MessageID = "PASSPHRASE_ABORTED"
	ErrUnknownAction      MessageID = "UNKNOWN_ACTION"
)

// Error is the failure type of every executor.
type Error struct {
	Message   string
	MessageID MessageID
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HasMessageID reports whether err is an *Error with the given id.
func HasMessageID(err error, id MessageID) bool {
	var actionErr *Error
	return errors.As(err, &actionErr) && actionErr.MessageID == id
}
