// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import "github.com/bureau-foundation/glass/lib/action"

// DialogKind identifies a modal dialog.
type DialogKind int

const (
	// DialogDraftOffer offers to restore or discard a stored draft.
	DialogDraftOffer DialogKind = iota + 1
	// DialogDraftRestored confirms a restore; it can only be dismissed.
	DialogDraftRestored
	// DialogNoEncryptionTarget explains that auto-save has no key to
	// encrypt to.
	DialogNoEncryptionTarget
)

// Dialog is a modal over the current mode.
type Dialog struct {
	Kind    DialogKind
	Message string
}

// ResultView is the output of a completed action awaiting dismissal.
type ResultView struct {
	Ciphertext   string
	Plaintext    string
	ImportedUIDs []string
}

// PassphrasePrompt is an executor's request for a per-key passphrase.
type PassphrasePrompt struct {
	KeyID   string
	Attempt int
	// Waiting counts further requests queued behind this one.
	Waiting int
}

// View is everything a renderer needs for one frame.
type View struct {
	Mode    Mode
	Request Request

	// Busy is true while an action is in flight; controls are disabled.
	Busy bool

	// PassphraseError flags the last unlock attempt as wrong.
	// FailedAttempts counts consecutive failures.
	PassphraseError bool
	FailedAttempts  int

	// AvailableKeys maps identity -> key id for the recipient picker.
	AvailableKeys map[string]string
	// IntendedRecipients are the preselected key ids.
	IntendedRecipients []string
	Signers            []string
	Signer             string

	Compose string
	// DismissOnly disables destructive controls after a restore.
	DismissOnly bool

	Result     *ResultView
	Dialog     *Dialog
	Passphrase *PassphrasePrompt

	Error   string
	ErrorID action.MessageID
	Status  string
}
