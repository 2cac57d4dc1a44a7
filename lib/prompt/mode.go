// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/glass/lib/sealed"
)

// Mode is the prompt's current screen.
type Mode int

const (
	// ModeUnspecified means the request did not ask for a mode.
	ModeUnspecified Mode = iota
	ModeMenu
	ModeEncryptSign
	ModeDecryptVerify
	ModeImportKey
	ModeGetPassphrase
	ModeLockKeyring
	ModeConfigure
	ModeNoOp
)

var modeNames = map[Mode]string{
	ModeUnspecified:   "",
	ModeMenu:          "MENU",
	ModeEncryptSign:   "ENCRYPT_SIGN",
	ModeDecryptVerify: "DECRYPT_VERIFY",
	ModeImportKey:     "IMPORT_KEY",
	ModeGetPassphrase: "GET_PASSPHRASE",
	ModeLockKeyring:   "LOCK_KEYRING",
	ModeConfigure:     "CONFIGURE",
	ModeNoOp:          "NO_OP",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok && name != "" {
		return name
	}
	if m == ModeUnspecified {
		return "UNSPECIFIED"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts a mode name in any case, with "-" or "_". The
// empty string is ModeUnspecified.
func ParseMode(name string) (Mode, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	for mode, candidate := range modeNames {
		if candidate == normalized {
			return mode, nil
		}
	}
	return ModeUnspecified, fmt.Errorf("unknown prompt mode %q", name)
}

// InitialMode picks the first mode for request. A draft marker always
// wins, then an explicit mode, then content sniffing, then the menu.
func InitialMode(request *Request) Mode {
	if request == nil {
		return ModeMenu
	}
	kind := sealed.Classify(request.Content)
	if kind == sealed.KindDraft {
		return ModeEncryptSign
	}
	if request.Mode != ModeUnspecified {
		return request.Mode
	}
	switch kind {
	case sealed.KindMessage:
		return ModeDecryptVerify
	case sealed.KindPublicKey:
		return ModeImportKey
	default:
		return ModeMenu
	}
}
