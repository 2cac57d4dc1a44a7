// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package promptui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the prompt's key bindings. Most are modal: which
// ones apply depends on the current mode and dialog.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	Confirm key.Binding // Select, submit, or dismiss.
	Back    key.Binding // Back to the menu, decline, or dismiss.
	Quit    key.Binding

	// Encrypt mode.
	Send        key.Binding
	SaveDraft   key.Binding
	ToggleSign  key.Binding
	FocusToggle key.Binding // Compose text vs recipient list.
	Toggle      key.Binding // Toggle the recipient under the cursor.

	// Draft offer dialog.
	Restore key.Binding
	Discard key.Binding

	// Result view.
	Copy key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "confirm"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "cancel"),
	),
	Send: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "encrypt"),
	),
	SaveDraft: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("C-d", "save as draft"),
	),
	ToggleSign: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("C-t", "sign"),
	),
	FocusToggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "recipients"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("Space", "select"),
	),
	Restore: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restore"),
	),
	Discard: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "discard"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy"),
	),
}
