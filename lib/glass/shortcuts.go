// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package glass

// Shortcut is an abstract key binding reported by a frame. Frames do
// not know what the host does with it.
type Shortcut string

const (
	ShortcutReplyMessage Shortcut = "reply"
	ShortcutReplyAll     Shortcut = "reply-all"
	ShortcutForward      Shortcut = "forward"
	ShortcutArchive      Shortcut = "archive"
	ShortcutDelete       Shortcut = "delete"
	ShortcutNext         Shortcut = "next"
	ShortcutPrevious     Shortcut = "previous"
	ShortcutCompose      Shortcut = "compose"
	ShortcutEscape       Shortcut = "escape"
)

// HostAction is a concrete action in the host UI.
type HostAction string

const (
	ActionReply        HostAction = "reply"
	ActionReplyAll     HostAction = "reply-all"
	ActionForward      HostAction = "forward"
	ActionArchive      HostAction = "archive"
	ActionDelete       HostAction = "delete"
	ActionNextItem     HostAction = "next-item"
	ActionPreviousItem HostAction = "previous-item"
	ActionNewMessage   HostAction = "new-message"
	ActionCloseItem    HostAction = "close-item"
	ActionBackToList   HostAction = "back-to-list"
)

// FocusContext says whether the host has an item (a message, a thread)
// focused when a shortcut arrives. The same shortcut can mean different
// things in each.
type FocusContext int

const (
	NoItemFocused FocusContext = iota
	ItemFocused
)

// ShortcutMap resolves shortcuts per focus context.
type ShortcutMap map[FocusContext]map[Shortcut]HostAction

// Resolve looks up a shortcut. Unmapped shortcuts report false.
func (m ShortcutMap) Resolve(context FocusContext, shortcut Shortcut) (HostAction, bool) {
	action, ok := m[context][shortcut]
	return action, ok
}

// DefaultShortcuts is the mail-client binding table.
var DefaultShortcuts = ShortcutMap{
	ItemFocused: {
		ShortcutReplyMessage: ActionReply,
		ShortcutReplyAll:     ActionReplyAll,
		ShortcutForward:      ActionForward,
		ShortcutArchive:      ActionArchive,
		ShortcutDelete:       ActionDelete,
		ShortcutNext:         ActionNextItem,
		ShortcutPrevious:     ActionPreviousItem,
		ShortcutEscape:       ActionCloseItem,
	},
	NoItemFocused: {
		ShortcutCompose:  ActionNewMessage,
		ShortcutNext:     ActionNextItem,
		ShortcutPrevious: ActionPreviousItem,
		ShortcutEscape:   ActionBackToList,
	},
}
