// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package promptui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/glass/lib/prompt"
)

var modeTitles = map[prompt.Mode]string{
	prompt.ModeMenu:          "Secure prompt",
	prompt.ModeEncryptSign:   "Encrypt",
	prompt.ModeDecryptVerify: "Decrypt",
	prompt.ModeImportKey:     "Import key",
	prompt.ModeGetPassphrase: "Unlock keyring",
	prompt.ModeLockKeyring:   "Lock keyring",
	prompt.ModeConfigure:     "Settings",
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.closed || !m.rendered {
		return ""
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderBody())
	if m.view.Dialog != nil {
		sections = append(sections, m.renderDialog())
	}
	if m.view.Passphrase != nil {
		sections = append(sections, m.renderKeyPassphrase())
	}
	if m.view.Error != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(m.theme.ErrorText).Render(m.view.Error))
	}
	sections = append(sections, m.renderStatusBar())
	return strings.Join(sections, "\n\n")
}

func (m *Model) renderHeader() string {
	title := modeTitles[m.view.Mode]
	if title == "" {
		title = m.view.Mode.String()
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(m.theme.HeaderForeground)
	header := style.Render(title)
	if m.view.Request.Subject != "" {
		header += lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("  " + m.view.Request.Subject)
	}
	if m.view.Busy {
		header += lipgloss.NewStyle().Foreground(m.theme.WarningText).Render("  working…")
	}
	return header
}

func (m *Model) renderBody() string {
	if m.view.Result != nil {
		return m.renderResult()
	}
	switch m.view.Mode {
	case prompt.ModeMenu:
		return m.renderMenu()
	case prompt.ModeGetPassphrase:
		return m.renderPassphrase()
	case prompt.ModeEncryptSign:
		return m.renderEncrypt()
	case prompt.ModeDecryptVerify:
		return m.faint("An encrypted message was found. Press Enter to decrypt it.")
	case prompt.ModeImportKey:
		return m.faint("A public key was found. Press Enter to import it.")
	}
	return ""
}

func (m *Model) renderMenu() string {
	var lines []string
	for index, mode := range menuModes {
		line := "  " + modeTitles[mode]
		if index == m.menuIndex {
			line = lipgloss.NewStyle().
				Background(m.theme.SelectedBackground).
				Foreground(m.theme.SelectedForeground).
				Render("> " + modeTitles[mode])
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderPassphrase() string {
	lines := []string{m.passphrase.View()}
	if m.view.PassphraseError {
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.ErrorText).Render(
			fmt.Sprintf("Wrong passphrase (%d failed)", m.view.FailedAttempts)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderEncrypt() string {
	var recipients []string
	for index, identity := range m.identities() {
		mark := "[ ]"
		if m.selected[m.view.AvailableKeys[identity]] {
			mark = "[x]"
		}
		line := mark + " " + identity
		if m.focus == focusRecipients && index == m.recipientIndex {
			line = lipgloss.NewStyle().
				Background(m.theme.SelectedBackground).
				Foreground(m.theme.SelectedForeground).
				Render(line)
		}
		recipients = append(recipients, line)
	}
	if len(recipients) == 0 {
		recipients = append(recipients, m.faint("No public keys in the keyring."))
	}

	signer := m.view.Signer
	if signer == "" {
		signer = "none"
	}
	sign := "off"
	if m.sign {
		sign = "on"
	}
	meta := m.faint(fmt.Sprintf("From: %s   Sign: %s", signer, sign))

	return strings.Join([]string{
		"Recipients:",
		strings.Join(recipients, "\n"),
		meta,
		m.compose.View(),
	}, "\n")
}

func (m *Model) renderResult() string {
	result := m.view.Result
	switch {
	case len(result.ImportedUIDs) > 0:
		lines := []string{lipgloss.NewStyle().Foreground(m.theme.SuccessText).Render("Imported:")}
		for _, uid := range result.ImportedUIDs {
			lines = append(lines, "  "+uid)
		}
		return strings.Join(lines, "\n")
	case result.Plaintext != "":
		if m.frame == nil {
			if m.readerState != "" {
				return m.faint(m.readerState)
			}
			return m.faint("connecting")
		}
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(m.theme.SecureBorder).
			Render(m.result.View())
	case result.Ciphertext != "":
		return lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(m.theme.BorderColor).
			Render(m.result.View())
	}
	return m.faint("Done.")
}

func (m *Model) renderDialog() string {
	dialog := m.view.Dialog
	var controls []key.Binding
	switch dialog.Kind {
	case prompt.DialogDraftOffer:
		controls = []key.Binding{m.keys.Restore, m.keys.Discard, m.keys.Back}
	default:
		controls = []key.Binding{m.keys.Confirm}
	}
	body := dialog.Message + "\n\n" + m.helpLine(controls)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.WarningText).
		Padding(0, 1).
		Render(body)
}

func (m *Model) renderKeyPassphrase() string {
	request := m.view.Passphrase
	title := fmt.Sprintf("Passphrase needed for %s", request.KeyID)
	if request.Attempt > 1 {
		title += fmt.Sprintf(" (attempt %d)", request.Attempt)
	}
	if request.Waiting > 0 {
		title += fmt.Sprintf(", %d more waiting", request.Waiting)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.SecureBorder).
		Padding(0, 1).
		Render(title + "\n" + m.keyPassphrase.View())
}

func (m *Model) renderStatusBar() string {
	if m.status != "" {
		color := m.theme.FaintText
		switch {
		case m.statusLevel >= slog.LevelError:
			color = m.theme.ErrorText
		case m.statusLevel >= slog.LevelWarn:
			color = m.theme.WarningText
		}
		return lipgloss.NewStyle().Foreground(color).Render(m.status)
	}
	if m.view.Status != "" {
		return m.faint(m.view.Status)
	}
	return m.helpLine(m.modeBindings())
}

// modeBindings are the keys worth advertising right now.
func (m *Model) modeBindings() []key.Binding {
	if m.view.Result != nil {
		bindings := []key.Binding{m.keys.Confirm}
		if m.view.Result.Ciphertext != "" {
			bindings = append(bindings, m.keys.Copy)
		}
		return append(bindings, m.keys.Quit)
	}
	switch m.view.Mode {
	case prompt.ModeMenu:
		return []key.Binding{m.keys.Up, m.keys.Down, m.keys.Confirm, m.keys.Quit}
	case prompt.ModeEncryptSign:
		bindings := []key.Binding{m.keys.Send, m.keys.FocusToggle, m.keys.ToggleSign}
		if m.view.Request.CanInject && !m.view.DismissOnly {
			bindings = append(bindings, m.keys.SaveDraft)
		}
		return append(bindings, m.keys.Back, m.keys.Quit)
	default:
		return []key.Binding{m.keys.Confirm, m.keys.Back, m.keys.Quit}
	}
}

func (m *Model) helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return lipgloss.NewStyle().Foreground(m.theme.HelpText).Render(strings.Join(parts, " · "))
}

func (m *Model) faint(text string) string {
	return lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(text)
}
