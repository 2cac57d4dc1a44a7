// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package promptui

import "github.com/charmbracelet/lipgloss"

// Theme is the prompt's color palette, in ANSI 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	ErrorText   lipgloss.Color
	WarningText lipgloss.Color
	SuccessText lipgloss.Color

	// SecureBorder frames content rendered by a glass surface, so the
	// operator can tell isolated plaintext from prompt chrome.
	SecureBorder lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	ErrorText:   lipgloss.Color("196"), // red
	WarningText: lipgloss.Color("220"), // amber
	SuccessText: lipgloss.Color("114"), // green

	SecureBorder: lipgloss.Color("75"), // blue
}
