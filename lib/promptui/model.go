// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package promptui

import (
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/glass/lib/clock"
	"github.com/bureau-foundation/glass/lib/glass"
	"github.com/bureau-foundation/glass/lib/page"
	"github.com/bureau-foundation/glass/lib/prompt"
)

// Controller is the part of *prompt.Session the model drives.
type Controller interface {
	Start(request *prompt.Request)
	SelectMode(mode prompt.Mode)
	Back()
	Cancel()
	SubmitPassphrase(value []byte)
	AnswerPassphrase(value []byte)
	DeclinePassphrase()
	Action(input prompt.ActionInput)
	ComposeChanged(text string)
	RestoreDraft()
	DiscardDraft()
	DismissDialog()
	DismissResult()
	SaveAsDraft()
}

// Editable field ids exposed through EditableFields.
const (
	fieldPassphrase    = "passphrase"
	fieldKeyPassphrase = "key-passphrase"
	fieldCompose       = "compose"
)

// menuModes are the menu entries, in display order.
var menuModes = []prompt.Mode{
	prompt.ModeEncryptSign,
	prompt.ModeDecryptVerify,
	prompt.ModeImportKey,
	prompt.ModeLockKeyring,
	prompt.ModeConfigure,
}

// encryptFocus is which encrypt-mode widget receives keys.
type encryptFocus int

const (
	focusCompose encryptFocus = iota
	focusRecipients
)

// Options configures a Model.
type Options struct {
	Request *prompt.Request

	Clock  clock.Clock
	Logger *slog.Logger

	// LogHandler, when set, feeds the status bar.
	LogHandler *LogHandler

	// OpenConfiguration runs for CONFIGURE. Nil records the request
	// in ConfigurationRequested.
	OpenConfiguration func() error

	// HandshakeTimeout bounds the read surface install. Zero uses the
	// glass default.
	HandshakeTimeout time.Duration

	// MinComposeHeight is the compose area height floor in rows.
	MinComposeHeight int

	Keys  KeyMap
	Theme Theme
}

// Model is the bubbletea model for one prompt.
type Model struct {
	controller Controller
	request    *prompt.Request
	keys       KeyMap
	theme      Theme
	clock      clock.Clock
	logger     *slog.Logger
	logHandler *LogHandler
	openConfig func() error
	handshake  time.Duration

	scheduler *Scheduler
	surfaces  *surfaceSet
	document  *page.Document

	view     prompt.View
	rendered bool
	pending  []tea.Cmd

	menuIndex int

	passphrase    textinput.Model
	keyPassphrase textinput.Model
	compose       textarea.Model
	focus         encryptFocus

	recipientIndex int
	selected       map[string]bool
	sign           bool

	frame       *glass.Frame
	readerState string
	result      viewport.Model

	status          string
	statusLevel     slog.Level
	statusGen       int
	width, height   int
	output          string
	configRequested bool
	closed          bool
}

// New returns a model. Attach a controller before running it.
func New(options Options) *Model {
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if len(options.Keys.Quit.Keys()) == 0 {
		options.Keys = DefaultKeyMap
	}
	if options.Theme.NormalText == "" {
		options.Theme = DefaultTheme
	}
	if options.MinComposeHeight <= 0 {
		options.MinComposeHeight = glass.DefaultMinComposeHeight
	}

	passphrase := textinput.New()
	passphrase.EchoMode = textinput.EchoPassword
	passphrase.EchoCharacter = '•'
	passphrase.Prompt = "Passphrase: "
	passphrase.Width = 40

	keyPassphrase := textinput.New()
	keyPassphrase.EchoMode = textinput.EchoPassword
	keyPassphrase.EchoCharacter = '•'
	keyPassphrase.Prompt = "Message passphrase: "
	keyPassphrase.Width = 40

	compose := textarea.New()
	compose.ShowLineNumbers = false
	compose.CharLimit = 0
	compose.Placeholder = "Write your message"
	compose.SetHeight(options.MinComposeHeight * 2)

	content := ""
	if options.Request != nil {
		content = options.Request.Content
	}

	return &Model{
		request:    options.Request,
		keys:       options.Keys,
		theme:      options.Theme,
		clock:      options.Clock,
		logger:     options.Logger,
		logHandler: options.LogHandler,
		openConfig: options.OpenConfiguration,
		handshake:  options.HandshakeTimeout,
		scheduler:  NewScheduler(256),
		surfaces:   &surfaceSet{},
		document:   newMessagePage(content),

		passphrase:    passphrase,
		keyPassphrase: keyPassphrase,
		compose:       compose,
		selected:      make(map[string]bool),
		result:        viewport.New(80, 12),
		width:         80,
		height:        24,
	}
}

// Attach sets the controller. Call once, before the program runs.
func (m *Model) Attach(controller Controller) { m.controller = controller }

// Scheduler is the prompt.Scheduler backed by this model's loop.
func (m *Model) Scheduler() *Scheduler { return m.scheduler }

// Surfaces is closed by the session's teardown.
func (m *Model) Surfaces() io.Closer { return m.surfaces }

// Output is the content injected back to the caller, if any.
func (m *Model) Output() string { return m.output }

// ConfigurationRequested reports a CONFIGURE request handled without
// an OpenConfiguration hook.
func (m *Model) ConfigurationRequested() bool { return m.configRequested }

// Render implements prompt.Renderer. It runs inside Update.
func (m *Model) Render(view prompt.View) {
	previous := m.view
	first := !m.rendered
	m.view = view
	m.rendered = true

	if first || previous.Mode != view.Mode {
		m.enterMode(view)
	}
	if view.Compose != m.compose.Value() {
		m.compose.SetValue(view.Compose)
	}
	if view.Passphrase != nil && previous.Passphrase == nil {
		m.keyPassphrase.Reset()
		m.pending = append(m.pending, m.keyPassphrase.Focus())
	}
	if view.Result != nil && previous.Result == nil {
		m.showResult(view.Result)
	}
}

func (m *Model) enterMode(view prompt.View) {
	m.passphrase.Blur()
	m.compose.Blur()
	switch view.Mode {
	case prompt.ModeGetPassphrase:
		m.passphrase.Reset()
		m.pending = append(m.pending, m.passphrase.Focus())
	case prompt.ModeEncryptSign:
		m.focus = focusCompose
		m.recipientIndex = 0
		m.selected = make(map[string]bool)
		for _, keyID := range view.IntendedRecipients {
			m.selected[keyID] = true
		}
		m.pending = append(m.pending, m.compose.Focus())
	case prompt.ModeMenu:
		m.menuIndex = 0
	}
}

// showResult lays out a finished action. Plaintext goes to a read
// surface, never straight into the model.
func (m *Model) showResult(result *prompt.ResultView) {
	switch {
	case result.Plaintext != "":
		m.readerState = "connecting"
		m.pending = append(m.pending, installReader(readerOptions{
			document: m.document,
			surfaces: m.surfaces,
			clock:    m.clock,
			logger:   m.logger,
			timeout:  m.handshake,
			width:    m.contentWidth(),
			content:  result.Plaintext,
		}))
	case result.Ciphertext != "":
		m.result.SetContent(result.Ciphertext)
		m.result.GotoTop()
	}
}

// Close implements prompt.Host. The next Update returns tea.Quit.
func (m *Model) Close() { m.closed = true }

// Inject implements prompt.Host.
func (m *Model) Inject(content string) error {
	m.output = content
	return nil
}

// OpenConfiguration implements prompt.Host.
func (m *Model) OpenConfiguration() error {
	if m.openConfig != nil {
		return m.openConfig()
	}
	m.configRequested = true
	return nil
}

// EditableFields implements prompt.Document: the model's own inputs
// plus any fields in its page.
func (m *Model) EditableFields() []string {
	fields := []string{fieldPassphrase, fieldKeyPassphrase, fieldCompose}
	return append(fields, m.document.EditableFields()...)
}

// SetValue implements prompt.Document.
func (m *Model) SetValue(id, value string) error {
	switch id {
	case fieldPassphrase:
		m.passphrase.SetValue(value)
	case fieldKeyPassphrase:
		m.keyPassphrase.SetValue(value)
	case fieldCompose:
		m.compose.SetValue(value)
	default:
		return m.document.SetValue(id, value)
	}
	return nil
}

// startMsg starts the session once the program is running.
type startMsg struct{}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.scheduler.listen(),
		func() tea.Msg { return startMsg{} },
	}
	if m.logHandler != nil {
		cmds = append(cmds, m.logHandler.listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch message := message.(type) {
	case startMsg:
		m.controller.Start(m.request)

	case postedMsg:
		message.fn()
		cmds = append(cmds, m.scheduler.listen())

	case logRecordMsg:
		m.statusGen++
		m.status = message.Summary
		m.statusLevel = message.Level
		generation := m.statusGen
		cmds = append(cmds,
			m.logHandler.listen(),
			tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
				return logRecordFadeMsg{Generation: generation}
			}),
		)

	case logRecordFadeMsg:
		if message.Generation == m.statusGen {
			m.status = ""
		}

	case readerInstalledMsg:
		m.frame = message.frame
		m.readerState = ""
		m.result.SetContent(m.frame.View())
		m.result.GotoTop()

	case readerFailedMsg:
		m.readerState = "Secure view could not connect: " + message.err.Error()
		m.logger.Warn("read surface failed", "error", message.err)

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.compose.SetWidth(m.contentWidth())
		m.result.Width = m.contentWidth()
		m.result.Height = max(m.height-8, 3)

	case tea.KeyMsg:
		if cmd := m.handleKey(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, m.pending...)
	m.pending = nil
	if m.closed {
		return m, tea.Quit
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(message tea.KeyMsg) tea.Cmd {
	if key.Matches(message, m.keys.Quit) {
		m.controller.Cancel()
		return nil
	}
	if m.view.Passphrase != nil {
		return m.handleKeyPassphrase(message)
	}
	if m.view.Dialog != nil {
		m.handleDialog(message)
		return nil
	}
	if m.view.Result != nil {
		return m.handleResult(message)
	}
	if m.view.Busy {
		return nil
	}

	switch m.view.Mode {
	case prompt.ModeMenu:
		m.handleMenu(message)
	case prompt.ModeGetPassphrase:
		return m.handlePassphrase(message)
	case prompt.ModeEncryptSign:
		return m.handleEncrypt(message)
	case prompt.ModeDecryptVerify, prompt.ModeImportKey:
		switch {
		case key.Matches(message, m.keys.Confirm):
			m.controller.Action(prompt.ActionInput{})
		case key.Matches(message, m.keys.Back):
			m.controller.Back()
		}
	}
	return nil
}

func (m *Model) handleMenu(message tea.KeyMsg) {
	switch {
	case key.Matches(message, m.keys.Up):
		m.menuIndex = max(m.menuIndex-1, 0)
	case key.Matches(message, m.keys.Down):
		m.menuIndex = min(m.menuIndex+1, len(menuModes)-1)
	case key.Matches(message, m.keys.Confirm):
		m.controller.SelectMode(menuModes[m.menuIndex])
	case key.Matches(message, m.keys.Back):
		m.controller.Cancel()
	}
}

func (m *Model) handlePassphrase(message tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(message, m.keys.Confirm):
		value := []byte(m.passphrase.Value())
		m.passphrase.Reset()
		m.controller.SubmitPassphrase(value)
		return nil
	case key.Matches(message, m.keys.Back):
		m.controller.Cancel()
		return nil
	}
	var cmd tea.Cmd
	m.passphrase, cmd = m.passphrase.Update(message)
	return cmd
}

func (m *Model) handleKeyPassphrase(message tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(message, m.keys.Confirm):
		value := []byte(m.keyPassphrase.Value())
		m.keyPassphrase.Reset()
		m.controller.AnswerPassphrase(value)
		return nil
	case key.Matches(message, m.keys.Back):
		m.keyPassphrase.Reset()
		m.controller.DeclinePassphrase()
		return nil
	}
	var cmd tea.Cmd
	m.keyPassphrase, cmd = m.keyPassphrase.Update(message)
	return cmd
}

func (m *Model) handleDialog(message tea.KeyMsg) {
	if m.view.Dialog.Kind == prompt.DialogDraftOffer && !m.view.Busy {
		switch {
		case key.Matches(message, m.keys.Restore):
			m.controller.RestoreDraft()
			return
		case key.Matches(message, m.keys.Discard):
			m.controller.DiscardDraft()
			return
		}
	}
	if key.Matches(message, m.keys.Confirm) || key.Matches(message, m.keys.Back) {
		m.controller.DismissDialog()
	}
}

func (m *Model) handleResult(message tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(message, m.keys.Copy) && m.view.Result.Ciphertext != "":
		if err := clipboard.WriteAll(m.view.Result.Ciphertext); err != nil {
			m.logger.Warn("copying to the clipboard failed", "error", err)
		} else {
			m.logger.Info("encrypted message copied")
		}
		return nil
	case key.Matches(message, m.keys.Confirm), key.Matches(message, m.keys.Back):
		m.controller.DismissResult()
		return nil
	}
	var cmd tea.Cmd
	m.result, cmd = m.result.Update(message)
	return cmd
}

func (m *Model) handleEncrypt(message tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(message, m.keys.Send):
		m.controller.Action(prompt.ActionInput{
			Content:    m.compose.Value(),
			Recipients: m.selectedRecipients(),
			Sign:       m.sign,
		})
		return nil
	case key.Matches(message, m.keys.SaveDraft):
		if m.view.Request.CanInject && !m.view.DismissOnly {
			m.controller.SaveAsDraft()
		}
		return nil
	case key.Matches(message, m.keys.ToggleSign):
		m.sign = !m.sign
		return nil
	case key.Matches(message, m.keys.Back):
		if m.focus == focusRecipients {
			m.focus = focusCompose
			return m.compose.Focus()
		}
		m.controller.Back()
		return nil
	case key.Matches(message, m.keys.FocusToggle):
		if m.focus == focusCompose {
			m.focus = focusRecipients
			m.compose.Blur()
			return nil
		}
		m.focus = focusCompose
		return m.compose.Focus()
	}

	if m.focus == focusRecipients {
		identities := m.identities()
		switch {
		case key.Matches(message, m.keys.Up):
			m.recipientIndex = max(m.recipientIndex-1, 0)
		case key.Matches(message, m.keys.Down):
			m.recipientIndex = min(m.recipientIndex+1, max(len(identities)-1, 0))
		case key.Matches(message, m.keys.Toggle), key.Matches(message, m.keys.Confirm):
			if m.recipientIndex < len(identities) {
				keyID := m.view.AvailableKeys[identities[m.recipientIndex]]
				m.selected[keyID] = !m.selected[keyID]
			}
		}
		return nil
	}

	before := m.compose.Value()
	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(message)
	if after := m.compose.Value(); after != before {
		m.controller.ComposeChanged(after)
	}
	return cmd
}

// identities lists the available identities in display order.
func (m *Model) identities() []string {
	identities := make([]string, 0, len(m.view.AvailableKeys))
	for identity := range m.view.AvailableKeys {
		identities = append(identities, identity)
	}
	sort.Strings(identities)
	return identities
}

// selectedRecipients returns the chosen key ids in display order. It
// is never nil, so an empty choice overrides the preselection.
func (m *Model) selectedRecipients() []string {
	recipients := []string{}
	seen := make(map[string]bool)
	for _, identity := range m.identities() {
		keyID := m.view.AvailableKeys[identity]
		if m.selected[keyID] && !seen[keyID] {
			seen[keyID] = true
			recipients = append(recipients, keyID)
		}
	}
	return recipients
}

func (m *Model) contentWidth() int {
	return max(m.width-4, 20)
}

var (
	_ prompt.Renderer  = (*Model)(nil)
	_ prompt.Host      = (*Model)(nil)
	_ prompt.Document  = (*Model)(nil)
	_ prompt.Scheduler = (*Scheduler)(nil)
	_ Controller       = (*prompt.Session)(nil)
	_ tea.Model        = (*Model)(nil)
)
