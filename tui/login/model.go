// Package login is the sign-in screen: paste an API key or register a new
// agent.
package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/tui/common"
)

// InvalidKeyMessage is shown when the server rejects the stored key.
const InvalidKeyMessage = "Invalid API key. Please log in again."

type step int

const (
	chooseStep step = iota
	keyStep
	registerStep
	resultStep
)

// --- Messages ---

// LoggedInMsg is sent once the key is verified and the agent is cached.
type LoggedInMsg struct {
	Agent domain.Agent
}

type meLoadedMsg struct {
	agent domain.Agent
	err   error
}

type registeredMsg struct {
	reg domain.Registration
	err error
}

// --- Model ---

// Model holds the login screen state.
type Model struct {
	ctrl    *app.Controller
	session *app.Session
	keys    common.KeyMap
	step    step
	apiKey  textinput.Model
	name    textinput.Model
	desc    textinput.Model
	focus   int // register form: 0 name, 1 description
	reg     domain.Registration
	busy    bool
	err     string
}

// New creates the login screen.
func New(ctrl *app.Controller, session *app.Session) Model {
	apiKey := textinput.New()
	apiKey.Placeholder = "moltbook_sk_..."
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.EchoCharacter = '•'
	apiKey.Width = 48

	name := textinput.New()
	name.Placeholder = "agent name"
	name.CharLimit = 64
	name.Width = 48

	desc := textinput.New()
	desc.Placeholder = "what does your agent do? (optional)"
	desc.CharLimit = 280
	desc.Width = 48

	return Model{
		ctrl:    ctrl,
		session: session,
		keys:    common.DefaultKeyMap(),
		apiKey:  apiKey,
		name:    name,
		desc:    desc,
	}
}

// WithError returns the model showing msg, used after a forced logout.
func (m Model) WithError(msg string) Model {
	m.err = msg
	return m
}

// Init has nothing to start until the user picks an option.
func (m Model) Init() tea.Cmd {
	return nil
}

// Verify fetches the agent for the stored key. The root calls it at startup
// when a key already exists.
func (m Model) Verify() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		agent, err := ctrl.Me(context.Background())
		return meLoadedMsg{agent: agent, err: err}
	}
}

// Resume verifies a stored key at startup. Without one the chooser stays.
func (m Model) Resume() (Model, tea.Cmd) {
	if !m.session.HasKey() {
		return m, nil
	}
	m.busy = true
	return m, m.Verify()
}

func (m Model) register(name, desc string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		reg, err := ctrl.Register(context.Background(), name, desc)
		return registeredMsg{reg: reg, err: err}
	}
}

// Busy reports whether a request is in flight.
func (m Model) Busy() bool { return m.busy }

// Editing reports whether a text field has focus, so global keys stay off.
func (m Model) Editing() bool {
	return m.step == keyStep || m.step == registerStep
}

// Update handles messages for the login screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case meLoadedMsg:
		m.busy = false
		if msg.err != nil {
			if domain.IsAuthError(msg.err) {
				_ = m.session.Logout()
				m = m.reset()
				m.err = InvalidKeyMessage
				return m, nil
			}
			m.err = domain.UserMessage(msg.err, "Failed to load user data")
			return m, nil
		}
		if err := m.session.SetAgent(msg.agent); err != nil {
			m.err = err.Error()
			return m, nil
		}
		agent := msg.agent
		return m.reset(), func() tea.Msg { return LoggedInMsg{Agent: agent} }

	case registeredMsg:
		m.busy = false
		if msg.err != nil {
			m.err = domain.UserMessage(msg.err, "Registration failed")
			return m, nil
		}
		m.reg = msg.reg
		m.step = resultStep
		m.err = ""
		if msg.reg.APIKey != "" {
			if err := m.session.Login(msg.reg.APIKey); err != nil {
				m.err = err.Error()
			}
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.step {
	case chooseStep:
		switch msg.String() {
		case "k", "1":
			m.step = keyStep
			m.err = ""
			return m, m.apiKey.Focus()
		case "n", "2":
			m.step = registerStep
			m.err = ""
			m.focus = 0
			m.desc.Blur()
			return m, m.name.Focus()
		}
		return m, nil

	case keyStep:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m.reset(), nil
		case key.Matches(msg, m.keys.Open):
			apiKey := strings.TrimSpace(m.apiKey.Value())
			if err := m.session.Login(apiKey); err != nil {
				m.err = domain.UserMessage(err, "")
				return m, nil
			}
			m.busy = true
			m.err = ""
			return m, m.Verify()
		}

	case registerStep:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m.reset(), nil
		case key.Matches(msg, m.keys.NextField):
			return m.cycleFocus()
		case key.Matches(msg, m.keys.Open):
			name := strings.TrimSpace(m.name.Value())
			if name == "" {
				m.err = domain.ErrEmptyAgentName.Error()
				return m, nil
			}
			m.busy = true
			m.err = ""
			return m, m.register(name, m.desc.Value())
		}

	case resultStep:
		if key.Matches(msg, m.keys.Open) {
			if !m.session.HasKey() {
				return m.reset(), nil
			}
			m.busy = true
			return m, m.Verify()
		}
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m Model) cycleFocus() (Model, tea.Cmd) {
	m.focus = (m.focus + 1) % 2
	if m.focus == 0 {
		m.desc.Blur()
		return m, m.name.Focus()
	}
	m.name.Blur()
	return m, m.desc.Focus()
}

func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.step {
	case keyStep:
		m.apiKey, cmd = m.apiKey.Update(msg)
	case registerStep:
		if m.focus == 0 {
			m.name, cmd = m.name.Update(msg)
		} else {
			m.desc, cmd = m.desc.Update(msg)
		}
	}
	return m, cmd
}

func (m Model) reset() Model {
	m.step = chooseStep
	m.apiKey.Reset()
	m.apiKey.Blur()
	m.name.Reset()
	m.name.Blur()
	m.desc.Reset()
	m.desc.Blur()
	m.reg = domain.Registration{}
	m.focus = 0
	m.busy = false
	m.err = ""
	return m
}
