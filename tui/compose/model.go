package compose

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/cooldown"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/infra/editor"
	"github.com/CrestNiraj12/molterm/tui/common"
)

// --- Mode ---

type mode int

const (
	editorMode mode = iota
	inlineMode
)

const contentLimit = 10000

const (
	submoltField = iota
	titleField
	contentField
	fieldCount
)

// --- Messages ---

// DoneMsg is sent when the user leaves the composer without posting.
type DoneMsg struct {
	Err error
}

// SubmitMsg asks the root model to publish the draft.
type SubmitMsg struct {
	Draft domain.PostDraft
}

// SubmitResultMsg is the root's answer to SubmitMsg when publishing failed.
type SubmitResultMsg struct {
	Err    error
	Notice string
}

// editorFinishedMsg is sent after the external editor exits.
type editorFinishedMsg struct {
	tmpPath string
	err     error
}

// --- Model ---

// Model holds the state for the new post form.
type Model struct {
	mode       mode
	session    *app.Session
	editor     app.DraftEditor
	keys       common.KeyMap
	submolt    textinput.Model
	title      textinput.Model
	content    textarea.Model
	focus      int
	before     domain.PostDraft
	status     string
	err        string
	submitting bool
}

func newInputs() (textinput.Model, textinput.Model, textarea.Model) {
	submolt := textinput.New()
	submolt.Placeholder = domain.DefaultSubmolt
	submolt.CharLimit = 64
	submolt.Width = 32

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 300
	title.Width = 72

	content := textarea.New()
	content.Placeholder = "Content or URL"
	content.CharLimit = contentLimit
	content.SetWidth(72)
	content.SetHeight(8)
	return submolt, title, content
}

// NewEditor creates a composer that opens $EDITOR via tea.ExecProcess.
func NewEditor(session *app.Session, ed app.DraftEditor) Model {
	submolt, title, content := newInputs()
	return Model{
		mode:    editorMode,
		session: session,
		editor:  ed,
		keys:    common.DefaultKeyMap(),
		submolt: submolt,
		title:   title,
		content: content,
		before:  domain.PostDraft{Submolt: domain.DefaultSubmolt},
		status:  "Opening editor...",
	}
}

// NewInline creates a composer with inline form fields.
func NewInline(session *app.Session, ed app.DraftEditor) Model {
	m := NewEditor(session, ed)
	m.mode = inlineMode
	m.status = ""
	m.submolt.SetValue(domain.DefaultSubmolt)
	m.focus = titleField
	m.title.Focus()
	return m
}

// Init returns the initial command for the active mode.
func (m Model) Init() tea.Cmd {
	switch m.mode {
	case editorMode:
		return m.launchEditor()
	case inlineMode:
		return textinput.Blink
	}
	return nil
}

// launchEditor prepares the editor command and uses tea.ExecProcess to
// suspend Bubble Tea's raw terminal mode while the editor runs.
func (m Model) launchEditor() tea.Cmd {
	cmd, tmpPath, err := m.editor.Cmd(m.before)
	if err != nil {
		return done(DoneMsg{Err: fmt.Errorf("preparing editor: %w", err)})
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{tmpPath: tmpPath, err: err}
	})
}

// Draft is the current content of the inline form.
func (m Model) Draft() domain.PostDraft {
	return domain.PostDraft{
		Submolt: m.submolt.Value(),
		Title:   m.title.Value(),
		Content: m.content.Value(),
	}
}

// Submitting reports whether a publish request is in flight.
func (m Model) Submitting() bool { return m.submitting }

// Update handles messages for the compose view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {

	// --- Editor mode messages ---

	case editorFinishedMsg:
		if msg.err != nil {
			return m, done(DoneMsg{Err: fmt.Errorf("editor: %w", msg.err)})
		}
		d, err := m.editor.ReadDraft(msg.tmpPath, m.before)
		if errors.Is(err, editor.ErrUnchanged) {
			return m, done(DoneMsg{})
		}
		if err != nil {
			return m, done(DoneMsg{Err: err})
		}
		return m.submit(d)

	case SubmitResultMsg:
		m.submitting = false
		m.status = ""
		m.err = msg.Notice
		if m.mode == editorMode {
			// Keep the text; the form lets the user fix it and retry.
			return m.switchToInline(m.Draft())
		}
		return m, nil

	// --- Inline mode messages ---

	case tea.KeyMsg:
		if m.mode != inlineMode || m.submitting {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, done(DoneMsg{})
		case key.Matches(msg, m.keys.NextField):
			return m.cycleFocus()
		case key.Matches(msg, m.keys.Submit):
			return m.submit(m.Draft())
		}
		return m.updateFocused(msg)
	}

	if m.mode == inlineMode {
		return m.updateFocused(msg)
	}
	return m, nil
}

// submit validates d, checks the post cooldown and asks the root to publish.
func (m Model) submit(d domain.PostDraft) (Model, tea.Cmd) {
	m.setDraft(d)
	if err := m.session.CheckSubmit(cooldown.Post); err != nil {
		m.err = err.Error()
		return m.switchToInline(d)
	}
	normalized, err := d.Normalize()
	if err != nil {
		m.err = domain.UserMessage(err, "")
		return m.switchToInline(d)
	}
	m.err = ""
	m.submitting = true
	m.status = "Posting..."
	return m, func() tea.Msg { return SubmitMsg{Draft: normalized} }
}

func (m *Model) setDraft(d domain.PostDraft) {
	m.submolt.SetValue(d.Submolt)
	m.title.SetValue(d.Title)
	m.content.SetValue(d.Content)
}

func (m Model) switchToInline(d domain.PostDraft) (Model, tea.Cmd) {
	if m.mode == inlineMode {
		return m, nil
	}
	m.mode = inlineMode
	m.status = ""
	m.setDraft(d)
	m.focus = titleField
	return m, m.title.Focus()
}

func (m Model) cycleFocus() (Model, tea.Cmd) {
	m.submolt.Blur()
	m.title.Blur()
	m.content.Blur()
	m.focus = (m.focus + 1) % fieldCount
	switch m.focus {
	case submoltField:
		return m, m.submolt.Focus()
	case titleField:
		return m, m.title.Focus()
	default:
		return m, m.content.Focus()
	}
}

func (m Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case submoltField:
		m.submolt, cmd = m.submolt.Update(msg)
	case titleField:
		m.title, cmd = m.title.Update(msg)
	default:
		m.content, cmd = m.content.Update(msg)
	}
	return m, cmd
}

// done wraps a DoneMsg into a tea.Cmd for immediate delivery.
func done(msg DoneMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}
