package feed

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/domain"
)

func (m Model) dispatchLoad(cmd app.Command, reqSeq int) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		res, err := ctrl.Dispatch(context.Background(), cmd)
		return loadedMsg{ReqSeq: reqSeq, Cmd: cmd, Res: res, Err: err}
	}
}

func (m Model) dispatchAction(cmd app.Command) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		res, err := ctrl.Dispatch(context.Background(), cmd)
		return actionDoneMsg{Cmd: cmd, Res: res, Err: err}
	}
}

func (m Model) dispatchComment(cmd app.Command) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		res, err := ctrl.Dispatch(context.Background(), cmd)
		return commentSubmittedMsg{Cmd: cmd, Res: res, Err: err}
	}
}

// load starts a fetch for cmd and marks every older fetch stale.
func (m *Model) load(cmd app.Command) tea.Cmd {
	m.reqSeq++
	m.loading = true
	m.err = nil
	return tea.Batch(m.dispatchLoad(cmd, m.reqSeq), m.spinner.Tick)
}

// Reload re-fetches the current view.
func (m Model) Reload() (Model, tea.Cmd) {
	cmd := m.load(m.loadCommand())
	return m, cmd
}

func (m *Model) openPost(id domain.ID) tea.Cmd {
	return m.load(app.Command{View: m.view, Action: app.ActionOpenPost, TargetID: id})
}

func (m *Model) openProfile(name string) tea.Cmd {
	return m.load(app.Command{View: m.view, Action: app.ActionOpenProfile, Name: name})
}
