package feed

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/cooldown"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/infra/config"
	"github.com/CrestNiraj12/molterm/tui/common"
)

const maxHistory = 32

// Update handles messages for the browsing views.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(max(20, min(msg.Width-8, 100)))
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		return m.handleLoaded(msg)

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case commentSubmittedMsg:
		return m.handleCommentSubmitted(msg)

	case common.CooldownReadyMsg:
		// The view reads the tracker directly; a redraw is enough.
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.typing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleLoaded(msg loadedMsg) (Model, tea.Cmd) {
	if msg.ReqSeq != m.reqSeq {
		return m, nil
	}
	m.loading = false
	if msg.Err != nil {
		if domain.IsAuthError(msg.Err) {
			return m, authFailed
		}
		m.err = msg.Err
		return m, common.Notice(domain.UserMessage(msg.Err, loadFailure(msg.Cmd)), true)
	}
	m.err = nil

	res := msg.Res
	if res.Navigate {
		m.push(m.current())
		m.view = res.View
	}

	switch res.View {
	case app.ViewFeed:
		m.posts = res.Feed
		m.cursor = clamp(m.cursor, len(m.posts))

	case app.ViewPostDetail:
		if res.Detail == nil {
			return m, nil
		}
		if res.Detail.Post.ID != m.postID {
			m.resetDetail()
		}
		m.detail = res.Detail
		m.postID = res.Detail.Post.ID
		if m.postID == "" {
			m.postID = msg.Cmd.TargetID
		}
		m.detailCursor = clamp(m.detailCursor, len(m.nodes())+1)

	case app.ViewProfile:
		if res.Profile == nil {
			return m, nil
		}
		if res.Navigate {
			m.profileCursor = 0
		}
		m.profile = res.Profile
		m.profileName = msg.Cmd.Name
		m.profileCursor = clamp(m.profileCursor, len(m.profile.Posts))
	}
	return m, nil
}

func (m Model) handleActionDone(msg actionDoneMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		if domain.IsAuthError(msg.Err) {
			return m, authFailed
		}
		return m, common.Notice(domain.UserMessage(msg.Err, actionFailure(msg.Cmd)), true)
	}

	cmds := []tea.Cmd{common.Notice(msg.Res.Notice, false)}
	if msg.Res.Navigate {
		// A deleted post has no detail to return to.
		m.view = msg.Res.View
		m.history = nil
		m.detail = nil
		m.postID = ""
		m.resetDetail()
	}
	if msg.Res.Reload && m.view == msg.Res.View {
		cmds = append(cmds, m.load(m.loadCommand()))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleCommentSubmitted(msg commentSubmittedMsg) (Model, tea.Cmd) {
	m.submitting = false
	if msg.Err != nil && domain.IsAuthError(msg.Err) {
		return m, authFailed
	}

	out := m.session.OnSubmitOutcome(cooldown.Comment, msg.Err)
	cmds := []tea.Cmd{common.Notice(out.Notice, out.IsError)}
	if out.Started {
		cmds = append(cmds, common.ScheduleCooldown(cooldown.Comment, out.Tick))
	}
	if msg.Err != nil {
		return m, tea.Batch(cmds...)
	}

	parent := msg.Cmd.TargetID
	delete(m.drafts, parent)
	if m.inputFor == parent {
		m.input.Reset()
		m.input.Blur()
		m.typing = false
	}
	if parent == "" {
		m.commentOpen = false
	} else {
		m.replies.Close(parent)
	}
	if msg.Res.Reload && m.view == app.ViewPostDetail && m.postID == msg.Cmd.PostID {
		cmds = append(cmds, m.load(m.loadCommand()))
	}
	return m, tea.Batch(cmds...)
}

// --- Keys ---

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.confirmDelete {
		return m.handleConfirmKey(msg)
	}
	if m.typing {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m.Reload()
	case key.Matches(msg, m.keys.Back):
		return m.back()
	case key.Matches(msg, m.keys.Open):
		return m.open()
	case key.Matches(msg, m.keys.Upvote):
		return m.vote(domain.VoteUp)
	case key.Matches(msg, m.keys.Downvote):
		return m.vote(domain.VoteDown)
	case key.Matches(msg, m.keys.Delete):
		return m.askDelete()
	case key.Matches(msg, m.keys.Comment):
		return m.openCommentForm()
	case key.Matches(msg, m.keys.Reply):
		return m.toggleReply()
	case key.Matches(msg, m.keys.Author):
		return m.openAuthor()
	case key.Matches(msg, m.keys.MyProfile):
		cmd := m.openProfile("")
		return m, cmd
	case key.Matches(msg, m.keys.Sort):
		return m.cycleSort()
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	id := m.deleteID
	m.confirmDelete = false
	m.deleteID = ""
	if !key.Matches(msg, m.keys.Confirm) {
		return m, nil
	}
	return m, m.dispatchAction(app.Command{View: m.view, Action: app.ActionDeletePost, TargetID: id})
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.stashInput()
		if m.inputFor == "" {
			m.commentOpen = false
		} else {
			m.replies.Close(m.inputFor)
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.submitting {
			return m, nil
		}
		if err := m.session.CheckSubmit(cooldown.Comment); err != nil {
			return m, common.Notice(err.Error(), true)
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, common.Notice(domain.ErrEmptyComment.Error(), true)
		}
		m.submitting = true
		return m, m.dispatchComment(app.Command{
			View:     app.ViewPostDetail,
			Action:   app.ActionSubmitComment,
			PostID:   m.postID,
			TargetID: m.inputFor,
			Text:     text,
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	switch m.view {
	case app.ViewFeed:
		m.cursor = clamp(m.cursor+delta, len(m.posts))
	case app.ViewProfile:
		if m.profile != nil {
			m.profileCursor = clamp(m.profileCursor+delta, len(m.profile.Posts))
		}
	case app.ViewPostDetail:
		m.detailCursor = clamp(m.detailCursor+delta, len(m.nodes())+1)
	}
}

func (m Model) back() (Model, tea.Cmd) {
	if len(m.history) == 0 {
		return m, nil
	}
	loc := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	if m.view == app.ViewPostDetail && loc.view != app.ViewPostDetail {
		m.stashInput()
	}
	m.view = loc.view
	m.postID = loc.postID
	m.profileName = loc.name
	if loc.view == app.ViewProfile {
		m.profile = nil
	}
	cmd := m.load(m.loadCommand())
	return m, cmd
}

func (m Model) open() (Model, tea.Cmd) {
	if m.view == app.ViewPostDetail {
		if _, ok := m.selectedNode(); ok {
			return m.toggleReply()
		}
		return m, nil
	}
	p, ok := m.SelectedPost()
	if !ok {
		return m, nil
	}
	cmd := m.openPost(p.ID)
	return m, cmd
}

func (m Model) vote(dir domain.VoteDirection) (Model, tea.Cmd) {
	postAction, commentAction := app.ActionUpvotePost, app.ActionUpvoteComment
	if dir == domain.VoteDown {
		postAction, commentAction = app.ActionDownvotePost, app.ActionDownvoteComment
	}
	if n, ok := m.selectedNode(); ok && m.view == app.ViewPostDetail {
		return m, m.dispatchAction(app.Command{
			View:     m.view,
			Action:   commentAction,
			TargetID: n.CommentID,
			PostID:   m.postID,
		})
	}
	p, ok := m.SelectedPost()
	if !ok {
		return m, nil
	}
	return m, m.dispatchAction(app.Command{View: m.view, Action: postAction, TargetID: p.ID})
}

func (m Model) askDelete() (Model, tea.Cmd) {
	if m.view == app.ViewPostDetail && m.detailCursor != 0 {
		return m, nil
	}
	p, ok := m.SelectedPost()
	if !ok {
		return m, nil
	}
	if !p.IsOwnedBy(m.session.CurrentUserName()) {
		return m, common.Notice("You can only delete your own posts", true)
	}
	m.confirmDelete = true
	m.deleteID = p.ID
	return m, nil
}

func (m Model) openCommentForm() (Model, tea.Cmd) {
	if m.view != app.ViewPostDetail || m.detail == nil {
		return m, nil
	}
	m.commentOpen = true
	m.detailCursor = 0
	return m, m.focusInput("")
}

func (m Model) toggleReply() (Model, tea.Cmd) {
	if m.view != app.ViewPostDetail {
		return m, nil
	}
	n, ok := m.selectedNode()
	if !ok {
		return m, nil
	}
	if !m.replies.Toggle(n.CommentID) {
		return m, nil
	}
	return m, m.focusInput(n.CommentID)
}

// focusInput points the shared textarea at the form for parent, restoring
// any text left there earlier.
func (m *Model) focusInput(parent domain.ID) tea.Cmd {
	if m.typing && m.inputFor != parent {
		m.stashInput()
	}
	m.inputFor = parent
	m.input.Reset()
	m.input.SetValue(m.drafts[parent])
	m.typing = true
	return m.input.Focus()
}

// stashInput keeps the typed text as a draft and releases the keyboard.
func (m *Model) stashInput() {
	if !m.typing {
		return
	}
	if v := m.input.Value(); v != "" {
		m.drafts[m.inputFor] = v
	} else {
		delete(m.drafts, m.inputFor)
	}
	m.input.Blur()
	m.typing = false
}

func (m Model) openAuthor() (Model, tea.Cmd) {
	name := ""
	if n, ok := m.selectedNode(); ok && m.view == app.ViewPostDetail {
		name = n.Author
	} else if p, ok := m.SelectedPost(); ok {
		name = p.Author.Name
	}
	if strings.TrimSpace(name) == "" || name == domain.UnknownAuthor {
		return m, nil
	}
	cmd := m.openProfile(name)
	return m, cmd
}

func (m Model) cycleSort() (Model, tea.Cmd) {
	if m.view != app.ViewFeed {
		return m, nil
	}
	m.sort = config.NextSort(m.sort)
	m.cursor = 0
	sort := m.sort
	load := m.load(m.loadCommand())
	return m, tea.Batch(load, func() tea.Msg { return common.SortChangedMsg{Sort: sort} })
}

// resetDetail drops per-post state: open reply forms, drafts and the cursor.
func (m *Model) resetDetail() {
	m.replies.Clear()
	m.drafts = make(map[domain.ID]string)
	m.commentOpen = false
	m.detailCursor = 0
	m.input.Reset()
	m.input.Blur()
	m.typing = false
	m.inputFor = ""
}

func (m *Model) push(loc location) {
	m.history = append(m.history, loc)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}

func authFailed() tea.Msg { return common.AuthFailedMsg{} }

func loadFailure(cmd app.Command) string {
	switch {
	case cmd.Action == app.ActionOpenProfile, cmd.View == app.ViewProfile:
		return "Failed to load profile"
	case cmd.Action == app.ActionOpenPost, cmd.View == app.ViewPostDetail:
		return "Failed to load post"
	default:
		return "Failed to load feed"
	}
}

func actionFailure(cmd app.Command) string {
	if cmd.Action == app.ActionDeletePost {
		return "Failed to delete post"
	}
	return "Vote failed"
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
