// Package feed renders the three browsing views: the feed, a post with its
// comment tree, and agent profiles.
package feed

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/render"
	"github.com/CrestNiraj12/molterm/tui/common"
)

// --- Messages ---

// loadedMsg carries the result of a view load. ReqSeq drops responses for a
// view that is no longer shown.
type loadedMsg struct {
	ReqSeq int
	Cmd    app.Command
	Res    app.Result
	Err    error
}

// actionDoneMsg carries the result of a vote or delete.
type actionDoneMsg struct {
	Cmd app.Command
	Res app.Result
	Err error
}

// commentSubmittedMsg carries the result of a comment or reply submit.
type commentSubmittedMsg struct {
	Cmd app.Command
	Res app.Result
	Err error
}

// location is one entry of the back stack.
type location struct {
	view   app.View
	postID domain.ID
	name   string
}

// --- Model ---

// Model holds the state for all browsing views.
type Model struct {
	ctrl    *app.Controller
	session *app.Session
	keys    common.KeyMap
	spinner spinner.Model
	now     func() time.Time

	view    app.View
	history []location
	sort    string
	reqSeq  int
	loading bool
	err     error
	width   int
	height  int

	// Feed.
	posts  []domain.Post
	cursor int

	// Post detail. Cursor 0 is the post, i > 0 is the i-th comment in tree
	// order.
	postID        domain.ID
	detail        *app.Detail
	detailCursor  int
	replies       render.ReplySet
	drafts        map[domain.ID]string
	commentOpen   bool
	input         textarea.Model
	inputFor      domain.ID
	typing        bool
	submitting    bool
	confirmDelete bool
	deleteID      domain.ID

	// Profile.
	profileName   string
	profile       *app.Profile
	profileCursor int
}

// New creates the browsing model starting on the feed.
func New(ctrl *app.Controller, session *app.Session, sort string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6600"))

	input := textarea.New()
	input.Placeholder = "> Your comment..."
	input.ShowLineNumbers = false
	input.CharLimit = 5000
	input.SetHeight(3)
	input.SetWidth(72)

	return Model{
		ctrl:    ctrl,
		session: session,
		keys:    common.DefaultKeyMap(),
		spinner: s,
		now:     time.Now,
		view:    app.ViewFeed,
		sort:    sort,
		drafts:  make(map[domain.ID]string),
		input:   input,
		loading: true,
	}
}

// Init starts the initial feed fetch. New already marked the model as
// loading, so the request uses the current sequence.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.dispatchLoad(m.loadCommand(), m.reqSeq), m.spinner.Tick)
}

// CurrentView returns the screen currently shown.
func (m Model) CurrentView() app.View { return m.view }

// Posts returns the loaded feed.
func (m Model) Posts() []domain.Post { return m.posts }

// Loading reports whether a view load is in flight.
func (m Model) Loading() bool { return m.loading }

// Err returns the last load error, if any.
func (m Model) Err() error { return m.err }

// Sort is the active feed sort.
func (m Model) Sort() string { return m.sort }

// Capturing reports whether keys go to a text input or a prompt, so the
// root must not treat them as global shortcuts.
func (m Model) Capturing() bool { return m.typing || m.confirmDelete }

// SelectedPost returns the highlighted post in the feed or profile.
func (m Model) SelectedPost() (domain.Post, bool) {
	switch m.view {
	case app.ViewFeed:
		if m.cursor < len(m.posts) {
			return m.posts[m.cursor], true
		}
	case app.ViewProfile:
		if m.profile != nil && m.profileCursor < len(m.profile.Posts) {
			return m.profile.Posts[m.profileCursor], true
		}
	case app.ViewPostDetail:
		if m.detail != nil {
			return m.detail.Post, true
		}
	}
	return domain.Post{}, false
}

// nodes is the comment tree of the open post in display order.
func (m Model) nodes() []render.Node {
	if m.detail == nil {
		return nil
	}
	return render.Flatten(render.Build(m.detail.Comments, m.detail.Post.ID, m.replies))
}

// selectedNode returns the highlighted comment in the detail view.
func (m Model) selectedNode() (render.Node, bool) {
	if m.detailCursor == 0 {
		return render.Node{}, false
	}
	nodes := m.nodes()
	if m.detailCursor-1 >= len(nodes) {
		return render.Node{}, false
	}
	return nodes[m.detailCursor-1], true
}

func (m Model) current() location {
	return location{view: m.view, postID: m.postID, name: m.profileName}
}

func (m Model) loadCommand() app.Command {
	return app.Command{
		View:     m.view,
		Action:   app.ActionLoad,
		TargetID: m.postID,
		Name:     m.profileName,
		Sort:     m.sort,
	}
}
