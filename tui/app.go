package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/cooldown"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/tui/common"
	"github.com/CrestNiraj12/molterm/tui/compose"
	"github.com/CrestNiraj12/molterm/tui/feed"
	"github.com/CrestNiraj12/molterm/tui/login"
)

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Controller *app.Controller
	Session    *app.Session
	Editor     app.DraftEditor
	FeedSort   string
	// SaveSort persists the feed sort between runs. Optional.
	SaveSort func(sort string) error
	Logger   zerolog.Logger
}

type activeView int

const (
	loginView activeView = iota
	feedView
	composeView
)

// postSubmittedMsg carries the result of publishing a composed post.
type postSubmittedMsg struct {
	res app.Result
	err error
}

// App is the root Bubble Tea model. It routes between sub-views and owns
// the session: cooldown ticks, logouts and post submits all land here.
type App struct {
	deps    Deps
	log     zerolog.Logger
	active  activeView
	login   login.Model
	feed    feed.Model
	compose compose.Model
	keys    common.KeyMap
	startup tea.Cmd
	size    tea.WindowSizeMsg
	// Transient status message (e.g. "Post created successfully!").
	status    string
	statusErr bool
}

// NewApp creates the root model with all dependencies wired. A stored key is
// verified before the feed opens.
func NewApp(deps Deps) App {
	a := App{
		deps:   deps,
		log:    deps.Logger.With().Str("component", "tui").Logger(),
		active: loginView,
		login:  login.New(deps.Controller, deps.Session),
		keys:   common.DefaultKeyMap(),
	}
	a.login, a.startup = a.login.Resume()
	return a
}

// Init runs the startup key check, if any.
func (a App) Init() tea.Cmd {
	if a.startup != nil {
		return a.startup
	}
	return a.login.Init()
}

// Update handles messages and routes to the active sub-model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.size = msg
		a.feed, _ = a.feed.Update(msg)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if handled, next, cmd := a.handleGlobalKey(msg); handled {
			return next, cmd
		}

	case login.LoggedInMsg:
		return a.openFeed("Logged in as " + msg.Agent.DisplayName())

	case common.AuthFailedMsg:
		a.log.Warn().Msg("api key rejected, logging out")
		return a.logout(login.InvalidKeyMessage)

	case common.NoticeMsg:
		a.status = msg.Text
		a.statusErr = msg.IsError
		return a, nil

	case common.SortChangedMsg:
		if a.deps.SaveSort != nil {
			if err := a.deps.SaveSort(msg.Sort); err != nil {
				a.log.Error().Err(err).Str("sort", msg.Sort).Msg("saving ui state")
			}
		}
		return a, nil

	case common.CooldownTickMsg:
		tracker := a.deps.Session.Cooldowns()
		if msg.Gen != tracker.Gen(msg.Kind) {
			// A newer record call started its own chain.
			return a, nil
		}
		return a, common.ScheduleCooldown(msg.Kind, tracker.Poll(msg.Kind))

	case common.CooldownReadyMsg:
		a.log.Debug().Stringer("kind", msg.Kind).Msg("cooldown ended")
		a.feed, _ = a.feed.Update(msg)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(msg)
		return a, cmd

	case compose.SubmitMsg:
		a.status = ""
		return a, a.submitPost(msg.Draft)

	case postSubmittedMsg:
		return a.handlePostSubmitted(msg)

	case compose.DoneMsg:
		a.active = feedView
		if msg.Err != nil {
			a.status = "Error: " + msg.Err.Error()
			a.statusErr = true
			return a, nil
		}
		a.status = "Cancelled."
		a.statusErr = false
		return a, nil
	}

	// Delegate to the active sub-model.
	var cmd tea.Cmd
	switch a.active {
	case loginView:
		a.login, cmd = a.login.Update(msg)
	case feedView:
		a.feed, cmd = a.feed.Update(msg)
	case composeView:
		a.compose, cmd = a.compose.Update(msg)
	}
	return a, cmd
}

// handleGlobalKey applies the root shortcuts. Keys typed into a text field
// or answering a prompt are left to the sub-model.
func (a App) handleGlobalKey(msg tea.KeyMsg) (bool, App, tea.Cmd) {
	switch a.active {
	case loginView:
		if !a.login.Editing() && key.Matches(msg, a.keys.Quit) {
			return true, a, tea.Quit
		}

	case feedView:
		if a.feed.Capturing() {
			return false, a, nil
		}
		switch {
		case key.Matches(msg, a.keys.Quit):
			return true, a, tea.Quit
		case key.Matches(msg, a.keys.Logout):
			next, cmd := a.logout("")
			return true, next, cmd
		case key.Matches(msg, a.keys.NewEditor):
			a.active = composeView
			a.status = ""
			a.compose = compose.NewEditor(a.deps.Session, a.deps.Editor)
			return true, a, a.compose.Init()
		case key.Matches(msg, a.keys.NewInline):
			a.active = composeView
			a.status = ""
			a.compose = compose.NewInline(a.deps.Session, a.deps.Editor)
			return true, a, a.compose.Init()
		}
	}
	return false, a, nil
}

func (a App) openFeed(status string) (App, tea.Cmd) {
	a.active = feedView
	a.status = status
	a.statusErr = false
	a.feed = feed.New(a.deps.Controller, a.deps.Session, a.deps.FeedSort)
	if a.size.Width > 0 {
		a.feed, _ = a.feed.Update(a.size)
	}
	return a, a.feed.Init()
}

// logout clears the key and every cooldown and returns to the login screen.
func (a App) logout(reason string) (App, tea.Cmd) {
	if err := a.deps.Session.Logout(); err != nil {
		a.log.Error().Err(err).Msg("logout")
	}
	a.active = loginView
	a.login = login.New(a.deps.Controller, a.deps.Session)
	if reason != "" {
		a.login = a.login.WithError(reason)
	}
	a.status = ""
	return a, nil
}

func (a App) submitPost(d domain.PostDraft) tea.Cmd {
	ctrl := a.deps.Controller
	view := a.feed.CurrentView()
	if view == app.ViewPostDetail {
		view = app.ViewFeed
	}
	return func() tea.Msg {
		res, err := ctrl.Dispatch(context.Background(), app.Command{
			View:   view,
			Action: app.ActionSubmitPost,
			Draft:  d,
		})
		return postSubmittedMsg{res: res, err: err}
	}
}

func (a App) handlePostSubmitted(msg postSubmittedMsg) (App, tea.Cmd) {
	if msg.err != nil && domain.IsAuthError(msg.err) {
		return a.logout(login.InvalidKeyMessage)
	}

	out := a.deps.Session.OnSubmitOutcome(cooldown.Post, msg.err)
	var cmds []tea.Cmd
	if out.Started {
		cmds = append(cmds, common.ScheduleCooldown(cooldown.Post, out.Tick))
	}

	if msg.err != nil {
		var cmd tea.Cmd
		a.compose, cmd = a.compose.Update(compose.SubmitResultMsg{Err: msg.err, Notice: out.Notice})
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)
	}

	a.active = feedView
	a.status = out.Notice
	a.statusErr = false
	var reload tea.Cmd
	a.feed, reload = a.feed.Reload()
	cmds = append(cmds, reload)
	return a, tea.Batch(cmds...)
}

// View renders the active sub-model.
func (a App) View() string {
	var s string

	switch a.active {
	case loginView:
		s = a.login.View()
	case feedView:
		s = a.header() + "\n\n" + a.feed.View()
	case composeView:
		s = a.compose.View()
	}

	// Append transient status if present.
	if a.status != "" {
		style := common.SuccessStyle
		if a.statusErr {
			style = common.ErrorStyle
		}
		s += "\n" + common.StatusBarStyle.Render(style.Render(a.status))
	}
	return s
}

func (a App) header() string {
	title := common.AppTitleStyle.Render(domain.AppName)
	if label := a.deps.Session.UserLabel(); label != "" {
		title += "  " + common.UserLabelStyle.Render(label)
	}
	return title
}
