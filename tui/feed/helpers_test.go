package feed

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/cooldown"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/infra/auth"
)

var testNow = time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC)

type stubPosts struct {
	feed    []domain.Post
	post    domain.Post
	err     error
	sorts   []string
	deleted []domain.ID
	votes   []string
}

func (s *stubPosts) Feed(_ context.Context, sort string, _ int) ([]domain.Post, error) {
	s.sorts = append(s.sorts, sort)
	return s.feed, s.err
}

func (s *stubPosts) Get(_ context.Context, id domain.ID) (domain.Post, error) {
	p := s.post
	p.ID = id
	return p, s.err
}

func (s *stubPosts) Create(context.Context, domain.PostDraft) (domain.Post, error) {
	return domain.Post{}, s.err
}

func (s *stubPosts) Delete(_ context.Context, id domain.ID) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *stubPosts) Vote(_ context.Context, id domain.ID, dir domain.VoteDirection) error {
	s.votes = append(s.votes, dir.String()+":"+string(id))
	return s.err
}

type stubComments struct {
	tree    []domain.Comment
	err     error
	created []string
	votes   []string
}

func (s *stubComments) List(context.Context, domain.ID, string) ([]domain.Comment, error) {
	return s.tree, nil
}

func (s *stubComments) Create(_ context.Context, postID domain.ID, content string, parentID domain.ID) (domain.Comment, error) {
	if s.err != nil {
		return domain.Comment{}, s.err
	}
	s.created = append(s.created, string(postID)+"/"+string(parentID)+":"+content)
	return domain.Comment{ID: "c-new"}, nil
}

func (s *stubComments) Vote(_ context.Context, id domain.ID, dir domain.VoteDirection) error {
	s.votes = append(s.votes, dir.String()+":"+string(id))
	return s.err
}

type stubAgents struct {
	me      domain.Agent
	profile domain.Agent
	recent  []domain.Post
}

func (s *stubAgents) Register(context.Context, string, string) (domain.Registration, error) {
	return domain.Registration{}, nil
}
func (s *stubAgents) Me(context.Context) (domain.Agent, error) { return s.me, nil }
func (s *stubAgents) Profile(_ context.Context, name string) (domain.Agent, []domain.Post, error) {
	a := s.profile
	a.Name = name
	return a, s.recent, nil
}
func (s *stubAgents) Status(context.Context) (string, error) { return "claimed", nil }

type fixture struct {
	posts    *stubPosts
	comments *stubComments
	agents   *stubAgents
	session  *app.Session
	clock    *time.Time
}

func newFixture() *fixture {
	now := testNow
	f := &fixture{
		posts: &stubPosts{
			feed: []domain.Post{
				makePost("p1", "clawd", "First"),
				makePost("p2", "other", "Second"),
			},
			post: makePost("", "clawd", "Opened"),
		},
		comments: &stubComments{tree: []domain.Comment{
			{ID: "c1", Content: "top", Author: domain.Author{Name: "other"}, Replies: []domain.Comment{
				{ID: "c2", ParentID: "c1", Content: "nested", Author: domain.Author{Name: "clawd"}},
			}},
			{ID: "c3", Content: "second top", Author: domain.Author{Name: "third"}},
		}},
		agents: &stubAgents{me: domain.Agent{Name: "clawd"}},
		clock:  &now,
	}
	f.session = app.NewSession(
		auth.NewMemoryKeyStore("moltbook_sk_abcdefghijklmnop"),
		cooldown.New(func() time.Time { return *f.clock }),
	)
	_ = f.session.SetAgent(domain.Agent{Name: "clawd"})
	return f
}

func (f *fixture) model() Model {
	ctrl := app.NewController(app.Deps{Posts: f.posts, Comments: f.comments, Agents: f.agents})
	m := New(ctrl, f.session, "hot")
	m.now = func() time.Time { return testNow }
	return m
}

func makePost(id domain.ID, author, title string) domain.Post {
	return domain.Post{
		ID:        id,
		Title:     title,
		Content:   "body of " + title,
		Author:    domain.Author{Name: author},
		Submolt:   domain.Submolt{Name: "general"},
		Upvotes:   3,
		CreatedAt: testNow.Add(-time.Hour),
	}
}

// collect runs cmd and every command nested in batches, returning the
// messages. Spinner ticks are dropped. Commands that sleep (cooldown ticks)
// must not be passed here.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case spinner.TickMsg:
		return nil
	case nil:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

// drive feeds the messages produced by cmd back into m until none remain.
func drive(m Model, cmd tea.Cmd) (Model, []tea.Msg) {
	var passed []tea.Msg
	queue := collect(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		switch msg.(type) {
		case loadedMsg, actionDoneMsg:
			var next tea.Cmd
			m, next = m.Update(msg)
			queue = append(queue, collect(next)...)
		default:
			passed = append(passed, msg)
		}
	}
	return m, passed
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadedFeed returns a model with the feed fetched.
func loadedFeed(f *fixture) Model {
	m := f.model()
	m, _ = drive(m, m.Init())
	return m
}

// openedPost returns a model showing the detail of the first feed post.
func openedPost(f *fixture) Model {
	m := loadedFeed(f)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = drive(m, cmd)
	return m
}
