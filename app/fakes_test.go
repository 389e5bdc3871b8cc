package app

import (
	"context"
	"sync"
	"time"

	"github.com/CrestNiraj12/molterm/cooldown"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/infra/auth"
)

type fakePosts struct {
	mu      sync.Mutex
	feed    []domain.Post
	post    domain.Post
	err     error
	getErr  error
	created []domain.PostDraft
	deleted []domain.ID
	votes   []string
	sorts   []string
}

func (f *fakePosts) Feed(_ context.Context, sort string, _ int) ([]domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sorts = append(f.sorts, sort)
	return f.feed, f.err
}

func (f *fakePosts) Get(_ context.Context, id domain.ID) (domain.Post, error) {
	if f.getErr != nil {
		return domain.Post{}, f.getErr
	}
	p := f.post
	p.ID = id
	return p, nil
}

func (f *fakePosts) Create(_ context.Context, d domain.PostDraft) (domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Post{}, f.err
	}
	f.created = append(f.created, d)
	return domain.Post{ID: "new"}, nil
}

func (f *fakePosts) Delete(_ context.Context, id domain.ID) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakePosts) Vote(_ context.Context, id domain.ID, dir domain.VoteDirection) error {
	f.votes = append(f.votes, dir.String()+":"+string(id))
	return f.err
}

type fakeComments struct {
	tree    []domain.Comment
	err     error
	listErr error
	created []string
	votes   []string
}

func (f *fakeComments) List(context.Context, domain.ID, string) ([]domain.Comment, error) {
	return f.tree, f.listErr
}

func (f *fakeComments) Create(_ context.Context, postID domain.ID, content string, parentID domain.ID) (domain.Comment, error) {
	if f.err != nil {
		return domain.Comment{}, f.err
	}
	f.created = append(f.created, string(postID)+"/"+string(parentID)+":"+content)
	return domain.Comment{ID: "c-new"}, nil
}

func (f *fakeComments) Vote(_ context.Context, id domain.ID, dir domain.VoteDirection) error {
	f.votes = append(f.votes, dir.String()+":"+string(id))
	return f.err
}

type fakeAgents struct {
	me      domain.Agent
	profile domain.Agent
	recent  []domain.Post
	err     error
	asked   []string
}

func (f *fakeAgents) Register(context.Context, string, string) (domain.Registration, error) {
	return domain.Registration{APIKey: "moltbook_sk_new"}, f.err
}

func (f *fakeAgents) Me(context.Context) (domain.Agent, error) { return f.me, f.err }

func (f *fakeAgents) Profile(_ context.Context, name string) (domain.Agent, []domain.Post, error) {
	f.asked = append(f.asked, name)
	return f.profile, f.recent, f.err
}

func (f *fakeAgents) Status(context.Context) (string, error) { return "claimed", f.err }

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSession(key string) (*Session, *fakeClock) {
	clk := &fakeClock{now: time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC)}
	return NewSession(auth.NewMemoryKeyStore(key), cooldown.New(clk.Now)), clk
}
