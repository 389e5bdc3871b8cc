package tui

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/cooldown"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/infra/auth"
	"github.com/CrestNiraj12/molterm/tui/common"
	"github.com/CrestNiraj12/molterm/tui/compose"
	"github.com/CrestNiraj12/molterm/tui/login"
)

type stubPosts struct {
	createErr error
	created   []domain.PostDraft
}

func (s *stubPosts) Feed(context.Context, string, int) ([]domain.Post, error) {
	return []domain.Post{{ID: "p1", Title: "hello"}}, nil
}
func (s *stubPosts) Get(_ context.Context, id domain.ID) (domain.Post, error) {
	return domain.Post{ID: id}, nil
}
func (s *stubPosts) Create(_ context.Context, d domain.PostDraft) (domain.Post, error) {
	if s.createErr != nil {
		return domain.Post{}, s.createErr
	}
	s.created = append(s.created, d)
	return domain.Post{ID: "new"}, nil
}
func (s *stubPosts) Delete(context.Context, domain.ID) error                      { return nil }
func (s *stubPosts) Vote(context.Context, domain.ID, domain.VoteDirection) error { return nil }

type stubComments struct{}

func (stubComments) List(context.Context, domain.ID, string) ([]domain.Comment, error) {
	return nil, nil
}
func (stubComments) Create(context.Context, domain.ID, string, domain.ID) (domain.Comment, error) {
	return domain.Comment{}, nil
}
func (stubComments) Vote(context.Context, domain.ID, domain.VoteDirection) error { return nil }

type stubAgents struct {
	meErr error
}

func (s *stubAgents) Register(context.Context, string, string) (domain.Registration, error) {
	return domain.Registration{}, nil
}
func (s *stubAgents) Me(context.Context) (domain.Agent, error) {
	return domain.Agent{Name: "clawd"}, s.meErr
}
func (s *stubAgents) Profile(context.Context, string) (domain.Agent, []domain.Post, error) {
	return domain.Agent{}, nil, nil
}
func (s *stubAgents) Status(context.Context) (string, error) { return "claimed", nil }

type stubEditor struct{}

func (stubEditor) Cmd(domain.PostDraft) (*exec.Cmd, string, error) {
	return exec.Command("true"), "", nil
}
func (stubEditor) ReadDraft(string, domain.PostDraft) (domain.PostDraft, error) {
	return domain.PostDraft{}, nil
}

type harness struct {
	posts   *stubPosts
	agents  *stubAgents
	session *app.Session
	now     time.Time
	saved   []string
}

func newHarness(key string) *harness {
	h := &harness{
		posts:  &stubPosts{},
		agents: &stubAgents{},
		now:    time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC),
	}
	h.session = app.NewSession(auth.NewMemoryKeyStore(key), cooldown.New(func() time.Time { return h.now }))
	return h
}

func (h *harness) app() App {
	ctrl := app.NewController(app.Deps{Posts: h.posts, Comments: stubComments{}, Agents: h.agents})
	return NewApp(Deps{
		Controller: ctrl,
		Session:    h.session,
		Editor:     stubEditor{},
		FeedSort:   "hot",
		SaveSort: func(s string) error {
			h.saved = append(h.saved, s)
			return nil
		},
		Logger: zerolog.Nop(),
	})
}

func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	next, cmd := a.Update(msg)
	out, ok := next.(App)
	if !ok {
		t.Fatalf("expected App, got %T", next)
	}
	return out, cmd
}

func TestNewApp_WithoutKeyShowsLogin(t *testing.T) {
	h := newHarness("")
	a := h.app()
	if a.active != loginView {
		t.Fatalf("expected login view")
	}
	if a.Init() != nil {
		t.Fatalf("expected no startup request without a key")
	}
	if !strings.Contains(a.View(), "Log in with an API key") {
		t.Fatalf("expected login chooser:\n%s", a.View())
	}
}

func TestNewApp_VerifiesStoredKeyThenOpensFeed(t *testing.T) {
	h := newHarness("moltbook_sk_abcdefghijklmnop")
	a := h.app()
	cmd := a.Init()
	if cmd == nil {
		t.Fatalf("expected a verify request for the stored key")
	}
	a, cmd = update(t, a, cmd())
	if cmd == nil {
		t.Fatalf("expected LoggedInMsg command")
	}
	loggedInMsg := cmd()
	if _, ok := loggedInMsg.(login.LoggedInMsg); !ok {
		t.Fatalf("expected LoggedInMsg, got %T", loggedInMsg)
	}
	a, _ = update(t, a, loggedInMsg)
	if a.active != feedView {
		t.Fatalf("expected feed after login")
	}
	if got := h.session.UserLabel(); got != "clawd | moltbook_sk_...mnop" {
		t.Fatalf("unexpected user label %q", got)
	}
	if !strings.Contains(a.View(), "clawd | moltbook_sk_...mnop") {
		t.Fatalf("expected user label in header")
	}
}

func TestAuthFailed_LogsOutWithMessage(t *testing.T) {
	h := newHarness("moltbook_sk_abcdefghijklmnop")
	a, _ := update(t, h.app(), login.LoggedInMsg{Agent: domain.Agent{Name: "clawd"}})
	h.session.Cooldowns().RecordSuccess(cooldown.Post)

	a, _ = update(t, a, common.AuthFailedMsg{})
	if a.active != loginView {
		t.Fatalf("expected login view after auth failure")
	}
	if h.session.HasKey() {
		t.Fatalf("expected key cleared")
	}
	if h.session.Cooldowns().IsBlocked(cooldown.Post) {
		t.Fatalf("expected cooldowns reset on logout")
	}
	if !strings.Contains(a.View(), login.InvalidKeyMessage) {
		t.Fatalf("expected invalid key message:\n%s", a.View())
	}
}

func TestGlobalKeys_LogoutAndCompose(t *testing.T) {
	h := newHarness("moltbook_sk_abcdefghijklmnop")
	a, _ := update(t, h.app(), login.LoggedInMsg{Agent: domain.Agent{Name: "clawd"}})

	next, _ := update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'P'}})
	if next.active != composeView {
		t.Fatalf("expected inline composer")
	}

	next, _ = update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'L'}})
	if next.active != loginView || h.session.HasKey() {
		t.Fatalf("expected logout")
	}
}

func TestCooldownTick_DropsStaleGeneration(t *testing.T) {
	h := newHarness("moltbook_sk_abcdefghijklmnop")
	a, _ := update(t, h.app(), login.LoggedInMsg{Agent: domain.Agent{Name: "clawd"}})
	tracker := h.session.Cooldowns()

	first := tracker.RecordSuccess(cooldown.Comment)
	tracker.RecordRateLimited(cooldown.Comment, 40*time.Second)

	_, cmd := update(t, a, common.CooldownTickMsg{Kind: cooldown.Comment, Gen: first.Gen})
	if cmd != nil {
		t.Fatalf("stale tick should not reschedule")
	}

	_, cmd = update(t, a, common.CooldownTickMsg{Kind: cooldown.Comment, Gen: tracker.Gen(cooldown.Comment)})
	if cmd == nil {
		t.Fatalf("current tick should schedule the next one")
	}
}

func TestCooldownTick_ReadyWhenExpired(t *testing.T) {
	h := newHarness("moltbook_sk_abcdefghijklmnop")
	a, _ := update(t, h.app(), login.LoggedInMsg{Agent: domain.Agent{Name: "clawd"}})
	tracker := h.session.Cooldowns()
	tracker.RecordSuccess(cooldown.Comment)
	h.now = h.now.Add(21 * time.Second)

	_, cmd := update(t, a, common.CooldownTickMsg{Kind: cooldown.Comment, Gen: tracker.Gen(cooldown.Comment)})
	if cmd == nil {
		t.Fatalf("expected ready message")
	}
	if _, ok := cmd().(common.CooldownReadyMsg); !ok {
		t.Fatalf("expected CooldownReadyMsg")
	}
}

func TestSubmitPost_SuccessReturnsToFeedWithCooldown(t *testing.T) {
	h := newHarness("moltbook_sk_abcdefghijklmnop")
	a, _ := update(t, h.app(), login.LoggedInMsg{Agent: domain.Agent{Name: "clawd"}})
	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'P'}})

	draft := domain.PostDraft{Submolt: "general", Title: "t", Content: "c"}
	a, cmd := update(t, a, compose.SubmitMsg{Draft: draft})
	a, _ = update(t, a, cmd())

	if len(h.posts.created) != 1 || h.posts.created[0].Title != "t" {
		t.Fatalf("expected post created, got %v", h.posts.created)
	}
	if a.active != feedView || a.status != "Post created successfully!" {
		t.Fatalf("expected feed with success notice, got view=%d status=%q", a.active, a.status)
	}
	if got := h.session.Cooldowns().Remaining(cooldown.Post); got != 30*time.Minute {
		t.Fatalf("expected 30 minute cooldown, got %v", got)
	}
}

func TestSubmitPost_RateLimitStaysInComposer(t *testing.T) {
	h := newHarness("moltbook_sk_abcdefghijklmnop")
	h.posts.createErr = &domain.RateLimitedError{
		HTTPError:         domain.HTTPError{Status: 429, Message: "Too many posts"},
		RetryAfterMinutes: 12,
	}
	a, _ := update(t, h.app(), login.LoggedInMsg{Agent: domain.Agent{Name: "clawd"}})
	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'P'}})

	a, cmd := update(t, a, compose.SubmitMsg{Draft: domain.PostDraft{Submolt: "general", Title: "t", Content: "c"}})
	a, _ = update(t, a, cmd())

	if a.active != composeView {
		t.Fatalf("expected to stay in the composer")
	}
	if got := h.session.Cooldowns().Remaining(cooldown.Post); got != 12*time.Minute {
		t.Fatalf("expected 12 minute cooldown, got %v", got)
	}
	if !strings.Contains(a.View(), "Please wait 12 minutes before posting again") {
		t.Fatalf("expected rate limit notice in composer:\n%s", a.View())
	}
}

func TestSortChanged_Persists(t *testing.T) {
	h := newHarness("moltbook_sk_abcdefghijklmnop")
	a, _ := update(t, h.app(), login.LoggedInMsg{Agent: domain.Agent{Name: "clawd"}})
	update(t, a, common.SortChangedMsg{Sort: "top"})
	if len(h.saved) != 1 || h.saved[0] != "top" {
		t.Fatalf("expected sort saved, got %v", h.saved)
	}
}
