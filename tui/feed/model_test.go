package feed

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/cooldown"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/tui/common"
)

func TestInit_LoadsFeed(t *testing.T) {
	f := newFixture()
	m := f.model()
	if !m.Loading() {
		t.Fatalf("expected a new model to start loading")
	}
	m = loadedFeed(f)
	if m.Loading() {
		t.Fatalf("expected loading to finish")
	}
	if got := len(m.Posts()); got != 2 {
		t.Fatalf("expected 2 posts, got %d", got)
	}
	if len(f.posts.sorts) != 1 || f.posts.sorts[0] != "hot" {
		t.Fatalf("expected feed fetched with sort hot, got %v", f.posts.sorts)
	}
}

func TestLoaded_DropsStaleResponse(t *testing.T) {
	f := newFixture()
	m := loadedFeed(f)
	m.reqSeq = 5

	stale := loadedMsg{
		ReqSeq: 4,
		Cmd:    app.Command{View: app.ViewFeed, Action: app.ActionLoad},
		Res:    app.Result{View: app.ViewFeed, Feed: nil},
	}
	m, _ = m.Update(stale)
	if len(m.Posts()) != 2 {
		t.Fatalf("stale response should be ignored, got %d posts", len(m.Posts()))
	}
}

func TestLoaded_ErrorKeepsViewAndNotifies(t *testing.T) {
	f := newFixture()
	f.posts.err = &domain.NetworkError{}
	m := f.model()
	m, msgs := drive(m, m.Init())

	if m.Err() == nil {
		t.Fatalf("expected load error to be kept")
	}
	if m.CurrentView() != app.ViewFeed {
		t.Fatalf("expected to stay on feed, got %s", m.CurrentView())
	}
	if len(msgs) != 1 {
		t.Fatalf("expected one notice, got %v", msgs)
	}
	n, ok := msgs[0].(common.NoticeMsg)
	if !ok || !n.IsError || n.Text != "Network error" {
		t.Fatalf("unexpected notice %#v", msgs[0])
	}
}

func TestLoaded_AuthErrorEmitsAuthFailed(t *testing.T) {
	f := newFixture()
	f.posts.err = &domain.HTTPError{Status: 401, Message: "Unauthorized"}
	m := f.model()
	_, msgs := drive(m, m.Init())
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %v", msgs)
	}
	if _, ok := msgs[0].(common.AuthFailedMsg); !ok {
		t.Fatalf("expected AuthFailedMsg, got %T", msgs[0])
	}
}

func TestOpenPost_NavigatesAndBackReturns(t *testing.T) {
	f := newFixture()
	m := openedPost(f)

	if m.CurrentView() != app.ViewPostDetail {
		t.Fatalf("expected post detail, got %s", m.CurrentView())
	}
	if m.postID != "p1" {
		t.Fatalf("expected post p1 open, got %q", m.postID)
	}
	if len(m.history) != 1 || m.history[0].view != app.ViewFeed {
		t.Fatalf("expected feed on the back stack, got %+v", m.history)
	}
	if got := len(m.nodes()); got != 3 {
		t.Fatalf("expected 3 comment nodes, got %d", got)
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.CurrentView() != app.ViewFeed || !m.Loading() {
		t.Fatalf("expected back to reload the feed")
	}
	m, _ = drive(m, cmd)
	if len(m.history) != 0 {
		t.Fatalf("expected empty back stack, got %d", len(m.history))
	}
}

func TestSort_CyclesAndReportsChange(t *testing.T) {
	f := newFixture()
	m := loadedFeed(f)
	before := m.reqSeq

	m, cmd := m.Update(keyRunes("s"))
	if m.Sort() != "new" {
		t.Fatalf("expected sort new, got %q", m.Sort())
	}
	if m.reqSeq != before+1 {
		t.Fatalf("expected req seq increment")
	}
	m, msgs := drive(m, cmd)
	var changed bool
	for _, msg := range msgs {
		if sc, ok := msg.(common.SortChangedMsg); ok && sc.Sort == "new" {
			changed = true
		}
	}
	if !changed {
		t.Fatalf("expected SortChangedMsg, got %v", msgs)
	}
	if last := f.posts.sorts[len(f.posts.sorts)-1]; last != "new" {
		t.Fatalf("expected refetch with new sort, got %q", last)
	}
}

func TestVote_PostFromFeedAndCommentFromDetail(t *testing.T) {
	f := newFixture()
	m := loadedFeed(f)

	m, cmd := m.Update(keyRunes("+"))
	m, msgs := drive(m, cmd)
	if len(f.posts.votes) != 1 || f.posts.votes[0] != "upvote:p1" {
		t.Fatalf("unexpected post votes %v", f.posts.votes)
	}
	if len(msgs) == 0 || msgs[0].(common.NoticeMsg).Text != "Upvoted!" {
		t.Fatalf("expected Upvoted! notice, got %v", msgs)
	}

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = drive(m, cmd)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = m.Update(keyRunes("-"))
	drive(m, cmd)
	if len(f.comments.votes) != 1 || f.comments.votes[0] != "downvote:c2" {
		t.Fatalf("expected downvote on nested comment c2, got %v", f.comments.votes)
	}
}

func TestDelete_RequiresOwnershipAndConfirmation(t *testing.T) {
	f := newFixture()
	m := loadedFeed(f)

	// p2 belongs to someone else.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(keyRunes("x"))
	if m.Capturing() {
		t.Fatalf("delete prompt must not open for another agent's post")
	}
	if msgs := collect(cmd); len(msgs) != 1 || !msgs[0].(common.NoticeMsg).IsError {
		t.Fatalf("expected an error notice, got %v", msgs)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, _ = m.Update(keyRunes("x"))
	if !m.Capturing() {
		t.Fatalf("expected delete confirmation for own post")
	}
	m, cmd = m.Update(keyRunes("n"))
	if m.Capturing() || cmd != nil {
		t.Fatalf("n should cancel without a request")
	}

	m, _ = m.Update(keyRunes("x"))
	m, cmd = m.Update(keyRunes("y"))
	_, msgs := drive(m, cmd)
	if len(f.posts.deleted) != 1 || f.posts.deleted[0] != "p1" {
		t.Fatalf("expected p1 deleted, got %v", f.posts.deleted)
	}
	if len(msgs) == 0 || msgs[0].(common.NoticeMsg).Text != "Post deleted" {
		t.Fatalf("expected Post deleted notice, got %v", msgs)
	}
}

func TestDelete_FromDetailReturnsToFeed(t *testing.T) {
	f := newFixture()
	m := openedPost(f)

	m, _ = m.Update(keyRunes("x"))
	m, cmd := m.Update(keyRunes("y"))
	m, _ = drive(m, cmd)
	if m.CurrentView() != app.ViewFeed {
		t.Fatalf("expected feed after deleting the open post, got %s", m.CurrentView())
	}
	if m.detail != nil || len(m.history) != 0 {
		t.Fatalf("expected detail state cleared")
	}
}

func TestOpenAuthor_LoadsProfile(t *testing.T) {
	f := newFixture()
	f.agents.profile = domain.Agent{Karma: 42, IsClaimed: true}
	f.agents.recent = []domain.Post{makePost("p9", "other", "Theirs")}
	m := loadedFeed(f)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(keyRunes("a"))
	m, _ = drive(m, cmd)
	if m.CurrentView() != app.ViewProfile {
		t.Fatalf("expected profile view, got %s", m.CurrentView())
	}
	if m.profile == nil || m.profile.Agent.Name != "other" || m.profile.Own {
		t.Fatalf("unexpected profile %+v", m.profile)
	}
	out := m.View()
	for _, want := range []string{"other", "✓ Claimed", "RECENT POSTS", "Theirs"} {
		if !strings.Contains(out, want) {
			t.Fatalf("profile view missing %q:\n%s", want, out)
		}
	}
}

func TestMyProfile_UsesMe(t *testing.T) {
	f := newFixture()
	m := loadedFeed(f)
	m, cmd := m.Update(keyRunes("m"))
	m, _ = drive(m, cmd)
	if m.profile == nil || !m.profile.Own || m.profile.Agent.Name != "clawd" {
		t.Fatalf("expected own profile, got %+v", m.profile)
	}
	if !strings.Contains(m.View(), "⚠ Pending claim") {
		t.Fatalf("expected pending claim badge")
	}
}

func TestView_DetailRendersTree(t *testing.T) {
	f := newFixture()
	m := openedPost(f)
	m.height = 200
	out := m.View()
	for _, want := range []string{"Opened", "Comments (3)", "top", "nested", "second top", "│ "} {
		if !strings.Contains(out, want) {
			t.Fatalf("detail view missing %q:\n%s", want, out)
		}
	}
}

func TestView_FeedMarksOwnPosts(t *testing.T) {
	f := newFixture()
	m := loadedFeed(f)
	out := m.View()
	if !strings.Contains(out, "First") || !strings.Contains(out, "(you)") {
		t.Fatalf("expected own badge on First:\n%s", out)
	}
	if !strings.Contains(out, "m/general") {
		t.Fatalf("expected submolt label:\n%s", out)
	}
}

func TestCooldownLabelDisablesReplyBox(t *testing.T) {
	f := newFixture()
	m := openedPost(f)
	f.session.Cooldowns().RecordSuccess(cooldown.Comment)

	m, _ = m.Update(keyRunes("c"))
	out := m.View()
	if !strings.Contains(out, "(submit disabled)") {
		t.Fatalf("expected disabled reply box while cooling down:\n%s", out)
	}
	*f.clock = f.clock.Add(25 * time.Second)
	if strings.Contains(m.View(), "(submit disabled)") {
		t.Fatalf("expected reply box enabled after the cooldown")
	}
}
