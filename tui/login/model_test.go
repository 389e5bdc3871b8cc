package login

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/infra/auth"
)

type stubAgents struct {
	me     domain.Agent
	meErr  error
	reg    domain.Registration
	regErr error
	names  []string
}

func (s *stubAgents) Register(_ context.Context, name, _ string) (domain.Registration, error) {
	s.names = append(s.names, name)
	return s.reg, s.regErr
}
func (s *stubAgents) Me(context.Context) (domain.Agent, error) { return s.me, s.meErr }
func (s *stubAgents) Profile(context.Context, string) (domain.Agent, []domain.Post, error) {
	return domain.Agent{}, nil, nil
}
func (s *stubAgents) Status(context.Context) (string, error) { return "", nil }

func newModel(key string, agents *stubAgents) (Model, *app.Session) {
	session := app.NewSession(auth.NewMemoryKeyStore(key), nil)
	ctrl := app.NewController(app.Deps{Agents: agents})
	return New(ctrl, session), session
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestKeyStep_EmptyKeyRejected(t *testing.T) {
	m, _ := newModel("", &stubAgents{})
	m, _ = m.Update(runes("k"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.Busy() {
		t.Fatalf("expected no request for an empty key")
	}
	if m.err != domain.ErrEmptyAPIKey.Error() {
		t.Fatalf("unexpected error %q", m.err)
	}
}

func TestKeyStep_VerifiesAndLogsIn(t *testing.T) {
	agents := &stubAgents{me: domain.Agent{Name: "clawd"}}
	m, session := newModel("", agents)
	m, _ = m.Update(runes("k"))
	m.apiKey.SetValue("moltbook_sk_abcdefghijklmnop")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Busy() || cmd == nil {
		t.Fatalf("expected a verify request")
	}
	m, cmd = m.Update(cmd())
	msg, ok := cmd().(LoggedInMsg)
	if !ok || msg.Agent.Name != "clawd" {
		t.Fatalf("expected LoggedInMsg for clawd, got %#v", msg)
	}
	if session.UserLabel() != "clawd | moltbook_sk_...mnop" {
		t.Fatalf("unexpected label %q", session.UserLabel())
	}
	if m.Busy() {
		t.Fatalf("expected busy cleared")
	}
}

func TestVerify_RejectedKeyLogsOut(t *testing.T) {
	agents := &stubAgents{meErr: &domain.HTTPError{Status: 401, Message: "Invalid API key"}}
	m, session := newModel("moltbook_sk_abcdefghijklmnop", agents)

	m, cmd := m.Resume()
	if !m.Busy() {
		t.Fatalf("expected busy while verifying")
	}
	m, _ = m.Update(cmd())
	if session.HasKey() {
		t.Fatalf("expected the rejected key cleared")
	}
	if !strings.Contains(m.View(), InvalidKeyMessage) {
		t.Fatalf("expected invalid key message:\n%s", m.View())
	}
}

func TestVerify_NetworkErrorKeepsKey(t *testing.T) {
	agents := &stubAgents{meErr: &domain.NetworkError{}}
	m, session := newModel("moltbook_sk_abcdefghijklmnop", agents)
	m, cmd := m.Resume()
	m, _ = m.Update(cmd())
	if !session.HasKey() {
		t.Fatalf("a network error must not clear the key")
	}
	if m.err != "Network error" {
		t.Fatalf("unexpected error %q", m.err)
	}
}

func TestRegister_ShowsCredentialsAndStoresKey(t *testing.T) {
	agents := &stubAgents{reg: domain.Registration{APIKey: "moltbook_sk_fresh1234567", ClaimURL: "https://moltbook.com/claim/x"}}
	m, session := newModel("", agents)
	m, _ = m.Update(runes("n"))
	m.name.SetValue("newbot")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(cmd())
	if len(agents.names) != 1 || agents.names[0] != "newbot" {
		t.Fatalf("unexpected register calls %v", agents.names)
	}
	if !session.HasKey() {
		t.Fatalf("expected the new key stored")
	}
	out := m.View()
	for _, want := range []string{"moltbook_sk_fresh1234567", "https://moltbook.com/claim/x", "Verification code: N/A"} {
		if !strings.Contains(out, want) {
			t.Fatalf("result view missing %q:\n%s", want, out)
		}
	}
}

func TestRegister_NameRequired(t *testing.T) {
	m, _ := newModel("", &stubAgents{})
	m, _ = m.Update(runes("n"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("expected no request without a name")
	}
	if m.err != domain.ErrEmptyAgentName.Error() {
		t.Fatalf("unexpected error %q", m.err)
	}
}
